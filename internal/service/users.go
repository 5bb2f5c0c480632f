// File: internal/service/users.go
package service

import (
	"context"
	"errors"
	"fmt"

	"uixlabs-accounts/internal/database"
	"uixlabs-accounts/internal/logger"
	"uixlabs-accounts/internal/model"
	"uixlabs-accounts/internal/store"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// 呼叫端以 errors.Is 判斷失敗種類
var (
	ErrConflict     = errors.New("username already exists")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("user not found")

	// bcrypt 只接受 72 bytes 以內的密碼
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")
)

var (
	createUser        = store.CreateUser
	getUserByUsername = store.GetUserByUsername
	listUsers         = store.ListUsers
	hashPassword      = HashPassword
	comparePassword   = ComparePassword
)

// UserService 串接密碼雜湊與 users 資料表
type UserService struct {
	db   database.DB
	log  *logger.Logger
	cost int
}

// NewUserService cost 為 0 時使用 DefaultCost
func NewUserService(db database.DB, log *logger.Logger, cost int) *UserService {
	if cost == 0 {
		cost = DefaultCost
	}
	return &UserService{db: db, log: log, cost: cost}
}

// CreateUser 雜湊密碼後寫入；username 重複時回傳 ErrConflict
func (s *UserService) CreateUser(ctx context.Context, name, username, email, password string) (*model.User, error) {
	hash, err := hashPassword(password, s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, ErrPasswordTooLong
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := createUser(ctx, s.db, &model.User{
		Name:         name,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if isUniqueViolation(err) {
			s.log.Warn("username already exists", zap.String("username", username))
			return nil, ErrConflict
		}
		s.log.Error("create user failed", err.Error(), zap.String("username", username))
		return nil, err
	}

	s.log.Info("user created", zap.Int("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// SignIn 以 username 查詢並比對密碼；兩種失敗都包裝 ErrUnauthorized
func (s *UserService) SignIn(ctx context.Context, username, password string) (*model.User, error) {
	user, err := getUserByUsername(ctx, s.db, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.log.Warn("sign-in rejected: user not found", zap.String("username", username))
			return nil, fmt.Errorf("%w: user not found", ErrUnauthorized)
		}
		s.log.Error("sign-in lookup failed", err.Error(), zap.String("username", username))
		return nil, err
	}

	if err := comparePassword(user.PasswordHash, password); err != nil {
		s.log.Warn("sign-in rejected: invalid password", zap.String("username", username))
		return nil, fmt.Errorf("%w: invalid password", ErrUnauthorized)
	}

	s.log.Info("user signed in", zap.Int("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// GetUsers 回傳全部使用者，不分頁
func (s *UserService) GetUsers(ctx context.Context) ([]model.User, error) {
	users, err := listUsers(ctx, s.db)
	if err != nil {
		s.log.Error("list users failed", err.Error())
		return nil, err
	}
	s.log.Debug("users listed", zap.Int("count", len(users)))
	return users, nil
}

func (s *UserService) GetUser(ctx context.Context, username string) (*model.User, error) {
	user, err := getUserByUsername(ctx, s.db, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		s.log.Error("get user failed", err.Error(), zap.String("username", username))
		return nil, err
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
