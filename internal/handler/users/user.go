package users

import (
	"context"
	"errors"
	"net/http"
	"time"

	"uixlabs-accounts/internal/api"
	"uixlabs-accounts/internal/logger"
	"uixlabs-accounts/internal/middleware"
	"uixlabs-accounts/internal/model"
	"uixlabs-accounts/internal/service"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// UserService 是 handler 需要的帳號操作，*service.UserService 直接滿足
type UserService interface {
	CreateUser(ctx context.Context, name, username, email, password string) (*model.User, error)
	SignIn(ctx context.Context, username, password string) (*model.User, error)
	GetUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, username string) (*model.User, error)
}

// TokenIssuer 簽發登入後的 access token
type TokenIssuer interface {
	IssueAccessToken(user model.User) (string, time.Time, error)
}

// @Summary     Create a new user
// @Description 建立新帳號，密碼以 bcrypt 雜湊後儲存
// @Tags        users
// @Accept      json
// @Accept      application/x-www-form-urlencoded
// @Produce     json
// @Param       body body     api.CreateUserRequest true "使用者資料"
// @Success     201  {object} api.UserResponse
// @Failure     400  {object} api.ErrorResponse
// @Failure     409  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Router      /users [post]
func CreateUserHandler(svc UserService, log *logger.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.CreateUserRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid request body"})
		}
		if err := c.Validate(&req); err != nil {
			return writeValidationError(c, log, err)
		}

		user, err := svc.CreateUser(c.Request().Context(), req.Name, req.Username, req.Email, req.Password)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(http.StatusCreated, api.NewUserResponse(*user))
	}
}

// @Summary     Sign in
// @Description 以 username 與密碼登入，成功時回傳使用者與 access token
// @Tags        users
// @Accept      json
// @Accept      application/x-www-form-urlencoded
// @Produce     json
// @Param       body body     api.SignInRequest true "登入資料"
// @Success     200  {object} api.SignInResponse
// @Failure     400  {object} api.ErrorResponse
// @Failure     401  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Router      /users/sign-in [post]
func SignInHandler(svc UserService, tokens TokenIssuer, log *logger.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.SignInRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid request body"})
		}
		if err := c.Validate(&req); err != nil {
			return writeValidationError(c, log, err)
		}

		user, err := svc.SignIn(c.Request().Context(), req.Username, req.Password)
		if err != nil {
			return writeServiceError(c, log, err)
		}

		token, expiresAt, err := tokens.IssueAccessToken(*user)
		if err != nil {
			log.Error("issue access token failed", err.Error())
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "internal server error"})
		}
		return c.JSON(http.StatusOK, api.SignInResponse{
			User:        api.NewUserResponse(*user),
			AccessToken: token,
			ExpiresAt:   expiresAt,
		})
	}
}

// @Summary     List users
// @Tags        users
// @Produce     json
// @Success     200 {array}  api.UserResponse
// @Failure     500 {object} api.ErrorResponse
// @Router      /users [get]
func ListUsersHandler(svc UserService, log *logger.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		list, err := svc.GetUsers(c.Request().Context())
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(http.StatusOK, api.NewUserResponses(list))
	}
}

// @Summary     Get current user
// @Description 依 access token 取得目前登入的使用者
// @Tags        users
// @Produce     json
// @Success     200 {object} api.UserResponse
// @Failure     401 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /users/me [get]
func GetMyUserHandler(svc UserService, log *logger.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := c.Get(middleware.ContextUserKey).(*service.CustomClaims)
		if !ok {
			return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Message: "invalid credentials"})
		}
		user, err := svc.GetUser(c.Request().Context(), claims.Username)
		if err != nil {
			return writeServiceError(c, log, err)
		}
		return c.JSON(http.StatusOK, api.NewUserResponse(*user))
	}
}

// writeServiceError 將 service 的錯誤種類轉成 HTTP 狀態碼
func writeServiceError(c echo.Context, log *logger.Logger, err error) error {
	switch {
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, api.ErrorResponse{Message: service.ErrConflict.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Message: "invalid credentials"})
	case errors.Is(err, service.ErrPasswordTooLong):
		return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: service.ErrPasswordTooLong.Error()})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, api.ErrorResponse{Message: service.ErrNotFound.Error()})
	default:
		log.Error("request failed", err.Error(), zap.String("path", c.Path()))
		return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "internal server error"})
	}
}

// writeValidationError 細節只寫入 log，回應維持固定訊息
func writeValidationError(c echo.Context, log *logger.Logger, err error) error {
	log.Warn("request validation failed", zap.String("path", c.Path()), zap.String("detail", err.Error()))
	return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid request body"})
}
