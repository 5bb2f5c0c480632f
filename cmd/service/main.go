// File: cmd/service/main.go
// @title        UIXLabs Accounts API
// @version      1.0
// @description  UIXLabs 帳號服務：註冊、登入與使用者列表
// @host         localhost:8080
// @BasePath     /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"uixlabs-accounts/internal/cache"
	"uixlabs-accounts/internal/config"
	"uixlabs-accounts/internal/database"
	"uixlabs-accounts/internal/logger"
	"uixlabs-accounts/internal/middleware"
	"uixlabs-accounts/internal/router"
	"uixlabs-accounts/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	_ "uixlabs-accounts/docs" // 引入 swag 產出的 docs

	echoSwagger "github.com/swaggo/echo-swagger"
)

// CustomValidator wraps go-playground/validator for Echo
// swagger:ignore
type CustomValidator struct {
	validator *validator.Validate
}

// Validate calls the underlying validator
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

var (
	loadConfig      = config.Load
	newLogger       = logger.New
	newPgxPool      = database.NewPgxPool
	newRedisClient  = cache.NewRedisClient
	runMigrationsFn = database.RunMigrations
	rollbackAllFn   = database.RollbackAll
	startServer     = func(e *echo.Echo, addr string) error {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
	exitFunc = os.Exit

	// logger 建立前就失敗時改寫到預設的 log 檔
	fallbackLogFile = "application.log"
)

// loggedError 表示錯誤已經由 run 內的 logger 寫出
type loggedError struct{ error }

func (e loggedError) Unwrap() error { return e.error }

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("設定載入失敗: %w", err)
	}

	log, err := newLogger(logger.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return fmt.Errorf("logger 建立失敗: %w", err)
	}
	defer log.Sync()

	if err := serve(cfg, log); err != nil {
		log.Error("service stopped", err.Error())
		return loggedError{err}
	}
	return nil
}

func serve(cfg config.Config, log *logger.Logger) error {
	db, err := newPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("DB 連線失敗: %w", err)
	}
	defer db.Close()

	// REDIS_ADDR 未設定時不使用快取
	var cch cache.Cache
	if cfg.RedisAddr != "" {
		cch, err = newRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("Redis 連線失敗: %w", err)
		}
		defer cch.Close()
	}

	if cfg.DBResetOnStart {
		log.Warn("DB_RESET_ON_START is set, rolling back all migrations")
		if err := rollbackAllFn(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("RollbackAll 失敗: %w", err)
		}
	}
	if err := runMigrationsFn(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("Migration 執行失敗: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(log))

	router.Setup(e, router.Deps{
		DB:    db,
		Cache: cch,
		Users: service.NewUserService(db, log, cfg.BcryptCost),
		Auth:  service.NewAuthenticator(cfg.JWTSecret, cfg.AccessTokenTTL),
		Log:   log,
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	log.Info("server starting", zap.String("addr", cfg.HTTPAddr), zap.Bool("cache", cch != nil))
	return startServer(e, cfg.HTTPAddr)
}

func main() {
	err := run()
	if err == nil {
		return
	}
	var logged loggedError
	if !errors.As(err, &logged) {
		fallback, lerr := logger.New(logger.Config{File: fallbackLogFile})
		if lerr != nil {
			fallback, lerr = logger.New(logger.Config{})
		}
		if lerr == nil {
			fallback.Error("service stopped", err.Error())
			_ = fallback.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	exitFunc(1)
}
