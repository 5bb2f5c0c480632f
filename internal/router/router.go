// File: internal/router/router.go
package router

import (
	"github.com/labstack/echo/v4"

	"uixlabs-accounts/internal/cache"
	"uixlabs-accounts/internal/database"
	"uixlabs-accounts/internal/handler"
	"uixlabs-accounts/internal/handler/users"
	"uixlabs-accounts/internal/logger"
	"uixlabs-accounts/internal/middleware"
	"uixlabs-accounts/internal/service"
)

// Deps 為路由需要的依賴；Cache 可為 nil
type Deps struct {
	DB    database.DB
	Cache cache.Cache
	Users users.UserService
	Auth  *service.Authenticator
	Log   *logger.Logger
}

// Setup 註冊所有路由與中介層
func Setup(e *echo.Echo, d Deps) {
	e.GET("/", handler.HelloHandler(d.Log))

	api := e.Group("/api")

	// 健康檢查
	api.GET("/ping", handler.PingHandler(d.DB, d.Cache, d.Log))

	// 註冊、登入與列表
	apiUsers := api.Group("/users")
	apiUsers.POST("", users.CreateUserHandler(d.Users, d.Log))
	apiUsers.POST("/sign-in", users.SignInHandler(d.Users, d.Auth, d.Log))
	apiUsers.GET("", users.ListUsersHandler(d.Users, d.Log))

	// 當前使用者
	apiUsers.GET("/me", users.GetMyUserHandler(d.Users, d.Log), middleware.RequireAuth(d.Auth))
}
