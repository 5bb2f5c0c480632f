// File: internal/handler/ping.go
package handler

import (
	"net/http"

	"uixlabs-accounts/internal/api"
	"uixlabs-accounts/internal/cache"
	"uixlabs-accounts/internal/database"
	"uixlabs-accounts/internal/logger"

	"github.com/labstack/echo/v4"
)

// PingResponse 健康檢查回應模型
// swagger:model PingResponse
type PingResponse struct {
	Message string `json:"message" example:"pong"`
}

// PingHandler 健康檢查；cch 為 nil 時只檢查資料庫
// @Summary     Health Check
// @Description 回傳 pong，並檢查資料庫與快取連線是否正常
// @Tags        health
// @Produce     json
// @Success     200 {object} PingResponse
// @Failure     500 {object} api.ErrorResponse
// @Router      /ping [get]
func PingHandler(db database.DB, cch cache.Cache, log *logger.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if err := db.Ping(ctx); err != nil {
			log.Error("database ping failed", err.Error())
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "database unhealthy"})
		}
		if cch != nil {
			if err := cache.Probe(ctx, cch); err != nil {
				log.Error("cache probe failed", err.Error())
				return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "cache unhealthy"})
			}
		}
		return c.JSON(http.StatusOK, PingResponse{Message: "pong"})
	}
}
