package handler

import (
	"net/http"

	"uixlabs-accounts/internal/logger"

	"github.com/labstack/echo/v4"
)

const greeting = "Create an Account on UIXLabs!!!"

// HelloHandler 首頁問候，不在 /api 之下
func HelloHandler(log *logger.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		log.Log("Hello World message logged")
		return c.String(http.StatusOK, greeting)
	}
}
