package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"uixlabs-accounts/internal/logger"
	"uixlabs-accounts/internal/model"
	"uixlabs-accounts/internal/service"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newContext(auth string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he))
	return he.Code
}

func TestExtractClaims(t *testing.T) {
	auth := service.NewAuthenticator("testsecret", time.Minute)

	// missing header
	ctx, _ := newContext("")
	_, err := extractClaims(ctx, auth)
	require.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	// bad format
	ctx, _ = newContext("BadHeader")
	_, err = extractClaims(ctx, auth)
	require.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	// invalid token
	ctx, _ = newContext("Bearer invalid")
	_, err = extractClaims(ctx, auth)
	require.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	// signed with another secret
	other, _, err := service.NewAuthenticator("other", time.Minute).IssueAccessToken(model.User{ID: 1})
	require.NoError(t, err)
	ctx, _ = newContext("Bearer " + other)
	_, err = extractClaims(ctx, auth)
	require.Error(t, err)

	// valid token, scheme is case-insensitive
	tok, _, err := auth.IssueAccessToken(model.User{ID: 1, Username: "ann1"})
	require.NoError(t, err)
	ctx, _ = newContext("bearer " + tok)
	claims, err := extractClaims(ctx, auth)
	require.NoError(t, err)
	require.Equal(t, 1, claims.UserID)
	require.Equal(t, "ann1", claims.Username)
}

func TestRequireAuth(t *testing.T) {
	auth := service.NewAuthenticator("secret", time.Minute)
	tok, _, err := auth.IssueAccessToken(model.User{ID: 2, Username: "bob"})
	require.NoError(t, err)

	// success path
	ctx, rec := newContext("Bearer " + tok)
	called := false
	handler := RequireAuth(auth)(func(c echo.Context) error {
		called = true
		cl := c.Get(ContextUserKey).(*service.CustomClaims)
		require.Equal(t, 2, cl.UserID)
		return c.String(http.StatusOK, "ok")
	})
	require.NoError(t, handler(ctx))
	require.True(t, called)
	require.Equal(t, http.StatusOK, rec.Code)

	// missing token
	ctx, _ = newContext("")
	called = false
	err = RequireAuth(auth)(func(echo.Context) error { called = true; return nil })(ctx)
	require.Error(t, err)
	require.False(t, called)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := echo.New()
	e.Use(echomw.RequestID())
	e.Use(RequestLogger(logger.NewWithCore(core)))
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/missing", func(c echo.Context) error { return c.String(http.StatusNotFound, "no") })
	e.GET("/boom", func(c echo.Context) error { return errors.New("boom") })

	for _, path := range []string{"/ok", "/missing", "/boom"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		e.ServeHTTP(httptest.NewRecorder(), req)
	}

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 3)
	require.Equal(t, zapcore.InfoLevel, entries[0].Level)
	require.Equal(t, zapcore.WarnLevel, entries[1].Level)
	require.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	require.Equal(t, "boom", entries[2].ContextMap()["trace"])
	require.NotEmpty(t, entries[0].ContextMap()["request_id"])
	require.Equal(t, "/missing", entries[1].ContextMap()["uri"])
}
