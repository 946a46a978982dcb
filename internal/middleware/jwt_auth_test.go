package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/vaxtop/backend/internal/auth"
	"github.com/anonto42/vaxtop/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSessions struct {
	session *models.DeviceSession
}

func (s staticSessions) SessionInfo(context.Context) *models.DeviceSession { return s.session }

func serve(t *testing.T, mw echo.MiddlewareFunc, header string) (*httptest.ResponseRecorder, string, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen string
	err := mw(func(c echo.Context) error {
		seen = UserID(c)
		return c.NoContent(http.StatusNoContent)
	})(c)
	return rec, seen, err
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %v", err)
	return httpErr.Code
}

func TestJWTAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	session := &models.DeviceSession{DeviceID: "device_1", UserID: "u1", SessionToken: "session_1", IsActive: true}
	signed, err := tokens.Issue(session)
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		rec, seen, err := serve(t, JWTAuthMiddleware(tokens, staticSessions{session}), "Bearer "+signed)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "u1", seen)
	})

	t.Run("missing header", func(t *testing.T) {
		_, _, err := serve(t, JWTAuthMiddleware(tokens, staticSessions{session}), "")
		assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	})

	t.Run("bad scheme", func(t *testing.T) {
		_, _, err := serve(t, JWTAuthMiddleware(tokens, staticSessions{session}), "Token "+signed)
		assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	})

	t.Run("session ended", func(t *testing.T) {
		_, _, err := serve(t, JWTAuthMiddleware(tokens, staticSessions{nil}), "Bearer "+signed)
		assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	})

	t.Run("replaced session", func(t *testing.T) {
		newer := *session
		newer.SessionToken = "session_2"
		_, _, err := serve(t, JWTAuthMiddleware(tokens, staticSessions{&newer}), "Bearer "+signed)
		assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	})
}
