package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/anonto42/vaxtop/backend/internal/auth"
	"github.com/anonto42/vaxtop/backend/internal/models"
	"github.com/labstack/echo/v4"
)

const (
	claimsKey = "claims"
	userIDKey = "userID"
)

// SessionSource returns the live session of this device.
type SessionSource interface {
	SessionInfo(ctx context.Context) *models.DeviceSession
}

// JWTAuthMiddleware checks for a valid access token and that it still
// belongs to the current session of this device.
func JWTAuthMiddleware(tokens *auth.TokenManager, sessions SessionSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}

			// Expecting "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}

			claims, err := tokens.Parse(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			session := sessions.SessionInfo(c.Request().Context())
			if session == nil ||
				session.SessionToken != claims.SessionToken ||
				session.DeviceID != claims.DeviceID ||
				session.UserID != claims.UserID {
				return echo.NewHTTPError(http.StatusUnauthorized, "Session ended")
			}

			c.Set(claimsKey, claims)
			c.Set(userIDKey, claims.UserID)

			return next(c)
		}
	}
}

// UserID returns the authenticated user id set by JWTAuthMiddleware.
func UserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}

// Claims returns the access-token claims set by JWTAuthMiddleware.
func Claims(c echo.Context) *models.SessionClaims {
	claims, _ := c.Get(claimsKey).(*models.SessionClaims)
	return claims
}
