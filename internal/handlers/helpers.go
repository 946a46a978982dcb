package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/anonto42/vaxtop/backend/internal/auth"
	"github.com/anonto42/vaxtop/backend/internal/middleware"
	"github.com/anonto42/vaxtop/backend/internal/models"
	"github.com/anonto42/vaxtop/backend/internal/repositories"
	"github.com/anonto42/vaxtop/backend/pkg/kvstore"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func getUserIDFromContext(c echo.Context) string {
	return middleware.UserID(c)
}

// bindAndValidate decodes the request body into req and runs e.Validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}

// httpError maps storage and auth errors onto HTTP status codes.
func httpError(err error) error {
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.Is(err, repositories.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, repositories.ErrUnknownField),
		errors.Is(err, repositories.ErrInvalidFieldValue),
		errors.Is(err, repositories.ErrInvalidNotificationType):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, repositories.ErrAlreadyExists), errors.Is(err, auth.ErrAccountExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrNotSignedIn):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrIdentityUnavailable):
		return echo.NewHTTPError(http.StatusNotImplemented, err.Error())
	case errors.Is(err, kvstore.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// productOwner returns the publisher of productID, or "" when unknown.
func productOwner(c echo.Context, data repositories.DataRepository, productID string) string {
	products, err := data.GetProducts(c.Request().Context())
	if err != nil {
		return ""
	}
	for _, p := range products {
		if p.ID == productID {
			return p.UserID
		}
	}
	return ""
}

// notifier pushes bell notifications, honouring the recipient's settings.
type notifier struct {
	prefs  repositories.PreferencesRepository
	logger *zap.Logger
}

func (n notifier) push(ctx context.Context, recipientID string, notification models.BellNotification) {
	if recipientID == "" || recipientID == notification.FromUserID {
		return
	}

	settings := models.DefaultPreferences(recipientID).Notifications
	prefs, err := n.prefs.GetPreferences(ctx, recipientID)
	if err != nil {
		n.logger.Warn("reading recipient preferences failed", zap.String("user_id", recipientID), zap.Error(err))
	}
	if prefs != nil {
		settings = prefs.Notifications
	}

	switch notification.Type {
	case models.NotificationFollow:
		if !settings.NewFollower {
			return
		}
	case models.NotificationComment:
		if !settings.ProductComments {
			return
		}
	case models.NotificationLike:
		if !settings.ProductLikes {
			return
		}
	}

	if _, err := n.prefs.AddNotification(ctx, recipientID, notification); err != nil {
		n.logger.Warn("pushing notification failed", zap.String("user_id", recipientID), zap.Error(err))
	}
}
