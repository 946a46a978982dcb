package handlers

import (
	"net/http"

	"github.com/anonto42/vaxtop/backend/internal/models"
	"github.com/anonto42/vaxtop/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles bell notification requests
type NotificationHandler struct {
	prefs repositories.PreferencesRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(prefs repositories.PreferencesRepository) *NotificationHandler {
	return &NotificationHandler{prefs: prefs}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.POST("/notifications", h.CreateNotification)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
	g.DELETE("/notifications", h.ClearNotifications)
}

// GetNotifications returns the caller's notification log, newest last
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	ctx := c.Request().Context()
	currentUserID := getUserIDFromContext(c)

	notifications, err := h.prefs.GetNotifications(ctx, currentUserID)
	if err != nil {
		return httpError(err)
	}
	unread := 0
	for _, n := range notifications {
		if !n.Read {
			unread++
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": notifications,
			"unreadCount":   unread,
		},
	})
}

// CreateNotification pushes a notification to another user from the caller
func (h *NotificationHandler) CreateNotification(c echo.Context) error {
	var req models.CreateNotificationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	notification, err := h.prefs.AddNotification(c.Request().Context(), req.UserID, models.BellNotification{
		Type:       req.Type,
		Message:    req.Message,
		ProductID:  req.ProductID,
		FromUserID: getUserIDFromContext(c),
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": notification})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	count, err := h.prefs.GetUnreadCount(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"unreadCount": count}})
}

func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	if err := h.prefs.MarkNotificationAsRead(c.Request().Context(), getUserIDFromContext(c), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	if err := h.prefs.MarkAllNotificationsAsRead(c.Request().Context(), getUserIDFromContext(c)); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *NotificationHandler) ClearNotifications(c echo.Context) error {
	if err := h.prefs.ClearNotifications(c.Request().Context(), getUserIDFromContext(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
