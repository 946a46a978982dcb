package handlers

import (
	"net/http"

	"github.com/anonto42/vaxtop/backend/internal/models"
	"github.com/anonto42/vaxtop/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PreferencesHandler handles display options, saved products and the social graph
type PreferencesHandler struct {
	prefs    repositories.PreferencesRepository
	notifier notifier
}

// NewPreferencesHandler creates a new PreferencesHandler
func NewPreferencesHandler(prefs repositories.PreferencesRepository, logger *zap.Logger) *PreferencesHandler {
	return &PreferencesHandler{
		prefs:    prefs,
		notifier: notifier{prefs: prefs, logger: logger},
	}
}

// RegisterPreferencesRoutes registers preferences and social-graph routes
func (h *PreferencesHandler) RegisterPreferencesRoutes(g *echo.Group) {
	g.GET("/preferences", h.GetPreferences)
	g.PUT("/preferences/display", h.UpdateDisplay)
	g.PUT("/preferences/notifications", h.UpdateNotificationSettings)

	g.POST("/saved/:productId", h.SaveProduct)
	g.DELETE("/saved/:productId", h.UnsaveProduct)

	g.POST("/users/:id/follow", h.Follow)
	g.DELETE("/users/:id/follow", h.Unfollow)
	g.POST("/users/:id/block", h.Block)
	g.DELETE("/users/:id/block", h.Unblock)
	g.GET("/users/:id/relationship", h.GetRelationship)
}

// GetPreferences returns the caller's preferences, creating defaults on first access
func (h *PreferencesHandler) GetPreferences(c echo.Context) error {
	prefs, err := h.prefs.InitializePreferences(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": prefs})
}

func (h *PreferencesHandler) UpdateDisplay(c echo.Context) error {
	var req models.UpdateDisplayRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	prefs, err := h.prefs.UpdateDisplay(c.Request().Context(), getUserIDFromContext(c), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": prefs})
}

func (h *PreferencesHandler) UpdateNotificationSettings(c echo.Context) error {
	var req models.NotificationSettings
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	prefs, err := h.prefs.UpdateNotificationSettings(c.Request().Context(), getUserIDFromContext(c), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": prefs})
}

func (h *PreferencesHandler) SaveProduct(c echo.Context) error {
	if err := h.prefs.AddSavedProduct(c.Request().Context(), getUserIDFromContext(c), c.Param("productId")); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "saved": true})
}

func (h *PreferencesHandler) UnsaveProduct(c echo.Context) error {
	if err := h.prefs.RemoveSavedProduct(c.Request().Context(), getUserIDFromContext(c), c.Param("productId")); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "saved": false})
}

// Follow records the edge on both users and notifies the target
func (h *PreferencesHandler) Follow(c echo.Context) error {
	ctx := c.Request().Context()
	currentUserID := getUserIDFromContext(c)
	targetID := c.Param("id")
	if targetID == currentUserID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
	}

	already, err := h.prefs.IsFollowing(ctx, currentUserID, targetID)
	if err != nil {
		return httpError(err)
	}
	if err := h.prefs.AddFollowing(ctx, currentUserID, targetID); err != nil {
		return httpError(err)
	}
	if err := h.prefs.AddFollower(ctx, targetID, currentUserID); err != nil {
		return httpError(err)
	}
	if !already {
		h.notifier.push(ctx, targetID, models.BellNotification{
			Type:       models.NotificationFollow,
			Message:    "You have a new follower",
			FromUserID: currentUserID,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "following": true})
}

func (h *PreferencesHandler) Unfollow(c echo.Context) error {
	ctx := c.Request().Context()
	currentUserID := getUserIDFromContext(c)
	targetID := c.Param("id")

	if err := h.prefs.RemoveFollowing(ctx, currentUserID, targetID); err != nil {
		return httpError(err)
	}
	if err := h.prefs.RemoveFollower(ctx, targetID, currentUserID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "following": false})
}

// Block blocks the target and drops the follow edges between the two users
func (h *PreferencesHandler) Block(c echo.Context) error {
	ctx := c.Request().Context()
	currentUserID := getUserIDFromContext(c)
	targetID := c.Param("id")
	if targetID == currentUserID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot block yourself")
	}

	if err := h.prefs.BlockUser(ctx, currentUserID, targetID); err != nil {
		return httpError(err)
	}
	for _, op := range []func() error{
		func() error { return h.prefs.RemoveFollowing(ctx, currentUserID, targetID) },
		func() error { return h.prefs.RemoveFollower(ctx, currentUserID, targetID) },
		func() error { return h.prefs.RemoveFollowing(ctx, targetID, currentUserID) },
		func() error { return h.prefs.RemoveFollower(ctx, targetID, currentUserID) },
	} {
		if err := op(); err != nil {
			return httpError(err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "blocked": true})
}

func (h *PreferencesHandler) Unblock(c echo.Context) error {
	if err := h.prefs.UnblockUser(c.Request().Context(), getUserIDFromContext(c), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "blocked": false})
}

// GetRelationship reports the follow and block edges between the caller and a user
func (h *PreferencesHandler) GetRelationship(c echo.Context) error {
	ctx := c.Request().Context()
	currentUserID := getUserIDFromContext(c)
	targetID := c.Param("id")

	following, err := h.prefs.IsFollowing(ctx, currentUserID, targetID)
	if err != nil {
		return httpError(err)
	}
	followedBy, err := h.prefs.IsFollowing(ctx, targetID, currentUserID)
	if err != nil {
		return httpError(err)
	}
	blocked, err := h.prefs.IsBlocked(ctx, currentUserID, targetID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"following":  following,
			"followedBy": followedBy,
			"blocked":    blocked,
		},
	})
}
