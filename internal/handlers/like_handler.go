package handlers

import (
	"net/http"

	"github.com/anonto42/vaxtop/backend/internal/models"
	"github.com/anonto42/vaxtop/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likes    repositories.LikeRepository
	prefs    repositories.PreferencesRepository
	data     repositories.DataRepository
	notifier notifier
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likes repositories.LikeRepository, prefs repositories.PreferencesRepository, data repositories.DataRepository, logger *zap.Logger) *LikeHandler {
	return &LikeHandler{
		likes:    likes,
		prefs:    prefs,
		data:     data,
		notifier: notifier{prefs: prefs, logger: logger},
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(public, api *echo.Group) {
	public.GET("/products/:id/likes/count", h.GetLikesCount)

	api.POST("/products/:id/likes", h.LikeProduct)
	api.DELETE("/products/:id/likes", h.UnlikeProduct)
	api.GET("/products/:id/likes/status", h.GetLikeStatus)
	api.GET("/likes", h.GetMyLikes)
}

// LikeProduct handles liking a product. Liking twice is not an error.
func (h *LikeHandler) LikeProduct(c echo.Context) error {
	ctx := c.Request().Context()
	currentUserID := getUserIDFromContext(c)
	productID := c.Param("id")

	added, err := h.likes.AddLike(ctx, currentUserID, productID)
	if err != nil {
		return httpError(err)
	}
	if err := h.prefs.AddLikedProduct(ctx, currentUserID, productID); err != nil {
		return httpError(err)
	}

	if added {
		if owner := productOwner(c, h.data, productID); owner != "" {
			h.notifier.push(ctx, owner, models.BellNotification{
				Type:       models.NotificationLike,
				Message:    "Someone liked your product",
				ProductID:  productID,
				FromUserID: currentUserID,
			})
		}
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	return c.JSON(status, echo.Map{"success": true, "liked": true})
}

// UnlikeProduct handles unliking a product
func (h *LikeHandler) UnlikeProduct(c echo.Context) error {
	ctx := c.Request().Context()
	currentUserID := getUserIDFromContext(c)
	productID := c.Param("id")

	if err := h.likes.RemoveLike(ctx, currentUserID, productID); err != nil {
		return httpError(err)
	}
	if err := h.prefs.RemoveLikedProduct(ctx, currentUserID, productID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "liked": false})
}

// GetLikesCount counts the likes a product received on this device
func (h *LikeHandler) GetLikesCount(c echo.Context) error {
	count, err := h.likes.GetLikesCount(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"count": count}})
}

func (h *LikeHandler) GetLikeStatus(c echo.Context) error {
	liked, err := h.likes.HasLiked(c.Request().Context(), getUserIDFromContext(c), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"liked": liked}})
}

func (h *LikeHandler) GetMyLikes(c echo.Context) error {
	likes, err := h.likes.GetUserLikes(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": likes})
}
