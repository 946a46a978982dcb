package handlers

import (
	"net/http"

	"github.com/anonto42/vaxtop/backend/internal/auth"
	"github.com/anonto42/vaxtop/backend/internal/models"
	"github.com/anonto42/vaxtop/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CommentHandler handles HTTP requests related to product comments
type CommentHandler struct {
	comments repositories.CommentRepository
	data     repositories.DataRepository
	manager  *auth.Manager
	notifier notifier
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments repositories.CommentRepository, data repositories.DataRepository, prefs repositories.PreferencesRepository, manager *auth.Manager, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{
		comments: comments,
		data:     data,
		manager:  manager,
		notifier: notifier{prefs: prefs, logger: logger},
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(public, api *echo.Group) {
	public.GET("/products/:id/comments", h.GetComments)

	api.POST("/products/:id/comments", h.CreateComment)
	api.PUT("/products/:id/comments/:commentId", h.UpdateComment)
	api.DELETE("/products/:id/comments/:commentId", h.DeleteComment)
	api.DELETE("/products/:id/comments", h.ClearComments)
}

// GetComments returns the comments of a product and their count
func (h *CommentHandler) GetComments(c echo.Context) error {
	comments, err := h.comments.GetProductComments(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"comments": comments,
			"count":    len(comments),
		},
	})
}

// CreateComment adds a comment signed with the caller's display name
func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	currentUserID := getUserIDFromContext(c)
	productID := c.Param("id")

	userName := ""
	if state := h.manager.State(); state.IsAuthenticated() {
		userName = state.User.Name
	}

	comment, err := h.comments.AddComment(ctx, currentUserID, userName, productID, req.Text)
	if err != nil {
		return httpError(err)
	}

	if owner := h.productOwner(c, productID); owner != "" {
		h.notifier.push(ctx, owner, models.BellNotification{
			Type:       models.NotificationComment,
			Message:    userName + " commented on your product",
			ProductID:  productID,
			FromUserID: currentUserID,
		})
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": comment})
}

// UpdateComment changes the text of the caller's own comment
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	var req models.UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	productID, commentID := c.Param("id"), c.Param("commentId")
	if err := h.requireAuthor(c, productID, commentID); err != nil {
		return err
	}

	comment, err := h.comments.UpdateComment(c.Request().Context(), productID, commentID, req.Text)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": comment})
}

// DeleteComment removes the caller's own comment
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	productID, commentID := c.Param("id"), c.Param("commentId")
	if err := h.requireAuthor(c, productID, commentID); err != nil {
		return err
	}
	if err := h.comments.DeleteComment(c.Request().Context(), productID, commentID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ClearComments removes every comment of a product. Only the product owner may do this.
func (h *CommentHandler) ClearComments(c echo.Context) error {
	productID := c.Param("id")
	if h.productOwner(c, productID) != getUserIDFromContext(c) {
		return echo.NewHTTPError(http.StatusForbidden, "Only the product owner can clear comments")
	}
	if err := h.comments.ClearProductComments(c.Request().Context(), productID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CommentHandler) requireAuthor(c echo.Context, productID, commentID string) error {
	comments, err := h.comments.GetProductComments(c.Request().Context(), productID)
	if err != nil {
		return httpError(err)
	}
	for _, comment := range comments {
		if comment.ID != commentID {
			continue
		}
		if comment.UserID != getUserIDFromContext(c) {
			return echo.NewHTTPError(http.StatusForbidden, "You can only change your own comments")
		}
		return nil
	}
	return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
}

func (h *CommentHandler) productOwner(c echo.Context, productID string) string {
	return productOwner(c, h.data, productID)
}
