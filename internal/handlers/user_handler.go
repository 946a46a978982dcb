package handlers

import (
	"net/http"

	"github.com/anonto42/vaxtop/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// UserHandler handles lookups in the registered account list
type UserHandler struct {
	users repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users repositories.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterUserRoutes registers user routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/search", h.SearchUsers)
}

// SearchUsers matches registered users by name or email, excluding the caller
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query is required")
	}

	users, err := h.users.SearchUsers(c.Request().Context(), query)
	if err != nil {
		return httpError(err)
	}

	currentUserID := getUserIDFromContext(c)
	filtered := users[:0]
	for _, u := range users {
		if u.ID != currentUserID {
			filtered = append(filtered, u)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": filtered})
}
