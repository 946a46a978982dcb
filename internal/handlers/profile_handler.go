package handlers

import (
	"net/http"

	"github.com/anonto42/vaxtop/backend/internal/models"
	"github.com/anonto42/vaxtop/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// ProfileHandler handles HTTP requests related to public profiles
type ProfileHandler struct {
	profiles repositories.ProfileRepository
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profiles repositories.ProfileRepository) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// RegisterProfileRoutes registers profile routes
func (h *ProfileHandler) RegisterProfileRoutes(public, api *echo.Group) {
	public.GET("/profiles", h.GetProfiles)
	public.GET("/profiles/search", h.SearchProfiles)
	public.GET("/profiles/:id", h.GetProfile)

	api.PUT("/profile", h.SaveProfile)      // Replace own profile
	api.PATCH("/profile", h.UpdateField)    // Change one field of own profile
	api.DELETE("/profile", h.DeleteProfile) // Delete own profile
}

func (h *ProfileHandler) GetProfiles(c echo.Context) error {
	profiles, err := h.profiles.GetAllProfiles(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": profiles})
}

// SearchProfiles matches profiles by name
func (h *ProfileHandler) SearchProfiles(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query is required")
	}
	profiles, err := h.profiles.SearchProfilesByName(c.Request().Context(), query)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": profiles})
}

func (h *ProfileHandler) GetProfile(c echo.Context) error {
	profile, err := h.profiles.GetProfile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	if profile == nil {
		return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": profile})
}

// SaveProfile stores the caller's profile. The id always comes from the token.
func (h *ProfileHandler) SaveProfile(c echo.Context) error {
	var profile models.UserProfile
	if err := bindAndValidate(c, &profile); err != nil {
		return err
	}
	currentUserID := getUserIDFromContext(c)
	profile.ID = currentUserID

	if err := h.profiles.SaveProfile(c.Request().Context(), currentUserID, &profile); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": profile})
}

func (h *ProfileHandler) UpdateField(c echo.Context) error {
	var req models.UpdateProfileFieldRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	profile, err := h.profiles.UpdateProfileField(c.Request().Context(), getUserIDFromContext(c), req.Field, req.Value)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": profile})
}

func (h *ProfileHandler) DeleteProfile(c echo.Context) error {
	if err := h.profiles.DeleteProfile(c.Request().Context(), getUserIDFromContext(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
