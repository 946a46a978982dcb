package handlers

import (
	"net/http"

	"github.com/anonto42/vaxtop/backend/internal/auth"
	"github.com/anonto42/vaxtop/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles sign-in state and device session requests
type AuthHandler struct {
	manager *auth.Manager
	tokens  *auth.TokenManager
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(manager *auth.Manager, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{manager: manager, tokens: tokens}
}

// RegisterAuthRoutes registers authentication-related routes. public is
// reachable without a token; api sits behind the session middleware.
func (h *AuthHandler) RegisterAuthRoutes(public, api *echo.Group) {
	public.GET("/state", h.GetState)
	public.POST("/signup", h.Signup)
	public.POST("/signin", h.SignIn)
	public.POST("/guest", h.EnterAsGuest)
	public.POST("/firebase-login", h.FirebaseLogin)

	api.POST("/auth/logout", h.Logout)
	api.POST("/auth/logout-all", h.LogoutAllDevices)
	api.GET("/session", h.GetSession)
	api.POST("/session/activity", h.TouchSession)
	api.GET("/devices", h.GetDevices)
	api.PUT("/me", h.UpdateMe)
}

// GetState returns the sign-in state and device id
func (h *AuthHandler) GetState(c echo.Context) error {
	ctx := c.Request().Context()
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"state":    h.manager.State(),
			"deviceId": h.manager.DeviceID(ctx),
		},
	})
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	session, user, err := h.manager.SignUp(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return h.sessionResponse(c, http.StatusCreated, session, user)
}

// SignIn handles local user authentication with email and password
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SigninRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	session, user, err := h.manager.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}
	return h.sessionResponse(c, http.StatusOK, session, user)
}

// FirebaseLogin handles Firebase ID token verification and starts a session
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	session, user, err := h.manager.FirebaseLogin(c.Request().Context(), req.IDToken)
	if err != nil {
		return httpError(err)
	}
	return h.sessionResponse(c, http.StatusOK, session, user)
}

func (h *AuthHandler) EnterAsGuest(c echo.Context) error {
	state := h.manager.EnterAsGuest(c.Request().Context())
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": state})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	h.manager.Logout(c.Request().Context())
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Logged out on this device"})
}

func (h *AuthHandler) LogoutAllDevices(c echo.Context) error {
	h.manager.LogoutAllDevices(c.Request().Context())
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Logged out on all devices"})
}

// GetSession returns the current device session
func (h *AuthHandler) GetSession(c echo.Context) error {
	ctx := c.Request().Context()
	session := h.manager.SessionInfo(ctx)
	if session == nil {
		return echo.NewHTTPError(http.StatusNotFound, "No active session")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"session": session,
			"valid":   h.manager.IsSessionValid(ctx),
		},
	})
}

func (h *AuthHandler) TouchSession(c echo.Context) error {
	if !h.manager.Touch(c.Request().Context()) {
		return echo.NewHTTPError(http.StatusNotFound, "No active session")
	}
	return c.NoContent(http.StatusNoContent)
}

// GetDevices lists the active sessions of the authenticated user
func (h *AuthHandler) GetDevices(c echo.Context) error {
	devices, err := h.manager.Devices(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": devices})
}

// UpdateMe replaces the authenticated user's record
func (h *AuthHandler) UpdateMe(c echo.Context) error {
	var user models.User
	if err := bindAndValidate(c, &user); err != nil {
		return err
	}
	if user.ID != getUserIDFromContext(c) {
		return echo.NewHTTPError(http.StatusForbidden, "Cannot update another user")
	}
	if !h.manager.UpdateUser(c.Request().Context(), user) {
		return echo.NewHTTPError(http.StatusConflict, "User is not signed in on this device")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": user})
}

func (h *AuthHandler) sessionResponse(c echo.Context, status int, session *models.DeviceSession, user *models.User) error {
	accessToken, err := h.tokens.Issue(session)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}
	return c.JSON(status, echo.Map{
		"success": true,
		"data": models.SessionResponse{
			AccessToken: accessToken,
			Session:     session,
			User:        user,
		},
	})
}
