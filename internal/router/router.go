package router

import (
	"context"
	"fmt"

	"github.com/anonto42/vaxtop/backend/internal/auth"
	"github.com/anonto42/vaxtop/backend/internal/handlers"
	"github.com/anonto42/vaxtop/backend/internal/middleware"
	"github.com/anonto42/vaxtop/backend/internal/repositories"
	"github.com/anonto42/vaxtop/backend/pkg/config"
	"github.com/anonto42/vaxtop/backend/pkg/kvstore"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Dependencies are what SetupRoutes wires into the handlers
type Dependencies struct {
	Store    kvstore.Store
	Config   *config.Config
	Logger   *zap.Logger
	Verifier auth.IdentityVerifier // optional, enables /auth/firebase-login
}

// SetupRoutes configures all application routes and injects dependencies.
// It restores the persisted sign-in state and returns the auth manager.
func SetupRoutes(ctx context.Context, e *echo.Echo, deps Dependencies) (*auth.Manager, error) {
	cfg := deps.Config
	log := deps.Logger
	opts := []repositories.Option{
		repositories.WithLogger(log),
		repositories.WithKeys(repositories.NewKeys(cfg.StorageNamespace)),
	}

	// --- Initialize Repositories ---
	sessionRepo, err := repositories.NewSessionRepository(ctx, deps.Store, cfg.SessionTTLDays, opts...)
	if err != nil {
		return nil, fmt.Errorf("session repository: %w", err)
	}
	prefsRepo := repositories.NewPreferencesRepository(deps.Store, cfg.NotificationLimit, opts...)
	userRepo := repositories.NewUserRepository(deps.Store, opts...)
	profileRepo := repositories.NewProfileRepository(deps.Store, opts...)
	commentRepo := repositories.NewCommentRepository(deps.Store, opts...)
	likeRepo := repositories.NewLikeRepository(deps.Store, opts...)
	dataRepo := repositories.NewDataRepository(deps.Store, opts...)

	managerOpts := []auth.Option{auth.WithLogger(log)}
	if deps.Verifier != nil {
		managerOpts = append(managerOpts, auth.WithIdentityVerifier(deps.Verifier))
	}
	manager := auth.NewManager(sessionRepo, prefsRepo, userRepo, managerOpts...)
	state := manager.Restore(ctx)
	log.Info("auth state restored", zap.String("status", string(state.Status)))

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTAccessExpiry)

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	public := e.Group("/api/v1")
	authGroup := e.Group("/api/v1/auth")

	// --- Protected routes (require a token bound to the current session) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(tokens, manager))

	handlers.NewAuthHandler(manager, tokens).RegisterAuthRoutes(authGroup, api)
	handlers.NewPreferencesHandler(prefsRepo, log).RegisterPreferencesRoutes(api)
	handlers.NewNotificationHandler(prefsRepo).RegisterNotificationRoutes(api)
	handlers.NewUserHandler(userRepo).RegisterUserRoutes(api)
	handlers.NewProfileHandler(profileRepo).RegisterProfileRoutes(public, api)
	handlers.NewCommentHandler(commentRepo, dataRepo, prefsRepo, manager, log).RegisterCommentRoutes(public, api)
	handlers.NewLikeHandler(likeRepo, prefsRepo, dataRepo, log).RegisterLikeRoutes(public, api)
	handlers.NewDataHandler(dataRepo, manager).RegisterDataRoutes(public, api)

	log.Debug("all routes configured")
	return manager, nil
}
