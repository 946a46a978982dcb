package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/vaxtop/backend/internal/auth"
	"github.com/anonto42/vaxtop/backend/internal/router"
	"github.com/anonto42/vaxtop/backend/pkg/config"
	"github.com/anonto42/vaxtop/backend/pkg/firebase"
	"github.com/anonto42/vaxtop/backend/pkg/logger"
	"github.com/anonto42/vaxtop/backend/validators"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg := config.Load()

	zl, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, zl)
	stop()

	if err != nil {
		zl.Error("server stopped with error", zap.Error(err))
	}
	_ = zl.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, zl *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.UsesDefaultJWTSecret() {
		zl.Warn("JWT_SECRET is not set, signing tokens with the development default")
	}

	// Initialize storage
	store, err := config.OpenStorage(ctx, cfg, zl)
	if err != nil {
		return fmt.Errorf("opening %s storage: %w", cfg.StorageDriver, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			zl.Warn("closing storage failed", zap.Error(err))
		}
	}()

	// Initialize Firebase when credentials are configured
	var verifier auth.IdentityVerifier
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			return fmt.Errorf("initializing firebase: %w", err)
		}
		verifier = firebaseApp.Verifier()
	} else {
		zl.Info("firebase credentials not configured, firebase login disabled")
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	// Setup global middleware
	config.SetupMiddleware(e, zl)

	// Setup routes and dependencies
	if _, err := router.SetupRoutes(ctx, e, router.Dependencies{
		Store:    store,
		Config:   cfg,
		Logger:   zl,
		Verifier: verifier,
	}); err != nil {
		return fmt.Errorf("setting up routes: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zl.Info("server starting", zap.String("port", cfg.Port), zap.String("storage", cfg.StorageDriver))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		zl.Info("server shutting down")
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
