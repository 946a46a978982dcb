package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/anonto42/vaxtop/backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:              "0",
		Env:               "development",
		StorageDriver:     config.DriverMemory,
		StorageNamespace:  "vaxtop",
		SessionTTLDays:    30,
		NotificationLimit: 50,
		JWTSecret:         "test-secret",
		JWTAccessExpiry:   time.Hour,
	}
}

func TestRun_RejectsDefaultSecretOutsideDevelopment(t *testing.T) {
	cfg := testConfig()
	cfg.Env = "production"
	cfg.JWTSecret = config.DefaultJWTSecret

	err := run(context.Background(), cfg, zap.NewNop())
	assert.ErrorIs(t, err, config.ErrDefaultJWTSecret)
}

func TestRun_ReturnsStorageErrors(t *testing.T) {
	cfg := testConfig()
	cfg.StorageDriver = "bogus"

	err := run(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}

func TestRun_ReturnsFirebaseErrorsAfterOpeningStorage(t *testing.T) {
	cfg := testConfig()
	cfg.FirebaseCredentialsPath = filepath.Join(t.TempDir(), "missing.json")

	err := run(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "firebase")
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- run(ctx, testConfig(), zap.NewNop()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
