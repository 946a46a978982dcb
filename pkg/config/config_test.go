package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/anonto42/vaxtop/backend/pkg/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORAGE_DRIVER", "SESSION_TTL_DAYS", "NOTIFICATION_LIMIT", "JWT_ACCESS_EXPIRY"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.StorageDriver)
	assert.Equal(t, 30, cfg.SessionTTLDays)
	assert.Equal(t, 50, cfg.NotificationLimit)
	assert.Equal(t, 72*time.Hour, cfg.JWTAccessExpiry)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", DriverMemory)
	t.Setenv("SESSION_TTL_DAYS", "0")
	t.Setenv("NOTIFICATION_LIMIT", "not-a-number")
	t.Setenv("JWT_ACCESS_EXPIRY", "15m")

	cfg := Load()
	assert.Equal(t, DriverMemory, cfg.StorageDriver)
	assert.Equal(t, 0, cfg.SessionTTLDays)
	assert.Equal(t, 50, cfg.NotificationLimit)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiry)
}

func TestOpenStorage(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()

	store, err := OpenStorage(ctx, &Config{StorageDriver: DriverMemory}, log)
	require.NoError(t, err)
	assert.IsType(t, &kvstore.MemoryStore{}, store)

	path := filepath.Join(t.TempDir(), "vaxtop.db")
	store, err = OpenStorage(ctx, &Config{StorageDriver: DriverSQLite, SQLitePath: path}, log)
	require.NoError(t, err)
	assert.IsType(t, &kvstore.SQLiteStore{}, store)
	require.NoError(t, store.Close())

	_, err = OpenStorage(ctx, &Config{StorageDriver: DriverPostgres}, log)
	assert.Error(t, err)

	_, err = OpenStorage(ctx, &Config{StorageDriver: "redis"}, log)
	assert.Error(t, err)
}

func TestValidate_DefaultJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	t.Run("development allows the default", func(t *testing.T) {
		t.Setenv("ENV", "development")
		cfg := Load()
		assert.True(t, cfg.UsesDefaultJWTSecret())
		assert.NoError(t, cfg.Validate())
	})

	t.Run("production requires a secret", func(t *testing.T) {
		t.Setenv("ENV", "production")
		cfg := Load()
		assert.ErrorIs(t, cfg.Validate(), ErrDefaultJWTSecret)
	})

	t.Run("explicit secret passes", func(t *testing.T) {
		t.Setenv("ENV", "production")
		t.Setenv("JWT_SECRET", "a-real-secret")
		cfg := Load()
		assert.False(t, cfg.UsesDefaultJWTSecret())
		assert.NoError(t, cfg.Validate())
	})
}
