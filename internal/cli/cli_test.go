package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/anonto42/vaxtop/backend/internal/models"
	"github.com/anonto42/vaxtop/backend/internal/repositories"
	"github.com/anonto42/vaxtop/backend/pkg/config"
	"github.com/anonto42/vaxtop/backend/pkg/kvstore"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// sharedStore survives the Close each command issues, so tests can inspect it.
type sharedStore struct {
	kvstore.Store
}

func (sharedStore) Close() error { return nil }

func newTestEnv(store kvstore.Store) *Env {
	return &Env{
		Config: &config.Config{StorageDriver: config.DriverMemory, StorageNamespace: "vaxtop", SessionTTLDays: 30},
		Logger: zap.NewNop(),
		Open: func(context.Context, *config.Config, *zap.Logger) (kvstore.Store, error) {
			return sharedStore{store}, nil
		},
	}
}

func executeCommand(root *cobra.Command, args ...string) (stdout string, err error) {
	var outBuf, errBuf bytes.Buffer
	root.SetOut(&outBuf)
	root.SetErr(&errBuf)
	root.SetArgs(args)
	err = root.Execute()
	return outBuf.String(), err
}

func seedSession(t *testing.T, store kvstore.Store, userID, email string) *models.DeviceSession {
	t.Helper()
	ctx := context.Background()
	sessions, err := repositories.NewSessionRepository(ctx, store, 30)
	require.NoError(t, err)
	session, err := sessions.CreateSession(ctx, userID, email)
	require.NoError(t, err)
	return session
}

func TestDevices_Text(t *testing.T) {
	store := kvstore.NewMemoryStore()
	session := seedSession(t, store, "u1", "dana@example.com")

	out, err := executeCommand(NewRootCmd(newTestEnv(store)), "devices")
	require.NoError(t, err)
	assert.Contains(t, out, "DEVICE")
	assert.Contains(t, out, session.DeviceID)
	assert.Contains(t, out, "dana@example.com")
}

func TestDevices_JSONFilteredByUser(t *testing.T) {
	store := kvstore.NewMemoryStore()
	seedSession(t, store, "u1", "dana@example.com")

	out, err := executeCommand(NewRootCmd(newTestEnv(store)), "devices", "--user", "u2", "--format", "json")
	require.NoError(t, err)

	var devices []models.DeviceSession
	require.NoError(t, json.Unmarshal([]byte(out), &devices))
	assert.Empty(t, devices)
}

func TestDevices_UnknownFormat(t *testing.T) {
	store := kvstore.NewMemoryStore()
	_, err := executeCommand(NewRootCmd(newTestEnv(store)), "devices", "--format", "xml")
	assert.Error(t, err)
}

func TestSessionsReset(t *testing.T) {
	store := kvstore.NewMemoryStore()
	seedSession(t, store, "u1", "dana@example.com")

	out, err := executeCommand(NewRootCmd(newTestEnv(store)), "sessions", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "sessions reset")

	out, err = executeCommand(NewRootCmd(newTestEnv(store)), "devices")
	require.NoError(t, err)
	assert.Contains(t, out, "no sessions")
}

func TestExportImport_YAMLRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	data := repositories.NewDataRepository(store)
	require.NoError(t, data.SaveSettings(ctx, map[string]any{"theme": "dark"}))

	path := filepath.Join(t.TempDir(), "backup.yaml")
	out, err := executeCommand(NewRootCmd(newTestEnv(store)), "export", "--format", "yaml", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var backup models.Backup
	require.NoError(t, yaml.Unmarshal(raw, &backup))
	require.NotNil(t, backup.Settings)
	assert.JSONEq(t, `{"theme":"dark"}`, *backup.Settings)

	fresh := kvstore.NewMemoryStore()
	_, err = executeCommand(NewRootCmd(newTestEnv(fresh)), "import", path)
	require.NoError(t, err)

	settings, err := repositories.NewDataRepository(fresh).GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dark", settings["theme"])
}

func TestImport_FromStdin(t *testing.T) {
	store := kvstore.NewMemoryStore()
	root := NewRootCmd(newTestEnv(store))
	root.SetIn(bytes.NewBufferString(`{"settings":"{\"autoPlay\":true}","exportDate":"2026-03-01T12:00:00.000Z"}`))

	out, err := executeCommand(root, "import", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "backup imported")

	settings, err := repositories.NewDataRepository(store).GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, true, settings["autoPlay"])
}

func TestImport_MissingFile(t *testing.T) {
	_, err := executeCommand(NewRootCmd(newTestEnv(kvstore.NewMemoryStore())), "import", "/no/such/backup.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestClear_RequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	data := repositories.NewDataRepository(store)
	require.NoError(t, data.SaveSettings(ctx, map[string]any{"theme": "dark"}))

	_, err := executeCommand(NewRootCmd(newTestEnv(store)), "clear")
	require.Error(t, err)

	_, err = executeCommand(NewRootCmd(newTestEnv(store)), "clear", "--yes")
	require.NoError(t, err)

	settings, err := data.GetSettings(ctx)
	require.NoError(t, err)
	assert.Empty(t, settings)
}

func TestDevices_DoesNotCreateDeviceID(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()

	out, err := executeCommand(NewRootCmd(newTestEnv(store)), "devices")
	require.NoError(t, err)
	assert.Contains(t, out, "no sessions")

	_, err = executeCommand(NewRootCmd(newTestEnv(store)), "sessions", "reset")
	require.NoError(t, err)

	keys, err := store.Keys(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}
