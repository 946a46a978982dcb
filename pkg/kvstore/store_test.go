package kvstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*GormStore)(nil)
	_ Store = (*MongoStore)(nil)
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "kv.sqlite")
	store, err := NewSQLiteStore(SQLiteStoreConfig{DSN: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func backends(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": newTestSQLiteStore(t),
	}
}

func TestStore_GetSetRemove(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set(ctx, "vaxtopUser", `{"id":"u1"}`))
			v, ok, err := s.Get(ctx, "vaxtopUser")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `{"id":"u1"}`, v)

			require.NoError(t, s.Set(ctx, "vaxtopUser", `"guest"`))
			v, _, err = s.Get(ctx, "vaxtopUser")
			require.NoError(t, err)
			assert.Equal(t, `"guest"`, v)

			require.NoError(t, s.Remove(ctx, "vaxtopUser"))
			require.NoError(t, s.Remove(ctx, "vaxtopUser"))
			_, ok, err = s.Get(ctx, "vaxtopUser")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStore_KeysByPrefix(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{
				"vaxtopUserLikes_u2",
				"vaxtopUserLikes_u1",
				"vaxtopUser",
				"vaxtopProfile_u1",
				"vaxtopUserLikes_%",
			} {
				require.NoError(t, s.Set(ctx, k, "[]"))
			}

			keys, err := s.Keys(ctx, "vaxtopUserLikes_")
			require.NoError(t, err)
			assert.Equal(t, []string{"vaxtopUserLikes_%", "vaxtopUserLikes_u1", "vaxtopUserLikes_u2"}, keys)

			keys, err = s.Keys(ctx, "nothing")
			require.NoError(t, err)
			assert.Empty(t, keys)
		})
	}
}

func TestMemoryStore_ClosedIsUnavailable(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Close())

	err := s.Set(ctx, "k", "v")
	assert.True(t, errors.Is(err, ErrUnavailable))

	_, _, err = s.Get(ctx, "k")
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestSQLiteStore_RequiresDSN(t *testing.T) {
	_, err := NewSQLiteStore(SQLiteStoreConfig{})
	assert.Error(t, err)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `vaxtop\_a\%b\\`, escapeLike(`vaxtop_a%b\`))
}
