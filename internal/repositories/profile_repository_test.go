package repositories

import (
	"context"
	"testing"

	"github.com/anonto42/vaxtop/backend/internal/models"
	"github.com/anonto42/vaxtop/backend/pkg/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository(kvstore.NewMemoryStore())

	exists, err := repo.ProfileExists(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, exists)

	profile := &models.UserProfile{ID: "u1", Name: "Dana Levi", Email: "dana@example.com", JoinedDate: "2026-01-01"}
	require.NoError(t, repo.SaveProfile(ctx, "u1", profile))

	got, err := repo.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, profile, got)

	updated, err := repo.UpdateProfileField(ctx, "u1", "city", "Haifa")
	require.NoError(t, err)
	assert.Equal(t, "Haifa", updated.City)
	assert.Equal(t, "Dana Levi", updated.Name)

	updated, err = repo.UpdateProfileField(ctx, "u1", "isVerified", true)
	require.NoError(t, err)
	assert.True(t, updated.IsVerified)

	got, err = repo.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Haifa", got.City)
	assert.True(t, got.IsVerified)

	require.NoError(t, repo.DeleteProfile(ctx, "u1"))
	got, err = repo.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestProfileRepository_UpdateProfileFieldErrors(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository(kvstore.NewMemoryStore())

	_, err := repo.UpdateProfileField(ctx, "u1", "bio", "hi")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.SaveProfile(ctx, "u1", &models.UserProfile{ID: "u1", Name: "Dana"}))

	_, err = repo.UpdateProfileField(ctx, "u1", "password", "x")
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = repo.UpdateProfileField(ctx, "u1", "isVerified", "yes")
	assert.ErrorIs(t, err, ErrInvalidFieldValue)
}

func TestProfileRepository_ScanAndSearch(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	repo := NewProfileRepository(store)

	require.NoError(t, repo.SaveProfile(ctx, "u1", &models.UserProfile{ID: "u1", Name: "Dana Levi"}))
	require.NoError(t, repo.SaveProfile(ctx, "u2", &models.UserProfile{ID: "u2", Name: "Noa Cohen"}))
	require.NoError(t, repo.SaveProfile(ctx, "u3", &models.UserProfile{ID: "u3", Name: "Daniel Katz"}))
	require.NoError(t, store.Set(ctx, "vaxtopProfile_broken", "{"))
	require.NoError(t, store.Set(ctx, "vaxtopUserPreferences_u1", "{}"))

	all, err := repo.GetAllProfiles(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	matches, err := repo.SearchProfilesByName(ctx, "DAN")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "u1", matches[0].ID)
	assert.Equal(t, "u3", matches[1].ID)

	matches, err = repo.SearchProfilesByName(ctx, "zzz")
	require.NoError(t, err)
	assert.Empty(t, matches)
}
