package repositories

import (
	"context"
	"testing"

	"github.com/anonto42/vaxtop/backend/pkg/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeRepository_AddLikeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewLikeRepository(kvstore.NewMemoryStore())

	added, err := repo.AddLike(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.AddLike(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.False(t, added)

	likes, err := repo.GetUserLikes(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, "p1", likes[0].ProductID)

	liked, err := repo.HasLiked(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.True(t, liked)

	require.NoError(t, repo.RemoveLike(ctx, "u1", "p1"))
	liked, err = repo.HasLiked(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestLikeRepository_GetLikesCountScansAllUsers(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	repo := NewLikeRepository(store)

	for _, userID := range []string{"u1", "u2", "u3"} {
		_, err := repo.AddLike(ctx, userID, "p1")
		require.NoError(t, err)
	}
	_, err := repo.AddLike(ctx, "u1", "p2")
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "vaxtopUserLikes_corrupt", "[{"))

	count, err := repo.GetLikesCount(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, repo.ClearUserLikes(ctx, "u2"))
	count, err = repo.GetLikesCount(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = repo.GetLikesCount(ctx, "nobody-liked-this")
	require.NoError(t, err)
	assert.Zero(t, count)
}
