package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/vaxtop/backend/internal/models"
	"github.com/anonto42/vaxtop/backend/pkg/kvstore"
	"go.uber.org/zap"
)

// LikeRepository defines the like operations
type LikeRepository interface {
	AddLike(ctx context.Context, userID, productID string) (bool, error)
	RemoveLike(ctx context.Context, userID, productID string) error
	HasLiked(ctx context.Context, userID, productID string) (bool, error)
	GetUserLikes(ctx context.Context, userID string) ([]models.UserLike, error)
	GetLikesCount(ctx context.Context, productID string) (int, error)
	ClearUserLikes(ctx context.Context, userID string) error
}

// KVLikeRepository implements LikeRepository on a key-value store
type KVLikeRepository struct {
	base
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(store kvstore.Store, opts ...Option) *KVLikeRepository {
	return &KVLikeRepository{base: newBase(store, opts)}
}

// AddLike records the like once. It reports whether a new record was written.
func (r *KVLikeRepository) AddLike(ctx context.Context, userID, productID string) (bool, error) {
	likes, err := r.listLenient(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, l := range likes {
		if l.ProductID == productID {
			return false, nil
		}
	}

	likes = append(likes, models.UserLike{
		UserID:    userID,
		ProductID: productID,
		LikedAt:   r.now().UTC(),
	})
	if err := r.save(ctx, r.keys.Likes(userID), likes); err != nil {
		return false, err
	}
	return true, nil
}

func (r *KVLikeRepository) RemoveLike(ctx context.Context, userID, productID string) error {
	likes, err := r.listLenient(ctx, userID)
	if err != nil {
		return err
	}
	filtered := make([]models.UserLike, 0, len(likes))
	for _, l := range likes {
		if l.ProductID != productID {
			filtered = append(filtered, l)
		}
	}
	if len(filtered) == len(likes) {
		return nil
	}
	return r.save(ctx, r.keys.Likes(userID), filtered)
}

func (r *KVLikeRepository) HasLiked(ctx context.Context, userID, productID string) (bool, error) {
	likes, err := r.GetUserLikes(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, l := range likes {
		if l.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (r *KVLikeRepository) GetUserLikes(ctx context.Context, userID string) ([]models.UserLike, error) {
	likes := []models.UserLike{}
	if _, err := r.load(ctx, r.keys.Likes(userID), &likes); err != nil {
		return []models.UserLike{}, err
	}
	if likes == nil {
		likes = []models.UserLike{}
	}
	return likes, nil
}

// GetLikesCount scans the likes of every user on this device.
func (r *KVLikeRepository) GetLikesCount(ctx context.Context, productID string) (int, error) {
	keys, err := r.store.Keys(ctx, r.keys.LikesPrefix())
	if err != nil {
		return 0, err
	}

	count := 0
	for _, key := range keys {
		var likes []models.UserLike
		_, err := r.load(ctx, key, &likes)
		if errors.Is(err, ErrCorruptRecord) {
			r.logger.Warn("skipping corrupt likes record", zap.String("key", key))
			continue
		}
		if err != nil {
			return 0, err
		}
		for _, l := range likes {
			if l.ProductID == productID {
				count++
			}
		}
	}
	return count, nil
}

func (r *KVLikeRepository) ClearUserLikes(ctx context.Context, userID string) error {
	return r.remove(ctx, r.keys.Likes(userID))
}

func (r *KVLikeRepository) listLenient(ctx context.Context, userID string) ([]models.UserLike, error) {
	var likes []models.UserLike
	if _, err := r.loadLenient(ctx, r.keys.Likes(userID), &likes); err != nil {
		return nil, err
	}
	return likes, nil
}
