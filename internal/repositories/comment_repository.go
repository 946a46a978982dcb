package repositories

import (
	"context"

	"github.com/anonto42/vaxtop/backend/internal/models"
	"github.com/anonto42/vaxtop/backend/pkg/kvstore"
)

// CommentRepository defines the product comment operations
type CommentRepository interface {
	AddComment(ctx context.Context, userID, userName, productID, text string) (*models.Comment, error)
	GetProductComments(ctx context.Context, productID string) ([]models.Comment, error)
	DeleteComment(ctx context.Context, productID, commentID string) error
	UpdateComment(ctx context.Context, productID, commentID, text string) (*models.Comment, error)
	GetCommentsCount(ctx context.Context, productID string) (int, error)
	ClearProductComments(ctx context.Context, productID string) error
}

// KVCommentRepository implements CommentRepository on a key-value store
type KVCommentRepository struct {
	base
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(store kvstore.Store, opts ...Option) *KVCommentRepository {
	return &KVCommentRepository{base: newBase(store, opts)}
}

func (r *KVCommentRepository) AddComment(ctx context.Context, userID, userName, productID, text string) (*models.Comment, error) {
	now := r.now().UTC()
	comment := models.Comment{
		ID:        newID("comment", now, 9),
		UserID:    userID,
		UserName:  userName,
		ProductID: productID,
		Text:      text,
		CreatedAt: now,
	}

	comments, err := r.listLenient(ctx, productID)
	if err != nil {
		return nil, err
	}
	comments = append(comments, comment)
	if err := r.save(ctx, r.keys.Comments(productID), comments); err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetProductComments returns the comments of a product oldest first.
func (r *KVCommentRepository) GetProductComments(ctx context.Context, productID string) ([]models.Comment, error) {
	comments := []models.Comment{}
	if _, err := r.load(ctx, r.keys.Comments(productID), &comments); err != nil {
		return []models.Comment{}, err
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}

// DeleteComment is a no-op for unknown ids.
func (r *KVCommentRepository) DeleteComment(ctx context.Context, productID, commentID string) error {
	comments, err := r.listLenient(ctx, productID)
	if err != nil {
		return err
	}
	filtered := make([]models.Comment, 0, len(comments))
	for _, c := range comments {
		if c.ID != commentID {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == len(comments) {
		return nil
	}
	return r.save(ctx, r.keys.Comments(productID), filtered)
}

func (r *KVCommentRepository) UpdateComment(ctx context.Context, productID, commentID, text string) (*models.Comment, error) {
	comments, err := r.listLenient(ctx, productID)
	if err != nil {
		return nil, err
	}
	for i := range comments {
		if comments[i].ID == commentID {
			comments[i].Text = text
			if err := r.save(ctx, r.keys.Comments(productID), comments); err != nil {
				return nil, err
			}
			updated := comments[i]
			return &updated, nil
		}
	}
	return nil, ErrNotFound
}

func (r *KVCommentRepository) GetCommentsCount(ctx context.Context, productID string) (int, error) {
	comments, err := r.GetProductComments(ctx, productID)
	return len(comments), err
}

func (r *KVCommentRepository) ClearProductComments(ctx context.Context, productID string) error {
	return r.remove(ctx, r.keys.Comments(productID))
}

func (r *KVCommentRepository) listLenient(ctx context.Context, productID string) ([]models.Comment, error) {
	var comments []models.Comment
	if _, err := r.loadLenient(ctx, r.keys.Comments(productID), &comments); err != nil {
		return nil, err
	}
	return comments, nil
}
