package models

import "time"

// Comment represents a comment on a product
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"` // denormalized at write time
	ProductID string    `json:"productId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}
