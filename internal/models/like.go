package models

import "time"

// UserLike records that a user liked a product. One record per (user, product).
type UserLike struct {
	UserID    string    `json:"userId"`
	ProductID string    `json:"productId"`
	LikedAt   time.Time `json:"likedAt"`
}
