package models

import "time"

// NotificationType is the kind of bell notification.
type NotificationType string

const (
	NotificationFollow  NotificationType = "follow"
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationSale    NotificationType = "sale"
)

// Valid reports whether t is one of the known notification types.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationFollow, NotificationLike, NotificationComment, NotificationSale:
		return true
	}
	return false
}

// BellNotification is one entry of a user's in-app notification log.
type BellNotification struct {
	ID         string           `json:"id"`
	UserID     string           `json:"userId"`
	Type       NotificationType `json:"type" validate:"required,oneof=follow like comment sale"`
	Message    string           `json:"message" validate:"required,max=500"`
	ProductID  string           `json:"productId,omitempty"`
	FromUserID string           `json:"fromUserId,omitempty"`
	Read       bool             `json:"read"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// CreateNotificationRequest defines the request body for pushing a notification to a user
type CreateNotificationRequest struct {
	UserID     string           `json:"userId" validate:"required"`
	Type       NotificationType `json:"type" validate:"required,oneof=follow like comment sale"`
	Message    string           `json:"message" validate:"required,min=1,max=500"`
	ProductID  string           `json:"productId,omitempty"`
	FromUserID string           `json:"fromUserId,omitempty"`
}
