package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/vaxtop/backend/internal/models"
)

// AddNotification assigns an id, appends notification to the user's log and
// trims the log to the retention limit, evicting the oldest entries.
func (r *KVPreferencesRepository) AddNotification(ctx context.Context, userID string, notification models.BellNotification) (*models.BellNotification, error) {
	if !notification.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNotificationType, notification.Type)
	}

	now := r.now().UTC()
	notification.ID = newID("notif", now, 9)
	notification.UserID = userID
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = now
	}

	var notifications []models.BellNotification
	if _, err := r.loadLenient(ctx, r.keys.Notifications(userID), &notifications); err != nil {
		return nil, err
	}
	notifications = append(notifications, notification)
	if r.notificationLimit > 0 && len(notifications) > r.notificationLimit {
		notifications = notifications[len(notifications)-r.notificationLimit:]
	}

	if err := r.save(ctx, r.keys.Notifications(userID), notifications); err != nil {
		return nil, err
	}
	return &notification, nil
}

// GetNotifications returns the log in insertion order.
func (r *KVPreferencesRepository) GetNotifications(ctx context.Context, userID string) ([]models.BellNotification, error) {
	notifications := []models.BellNotification{}
	if _, err := r.load(ctx, r.keys.Notifications(userID), &notifications); err != nil {
		return []models.BellNotification{}, err
	}
	if notifications == nil {
		notifications = []models.BellNotification{}
	}
	return notifications, nil
}

func (r *KVPreferencesRepository) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	notifications, err := r.GetNotifications(ctx, userID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, n := range notifications {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

// MarkNotificationAsRead is a no-op for unknown ids.
func (r *KVPreferencesRepository) MarkNotificationAsRead(ctx context.Context, userID, notificationID string) error {
	return r.markRead(ctx, userID, func(n *models.BellNotification) bool {
		return n.ID == notificationID
	})
}

func (r *KVPreferencesRepository) MarkAllNotificationsAsRead(ctx context.Context, userID string) error {
	return r.markRead(ctx, userID, func(*models.BellNotification) bool { return true })
}

func (r *KVPreferencesRepository) ClearNotifications(ctx context.Context, userID string) error {
	return r.remove(ctx, r.keys.Notifications(userID))
}

func (r *KVPreferencesRepository) markRead(ctx context.Context, userID string, match func(*models.BellNotification) bool) error {
	var notifications []models.BellNotification
	found, err := r.loadLenient(ctx, r.keys.Notifications(userID), &notifications)
	if err != nil || !found {
		return err
	}

	changed := false
	for i := range notifications {
		if !notifications[i].Read && match(&notifications[i]) {
			notifications[i].Read = true
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return r.save(ctx, r.keys.Notifications(userID), notifications)
}
