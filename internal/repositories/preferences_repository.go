package repositories

import (
	"context"
	"slices"

	"github.com/anonto42/vaxtop/backend/internal/models"
	"github.com/anonto42/vaxtop/backend/pkg/kvstore"
)

// DefaultNotificationLimit is how many bell notifications are retained per user.
const DefaultNotificationLimit = 50

// PreferencesRepository defines the per-user preferences, social-graph and
// bell notification operations
type PreferencesRepository interface {
	InitializePreferences(ctx context.Context, userID string) (*models.UserPreferences, error)
	GetPreferences(ctx context.Context, userID string) (*models.UserPreferences, error)
	SavePreferences(ctx context.Context, userID string, prefs *models.UserPreferences) error

	AddLikedProduct(ctx context.Context, userID, productID string) error
	RemoveLikedProduct(ctx context.Context, userID, productID string) error
	IsProductLiked(ctx context.Context, userID, productID string) (bool, error)

	AddSavedProduct(ctx context.Context, userID, productID string) error
	RemoveSavedProduct(ctx context.Context, userID, productID string) error
	IsProductSaved(ctx context.Context, userID, productID string) (bool, error)

	AddFollowing(ctx context.Context, userID, targetUserID string) error
	RemoveFollowing(ctx context.Context, userID, targetUserID string) error
	IsFollowing(ctx context.Context, userID, targetUserID string) (bool, error)
	AddFollower(ctx context.Context, userID, followerID string) error
	RemoveFollower(ctx context.Context, userID, followerID string) error

	BlockUser(ctx context.Context, userID, targetUserID string) error
	UnblockUser(ctx context.Context, userID, targetUserID string) error
	IsBlocked(ctx context.Context, userID, targetUserID string) (bool, error)

	UpdateNotificationSettings(ctx context.Context, userID string, settings models.NotificationSettings) (*models.UserPreferences, error)
	UpdateDisplay(ctx context.Context, userID string, req models.UpdateDisplayRequest) (*models.UserPreferences, error)

	AddNotification(ctx context.Context, userID string, notification models.BellNotification) (*models.BellNotification, error)
	GetNotifications(ctx context.Context, userID string) ([]models.BellNotification, error)
	GetUnreadCount(ctx context.Context, userID string) (int, error)
	MarkNotificationAsRead(ctx context.Context, userID, notificationID string) error
	MarkAllNotificationsAsRead(ctx context.Context, userID string) error
	ClearNotifications(ctx context.Context, userID string) error
}

// KVPreferencesRepository implements PreferencesRepository on a key-value store
type KVPreferencesRepository struct {
	base
	notificationLimit int
}

// NewPreferencesRepository creates the repository. A notificationLimit of
// zero or less keeps every notification.
func NewPreferencesRepository(store kvstore.Store, notificationLimit int, opts ...Option) *KVPreferencesRepository {
	return &KVPreferencesRepository{base: newBase(store, opts), notificationLimit: notificationLimit}
}

// InitializePreferences returns the stored record, creating and persisting
// the defaults on first access. Existing data is never overwritten.
func (r *KVPreferencesRepository) InitializePreferences(ctx context.Context, userID string) (*models.UserPreferences, error) {
	var prefs models.UserPreferences
	found, err := r.loadLenient(ctx, r.keys.Preferences(userID), &prefs)
	if err != nil {
		return nil, err
	}
	if found {
		prefs.Normalize()
		return &prefs, nil
	}

	defaults := models.DefaultPreferences(userID)
	if err := r.save(ctx, r.keys.Preferences(userID), defaults); err != nil {
		return defaults, err
	}
	return defaults, nil
}

// GetPreferences returns the stored record, or nil when the user has none.
func (r *KVPreferencesRepository) GetPreferences(ctx context.Context, userID string) (*models.UserPreferences, error) {
	var prefs models.UserPreferences
	found, err := r.load(ctx, r.keys.Preferences(userID), &prefs)
	if err != nil || !found {
		return nil, err
	}
	prefs.Normalize()
	return &prefs, nil
}

func (r *KVPreferencesRepository) SavePreferences(ctx context.Context, userID string, prefs *models.UserPreferences) error {
	prefs.Normalize()
	return r.save(ctx, r.keys.Preferences(userID), prefs)
}

// mutate applies fn to the user's record and persists it when fn reports a
// change. With create == false a missing record makes the call a no-op.
func (r *KVPreferencesRepository) mutate(ctx context.Context, userID string, create bool, fn func(*models.UserPreferences) bool) (*models.UserPreferences, error) {
	var prefs *models.UserPreferences
	if create {
		p, err := r.InitializePreferences(ctx, userID)
		if err != nil {
			return nil, err
		}
		prefs = p
	} else {
		var p models.UserPreferences
		found, err := r.loadLenient(ctx, r.keys.Preferences(userID), &p)
		if err != nil || !found {
			return nil, err
		}
		p.Normalize()
		prefs = &p
	}

	if fn(prefs) {
		if err := r.save(ctx, r.keys.Preferences(userID), prefs); err != nil {
			return nil, err
		}
	}
	return prefs, nil
}

func (r *KVPreferencesRepository) contains(ctx context.Context, userID string, pick func(*models.UserPreferences) []string, id string) (bool, error) {
	prefs, err := r.GetPreferences(ctx, userID)
	if err != nil || prefs == nil {
		return false, err
	}
	return slices.Contains(pick(prefs), id), nil
}

func addToSet(set *[]string, id string) bool {
	if slices.Contains(*set, id) {
		return false
	}
	*set = append(*set, id)
	return true
}

func removeFromSet(set *[]string, id string) bool {
	n := len(*set)
	*set = slices.DeleteFunc(*set, func(s string) bool { return s == id })
	return len(*set) != n
}

func (r *KVPreferencesRepository) AddLikedProduct(ctx context.Context, userID, productID string) error {
	_, err := r.mutate(ctx, userID, true, func(p *models.UserPreferences) bool {
		return addToSet(&p.LikedProducts, productID)
	})
	return err
}

func (r *KVPreferencesRepository) RemoveLikedProduct(ctx context.Context, userID, productID string) error {
	_, err := r.mutate(ctx, userID, false, func(p *models.UserPreferences) bool {
		return removeFromSet(&p.LikedProducts, productID)
	})
	return err
}

func (r *KVPreferencesRepository) IsProductLiked(ctx context.Context, userID, productID string) (bool, error) {
	return r.contains(ctx, userID, func(p *models.UserPreferences) []string { return p.LikedProducts }, productID)
}

func (r *KVPreferencesRepository) AddSavedProduct(ctx context.Context, userID, productID string) error {
	_, err := r.mutate(ctx, userID, true, func(p *models.UserPreferences) bool {
		return addToSet(&p.SavedProducts, productID)
	})
	return err
}

func (r *KVPreferencesRepository) RemoveSavedProduct(ctx context.Context, userID, productID string) error {
	_, err := r.mutate(ctx, userID, false, func(p *models.UserPreferences) bool {
		return removeFromSet(&p.SavedProducts, productID)
	})
	return err
}

func (r *KVPreferencesRepository) IsProductSaved(ctx context.Context, userID, productID string) (bool, error) {
	return r.contains(ctx, userID, func(p *models.UserPreferences) []string { return p.SavedProducts }, productID)
}

func (r *KVPreferencesRepository) AddFollowing(ctx context.Context, userID, targetUserID string) error {
	_, err := r.mutate(ctx, userID, true, func(p *models.UserPreferences) bool {
		return addToSet(&p.Following, targetUserID)
	})
	return err
}

func (r *KVPreferencesRepository) RemoveFollowing(ctx context.Context, userID, targetUserID string) error {
	_, err := r.mutate(ctx, userID, false, func(p *models.UserPreferences) bool {
		return removeFromSet(&p.Following, targetUserID)
	})
	return err
}

func (r *KVPreferencesRepository) IsFollowing(ctx context.Context, userID, targetUserID string) (bool, error) {
	return r.contains(ctx, userID, func(p *models.UserPreferences) []string { return p.Following }, targetUserID)
}

func (r *KVPreferencesRepository) AddFollower(ctx context.Context, userID, followerID string) error {
	_, err := r.mutate(ctx, userID, true, func(p *models.UserPreferences) bool {
		return addToSet(&p.Followers, followerID)
	})
	return err
}

func (r *KVPreferencesRepository) RemoveFollower(ctx context.Context, userID, followerID string) error {
	_, err := r.mutate(ctx, userID, false, func(p *models.UserPreferences) bool {
		return removeFromSet(&p.Followers, followerID)
	})
	return err
}

func (r *KVPreferencesRepository) BlockUser(ctx context.Context, userID, targetUserID string) error {
	_, err := r.mutate(ctx, userID, true, func(p *models.UserPreferences) bool {
		return addToSet(&p.BlockedUsers, targetUserID)
	})
	return err
}

func (r *KVPreferencesRepository) UnblockUser(ctx context.Context, userID, targetUserID string) error {
	_, err := r.mutate(ctx, userID, false, func(p *models.UserPreferences) bool {
		return removeFromSet(&p.BlockedUsers, targetUserID)
	})
	return err
}

func (r *KVPreferencesRepository) IsBlocked(ctx context.Context, userID, targetUserID string) (bool, error) {
	return r.contains(ctx, userID, func(p *models.UserPreferences) []string { return p.BlockedUsers }, targetUserID)
}

func (r *KVPreferencesRepository) UpdateNotificationSettings(ctx context.Context, userID string, settings models.NotificationSettings) (*models.UserPreferences, error) {
	return r.mutate(ctx, userID, true, func(p *models.UserPreferences) bool {
		if p.Notifications == settings {
			return false
		}
		p.Notifications = settings
		return true
	})
}

// UpdateDisplay applies the non-empty fields of req.
func (r *KVPreferencesRepository) UpdateDisplay(ctx context.Context, userID string, req models.UpdateDisplayRequest) (*models.UserPreferences, error) {
	return r.mutate(ctx, userID, true, func(p *models.UserPreferences) bool {
		changed := false
		if req.Theme != "" && req.Theme != p.Theme {
			p.Theme = req.Theme
			changed = true
		}
		if req.Language != "" && req.Language != p.Language {
			p.Language = req.Language
			changed = true
		}
		if req.AutoPlay != nil && *req.AutoPlay != p.AutoPlay {
			p.AutoPlay = *req.AutoPlay
			changed = true
		}
		return changed
	})
}
