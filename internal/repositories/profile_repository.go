package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anonto42/vaxtop/backend/internal/models"
	"github.com/anonto42/vaxtop/backend/pkg/kvstore"
	"go.uber.org/zap"
)

// ProfileRepository defines the public profile operations
type ProfileRepository interface {
	SaveProfile(ctx context.Context, userID string, profile *models.UserProfile) error
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	UpdateProfileField(ctx context.Context, userID, field string, value any) (*models.UserProfile, error)
	DeleteProfile(ctx context.Context, userID string) error
	ProfileExists(ctx context.Context, userID string) (bool, error)
	GetAllProfiles(ctx context.Context) ([]models.UserProfile, error)
	SearchProfilesByName(ctx context.Context, name string) ([]models.UserProfile, error)
}

// profileFields are the JSON names UpdateProfileField accepts.
var profileFields = map[string]struct{}{
	"name":         {},
	"email":        {},
	"profileImage": {},
	"bio":          {},
	"phone":        {},
	"website":      {},
	"city":         {},
	"country":      {},
	"joinedDate":   {},
	"isVerified":   {},
	"googleId":     {},
}

// KVProfileRepository implements ProfileRepository on a key-value store
type KVProfileRepository struct {
	base
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(store kvstore.Store, opts ...Option) *KVProfileRepository {
	return &KVProfileRepository{base: newBase(store, opts)}
}

func (r *KVProfileRepository) SaveProfile(ctx context.Context, userID string, profile *models.UserProfile) error {
	return r.save(ctx, r.keys.Profile(userID), profile)
}

// GetProfile returns nil when the user has no profile.
func (r *KVProfileRepository) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	found, err := r.load(ctx, r.keys.Profile(userID), &profile)
	if err != nil || !found {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfileField sets one field, addressed by its JSON name, on an
// existing profile.
func (r *KVProfileRepository) UpdateProfileField(ctx context.Context, userID, field string, value any) (*models.UserProfile, error) {
	if _, ok := profileFields[field]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	profile, err := r.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrNotFound
	}

	raw, err := json.Marshal(profile)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	fields[field] = value

	raw, err = json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFieldValue, field, err)
	}
	var updated models.UserProfile
	if err := json.Unmarshal(raw, &updated); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFieldValue, field, err)
	}
	updated.ID = profile.ID

	if err := r.SaveProfile(ctx, userID, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *KVProfileRepository) DeleteProfile(ctx context.Context, userID string) error {
	return r.remove(ctx, r.keys.Profile(userID))
}

func (r *KVProfileRepository) ProfileExists(ctx context.Context, userID string) (bool, error) {
	_, ok, err := r.store.Get(ctx, r.keys.Profile(userID))
	return ok, err
}

// GetAllProfiles scans every stored profile. Undecodable entries are skipped.
func (r *KVProfileRepository) GetAllProfiles(ctx context.Context) ([]models.UserProfile, error) {
	keys, err := r.store.Keys(ctx, r.keys.ProfilePrefix())
	if err != nil {
		return []models.UserProfile{}, err
	}

	profiles := make([]models.UserProfile, 0, len(keys))
	for _, key := range keys {
		var profile models.UserProfile
		found, err := r.load(ctx, key, &profile)
		if errors.Is(err, ErrCorruptRecord) {
			r.logger.Warn("skipping corrupt profile", zap.String("key", key))
			continue
		}
		if err != nil {
			return []models.UserProfile{}, err
		}
		if found {
			profiles = append(profiles, profile)
		}
	}
	return profiles, nil
}

// SearchProfilesByName matches a case-insensitive substring of the name.
func (r *KVProfileRepository) SearchProfilesByName(ctx context.Context, name string) ([]models.UserProfile, error) {
	profiles, err := r.GetAllProfiles(ctx)
	if err != nil {
		return profiles, err
	}
	needle := strings.ToLower(name)
	matches := make([]models.UserProfile, 0)
	for _, p := range profiles {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}
