package repositories

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/anonto42/vaxtop/backend/internal/models"
	"github.com/anonto42/vaxtop/backend/pkg/kvstore"
	"go.uber.org/zap"
)

// DefaultSessionTTLDays is how long a session lives when no override is given.
const DefaultSessionTTLDays = 30

// SessionRepository defines the device session operations
type SessionRepository interface {
	GetOrCreateDeviceID(ctx context.Context) (string, error)
	CreateSession(ctx context.Context, userID, email string, opts ...SessionOption) (*models.DeviceSession, error)
	GetCurrentSession(ctx context.Context) (*models.DeviceSession, error)
	UpdateLastActivity(ctx context.Context) (bool, error)
	ClearSession(ctx context.Context) error
	ClearAllSessions(ctx context.Context) error
	DeleteAllSessions(ctx context.Context) error
	GetSessionsList(ctx context.Context) ([]models.DeviceSession, error)
	AddToSessionsList(ctx context.Context, session *models.DeviceSession) error
	GetUserDevices(ctx context.Context, userID string) ([]models.DeviceSession, error)
	VerifySessionToken(ctx context.Context, token string) (bool, error)
	GetUserID(ctx context.Context) (string, error)
}

type sessionOptions struct {
	expiryDays *int
}

// SessionOption configures a single CreateSession call.
type SessionOption func(*sessionOptions)

// WithExpiryDays overrides the session lifetime. Zero or negative days create
// a session that never expires.
func WithExpiryDays(days int) SessionOption {
	return func(o *sessionOptions) { o.expiryDays = &days }
}

// KVSessionRepository implements SessionRepository on a key-value store.
// The device identifier is resolved once at construction.
type KVSessionRepository struct {
	SessionInspector
	deviceID string
	ttlDays  int
}

// NewSessionRepository creates the repository and resolves (or generates) the device id.
func NewSessionRepository(ctx context.Context, store kvstore.Store, ttlDays int, opts ...Option) (*KVSessionRepository, error) {
	r := &KVSessionRepository{SessionInspector: SessionInspector{base: newBase(store, opts)}, ttlDays: ttlDays}

	deviceID, err := r.resolveDeviceID(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve device id: %w", err)
	}
	r.deviceID = deviceID
	return r, nil
}

func (r *KVSessionRepository) resolveDeviceID(ctx context.Context) (string, error) {
	existing, ok, err := r.store.Get(ctx, r.keys.DeviceID())
	if err != nil {
		return "", err
	}
	if ok && existing != "" {
		return existing, nil
	}

	id := newID("device", r.now(), 9)
	if err := r.store.Set(ctx, r.keys.DeviceID(), id); err != nil {
		return "", err
	}
	r.logger.Info("generated device id", zap.String("device_id", id))
	return id, nil
}

// GetOrCreateDeviceID returns the identifier of this device.
func (r *KVSessionRepository) GetOrCreateDeviceID(_ context.Context) (string, error) {
	return r.deviceID, nil
}

// CreateSession starts a fresh session on this device and replaces any
// previous sessions-list entry of the device.
func (r *KVSessionRepository) CreateSession(ctx context.Context, userID, email string, opts ...SessionOption) (*models.DeviceSession, error) {
	o := sessionOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	days := r.ttlDays
	if o.expiryDays != nil {
		days = *o.expiryDays
	}

	now := r.now().UTC()
	sessionToken := newID("session", now, 16)
	session := &models.DeviceSession{
		DeviceID:     r.deviceID,
		UserID:       userID,
		Token:        base64.StdEncoding.EncodeToString([]byte(userID + ":" + sessionToken)),
		SessionToken: sessionToken,
		Email:        email,
		CreatedAt:    now,
		LastActivity: now,
		IsActive:     true,
	}
	if days > 0 {
		expiresAt := now.AddDate(0, 0, days)
		session.ExpiresAt = &expiresAt
	}

	if err := r.save(ctx, r.keys.CurrentSession(), session); err != nil {
		return nil, fmt.Errorf("save current session: %w", err)
	}
	if err := r.AddToSessionsList(ctx, session); err != nil {
		return nil, fmt.Errorf("add to sessions list: %w", err)
	}

	r.logger.Info("session created",
		zap.String("device_id", session.DeviceID),
		zap.String("user_id", userID))
	return session, nil
}

// GetCurrentSession returns the active session of this device, or nil.
// An expired session is deleted as a side effect.
func (r *KVSessionRepository) GetCurrentSession(ctx context.Context) (*models.DeviceSession, error) {
	var session models.DeviceSession
	found, err := r.load(ctx, r.keys.CurrentSession(), &session)
	if err != nil || !found {
		return nil, err
	}
	if !session.IsActive {
		return nil, nil
	}
	if session.Expired(r.now()) {
		r.logger.Info("session expired", zap.String("device_id", session.DeviceID))
		if err := r.remove(ctx, r.keys.CurrentSession()); err != nil {
			return nil, err
		}
		if err := r.deactivateListEntry(ctx, &session); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return &session, nil
}

// UpdateLastActivity bumps lastActivity on the current session and its list
// entry. It reports false when there is no current session.
func (r *KVSessionRepository) UpdateLastActivity(ctx context.Context) (bool, error) {
	session, err := r.GetCurrentSession(ctx)
	if err != nil || session == nil {
		return false, err
	}

	session.LastActivity = r.now().UTC()
	if err := r.save(ctx, r.keys.CurrentSession(), session); err != nil {
		return false, err
	}

	sessions, err := r.listLenient(ctx)
	if err != nil {
		return false, err
	}
	for i := range sessions {
		if sessions[i].SessionToken == session.SessionToken {
			sessions[i].LastActivity = session.LastActivity
			if err := r.save(ctx, r.keys.SessionsList(), sessions); err != nil {
				return false, err
			}
			break
		}
	}
	return true, nil
}

// ClearSession logs this device out. Other devices' entries are untouched.
func (r *KVSessionRepository) ClearSession(ctx context.Context) error {
	var session models.DeviceSession
	found, err := r.loadLenient(ctx, r.keys.CurrentSession(), &session)
	if err != nil {
		return err
	}
	if err := r.remove(ctx, r.keys.CurrentSession()); err != nil {
		return err
	}
	if found {
		if err := r.deactivateListEntry(ctx, &session); err != nil {
			return err
		}
	}
	r.logger.Info("session cleared on this device", zap.String("device_id", r.deviceID))
	return nil
}

// DeleteAllSessions is an alias of ClearAllSessions.
func (r *KVSessionRepository) DeleteAllSessions(ctx context.Context) error {
	return r.ClearAllSessions(ctx)
}

// AddToSessionsList upserts session, keyed by device id.
func (r *KVSessionRepository) AddToSessionsList(ctx context.Context, session *models.DeviceSession) error {
	sessions, err := r.listLenient(ctx)
	if err != nil {
		return err
	}
	filtered := make([]models.DeviceSession, 0, len(sessions)+1)
	for _, s := range sessions {
		if s.DeviceID != session.DeviceID {
			filtered = append(filtered, s)
		}
	}
	filtered = append(filtered, *session)
	return r.save(ctx, r.keys.SessionsList(), filtered)
}

// VerifySessionToken reports whether token belongs to the current session.
func (r *KVSessionRepository) VerifySessionToken(ctx context.Context, token string) (bool, error) {
	session, err := r.GetCurrentSession(ctx)
	if err != nil || session == nil {
		return false, err
	}
	return session.Token == token, nil
}

// GetUserID returns the owner of the current session, or "".
func (r *KVSessionRepository) GetUserID(ctx context.Context) (string, error) {
	session, err := r.GetCurrentSession(ctx)
	if err != nil || session == nil {
		return "", err
	}
	return session.UserID, nil
}

func (r *KVSessionRepository) listLenient(ctx context.Context) ([]models.DeviceSession, error) {
	var sessions []models.DeviceSession
	if _, err := r.loadLenient(ctx, r.keys.SessionsList(), &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *KVSessionRepository) deactivateListEntry(ctx context.Context, session *models.DeviceSession) error {
	sessions, err := r.listLenient(ctx)
	if err != nil {
		return err
	}
	for i := range sessions {
		if sessions[i].DeviceID == session.DeviceID && sessions[i].SessionToken == session.SessionToken {
			if !sessions[i].IsActive {
				return nil
			}
			sessions[i].IsActive = false
			return r.save(ctx, r.keys.SessionsList(), sessions)
		}
	}
	return nil
}
