package repositories

import (
	"context"

	"github.com/anonto42/vaxtop/backend/internal/models"
	"github.com/anonto42/vaxtop/backend/pkg/kvstore"
)

// SessionInspector reads and resets the session records without resolving
// or creating a device id. KVSessionRepository builds on it.
type SessionInspector struct {
	base
}

// NewSessionInspector creates an inspector over store.
func NewSessionInspector(store kvstore.Store, opts ...Option) *SessionInspector {
	return &SessionInspector{base: newBase(store, opts)}
}

// GetSessionsList returns every known device session.
func (r *SessionInspector) GetSessionsList(ctx context.Context) ([]models.DeviceSession, error) {
	sessions := []models.DeviceSession{}
	if _, err := r.load(ctx, r.keys.SessionsList(), &sessions); err != nil {
		return []models.DeviceSession{}, err
	}
	if sessions == nil {
		sessions = []models.DeviceSession{}
	}
	return sessions, nil
}

// GetUserDevices returns the active, unexpired sessions of userID across devices.
func (r *SessionInspector) GetUserDevices(ctx context.Context, userID string) ([]models.DeviceSession, error) {
	sessions, err := r.GetSessionsList(ctx)
	if err != nil {
		return []models.DeviceSession{}, err
	}
	now := r.now()
	devices := make([]models.DeviceSession, 0)
	for _, s := range sessions {
		if s.UserID == userID && s.IsActive && !s.Expired(now) {
			devices = append(devices, s)
		}
	}
	return devices, nil
}

// ClearAllSessions removes the current session and the whole sessions list.
func (r *SessionInspector) ClearAllSessions(ctx context.Context) error {
	if err := r.remove(ctx, r.keys.CurrentSession()); err != nil {
		return err
	}
	if err := r.remove(ctx, r.keys.SessionsList()); err != nil {
		return err
	}
	r.logger.Warn("all sessions deleted")
	return nil
}
