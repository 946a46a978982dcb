package models

import "time"

// DeviceSession binds one device installation to one authenticated account.
type DeviceSession struct {
	DeviceID     string     `json:"deviceId"`
	UserID       string     `json:"userId"`
	Token        string     `json:"token"`
	SessionToken string     `json:"sessionToken"`
	Email        string     `json:"email"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastActivity time.Time  `json:"lastActivity"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"` // nil means the session never expires
	IsActive     bool       `json:"isActive"`
}

// Expired reports whether the session has an expiry at or before now.
func (s *DeviceSession) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// SessionResponse is returned by the login endpoints.
type SessionResponse struct {
	AccessToken string         `json:"accessToken"`
	Session     *DeviceSession `json:"session"`
	User        *User          `json:"user"`
}
