package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is the authenticated account record kept as the current user.
type User struct {
	ID                  string   `json:"id" validate:"required"`
	Name                string   `json:"name" validate:"required,min=1,max=80"`
	Email               string   `json:"email" validate:"required,email"`
	SecurityQuestion    string   `json:"securityQuestion,omitempty"`
	ProfilePicture      string   `json:"profilePicture,omitempty"`
	IsPartner           bool     `json:"isPartner"`
	Subscriptions       []string `json:"subscriptions"`       // user IDs
	ViewedNotifications []string `json:"viewedNotifications"` // product IDs
	SavedProducts       []string `json:"savedProducts"`       // product IDs
	IsBlocked           bool     `json:"isBlocked,omitempty"`
	IsPrivate           bool     `json:"isPrivate,omitempty"`
}

// Account is a registry entry used for email/password sign-in.
type Account struct {
	User
	PasswordHash string    `json:"passwordHash,omitempty"`
	Provider     string    `json:"provider"`             // email, firebase
	ExternalID   string    `json:"externalId,omitempty"` // identity provider uid
	CreatedAt    time.Time `json:"createdAt"`
}

// SignupRequest defines the request body for email/password registration
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// SigninRequest defines the request body for email/password sign-in
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// SessionClaims are the access-token claims bound to one device session.
type SessionClaims struct {
	UserID       string `json:"user_id"`
	DeviceID     string `json:"device_id"`
	SessionToken string `json:"session_token"`
	jwt.RegisteredClaims
}
