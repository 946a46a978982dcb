package auth

import "github.com/anonto42/vaxtop/backend/internal/models"

// Status is the authentication state of this device.
type Status string

const (
	StatusSignedOut Status = "signedOut"
	StatusGuest     Status = "guest"
	StatusSignedIn  Status = "signedIn"
)

// State is what the UI layer observes. User is set only when signed in.
type State struct {
	Status Status       `json:"status"`
	User   *models.User `json:"user,omitempty"`
}

func (s State) IsAuthenticated() bool { return s.Status == StatusSignedIn && s.User != nil }

func (s State) IsGuest() bool { return s.Status == StatusGuest }

func signedOut() State { return State{Status: StatusSignedOut} }
