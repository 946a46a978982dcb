package models

// UserProfile holds extended profile metadata, stored independently of the
// authentication record.
type UserProfile struct {
	ID           string `json:"id"`
	Name         string `json:"name" validate:"required,min=1,max=80"`
	Email        string `json:"email" validate:"omitempty,email"`
	ProfileImage string `json:"profileImage,omitempty" validate:"omitempty,url"`
	Bio          string `json:"bio,omitempty" validate:"max=500"`
	Phone        string `json:"phone,omitempty" validate:"max=32"`
	Website      string `json:"website,omitempty" validate:"omitempty,url"`
	City         string `json:"city,omitempty"`
	Country      string `json:"country,omitempty"`
	JoinedDate   string `json:"joinedDate"`
	IsVerified   bool   `json:"isVerified,omitempty"`
	GoogleID     string `json:"googleId,omitempty"`
}

// UpdateProfileFieldRequest defines the request body for changing a single profile field
type UpdateProfileFieldRequest struct {
	Field string `json:"field" validate:"required"`
	Value any    `json:"value"`
}
