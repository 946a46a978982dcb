package models

// NotificationSettings toggles which bell notifications a user wants.
type NotificationSettings struct {
	NewFollower     bool `json:"newFollower"`
	ProductComments bool `json:"productComments"`
	ProductLikes    bool `json:"productLikes"`
}

// UserPreferences is the per-user aggregate of display options, liked and
// saved product sets and social-graph edges. The slices are sets kept in
// insertion order.
type UserPreferences struct {
	UserID        string               `json:"userId"`
	Theme         string               `json:"theme"`
	Language      string               `json:"language"`
	AutoPlay      bool                 `json:"autoPlay"`
	LikedProducts []string             `json:"likedProducts"`
	SavedProducts []string             `json:"savedProducts"`
	Following     []string             `json:"following"`
	Followers     []string             `json:"followers"`
	BlockedUsers  []string             `json:"blockedUsers"`
	Notifications NotificationSettings `json:"notifications"`
}

const (
	ThemeLight = "light"
	ThemeDark  = "dark"

	LanguageHebrew  = "he"
	LanguageEnglish = "en"
)

// DefaultPreferences returns the record created on first access.
func DefaultPreferences(userID string) *UserPreferences {
	return &UserPreferences{
		UserID:        userID,
		Theme:         ThemeLight,
		Language:      LanguageHebrew,
		AutoPlay:      true,
		LikedProducts: []string{},
		SavedProducts: []string{},
		Following:     []string{},
		Followers:     []string{},
		BlockedUsers:  []string{},
		Notifications: NotificationSettings{
			NewFollower:     true,
			ProductComments: true,
			ProductLikes:    true,
		},
	}
}

// Normalize replaces nil sets with empty ones so records always encode as arrays.
func (p *UserPreferences) Normalize() {
	for _, set := range []*[]string{&p.LikedProducts, &p.SavedProducts, &p.Following, &p.Followers, &p.BlockedUsers} {
		if *set == nil {
			*set = []string{}
		}
	}
}

// UpdateDisplayRequest defines the request body for changing display options
type UpdateDisplayRequest struct {
	Theme    string `json:"theme,omitempty" validate:"omitempty,oneof=light dark"`
	Language string `json:"language,omitempty" validate:"omitempty,oneof=he en"`
	AutoPlay *bool  `json:"autoPlay,omitempty"`
}
