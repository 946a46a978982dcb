package repositories

// DefaultNamespace prefixes every storage key.
const DefaultNamespace = "vaxtop"

// Keys owns the storage key layout of one namespace.
type Keys struct {
	namespace string
}

// NewKeys returns the key layout for namespace, or DefaultNamespace when empty.
func NewKeys(namespace string) Keys {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return Keys{namespace: namespace}
}

func (k Keys) Namespace() string { return k.namespace }

func (k Keys) DeviceID() string       { return k.namespace + "DeviceId" }
func (k Keys) CurrentSession() string { return k.namespace + "CurrentSession" }
func (k Keys) SessionsList() string   { return k.namespace + "SessionsList" }

func (k Keys) CurrentUser() string { return k.namespace + "User" }
func (k Keys) UserEmail() string   { return k.namespace + "UserEmail" }
func (k Keys) Accounts() string    { return k.namespace + "Users" }
func (k Keys) Products() string    { return k.namespace + "Products" }
func (k Keys) Settings() string    { return k.namespace + "Settings" }

func (k Keys) PreferencesPrefix() string   { return k.namespace + "UserPreferences_" }
func (k Keys) NotificationsPrefix() string { return k.namespace + "Notifications_" }
func (k Keys) ProfilePrefix() string       { return k.namespace + "Profile_" }
func (k Keys) CommentsPrefix() string      { return k.namespace + "Comments_" }
func (k Keys) LikesPrefix() string         { return k.namespace + "UserLikes_" }

func (k Keys) Preferences(userID string) string   { return k.PreferencesPrefix() + userID }
func (k Keys) Notifications(userID string) string { return k.NotificationsPrefix() + userID }
func (k Keys) Profile(userID string) string       { return k.ProfilePrefix() + userID }
func (k Keys) Comments(productID string) string   { return k.CommentsPrefix() + productID }
func (k Keys) Likes(userID string) string         { return k.LikesPrefix() + userID }
