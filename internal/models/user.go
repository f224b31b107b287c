package models

// AuthUser is the identity returned by the external auth service when a
// bearer token is verified. Metadata carries the provider's user_metadata
// fields (e.g. a preferred username chosen at sign-up).
type AuthUser struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"user_metadata"`
}

// MetadataString returns a string metadata field, or "" when absent or not
// a string.
func (u *AuthUser) MetadataString(key string) string {
	if u.Metadata == nil {
		return ""
	}
	s, _ := u.Metadata[key].(string)
	return s
}

// UserProfile is the local profile row in the external store's users table.
// It is provisioned lazily on first authenticated request and never deleted
// by this system.
type UserProfile struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role"`
	Theme    string `json:"theme,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// Sanitized returns a copy of the profile with the password hash stripped.
func (u *UserProfile) Sanitized() *UserProfile {
	c := *u
	c.Password = ""
	return &c
}

// DisplayName returns the username, falling back to the email address.
func (u *UserProfile) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
