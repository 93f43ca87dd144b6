package users

import "time"

// RoleType represents a role claim carried on a user profile.
type RoleType string

const (
	// RoleAdmin grants access to the admin dashboard sections.
	RoleAdmin RoleType = "admin"
	// RoleCustomer is the default role for a signed-up shopper.
	RoleCustomer RoleType = "customer"
)

// User is the profile returned by the auth API on login. The client treats it
// as read-only display and authorization data; the server owns the canonical
// record.
type User struct {
	ID        string     `json:"id,omitempty"`         // Unique identifier for the user
	Email     string     `json:"email,omitempty"`      // User's email address
	Username  string     `json:"username,omitempty"`   // Unique username
	FirstName string     `json:"first_name,omitempty"` // First name of the user
	LastName  string     `json:"last_name,omitempty"`  // Last name of the user
	Roles     []RoleType `json:"roles,omitempty"`      // Role claims for route authorization
	LastLogin time.Time  `json:"last_login,omitempty"` // Last time the user logged in
}

// HasRole reports whether the user carries the given role claim.
func (u *User) HasRole(role RoleType) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user may see admin-scoped views.
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// FullName returns the display name for the account menu.
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	switch {
	case u.FirstName == "" && u.LastName == "":
		return u.Username
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
