package domain

import "time"

// Role is the closed set of roles known to the access policy.
type Role string

const (
	RoleAdmin           Role = "admin"
	RoleSiteEngineer    Role = "site_engineer"
	RolePayingAuthority Role = "paying_authority"
	RoleViewer          Role = "viewer"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSiteEngineer, RolePayingAuthority, RoleViewer:
		return true
	}
	return false
}

// User models an authenticated actor in the system.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity is the resolved caller passed explicitly into every workflow
// operation. There is no ambient current-user state anywhere in the core.
type Identity struct {
	UserID   string
	Username string
	Role     Role
}
