package domain

// Role represents the user's permission level in the system.
type Role string

const (
	// RoleAdmin grants catalog management access (books, authors, user listing).
	RoleAdmin Role = "ADMIN"
	// RoleUser grants standard borrowing access.
	RoleUser Role = "USER"
)

// IsAdmin returns true for the administrative role.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// User represents an authenticated account in the system.
type User struct {
	Entity
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Stored hashed, never serialized
	Name         string `json:"name"`
	Role         Role   `json:"role"`
}

// IsAdmin returns true if the user has administrative privileges.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
