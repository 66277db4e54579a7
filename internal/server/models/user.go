// Package models holds the server-side persistent types.
package models

import (
	"strings"
	"time"
)

// Role is the coarse-grained authorization role of a principal.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleHR          Role = "hr"
	RoleInterviewer Role = "interviewer"
)

// Roles lists every known role.
var Roles = []Role{RoleAdmin, RoleHR, RoleInterviewer}

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRole converts a case-insensitive role name into a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.IsValid()
}

// User is a principal that can authenticate against the system.
// PasswordHash is nil for identities that authenticate elsewhere; such
// principals can never log in with a password.
type User struct {
	ID           int64
	Email        string
	UserName     string
	Role         Role
	IsActive     bool
	PasswordHash *string
	DeletedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanLogin reports whether the principal is eligible for password login.
func (u *User) CanLogin() bool {
	return u.IsActive && u.DeletedAt == nil && u.PasswordHash != nil && *u.PasswordHash != ""
}

// UserSummary is the public projection of a User returned to clients.
type UserSummary struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	UserName  string    `json:"username"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Email:     u.Email,
		UserName:  u.UserName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
