package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/repotrack/backend/internal/roles"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	PasswordHash string     `json:"-"` // Don't return password hash in JSON
	Role         roles.Role `json:"role"`
	IsActive     bool       `json:"is_active"`

	// Location fields
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`

	// Weak reference: display-only, never dereferenced for ownership
	CreatedBy *uuid.UUID `json:"created_by,omitempty"`
}

// PublicProfile is the subset of a user carried back to the console while an
// OTP login is pending (no token has been issued yet).
func (u *User) PublicProfile() map[string]interface{} {
	return map[string]interface{}{
		"id":    u.ID.String(),
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
	}
}
