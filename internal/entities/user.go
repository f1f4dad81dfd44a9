package entities

import "time"

// User represents a user entity in the database
type User struct {
	ID             string    `json:"id"` // UUID
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"` // Don't expose password hash in JSON
	BusinessArea   string    `json:"business_area"`
	ProfilePicture *string   `json:"profile_picture,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UserChanges lists the user fields an update may touch. Nil means unchanged.
// IsActive is absent on purpose: deactivation only happens through delete.
type UserChanges struct {
	Username       *string
	Email          *string
	PasswordHash   *string
	BusinessArea   *string
	ProfilePicture *string
}
