package entities

import "time"

// Group is a named set of users that dashboards can be assigned to
type Group struct {
	ID              string    `json:"id"` // UUID
	Name            string    `json:"name"`
	Description     *string   `json:"description,omitempty"`
	BackgroundImage *string   `json:"background_image,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// GroupChanges lists the group fields an update may touch. Nil means unchanged.
type GroupChanges struct {
	Name            *string
	Description     *string
	BackgroundImage *string
}
