package models

// CreateGroupRequest represents the request body for creating a group
type CreateGroupRequest struct {
	Name            string  `json:"name" binding:"required,min=1,max=255"`
	Description     *string `json:"description,omitempty"`
	BackgroundImage *string `json:"background_image,omitempty" binding:"omitempty,max=2048"`
}

type UpdateGroupRequest struct {
	Name            *string `json:"name,omitempty" binding:"omitempty,min=1,max=255"`
	Description     *string `json:"description,omitempty"`
	BackgroundImage *string `json:"background_image,omitempty" binding:"omitempty,max=2048"`
}

// AddMemberRequest represents the request body for adding a user to a group
type AddMemberRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}
