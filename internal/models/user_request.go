package models

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Username       string  `json:"username" binding:"required,min=1,max=100"`
	Email          string  `json:"email" binding:"required,email,max=255"`
	Password       string  `json:"password" binding:"required,min=1,max=72"`
	BusinessArea   string  `json:"business_area" binding:"required,max=100"`
	ProfilePicture *string `json:"profile_picture,omitempty" binding:"omitempty,max=2048"`
}

// UpdateUserRequest represents a partial user update. Absent fields are left unchanged.
type UpdateUserRequest struct {
	Username       *string `json:"username,omitempty" binding:"omitempty,min=1,max=100"`
	Email          *string `json:"email,omitempty" binding:"omitempty,email,max=255"`
	Password       *string `json:"password,omitempty" binding:"omitempty,min=1,max=72"`
	BusinessArea   *string `json:"business_area,omitempty" binding:"omitempty,max=100"`
	ProfilePicture *string `json:"profile_picture,omitempty" binding:"omitempty,max=2048"`
}
