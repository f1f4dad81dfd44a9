package models

import "time"

// AuthResponse represents the response after successful authentication
type AuthResponse struct {
	Token     string       `json:"token"` // JWT token
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}
