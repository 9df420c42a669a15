package dto

import (
	"time"

	"github.com/spec-kit/device-cost-service/internal/domain"
)

// CredentialsRequest payload for register and login.
type CredentialsRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	LastLogoutAt *time.Time `json:"last_logout_at,omitempty"`
}

// NewUserResponse strips credentials from user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Name:         user.Name,
		CreatedAt:    user.CreatedAt,
		LastLoginAt:  user.LastLoginAt,
		LastLogoutAt: user.LastLogoutAt,
	}
}
