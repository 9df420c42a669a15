package domain

import "time"

// User owns products and authenticates by name and password.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"password_hash"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	LastLogoutAt *time.Time `json:"last_logout_at,omitempty"`
}
