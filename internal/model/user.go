package model

import "time"

// User represents a user account in the database. The password hash is never
// serialized in API responses.
type User struct {
	Base
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents user data safe for API responses (no sensitive fields).
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenResponse represents a successful login response carrying a session token.
type TokenResponse struct {
	Token string `json:"token"`
}
