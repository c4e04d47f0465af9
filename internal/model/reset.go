package model

import "time"

// PasswordReset is a single-use password reset token record. At most one row
// exists per email; issuing a new token replaces the previous one.
type PasswordReset struct {
	Email     string    `json:"email"`
	Token     string    `json:"-"`
	Consumed  bool      `json:"consumed"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// ResetRequest represents a password reset initiation request.
type ResetRequest struct {
	Email string `json:"email"`
}

// ConfirmResetRequest represents a password reset confirmation request.
type ConfirmResetRequest struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ResetTokenResponse represents a reset initiation response. The token is
// returned directly to the caller; out-of-band delivery is left to deployments.
type ResetTokenResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// MessageResponse is a generic confirmation response body.
type MessageResponse struct {
	Message string `json:"message"`
}
