package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/baseproject/baseproject-go/internal/crypto"
	"github.com/baseproject/baseproject-go/internal/model"
)

// createResetQuery keeps at most one live reset token per email: issuing a
// new token replaces the previous row, un-consuming it and moving the expiry.
const createResetQuery = `
	INSERT INTO password_resets (email, token, consumed, expires_at)
	VALUES (?, ?, FALSE, ?)
	ON DUPLICATE KEY UPDATE
		token      = VALUES(token),
		consumed   = FALSE,
		expires_at = VALUES(expires_at),
		created_at = CURRENT_TIMESTAMP`

// consumeResetQuery is the single conditional update enforcing single use:
// the consumed flag flips only when the token matches, is unconsumed and
// unexpired, all in one statement.
const consumeResetQuery = `
	UPDATE password_resets SET consumed = TRUE
	WHERE email = ? AND token = ? AND consumed = FALSE AND expires_at > UTC_TIMESTAMP()`

const purgeResetQuery = `DELETE FROM password_resets WHERE expires_at < UTC_TIMESTAMP()`

// ResetRepository stores short-lived, single-use password reset tokens.
type ResetRepository struct {
	db  *sql.DB
	ttl time.Duration
}

// NewResetRepository creates a ResetRepository issuing tokens valid for ttl.
func NewResetRepository(db *sql.DB, ttl time.Duration) *ResetRepository {
	return &ResetRepository{db: db, ttl: ttl}
}

// Create mints a random token for the given email and stores it with the
// configured TTL, replacing any earlier token for that email.
func (r *ResetRepository) Create(ctx context.Context, email string) (string, error) {
	token, err := crypto.NewResetToken()
	if err != nil {
		return "", err
	}

	reset := model.PasswordReset{
		Email:     email,
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(r.ttl),
	}

	if _, err := r.db.ExecContext(ctx, createResetQuery, reset.Email, reset.Token, reset.ExpiresAt); err != nil {
		return "", err
	}

	return token, nil
}

// Consume marks the token consumed and reports success. It succeeds at most
// once per token: a mismatched, expired or already-consumed token returns
// false with no side effects. Concurrent calls race on a single row update,
// so exactly one of them can win.
func (r *ResetRepository) Consume(ctx context.Context, email, token string) (bool, error) {
	result, err := r.db.ExecContext(ctx, consumeResetQuery, email, token)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

// PurgeExpired deletes reset rows past their expiry, returning the count removed.
func (r *ResetRepository) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, purgeResetQuery)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
