package service

import (
	"context"
	"strings"

	"github.com/baseproject/baseproject-go/internal/crypto"
	"github.com/baseproject/baseproject-go/internal/model"
)

// UserStore is the slice of the persistent entity store the user directory
// needs. *repository.UserRepository implements it.
type UserStore interface {
	Insert(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}

// UserDirectory maintains user records with uniqueness-checked creation.
// Uniqueness is enforced by the store's email constraint, not by a
// check-then-insert in application code.
type UserDirectory struct {
	store  UserStore
	hasher *crypto.Hasher
}

// NewUserDirectory creates a new UserDirectory.
func NewUserDirectory(store UserStore, hasher *crypto.Hasher) *UserDirectory {
	return &UserDirectory{store: store, hasher: hasher}
}

// Register hashes the password and persists a new user under the normalized
// email. A duplicate email surfaces as repository.ErrDuplicateEmail.
func (d *UserDirectory) Register(ctx context.Context, email, password string) (*model.User, error) {
	hash, err := d.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        normalizeEmail(email),
		PasswordHash: hash,
	}

	if err := d.store.Insert(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// FindByEmail retrieves a user by normalized email.
func (d *UserDirectory) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return d.store.FindByEmail(ctx, normalizeEmail(email))
}

// FindByID retrieves a user by id.
func (d *UserDirectory) FindByID(ctx context.Context, id string) (*model.User, error) {
	return d.store.FindByID(ctx, id)
}

// UpdatePassword rehashes the new password and persists it on the user.
func (d *UserDirectory) UpdatePassword(ctx context.Context, user *model.User, newPassword string) error {
	hash, err := d.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	return d.store.Update(ctx, user)
}

// normalizeEmail canonicalizes an email address for storage and lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
