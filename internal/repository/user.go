package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/baseproject/baseproject-go/internal/model"
)

var ErrDuplicateEmail = errors.New("email already exists")

// UserRepository handles user persistence. It is the Store[*model.User]
// implementation backed by the users table; the only unique constraint on
// that table is the email index, so constraint violations surface as
// ErrDuplicateEmail.
type UserRepository struct {
	*SQLStore[*model.User]
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{SQLStore: NewSQLStore(db, userDescriptor())}
}

func userDescriptor() Descriptor[*model.User] {
	return Descriptor[*model.User]{
		Table:   "users",
		Columns: []string{"email", "password_hash"},
		New:     func() *model.User { return &model.User{} },
		Values: func(u *model.User) []any {
			return []any{u.Email, u.PasswordHash}
		},
		Scan: func(s Scanner, u *model.User) error {
			return s.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
		},
	}
}

// Insert persists a new user, mapping the email unique-index violation to
// ErrDuplicateEmail.
func (r *UserRepository) Insert(ctx context.Context, user *model.User) error {
	if err := r.SQLStore.Insert(ctx, user); err != nil {
		if errors.Is(err, ErrConstraintViolation) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// FindByEmail retrieves a user by their email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.FindOne(ctx, "email = ?", email)
}
