package service

import (
	"context"
	"errors"

	"github.com/baseproject/baseproject-go/internal/crypto"
	"github.com/baseproject/baseproject-go/internal/model"
	"github.com/baseproject/baseproject-go/internal/repository"
)

var (
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrTokenRequired      = errors.New("token is required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

// ResetTokenStore issues and consumes single-use password reset tokens.
// *repository.ResetRepository implements it.
type ResetTokenStore interface {
	Create(ctx context.Context, email string) (string, error)
	Consume(ctx context.Context, email, token string) (bool, error)
}

// AuthService orchestrates the user directory, credential hasher, token
// issuer and reset-token store behind the authentication flows.
type AuthService struct {
	users  *UserDirectory
	hasher *crypto.Hasher
	issuer *crypto.TokenIssuer
	resets ResetTokenStore
}

// NewAuthService creates a new AuthService.
func NewAuthService(users *UserDirectory, hasher *crypto.Hasher, issuer *crypto.TokenIssuer, resets ResetTokenStore) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		issuer: issuer,
		resets: resets,
	}
}

// Register creates a new user account. The response never carries the
// password hash.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.UserResponse, error) {
	if req.Email == "" {
		return model.UserResponse{}, ErrEmailRequired
	}
	if req.Password == "" {
		return model.UserResponse{}, ErrPasswordRequired
	}

	user, err := s.users.Register(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.UserResponse{}, ErrEmailTaken
		}
		return model.UserResponse{}, err
	}

	return model.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}, nil
}

// Login authenticates a user and issues a session token. An unknown email
// and a wrong password share one error so callers cannot probe which emails
// are registered.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.TokenResponse, error) {
	if req.Email == "" {
		return model.TokenResponse{}, ErrEmailRequired
	}
	if req.Password == "" {
		return model.TokenResponse{}, ErrPasswordRequired
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.TokenResponse{}, ErrInvalidCredentials
		}
		return model.TokenResponse{}, err
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return model.TokenResponse{}, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user.ID, user.Email)
	if err != nil {
		return model.TokenResponse{}, err
	}

	return model.TokenResponse{Token: token}, nil
}

// RequestPasswordReset mints a reset token for the given email. A token is
// stored whether or not the email belongs to a registered user, and the
// response shape is identical either way.
func (s *AuthService) RequestPasswordReset(ctx context.Context, req model.ResetRequest) (model.ResetTokenResponse, error) {
	if req.Email == "" {
		return model.ResetTokenResponse{}, ErrEmailRequired
	}

	token, err := s.resets.Create(ctx, normalizeEmail(req.Email))
	if err != nil {
		return model.ResetTokenResponse{}, err
	}

	return model.ResetTokenResponse{
		Message: "reset token generated",
		Token:   token,
	}, nil
}

// ConfirmPasswordReset consumes a reset token and sets the new password.
// The token is consumed before the password write, so of two concurrent
// confirmations only the one that won the consume persists its password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, req model.ConfirmResetRequest) error {
	if req.Email == "" {
		return ErrEmailRequired
	}
	if req.Token == "" {
		return ErrTokenRequired
	}
	if req.NewPassword == "" {
		return ErrPasswordRequired
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	ok, err := s.resets.Consume(ctx, normalizeEmail(req.Email), req.Token)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidResetToken
	}

	return s.users.UpdatePassword(ctx, user, req.NewPassword)
}

// GetUser retrieves a user by id and returns safe user data.
func (s *AuthService) GetUser(ctx context.Context, userID string) (model.UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.UserResponse{}, ErrUserNotFound
		}
		return model.UserResponse{}, err
	}

	return model.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}, nil
}
