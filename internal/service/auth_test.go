package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baseproject/baseproject-go/internal/crypto"
	"github.com/baseproject/baseproject-go/internal/model"
)

type authFixture struct {
	service *AuthService
	users   *fakeUserStore
	resets  *fakeResetStore
	hasher  *crypto.Hasher
	issuer  *crypto.TokenIssuer
}

func newAuthFixture() *authFixture {
	users := newFakeUserStore()
	resets := newFakeResetStore(30 * time.Minute)
	hasher := crypto.NewHasher()
	issuer := crypto.NewTokenIssuer("test-secret", "baseproject", "baseproject-api", 2*time.Hour)

	return &authFixture{
		service: NewAuthService(NewUserDirectory(users, hasher), hasher, issuer, resets),
		users:   users,
		resets:  resets,
		hasher:  hasher,
		issuer:  issuer,
	}
}

func TestRegisterThenLogin(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	created, err := fx.service.Register(ctx, model.RegisterRequest{Email: "a@x.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "a@x.com", created.Email)

	resp, err := fx.service.Login(ctx, model.LoginRequest{Email: "a@x.com", Password: "hunter22"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	claims, err := fx.issuer.Validate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.Subject)
	assert.Equal(t, "a@x.com", claims.Email)
}

func TestRegisterEmptyFields(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	_, err := fx.service.Register(ctx, model.RegisterRequest{Email: "", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = fx.service.Register(ctx, model.RegisterRequest{Email: "a@x.com", Password: ""})
	assert.ErrorIs(t, err, ErrPasswordRequired)
}

func TestRegisterDuplicate(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	_, err := fx.service.Register(ctx, model.RegisterRequest{Email: "a@x.com", Password: "hunter22"})
	require.NoError(t, err)

	_, err = fx.service.Register(ctx, model.RegisterRequest{Email: " A@X.com ", Password: "other-pass"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, 1, fx.users.count())
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	_, err := fx.service.Register(ctx, model.RegisterRequest{Email: "a@x.com", Password: "hunter22"})
	require.NoError(t, err)

	_, wrongPassErr := fx.service.Login(ctx, model.LoginRequest{Email: "a@x.com", Password: "wrong"})
	_, noUserErr := fx.service.Login(ctx, model.LoginRequest{Email: "nobody@x.com", Password: "hunter22"})

	assert.ErrorIs(t, wrongPassErr, ErrInvalidCredentials)
	assert.ErrorIs(t, noUserErr, ErrInvalidCredentials)
	assert.Equal(t, wrongPassErr, noUserErr)
}

func TestRequestResetUnknownEmailStillIssuesToken(t *testing.T) {
	fx := newAuthFixture()

	resp, err := fx.service.RequestPasswordReset(context.Background(), model.ResetRequest{Email: "ghost@x.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
}

func TestResetFlow(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	_, err := fx.service.Register(ctx, model.RegisterRequest{Email: "a@x.com", Password: "old-pass"})
	require.NoError(t, err)

	resp, err := fx.service.RequestPasswordReset(ctx, model.ResetRequest{Email: "a@x.com"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	err = fx.service.ConfirmPasswordReset(ctx, model.ConfirmResetRequest{
		Email:       "a@x.com",
		Token:       resp.Token,
		NewPassword: "new-pass",
	})
	require.NoError(t, err)

	// Old credentials are dead, new ones work.
	_, err = fx.service.Login(ctx, model.LoginRequest{Email: "a@x.com", Password: "old-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = fx.service.Login(ctx, model.LoginRequest{Email: "a@x.com", Password: "new-pass"})
	assert.NoError(t, err)

	// The token is gone after its first use.
	err = fx.service.ConfirmPasswordReset(ctx, model.ConfirmResetRequest{
		Email:       "a@x.com",
		Token:       resp.Token,
		NewPassword: "third-pass",
	})
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestConfirmResetUnknownUser(t *testing.T) {
	fx := newAuthFixture()

	err := fx.service.ConfirmPasswordReset(context.Background(), model.ConfirmResetRequest{
		Email:       "ghost@x.com",
		Token:       "whatever",
		NewPassword: "new-pass",
	})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestConfirmResetWrongToken(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	_, err := fx.service.Register(ctx, model.RegisterRequest{Email: "a@x.com", Password: "old-pass"})
	require.NoError(t, err)

	_, err = fx.service.RequestPasswordReset(ctx, model.ResetRequest{Email: "a@x.com"})
	require.NoError(t, err)

	err = fx.service.ConfirmPasswordReset(ctx, model.ConfirmResetRequest{
		Email:       "a@x.com",
		Token:       "not-the-token",
		NewPassword: "new-pass",
	})
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestConfirmResetExpiredToken(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	_, err := fx.service.Register(ctx, model.RegisterRequest{Email: "a@x.com", Password: "old-pass"})
	require.NoError(t, err)

	resp, err := fx.service.RequestPasswordReset(ctx, model.ResetRequest{Email: "a@x.com"})
	require.NoError(t, err)

	// Move the store's clock past the TTL.
	fx.resets.now = func() time.Time { return time.Now().UTC().Add(31 * time.Minute) }

	err = fx.service.ConfirmPasswordReset(ctx, model.ConfirmResetRequest{
		Email:       "a@x.com",
		Token:       resp.Token,
		NewPassword: "new-pass",
	})
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestNewResetTokenReplacesPrior(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	_, err := fx.service.Register(ctx, model.RegisterRequest{Email: "a@x.com", Password: "old-pass"})
	require.NoError(t, err)

	first, err := fx.service.RequestPasswordReset(ctx, model.ResetRequest{Email: "a@x.com"})
	require.NoError(t, err)
	second, err := fx.service.RequestPasswordReset(ctx, model.ResetRequest{Email: "a@x.com"})
	require.NoError(t, err)
	require.NotEqual(t, first.Token, second.Token)

	err = fx.service.ConfirmPasswordReset(ctx, model.ConfirmResetRequest{
		Email:       "a@x.com",
		Token:       first.Token,
		NewPassword: "new-pass",
	})
	assert.ErrorIs(t, err, ErrInvalidResetToken)

	err = fx.service.ConfirmPasswordReset(ctx, model.ConfirmResetRequest{
		Email:       "a@x.com",
		Token:       second.Token,
		NewPassword: "new-pass",
	})
	assert.NoError(t, err)
}

func TestConcurrentConfirmSingleWinner(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	_, err := fx.service.Register(ctx, model.RegisterRequest{Email: "a@x.com", Password: "old-pass"})
	require.NoError(t, err)

	resp, err := fx.service.RequestPasswordReset(ctx, model.ResetRequest{Email: "a@x.com"})
	require.NoError(t, err)

	passwords := []string{"pass-alpha", "pass-bravo"}
	errs := make([]error, len(passwords))

	var wg sync.WaitGroup
	for i, password := range passwords {
		i, password := i, password
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = fx.service.ConfirmPasswordReset(ctx, model.ConfirmResetRequest{
				Email:       "a@x.com",
				Token:       resp.Token,
				NewPassword: password,
			})
		}()
	}
	wg.Wait()

	var winner string
	var successes int
	for i, err := range errs {
		if err == nil {
			successes++
			winner = passwords[i]
		} else {
			assert.ErrorIs(t, err, ErrInvalidResetToken)
		}
	}
	require.Equal(t, 1, successes, "exactly one concurrent confirm must win")

	// The persisted hash belongs to the winner alone.
	user, err := fx.users.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, fx.hasher.Verify(winner, user.PasswordHash))
	for _, password := range passwords {
		if password != winner {
			assert.False(t, fx.hasher.Verify(password, user.PasswordHash))
		}
	}
}

func TestGetUser(t *testing.T) {
	fx := newAuthFixture()
	ctx := context.Background()

	created, err := fx.service.Register(ctx, model.RegisterRequest{Email: "a@x.com", Password: "hunter22"})
	require.NoError(t, err)

	got, err := fx.service.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "a@x.com", got.Email)

	_, err = fx.service.GetUser(ctx, "missing-id")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
