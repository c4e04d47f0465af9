package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baseproject/baseproject-go/internal/crypto"
	"github.com/baseproject/baseproject-go/internal/model"
	"github.com/baseproject/baseproject-go/internal/repository"
)

// fakeUserStore is an in-memory UserStore enforcing the email uniqueness
// constraint the way the real store's unique index does.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User // by id
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*model.User)}
}

func (f *fakeUserStore) Insert(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt

	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserStore) FindByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	found := *u
	return &found, nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == email {
			found := *u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserStore) Update(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *user
	stored.UpdatedAt = time.Now().UTC()
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

type resetRecord struct {
	token     string
	consumed  bool
	expiresAt time.Time
}

// fakeResetStore is an in-memory ResetTokenStore whose consume is a single
// check-and-set under one lock, mirroring the conditional update the real
// store runs.
type fakeResetStore struct {
	mu     sync.Mutex
	tokens map[string]*resetRecord // by email
	ttl    time.Duration
	now    func() time.Time
}

func newFakeResetStore(ttl time.Duration) *fakeResetStore {
	return &fakeResetStore{
		tokens: make(map[string]*resetRecord),
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (f *fakeResetStore) Create(_ context.Context, email string) (string, error) {
	token, err := crypto.NewResetToken()
	if err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[email] = &resetRecord{token: token, expiresAt: f.now().Add(f.ttl)}
	return token, nil
}

func (f *fakeResetStore) Consume(_ context.Context, email, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, ok := f.tokens[email]
	if !ok || rec.consumed || rec.token != token || !f.now().Before(rec.expiresAt) {
		return false, nil
	}

	rec.consumed = true
	return true, nil
}
