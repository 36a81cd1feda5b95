package auth

import (
	"context"
	"strings"
	"sync"

	"github.com/tendant/simple-crm/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New(errors.ErrCodeInvalidCredentials, "invalid email or password")
	ErrUserDisabled       = errors.New(errors.ErrCodeUserDisabled, "user is inactive")
)

// CredentialStore keeps password hashes keyed by email.
type CredentialStore interface {
	SetPassword(ctx context.Context, email, password string) error
	VerifyPassword(ctx context.Context, email, password string) error
	RemovePassword(ctx context.Context, email string) error
}

// InMemoryCredentialStore implements CredentialStore with bcrypt hashes held
// in memory.
type InMemoryCredentialStore struct {
	mu     sync.RWMutex
	hashes map[string][]byte
	cost   int
}

// NewInMemoryCredentialStore creates a store hashing with cost. A cost of
// zero means bcrypt.DefaultCost.
func NewInMemoryCredentialStore(cost int) *InMemoryCredentialStore {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &InMemoryCredentialStore{
		hashes: make(map[string][]byte),
		cost:   cost,
	}
}

func credentialKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *InMemoryCredentialStore) SetPassword(ctx context.Context, email, password string) error {
	if password == "" {
		return errors.InvalidInput("password", "is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return errors.InternalWrap(err, "failed to hash password")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.hashes[credentialKey(email)] = hash
	return nil
}

// VerifyPassword returns ErrInvalidCredentials for an unknown email or a
// wrong password.
func (s *InMemoryCredentialStore) VerifyPassword(ctx context.Context, email, password string) error {
	s.mu.RLock()
	hash, ok := s.hashes[credentialKey(email)]
	s.mu.RUnlock()
	if !ok {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func (s *InMemoryCredentialStore) RemovePassword(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hashes, credentialKey(email))
	return nil
}
