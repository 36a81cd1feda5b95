package iam

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-crm/pkg/errors"
	"github.com/tendant/simple-crm/pkg/rbac"
)

// Common errors
var (
	ErrUserNotFound = errors.New(errors.ErrCodeUserNotFound, "user not found")
	ErrEmailTaken   = errors.New(errors.ErrCodeAlreadyExists, "email already in use")
	ErrUserChanged  = errors.New(errors.ErrCodeConflict, "user role changed, reload and retry")
)

// IamRepository defines the storage operations the service needs.
type IamRepository interface {
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id uuid.UUID) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	FindUsers(ctx context.Context) ([]User, error)
	// The write methods take the role the caller authorized against and
	// fail with ErrUserChanged when the stored role differs.
	UpdateUserRole(ctx context.Context, id uuid.UUID, expected, role rbac.Role, permissions []string) (User, error)
	UpdateUserStatus(ctx context.Context, id uuid.UUID, expected rbac.Role, status Status) (User, error)
	DeleteUser(ctx context.Context, id uuid.UUID, expected rbac.Role) error
	AnyUserExists(ctx context.Context) (bool, error)
}

// InMemoryIamRepository implements IamRepository using in-memory storage
type InMemoryIamRepository struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]User
	byEmail map[string]uuid.UUID
	now     func() time.Time
}

// NewInMemoryIamRepository creates a new in-memory IAM repository
func NewInMemoryIamRepository() *InMemoryIamRepository {
	return &InMemoryIamRepository{
		users:   make(map[uuid.UUID]User),
		byEmail: make(map[string]uuid.UUID),
		now:     time.Now,
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser stores user, assigning an id and timestamps when missing.
func (r *InMemoryIamRepository) CreateUser(ctx context.Context, user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := emailKey(user.Email)
	if _, taken := r.byEmail[key]; taken {
		return User{}, ErrEmailTaken
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := r.now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.LastModifiedAt = now
	user = user.clone()

	r.users[user.ID] = user
	r.byEmail[key] = user.ID
	return user.clone(), nil
}

// GetUser gets a user by id
func (r *InMemoryIamRepository) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user.clone(), nil
}

// GetUserByEmail gets a user by email, ignoring case
func (r *InMemoryIamRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[emailKey(email)]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return r.users[id].clone(), nil
}

// FindUsers returns all users in no particular order
func (r *InMemoryIamRepository) FindUsers(ctx context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user.clone())
	}
	return users, nil
}

// lookup returns the stored user if it still holds the expected role.
// Callers hold r.mu.
func (r *InMemoryIamRepository) lookup(id uuid.UUID, expected rbac.Role) (User, error) {
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	if user.Role != expected {
		return User{}, ErrUserChanged
	}
	return user, nil
}

// UpdateUserRole replaces the role and the permission set of a user
func (r *InMemoryIamRepository) UpdateUserRole(ctx context.Context, id uuid.UUID, expected, role rbac.Role, permissions []string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, err := r.lookup(id, expected)
	if err != nil {
		return User{}, err
	}
	user.Role = role
	user.Permissions = append([]string(nil), permissions...)
	user.LastModifiedAt = r.now()
	r.users[id] = user
	return user.clone(), nil
}

// UpdateUserStatus sets the account status of a user
func (r *InMemoryIamRepository) UpdateUserStatus(ctx context.Context, id uuid.UUID, expected rbac.Role, status Status) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, err := r.lookup(id, expected)
	if err != nil {
		return User{}, err
	}
	user.Status = status
	user.LastModifiedAt = r.now()
	r.users[id] = user
	return user.clone(), nil
}

// DeleteUser removes a user
func (r *InMemoryIamRepository) DeleteUser(ctx context.Context, id uuid.UUID, expected rbac.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, err := r.lookup(id, expected)
	if err != nil {
		return err
	}
	delete(r.users, id)
	delete(r.byEmail, emailKey(user.Email))
	return nil
}

// AnyUserExists checks if any user exists in the system
func (r *InMemoryIamRepository) AnyUserExists(ctx context.Context) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users) > 0, nil
}
