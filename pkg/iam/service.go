package iam

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/tendant/simple-crm/pkg/config"
	"github.com/tendant/simple-crm/pkg/errors"
	"github.com/tendant/simple-crm/pkg/rbac"
)

// IamService provides IAM operations
type IamService struct {
	repo        IamRepository
	policy      *rbac.Policy
	credentials CredentialRemover
}

// CredentialRemover drops the sign-in secret held for an email.
type CredentialRemover interface {
	RemovePassword(ctx context.Context, email string) error
}

// Option configures an IamService
type Option func(*IamService)

// WithPolicy replaces the compiled-in role policy
func WithPolicy(policy *rbac.Policy) Option {
	return func(s *IamService) {
		if policy != nil {
			s.policy = policy
		}
	}
}

// WithCredentials makes the service drop the stored password of an email
// whenever a user with that email is created or deleted, so a reused email
// never inherits an old password.
func WithCredentials(credentials CredentialRemover) Option {
	return func(s *IamService) {
		s.credentials = credentials
	}
}

// NewIamService creates a new IAM service
func NewIamService(repo IamRepository, opts ...Option) *IamService {
	s := &IamService{
		repo:   repo,
		policy: rbac.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the role policy the service enforces.
func (s *IamService) Policy() *rbac.Policy { return s.policy }

// forbidden builds the error returned for a denied guard decision. A fresh
// value is built each time since details are attached to it.
func forbidden(action rbac.Action, d rbac.Decision) *errors.Error {
	return errors.Forbidden(fmt.Sprintf("%s not permitted", action)).WithDetails(map[string]interface{}{
		"action": string(action),
		"reason": string(d.Reason),
	})
}

func (s *IamService) forgetPassword(ctx context.Context, email string) error {
	if s.credentials == nil {
		return nil
	}
	if err := s.credentials.RemovePassword(ctx, email); err != nil {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}

func (s *IamService) authorize(actor rbac.Actor, action rbac.Action, target rbac.Target, newRole rbac.Role) error {
	d := s.policy.Check(actor, action, target, newRole)
	if d.Allowed {
		return nil
	}
	slog.Warn("Denied user mutation", "actor", actor, "action", action, "targetId", target.ID, "reason", d.Reason)
	return forbidden(action, d)
}

// FindUsers lists users matching filter, sorted by name then email.
func (s *IamService) FindUsers(ctx context.Context, filter UserFilter) ([]User, error) {
	all, err := s.repo.FindUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}

	users := make([]User, 0, len(all))
	for _, u := range all {
		if filter.match(u) {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		a, b := strings.ToLower(users[i].Name), strings.ToLower(users[j].Name)
		if a != b {
			return a < b
		}
		return users[i].Email < users[j].Email
	})
	return users, nil
}

func (s *IamService) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *IamService) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetUserByEmail(ctx, email)
}

// AnyUserExists reports whether the directory has been populated.
func (s *IamService) AnyUserExists(ctx context.Context) (bool, error) {
	return s.repo.AnyUserExists(ctx)
}

// AssignableRoles returns the roles actor may pick when creating a user or
// changing someone's role.
func (s *IamService) AssignableRoles(actor rbac.Actor) []rbac.Role {
	return s.policy.ManageableRoles(actor.Role)
}

// UserRows lists users with the actions actor may take on each row. The
// flags come from the same guard the mutations use.
func (s *IamService) UserRows(ctx context.Context, actor rbac.Actor, filter UserFilter) ([]UserRow, error) {
	users, err := s.FindUsers(ctx, filter)
	if err != nil {
		return nil, err
	}

	assignable := s.policy.ManageableRoles(actor.Role)
	rows := make([]UserRow, len(users))
	for i, u := range users {
		target := u.Target()
		canChangeRole := false
		for _, role := range assignable {
			if s.policy.Allowed(actor, rbac.ActionChangeRole, target, role) {
				canChangeRole = true
				break
			}
		}
		rows[i] = UserRow{
			User:          u,
			CanChangeRole: canChangeRole,
			CanSetStatus:  s.policy.Allowed(actor, rbac.ActionSetStatus, target, 0),
			CanDelete:     s.policy.Allowed(actor, rbac.ActionDelete, target, 0),
		}
	}
	return rows, nil
}

func validateCreate(params CreateUserParams) error {
	errs := config.CollectErrors(
		config.RequireNonEmpty("name", strings.TrimSpace(params.Name)),
		config.RequireValidEmail("email", strings.TrimSpace(params.Email)),
	)
	if errs.HasErrors() {
		e := errors.New(errors.ErrCodeValidationFailed, "invalid user")
		for _, ve := range errs {
			e = e.WithDetail(ve.Field, ve.Message)
		}
		return e
	}
	return nil
}

// CreateUser adds a user with the default permissions of its role.
func (s *IamService) CreateUser(ctx context.Context, actor rbac.Actor, params CreateUserParams) (User, error) {
	if err := validateCreate(params); err != nil {
		return User{}, err
	}
	if !params.Role.Valid() {
		return User{}, rbac.InvalidRoleError(params.Role.String())
	}
	status := params.Status
	if status == "" {
		status = StatusActive
	}
	if _, err := ParseStatus(string(status)); err != nil {
		return User{}, err
	}

	if err := s.authorize(actor, rbac.ActionCreate, rbac.Target{}, params.Role); err != nil {
		return User{}, err
	}

	user, err := s.repo.CreateUser(ctx, User{
		Email:       strings.TrimSpace(params.Email),
		Name:        strings.TrimSpace(params.Name),
		Phone:       params.Phone,
		Department:  params.Department,
		Role:        params.Role,
		Status:      status,
		Permissions: s.policy.DefaultPermissions(params.Role),
		CreatedBy:   actor.ID.String(),
	})
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeAlreadyExists) {
			return User{}, err
		}
		return User{}, fmt.Errorf("failed to create user: %w", err)
	}
	if err := s.forgetPassword(ctx, user.Email); err != nil {
		return User{}, err
	}

	slog.Info("User created", "actor", actor, "userId", user.ID, "role", user.Role)
	return user, nil
}

// CreateFirstAdmin creates the initial administrator of an empty directory.
// It has no acting user, so it refuses once any user exists.
func (s *IamService) CreateFirstAdmin(ctx context.Context, params CreateUserParams) (User, error) {
	if err := validateCreate(params); err != nil {
		return User{}, err
	}
	exists, err := s.repo.AnyUserExists(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to check if users exist: %w", err)
	}
	if exists {
		return User{}, errors.New(errors.ErrCodeConflict, "directory already has users")
	}

	user, err := s.repo.CreateUser(ctx, User{
		Email:       strings.TrimSpace(params.Email),
		Name:        strings.TrimSpace(params.Name),
		Phone:       params.Phone,
		Department:  params.Department,
		Role:        rbac.Admin,
		Status:      StatusActive,
		Permissions: s.policy.DefaultPermissions(rbac.Admin),
		CreatedBy:   "bootstrap",
	})
	if err != nil {
		return User{}, fmt.Errorf("failed to create first admin: %w", err)
	}
	if err := s.forgetPassword(ctx, user.Email); err != nil {
		return User{}, err
	}
	slog.Info("First admin created", "userId", user.ID, "email", user.Email)
	return user, nil
}

// ChangeRole moves a user to newRole. The permission set is replaced by the
// defaults of newRole; nothing of the previous set is kept.
func (s *IamService) ChangeRole(ctx context.Context, actor rbac.Actor, id uuid.UUID, newRole rbac.Role) (User, error) {
	if !newRole.Valid() {
		return User{}, rbac.InvalidRoleError(newRole.String())
	}
	target, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	if err := s.authorize(actor, rbac.ActionChangeRole, target.Target(), newRole); err != nil {
		return User{}, err
	}

	perms := s.policy.ReplacePermissions(target.Permissions, newRole)
	user, err := s.repo.UpdateUserRole(ctx, id, target.Role, newRole, perms)
	if err != nil {
		return User{}, err
	}

	slog.Info("User role changed", "actor", actor, "userId", id, "from", target.Role, "to", newRole)
	return user, nil
}

// SetStatus activates or deactivates a user.
func (s *IamService) SetStatus(ctx context.Context, actor rbac.Actor, id uuid.UUID, status Status) (User, error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return User{}, err
	}
	target, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	return s.setStatus(ctx, actor, target, status)
}

// ToggleStatus flips a user between active and inactive.
func (s *IamService) ToggleStatus(ctx context.Context, actor rbac.Actor, id uuid.UUID) (User, error) {
	target, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	return s.setStatus(ctx, actor, target, target.Status.Toggle())
}

func (s *IamService) setStatus(ctx context.Context, actor rbac.Actor, target User, status Status) (User, error) {
	if err := s.authorize(actor, rbac.ActionSetStatus, target.Target(), 0); err != nil {
		return User{}, err
	}
	user, err := s.repo.UpdateUserStatus(ctx, target.ID, target.Role, status)
	if err != nil {
		return User{}, err
	}
	slog.Info("User status changed", "actor", actor, "userId", target.ID, "status", status)
	return user, nil
}

// DeleteUser removes a user from the directory along with its password.
func (s *IamService) DeleteUser(ctx context.Context, actor rbac.Actor, id uuid.UUID) error {
	target, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(actor, rbac.ActionDelete, target.Target(), 0); err != nil {
		return err
	}
	if err := s.repo.DeleteUser(ctx, id, target.Role); err != nil {
		return err
	}
	if err := s.forgetPassword(ctx, target.Email); err != nil {
		return err
	}
	slog.Info("User deleted", "actor", actor, "userId", id, "role", target.Role)
	return nil
}
