package role

import (
	"context"

	"github.com/tendant/simple-crm/pkg/iam"
	"github.com/tendant/simple-crm/pkg/rbac"
)

// RoleInfo describes one catalog role for display.
type RoleInfo struct {
	Tag         rbac.Role   `json:"tag"`
	Label       string      `json:"label"`
	BadgeColor  string      `json:"badge_color"`
	Permissions []string    `json:"permissions"`
	Manages     []rbac.Role `json:"manages"`
	UserCount   int         `json:"user_count"`
}

// UserFinder lists directory users. *iam.IamService satisfies it.
type UserFinder interface {
	FindUsers(ctx context.Context, filter iam.UserFilter) ([]iam.User, error)
}

// RoleService provides read access to the compiled-in role catalog
type RoleService struct {
	policy *rbac.Policy
	users  UserFinder
}

func NewRoleService(policy *rbac.Policy, users UserFinder) *RoleService {
	if policy == nil {
		policy = rbac.Default()
	}
	return &RoleService{
		policy: policy,
		users:  users,
	}
}

// Policy returns the policy the catalog is read from.
func (s *RoleService) Policy() *rbac.Policy { return s.policy }

func (s *RoleService) info(role rbac.Role, count int) RoleInfo {
	return RoleInfo{
		Tag:         role,
		Label:       role.Label(),
		BadgeColor:  role.BadgeColor(),
		Permissions: s.policy.DefaultPermissions(role),
		Manages:     s.policy.ManageableRoles(role),
		UserCount:   count,
	}
}

func (s *RoleService) countByRole(ctx context.Context) (map[rbac.Role]int, error) {
	users, err := s.users.FindUsers(ctx, iam.UserFilter{})
	if err != nil {
		return nil, err
	}
	counts := make(map[rbac.Role]int, len(rbac.AllRoles))
	for _, u := range users {
		counts[u.Role]++
	}
	return counts, nil
}

// FindRoles returns every role in catalog order
func (s *RoleService) FindRoles(ctx context.Context) ([]RoleInfo, error) {
	counts, err := s.countByRole(ctx)
	if err != nil {
		return nil, err
	}
	roles := make([]RoleInfo, len(rbac.AllRoles))
	for i, r := range rbac.AllRoles {
		roles[i] = s.info(r, counts[r])
	}
	return roles, nil
}

// GetRole looks a role up by its tag
func (s *RoleService) GetRole(ctx context.Context, tag string) (RoleInfo, error) {
	r, err := rbac.ParseRole(tag)
	if err != nil {
		return RoleInfo{}, err
	}
	counts, err := s.countByRole(ctx)
	if err != nil {
		return RoleInfo{}, err
	}
	return s.info(r, counts[r]), nil
}

// GetRoleUsers lists the users holding the role named by tag
func (s *RoleService) GetRoleUsers(ctx context.Context, tag string) ([]iam.User, error) {
	r, err := rbac.ParseRole(tag)
	if err != nil {
		return nil, err
	}
	return s.users.FindUsers(ctx, iam.UserFilter{Role: r})
}

// AssignableRoles returns the roles actor may hand out, for the role
// selector of the create and edit forms.
func (s *RoleService) AssignableRoles(actor rbac.Actor) []RoleInfo {
	manageable := s.policy.ManageableRoles(actor.Role)
	roles := make([]RoleInfo, len(manageable))
	for i, r := range manageable {
		roles[i] = s.info(r, 0)
	}
	return roles
}
