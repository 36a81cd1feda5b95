package profile

import (
	"github.com/tendant/simple-crm/pkg/iam"
	"github.com/tendant/simple-crm/pkg/rbac"
)

// Profile is what the dashboard shell needs about the signed-in user.
type Profile struct {
	User            iam.User    `json:"user"`
	RoleLabel       string      `json:"role_label"`
	BadgeColor      string      `json:"badge_color"`
	ManageableRoles []rbac.Role `json:"manageable_roles"`
}

// Menu is the navigation of one role.
type Menu struct {
	Version  string             `json:"version"`
	Role     rbac.Role          `json:"role"`
	Sections []rbac.MenuSection `json:"sections"`
}

type ProfileService struct {
	policy *rbac.Policy
}

func NewProfileService(policy *rbac.Policy) *ProfileService {
	if policy == nil {
		policy = rbac.Default()
	}
	return &ProfileService{policy: policy}
}

func (s *ProfileService) GetProfile(user iam.User) Profile {
	return Profile{
		User:            user,
		RoleLabel:       user.Role.Label(),
		BadgeColor:      user.Role.BadgeColor(),
		ManageableRoles: s.policy.ManageableRoles(user.Role),
	}
}

// GetMenu returns the sections visible to user, in sidebar order.
func (s *ProfileService) GetMenu(user iam.User) Menu {
	return Menu{
		Version:  s.policy.MenuVersion(),
		Role:     user.Role,
		Sections: s.policy.VisibleMenuSections(user.Role),
	}
}
