package profile

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/tendant/simple-crm/pkg/iam"
	"github.com/tendant/simple-crm/pkg/rbac"
)

func TestGetProfile(t *testing.T) {
	s := NewProfileService(nil)
	user := iam.User{ID: uuid.New(), Name: "Lead", Role: rbac.TeamLeader, Status: iam.StatusActive}

	p := s.GetProfile(user)
	assert.Equal(t, "Team Leader", p.RoleLabel)
	assert.Equal(t, "blue", p.BadgeColor)
	assert.Equal(t, []rbac.Role{rbac.CallCenter, rbac.Intern}, p.ManageableRoles)
}

func TestGetMenu(t *testing.T) {
	s := NewProfileService(nil)

	menu := s.GetMenu(iam.User{ID: uuid.New(), Role: rbac.Intern})
	assert.Equal(t, rbac.MenuVersion, menu.Version)
	assert.Equal(t, rbac.Intern, menu.Role)
	if assert.Len(t, menu.Sections, 1) {
		assert.Equal(t, rbac.SectionGeneral, menu.Sections[0].Name)
		assert.Len(t, menu.Sections[0].Items, 2)
	}

	menu = s.GetMenu(iam.User{ID: uuid.New(), Role: rbac.Admin})
	assert.Len(t, menu.Sections, 5)
}
