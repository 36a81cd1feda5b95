package rbac

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-crm/pkg/config"
	"github.com/tendant/simple-crm/pkg/errors"
)

var expectedPermissions = map[Role][]string{
	Admin:      {"all"},
	Manager:    {"team_management", "call_monitoring", "analytics"},
	TeamLeader: {"team_view", "call_monitoring"},
	HR:         {"candidate_management", "interviews"},
	CallCenter: {"calls", "messages", "time_tracking"},
	Intern:     {"notes_only"},
}

var expectedManages = map[Role][]Role{
	Admin:      {Admin, Manager, TeamLeader, HR, CallCenter, Intern},
	Manager:    {TeamLeader, CallCenter, Intern},
	TeamLeader: {CallCenter, Intern},
	HR:         {Intern},
	CallCenter: {},
	Intern:     {},
}

func TestDefaultPolicyLoads(t *testing.T) {
	p := Default()
	require.NotNil(t, p)
	assert.Equal(t, CatalogVersion, p.CatalogVersion())
	assert.Equal(t, MenuVersion, p.MenuVersion())
}

func TestDefaultPermissions(t *testing.T) {
	for role, want := range expectedPermissions {
		t.Run(role.String(), func(t *testing.T) {
			assert.Equal(t, want, DefaultPermissions(role))
			assert.Equal(t, DefaultPermissions(role), DefaultPermissions(role))
		})
	}
}

func TestDefaultPermissionsReturnsCopy(t *testing.T) {
	perms := DefaultPermissions(Manager)
	perms[0] = "tampered"
	assert.Equal(t, expectedPermissions[Manager], DefaultPermissions(Manager))
}

func TestManageableRoles(t *testing.T) {
	for role, want := range expectedManages {
		assert.Equal(t, want, ManageableRoles(role), role.String())
	}
	assert.Empty(t, ManageableRoles(roleInvalid))
}

func TestCanManageMatrix(t *testing.T) {
	for _, actor := range AllRoles {
		for _, target := range AllRoles {
			want := containsRole(expectedManages[actor], target)
			assert.Equal(t, want, CanManage(actor, target), "%s -> %s", actor, target)
		}
	}
	assert.False(t, CanManage(Intern, Intern))
	for _, target := range AllRoles {
		assert.False(t, CanManage(CallCenter, target))
	}
}

func TestResolveRejectsInvalidTags(t *testing.T) {
	p := Default()

	roles, err := p.ResolveManageableRoles("manager")
	require.NoError(t, err)
	assert.Equal(t, []Role{TeamLeader, CallCenter, Intern}, roles)

	perms, err := p.ResolveDefaultPermissions("hr")
	require.NoError(t, err)
	assert.Equal(t, []string{"candidate_management", "interviews"}, perms)

	roles, err = p.ResolveManageableRoles("root")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRole))
	assert.Nil(t, roles)

	perms, err = p.ResolveDefaultPermissions("")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRole))
	assert.Nil(t, perms)
}

func TestReplacePermissions(t *testing.T) {
	p := Default()
	previous := p.DefaultPermissions(Manager)

	got := p.ReplacePermissions(previous, TeamLeader)
	assert.Equal(t, []string{"team_view", "call_monitoring"}, got)
	assert.NotContains(t, got, "team_management")
	assert.NotContains(t, got, "analytics")
}

func TestNewPolicyRejectsMissingRole(t *testing.T) {
	catalog := DefaultCatalog()
	delete(catalog.Permissions, HR)

	_, err := NewPolicy(catalog, DefaultMenuTable())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog.permissions.hr")
}

func TestNewPolicyRejectsCycle(t *testing.T) {
	catalog := DefaultCatalog()
	catalog.Manages[TeamLeader] = []Role{CallCenter, Intern, Manager}

	_, err := NewPolicy(catalog, DefaultMenuTable())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle detected")
}

func TestNewPolicyRejectsLeafManagingOthers(t *testing.T) {
	catalog := DefaultCatalog()
	catalog.Manages[Intern] = []Role{Intern}

	_, err := NewPolicy(catalog, DefaultMenuTable())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog.manages.intern")
}

func TestNewPolicyRequiresAdminToManageAll(t *testing.T) {
	catalog := DefaultCatalog()
	catalog.Manages[Admin] = []Role{Manager}

	_, err := NewPolicy(catalog, DefaultMenuTable())
	require.Error(t, err)
	errs, ok := err.(config.ValidationErrors)
	require.True(t, ok)
	assert.Len(t, errs, 5)
}

func TestNewPolicyRejectsMenuDrift(t *testing.T) {
	menus := DefaultMenuTable()
	delete(menus.Visibility, CallCenter)

	_, err := NewPolicy(DefaultCatalog(), menus)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "menu.visibility.call_center")
	assert.Contains(t, err.Error(), "policy.call_center")
}

func TestNewPolicyRejectsUnknownMenuItem(t *testing.T) {
	menus := DefaultMenuTable()
	menus.Visibility[Intern] = []SectionGrant{only(SectionGeneral, "notes", "coffee")}

	_, err := NewPolicy(DefaultCatalog(), menus)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown item "coffee"`)
}

func TestPolicyCopiesTables(t *testing.T) {
	catalog := DefaultCatalog()
	p, err := NewPolicy(catalog, DefaultMenuTable())
	require.NoError(t, err)

	catalog.Manages[HR] = append(catalog.Manages[HR], CallCenter)
	catalog.Permissions[Intern][0] = "everything"

	assert.False(t, p.CanManage(HR, CallCenter))
	assert.Equal(t, []string{"notes_only"}, p.DefaultPermissions(Intern))
}

func TestMustNewPolicyPanics(t *testing.T) {
	assert.Panics(t, func() {
		MustNewPolicy(Catalog{}, MenuTable{})
	})
}

func TestManagerScenario(t *testing.T) {
	p := Default()
	actor := Actor{ID: uuid.New(), Role: Manager}
	target := Target{ID: uuid.New(), Role: CallCenter}

	assert.Equal(t, []Role{TeamLeader, CallCenter, Intern}, p.ManageableRoles(actor.Role))

	d := p.Check(actor, ActionChangeRole, target, Admin)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonRoleNotAssignable, d.Reason)

	d = p.Check(actor, ActionChangeRole, target, TeamLeader)
	assert.True(t, d.Allowed)
	assert.Equal(t, []string{"team_view", "call_monitoring"}, p.DefaultPermissions(TeamLeader))
}
