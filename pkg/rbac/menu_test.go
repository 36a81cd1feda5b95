package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sectionNames(sections []MenuSection) []string {
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = s.Name
	}
	return names
}

func itemIDs(section MenuSection) []string {
	ids := make([]string, len(section.Items))
	for i, item := range section.Items {
		ids[i] = item.ID
	}
	return ids
}

func findSection(t *testing.T, sections []MenuSection, name string) MenuSection {
	t.Helper()
	for _, s := range sections {
		if s.Name == name {
			return s
		}
	}
	require.Failf(t, "section not found", "%s", name)
	return MenuSection{}
}

func TestHRMenu(t *testing.T) {
	sections := VisibleMenuSections(HR)

	assert.Equal(t, []string{SectionHR, SectionGeneral}, sectionNames(sections))
	assert.Equal(t,
		[]string{"employees", "departments", "payroll", "candidates", "cv-management", "interviews", "hr-settings"},
		itemIDs(findSection(t, sections, SectionHR)))
	assert.Equal(t, []string{"teammates", "notifications"}, itemIDs(findSection(t, sections, SectionGeneral)))
}

func TestAdminSeesEverything(t *testing.T) {
	table := DefaultMenuTable()
	sections := VisibleMenuSections(Admin)

	require.Len(t, sections, len(table.Sections))
	for i, section := range table.Sections {
		assert.Equal(t, section, sections[i])
	}
}

func TestMenuSectionsKeepCanonicalOrder(t *testing.T) {
	for _, role := range AllRoles {
		sections := VisibleMenuSections(role)
		assert.NotEmpty(t, sections, role.String())

		order := map[string]int{}
		for i, s := range DefaultMenuTable().Sections {
			order[s.Name] = i
		}
		for i := 1; i < len(sections); i++ {
			assert.Less(t, order[sections[i-1].Name], order[sections[i].Name], role.String())
		}
	}
}

func TestFilteredItemsKeepCanonicalOrder(t *testing.T) {
	table := DefaultMenuTable()
	table.Visibility[Intern] = []SectionGrant{only(SectionGeneral, "notifications", "dashboard")}

	sections := table.Visible(Intern)
	require.Len(t, sections, 1)
	assert.Equal(t, []string{"dashboard", "notifications"}, itemIDs(sections[0]))
}

func TestMenuPerRole(t *testing.T) {
	tests := []struct {
		role     Role
		sections []string
	}{
		{Manager, []string{SectionHR, SectionCRM, SectionHelpdesk, SectionGeneral}},
		{TeamLeader, []string{SectionCRM, SectionHelpdesk, SectionGeneral}},
		{CallCenter, []string{SectionCRM, SectionHelpdesk, SectionGeneral}},
		{Intern, []string{SectionGeneral}},
	}
	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			assert.Equal(t, tt.sections, sectionNames(VisibleMenuSections(tt.role)))
		})
	}

	assert.Equal(t, []string{"employees", "departments"},
		itemIDs(findSection(t, VisibleMenuSections(Manager), SectionHR)))
	assert.Equal(t, []string{"notes", "notifications"},
		itemIDs(findSection(t, VisibleMenuSections(Intern), SectionGeneral)))
}

func TestMenuUnknownRoleUsesFallback(t *testing.T) {
	assert.Empty(t, VisibleMenuSections(roleInvalid))

	table := DefaultMenuTable()
	table.Fallback = []SectionGrant{only(SectionGeneral, "dashboard")}
	sections := table.Visible(roleInvalid)
	require.Len(t, sections, 1)
	assert.Equal(t, []string{"dashboard"}, itemIDs(sections[0]))
}

func TestVisibleReturnsFreshSlices(t *testing.T) {
	sections := VisibleMenuSections(Admin)
	sections[0].Items[0].Label = "changed"
	assert.Equal(t, "User Management", VisibleMenuSections(Admin)[0].Items[0].Label)
}

func TestMenuItemVisible(t *testing.T) {
	p := Default()
	assert.True(t, p.MenuItemVisible(HR, "candidates"))
	assert.True(t, p.MenuItemVisible(Manager, "employees"))
	assert.False(t, p.MenuItemVisible(Manager, "candidates"))
	assert.False(t, p.MenuItemVisible(CallCenter, "employees"))
	assert.True(t, p.MenuItemVisible(Admin, "integrations"))
	assert.False(t, p.MenuItemVisible(roleInvalid, "dashboard"))
}
