package rbac

import (
	"fmt"

	"github.com/tendant/simple-crm/pkg/config"
)

// MenuVersion tags the compiled-in menu visibility table.
const MenuVersion = "2024.1"

// Section names in display order.
const (
	SectionAdmin    = "Admin"
	SectionHR       = "HR Management"
	SectionCRM      = "CRM"
	SectionHelpdesk = "Helpdesk"
	SectionGeneral  = "General"
)

type MenuItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type MenuSection struct {
	Name  string     `json:"name"`
	Items []MenuItem `json:"items"`
}

// SectionGrant makes a section visible. A nil Items list shows the whole
// canonical section; otherwise only the listed item ids are shown.
type SectionGrant struct {
	Section string
	Items   []string
}

// MenuTable is the per-role navigation table. It is declared on its own and
// is not derived from the role hierarchy.
type MenuTable struct {
	Version    string
	Sections   []MenuSection
	Visibility map[Role][]SectionGrant
	// Fallback applies to role values missing from Visibility.
	Fallback []SectionGrant
}

func full(section string) SectionGrant { return SectionGrant{Section: section} }

func only(section string, items ...string) SectionGrant {
	return SectionGrant{Section: section, Items: items}
}

// DefaultMenuTable returns the compiled-in navigation table.
func DefaultMenuTable() MenuTable {
	return MenuTable{
		Version: MenuVersion,
		Sections: []MenuSection{
			{Name: SectionAdmin, Items: []MenuItem{
				{ID: "users", Label: "User Management"},
				{ID: "roles", Label: "Roles & Permissions"},
				{ID: "settings", Label: "Settings"},
				{ID: "integrations", Label: "Integrations"},
			}},
			{Name: SectionHR, Items: []MenuItem{
				{ID: "employees", Label: "Employees"},
				{ID: "departments", Label: "Departments"},
				{ID: "payroll", Label: "Payroll"},
				{ID: "candidates", Label: "Candidates"},
				{ID: "cv-management", Label: "CV Management"},
				{ID: "interviews", Label: "Interviews"},
				{ID: "hr-settings", Label: "HR Settings"},
			}},
			{Name: SectionCRM, Items: []MenuItem{
				{ID: "contacts", Label: "Contacts"},
				{ID: "leads", Label: "Leads"},
				{ID: "deals", Label: "Deals"},
				{ID: "calls", Label: "Calls"},
				{ID: "messages", Label: "Messages"},
			}},
			{Name: SectionHelpdesk, Items: []MenuItem{
				{ID: "tickets", Label: "Tickets"},
				{ID: "call-center", Label: "Call Center"},
				{ID: "knowledge-base", Label: "Knowledge Base"},
			}},
			{Name: SectionGeneral, Items: []MenuItem{
				{ID: "dashboard", Label: "Dashboard"},
				{ID: "teammates", Label: "Teammates"},
				{ID: "notifications", Label: "Notifications"},
				{ID: "notes", Label: "Notes"},
				{ID: "time-tracking", Label: "Time Tracking"},
				{ID: "profile", Label: "Profile"},
			}},
		},
		Visibility: map[Role][]SectionGrant{
			Admin: {
				full(SectionAdmin),
				full(SectionHR),
				full(SectionCRM),
				full(SectionHelpdesk),
				full(SectionGeneral),
			},
			Manager: {
				only(SectionHR, "employees", "departments"),
				full(SectionCRM),
				full(SectionHelpdesk),
				full(SectionGeneral),
			},
			TeamLeader: {
				only(SectionCRM, "contacts", "calls", "messages"),
				only(SectionHelpdesk, "tickets", "call-center"),
				only(SectionGeneral, "dashboard", "teammates", "notifications", "time-tracking"),
			},
			HR: {
				full(SectionHR),
				only(SectionGeneral, "teammates", "notifications"),
			},
			CallCenter: {
				only(SectionCRM, "contacts", "calls", "messages"),
				only(SectionHelpdesk, "tickets"),
				only(SectionGeneral, "notifications", "time-tracking"),
			},
			Intern: {
				only(SectionGeneral, "notes", "notifications"),
			},
		},
	}
}

// Visible projects the table for role. Sections and items keep canonical
// order no matter how grants are listed.
func (t MenuTable) Visible(role Role) []MenuSection {
	grants, ok := t.Visibility[role]
	if !ok {
		grants = t.Fallback
	}
	byName := make(map[string]SectionGrant, len(grants))
	for _, g := range grants {
		byName[g.Section] = g
	}

	sections := make([]MenuSection, 0, len(grants))
	for _, section := range t.Sections {
		grant, ok := byName[section.Name]
		if !ok {
			continue
		}
		var allowed map[string]bool
		if grant.Items != nil {
			allowed = make(map[string]bool, len(grant.Items))
			for _, id := range grant.Items {
				allowed[id] = true
			}
		}
		items := make([]MenuItem, 0, len(section.Items))
		for _, item := range section.Items {
			if allowed == nil || allowed[item.ID] {
				items = append(items, item)
			}
		}
		sections = append(sections, MenuSection{Name: section.Name, Items: items})
	}
	return sections
}

// Validate checks that every role has an entry and that every grant refers
// to a known section and item.
func (t MenuTable) Validate() error {
	var errs config.ValidationErrors
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, config.ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if t.Version == "" {
		add("menu.version", "is required")
	}

	items := make(map[string]map[string]bool, len(t.Sections))
	for _, section := range t.Sections {
		if _, dup := items[section.Name]; dup {
			add("menu.sections", "duplicate section %q", section.Name)
		}
		ids := make(map[string]bool, len(section.Items))
		for _, item := range section.Items {
			ids[item.ID] = true
		}
		items[section.Name] = ids
	}

	checkGrants := func(field string, grants []SectionGrant) {
		for _, g := range grants {
			ids, ok := items[g.Section]
			if !ok {
				add(field, "unknown section %q", g.Section)
				continue
			}
			for _, id := range g.Items {
				if !ids[id] {
					add(field, "unknown item %q in section %q", id, g.Section)
				}
			}
		}
	}

	for role, grants := range t.Visibility {
		if !role.Valid() {
			add("menu.visibility", "unknown role %s", role)
			continue
		}
		checkGrants("menu.visibility."+role.String(), grants)
	}
	for _, role := range AllRoles {
		if _, ok := t.Visibility[role]; !ok {
			add("menu.visibility."+role.String(), "missing entry")
		}
	}
	checkGrants("menu.fallback", t.Fallback)

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func (t MenuTable) clone() MenuTable {
	out := MenuTable{
		Version:    t.Version,
		Sections:   make([]MenuSection, len(t.Sections)),
		Visibility: make(map[Role][]SectionGrant, len(t.Visibility)),
		Fallback:   cloneGrants(t.Fallback),
	}
	for i, s := range t.Sections {
		out.Sections[i] = MenuSection{Name: s.Name, Items: append([]MenuItem(nil), s.Items...)}
	}
	for role, grants := range t.Visibility {
		out.Visibility[role] = cloneGrants(grants)
	}
	return out
}

func cloneGrants(grants []SectionGrant) []SectionGrant {
	if grants == nil {
		return nil
	}
	out := make([]SectionGrant, len(grants))
	for i, g := range grants {
		out[i] = SectionGrant{Section: g.Section}
		if g.Items != nil {
			out[i].Items = append([]string{}, g.Items...)
		}
	}
	return out
}
