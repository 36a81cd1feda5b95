package rbac

import (
	"fmt"

	"github.com/tendant/simple-crm/pkg/config"
)

// CatalogVersion tags the compiled-in hierarchy and permission tables.
const CatalogVersion = "2024.1"

// Catalog holds the role hierarchy (who may manage whom) and the default
// permission set of every role.
type Catalog struct {
	Version     string
	Manages     map[Role][]Role
	Permissions map[Role][]string
}

// DefaultCatalog returns the compiled-in role catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		Version: CatalogVersion,
		Manages: map[Role][]Role{
			Admin:      {Admin, Manager, TeamLeader, HR, CallCenter, Intern},
			Manager:    {TeamLeader, CallCenter, Intern},
			TeamLeader: {CallCenter, Intern},
			HR:         {Intern},
			CallCenter: {},
			Intern:     {},
		},
		Permissions: map[Role][]string{
			Admin:      {PermAll},
			Manager:    {PermTeamManagement, PermCallMonitoring, PermAnalytics},
			TeamLeader: {PermTeamView, PermCallMonitoring},
			HR:         {PermCandidateManagement, PermInterviews},
			CallCenter: {PermCalls, PermMessages, PermTimeTracking},
			Intern:     {PermNotesOnly},
		},
	}
}

// Validate checks the catalog against the role enumeration.
func (c Catalog) Validate() error {
	var errs config.ValidationErrors
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, config.ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.Version == "" {
		add("catalog.version", "is required")
	}

	for role := range c.Manages {
		if !role.Valid() {
			add("catalog.manages", "unknown role %s", role)
		}
	}
	for role := range c.Permissions {
		if !role.Valid() {
			add("catalog.permissions", "unknown role %s", role)
		}
	}

	for _, role := range AllRoles {
		managed, ok := c.Manages[role]
		if !ok {
			add("catalog.manages."+role.String(), "missing entry")
		}
		for _, m := range managed {
			if !m.Valid() {
				add("catalog.manages."+role.String(), "unknown managed role %s", m)
			}
		}
		perms, ok := c.Permissions[role]
		if !ok || len(perms) == 0 {
			add("catalog.permissions."+role.String(), "missing default permissions")
		}
	}

	for _, role := range AllRoles {
		if !containsRole(c.Manages[Admin], role) {
			add("catalog.manages.admin", "must manage %s", role)
		}
	}
	for _, role := range []Role{CallCenter, Intern} {
		if len(c.Manages[role]) > 0 {
			add("catalog.manages."+role.String(), "must not manage any role")
		}
	}

	if cycle := findCycle(c.Manages); cycle != nil {
		add("catalog.manages", "cycle detected: %v", cycle)
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// clone returns a deep copy so a Policy never shares maps with its caller.
func (c Catalog) clone() Catalog {
	out := Catalog{
		Version:     c.Version,
		Manages:     make(map[Role][]Role, len(c.Manages)),
		Permissions: make(map[Role][]string, len(c.Permissions)),
	}
	for role, managed := range c.Manages {
		out.Manages[role] = append([]Role(nil), managed...)
	}
	for role, perms := range c.Permissions {
		out.Permissions[role] = append([]string(nil), perms...)
	}
	return out
}

// findCycle looks for a role that transitively manages a role managing it.
// Explicit self entries (admin manages admin) are not cycles.
func findCycle(manages map[Role][]Role) []Role {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[Role]int, len(manages))
	var path []Role

	var visit func(Role) []Role
	visit = func(r Role) []Role {
		state[r] = visiting
		path = append(path, r)
		for _, next := range manages[r] {
			if next == r {
				continue
			}
			switch state[next] {
			case visiting:
				return append(append([]Role(nil), path...), next)
			case unvisited:
				if cycle := visit(next); cycle != nil {
					return cycle
				}
			}
		}
		path = path[:len(path)-1]
		state[r] = done
		return nil
	}

	for _, role := range AllRoles {
		if state[role] == unvisited {
			if cycle := visit(role); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

func containsRole(roles []Role, r Role) bool {
	for _, role := range roles {
		if role == r {
			return true
		}
	}
	return false
}
