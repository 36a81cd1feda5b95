package rbac

import (
	"fmt"

	"github.com/tendant/simple-crm/pkg/config"
)

// Policy bundles the role catalog and the menu table after both have been
// validated. It is immutable and safe for concurrent use.
type Policy struct {
	catalog Catalog
	menus   MenuTable
}

// NewPolicy validates both tables against the role enumeration and against
// each other, and returns a Policy holding private copies of them.
func NewPolicy(catalog Catalog, menus MenuTable) (*Policy, error) {
	var errs config.ValidationErrors
	for _, err := range []error{catalog.Validate(), menus.Validate()} {
		if verrs, ok := err.(config.ValidationErrors); ok {
			errs = append(errs, verrs...)
		} else if err != nil {
			return nil, err
		}
	}
	for _, role := range AllRoles {
		_, inCatalog := catalog.Manages[role]
		_, inMenu := menus.Visibility[role]
		if inCatalog != inMenu {
			errs = append(errs, config.ValidationError{
				Field:   "policy." + role.String(),
				Message: fmt.Sprintf("catalog entry present=%t but menu entry present=%t", inCatalog, inMenu),
			})
		}
	}
	if errs.HasErrors() {
		return nil, errs
	}
	return &Policy{catalog: catalog.clone(), menus: menus.clone()}, nil
}

// MustNewPolicy is NewPolicy for compiled-in tables; it panics on error.
func MustNewPolicy(catalog Catalog, menus MenuTable) *Policy {
	p, err := NewPolicy(catalog, menus)
	if err != nil {
		panic(fmt.Sprintf("rbac: invalid policy: %v", err))
	}
	return p
}

var defaultPolicy = MustNewPolicy(DefaultCatalog(), DefaultMenuTable())

// Default returns the policy built from the compiled-in tables.
func Default() *Policy { return defaultPolicy }

// CatalogVersion returns the version tag of the role catalog.
func (p *Policy) CatalogVersion() string { return p.catalog.Version }

// MenuVersion returns the version tag of the menu table.
func (p *Policy) MenuVersion() string { return p.menus.Version }

// ManageableRoles returns the roles actor may assign, demote or create, in
// catalog order. Unknown values yield an empty slice.
func (p *Policy) ManageableRoles(actor Role) []Role {
	return append([]Role{}, p.catalog.Manages[actor]...)
}

// DefaultPermissions returns the ordered permission tags of role.
func (p *Policy) DefaultPermissions(role Role) []string {
	return append([]string{}, p.catalog.Permissions[role]...)
}

// CanManage reports whether target is among the roles actor manages.
func (p *Policy) CanManage(actor, target Role) bool {
	return containsRole(p.catalog.Manages[actor], target)
}

// VisibleMenuSections returns the navigation sections shown to actor.
func (p *Policy) VisibleMenuSections(actor Role) []MenuSection {
	return p.menus.Visible(actor)
}

// MenuItemVisible reports whether item appears anywhere in actor's
// navigation. Routes behind a menu entry use it to refuse direct calls.
func (p *Policy) MenuItemVisible(actor Role, item string) bool {
	for _, section := range p.menus.Visible(actor) {
		for _, it := range section.Items {
			if it.ID == item {
				return true
			}
		}
	}
	return false
}

// ResolveManageableRoles parses tag and returns its manageable roles.
func (p *Policy) ResolveManageableRoles(tag string) ([]Role, error) {
	role, err := ParseRole(tag)
	if err != nil {
		return nil, err
	}
	return p.ManageableRoles(role), nil
}

// ResolveDefaultPermissions parses tag and returns its default permissions.
func (p *Policy) ResolveDefaultPermissions(tag string) ([]string, error) {
	role, err := ParseRole(tag)
	if err != nil {
		return nil, err
	}
	return p.DefaultPermissions(role), nil
}

// ManageableRoles uses the default policy.
func ManageableRoles(actor Role) []Role { return defaultPolicy.ManageableRoles(actor) }

// DefaultPermissions uses the default policy.
func DefaultPermissions(role Role) []string { return defaultPolicy.DefaultPermissions(role) }

// CanManage uses the default policy.
func CanManage(actor, target Role) bool { return defaultPolicy.CanManage(actor, target) }

// VisibleMenuSections uses the default policy.
func VisibleMenuSections(actor Role) []MenuSection { return defaultPolicy.VisibleMenuSections(actor) }
