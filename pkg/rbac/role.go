package rbac

import (
	"fmt"
	"strings"

	"github.com/tendant/simple-crm/pkg/errors"
)

// Role is one of the six fixed access levels. The zero value is not a valid
// role; values only come from ParseRole or the exported constants.
type Role uint8

const (
	roleInvalid Role = iota
	Admin
	Manager
	TeamLeader
	HR
	CallCenter
	Intern
)

// AllRoles lists every role from most to least privileged.
var AllRoles = []Role{Admin, Manager, TeamLeader, HR, CallCenter, Intern}

// ParseRole converts a role tag such as "team_leader" into a Role.
// Unknown tags are rejected with ErrCodeInvalidRole, never coerced.
func ParseRole(tag string) (Role, error) {
	switch strings.TrimSpace(tag) {
	case "admin":
		return Admin, nil
	case "manager":
		return Manager, nil
	case "team_leader":
		return TeamLeader, nil
	case "hr":
		return HR, nil
	case "call_center":
		return CallCenter, nil
	case "intern":
		return Intern, nil
	}
	return roleInvalid, InvalidRoleError(tag)
}

// InvalidRoleError builds the boundary error for an unknown role tag.
func InvalidRoleError(tag string) *errors.Error {
	return errors.Newf(errors.ErrCodeInvalidRole, "invalid role: %q", tag).
		WithDetail("role", tag)
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case Admin, Manager, TeamLeader, HR, CallCenter, Intern:
		return true
	}
	return false
}

// String returns the role tag.
func (r Role) String() string {
	switch r {
	case Admin:
		return "admin"
	case Manager:
		return "manager"
	case TeamLeader:
		return "team_leader"
	case HR:
		return "hr"
	case CallCenter:
		return "call_center"
	case Intern:
		return "intern"
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

// Label is the display name used by the dashboard.
func (r Role) Label() string {
	switch r {
	case Admin:
		return "Administrator"
	case Manager:
		return "Manager"
	case TeamLeader:
		return "Team Leader"
	case HR:
		return "HR Specialist"
	case CallCenter:
		return "Call Center Agent"
	case Intern:
		return "Intern"
	}
	return ""
}

// BadgeColor is the color token of the role badge.
func (r Role) BadgeColor() string {
	switch r {
	case Admin:
		return "red"
	case Manager:
		return "purple"
	case TeamLeader:
		return "blue"
	case HR:
		return "green"
	case CallCenter:
		return "orange"
	case Intern:
		return "gray"
	}
	return ""
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, InvalidRoleError(r.String())
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so JSON bodies are
// validated while decoding.
func (r *Role) UnmarshalText(text []byte) error {
	role, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = role
	return nil
}
