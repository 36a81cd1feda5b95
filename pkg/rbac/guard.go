package rbac

import (
	"log/slog"

	"github.com/google/uuid"
)

// Action is a mutation a UI surface asks permission for.
type Action string

const (
	ActionCreate     Action = "create"
	ActionChangeRole Action = "change_role"
	ActionSetStatus  Action = "set_status"
	ActionDelete     Action = "delete"
)

// DenyReason explains a negative Decision.
type DenyReason string

const (
	ReasonNone                DenyReason = ""
	ReasonSelfMutation        DenyReason = "self_mutation"
	ReasonTargetNotManageable DenyReason = "target_not_manageable"
	ReasonRoleNotAssignable   DenyReason = "role_not_assignable"
	ReasonInvalidRole         DenyReason = "invalid_role"
	ReasonUnknownAction       DenyReason = "unknown_action"
)

// Actor is the authenticated identity performing an action. It is always
// passed in explicitly; nothing here reads ambient session state.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func (a Actor) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", a.ID.String()),
		slog.String("role", a.Role.String()),
	)
}

// Target is the managed entity an action applies to.
type Target struct {
	ID   uuid.UUID
	Role Role
}

// Decision is the outcome of a guard check.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

func allow() Decision            { return Decision{Allowed: true} }
func deny(r DenyReason) Decision { return Decision{Reason: r} }

// IsSelfMutation reports whether action would modify the actor's own
// record. Self mutation is forbidden whatever the hierarchy says, so
// admin cannot demote, deactivate or delete itself even though admin
// manages admin.
func IsSelfMutation(actor Actor, action Action, targetID uuid.UUID) bool {
	switch action {
	case ActionChangeRole, ActionSetStatus, ActionDelete:
		return actor.ID == targetID
	}
	return false
}

// Check decides whether actor may perform action on target. newRole is only
// consulted for ActionCreate and ActionChangeRole. Check never fails and has
// no side effects.
func (p *Policy) Check(actor Actor, action Action, target Target, newRole Role) Decision {
	if !actor.Role.Valid() {
		return deny(ReasonInvalidRole)
	}
	if IsSelfMutation(actor, action, target.ID) {
		return deny(ReasonSelfMutation)
	}

	switch action {
	case ActionCreate:
		if !newRole.Valid() {
			return deny(ReasonInvalidRole)
		}
		if !p.CanManage(actor.Role, newRole) {
			return deny(ReasonRoleNotAssignable)
		}
		return allow()
	case ActionChangeRole:
		if !target.Role.Valid() || !newRole.Valid() {
			return deny(ReasonInvalidRole)
		}
		if !p.CanManage(actor.Role, target.Role) {
			return deny(ReasonTargetNotManageable)
		}
		if !p.CanManage(actor.Role, newRole) {
			return deny(ReasonRoleNotAssignable)
		}
		return allow()
	case ActionSetStatus, ActionDelete:
		if !target.Role.Valid() {
			return deny(ReasonInvalidRole)
		}
		if !p.CanManage(actor.Role, target.Role) {
			return deny(ReasonTargetNotManageable)
		}
		return allow()
	}
	return deny(ReasonUnknownAction)
}

// Allowed is the boolean form of Check.
func (p *Policy) Allowed(actor Actor, action Action, target Target, newRole Role) bool {
	return p.Check(actor, action, target, newRole).Allowed
}
