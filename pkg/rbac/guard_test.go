package rbac

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSelfMutationDominates(t *testing.T) {
	p := Default()
	for _, role := range AllRoles {
		actor := Actor{ID: uuid.New(), Role: role}
		self := Target{ID: actor.ID, Role: role}

		for _, action := range []Action{ActionChangeRole, ActionSetStatus, ActionDelete} {
			for _, newRole := range AllRoles {
				d := p.Check(actor, action, self, newRole)
				assert.False(t, d.Allowed, "%s %s self", role, action)
				assert.Equal(t, ReasonSelfMutation, d.Reason)
			}
		}
	}
}

func TestAdminCannotDemoteItself(t *testing.T) {
	p := Default()
	admin := Actor{ID: uuid.New(), Role: Admin}

	assert.True(t, p.CanManage(Admin, Admin))
	assert.False(t, p.Allowed(admin, ActionChangeRole, Target{ID: admin.ID, Role: Admin}, Intern))
	assert.False(t, p.Allowed(admin, ActionDelete, Target{ID: admin.ID, Role: Admin}, 0))

	other := Target{ID: uuid.New(), Role: Admin}
	assert.True(t, p.Allowed(admin, ActionChangeRole, other, Intern))
	assert.True(t, p.Allowed(admin, ActionDelete, other, 0))
}

func TestCallCenterSelfGuardHoldsWithoutHierarchy(t *testing.T) {
	actor := Actor{ID: uuid.New(), Role: CallCenter}
	self := Target{ID: actor.ID, Role: CallCenter}

	assert.False(t, CanManage(CallCenter, CallCenter))
	assert.True(t, IsSelfMutation(actor, ActionChangeRole, self.ID))
	assert.True(t, IsSelfMutation(actor, ActionSetStatus, self.ID))

	d := Default().Check(actor, ActionSetStatus, self, 0)
	assert.Equal(t, ReasonSelfMutation, d.Reason)

	// A catalog where call_center manages itself still refuses self mutation.
	catalog := DefaultCatalog()
	catalog.Manages[CallCenter] = []Role{CallCenter}
	relaxed := &Policy{catalog: catalog.clone(), menus: DefaultMenuTable().clone()}
	assert.True(t, relaxed.CanManage(CallCenter, CallCenter))
	assert.False(t, relaxed.Allowed(actor, ActionChangeRole, self, CallCenter))
	assert.False(t, relaxed.Allowed(actor, ActionSetStatus, self, 0))
}

func TestCheckCreate(t *testing.T) {
	p := Default()
	hr := Actor{ID: uuid.New(), Role: HR}

	assert.True(t, p.Allowed(hr, ActionCreate, Target{}, Intern))

	d := p.Check(hr, ActionCreate, Target{}, CallCenter)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonRoleNotAssignable, d.Reason)

	d = p.Check(hr, ActionCreate, Target{}, 0)
	assert.Equal(t, ReasonInvalidRole, d.Reason)
}

func TestCheckTargetNotManageable(t *testing.T) {
	p := Default()
	leader := Actor{ID: uuid.New(), Role: TeamLeader}
	manager := Target{ID: uuid.New(), Role: Manager}

	for _, action := range []Action{ActionChangeRole, ActionSetStatus, ActionDelete} {
		d := p.Check(leader, action, manager, Intern)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonTargetNotManageable, d.Reason, string(action))
	}

	agent := Target{ID: uuid.New(), Role: CallCenter}
	assert.True(t, p.Allowed(leader, ActionSetStatus, agent, 0))
	assert.True(t, p.Allowed(leader, ActionDelete, agent, 0))
	assert.True(t, p.Allowed(leader, ActionChangeRole, agent, Intern))
	assert.False(t, p.Allowed(leader, ActionChangeRole, agent, TeamLeader))
}

func TestCheckInvalidInputsDenyWithoutPanicking(t *testing.T) {
	p := Default()
	target := Target{ID: uuid.New(), Role: Intern}

	d := p.Check(Actor{ID: uuid.New()}, ActionDelete, target, 0)
	assert.Equal(t, ReasonInvalidRole, d.Reason)

	d = p.Check(Actor{ID: uuid.New(), Role: Admin}, ActionDelete, Target{ID: uuid.New()}, 0)
	assert.Equal(t, ReasonInvalidRole, d.Reason)

	d = p.Check(Actor{ID: uuid.New(), Role: Admin}, Action("archive"), target, 0)
	assert.Equal(t, ReasonUnknownAction, d.Reason)
}

func TestCheckIsStable(t *testing.T) {
	p := Default()
	actor := Actor{ID: uuid.New(), Role: Manager}
	target := Target{ID: uuid.New(), Role: Intern}

	first := p.Check(actor, ActionChangeRole, target, CallCenter)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, p.Check(actor, ActionChangeRole, target, CallCenter))
	}
}
