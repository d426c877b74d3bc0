package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanModifyUser_OwnerImmutable(t *testing.T) {
	engine := newTestEngine()

	for _, actor := range AllRoles() {
		assert.False(t, engine.CanModifyUser(actor, RoleOwner),
			"actor %q may modify the owner", actor)
	}
}

func TestCanModifyUser_ActorSet(t *testing.T) {
	engine := newTestEngine()

	admins := []Role{RoleOwner, RoleDirector, RoleSysadmin}
	for _, actor := range admins {
		assert.True(t, engine.CanModifyUser(actor, RoleOps))
		assert.True(t, engine.CanModifyUser(actor, RoleManager))
	}

	for _, actor := range []Role{RoleManager, RoleFinance, RoleOps, RoleHR, RoleHSE, RoleMarketing, RoleEngineer, RoleAdministration} {
		assert.False(t, engine.CanModifyUser(actor, RoleOps),
			"actor %q may modify users", actor)
	}

	// Unknown actor roles fail closed.
	assert.False(t, engine.CanModifyUser(Role("contractor"), RoleOps))
}

func TestAssignableRoles_ExcludesOwner(t *testing.T) {
	engine := newTestEngine()

	roles := engine.AssignableRoles()
	assert.Len(t, roles, len(AllRoles())-1)
	assert.NotContains(t, roles, RoleOwner)
	for _, r := range roles {
		assert.True(t, r.Valid())
	}
}

func TestCanRemoveAdminPermission(t *testing.T) {
	tests := []struct {
		name       string
		adminCount int
		targetID   int64
		actorID    int64
		allowed    bool
	}{
		{"last admin demoting themselves", 1, 1, 1, false},
		{"last admin demoted by another", 1, 1, 2, true},
		{"two admins, self demotion", 2, 1, 1, true},
		{"two admins, other demotion", 2, 1, 2, true},
		{"zero count still guards self demotion", 0, 1, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := CanRemoveAdminPermission(tt.adminCount, tt.targetID, tt.actorID)
			assert.Equal(t, tt.allowed, check.Allowed)
			if tt.allowed {
				assert.Empty(t, check.Reason)
			} else {
				assert.NotEmpty(t, check.Reason)
			}
		})
	}
}

func TestIsPendingUser(t *testing.T) {
	assert.False(t, IsPendingUser(nil))
	assert.True(t, IsPendingUser(&Profile{ID: 1, Email: "new@example.com"}))
	assert.False(t, IsPendingUser(&Profile{ID: 1, AuthID: "auth-1"}))
}
