package permission

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func identity(role Role) *Identity {
	return &Identity{ID: uuid.New(), Name: string(role), Role: role, Active: true}
}

func TestNilIdentityDeniesEverything(t *testing.T) {
	gate := NewGate(nil)

	assert.False(t, gate.Can(ModuleOperations, ActionRead))
	assert.False(t, gate.CanApprove())
	assert.False(t, gate.RequiresApproval("fertilization"))
	assert.False(t, gate.IsAdmin())
	assert.False(t, gate.Allowed(ModuleReports, ActionRead))
	assert.Nil(t, gate.AuthorizedModules(ActionRead))

	var zero *Gate
	assert.False(t, zero.Can(ModuleOperations, ActionRead))
	assert.Nil(t, zero.Identity())
}

func TestInactiveIdentityDeniesEverything(t *testing.T) {
	id := identity(RoleAdmin)
	id.Active = false
	gate := NewGate(id)

	assert.False(t, gate.Can(ModuleOperations, ActionRead))
	assert.False(t, gate.IsAdmin())
	assert.False(t, gate.CanApprove())
}

func TestGateMatchesMatrix(t *testing.T) {
	for _, role := range AllRoles() {
		gate := NewGate(identity(role))
		for _, m := range AllModules() {
			for _, a := range AllActions() {
				assert.Equal(t, HasPermission(role, m, a), gate.Can(m, a),
					"role=%s module=%s action=%s", role, m, a)
			}
		}
		assert.Equal(t, CanApproveRequests(role), gate.CanApprove(), "role=%s", role)
	}
}

func TestAllowedWithRoleList(t *testing.T) {
	manager := NewGate(identity(RoleManager))
	accountant := NewGate(identity(RoleAccountant))
	admin := NewGate(identity(RoleAdmin))

	assert.True(t, manager.Allowed(ModuleOperations, ActionCreate, RoleManager, RoleAgronomist))
	assert.False(t, accountant.Allowed(ModuleFinancialTransactions, ActionCreate, RoleManager))

	// Admin bypasses the allow-list but still needs the matrix right, which
	// the wildcard grants.
	assert.True(t, admin.Allowed(ModuleOperations, ActionCreate, RoleManager))
}

func TestAuthorizedModules(t *testing.T) {
	admin := NewGate(identity(RoleAdmin))
	assert.Len(t, admin.AuthorizedModules(ActionApprove), len(AllModules()))

	accountant := NewGate(identity(RoleAccountant))
	assert.Empty(t, accountant.AuthorizedModules(ActionApprove))

	agronomist := NewGate(identity(RoleAgronomist))
	creatable := agronomist.AuthorizedModules(ActionCreate)
	assert.Contains(t, creatable, ModuleFertilizationPlans)
	assert.Contains(t, creatable, ModuleApprovalRequests)
	assert.NotContains(t, creatable, ModuleUserManagement)
}

func TestRolePredicates(t *testing.T) {
	gate := NewGate(identity(RoleInventoryManager))

	assert.True(t, gate.IsInventoryManager())
	assert.True(t, gate.IsOperationalStaff())
	assert.False(t, gate.IsManagement())
	assert.False(t, gate.ApproversOnly())

	manager := NewGate(identity(RoleManager))
	assert.True(t, manager.IsManagement())
	assert.True(t, manager.ApproversOnly())
}
