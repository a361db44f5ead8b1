package permission

import "github.com/google/uuid"

// Identity is the authenticated principal a gate evaluates against. It is
// replaced wholesale on login, logout, and the development user switch,
// never partially mutated.
type Identity struct {
	ID     uuid.UUID
	Name   string
	Role   Role
	Active bool
}

// Gate binds the permission matrix to a single identity. A zero gate (nil
// identity, e.g. a logged-out session) answers false to every query and
// never panics, so dependent code can always render a denied state.
type Gate struct {
	identity *Identity
}

// NewGate returns a gate bound to identity. identity may be nil.
func NewGate(identity *Identity) *Gate {
	return &Gate{identity: identity}
}

// Identity returns the bound identity, or nil for a logged-out gate.
func (g *Gate) Identity() *Identity {
	if g == nil {
		return nil
	}
	return g.identity
}

func (g *Gate) active() bool {
	return g != nil && g.identity != nil && g.identity.Active
}

// Can reports whether the bound identity may perform action on module.
func (g *Gate) Can(module Module, action Action) bool {
	if !g.active() {
		return false
	}
	return HasPermission(g.identity.Role, module, action)
}

// Cannot is the logical complement of Can.
func (g *Gate) Cannot(module Module, action Action) bool {
	return !g.Can(module, action)
}

// IsRole reports whether the bound identity holds exactly the given role.
func (g *Gate) IsRole(role Role) bool {
	return g.active() && g.identity.Role == role
}

// CanApprove reports whether the bound identity may approve or reject
// approval requests.
func (g *Gate) CanApprove() bool {
	return g.active() && CanApproveRequests(g.identity.Role)
}

// RequiresApproval reports whether a plan of the given type submitted by the
// bound identity must be routed through the approval workflow.
func (g *Gate) RequiresApproval(requestType string) bool {
	return g.active() && NeedsApproval(g.identity.Role, requestType)
}

// Allowed evaluates the full gating rule: when a role allow-list is given
// the identity's role must appear in it (Admin always passes the list), and
// the module/action check must hold as well.
func (g *Gate) Allowed(module Module, action Action, allowRoles ...Role) bool {
	if !g.active() {
		return false
	}
	if len(allowRoles) > 0 && !g.IsRole(RoleAdmin) {
		found := false
		for _, r := range allowRoles {
			if g.identity.Role == r {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return g.Can(module, action)
}

// AuthorizedModules returns every concrete module the identity may perform
// action on.
func (g *Gate) AuthorizedModules(action Action) []Module {
	if !g.active() {
		return nil
	}
	var modules []Module
	for _, m := range AllModules() {
		if HasPermission(g.identity.Role, m, action) {
			modules = append(modules, m)
		}
	}
	return modules
}

// Role helper predicates. These derive strictly from IsRole/CanApprove so
// they cannot drift from the matrix.

func (g *Gate) IsAdmin() bool            { return g.IsRole(RoleAdmin) }
func (g *Gate) IsManager() bool          { return g.IsRole(RoleManager) }
func (g *Gate) IsAgronomist() bool       { return g.IsRole(RoleAgronomist) }
func (g *Gate) IsInventoryManager() bool { return g.IsRole(RoleInventoryManager) }
func (g *Gate) IsAccountant() bool       { return g.IsRole(RoleAccountant) }

// IsManagement reports whether the identity is an Admin or a Manager.
func (g *Gate) IsManagement() bool {
	return g.IsRole(RoleAdmin) || g.IsRole(RoleManager)
}

// IsOperationalStaff reports whether the identity is one of the
// non-management roles.
func (g *Gate) IsOperationalStaff() bool {
	return g.IsRole(RoleAgronomist) || g.IsRole(RoleInventoryManager) || g.IsRole(RoleAccountant)
}

// ApproversOnly equals CanApprove; it exists for call sites that gate
// approver-only surfaces.
func (g *Gate) ApproversOnly() bool { return g.CanApprove() }
