// Package permission holds the static role-based access control matrix and
// the pure evaluation functions over it. The matrix is defined at compile
// time and never mutated at runtime.
package permission

// Role is a fixed category of user determining permitted actions.
type Role string

const (
	RoleAdmin            Role = "Admin"
	RoleManager          Role = "Manager"
	RoleAgronomist       Role = "Agronomist"
	RoleInventoryManager Role = "InventoryManager"
	RoleAccountant       Role = "Accountant"
)

// AllRoles returns every defined role.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleAgronomist, RoleInventoryManager, RoleAccountant}
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleAgronomist, RoleInventoryManager, RoleAccountant:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// Module names a functional area of the application subject to independent
// permission control.
type Module string

const (
	ModuleUserManagement        Module = "userManagement"
	ModuleFarmSettings          Module = "farmSettings"
	ModuleFieldsAndCrops        Module = "fieldsAndCrops"
	ModuleOperations            Module = "operations"
	ModuleFertilizationPlans    Module = "fertilizationPlans"
	ModuleTreatmentPlans        Module = "treatmentPlans"
	ModuleIrrigationPlans       Module = "irrigationPlans"
	ModuleInventoryManagement   Module = "inventoryManagement"
	ModuleFinancialTransactions Module = "financialTransactions"
	ModuleBudgeting             Module = "budgeting"
	ModuleReports               Module = "reports"
	ModuleApprovalRequests      Module = "approvalRequests"

	// ModuleWildcard matches every module. Only Admin carries it.
	ModuleWildcard Module = "*"
)

// AllModules returns every concrete module, excluding the wildcard.
func AllModules() []Module {
	return []Module{
		ModuleUserManagement,
		ModuleFarmSettings,
		ModuleFieldsAndCrops,
		ModuleOperations,
		ModuleFertilizationPlans,
		ModuleTreatmentPlans,
		ModuleIrrigationPlans,
		ModuleInventoryManagement,
		ModuleFinancialTransactions,
		ModuleBudgeting,
		ModuleReports,
		ModuleApprovalRequests,
	}
}

func (m Module) String() string { return string(m) }

// Action is an operation type checked against a role's rights on a module.
type Action string

const (
	ActionCreate  Action = "create"
	ActionRead    Action = "read"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionExport  Action = "export"
)

// AllActions returns every defined action.
func AllActions() []Action {
	return []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionApprove, ActionReject, ActionExport}
}

func (a Action) String() string { return string(a) }

// Entry grants a set of actions on a single module.
type Entry struct {
	Module  Module   `json:"module"`
	Actions []Action `json:"actions"`
}

// RolePermissions maps each role to its ordered permission entries. A role
// has at most one entry per module plus optionally one wildcard entry, which
// is evaluated first.
var RolePermissions = map[Role][]Entry{
	RoleAdmin: {
		{Module: ModuleWildcard, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionApprove, ActionReject, ActionExport}},
	},
	RoleManager: {
		{Module: ModuleUserManagement, Actions: []Action{ActionRead}},
		{Module: ModuleFarmSettings, Actions: []Action{ActionRead}},
		{Module: ModuleFieldsAndCrops, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}},
		{Module: ModuleOperations, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}},
		{Module: ModuleFertilizationPlans, Actions: []Action{ActionCreate, ActionRead, ActionApprove, ActionReject}},
		{Module: ModuleTreatmentPlans, Actions: []Action{ActionCreate, ActionRead, ActionApprove, ActionReject}},
		{Module: ModuleIrrigationPlans, Actions: []Action{ActionCreate, ActionRead, ActionApprove, ActionReject}},
		{Module: ModuleInventoryManagement, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}},
		{Module: ModuleFinancialTransactions, Actions: []Action{ActionCreate, ActionRead}},
		{Module: ModuleBudgeting, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}},
		{Module: ModuleReports, Actions: []Action{ActionCreate, ActionRead, ActionExport}},
		{Module: ModuleApprovalRequests, Actions: []Action{ActionCreate, ActionRead, ActionApprove, ActionReject}},
	},
	RoleAgronomist: {
		{Module: ModuleUserManagement, Actions: []Action{ActionRead}},
		{Module: ModuleFarmSettings, Actions: []Action{ActionRead}},
		{Module: ModuleFieldsAndCrops, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}},
		{Module: ModuleOperations, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}},
		{Module: ModuleFertilizationPlans, Actions: []Action{ActionCreate, ActionRead}},
		{Module: ModuleTreatmentPlans, Actions: []Action{ActionCreate, ActionRead}},
		{Module: ModuleIrrigationPlans, Actions: []Action{ActionCreate, ActionRead}},
		{Module: ModuleInventoryManagement, Actions: []Action{ActionRead}},
		{Module: ModuleFinancialTransactions, Actions: []Action{ActionRead}},
		{Module: ModuleBudgeting, Actions: []Action{ActionRead}},
		{Module: ModuleReports, Actions: []Action{ActionCreate, ActionRead, ActionExport}},
		{Module: ModuleApprovalRequests, Actions: []Action{ActionCreate, ActionRead}},
	},
	RoleInventoryManager: {
		{Module: ModuleUserManagement, Actions: []Action{ActionRead}},
		{Module: ModuleFarmSettings, Actions: []Action{ActionRead}},
		{Module: ModuleFieldsAndCrops, Actions: []Action{ActionRead}},
		{Module: ModuleOperations, Actions: []Action{ActionRead}},
		{Module: ModuleFertilizationPlans, Actions: []Action{ActionRead}},
		{Module: ModuleTreatmentPlans, Actions: []Action{ActionRead}},
		{Module: ModuleIrrigationPlans, Actions: []Action{ActionRead}},
		{Module: ModuleInventoryManagement, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}},
		{Module: ModuleFinancialTransactions, Actions: []Action{ActionRead}},
		{Module: ModuleBudgeting, Actions: []Action{ActionRead}},
		{Module: ModuleReports, Actions: []Action{ActionCreate, ActionRead, ActionExport}},
		{Module: ModuleApprovalRequests, Actions: []Action{ActionRead}},
	},
	RoleAccountant: {
		{Module: ModuleUserManagement, Actions: []Action{ActionRead}},
		{Module: ModuleFarmSettings, Actions: []Action{ActionRead}},
		{Module: ModuleFieldsAndCrops, Actions: []Action{ActionRead}},
		{Module: ModuleOperations, Actions: []Action{ActionRead}},
		{Module: ModuleFertilizationPlans, Actions: []Action{ActionRead}},
		{Module: ModuleTreatmentPlans, Actions: []Action{ActionRead}},
		{Module: ModuleIrrigationPlans, Actions: []Action{ActionRead}},
		{Module: ModuleInventoryManagement, Actions: []Action{ActionRead}},
		{Module: ModuleFinancialTransactions, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}},
		{Module: ModuleBudgeting, Actions: []Action{ActionCreate, ActionRead}},
		{Module: ModuleReports, Actions: []Action{ActionCreate, ActionRead, ActionExport}},
		{Module: ModuleApprovalRequests, Actions: []Action{ActionRead}},
	},
}

// RoleDescriptions provides the human-readable summary of each role.
var RoleDescriptions = map[Role]string{
	RoleAdmin:            "Full control over the application with system configuration, user management, and data oversight capabilities.",
	RoleManager:          "Oversees day-to-day operations with comprehensive view of activities and approval authority for operational requests.",
	RoleAgronomist:       "Responsible for crop health and scientific practices, creates operational plans requiring manager approval.",
	RoleInventoryManager: "Manages farm inputs and outputs, tracks stock levels, and handles procurement processes.",
	RoleAccountant:       "Handles financial transactions, bookkeeping, and provides financial insights to management.",
}

// HasPermission reports whether role may perform action on module. The
// wildcard entry is consulted first; an unknown role or module yields false
// rather than an error, so callers never special-case bad input.
func HasPermission(role Role, module Module, action Action) bool {
	entries, ok := RolePermissions[role]
	if !ok {
		return false
	}

	for _, e := range entries {
		if e.Module != ModuleWildcard {
			continue
		}
		if containsAction(e.Actions, action) {
			return true
		}
	}

	for _, e := range entries {
		if e.Module == module {
			return containsAction(e.Actions, action)
		}
	}
	return false
}

// PermissionsFor returns the matrix entries for a role. The returned slice
// must be treated as read-only.
func PermissionsFor(role Role) []Entry {
	return RolePermissions[role]
}

// CanApproveRequests reports whether role holds the approve action on the
// approval-requests module.
func CanApproveRequests(role Role) bool {
	return HasPermission(role, ModuleApprovalRequests, ActionApprove)
}

// NeedsApproval reports whether a plan submitted by role must go through the
// approval workflow instead of mutating domain data directly. Agronomists
// propose; managers and admins dispose. The request type is accepted so the
// policy can become type-sensitive without an API break.
func NeedsApproval(role Role, requestType string) bool {
	return role == RoleAgronomist
}

func containsAction(actions []Action, action Action) bool {
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}
