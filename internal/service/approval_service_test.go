package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"croppo/internal/model"
	"croppo/internal/permission"
	"croppo/pkg/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fertilizationRequest(title string) CreateApprovalRequestDTO {
	return CreateApprovalRequestDTO{
		Type:          model.RequestTypeFertilization,
		Title:         title,
		Description:   "NPK application on the north field",
		Data:          json.RawMessage(`{"rate_kg_ha": 40}`),
		EstimatedCost: decimal.NewFromInt(1200),
		Priority:      model.PriorityHigh,
	}
}

func TestCreateRequestRequiresPermission(t *testing.T) {
	env := newTestEnv(t)
	svc := env.approvalService()
	ctx := context.Background()

	agronomist := seedUser(t, env.db, "Field Agronomist", permission.RoleAgronomist)
	inventoryManager := seedUser(t, env.db, "Inventory Manager", permission.RoleInventoryManager)

	created, err := svc.CreateRequest(ctx, agronomist, fertilizationRequest("Spring fertilization"))
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusPending, created.Status)
	assert.Equal(t, "Field Agronomist", created.RequestedByName)

	_, err = svc.CreateRequest(ctx, inventoryManager, fertilizationRequest("Should not pass"))
	require.Error(t, err)
	assert.True(t, apperr.IsPermission(err))

	_, err = svc.CreateRequest(ctx, nil, fertilizationRequest("No session"))
	require.Error(t, err)
	assert.True(t, apperr.IsAuthentication(err))
}

func TestCreateRequestValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.approvalService()
	ctx := context.Background()
	agronomist := seedUser(t, env.db, "Field Agronomist", permission.RoleAgronomist)

	bad := fertilizationRequest("  ")
	bad.Title = "   "
	_, err := svc.CreateRequest(ctx, agronomist, bad)
	assert.True(t, apperr.IsValidation(err))

	bad = fertilizationRequest("Valid title")
	bad.Type = "construction"
	_, err = svc.CreateRequest(ctx, agronomist, bad)
	assert.True(t, apperr.IsValidation(err))

	bad = fertilizationRequest("Valid title")
	bad.Priority = "extreme"
	_, err = svc.CreateRequest(ctx, agronomist, bad)
	assert.True(t, apperr.IsValidation(err))
}

func TestRequestIDsAreMonotonic(t *testing.T) {
	env := newTestEnv(t)
	svc := env.approvalService()
	ctx := context.Background()

	agronomist := seedUser(t, env.db, "Field Agronomist", permission.RoleAgronomist)
	manager := seedUser(t, env.db, "Farm Manager", permission.RoleManager)

	first, err := svc.CreateRequest(ctx, agronomist, fertilizationRequest("First"))
	require.NoError(t, err)
	second, err := svc.CreateRequest(ctx, agronomist, fertilizationRequest("Second"))
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	// Deciding requests must not disturb id assignment.
	_, err = svc.ApproveRequest(ctx, manager, first.ID, "go ahead")
	require.NoError(t, err)
	_, err = svc.RejectRequest(ctx, manager, second.ID, "too expensive")
	require.NoError(t, err)

	third, err := svc.CreateRequest(ctx, agronomist, fertilizationRequest("Third"))
	require.NoError(t, err)
	assert.Greater(t, third.ID, second.ID)
}

func TestApproveWorkflow(t *testing.T) {
	env := newTestEnv(t)
	svc := env.approvalService()
	ctx := context.Background()

	agronomist := seedUser(t, env.db, "Field Agronomist", permission.RoleAgronomist)
	manager := seedUser(t, env.db, "Farm Manager", permission.RoleManager)

	created, err := svc.CreateRequest(ctx, agronomist, fertilizationRequest("Spring fertilization"))
	require.NoError(t, err)

	approved, err := svc.ApproveRequest(ctx, manager, created.ID, "within budget")
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusApproved, approved.Status)
	assert.Equal(t, "Farm Manager", approved.ApprovedByName)
	assert.NotNil(t, approved.ApprovedAt)
	assert.Equal(t, "within budget", approved.ApprovalComment)

	// An approved request is terminal.
	_, err = svc.RejectRequest(ctx, manager, created.ID, "changed my mind")
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidTransition(err))

	_, err = svc.ApproveRequest(ctx, manager, created.ID, "again")
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidTransition(err))

	assert.EqualValues(t, 1, env.countAudit(t, model.ActionApproveRequest))
}

func TestApproveDeniedWithoutApprovalRight(t *testing.T) {
	env := newTestEnv(t)
	svc := env.approvalService()
	ctx := context.Background()

	agronomist := seedUser(t, env.db, "Field Agronomist", permission.RoleAgronomist)
	accountant := seedUser(t, env.db, "Farm Accountant", permission.RoleAccountant)

	created, err := svc.CreateRequest(ctx, agronomist, fertilizationRequest("Spring fertilization"))
	require.NoError(t, err)

	_, err = svc.ApproveRequest(ctx, accountant, created.ID, "")
	require.Error(t, err)
	assert.True(t, apperr.IsPermission(err))

	_, err = svc.RejectRequest(ctx, accountant, created.ID, "no")
	require.Error(t, err)
	assert.True(t, apperr.IsPermission(err))
}

func TestSelfApprovalRefused(t *testing.T) {
	env := newTestEnv(t)
	svc := env.approvalService()
	ctx := context.Background()

	manager := seedUser(t, env.db, "Farm Manager", permission.RoleManager)

	created, err := svc.CreateRequest(ctx, manager, fertilizationRequest("Manager's own plan"))
	require.NoError(t, err)

	_, err = svc.ApproveRequest(ctx, manager, created.ID, "")
	require.Error(t, err)
	assert.True(t, apperr.IsPermission(err))

	// The request is untouched and another approver can still decide it.
	admin := seedUser(t, env.db, "Farm Administrator", permission.RoleAdmin)
	approved, err := svc.ApproveRequest(ctx, admin, created.ID, "")
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusApproved, approved.Status)
}

func TestRejectRequiresReason(t *testing.T) {
	env := newTestEnv(t)
	svc := env.approvalService()
	ctx := context.Background()

	agronomist := seedUser(t, env.db, "Field Agronomist", permission.RoleAgronomist)
	manager := seedUser(t, env.db, "Farm Manager", permission.RoleManager)

	created, err := svc.CreateRequest(ctx, agronomist, fertilizationRequest("Spring fertilization"))
	require.NoError(t, err)

	for _, reason := range []string{"", "   ", "\t\n"} {
		_, err = svc.RejectRequest(ctx, manager, created.ID, reason)
		require.Error(t, err)
		assert.True(t, apperr.IsValidation(err), "reason=%q", reason)
	}

	rejected, err := svc.RejectRequest(ctx, manager, created.ID, "insufficient budget")
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusRejected, rejected.Status)
	assert.Equal(t, "insufficient budget", rejected.RejectionReason)
	assert.NotNil(t, rejected.RejectedAt)
}

func TestDecideUnknownRequest(t *testing.T) {
	env := newTestEnv(t)
	svc := env.approvalService()
	ctx := context.Background()

	manager := seedUser(t, env.db, "Farm Manager", permission.RoleManager)

	_, err := svc.ApproveRequest(ctx, manager, 9999, "")
	assert.True(t, apperr.IsNotFound(err))

	_, err = svc.RejectRequest(ctx, manager, 9999, "missing")
	assert.True(t, apperr.IsNotFound(err))
}

func TestPendingForApprovalExcludesOwnRequests(t *testing.T) {
	env := newTestEnv(t)
	svc := env.approvalService()
	ctx := context.Background()

	agronomist := seedUser(t, env.db, "Field Agronomist", permission.RoleAgronomist)
	manager := seedUser(t, env.db, "Farm Manager", permission.RoleManager)

	_, err := svc.CreateRequest(ctx, agronomist, fertilizationRequest("From agronomist"))
	require.NoError(t, err)
	managerOwn, err := svc.CreateRequest(ctx, manager, fertilizationRequest("From manager"))
	require.NoError(t, err)

	inbox, err := svc.PendingForApproval(ctx, manager)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "From agronomist", inbox[0].Title)
	for _, r := range inbox {
		assert.NotEqual(t, managerOwn.ID, r.ID)
	}

	// Non-approvers get an empty inbox, not an error.
	inbox, err = svc.PendingForApproval(ctx, agronomist)
	require.NoError(t, err)
	assert.Empty(t, inbox)
}

func TestListMyRequests(t *testing.T) {
	env := newTestEnv(t)
	svc := env.approvalService()
	ctx := context.Background()

	agronomist := seedUser(t, env.db, "Field Agronomist", permission.RoleAgronomist)
	manager := seedUser(t, env.db, "Farm Manager", permission.RoleManager)

	_, err := svc.CreateRequest(ctx, agronomist, fertilizationRequest("Mine"))
	require.NoError(t, err)
	_, err = svc.CreateRequest(ctx, manager, fertilizationRequest("Not mine"))
	require.NoError(t, err)

	mine, err := svc.ListMyRequests(ctx, agronomist)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Mine", mine[0].Title)

	none, err := svc.ListMyRequests(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListRequestsByStatus(t *testing.T) {
	env := newTestEnv(t)
	svc := env.approvalService()
	ctx := context.Background()

	agronomist := seedUser(t, env.db, "Field Agronomist", permission.RoleAgronomist)
	manager := seedUser(t, env.db, "Farm Manager", permission.RoleManager)

	first, err := svc.CreateRequest(ctx, agronomist, fertilizationRequest("First"))
	require.NoError(t, err)
	_, err = svc.CreateRequest(ctx, agronomist, fertilizationRequest("Second"))
	require.NoError(t, err)
	_, err = svc.ApproveRequest(ctx, manager, first.ID, "")
	require.NoError(t, err)

	pending, err := svc.ListByStatus(ctx, model.RequestStatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	approved, err := svc.ListByStatus(ctx, model.RequestStatusApproved)
	require.NoError(t, err)
	assert.Len(t, approved, 1)

	all, total, err := svc.ListRequests(ctx, ApprovalFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)
}

func TestCreateRequestWritesAudit(t *testing.T) {
	env := newTestEnv(t)
	svc := env.approvalService()
	ctx := context.Background()

	agronomist := seedUser(t, env.db, "Field Agronomist", permission.RoleAgronomist)
	created, err := svc.CreateRequest(ctx, agronomist, fertilizationRequest("Audited"))
	require.NoError(t, err)

	var entry model.AuditLog
	require.NoError(t, env.db.First(&entry, "action = ?", model.ActionCreateApprovalRequest).Error)
	assert.Equal(t, agronomist.ID, *entry.UserID)
	assert.Equal(t, "Audited", entry.EntityName)
	assert.True(t, strings.Contains(entry.Details, model.RequestTypeFertilization))
	parsed, err := strconv.ParseInt(entry.EntityID, 10, 64)
	require.NoError(t, err)
	assert.Equal(t, created.ID, parsed)
}
