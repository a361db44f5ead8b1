package service

import (
	"context"
	"testing"
	"time"

	"croppo/internal/model"
	"croppo/internal/permission"
	"croppo/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedField(t *testing.T, db *gorm.DB) *model.Field {
	t.Helper()
	farm := model.Farm{ID: uuid.New(), Name: "Green Valley Farm", Area: 120, Location: "Valencia"}
	require.NoError(t, db.Create(&farm).Error)
	field := model.Field{ID: uuid.New(), Name: "North Field", FarmID: farm.ID, Area: 40, SoilType: "clay loam"}
	require.NoError(t, db.Create(&field).Error)
	return &field
}

func planRequest(fieldID uuid.UUID) SubmitPlanRequest {
	return SubmitPlanRequest{
		Type:          model.RequestTypeFertilization,
		Title:         "Spring NPK application",
		Description:   "40 kg/ha before flowering",
		FieldID:       fieldID,
		QuantityUsed:  400,
		Unit:          "kg",
		Date:          time.Now().AddDate(0, 0, 7),
		EstimatedCost: decimal.NewFromInt(950),
		Priority:      model.PriorityHigh,
	}
}

func TestSubmitPlanRoutesAgronomistThroughApproval(t *testing.T) {
	env := newTestEnv(t)
	approvals := env.approvalService()
	svc := env.operationService(approvals)
	ctx := context.Background()

	field := seedField(t, env.db)
	agronomist := seedUser(t, env.db, "Field Agronomist", permission.RoleAgronomist)

	result, err := svc.SubmitPlan(ctx, agronomist, planRequest(field.ID))
	require.NoError(t, err)
	assert.True(t, result.RoutedForApproval)
	assert.Nil(t, result.Operation)
	require.NotNil(t, result.ApprovalRequest)
	assert.Equal(t, model.RequestStatusPending, result.ApprovalRequest.Status)
	assert.Equal(t, model.RequestTypeFertilization, result.ApprovalRequest.Type)

	// Nothing executed yet, the plan only exists as a pending request.
	ops, total, err := svc.ListOperations(ctx, "", nil, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, ops)

	pending, err := approvals.ListByStatus(ctx, model.RequestStatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestSubmitPlanExecutesDirectlyForManager(t *testing.T) {
	env := newTestEnv(t)
	approvals := env.approvalService()
	svc := env.operationService(approvals)
	ctx := context.Background()

	field := seedField(t, env.db)
	manager := seedUser(t, env.db, "Farm Manager", permission.RoleManager)

	result, err := svc.SubmitPlan(ctx, manager, planRequest(field.ID))
	require.NoError(t, err)
	assert.False(t, result.RoutedForApproval)
	assert.Nil(t, result.ApprovalRequest)
	require.NotNil(t, result.Operation)
	assert.Equal(t, model.OperationFertilization, result.Operation.Type)
	assert.Equal(t, model.OperationStatusConfirmed, result.Operation.Status)
	assert.Equal(t, "Farm Manager", result.Operation.Operator)

	pending, err := approvals.ListByStatus(ctx, model.RequestStatusPending)
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.EqualValues(t, 1, env.countAudit(t, model.ActionSubmitPlan))
}

func TestSubmitPlanAdminBypassesApproval(t *testing.T) {
	env := newTestEnv(t)
	svc := env.operationService(env.approvalService())
	ctx := context.Background()

	field := seedField(t, env.db)
	admin := seedUser(t, env.db, "Farm Administrator", permission.RoleAdmin)

	req := planRequest(field.ID)
	req.Type = model.RequestTypeIrrigation
	result, err := svc.SubmitPlan(ctx, admin, req)
	require.NoError(t, err)
	assert.False(t, result.RoutedForApproval)
	require.NotNil(t, result.Operation)
	assert.Equal(t, model.OperationIrrigation, result.Operation.Type)
}

func TestSubmitPlanPermissionAndValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.operationService(env.approvalService())
	ctx := context.Background()

	field := seedField(t, env.db)
	accountant := seedUser(t, env.db, "Farm Accountant", permission.RoleAccountant)
	agronomist := seedUser(t, env.db, "Field Agronomist", permission.RoleAgronomist)

	_, err := svc.SubmitPlan(ctx, accountant, planRequest(field.ID))
	assert.True(t, apperr.IsPermission(err))

	bad := planRequest(field.ID)
	bad.Type = "pruning"
	_, err = svc.SubmitPlan(ctx, agronomist, bad)
	assert.True(t, apperr.IsValidation(err))

	missing := planRequest(uuid.New())
	_, err = svc.SubmitPlan(ctx, agronomist, missing)
	assert.True(t, apperr.IsNotFound(err))
}

func TestCreateOperation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.operationService(env.approvalService())
	ctx := context.Background()

	field := seedField(t, env.db)
	manager := seedUser(t, env.db, "Farm Manager", permission.RoleManager)

	op, err := svc.CreateOperation(ctx, manager, CreateOperationRequest{
		Type:     model.OperationHarvest,
		Date:     time.Now(),
		FieldID:  field.ID,
		Operator: "Harvest crew",
		Cost:     300,
	})
	require.NoError(t, err)
	assert.Equal(t, model.OperationStatusConfirmed, op.Status)
	assert.Equal(t, manager.ID, *op.CreatedBy)

	fetched, err := svc.GetOperation(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, op.ID, fetched.ID)

	assert.EqualValues(t, 1, env.countAudit(t, model.ActionCreateOperation))
}

func TestCreateOperationChecks(t *testing.T) {
	env := newTestEnv(t)
	svc := env.operationService(env.approvalService())
	ctx := context.Background()

	field := seedField(t, env.db)
	manager := seedUser(t, env.db, "Farm Manager", permission.RoleManager)
	accountant := seedUser(t, env.db, "Farm Accountant", permission.RoleAccountant)

	_, err := svc.CreateOperation(ctx, accountant, CreateOperationRequest{
		Type: model.OperationHarvest, Date: time.Now(), FieldID: field.ID,
	})
	assert.True(t, apperr.IsPermission(err))

	_, err = svc.CreateOperation(ctx, manager, CreateOperationRequest{
		Type: "WEEDING", Date: time.Now(), FieldID: field.ID,
	})
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.CreateOperation(ctx, manager, CreateOperationRequest{
		Type: model.OperationPlanting, Date: time.Now(), FieldID: uuid.New(),
	})
	assert.True(t, apperr.IsNotFound(err))
}

func TestDeleteOperation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.operationService(env.approvalService())
	ctx := context.Background()

	field := seedField(t, env.db)
	manager := seedUser(t, env.db, "Farm Manager", permission.RoleManager)

	op, err := svc.CreateOperation(ctx, manager, CreateOperationRequest{
		Type: model.OperationTreatment, Date: time.Now(), FieldID: field.ID,
	})
	require.NoError(t, err)

	accountant := seedUser(t, env.db, "Farm Accountant", permission.RoleAccountant)
	err = svc.DeleteOperation(ctx, accountant, op.ID)
	assert.True(t, apperr.IsPermission(err))

	require.NoError(t, svc.DeleteOperation(ctx, manager, op.ID))

	_, err = svc.GetOperation(ctx, op.ID)
	assert.True(t, apperr.IsNotFound(err))

	err = svc.DeleteOperation(ctx, manager, op.ID)
	assert.True(t, apperr.IsNotFound(err))
}
