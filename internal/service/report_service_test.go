package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"croppo/internal/model"
	"croppo/internal/permission"
	"croppo/pkg/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityReport(t *testing.T) {
	env := newTestEnv(t)
	svc := env.reportService()
	ctx := context.Background()

	manager := seedUser(t, env.db, "Farm Manager", permission.RoleManager)
	agronomist := seedUser(t, env.db, "Field Agronomist", permission.RoleAgronomist)
	field := seedField(t, env.db)

	ops := env.operationService(env.approvalService())
	_, err := ops.CreateOperation(ctx, manager, CreateOperationRequest{
		Type: model.OperationHarvest, Date: time.Now(), FieldID: field.ID,
	})
	require.NoError(t, err)
	_, err = ops.CreateOperation(ctx, manager, CreateOperationRequest{
		Type: model.OperationHarvest, Date: time.Now(), FieldID: field.ID,
	})
	require.NoError(t, err)

	_, err = env.approvalService().CreateRequest(ctx, agronomist, fertilizationRequest("Pending plan"))
	require.NoError(t, err)

	inventoryManager := seedUser(t, env.db, "Inventory Manager", permission.RoleInventoryManager)
	seedItem(t, env.inventoryService(), inventoryManager, "Low item", 10, 20)

	report, err := svc.Activity(ctx, manager, time.Now().AddDate(0, -1, 0), time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 2, report.OperationsByType[model.OperationHarvest])
	assert.Equal(t, 1, report.PendingApprovals)
	assert.Equal(t, 1, report.LowStockItems)
	require.NotNil(t, report.Finance)

	_, err = svc.Activity(ctx, nil, time.Now().AddDate(0, -1, 0), time.Now())
	assert.True(t, apperr.IsPermission(err))
}

func TestExportTransactionsCSV(t *testing.T) {
	env := newTestEnv(t)
	svc := env.reportService()
	ctx := context.Background()

	accountant := seedUser(t, env.db, "Farm Accountant", permission.RoleAccountant)
	_, err := env.financeService().CreateTransaction(ctx, accountant, CreateTransactionRequest{
		Type:        model.TransactionExpense,
		Category:    "inputs",
		Amount:      decimal.NewFromInt(450),
		Date:        time.Now(),
		Description: "NPK purchase",
	})
	require.NoError(t, err)

	out, err := svc.ExportTransactionsCSV(ctx, accountant, "")
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"id", "type", "category", "amount", "date", "description"}, records[0])
	assert.Equal(t, model.TransactionExpense, records[1][1])
	assert.Equal(t, "450.00", records[1][3])

	_, err = svc.ExportTransactionsCSV(ctx, nil, "")
	assert.True(t, apperr.IsPermission(err))
}

func TestExportOperationsCSV(t *testing.T) {
	env := newTestEnv(t)
	svc := env.reportService()
	ctx := context.Background()

	manager := seedUser(t, env.db, "Farm Manager", permission.RoleManager)
	field := seedField(t, env.db)

	_, err := env.operationService(env.approvalService()).CreateOperation(ctx, manager, CreateOperationRequest{
		Type: model.OperationTreatment, Date: time.Now(), FieldID: field.ID, Operator: "Crew A", Cost: 120,
	})
	require.NoError(t, err)

	out, err := svc.ExportOperationsCSV(ctx, manager, model.OperationTreatment)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, model.OperationTreatment, records[1][1])
	assert.Equal(t, "120.00", records[1][6])

	// Filtering by another type leaves only the header.
	out, err = svc.ExportOperationsCSV(ctx, manager, model.OperationHarvest)
	require.NoError(t, err)
	records, err = csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
