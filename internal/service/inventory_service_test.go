package service

import (
	"context"
	"testing"

	"croppo/internal/model"
	"croppo/internal/permission"
	"croppo/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedItem(t *testing.T, svc InventoryService, actor *permission.Identity, name string, stock, threshold float64) *model.InventoryItem {
	t.Helper()
	item, err := svc.CreateItem(context.Background(), actor, CreateItemRequest{
		Name:             name,
		Category:         "fertilizer",
		CurrentStock:     stock,
		Unit:             "kg",
		ReorderThreshold: threshold,
		ReorderQuantity:  100,
		CostPerUnit:      2.5,
	})
	require.NoError(t, err)
	return item
}

func TestCreateItemPermission(t *testing.T) {
	env := newTestEnv(t)
	svc := env.inventoryService()
	ctx := context.Background()

	accountant := seedUser(t, env.db, "Farm Accountant", permission.RoleAccountant)
	_, err := svc.CreateItem(ctx, accountant, CreateItemRequest{Name: "NPK", Category: "fertilizer", Unit: "kg"})
	assert.True(t, apperr.IsPermission(err))

	inventoryManager := seedUser(t, env.db, "Inventory Manager", permission.RoleInventoryManager)
	item := seedItem(t, svc, inventoryManager, "NPK 15-15-15", 200, 50)
	assert.NotEqual(t, uuid.Nil, item.ID)
	assert.EqualValues(t, 1, env.countAudit(t, model.ActionCreateItem))
}

func TestDeductStock(t *testing.T) {
	env := newTestEnv(t)
	svc := env.inventoryService()
	ctx := context.Background()

	inventoryManager := seedUser(t, env.db, "Inventory Manager", permission.RoleInventoryManager)
	item := seedItem(t, svc, inventoryManager, "NPK 15-15-15", 200, 50)

	updated, err := svc.DeductStock(ctx, inventoryManager, item.ID, StockChangeRequest{Quantity: 30, Reason: "north field application"})
	require.NoError(t, err)
	assert.Equal(t, 170.0, updated.CurrentStock)

	movements, total, err := svc.ListMovements(ctx, item.ID, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementTypeOut, movements[0].MovementType)
	assert.Equal(t, 30.0, movements[0].Quantity)
	assert.Equal(t, 170.0, movements[0].StockAfter)
	assert.Equal(t, "north field application", movements[0].Reason)

	assert.EqualValues(t, 1, env.countAudit(t, model.ActionDeductStock))
}

func TestDeductStockInsufficient(t *testing.T) {
	env := newTestEnv(t)
	svc := env.inventoryService()
	ctx := context.Background()

	inventoryManager := seedUser(t, env.db, "Inventory Manager", permission.RoleInventoryManager)
	item := seedItem(t, svc, inventoryManager, "Durum Wheat Seed", 10, 5)

	_, err := svc.DeductStock(ctx, inventoryManager, item.ID, StockChangeRequest{Quantity: 25})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	// The failed deduction must leave the balance untouched.
	reloaded, err := svc.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, reloaded.CurrentStock)

	_, _, err = svc.ListMovements(ctx, item.ID, 1, 20)
	require.NoError(t, err)
}

func TestDeductStockValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.inventoryService()
	ctx := context.Background()

	inventoryManager := seedUser(t, env.db, "Inventory Manager", permission.RoleInventoryManager)
	item := seedItem(t, svc, inventoryManager, "Diesel", 500, 100)

	_, err := svc.DeductStock(ctx, inventoryManager, item.ID, StockChangeRequest{Quantity: 0})
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.DeductStock(ctx, inventoryManager, item.ID, StockChangeRequest{Quantity: -5})
	assert.True(t, apperr.IsValidation(err))

	agronomist := seedUser(t, env.db, "Field Agronomist", permission.RoleAgronomist)
	_, err = svc.DeductStock(ctx, agronomist, item.ID, StockChangeRequest{Quantity: 5})
	assert.True(t, apperr.IsPermission(err))

	_, err = svc.DeductStock(ctx, inventoryManager, uuid.New(), StockChangeRequest{Quantity: 5})
	assert.True(t, apperr.IsNotFound(err))
}

func TestRestockItem(t *testing.T) {
	env := newTestEnv(t)
	svc := env.inventoryService()
	ctx := context.Background()

	inventoryManager := seedUser(t, env.db, "Inventory Manager", permission.RoleInventoryManager)
	item := seedItem(t, svc, inventoryManager, "Copper Fungicide", 20, 10)

	updated, err := svc.RestockItem(ctx, inventoryManager, item.ID, StockChangeRequest{Quantity: 80, Reason: "supplier delivery"})
	require.NoError(t, err)
	assert.Equal(t, 100.0, updated.CurrentStock)

	movements, _, err := svc.ListMovements(ctx, item.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementTypeIn, movements[0].MovementType)
	assert.Equal(t, 100.0, movements[0].StockAfter)
}

func TestUpdateItemPartialFields(t *testing.T) {
	env := newTestEnv(t)
	svc := env.inventoryService()
	ctx := context.Background()

	inventoryManager := seedUser(t, env.db, "Inventory Manager", permission.RoleInventoryManager)
	item := seedItem(t, svc, inventoryManager, "NPK 15-15-15", 200, 50)

	newThreshold := 75.0
	updated, err := svc.UpdateItem(ctx, inventoryManager, item.ID, UpdateItemRequest{
		ReorderThreshold: &newThreshold,
		Supplier:         "AgroSupply SL",
	})
	require.NoError(t, err)
	assert.Equal(t, 75.0, updated.ReorderThreshold)
	assert.Equal(t, "AgroSupply SL", updated.Supplier)
	assert.Equal(t, "NPK 15-15-15", updated.Name)
	assert.Equal(t, 200.0, updated.CurrentStock)
}

func TestLowStockItems(t *testing.T) {
	env := newTestEnv(t)
	svc := env.inventoryService()
	ctx := context.Background()

	inventoryManager := seedUser(t, env.db, "Inventory Manager", permission.RoleInventoryManager)
	seedItem(t, svc, inventoryManager, "Plenty", 500, 50)
	low := seedItem(t, svc, inventoryManager, "Running Out", 40, 50)

	items, err := svc.LowStockItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, low.ID, items[0].ID)

	// Deducting below the threshold moves an item into the low stock list.
	_, err = svc.DeductStock(ctx, inventoryManager, low.ID, StockChangeRequest{Quantity: 10})
	require.NoError(t, err)

	items, err = svc.LowStockItems(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestDeleteItem(t *testing.T) {
	env := newTestEnv(t)
	svc := env.inventoryService()
	ctx := context.Background()

	inventoryManager := seedUser(t, env.db, "Inventory Manager", permission.RoleInventoryManager)
	item := seedItem(t, svc, inventoryManager, "Obsolete", 5, 1)

	agronomist := seedUser(t, env.db, "Field Agronomist", permission.RoleAgronomist)
	err := svc.DeleteItem(ctx, agronomist, item.ID)
	assert.True(t, apperr.IsPermission(err))

	require.NoError(t, svc.DeleteItem(ctx, inventoryManager, item.ID))

	_, err = svc.GetItem(ctx, item.ID)
	assert.True(t, apperr.IsNotFound(err))
}
