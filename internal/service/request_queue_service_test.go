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

func stockRequest() EnqueueStockRequestDTO {
	return EnqueueStockRequestDTO{
		Type:        model.RequestTypeTreatment,
		OperationID: uuid.New(),
		ItemID:      uuid.New(),
		Quantity:    12.5,
	}
}

// stockRequestFor returns a request DTO against a freshly created item with
// the given stock, so acceptance has a real balance to deduct from.
func stockRequestFor(t *testing.T, env *testEnv, actor *permission.Identity, stock, quantity float64) (EnqueueStockRequestDTO, *model.InventoryItem) {
	t.Helper()

	item, err := env.inventoryService().CreateItem(context.Background(), actor, CreateItemRequest{
		Name:         "Copper Fungicide " + uuid.NewString()[:8],
		Category:     "pesticide",
		CurrentStock: stock,
		Unit:         "L",
	})
	require.NoError(t, err)

	dto := stockRequest()
	dto.ItemID = item.ID
	dto.Quantity = quantity
	return dto, item
}

func TestEnqueueStockRequest(t *testing.T) {
	env := newTestEnv(t)
	svc := env.queueService()
	ctx := context.Background()

	agronomist := seedUser(t, env.db, "Field Agronomist", permission.RoleAgronomist)

	req, err := svc.Enqueue(ctx, agronomist, stockRequest())
	require.NoError(t, err)
	assert.Equal(t, model.InventoryRequestPending, req.Status)
	assert.Greater(t, req.ID, int64(0))

	_, err = svc.Enqueue(ctx, nil, stockRequest())
	assert.True(t, apperr.IsAuthentication(err))

	bad := stockRequest()
	bad.Type = "irrigation"
	_, err = svc.Enqueue(ctx, agronomist, bad)
	assert.True(t, apperr.IsValidation(err))

	bad = stockRequest()
	bad.Quantity = 0
	_, err = svc.Enqueue(ctx, agronomist, bad)
	assert.True(t, apperr.IsValidation(err))
}

func TestAcceptStockRequestIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	svc := env.queueService()
	ctx := context.Background()

	agronomist := seedUser(t, env.db, "Field Agronomist", permission.RoleAgronomist)
	inventoryManager := seedUser(t, env.db, "Inventory Manager", permission.RoleInventoryManager)

	dto, _ := stockRequestFor(t, env, inventoryManager, 50, 12.5)
	req, err := svc.Enqueue(ctx, agronomist, dto)
	require.NoError(t, err)

	accepted, err := svc.Accept(ctx, inventoryManager, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InventoryRequestAccepted, accepted.Status)

	_, err = svc.Accept(ctx, inventoryManager, req.ID)
	assert.True(t, apperr.IsInvalidTransition(err))
	_, err = svc.Reject(ctx, inventoryManager, req.ID)
	assert.True(t, apperr.IsInvalidTransition(err))

	assert.EqualValues(t, 1, env.countAudit(t, model.ActionAcceptStockRequest))
}

func TestRejectStockRequestIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	svc := env.queueService()
	ctx := context.Background()

	agronomist := seedUser(t, env.db, "Field Agronomist", permission.RoleAgronomist)
	inventoryManager := seedUser(t, env.db, "Inventory Manager", permission.RoleInventoryManager)

	req, err := svc.Enqueue(ctx, agronomist, stockRequest())
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, inventoryManager, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InventoryRequestRejected, rejected.Status)

	_, err = svc.Accept(ctx, inventoryManager, req.ID)
	assert.True(t, apperr.IsInvalidTransition(err))

	assert.EqualValues(t, 1, env.countAudit(t, model.ActionRejectStockRequest))
}

func TestDecideStockRequestRequiresInventoryUpdate(t *testing.T) {
	env := newTestEnv(t)
	svc := env.queueService()
	ctx := context.Background()

	agronomist := seedUser(t, env.db, "Field Agronomist", permission.RoleAgronomist)
	accountant := seedUser(t, env.db, "Farm Accountant", permission.RoleAccountant)

	req, err := svc.Enqueue(ctx, agronomist, stockRequest())
	require.NoError(t, err)

	_, err = svc.Accept(ctx, agronomist, req.ID)
	assert.True(t, apperr.IsPermission(err))
	_, err = svc.Reject(ctx, accountant, req.ID)
	assert.True(t, apperr.IsPermission(err))

	// The request is untouched after the denials.
	pending, err := svc.List(ctx, model.InventoryRequestPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestAcceptDeductsStock(t *testing.T) {
	env := newTestEnv(t)
	queue := env.queueService()
	inventory := env.inventoryService()
	ctx := context.Background()

	agronomist := seedUser(t, env.db, "Field Agronomist", permission.RoleAgronomist)
	inventoryManager := seedUser(t, env.db, "Inventory Manager", permission.RoleInventoryManager)

	dto, item := stockRequestFor(t, env, inventoryManager, 100, 25)
	req, err := queue.Enqueue(ctx, agronomist, dto)
	require.NoError(t, err)

	_, err = queue.Accept(ctx, inventoryManager, req.ID)
	require.NoError(t, err)

	reloaded, err := inventory.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 75.0, reloaded.CurrentStock)

	movements, total, err := inventory.ListMovements(ctx, item.ID, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, model.MovementTypeOut, movements[0].MovementType)
	assert.Equal(t, 25.0, movements[0].Quantity)
	assert.Equal(t, 75.0, movements[0].StockAfter)
}

func TestAcceptInsufficientStockLeavesRequestPending(t *testing.T) {
	env := newTestEnv(t)
	queue := env.queueService()
	inventory := env.inventoryService()
	ctx := context.Background()

	agronomist := seedUser(t, env.db, "Field Agronomist", permission.RoleAgronomist)
	inventoryManager := seedUser(t, env.db, "Inventory Manager", permission.RoleInventoryManager)

	dto, item := stockRequestFor(t, env, inventoryManager, 10, 25)
	req, err := queue.Enqueue(ctx, agronomist, dto)
	require.NoError(t, err)

	_, err = queue.Accept(ctx, inventoryManager, req.ID)
	assert.True(t, apperr.IsValidation(err))

	// The acceptance rolled back whole, so the request can still be decided
	// once the item is restocked.
	pending, err := queue.List(ctx, model.InventoryRequestPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	reloaded, err := inventory.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, reloaded.CurrentStock)

	_, err = inventory.RestockItem(ctx, inventoryManager, item.ID, StockChangeRequest{Quantity: 40, Reason: "delivery"})
	require.NoError(t, err)
	accepted, err := queue.Accept(ctx, inventoryManager, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InventoryRequestAccepted, accepted.Status)
}

func TestAcceptUnknownItemRollsBack(t *testing.T) {
	env := newTestEnv(t)
	svc := env.queueService()
	ctx := context.Background()

	agronomist := seedUser(t, env.db, "Field Agronomist", permission.RoleAgronomist)
	inventoryManager := seedUser(t, env.db, "Inventory Manager", permission.RoleInventoryManager)

	req, err := svc.Enqueue(ctx, agronomist, stockRequest())
	require.NoError(t, err)

	_, err = svc.Accept(ctx, inventoryManager, req.ID)
	assert.True(t, apperr.IsNotFound(err))

	pending, err := svc.List(ctx, model.InventoryRequestPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestDecideUnknownStockRequest(t *testing.T) {
	env := newTestEnv(t)
	svc := env.queueService()
	ctx := context.Background()

	inventoryManager := seedUser(t, env.db, "Inventory Manager", permission.RoleInventoryManager)

	_, err := svc.Accept(ctx, inventoryManager, 4242)
	assert.True(t, apperr.IsNotFound(err))
}

func TestListStockRequestsByStatus(t *testing.T) {
	env := newTestEnv(t)
	svc := env.queueService()
	ctx := context.Background()

	agronomist := seedUser(t, env.db, "Field Agronomist", permission.RoleAgronomist)
	inventoryManager := seedUser(t, env.db, "Inventory Manager", permission.RoleInventoryManager)

	dto, _ := stockRequestFor(t, env, inventoryManager, 50, 12.5)
	first, err := svc.Enqueue(ctx, agronomist, dto)
	require.NoError(t, err)
	_, err = svc.Enqueue(ctx, agronomist, stockRequest())
	require.NoError(t, err)
	_, err = svc.Accept(ctx, inventoryManager, first.ID)
	require.NoError(t, err)

	pending, err := svc.List(ctx, model.InventoryRequestPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
