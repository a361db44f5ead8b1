package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"croppo/internal/model"
	"croppo/internal/permission"
	"croppo/internal/repository"
	ws "croppo/internal/websocket"
	"croppo/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DTOs for Request validation
type CreateItemRequest struct {
	Name             string  `json:"name" binding:"required"`
	Category         string  `json:"category" binding:"required,oneof=fertilizer pesticide seed fuel equipment"`
	CurrentStock     float64 `json:"current_stock" binding:"gte=0"`
	Unit             string  `json:"unit" binding:"required"`
	ReorderThreshold float64 `json:"reorder_threshold" binding:"gte=0"`
	ReorderQuantity  float64 `json:"reorder_quantity" binding:"gte=0"`
	CostPerUnit      float64 `json:"cost_per_unit" binding:"gte=0"`
	Supplier         string  `json:"supplier"`
	Barcode          string  `json:"barcode"`
	Location         string  `json:"location"`
}

type UpdateItemRequest struct {
	Name             string   `json:"name"`
	ReorderThreshold *float64 `json:"reorder_threshold"`
	ReorderQuantity  *float64 `json:"reorder_quantity"`
	CostPerUnit      *float64 `json:"cost_per_unit"`
	Supplier         string   `json:"supplier"`
	Location         string   `json:"location"`
}

type StockChangeRequest struct {
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Reason   string  `json:"reason"`
}

// InventoryService manages stock items and their movement ledger. Every
// stock change writes an InventoryMovement row with the resulting balance,
// and deductions hold a row lock so concurrent usage cannot oversubscribe
// an item.
type InventoryService interface {
	CreateItem(ctx context.Context, actor *permission.Identity, req CreateItemRequest) (*model.InventoryItem, error)
	GetItem(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error)
	ListItems(ctx context.Context, category string, page, limit int) ([]model.InventoryItem, int64, error)
	UpdateItem(ctx context.Context, actor *permission.Identity, id uuid.UUID, req UpdateItemRequest) (*model.InventoryItem, error)
	DeleteItem(ctx context.Context, actor *permission.Identity, id uuid.UUID) error
	DeductStock(ctx context.Context, actor *permission.Identity, id uuid.UUID, req StockChangeRequest) (*model.InventoryItem, error)
	RestockItem(ctx context.Context, actor *permission.Identity, id uuid.UUID, req StockChangeRequest) (*model.InventoryItem, error)
	ListMovements(ctx context.Context, itemID uuid.UUID, page, limit int) ([]model.InventoryMovement, int64, error)
	LowStockItems(ctx context.Context) ([]model.InventoryItem, error)
}

type inventoryService struct {
	inventoryRepo repository.InventoryRepository
	auditRepo     repository.AuditRepository
	txManager     repository.TransactionManager
	hub           *ws.Hub
}

func NewInventoryService(
	inventoryRepo repository.InventoryRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) InventoryService {
	return &inventoryService{
		inventoryRepo: inventoryRepo,
		auditRepo:     auditRepo,
		txManager:     txManager,
		hub:           hub,
	}
}

func (s *inventoryService) CreateItem(ctx context.Context, actor *permission.Identity, req CreateItemRequest) (*model.InventoryItem, error) {
	gate := permission.NewGate(actor)
	if gate.Cannot(permission.ModuleInventoryManagement, permission.ActionCreate) {
		return nil, apperr.Permission("CREATE_ITEM_DENIED", "role %s cannot create inventory items", actorRole(actor))
	}

	item := &model.InventoryItem{
		Name:             req.Name,
		Category:         req.Category,
		CurrentStock:     req.CurrentStock,
		Unit:             req.Unit,
		ReorderThreshold: req.ReorderThreshold,
		ReorderQuantity:  req.ReorderQuantity,
		CostPerUnit:      req.CostPerUnit,
		Supplier:         req.Supplier,
		Barcode:          req.Barcode,
		Location:         req.Location,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.inventoryRepo.CreateItem(txCtx, item); createErr != nil {
			return fmt.Errorf("failed to create item: %w", createErr)
		}
		return s.writeAudit(txCtx, actor, model.ActionCreateItem, item.ID.String(), item.Name, map[string]interface{}{
			"category": item.Category,
			"stock":    item.CurrentStock,
			"unit":     item.Unit,
		})
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

func (s *inventoryService) GetItem(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	item, err := s.inventoryRepo.FindItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("ITEM_NOT_FOUND", "inventory item %s not found", id)
		}
		return nil, err
	}
	return item, nil
}

func (s *inventoryService) ListItems(ctx context.Context, category string, page, limit int) ([]model.InventoryItem, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.inventoryRepo.ListItems(ctx, category, page, limit)
}

func (s *inventoryService) UpdateItem(ctx context.Context, actor *permission.Identity, id uuid.UUID, req UpdateItemRequest) (*model.InventoryItem, error) {
	gate := permission.NewGate(actor)
	if gate.Cannot(permission.ModuleInventoryManagement, permission.ActionUpdate) {
		return nil, apperr.Permission("UPDATE_ITEM_DENIED", "role %s cannot update inventory items", actorRole(actor))
	}

	item, err := s.inventoryRepo.FindItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("ITEM_NOT_FOUND", "inventory item %s not found", id)
		}
		return nil, err
	}

	if req.Name != "" {
		item.Name = req.Name
	}
	if req.ReorderThreshold != nil {
		item.ReorderThreshold = *req.ReorderThreshold
	}
	if req.ReorderQuantity != nil {
		item.ReorderQuantity = *req.ReorderQuantity
	}
	if req.CostPerUnit != nil {
		item.CostPerUnit = *req.CostPerUnit
	}
	if req.Supplier != "" {
		item.Supplier = req.Supplier
	}
	if req.Location != "" {
		item.Location = req.Location
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if saveErr := s.inventoryRepo.UpdateItem(txCtx, item); saveErr != nil {
			return fmt.Errorf("failed to update item: %w", saveErr)
		}
		return s.writeAudit(txCtx, actor, model.ActionUpdateItem, item.ID.String(), item.Name, nil)
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

func (s *inventoryService) DeleteItem(ctx context.Context, actor *permission.Identity, id uuid.UUID) error {
	gate := permission.NewGate(actor)
	if gate.Cannot(permission.ModuleInventoryManagement, permission.ActionDelete) {
		return apperr.Permission("DELETE_ITEM_DENIED", "role %s cannot delete inventory items", actorRole(actor))
	}

	item, err := s.inventoryRepo.FindItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("ITEM_NOT_FOUND", "inventory item %s not found", id)
		}
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if delErr := s.inventoryRepo.DeleteItem(txCtx, id); delErr != nil {
			return fmt.Errorf("failed to delete item: %w", delErr)
		}
		return s.writeAudit(txCtx, actor, model.ActionDeleteItem, id.String(), item.Name, nil)
	})
}

// DeductStock removes quantity from an item under a row lock, records the
// OUT movement, and emits a low-stock event when the balance drops to or
// below the reorder threshold.
func (s *inventoryService) DeductStock(ctx context.Context, actor *permission.Identity, id uuid.UUID, req StockChangeRequest) (*model.InventoryItem, error) {
	gate := permission.NewGate(actor)
	if gate.Cannot(permission.ModuleInventoryManagement, permission.ActionUpdate) {
		return nil, apperr.Permission("DEDUCT_STOCK_DENIED", "role %s cannot deduct stock", actorRole(actor))
	}
	if req.Quantity <= 0 {
		return nil, apperr.Validation("INVALID_QUANTITY", "quantity must be positive")
	}

	var item *model.InventoryItem
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		item, findErr = s.inventoryRepo.FindItemByIDForUpdate(txCtx, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("ITEM_NOT_FOUND", "inventory item %s not found", id)
			}
			return fmt.Errorf("failed to lock item: %w", findErr)
		}

		if item.CurrentStock < req.Quantity {
			return apperr.Validation("INSUFFICIENT_STOCK",
				"item %s has %.2f %s in stock, requested %.2f", item.Name, item.CurrentStock, item.Unit, req.Quantity)
		}

		item.CurrentStock -= req.Quantity
		if saveErr := s.inventoryRepo.UpdateItem(txCtx, item); saveErr != nil {
			return fmt.Errorf("failed to update stock: %w", saveErr)
		}

		operatorID := actor.ID
		movement := model.InventoryMovement{
			ItemID:       item.ID,
			MovementType: model.MovementTypeOut,
			Quantity:     req.Quantity,
			StockAfter:   item.CurrentStock,
			Reason:       req.Reason,
			OperatorID:   &operatorID,
		}
		if mvErr := s.inventoryRepo.CreateMovement(txCtx, &movement); mvErr != nil {
			return fmt.Errorf("failed to record movement: %w", mvErr)
		}

		return s.writeAudit(txCtx, actor, model.ActionDeductStock, item.ID.String(), item.Name, map[string]interface{}{
			"quantity":    req.Quantity,
			"stock_after": item.CurrentStock,
			"reason":      req.Reason,
		})
	})
	if err != nil {
		return nil, err
	}

	if item.CurrentStock <= item.ReorderThreshold {
		s.hub.Emit("low_stock_alert", map[string]interface{}{
			"item_id":       item.ID,
			"item_name":     item.Name,
			"current_stock": item.CurrentStock,
			"threshold":     item.ReorderThreshold,
			"unit":          item.Unit,
		})
	}

	return item, nil
}

// RestockItem adds quantity to an item and records the IN movement.
func (s *inventoryService) RestockItem(ctx context.Context, actor *permission.Identity, id uuid.UUID, req StockChangeRequest) (*model.InventoryItem, error) {
	gate := permission.NewGate(actor)
	if gate.Cannot(permission.ModuleInventoryManagement, permission.ActionUpdate) {
		return nil, apperr.Permission("RESTOCK_DENIED", "role %s cannot restock items", actorRole(actor))
	}
	if req.Quantity <= 0 {
		return nil, apperr.Validation("INVALID_QUANTITY", "quantity must be positive")
	}

	var item *model.InventoryItem
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		item, findErr = s.inventoryRepo.FindItemByIDForUpdate(txCtx, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("ITEM_NOT_FOUND", "inventory item %s not found", id)
			}
			return fmt.Errorf("failed to lock item: %w", findErr)
		}

		item.CurrentStock += req.Quantity
		if saveErr := s.inventoryRepo.UpdateItem(txCtx, item); saveErr != nil {
			return fmt.Errorf("failed to update stock: %w", saveErr)
		}

		operatorID := actor.ID
		movement := model.InventoryMovement{
			ItemID:       item.ID,
			MovementType: model.MovementTypeIn,
			Quantity:     req.Quantity,
			StockAfter:   item.CurrentStock,
			Reason:       req.Reason,
			OperatorID:   &operatorID,
		}
		if mvErr := s.inventoryRepo.CreateMovement(txCtx, &movement); mvErr != nil {
			return fmt.Errorf("failed to record movement: %w", mvErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

func (s *inventoryService) ListMovements(ctx context.Context, itemID uuid.UUID, page, limit int) ([]model.InventoryMovement, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.inventoryRepo.ListMovements(ctx, itemID, page, limit)
}

// LowStockItems returns every item at or below its reorder threshold.
func (s *inventoryService) LowStockItems(ctx context.Context) ([]model.InventoryItem, error) {
	items, _, err := s.inventoryRepo.ListItems(ctx, "", 1, 1000)
	if err != nil {
		return nil, err
	}
	low := make([]model.InventoryItem, 0)
	for _, item := range items {
		if item.CurrentStock <= item.ReorderThreshold {
			low = append(low, item)
		}
	}
	return low, nil
}

func (s *inventoryService) writeAudit(ctx context.Context, actor *permission.Identity, action, entityID, entityName string, details map[string]interface{}) error {
	payload, _ := json.Marshal(details)
	actorID := actor.ID
	entry := model.AuditLog{
		UserID:     &actorID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(payload),
		CreatedAt:  time.Now(),
	}
	if err := s.auditRepo.Create(ctx, &entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
