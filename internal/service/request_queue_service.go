package service

import (
	"context"
	"errors"
	"fmt"

	"croppo/internal/model"
	"croppo/internal/permission"
	"croppo/internal/repository"
	ws "croppo/internal/websocket"
	"croppo/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EnqueueStockRequestDTO struct {
	Type        string    `json:"type" binding:"required,oneof=treatment fertilization"`
	OperationID uuid.UUID `json:"operation_id" binding:"required"`
	ItemID      uuid.UUID `json:"item_id" binding:"required"`
	Quantity    float64   `json:"quantity" binding:"required,gt=0"`
}

// RequestQueueService holds stock deduction requests raised by field
// operations until the inventory manager decides them. Like the approval
// ledger, a pending entry transitions exactly once. Accepting a request
// deducts the requested quantity from the referenced item in the same
// transaction, so a decided request and its stock movement never diverge.
type RequestQueueService interface {
	Enqueue(ctx context.Context, actor *permission.Identity, req EnqueueStockRequestDTO) (*model.InventoryRequest, error)
	Accept(ctx context.Context, actor *permission.Identity, id int64) (*model.InventoryRequest, error)
	Reject(ctx context.Context, actor *permission.Identity, id int64) (*model.InventoryRequest, error)
	List(ctx context.Context, status string) ([]model.InventoryRequest, error)
}

type requestQueueService struct {
	queueRepo     repository.RequestQueueRepository
	inventoryRepo repository.InventoryRepository
	auditRepo     repository.AuditRepository
	txManager     repository.TransactionManager
	hub           *ws.Hub
}

func NewRequestQueueService(
	queueRepo repository.RequestQueueRepository,
	inventoryRepo repository.InventoryRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) RequestQueueService {
	return &requestQueueService{
		queueRepo:     queueRepo,
		inventoryRepo: inventoryRepo,
		auditRepo:     auditRepo,
		txManager:     txManager,
		hub:           hub,
	}
}

func (s *requestQueueService) Enqueue(ctx context.Context, actor *permission.Identity, req EnqueueStockRequestDTO) (*model.InventoryRequest, error) {
	gate := permission.NewGate(actor)
	if gate.Identity() == nil {
		return nil, apperr.Authentication("AUTH_REQUIRED", "authentication required")
	}
	if req.Type != model.RequestTypeTreatment && req.Type != model.RequestTypeFertilization {
		return nil, apperr.Validation("INVALID_TYPE", "stock requests are raised by treatment or fertilization operations")
	}
	if req.Quantity <= 0 {
		return nil, apperr.Validation("INVALID_QUANTITY", "quantity must be positive")
	}

	request := &model.InventoryRequest{
		Type:        req.Type,
		OperationID: req.OperationID,
		ItemID:      req.ItemID,
		Quantity:    req.Quantity,
		Status:      model.InventoryRequestPending,
	}

	if err := s.queueRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to enqueue stock request: %w", err)
	}

	s.hub.Emit("stock_request_created", map[string]interface{}{
		"id":       request.ID,
		"type":     request.Type,
		"item_id":  request.ItemID,
		"quantity": request.Quantity,
	})

	return request, nil
}

func (s *requestQueueService) Accept(ctx context.Context, actor *permission.Identity, id int64) (*model.InventoryRequest, error) {
	return s.decide(ctx, actor, id, model.InventoryRequestAccepted, model.ActionAcceptStockRequest)
}

func (s *requestQueueService) Reject(ctx context.Context, actor *permission.Identity, id int64) (*model.InventoryRequest, error) {
	return s.decide(ctx, actor, id, model.InventoryRequestRejected, model.ActionRejectStockRequest)
}

func (s *requestQueueService) decide(ctx context.Context, actor *permission.Identity, id int64, status, auditAction string) (*model.InventoryRequest, error) {
	gate := permission.NewGate(actor)
	if gate.Cannot(permission.ModuleInventoryManagement, permission.ActionUpdate) {
		return nil, apperr.Permission("STOCK_REQUEST_DENIED", "role %s cannot decide stock requests", actorRole(actor))
	}

	var request *model.InventoryRequest
	var item *model.InventoryItem
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		request, findErr = s.queueRepo.FindByID(txCtx, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("STOCK_REQUEST_NOT_FOUND", "stock request %d not found", id)
			}
			return fmt.Errorf("failed to load stock request: %w", findErr)
		}

		if request.Status != model.InventoryRequestPending {
			return apperr.InvalidTransition("ALREADY_DECIDED",
				"stock request %d is already %s", id, request.Status)
		}

		if status == model.InventoryRequestAccepted {
			var deductErr error
			item, deductErr = s.deductForRequest(txCtx, actor, request)
			if deductErr != nil {
				return deductErr
			}
		}

		request.Status = status
		if saveErr := s.queueRepo.Update(txCtx, request); saveErr != nil {
			return fmt.Errorf("failed to update stock request: %w", saveErr)
		}

		actorID := actor.ID
		entry := model.AuditLog{
			UserID:     &actorID,
			Action:     auditAction,
			EntityID:   fmt.Sprintf("%d", request.ID),
			EntityName: request.Type,
			Details:    fmt.Sprintf(`{"item_id":%q,"quantity":%.2f}`, request.ItemID, request.Quantity),
		}
		if auditErr := s.auditRepo.Create(txCtx, &entry); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.Emit("stock_request_decided", map[string]interface{}{
		"id":     request.ID,
		"status": request.Status,
	})

	if item != nil && item.CurrentStock <= item.ReorderThreshold {
		s.hub.Emit("low_stock_alert", map[string]interface{}{
			"item_id":       item.ID,
			"item_name":     item.Name,
			"current_stock": item.CurrentStock,
			"threshold":     item.ReorderThreshold,
			"unit":          item.Unit,
		})
	}

	return request, nil
}

// deductForRequest removes the requested quantity from the referenced item
// under a row lock and records the OUT movement. Runs inside the decide
// transaction so an acceptance that cannot be covered by stock rolls back
// and the request stays pending.
func (s *requestQueueService) deductForRequest(ctx context.Context, actor *permission.Identity, request *model.InventoryRequest) (*model.InventoryItem, error) {
	item, err := s.inventoryRepo.FindItemByIDForUpdate(ctx, request.ItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("ITEM_NOT_FOUND", "inventory item %s not found", request.ItemID)
		}
		return nil, fmt.Errorf("failed to lock item: %w", err)
	}

	if item.CurrentStock < request.Quantity {
		return nil, apperr.Validation("INSUFFICIENT_STOCK",
			"item %s has %.2f %s in stock, requested %.2f", item.Name, item.CurrentStock, item.Unit, request.Quantity)
	}

	item.CurrentStock -= request.Quantity
	if err := s.inventoryRepo.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}

	operatorID := actor.ID
	movement := model.InventoryMovement{
		ItemID:       item.ID,
		MovementType: model.MovementTypeOut,
		Quantity:     request.Quantity,
		StockAfter:   item.CurrentStock,
		Reason:       fmt.Sprintf("stock request #%d (%s)", request.ID, request.Type),
		OperatorID:   &operatorID,
	}
	if err := s.inventoryRepo.CreateMovement(ctx, &movement); err != nil {
		return nil, fmt.Errorf("failed to record movement: %w", err)
	}

	return item, nil
}

func (s *requestQueueService) List(ctx context.Context, status string) ([]model.InventoryRequest, error) {
	return s.queueRepo.List(ctx, status)
}
