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
	"croppo/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DTOs for Request validation
type CreateOperationRequest struct {
	Type         string          `json:"type" binding:"required,oneof=PLANTING HARVEST TREATMENT FERTILIZATION IRRIGATION"`
	Date         time.Time       `json:"date" binding:"required"`
	FieldID      uuid.UUID       `json:"field_id" binding:"required"`
	CropID       *uuid.UUID      `json:"crop_id"`
	ItemID       *uuid.UUID      `json:"item_id"`
	QuantityUsed float64         `json:"quantity_used" binding:"gte=0"`
	Unit         string          `json:"unit"`
	Operator     string          `json:"operator"`
	Cost         float64         `json:"cost" binding:"gte=0"`
	Notes        string          `json:"notes"`
	Details      json.RawMessage `json:"details"`
}

// SubmitPlanRequest proposes a fertilization, treatment, or irrigation plan.
// Depending on the submitter's role the plan is either executed immediately
// or routed through the approval workflow.
type SubmitPlanRequest struct {
	Type          string          `json:"type" binding:"required,oneof=fertilization treatment irrigation"`
	Title         string          `json:"title" binding:"required"`
	Description   string          `json:"description"`
	FieldID       uuid.UUID       `json:"field_id" binding:"required"`
	CropID        *uuid.UUID      `json:"crop_id"`
	ItemID        *uuid.UUID      `json:"item_id"`
	QuantityUsed  float64         `json:"quantity_used" binding:"gte=0"`
	Unit          string          `json:"unit"`
	Date          time.Time       `json:"date" binding:"required"`
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
	Priority      string          `json:"priority"`
	Details       json.RawMessage `json:"details"`
}

// SubmitPlanResult reports which path the plan took.
type SubmitPlanResult struct {
	RoutedForApproval bool                     `json:"routed_for_approval"`
	Operation         *model.Operation         `json:"operation,omitempty"`
	ApprovalRequest   *ApprovalRequestResponse `json:"approval_request,omitempty"`
}

// planModules maps plan types to the permission module guarding them.
var planModules = map[string]permission.Module{
	model.RequestTypeFertilization: permission.ModuleFertilizationPlans,
	model.RequestTypeTreatment:     permission.ModuleTreatmentPlans,
	model.RequestTypeIrrigation:    permission.ModuleIrrigationPlans,
}

// planOperationTypes maps plan types to the operation type recorded when the
// plan executes.
var planOperationTypes = map[string]string{
	model.RequestTypeFertilization: model.OperationFertilization,
	model.RequestTypeTreatment:     model.OperationTreatment,
	model.RequestTypeIrrigation:    model.OperationIrrigation,
}

// OperationService records field operations and routes operational plans:
// submitters whose role needs approval get a pending approval request,
// everyone else gets an immediately confirmed operation.
type OperationService interface {
	CreateOperation(ctx context.Context, actor *permission.Identity, req CreateOperationRequest) (*model.Operation, error)
	GetOperation(ctx context.Context, id uuid.UUID) (*model.Operation, error)
	ListOperations(ctx context.Context, opType string, fieldID *uuid.UUID, page, limit int) ([]model.Operation, int64, error)
	DeleteOperation(ctx context.Context, actor *permission.Identity, id uuid.UUID) error
	SubmitPlan(ctx context.Context, actor *permission.Identity, req SubmitPlanRequest) (*SubmitPlanResult, error)
}

type operationService struct {
	operationRepo repository.OperationRepository
	farmRepo      repository.FarmRepository
	auditRepo     repository.AuditRepository
	txManager     repository.TransactionManager
	approvals     ApprovalService
}

func NewOperationService(
	operationRepo repository.OperationRepository,
	farmRepo repository.FarmRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	approvals ApprovalService,
) OperationService {
	return &operationService{
		operationRepo: operationRepo,
		farmRepo:      farmRepo,
		auditRepo:     auditRepo,
		txManager:     txManager,
		approvals:     approvals,
	}
}

func (s *operationService) CreateOperation(ctx context.Context, actor *permission.Identity, req CreateOperationRequest) (*model.Operation, error) {
	gate := permission.NewGate(actor)
	if gate.Cannot(permission.ModuleOperations, permission.ActionCreate) {
		return nil, apperr.Permission("CREATE_OPERATION_DENIED", "role %s cannot record operations", actorRole(actor))
	}

	if !model.ValidOperationType(req.Type) {
		return nil, apperr.Validation("INVALID_OPERATION_TYPE", "unknown operation type '%s'", req.Type)
	}

	if _, err := s.farmRepo.FindFieldByID(ctx, req.FieldID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("FIELD_NOT_FOUND", "field %s not found", req.FieldID)
		}
		return nil, err
	}

	actorID := actor.ID
	op := &model.Operation{
		Type:         req.Type,
		Date:         req.Date,
		FieldID:      req.FieldID,
		CropID:       req.CropID,
		ItemID:       req.ItemID,
		QuantityUsed: req.QuantityUsed,
		Unit:         req.Unit,
		Operator:     req.Operator,
		Cost:         req.Cost,
		Status:       model.OperationStatusConfirmed,
		Notes:        req.Notes,
		Details:      jsonOrEmpty(req.Details),
		CreatedBy:    &actorID,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.operationRepo.Create(txCtx, op); createErr != nil {
			return fmt.Errorf("failed to create operation: %w", createErr)
		}
		entry := model.AuditLog{
			UserID:     &actorID,
			Action:     model.ActionCreateOperation,
			EntityID:   op.ID.String(),
			EntityName: op.Type,
			Details:    fmt.Sprintf(`{"field_id":%q,"cost":%.2f}`, op.FieldID, op.Cost),
		}
		if auditErr := s.auditRepo.Create(txCtx, &entry); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return op, nil
}

func (s *operationService) GetOperation(ctx context.Context, id uuid.UUID) (*model.Operation, error) {
	op, err := s.operationRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("OPERATION_NOT_FOUND", "operation %s not found", id)
		}
		return nil, err
	}
	return op, nil
}

func (s *operationService) ListOperations(ctx context.Context, opType string, fieldID *uuid.UUID, page, limit int) ([]model.Operation, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.operationRepo.List(ctx, opType, fieldID, page, limit)
}

func (s *operationService) DeleteOperation(ctx context.Context, actor *permission.Identity, id uuid.UUID) error {
	gate := permission.NewGate(actor)
	if gate.Cannot(permission.ModuleOperations, permission.ActionDelete) {
		return apperr.Permission("DELETE_OPERATION_DENIED", "role %s cannot delete operations", actorRole(actor))
	}
	if _, err := s.operationRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("OPERATION_NOT_FOUND", "operation %s not found", id)
		}
		return err
	}
	return s.operationRepo.Delete(ctx, id)
}

func (s *operationService) SubmitPlan(ctx context.Context, actor *permission.Identity, req SubmitPlanRequest) (*SubmitPlanResult, error) {
	module, ok := planModules[req.Type]
	if !ok {
		return nil, apperr.Validation("INVALID_PLAN_TYPE", "unknown plan type '%s'", req.Type)
	}

	gate := permission.NewGate(actor)
	if gate.Cannot(module, permission.ActionCreate) {
		return nil, apperr.Permission("SUBMIT_PLAN_DENIED", "role %s cannot submit %s plans", actorRole(actor), req.Type)
	}

	if _, err := s.farmRepo.FindFieldByID(ctx, req.FieldID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("FIELD_NOT_FOUND", "field %s not found", req.FieldID)
		}
		return nil, err
	}

	if gate.RequiresApproval(req.Type) {
		payload, err := json.Marshal(planPayload{
			FieldID:      req.FieldID,
			CropID:       req.CropID,
			ItemID:       req.ItemID,
			QuantityUsed: req.QuantityUsed,
			Unit:         req.Unit,
			Date:         req.Date,
			Details:      req.Details,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode plan payload: %w", err)
		}

		approval, err := s.approvals.CreateRequest(ctx, actor, CreateApprovalRequestDTO{
			Type:          req.Type,
			Title:         req.Title,
			Description:   req.Description,
			Data:          payload,
			EstimatedCost: req.EstimatedCost,
			Priority:      req.Priority,
		})
		if err != nil {
			return nil, err
		}

		return &SubmitPlanResult{RoutedForApproval: true, ApprovalRequest: &approval}, nil
	}

	actorID := actor.ID
	op := &model.Operation{
		Type:         planOperationTypes[req.Type],
		Date:         req.Date,
		FieldID:      req.FieldID,
		CropID:       req.CropID,
		ItemID:       req.ItemID,
		QuantityUsed: req.QuantityUsed,
		Unit:         req.Unit,
		Operator:     actor.Name,
		Cost:         req.EstimatedCost.InexactFloat64(),
		Status:       model.OperationStatusConfirmed,
		Notes:        req.Description,
		Details:      jsonOrEmpty(req.Details),
		CreatedBy:    &actorID,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.operationRepo.Create(txCtx, op); createErr != nil {
			return fmt.Errorf("failed to create operation: %w", createErr)
		}
		entry := model.AuditLog{
			UserID:     &actorID,
			Action:     model.ActionSubmitPlan,
			EntityID:   op.ID.String(),
			EntityName: req.Title,
			Details:    fmt.Sprintf(`{"type":%q,"routed_for_approval":false}`, req.Type),
		}
		if auditErr := s.auditRepo.Create(txCtx, &entry); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &SubmitPlanResult{RoutedForApproval: false, Operation: op}, nil
}

// jsonOrEmpty keeps jsonb columns valid when no payload was supplied.
func jsonOrEmpty(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}

// planPayload is the approval request Data for a routed plan.
type planPayload struct {
	FieldID      uuid.UUID       `json:"field_id"`
	CropID       *uuid.UUID      `json:"crop_id,omitempty"`
	ItemID       *uuid.UUID      `json:"item_id,omitempty"`
	QuantityUsed float64         `json:"quantity_used"`
	Unit         string          `json:"unit"`
	Date         time.Time       `json:"date"`
	Details      json.RawMessage `json:"details,omitempty"`
}
