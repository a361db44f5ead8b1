package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"croppo/internal/model"
	"croppo/internal/permission"
	"croppo/internal/repository"
	ws "croppo/internal/websocket"
	"croppo/pkg/apperr"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateApprovalRequestDTO struct {
	Type          string          `json:"type" binding:"required,oneof=fertilization treatment irrigation purchase budget"`
	Title         string          `json:"title" binding:"required"`
	Description   string          `json:"description"`
	Data          json.RawMessage `json:"data"` // Opaque payload specific to the request type
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
	Priority      string          `json:"priority"`
}

type DecideRequestDTO struct {
	Comment string `json:"comment"`
	Reason  string `json:"reason"`
}

type ApprovalFilter struct {
	Status string // PENDING, APPROVED, REJECTED or empty for all
	Page   int
	Limit  int
}

type ApprovalRequestResponse struct {
	ID              int64   `json:"id"`
	Type            string  `json:"type"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Status          string  `json:"status"`
	RequestedBy     string  `json:"requested_by"`
	RequestedByName string  `json:"requested_by_name"`
	Data            string  `json:"data"`
	EstimatedCost   string  `json:"estimated_cost"`
	Priority        string  `json:"priority"`
	ApprovedBy      *string `json:"approved_by,omitempty"`
	ApprovedByName  string  `json:"approved_by_name,omitempty"`
	ApprovedAt      *string `json:"approved_at,omitempty"`
	ApprovalComment string  `json:"approval_comment,omitempty"`
	RejectedBy      *string `json:"rejected_by,omitempty"`
	RejectedByName  string  `json:"rejected_by_name,omitempty"`
	RejectedAt      *string `json:"rejected_at,omitempty"`
	RejectionReason string  `json:"rejection_reason,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// --- Interface ---

// ApprovalService maintains the append-only approval request ledger and
// enforces the workflow invariants: permission-checked creation, one-way
// pending→approved/rejected transitions, and separation of duties on the
// approval inbox.
type ApprovalService interface {
	CreateRequest(ctx context.Context, actor *permission.Identity, req CreateApprovalRequestDTO) (ApprovalRequestResponse, error)
	ApproveRequest(ctx context.Context, actor *permission.Identity, id int64, comment string) (ApprovalRequestResponse, error)
	RejectRequest(ctx context.Context, actor *permission.Identity, id int64, reason string) (ApprovalRequestResponse, error)
	ListRequests(ctx context.Context, filter ApprovalFilter) ([]ApprovalRequestResponse, int64, error)
	ListByStatus(ctx context.Context, status string) ([]ApprovalRequestResponse, error)
	ListMyRequests(ctx context.Context, actor *permission.Identity) ([]ApprovalRequestResponse, error)
	PendingForApproval(ctx context.Context, actor *permission.Identity) ([]ApprovalRequestResponse, error)
}

type approvalService struct {
	approvalRepo repository.ApprovalRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewApprovalService(
	approvalRepo repository.ApprovalRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) ApprovalService {
	return &approvalService{
		approvalRepo: approvalRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		hub:          hub,
	}
}

// --- Implementation ---

func (s *approvalService) CreateRequest(ctx context.Context, actor *permission.Identity, req CreateApprovalRequestDTO) (ApprovalRequestResponse, error) {
	gate := permission.NewGate(actor)
	if gate.Identity() == nil {
		return ApprovalRequestResponse{}, apperr.Authentication("AUTH_REQUIRED", "authentication required to create requests")
	}
	if gate.Cannot(permission.ModuleApprovalRequests, permission.ActionCreate) {
		return ApprovalRequestResponse{}, apperr.Permission("CREATE_REQUEST_DENIED",
			"role %s cannot create approval requests", actor.Role)
	}

	if strings.TrimSpace(req.Title) == "" {
		return ApprovalRequestResponse{}, apperr.Validation("MISSING_TITLE", "title is required")
	}
	if !model.ValidRequestType(req.Type) {
		return ApprovalRequestResponse{}, apperr.Validation("INVALID_TYPE", "unknown request type '%s'", req.Type)
	}
	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !model.ValidPriority(priority) {
		return ApprovalRequestResponse{}, apperr.Validation("INVALID_PRIORITY", "unknown priority '%s'", req.Priority)
	}

	data := string(req.Data)
	if data == "" {
		data = "{}"
	}

	approval := model.ApprovalRequest{
		Type:            req.Type,
		Title:           req.Title,
		Description:     req.Description,
		RequestedBy:     actor.ID,
		RequestedByName: actor.Name,
		Status:          model.RequestStatusPending,
		Data:            data,
		EstimatedCost:   req.EstimatedCost,
		Priority:        priority,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.approvalRepo.Create(txCtx, &approval); createErr != nil {
			return fmt.Errorf("failed to create approval request: %w", createErr)
		}

		return s.writeAudit(txCtx, actor, model.ActionCreateApprovalRequest, approval.ID, approval.Title, map[string]interface{}{
			"type":     approval.Type,
			"priority": approval.Priority,
			"cost":     approval.EstimatedCost.StringFixed(2),
		})
	})
	if err != nil {
		return ApprovalRequestResponse{}, err
	}

	s.hub.Emit("approval_request_created", map[string]interface{}{
		"id":    approval.ID,
		"type":  approval.Type,
		"title": approval.Title,
	})

	return toApprovalResponse(approval), nil
}

func (s *approvalService) ApproveRequest(ctx context.Context, actor *permission.Identity, id int64, comment string) (ApprovalRequestResponse, error) {
	gate := permission.NewGate(actor)
	if gate.Identity() == nil {
		return ApprovalRequestResponse{}, apperr.Authentication("AUTH_REQUIRED", "authentication required to approve requests")
	}
	if !gate.CanApprove() {
		return ApprovalRequestResponse{}, apperr.Permission("APPROVAL_PERMISSION_DENIED",
			"role %s cannot approve requests", actor.Role)
	}

	var approval *model.ApprovalRequest
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		// Re-read inside the transaction: the decision is made against the
		// stored status, never the caller's snapshot.
		approval, findErr = s.approvalRepo.FindByID(txCtx, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("REQUEST_NOT_FOUND", "approval request %d not found", id)
			}
			return fmt.Errorf("failed to load approval request: %w", findErr)
		}

		if approval.Status != model.RequestStatusPending {
			return apperr.InvalidTransition("ALREADY_DECIDED",
				"approval request %d is already %s", id, approval.Status)
		}
		if approval.RequestedBy == actor.ID {
			return apperr.Permission("SELF_APPROVAL_DENIED",
				"requester and approver must differ")
		}

		now := time.Now()
		approverID := actor.ID
		approval.Status = model.RequestStatusApproved
		approval.ApprovedBy = &approverID
		approval.ApprovedByName = actor.Name
		approval.ApprovedAt = &now
		approval.ApprovalComment = comment

		if saveErr := s.approvalRepo.Update(txCtx, approval); saveErr != nil {
			return fmt.Errorf("failed to update approval request: %w", saveErr)
		}

		return s.writeAudit(txCtx, actor, model.ActionApproveRequest, approval.ID, approval.Title, map[string]interface{}{
			"type":    approval.Type,
			"comment": comment,
		})
	})
	if err != nil {
		return ApprovalRequestResponse{}, err
	}

	s.hub.Emit("approval_request_approved", map[string]interface{}{
		"id":       approval.ID,
		"type":     approval.Type,
		"approver": actor.Name,
	})

	return toApprovalResponse(*approval), nil
}

func (s *approvalService) RejectRequest(ctx context.Context, actor *permission.Identity, id int64, reason string) (ApprovalRequestResponse, error) {
	gate := permission.NewGate(actor)
	if gate.Identity() == nil {
		return ApprovalRequestResponse{}, apperr.Authentication("AUTH_REQUIRED", "authentication required to reject requests")
	}
	if !gate.CanApprove() {
		return ApprovalRequestResponse{}, apperr.Permission("APPROVAL_PERMISSION_DENIED",
			"role %s cannot reject requests", actor.Role)
	}
	if strings.TrimSpace(reason) == "" {
		return ApprovalRequestResponse{}, apperr.Validation("MISSING_REASON", "rejection reason is required")
	}

	var approval *model.ApprovalRequest
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		approval, findErr = s.approvalRepo.FindByID(txCtx, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("REQUEST_NOT_FOUND", "approval request %d not found", id)
			}
			return fmt.Errorf("failed to load approval request: %w", findErr)
		}

		if approval.Status != model.RequestStatusPending {
			return apperr.InvalidTransition("ALREADY_DECIDED",
				"approval request %d is already %s", id, approval.Status)
		}

		now := time.Now()
		rejectorID := actor.ID
		approval.Status = model.RequestStatusRejected
		approval.RejectedBy = &rejectorID
		approval.RejectedByName = actor.Name
		approval.RejectedAt = &now
		approval.RejectionReason = reason

		if saveErr := s.approvalRepo.Update(txCtx, approval); saveErr != nil {
			return fmt.Errorf("failed to update approval request: %w", saveErr)
		}

		return s.writeAudit(txCtx, actor, model.ActionRejectRequest, approval.ID, approval.Title, map[string]interface{}{
			"type":   approval.Type,
			"reason": reason,
		})
	})
	if err != nil {
		return ApprovalRequestResponse{}, err
	}

	s.hub.Emit("approval_request_rejected", map[string]interface{}{
		"id":       approval.ID,
		"type":     approval.Type,
		"rejector": actor.Name,
	})

	return toApprovalResponse(*approval), nil
}

func (s *approvalService) ListRequests(ctx context.Context, filter ApprovalFilter) ([]ApprovalRequestResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	requests, total, err := s.approvalRepo.List(ctx, filter.Status, filter.Page, filter.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch approval requests: %w", err)
	}

	return toApprovalResponses(requests), total, nil
}

func (s *approvalService) ListByStatus(ctx context.Context, status string) ([]ApprovalRequestResponse, error) {
	requests, err := s.approvalRepo.ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch approval requests: %w", err)
	}
	return toApprovalResponses(requests), nil
}

func (s *approvalService) ListMyRequests(ctx context.Context, actor *permission.Identity) ([]ApprovalRequestResponse, error) {
	if actor == nil {
		return []ApprovalRequestResponse{}, nil
	}
	requests, err := s.approvalRepo.ListByRequester(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch own requests: %w", err)
	}
	return toApprovalResponses(requests), nil
}

// PendingForApproval lists pending requests the actor may decide. Actors
// without approval rights get an empty list, and nobody sees their own
// requests here.
func (s *approvalService) PendingForApproval(ctx context.Context, actor *permission.Identity) ([]ApprovalRequestResponse, error) {
	gate := permission.NewGate(actor)
	if !gate.CanApprove() {
		return []ApprovalRequestResponse{}, nil
	}
	requests, err := s.approvalRepo.ListPendingExcluding(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending requests: %w", err)
	}
	return toApprovalResponses(requests), nil
}

func (s *approvalService) writeAudit(ctx context.Context, actor *permission.Identity, action string, requestID int64, title string, details map[string]interface{}) error {
	payload, _ := json.Marshal(details)
	actorID := actor.ID
	entry := model.AuditLog{
		UserID:     &actorID,
		Action:     action,
		EntityID:   fmt.Sprintf("%d", requestID),
		EntityName: title,
		Details:    string(payload),
	}
	if err := s.auditRepo.Create(ctx, &entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// --- Helpers ---

func toApprovalResponse(a model.ApprovalRequest) ApprovalRequestResponse {
	resp := ApprovalRequestResponse{
		ID:              a.ID,
		Type:            a.Type,
		Title:           a.Title,
		Description:     a.Description,
		Status:          a.Status,
		RequestedBy:     a.RequestedBy.String(),
		RequestedByName: a.RequestedByName,
		Data:            a.Data,
		EstimatedCost:   a.EstimatedCost.StringFixed(2),
		Priority:        a.Priority,
		ApprovalComment: a.ApprovalComment,
		RejectionReason: a.RejectionReason,
		CreatedAt:       a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       a.UpdatedAt.Format(time.RFC3339),
	}

	if a.ApprovedBy != nil {
		str := a.ApprovedBy.String()
		resp.ApprovedBy = &str
		resp.ApprovedByName = a.ApprovedByName
	}
	if a.ApprovedAt != nil {
		str := a.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &str
	}
	if a.RejectedBy != nil {
		str := a.RejectedBy.String()
		resp.RejectedBy = &str
		resp.RejectedByName = a.RejectedByName
	}
	if a.RejectedAt != nil {
		str := a.RejectedAt.Format(time.RFC3339)
		resp.RejectedAt = &str
	}

	return resp
}

func toApprovalResponses(requests []model.ApprovalRequest) []ApprovalRequestResponse {
	result := make([]ApprovalRequestResponse, 0, len(requests))
	for _, r := range requests {
		result = append(result, toApprovalResponse(r))
	}
	return result
}
