package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"croppo/internal/model"
	"croppo/internal/permission"
	"croppo/internal/repository"
	"croppo/pkg/apperr"
)

// ActivityReport aggregates farm activity for the dashboard.
type ActivityReport struct {
	OperationsByType map[string]int64 `json:"operations_by_type"`
	PendingApprovals int              `json:"pending_approvals"`
	LowStockItems    int              `json:"low_stock_items"`
	Finance          *FinanceSummary  `json:"finance"`
}

// ReportService builds aggregate reports and CSV exports. Export rights are
// checked against the reports module, read rights gate the dashboards.
type ReportService interface {
	Activity(ctx context.Context, actor *permission.Identity, from, to time.Time) (*ActivityReport, error)
	ExportTransactionsCSV(ctx context.Context, actor *permission.Identity, txType string) ([]byte, error)
	ExportOperationsCSV(ctx context.Context, actor *permission.Identity, opType string) ([]byte, error)
}

type reportService struct {
	operationRepo repository.OperationRepository
	approvalRepo  repository.ApprovalRepository
	financeRepo   repository.FinanceRepository
	inventory     InventoryService
	finance       FinanceService
}

func NewReportService(
	operationRepo repository.OperationRepository,
	approvalRepo repository.ApprovalRepository,
	financeRepo repository.FinanceRepository,
	inventory InventoryService,
	finance FinanceService,
) ReportService {
	return &reportService{
		operationRepo: operationRepo,
		approvalRepo:  approvalRepo,
		financeRepo:   financeRepo,
		inventory:     inventory,
		finance:       finance,
	}
}

func (s *reportService) Activity(ctx context.Context, actor *permission.Identity, from, to time.Time) (*ActivityReport, error) {
	gate := permission.NewGate(actor)
	if gate.Cannot(permission.ModuleReports, permission.ActionRead) {
		return nil, apperr.Permission("REPORT_ACCESS_DENIED", "role %s cannot view reports", actorRole(actor))
	}

	byType, err := s.operationRepo.CountByType(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count operations: %w", err)
	}

	pending, err := s.approvalRepo.ListByStatus(ctx, model.RequestStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending approvals: %w", err)
	}

	low, err := s.inventory.LowStockItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock items: %w", err)
	}

	summary, err := s.finance.Summary(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to build finance summary: %w", err)
	}

	return &ActivityReport{
		OperationsByType: byType,
		PendingApprovals: len(pending),
		LowStockItems:    len(low),
		Finance:          summary,
	}, nil
}

func (s *reportService) ExportTransactionsCSV(ctx context.Context, actor *permission.Identity, txType string) ([]byte, error) {
	gate := permission.NewGate(actor)
	if gate.Cannot(permission.ModuleReports, permission.ActionExport) {
		return nil, apperr.Permission("EXPORT_DENIED", "role %s cannot export reports", actorRole(actor))
	}

	transactions, _, err := s.financeRepo.ListTransactions(ctx, txType, 1, 10000)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"id", "type", "category", "amount", "date", "description"})
	for _, tx := range transactions {
		_ = w.Write([]string{
			tx.ID.String(),
			tx.Type,
			tx.Category,
			tx.Amount.StringFixed(2),
			tx.Date.Format("2006-01-02"),
			tx.Description,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to encode csv: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *reportService) ExportOperationsCSV(ctx context.Context, actor *permission.Identity, opType string) ([]byte, error) {
	gate := permission.NewGate(actor)
	if gate.Cannot(permission.ModuleReports, permission.ActionExport) {
		return nil, apperr.Permission("EXPORT_DENIED", "role %s cannot export reports", actorRole(actor))
	}

	operations, _, err := s.operationRepo.List(ctx, opType, nil, 1, 10000)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch operations: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"id", "type", "date", "field_id", "quantity_used", "unit", "cost", "status", "operator"})
	for _, op := range operations {
		_ = w.Write([]string{
			op.ID.String(),
			op.Type,
			op.Date.Format("2006-01-02"),
			op.FieldID.String(),
			strconv.FormatFloat(op.QuantityUsed, 'f', 2, 64),
			op.Unit,
			strconv.FormatFloat(op.Cost, 'f', 2, 64),
			op.Status,
			op.Operator,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to encode csv: %w", err)
	}
	return buf.Bytes(), nil
}
