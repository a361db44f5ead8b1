package service

import (
	"context"
	"errors"
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
type CreateTransactionRequest struct {
	Type        string          `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	Category    string          `json:"category" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Date        time.Time       `json:"date" binding:"required"`
	Description string          `json:"description"`
	FarmID      *uuid.UUID      `json:"farm_id"`
	OperationID *uuid.UUID      `json:"operation_id"`
}

type CreateBudgetRequest struct {
	Name        string          `json:"name" binding:"required"`
	Category    string          `json:"category" binding:"required"`
	Allocated   decimal.Decimal `json:"allocated" binding:"required"`
	PeriodStart time.Time       `json:"period_start" binding:"required"`
	PeriodEnd   time.Time       `json:"period_end" binding:"required"`
	FarmID      *uuid.UUID      `json:"farm_id"`
}

// FinanceSummary aggregates income and expenses over a period.
type FinanceSummary struct {
	From     time.Time       `json:"from"`
	To       time.Time       `json:"to"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

// FinanceService manages transactions, budgets, and period summaries.
type FinanceService interface {
	CreateTransaction(ctx context.Context, actor *permission.Identity, req CreateTransactionRequest) (*model.Transaction, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	ListTransactions(ctx context.Context, txType string, page, limit int) ([]model.Transaction, int64, error)
	DeleteTransaction(ctx context.Context, actor *permission.Identity, id uuid.UUID) error

	CreateBudget(ctx context.Context, actor *permission.Identity, req CreateBudgetRequest) (*model.Budget, error)
	ListBudgets(ctx context.Context, page, limit int) ([]model.Budget, int64, error)

	Summary(ctx context.Context, from, to time.Time) (*FinanceSummary, error)
}

type financeService struct {
	repo repository.FinanceRepository
}

func NewFinanceService(repo repository.FinanceRepository) FinanceService {
	return &financeService{repo: repo}
}

func (s *financeService) CreateTransaction(ctx context.Context, actor *permission.Identity, req CreateTransactionRequest) (*model.Transaction, error) {
	gate := permission.NewGate(actor)
	if gate.Cannot(permission.ModuleFinancialTransactions, permission.ActionCreate) {
		return nil, apperr.Permission("CREATE_TRANSACTION_DENIED", "role %s cannot record transactions", actorRole(actor))
	}
	if req.Amount.IsNegative() || req.Amount.IsZero() {
		return nil, apperr.Validation("INVALID_AMOUNT", "amount must be positive")
	}

	actorID := actor.ID
	tx := &model.Transaction{
		Type:        req.Type,
		Category:    req.Category,
		Amount:      req.Amount,
		Date:        req.Date,
		Description: req.Description,
		FarmID:      req.FarmID,
		OperationID: req.OperationID,
		CreatedBy:   &actorID,
	}
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *financeService) GetTransaction(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	tx, err := s.repo.FindTransactionByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("TRANSACTION_NOT_FOUND", "transaction %s not found", id)
		}
		return nil, err
	}
	return tx, nil
}

func (s *financeService) ListTransactions(ctx context.Context, txType string, page, limit int) ([]model.Transaction, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListTransactions(ctx, txType, page, limit)
}

func (s *financeService) DeleteTransaction(ctx context.Context, actor *permission.Identity, id uuid.UUID) error {
	gate := permission.NewGate(actor)
	if gate.Cannot(permission.ModuleFinancialTransactions, permission.ActionDelete) {
		return apperr.Permission("DELETE_TRANSACTION_DENIED", "role %s cannot delete transactions", actorRole(actor))
	}
	if _, err := s.repo.FindTransactionByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("TRANSACTION_NOT_FOUND", "transaction %s not found", id)
		}
		return err
	}
	return s.repo.DeleteTransaction(ctx, id)
}

func (s *financeService) CreateBudget(ctx context.Context, actor *permission.Identity, req CreateBudgetRequest) (*model.Budget, error) {
	gate := permission.NewGate(actor)
	if gate.Cannot(permission.ModuleBudgeting, permission.ActionCreate) {
		return nil, apperr.Permission("CREATE_BUDGET_DENIED", "role %s cannot create budgets", actorRole(actor))
	}
	if !req.PeriodEnd.After(req.PeriodStart) {
		return nil, apperr.Validation("INVALID_PERIOD", "period end must be after period start")
	}
	if req.Allocated.IsNegative() {
		return nil, apperr.Validation("INVALID_ALLOCATION", "allocated amount cannot be negative")
	}

	actorID := actor.ID
	budget := &model.Budget{
		Name:        req.Name,
		Category:    req.Category,
		Allocated:   req.Allocated,
		Spent:       decimal.Zero,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		FarmID:      req.FarmID,
		CreatedBy:   &actorID,
	}
	if err := s.repo.CreateBudget(ctx, budget); err != nil {
		return nil, err
	}
	return budget, nil
}

func (s *financeService) ListBudgets(ctx context.Context, page, limit int) ([]model.Budget, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListBudgets(ctx, page, limit)
}

func (s *financeService) Summary(ctx context.Context, from, to time.Time) (*FinanceSummary, error) {
	income, err := s.repo.SumByType(ctx, model.TransactionIncome, from, to)
	if err != nil {
		return nil, err
	}
	expenses, err := s.repo.SumByType(ctx, model.TransactionExpense, from, to)
	if err != nil {
		return nil, err
	}

	return &FinanceSummary{
		From:     from,
		To:       to,
		Income:   income,
		Expenses: expenses,
		Net:      income.Sub(expenses),
	}, nil
}
