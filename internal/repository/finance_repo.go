package repository

import (
	"context"
	"time"

	"croppo/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FinanceRepository covers financial transactions and budgets.
type FinanceRepository interface {
	CreateTransaction(ctx context.Context, tx *model.Transaction) error
	FindTransactionByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	ListTransactions(ctx context.Context, txType string, page, limit int) ([]model.Transaction, int64, error)
	UpdateTransaction(ctx context.Context, tx *model.Transaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	SumByType(ctx context.Context, txType string, from, to time.Time) (decimal.Decimal, error)

	CreateBudget(ctx context.Context, b *model.Budget) error
	FindBudgetByID(ctx context.Context, id uuid.UUID) (*model.Budget, error)
	ListBudgets(ctx context.Context, page, limit int) ([]model.Budget, int64, error)
	UpdateBudget(ctx context.Context, b *model.Budget) error
	DeleteBudget(ctx context.Context, id uuid.UUID) error
}

type financeRepository struct {
	db *gorm.DB
}

func NewFinanceRepository(db *gorm.DB) FinanceRepository {
	return &financeRepository{db: db}
}

func (r *financeRepository) CreateTransaction(ctx context.Context, tx *model.Transaction) error {
	return GetDB(ctx, r.db).Create(tx).Error
}

func (r *financeRepository) FindTransactionByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var tx model.Transaction
	if err := GetDB(ctx, r.db).First(&tx, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *financeRepository) ListTransactions(ctx context.Context, txType string, page, limit int) ([]model.Transaction, int64, error) {
	var txs []model.Transaction
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Transaction{})
	if txType != "" {
		query = query.Where("type = ?", txType)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetch := db.Order("date DESC").Offset(offset).Limit(limit)
	if txType != "" {
		fetch = fetch.Where("type = ?", txType)
	}
	if err := fetch.Find(&txs).Error; err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

func (r *financeRepository) UpdateTransaction(ctx context.Context, tx *model.Transaction) error {
	return GetDB(ctx, r.db).Save(tx).Error
}

func (r *financeRepository) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Transaction{}).Error
}

func (r *financeRepository) SumByType(ctx context.Context, txType string, from, to time.Time) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := GetDB(ctx, r.db).Model(&model.Transaction{}).
		Where("type = ? AND date >= ? AND date <= ?", txType, from, to).
		Select("COALESCE(SUM(amount), 0)").Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

func (r *financeRepository) CreateBudget(ctx context.Context, b *model.Budget) error {
	return GetDB(ctx, r.db).Create(b).Error
}

func (r *financeRepository) FindBudgetByID(ctx context.Context, id uuid.UUID) (*model.Budget, error) {
	var b model.Budget
	if err := GetDB(ctx, r.db).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *financeRepository) ListBudgets(ctx context.Context, page, limit int) ([]model.Budget, int64, error) {
	var budgets []model.Budget
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Budget{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("period_start DESC").Offset(offset).Limit(limit).Find(&budgets).Error; err != nil {
		return nil, 0, err
	}
	return budgets, total, nil
}

func (r *financeRepository) UpdateBudget(ctx context.Context, b *model.Budget) error {
	return GetDB(ctx, r.db).Save(b).Error
}

func (r *financeRepository) DeleteBudget(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Budget{}).Error
}
