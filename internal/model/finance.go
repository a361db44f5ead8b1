package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction type constants
const (
	TransactionIncome  = "INCOME"
	TransactionExpense = "EXPENSE"
)

// Transaction is a single financial entry (sale, purchase, cost)
type Transaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Type        string          `gorm:"type:varchar(10);not null;index" json:"type"` // INCOME, EXPENSE
	Category    string          `gorm:"type:varchar(100);not null;index" json:"category"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
	Description string          `gorm:"type:text" json:"description"`
	FarmID      *uuid.UUID      `gorm:"type:uuid;index" json:"farm_id"`
	OperationID *uuid.UUID      `gorm:"type:uuid;index" json:"operation_id"` // linked field operation, if any
	CreatedBy   *uuid.UUID      `gorm:"type:uuid;index" json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// Budget allocates spend to a category for a period
type Budget struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Category    string          `gorm:"type:varchar(100);not null;index" json:"category"`
	Allocated   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"allocated"`
	Spent       decimal.Decimal `gorm:"type:decimal(14,2);default:0" json:"spent"`
	PeriodStart time.Time       `gorm:"not null" json:"period_start"`
	PeriodEnd   time.Time       `gorm:"not null" json:"period_end"`
	FarmID      *uuid.UUID      `gorm:"type:uuid;index" json:"farm_id"`
	CreatedBy   *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}
