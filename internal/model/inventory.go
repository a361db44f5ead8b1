package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Inventory item category constants
const (
	ItemCategoryFertilizer = "fertilizer"
	ItemCategoryPesticide  = "pesticide"
	ItemCategorySeed       = "seed"
	ItemCategoryFuel       = "fuel"
	ItemCategoryEquipment  = "equipment"
)

// InventoryItem represents a stocked farm input
type InventoryItem struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name             string         `gorm:"type:varchar(255);not null" json:"name"`
	Category         string         `gorm:"type:varchar(30);not null;index" json:"category"`
	CurrentStock     float64        `gorm:"type:decimal(12,2);default:0;not null" json:"current_stock"`
	Unit             string         `gorm:"type:varchar(20);not null" json:"unit"` // kg, L, units
	ReorderThreshold float64        `gorm:"type:decimal(12,2);default:0" json:"reorder_threshold"`
	ReorderQuantity  float64        `gorm:"type:decimal(12,2);default:0" json:"reorder_quantity"`
	CostPerUnit      float64        `gorm:"type:decimal(12,2);default:0" json:"cost_per_unit"`
	Supplier         string         `gorm:"type:varchar(255)" json:"supplier"`
	Barcode          string         `gorm:"type:varchar(100)" json:"barcode"`
	Location         string         `gorm:"type:varchar(255)" json:"location"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// MovementType Enum Simulation
const (
	MovementTypeIn         = "IN"
	MovementTypeOut        = "OUT"
	MovementTypeAdjustment = "ADJUSTMENT"
)

// InventoryMovement records stock changes strictly
type InventoryMovement struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ItemID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"item_id"`
	Item         *InventoryItem `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	MovementType string     `gorm:"type:varchar(15);not null" json:"movement_type"` // IN, OUT, ADJUSTMENT
	Quantity     float64    `gorm:"type:decimal(12,2);not null" json:"quantity"`
	StockAfter   float64    `gorm:"type:decimal(12,2);not null" json:"stock_after"`
	Reason       string     `gorm:"type:varchar(255)" json:"reason"`
	OperatorID   *uuid.UUID `gorm:"type:uuid;index" json:"operator_id"`
	CreatedAt    time.Time  `json:"created_at"`
}

// InventoryRequest status constants. Same one-way machine as the approval
// ledger, with ACCEPTED instead of APPROVED.
const (
	InventoryRequestPending  = "PENDING"
	InventoryRequestAccepted = "ACCEPTED"
	InventoryRequestRejected = "REJECTED"
)

// InventoryRequest queues a stock deduction proposed by a treatment or
// fertilization operation. Accepting the request deducts the quantity from
// the referenced item and records the movement in the same transaction.
type InventoryRequest struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Type        string     `gorm:"type:varchar(20);not null" json:"type"` // treatment, fertilization
	OperationID uuid.UUID  `gorm:"type:uuid;not null;index" json:"operation_id"`
	ItemID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"item_id"`
	Quantity    float64    `gorm:"type:decimal(12,2);not null" json:"quantity"`
	Status      string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
