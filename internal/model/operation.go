package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Operation type constants
const (
	OperationPlanting      = "PLANTING"
	OperationHarvest       = "HARVEST"
	OperationTreatment     = "TREATMENT"
	OperationFertilization = "FERTILIZATION"
	OperationIrrigation    = "IRRIGATION"
)

// Operation record status constants
const (
	OperationStatusPending   = "PENDING"
	OperationStatusConfirmed = "CONFIRMED"
	OperationStatusRejected  = "REJECTED"
)

// Operation is a field operation record (planting, harvest, treatment,
// fertilization, irrigation). Type-specific attributes live in the Details
// payload; the columns below are the ones queried and reported on.
type Operation struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Type         string         `gorm:"type:varchar(20);not null;index" json:"type"`
	Date         time.Time      `gorm:"not null;index" json:"date"`
	FieldID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"field_id"`
	Field        *Field         `gorm:"foreignKey:FieldID" json:"field,omitempty"`
	CropID       *uuid.UUID     `gorm:"type:uuid;index" json:"crop_id"`
	Crop         *Crop          `gorm:"foreignKey:CropID" json:"crop,omitempty"`
	ItemID       *uuid.UUID     `gorm:"type:uuid;index" json:"item_id"` // inventory item consumed, if any
	QuantityUsed float64        `gorm:"type:decimal(12,2);default:0" json:"quantity_used"`
	Unit         string         `gorm:"type:varchar(20)" json:"unit"`
	Operator     string         `gorm:"type:varchar(255)" json:"operator"`
	Cost         float64        `gorm:"type:decimal(12,2);default:0" json:"cost"`
	Status       string         `gorm:"type:varchar(20);not null;default:'CONFIRMED'" json:"status"`
	Notes        string         `gorm:"type:text" json:"notes"`
	Details      string         `gorm:"type:jsonb" json:"details"` // type-specific payload (rate, method, yield, duration...)
	CreatedBy    *uuid.UUID     `gorm:"type:uuid;index" json:"created_by"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// ValidOperationType reports whether t is one of the defined operation types.
func ValidOperationType(t string) bool {
	switch t {
	case OperationPlanting, OperationHarvest, OperationTreatment, OperationFertilization, OperationIrrigation:
		return true
	}
	return false
}
