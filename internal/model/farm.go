package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Farm is the top-level settings entity fields and crops hang off.
type Farm struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Area      float64        `gorm:"type:decimal(12,2);not null" json:"area"` // hectares
	Location  string         `gorm:"type:varchar(255)" json:"location"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Field is a cultivated area within a farm
type Field struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string         `gorm:"type:varchar(255);not null" json:"name"`
	FarmID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"farm_id"`
	Farm         *Farm          `gorm:"foreignKey:FarmID" json:"farm,omitempty"`
	Area         float64        `gorm:"type:decimal(12,2);not null" json:"area"`
	SoilType     string         `gorm:"type:varchar(100)" json:"soil_type"`
	GPSLatitude  *float64       `gorm:"type:decimal(10,7)" json:"gps_latitude"`
	GPSLongitude *float64       `gorm:"type:decimal(10,7)" json:"gps_longitude"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Crop growth stage constants
const (
	GrowthStageSeedling   = "SEEDLING"
	GrowthStageVegetative = "VEGETATIVE"
	GrowthStageFlowering  = "FLOWERING"
	GrowthStageMaturity   = "MATURITY"
)

// Crop is a planted culture on a field
type Crop struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name                string         `gorm:"type:varchar(255);not null" json:"name"`
	Variety             string         `gorm:"type:varchar(255)" json:"variety"`
	FieldID             uuid.UUID      `gorm:"type:uuid;not null;index" json:"field_id"`
	Field               *Field         `gorm:"foreignKey:FieldID" json:"field,omitempty"`
	PlantingDate        *time.Time     `json:"planting_date"`
	ExpectedHarvestDate *time.Time     `json:"expected_harvest_date"`
	GrowthStage         string         `gorm:"type:varchar(30)" json:"growth_stage"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}
