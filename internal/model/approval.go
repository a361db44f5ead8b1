package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request status constants. Pending requests transition exactly once, to
// APPROVED or REJECTED; both are terminal. DRAFT exists as a pre-submission
// state but the workflow currently creates directly into PENDING.
const (
	RequestStatusDraft    = "DRAFT"
	RequestStatusPending  = "PENDING"
	RequestStatusApproved = "APPROVED"
	RequestStatusRejected = "REJECTED"
)

// ApprovalRequest type constants
const (
	RequestTypeFertilization = "fertilization"
	RequestTypeTreatment     = "treatment"
	RequestTypeIrrigation    = "irrigation"
	RequestTypePurchase      = "purchase"
	RequestTypeBudget        = "budget"
)

// Request priority constants
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// ApprovalRequest represents a proposed operational change awaiting a
// decision from an authorized approver. The table is an append-only ledger:
// rows are created and decided, never deleted. The integer primary key is
// auto-incremented so ids are strictly increasing and never reused.
type ApprovalRequest struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Type            string          `gorm:"type:varchar(30);not null;index" json:"type"` // fertilization, treatment, irrigation, purchase, budget
	Title           string          `gorm:"type:varchar(255);not null" json:"title"`
	Description     string          `gorm:"type:text" json:"description"`
	RequestedBy     uuid.UUID       `gorm:"type:uuid;not null;index" json:"requested_by"`
	Requester       *User           `gorm:"foreignKey:RequestedBy" json:"requester,omitempty"`
	RequestedByName string          `gorm:"type:varchar(255)" json:"requested_by_name"`
	Status          string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	Data            string          `gorm:"type:jsonb" json:"data"` // Opaque payload specific to the request type
	EstimatedCost   decimal.Decimal `gorm:"type:decimal(14,2);default:0" json:"estimated_cost"`
	Priority        string          `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	ApprovedBy      *uuid.UUID      `gorm:"type:uuid" json:"approved_by"`
	Approver        *User           `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
	ApprovedByName  string          `gorm:"type:varchar(255)" json:"approved_by_name,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at"`
	ApprovalComment string          `gorm:"type:text" json:"approval_comment,omitempty"`
	RejectedBy      *uuid.UUID      `gorm:"type:uuid" json:"rejected_by"`
	Rejector        *User           `gorm:"foreignKey:RejectedBy" json:"rejector,omitempty"`
	RejectedByName  string          `gorm:"type:varchar(255)" json:"rejected_by_name,omitempty"`
	RejectedAt      *time.Time      `json:"rejected_at"`
	RejectionReason string          `gorm:"type:text" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Decided reports whether the request has left the pending state.
func (r *ApprovalRequest) Decided() bool {
	return r.Status == RequestStatusApproved || r.Status == RequestStatusRejected
}

// ValidRequestType reports whether t is one of the defined request types.
func ValidRequestType(t string) bool {
	switch t {
	case RequestTypeFertilization, RequestTypeTreatment, RequestTypeIrrigation, RequestTypePurchase, RequestTypeBudget:
		return true
	}
	return false
}

// ValidPriority reports whether p is one of the defined priorities.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
