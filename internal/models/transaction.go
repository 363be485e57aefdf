package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}
	return false
}

type ImportSource string

const (
	SourceOFX    ImportSource = "ofx"
	SourcePrint  ImportSource = "print"
	SourceManual ImportSource = "manual"
)

func (s ImportSource) Valid() bool {
	switch s {
	case SourceOFX, SourcePrint, SourceManual:
		return true
	}
	return false
}

// Transaction is a single financial movement. Amount is signed; negative
// values are outflows.
type Transaction struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Merchant        string          `gorm:"not null" json:"merchant"`
	TransactionDate time.Time       `gorm:"column:transaction_date;not null;index" json:"transaction_date"`
	CategoryID      *uuid.UUID      `gorm:"type:uuid;index" json:"category_id"`
	Category        *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Confidence      Confidence      `gorm:"type:varchar(8);not null" json:"confidence"`
	NeedsReview     bool            `gorm:"not null;index" json:"needs_review"`
	IsInternal      bool            `gorm:"not null;index" json:"is_internal"`
	Source          ImportSource    `gorm:"type:varchar(8);not null" json:"source"`
	BudgetMonthID   *uuid.UUID      `gorm:"type:uuid;index" json:"budget_month_id"`
	ImportBatchID   *uuid.UUID      `gorm:"type:uuid;index" json:"import_batch_id"`
	ExternalID      *string         `gorm:"index" json:"external_id"`
	ReviewedAt      *time.Time      `json:"reviewed_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	ensureID(&t.ID)
	if t.Confidence == "" {
		t.Confidence = ConfidenceLow
	}
	if t.Source == "" {
		t.Source = SourceManual
	}
	return nil
}

// PendingReview is the needs-action rule: no category and not a transfer.
func (t Transaction) PendingReview() bool {
	return t.CategoryID == nil && !t.IsInternal
}
