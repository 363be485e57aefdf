package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BudgetStatus string

const (
	BudgetStatusDraft  BudgetStatus = "draft"
	BudgetStatusClosed BudgetStatus = "closed"
)

// BudgetMonth is one calendar month's budget. Unique per (user, year, month).
type BudgetMonth struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_budget_months_period" json:"user_id"`
	Year       int          `gorm:"not null;uniqueIndex:idx_budget_months_period" json:"year"`
	Month      int          `gorm:"not null;uniqueIndex:idx_budget_months_period" json:"month"`
	Status     BudgetStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	ClonedFrom *uuid.UUID   `gorm:"type:uuid" json:"cloned_from"`
	ClosedAt   *time.Time   `json:"closed_at"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

func (m *BudgetMonth) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	if m.Status == "" {
		m.Status = BudgetStatusDraft
	}
	return nil
}

func (m *BudgetMonth) IsClosed() bool {
	return m != nil && m.Status == BudgetStatusClosed
}

// Before reports whether m's (year, month) sorts strictly before the given pair.
func (m BudgetMonth) Before(year, month int) bool {
	return PeriodBefore(m.Year, m.Month, year, month)
}

func (m BudgetMonth) Period() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Month)
}

// PeriodBefore compares (y1, m1) < (y2, m2) lexicographically.
func PeriodBefore(y1, m1, y2, m2 int) bool {
	if y1 != y2 {
		return y1 < y2
	}
	return m1 < m2
}

// ValidPeriod reports whether month is 1..12 and year is plausible.
func ValidPeriod(year, month int) bool {
	return year >= 1900 && year <= 9999 && month >= 1 && month <= 12
}
