package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidDueDay  = errors.New("due day must be between 1 and 31")
	ErrEmptyName      = errors.New("name cannot be empty")
	ErrNegativeAmount = errors.New("amount cannot be negative")
)

// FixedExpense is a recurring bill scoped to one BudgetMonth.
type FixedExpense struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	BudgetMonthID uuid.UUID       `gorm:"type:uuid;not null;index" json:"budget_month_id"`
	Name          string          `gorm:"not null" json:"name"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	DueDay        *int            `json:"due_day"`
	IsPaid        bool            `gorm:"not null" json:"is_paid"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (f *FixedExpense) BeforeCreate(tx *gorm.DB) error {
	ensureID(&f.ID)
	return nil
}

func (f FixedExpense) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrEmptyName
	}
	if f.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if f.DueDay != nil && (*f.DueDay < 1 || *f.DueDay > 31) {
		return ErrInvalidDueDay
	}
	return nil
}
