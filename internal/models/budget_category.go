package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BudgetCategory is the planned amount for one category in one month.
type BudgetCategory struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	BudgetMonthID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_budget_categories_month_category" json:"budget_month_id"`
	CategoryID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_budget_categories_month_category" json:"category_id"`
	Category      *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	PlannedAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"planned_amount"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (b *BudgetCategory) BeforeCreate(tx *gorm.DB) error {
	ensureID(&b.ID)
	return nil
}
