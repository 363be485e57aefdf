package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	DefaultCategoryIcon  = "circle-dot"
	DefaultCategoryColor = "bg-gray-500"
)

// Category is a spending label. Soft deleted through IsActive.
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name      string    `gorm:"not null" json:"name"`
	Icon      string    `gorm:"not null" json:"icon"`
	Color     string    `gorm:"not null" json:"color"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	if c.Icon == "" {
		c.Icon = DefaultCategoryIcon
	}
	if c.Color == "" {
		c.Color = DefaultCategoryColor
	}
	return nil
}

// CreditCard carries a per-card budget limit edited during planning.
type CreditCard struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string          `gorm:"not null" json:"name"`
	LastFour    *string         `gorm:"type:varchar(4)" json:"last_four"`
	TotalLimit  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_limit"`
	BudgetLimit decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"budget_limit"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (c *CreditCard) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

type BankAccount struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name          string    `gorm:"not null" json:"name"`
	BankName      string    `gorm:"not null" json:"bank_name"`
	Agency        *string   `json:"agency"`
	AccountNumber *string   `json:"account_number"`
	IsActive      bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

func (a *BankAccount) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
