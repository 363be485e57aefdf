package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"household-budget-backend/internal/auth"
	"household-budget-backend/internal/cache"
)

// Repositories bundles one repository per table.
type Repositories struct {
	Months        *BudgetMonthRepository
	Plans         *BudgetCategoryRepository
	FixedExpenses *FixedExpenseRepository
	Categories    *CategoryRepository
	CreditCards   *CreditCardRepository
	BankAccounts  *BankAccountRepository
	Transactions  *TransactionRepository
	Imports       *ImportBatchRepository
	Audit         *AuditLogRepository
	Profiles      *ProfileRepository
}

func New(db *gorm.DB, c *cache.QueryCache) *Repositories {
	return &Repositories{
		Months:        NewBudgetMonthRepository(db),
		Plans:         NewBudgetCategoryRepository(db, c),
		FixedExpenses: NewFixedExpenseRepository(db),
		Categories:    NewCategoryRepository(db, c),
		CreditCards:   NewCreditCardRepository(db, c),
		BankAccounts:  NewBankAccountRepository(db, c),
		Transactions:  NewTransactionRepository(db),
		Imports:       NewImportBatchRepository(db),
		Audit:         NewAuditLogRepository(db),
		Profiles:      NewProfileRepository(db),
	}
}

// owned returns a session restricted to the current user's rows. It fails
// before any query runs when no user is authenticated.
func owned(ctx context.Context, db *gorm.DB) (*gorm.DB, uuid.UUID, error) {
	userID, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, uuid.Nil, err
	}
	return db.WithContext(ctx).Where("user_id = ?", userID), userID, nil
}
