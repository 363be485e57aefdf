package models

import (
	"github.com/google/uuid"
)

// All lists every model for AutoMigrate, parents first.
func All() []any {
	return []any{
		&Profile{},
		&UserRole{},
		&Category{},
		&CreditCard{},
		&BankAccount{},
		&BudgetMonth{},
		&BudgetCategory{},
		&FixedExpense{},
		&ImportBatch{},
		&Transaction{},
		&AuditLog{},
	}
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
