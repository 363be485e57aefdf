package budget

import (
	"household-budget-backend/internal/models"
)

// Step is the lifecycle position of a month, always derived from stored
// state.
type Step string

const (
	StepClone  Step = "clone"
	StepEdit   Step = "edit"
	StepClose  Step = "close"
	StepClosed Step = "closed"
)

// DeriveStep maps (status, category count) to the step a reload lands on.
// StepClose is never derived; it is the review screen in front of Close.
func DeriveStep(m *models.BudgetMonth, categoryCount int) Step {
	switch {
	case m == nil:
		return StepClone
	case m.IsClosed():
		return StepClosed
	case categoryCount > 0:
		return StepEdit
	default:
		return StepClone
	}
}

// HasPreviousMonth reports whether any month sorts strictly before
// (year, month).
func HasPreviousMonth(months []models.BudgetMonth, year, month int) bool {
	for _, m := range months {
		if m.Before(year, month) {
			return true
		}
	}
	return false
}
