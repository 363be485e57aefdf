package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"household-budget-backend/internal/models"
)

func TestDeriveStep(t *testing.T) {
	draft := &models.BudgetMonth{Status: models.BudgetStatusDraft}
	closed := &models.BudgetMonth{Status: models.BudgetStatusClosed}

	tests := []struct {
		name       string
		month      *models.BudgetMonth
		categories int
		want       Step
	}{
		{"no month", nil, 0, StepClone},
		{"empty draft", draft, 0, StepClone},
		{"draft with plans", draft, 3, StepEdit},
		{"closed with plans", closed, 3, StepClosed},
		{"closed empty", closed, 0, StepClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStep(tt.month, tt.categories))
		})
	}
}

func TestHasPreviousMonth(t *testing.T) {
	months := []models.BudgetMonth{{Year: 2023, Month: 12}, {Year: 2024, Month: 5}}

	tests := []struct {
		year, month int
		want        bool
	}{
		{2023, 12, false},
		{2023, 11, false},
		{2024, 1, true},
		{2024, 5, true},
		{2025, 1, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HasPreviousMonth(months, tt.year, tt.month), "%d-%d", tt.year, tt.month)
	}
	assert.False(t, HasPreviousMonth(nil, 2024, 1))
}
