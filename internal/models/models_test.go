package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPeriodBefore(t *testing.T) {
	cases := []struct {
		y1, m1, y2, m2 int
		want           bool
	}{
		{2026, 9, 2026, 10, true},
		{2025, 12, 2026, 1, true},
		{2026, 10, 2026, 10, false},
		{2026, 11, 2026, 10, false},
		{2027, 1, 2026, 12, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, PeriodBefore(c.y1, c.m1, c.y2, c.m2), "%d-%d < %d-%d", c.y1, c.m1, c.y2, c.m2)
	}

	m := BudgetMonth{Year: 2026, Month: 3}
	assert.True(t, m.Before(2026, 4))
	assert.Equal(t, "2026-03", m.Period())
}

func TestValidPeriod(t *testing.T) {
	assert.True(t, ValidPeriod(2026, 1))
	assert.False(t, ValidPeriod(2026, 0))
	assert.False(t, ValidPeriod(2026, 13))
	assert.False(t, ValidPeriod(12, 5))
}

func TestFixedExpenseValidate(t *testing.T) {
	day := func(d int) *int { return &d }

	assert.NoError(t, FixedExpense{Name: "Rent", Amount: decimal.NewFromInt(1000), DueDay: day(5)}.Validate())
	assert.NoError(t, FixedExpense{Name: "Gym", Amount: decimal.Zero}.Validate())
	assert.ErrorIs(t, FixedExpense{Name: " ", Amount: decimal.Zero}.Validate(), ErrEmptyName)
	assert.ErrorIs(t, FixedExpense{Name: "Rent", Amount: decimal.NewFromInt(-1)}.Validate(), ErrNegativeAmount)
	assert.ErrorIs(t, FixedExpense{Name: "Rent", DueDay: day(0)}.Validate(), ErrInvalidDueDay)
	assert.ErrorIs(t, FixedExpense{Name: "Rent", DueDay: day(32)}.Validate(), ErrInvalidDueDay)
}

func TestPendingReview(t *testing.T) {
	cat := uuid.New()
	assert.True(t, Transaction{}.PendingReview())
	assert.False(t, Transaction{CategoryID: &cat}.PendingReview())
	assert.False(t, Transaction{IsInternal: true}.PendingReview())
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, ConfidenceMedium.Valid())
	assert.False(t, Confidence("certain").Valid())
	assert.True(t, SourcePrint.Valid())
	assert.False(t, ImportSource("csv").Valid())
}
