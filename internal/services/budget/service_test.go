package budget

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"household-budget-backend/internal/apperr"
	"household-budget-backend/internal/cache"
	"household-budget-backend/internal/models"
	"household-budget-backend/internal/repository"
	"household-budget-backend/internal/services/audit"
	"household-budget-backend/internal/testutil"
)

type fixture struct {
	svc   *Service
	repos *repository.Repositories
	ctx   context.Context
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewDB(t)
	repos := repository.New(db, cache.New(time.Minute))
	svc := NewService(repos, repository.NewLocalProcedures(db), audit.NewRecorder(repos))
	svc.now = func() time.Time { return time.Date(2024, 3, 31, 18, 0, 0, 0, time.UTC) }
	ctx, _ := testutil.UserContext()
	return fixture{svc: svc, repos: repos, ctx: ctx}
}

func (f fixture) category(t *testing.T, name string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name}
	require.NoError(t, f.repos.Categories.Create(f.ctx, c))
	return c
}

func TestStartMonthWithoutHistoryCreatesEmptyDraft(t *testing.T) {
	f := newFixture(t)

	m, err := f.svc.StartMonth(f.ctx, 2024, 3)
	require.NoError(t, err)
	assert.Equal(t, models.BudgetStatusDraft, m.Status)
	assert.Nil(t, m.ClonedFrom)

	view, err := f.svc.MonthView(f.ctx, 2024, 3)
	require.NoError(t, err)
	assert.Equal(t, StepClone, view.Step)
	assert.Empty(t, view.Categories)

	again, err := f.svc.StartMonth(f.ctx, 2024, 3)
	require.NoError(t, err)
	assert.Equal(t, m.ID, again.ID)
}

func TestStartMonthClonesPreviousMonth(t *testing.T) {
	f := newFixture(t)
	food := f.category(t, "Food")

	feb, err := f.svc.CreateMonth(f.ctx, 2024, 2)
	require.NoError(t, err)
	_, err = f.svc.SetPlannedAmount(f.ctx, feb.ID, food.ID, decimal.NewFromInt(500))
	require.NoError(t, err)
	due := 5
	rent, err := f.svc.AddFixedExpense(f.ctx, feb.ID, FixedExpenseInput{Name: "Rent", Amount: decimal.NewFromInt(1000), DueDay: &due})
	require.NoError(t, err)

	mar, err := f.svc.StartMonth(f.ctx, 2024, 3)
	require.NoError(t, err)
	require.NotNil(t, mar.ClonedFrom)
	assert.Equal(t, feb.ID, *mar.ClonedFrom)

	bills, err := f.svc.ListFixedExpenses(f.ctx, mar.ID)
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, "Rent", bills[0].Name)
	assert.True(t, bills[0].Amount.Equal(decimal.NewFromInt(1000)))
	require.NotNil(t, bills[0].DueDay)
	assert.Equal(t, 5, *bills[0].DueDay)
	assert.NotEqual(t, rent.ID, bills[0].ID)
	assert.Equal(t, mar.ID, bills[0].BudgetMonthID)

	view, err := f.svc.MonthView(f.ctx, 2024, 3)
	require.NoError(t, err)
	assert.Equal(t, StepEdit, view.Step)
	require.Len(t, view.Categories, 1)
	assert.True(t, view.Categories[0].PlannedAmount.Equal(decimal.NewFromInt(500)))

	_, err = f.svc.StartMonth(f.ctx, 2024, 3)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestSetPlannedAmountCreatesThenUpdates(t *testing.T) {
	f := newFixture(t)
	food := f.category(t, "Food")
	m, err := f.svc.CreateMonth(f.ctx, 2024, 4)
	require.NoError(t, err)

	first, err := f.svc.SetPlannedAmount(f.ctx, m.ID, food.ID, decimal.NewFromInt(300))
	require.NoError(t, err)
	second, err := f.svc.SetPlannedAmount(f.ctx, m.ID, food.ID, decimal.RequireFromString("325.50"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	plans, err := f.repos.Plans.ListByMonth(f.ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.True(t, plans[0].PlannedAmount.Equal(decimal.RequireFromString("325.50")))

	zero, err := f.svc.SetPlannedAmount(f.ctx, m.ID, food.ID, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, zero.PlannedAmount.IsZero())

	_, err = f.svc.SetPlannedAmount(f.ctx, m.ID, food.ID, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestCloseRequiresConfirmationAndIsFinal(t *testing.T) {
	f := newFixture(t)
	m, err := f.svc.CreateMonth(f.ctx, 2024, 3)
	require.NoError(t, err)

	_, err = f.svc.Close(f.ctx, m.ID, false)
	assert.ErrorIs(t, err, apperr.ErrConfirmationRequired)

	got, err := f.repos.Months.GetByID(f.ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BudgetStatusDraft, got.Status)

	closed, err := f.svc.Close(f.ctx, m.ID, true)
	require.NoError(t, err)
	assert.True(t, closed.IsClosed())
	require.NotNil(t, closed.ClosedAt)
	assert.True(t, closed.ClosedAt.Equal(f.svc.now()))

	_, err = f.svc.Close(f.ctx, m.ID, true)
	assert.ErrorIs(t, err, apperr.ErrMonthClosed)

	view, err := f.svc.MonthView(f.ctx, 2024, 3)
	require.NoError(t, err)
	assert.Equal(t, StepClosed, view.Step)

	_, err = f.svc.StartMonth(f.ctx, 2024, 3)
	assert.ErrorIs(t, err, apperr.ErrMonthClosed)
}

func TestEditAfterCloseIsFlagged(t *testing.T) {
	f := newFixture(t)
	food := f.category(t, "Food")
	m, err := f.svc.CreateMonth(f.ctx, 2024, 3)
	require.NoError(t, err)
	_, err = f.svc.SetPlannedAmount(f.ctx, m.ID, food.ID, decimal.NewFromInt(100))
	require.NoError(t, err)

	_, err = f.svc.Close(f.ctx, m.ID, true)
	require.NoError(t, err)

	_, err = f.svc.SetPlannedAmount(f.ctx, m.ID, food.ID, decimal.NewFromInt(150))
	require.NoError(t, err)

	entries, err := f.repos.Audit.List(f.ctx, repository.AuditQuery{})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	late, err := f.repos.Audit.List(f.ctx, repository.AuditQuery{EditedAfterCloseOnly: true})
	require.NoError(t, err)
	require.Len(t, late, 1)
	assert.Equal(t, models.AuditUpdate, late[0].Action)
	assert.Equal(t, audit.EntityBudgetCategory, late[0].EntityType)
}

func TestFixedExpenseEdits(t *testing.T) {
	f := newFixture(t)
	m, err := f.svc.CreateMonth(f.ctx, 2024, 5)
	require.NoError(t, err)

	_, err = f.svc.AddFixedExpense(f.ctx, m.ID, FixedExpenseInput{Name: " ", Amount: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	bad := 32
	_, err = f.svc.AddFixedExpense(f.ctx, m.ID, FixedExpenseInput{Name: "Gym", Amount: decimal.NewFromInt(10), DueDay: &bad})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	gym, err := f.svc.AddFixedExpense(f.ctx, m.ID, FixedExpenseInput{Name: "Gym", Amount: decimal.NewFromInt(90)})
	require.NoError(t, err)

	paid, err := f.svc.SetFixedExpensePaid(f.ctx, gym.ID, true)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)

	day := 12
	updated, err := f.svc.UpdateFixedExpense(f.ctx, gym.ID, FixedExpenseInput{Name: "Gym", Amount: decimal.NewFromInt(95), DueDay: &day})
	require.NoError(t, err)
	assert.True(t, updated.IsPaid)
	assert.True(t, updated.Amount.Equal(decimal.NewFromInt(95)))

	require.NoError(t, f.svc.DeleteFixedExpense(f.ctx, gym.ID))
	bills, err := f.svc.ListFixedExpenses(f.ctx, m.ID)
	require.NoError(t, err)
	assert.Empty(t, bills)
}

func TestCloseSummaryTotals(t *testing.T) {
	f := newFixture(t)
	food := f.category(t, "Food")
	fun := f.category(t, "Fun")
	m, err := f.svc.CreateMonth(f.ctx, 2024, 6)
	require.NoError(t, err)

	_, err = f.svc.SetPlannedAmount(f.ctx, m.ID, food.ID, decimal.NewFromInt(500))
	require.NoError(t, err)
	_, err = f.svc.SetPlannedAmount(f.ctx, m.ID, fun.ID, decimal.RequireFromString("120.25"))
	require.NoError(t, err)
	rent, err := f.svc.AddFixedExpense(f.ctx, m.ID, FixedExpenseInput{Name: "Rent", Amount: decimal.NewFromInt(1000)})
	require.NoError(t, err)
	_, err = f.svc.AddFixedExpense(f.ctx, m.ID, FixedExpenseInput{Name: "Power", Amount: decimal.NewFromInt(80)})
	require.NoError(t, err)
	_, err = f.svc.SetFixedExpensePaid(f.ctx, rent.ID, true)
	require.NoError(t, err)

	card := &models.CreditCard{Name: "Visa", TotalLimit: decimal.NewFromInt(5000)}
	require.NoError(t, f.repos.CreditCards.Create(f.ctx, card))
	_, err = f.svc.SetCardBudgetLimit(f.ctx, card.ID, decimal.NewFromInt(1500))
	require.NoError(t, err)

	sum, err := f.svc.CloseSummary(f.ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, StepClose, sum.Step)
	assert.Equal(t, 2, sum.CategoryCount)
	assert.True(t, sum.PlannedTotal.Equal(decimal.RequireFromString("620.25")))
	assert.True(t, sum.FixedExpenseTotal.Equal(decimal.NewFromInt(1080)))
	assert.True(t, sum.UnpaidFixedTotal.Equal(decimal.NewFromInt(80)))
	assert.True(t, sum.CardBudgetTotal.Equal(decimal.NewFromInt(1500)))

	_, err = f.svc.SetCardBudgetLimit(f.ctx, card.ID, decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestServiceRequiresUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.StartMonth(context.Background(), 2024, 3)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = f.svc.StartMonth(f.ctx, 2024, 13)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}
