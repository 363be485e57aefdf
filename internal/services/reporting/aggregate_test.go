package reporting

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"household-budget-backend/internal/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func plan(c *models.Category, amount string) models.BudgetCategory {
	return models.BudgetCategory{CategoryID: c.ID, Category: c, PlannedAmount: dec(amount)}
}

func spend(c *models.Category, amount string) models.Transaction {
	tx := models.Transaction{Amount: dec(amount)}
	if c != nil {
		tx.CategoryID = &c.ID
		tx.Category = c
	}
	return tx
}

func TestReportUnderBudget(t *testing.T) {
	food := &models.Category{ID: uuid.New(), Name: "Food"}

	r := BuildReport([]models.BudgetCategory{plan(food, "500")}, []models.Transaction{spend(food, "-200")})

	require.Len(t, r.Rows, 1)
	assert.True(t, r.Rows[0].Planned.Equal(dec("500")))
	assert.True(t, r.Rows[0].Actual.Equal(dec("200")))
	assert.False(t, r.Rows[0].IsOver)
	assert.Equal(t, 0, r.OverBudgetCount)
	assert.True(t, r.Difference.Equal(dec("-300")))
}

func TestReportOverBudget(t *testing.T) {
	food := &models.Category{ID: uuid.New(), Name: "Food"}

	r := BuildReport([]models.BudgetCategory{plan(food, "500")}, []models.Transaction{spend(food, "-600")})

	require.Len(t, r.Rows, 1)
	assert.True(t, r.Rows[0].Actual.Equal(dec("600")))
	assert.True(t, r.Rows[0].IsOver)
	assert.Equal(t, 1, r.OverBudgetCount)
}

func TestReportExactlyOnBudgetIsNotOver(t *testing.T) {
	food := &models.Category{ID: uuid.New(), Name: "Food"}
	r := BuildReport([]models.BudgetCategory{plan(food, "500")}, []models.Transaction{spend(food, "-500")})
	assert.False(t, r.Rows[0].IsOver)
}

func TestReportExcludesInternalTransactions(t *testing.T) {
	food := &models.Category{ID: uuid.New(), Name: "Food"}
	transfer := spend(food, "-1000")
	transfer.IsInternal = true

	r := BuildReport([]models.BudgetCategory{plan(food, "500")}, []models.Transaction{spend(food, "-200"), transfer})

	require.Len(t, r.Rows, 1)
	assert.True(t, r.Rows[0].Actual.Equal(dec("200")))
	assert.Len(t, r.Rows[0].Transactions, 1)
	assert.True(t, r.TotalActual.Equal(dec("200")))
}

func TestReportKeepsPlannedCategoryWithoutSpend(t *testing.T) {
	food := &models.Category{ID: uuid.New(), Name: "Food", SortOrder: 1}
	travel := &models.Category{ID: uuid.New(), Name: "Travel", SortOrder: 2}

	r := BuildReport(
		[]models.BudgetCategory{plan(travel, "300"), plan(food, "500")},
		[]models.Transaction{spend(food, "-50")},
	)

	require.Len(t, r.Rows, 2)
	assert.Equal(t, "Food", r.Rows[0].Name)
	assert.Equal(t, "Travel", r.Rows[1].Name)
	assert.True(t, r.Rows[1].Actual.IsZero())
	assert.False(t, r.Rows[1].IsOver)
	assert.NotNil(t, r.Rows[1].Transactions)
	assert.True(t, r.TotalPlanned.Equal(dec("800")))
}

func TestReportActualsSumToSpendTotal(t *testing.T) {
	food := &models.Category{ID: uuid.New(), Name: "Food"}
	fun := &models.Category{ID: uuid.New(), Name: "Fun"}
	internal := spend(nil, "-700")
	internal.IsInternal = true
	txs := []models.Transaction{
		spend(food, "-10.10"),
		spend(food, "-20.20"),
		spend(fun, "-0.30"),
		spend(nil, "-5.55"),
		spend(food, "3.00"),
		internal,
	}

	r := BuildReport([]models.BudgetCategory{plan(food, "100")}, txs)

	sum := decimal.Zero
	for _, row := range r.Rows {
		sum = sum.Add(row.Actual)
	}
	assert.True(t, sum.Equal(SpendTotal(txs)))
	assert.True(t, r.TotalActual.Equal(dec("39.15")))

	require.Len(t, r.Rows, 3)
	assert.False(t, r.Rows[0].Unplanned)
	assert.True(t, r.Rows[1].Unplanned)
	assert.True(t, r.Rows[2].Unplanned)

	again := BuildReport([]models.BudgetCategory{plan(food, "100")}, txs)
	assert.True(t, again.TotalActual.Equal(r.TotalActual))
	assert.True(t, again.TotalPlanned.Equal(r.TotalPlanned))
	assert.Equal(t, r.OverBudgetCount, again.OverBudgetCount)
}

func TestGroupByCategoryUncategorizedBucket(t *testing.T) {
	food := &models.Category{ID: uuid.New(), Name: "Food", Icon: "utensils", Color: "bg-green-500"}

	groups := GroupByCategory([]models.Transaction{
		spend(nil, "-5"),
		spend(food, "-40"),
		spend(nil, "-7"),
	})

	require.Len(t, groups, 2)
	assert.Equal(t, "Food", groups[0].Name)
	assert.Equal(t, "utensils", groups[0].Icon)
	assert.True(t, groups[0].Total.Equal(dec("40")))

	assert.Nil(t, groups[1].CategoryID)
	assert.Equal(t, UncategorizedName, groups[1].Name)
	assert.Equal(t, "circle-dot", groups[1].Icon)
	assert.Equal(t, "bg-gray-500", groups[1].Color)
	assert.True(t, groups[1].Total.Equal(dec("12")))
	assert.Len(t, groups[1].Transactions, 2)
}

func TestGroupByCategoryEmpty(t *testing.T) {
	assert.Empty(t, GroupByCategory(nil))
	r := BuildReport(nil, nil)
	assert.Empty(t, r.Rows)
	assert.True(t, r.TotalActual.IsZero())
}

func TestReportTotals(t *testing.T) {
	food := &models.Category{ID: uuid.New(), Name: "Food"}
	fuel := &models.Category{ID: uuid.New(), Name: "Fuel"}

	tests := []struct {
		name         string
		plans        []models.BudgetCategory
		txs          []models.Transaction
		wantPlanned  string
		wantActual   string
		wantOverRows int
	}{
		{
			name:        "cents add without drift",
			plans:       []models.BudgetCategory{plan(food, "0.3")},
			txs:         []models.Transaction{spend(food, "-0.1"), spend(food, "-0.2")},
			wantPlanned: "0.3",
			wantActual:  "0.3",
		},
		{
			name:        "many small amounts",
			plans:       []models.BudgetCategory{plan(food, "1"), plan(fuel, "0.7")},
			txs:         []models.Transaction{spend(food, "-0.1"), spend(food, "-0.1"), spend(food, "-0.1"), spend(fuel, "-0.7")},
			wantPlanned: "1.7",
			wantActual:  "1",
		},
		{
			name:         "same snapshot twice",
			plans:        []models.BudgetCategory{plan(food, "100")},
			txs:          []models.Transaction{spend(food, "-60.05"), spend(food, "-40"), spend(nil, "-9.99")},
			wantPlanned:  "100",
			wantActual:   "110.04",
			wantOverRows: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := BuildReport(tt.plans, tt.txs)
			second := BuildReport(tt.plans, tt.txs)

			for _, r := range []Report{first, second} {
				assert.True(t, r.TotalPlanned.Equal(dec(tt.wantPlanned)), "planned %s", r.TotalPlanned)
				assert.True(t, r.TotalActual.Equal(dec(tt.wantActual)), "actual %s", r.TotalActual)
				assert.Equal(t, tt.wantOverRows, r.OverBudgetCount)
			}
			assert.True(t, first.Difference.Equal(second.Difference))
			assert.True(t, SpendTotal(tt.txs).Equal(dec(tt.wantActual)))
			require.Len(t, second.Rows, len(first.Rows))
			for i := range first.Rows {
				assert.Equal(t, first.Rows[i].Name, second.Rows[i].Name)
				assert.True(t, first.Rows[i].Actual.Equal(second.Rows[i].Actual))
			}
		})
	}
}
