package reporting

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"household-budget-backend/internal/models"
)

// Placeholder metadata for spend without a category.
const (
	UncategorizedName  = "Uncategorized"
	UncategorizedIcon  = models.DefaultCategoryIcon
	UncategorizedColor = models.DefaultCategoryColor
)

// CategoryGroup is the actual spend of one category. CategoryID is nil for
// the uncategorized bucket.
type CategoryGroup struct {
	CategoryID   *uuid.UUID           `json:"category_id"`
	Name         string               `json:"name"`
	Icon         string               `json:"icon"`
	Color        string               `json:"color"`
	Total        decimal.Decimal      `json:"total"`
	Transactions []models.Transaction `json:"transactions"`
}

// GroupByCategory buckets non-internal transactions by category, summing
// absolute amounts. Groups come back largest first.
func GroupByCategory(txs []models.Transaction) []CategoryGroup {
	index := make(map[uuid.UUID]int)
	uncategorized := -1
	var groups []CategoryGroup

	for _, tx := range txs {
		if tx.IsInternal {
			continue
		}

		var i int
		switch {
		case tx.CategoryID == nil:
			if uncategorized < 0 {
				uncategorized = len(groups)
				groups = append(groups, CategoryGroup{
					Name:  UncategorizedName,
					Icon:  UncategorizedIcon,
					Color: UncategorizedColor,
					Total: decimal.Zero,
				})
			}
			i = uncategorized
		default:
			var ok bool
			if i, ok = index[*tx.CategoryID]; !ok {
				i = len(groups)
				index[*tx.CategoryID] = i
				groups = append(groups, newGroup(*tx.CategoryID, tx.Category))
			}
		}

		groups[i].Total = groups[i].Total.Add(tx.Amount.Abs())
		groups[i].Transactions = append(groups[i].Transactions, tx)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		if !groups[a].Total.Equal(groups[b].Total) {
			return groups[a].Total.GreaterThan(groups[b].Total)
		}
		return groups[a].Name < groups[b].Name
	})
	return groups
}

func newGroup(id uuid.UUID, c *models.Category) CategoryGroup {
	g := CategoryGroup{CategoryID: &id, Icon: UncategorizedIcon, Color: UncategorizedColor, Total: decimal.Zero}
	if c != nil {
		g.Name = c.Name
		g.Icon = c.Icon
		g.Color = c.Color
	}
	return g
}

// ReportRow compares plan and spend for one category.
type ReportRow struct {
	CategoryID   *uuid.UUID           `json:"category_id"`
	Name         string               `json:"name"`
	Icon         string               `json:"icon"`
	Color        string               `json:"color"`
	Planned      decimal.Decimal      `json:"planned"`
	Actual       decimal.Decimal      `json:"actual"`
	Difference   decimal.Decimal      `json:"difference"`
	IsOver       bool                 `json:"is_over"`
	Unplanned    bool                 `json:"unplanned"`
	Transactions []models.Transaction `json:"transactions"`
}

type Report struct {
	Rows            []ReportRow     `json:"rows"`
	TotalPlanned    decimal.Decimal `json:"total_planned"`
	TotalActual     decimal.Decimal `json:"total_actual"`
	Difference      decimal.Decimal `json:"difference"`
	OverBudgetCount int             `json:"over_budget_count"`
}

// BuildReport left joins spend onto the plans. Every planned category gets
// a row even with no spend; spend outside any plan follows as unplanned
// rows so the row actuals always add up to TotalActual.
func BuildReport(plans []models.BudgetCategory, txs []models.Transaction) Report {
	groups := GroupByCategory(txs)
	byCategory := make(map[uuid.UUID]CategoryGroup, len(groups))
	for _, g := range groups {
		if g.CategoryID != nil {
			byCategory[*g.CategoryID] = g
		}
	}

	ordered := make([]models.BudgetCategory, len(plans))
	copy(ordered, plans)
	sort.SliceStable(ordered, func(a, b int) bool {
		ca, cb := ordered[a].Category, ordered[b].Category
		if ca == nil || cb == nil {
			return ca != nil
		}
		if ca.SortOrder != cb.SortOrder {
			return ca.SortOrder < cb.SortOrder
		}
		return ca.Name < cb.Name
	})

	r := Report{TotalPlanned: decimal.Zero, TotalActual: decimal.Zero}
	planned := make(map[uuid.UUID]bool, len(ordered))

	for _, p := range ordered {
		id := p.CategoryID
		planned[id] = true
		row := ReportRow{CategoryID: &id, Planned: p.PlannedAmount, Actual: decimal.Zero}
		meta := newGroup(id, p.Category)
		row.Name, row.Icon, row.Color = meta.Name, meta.Icon, meta.Color
		if g, ok := byCategory[id]; ok {
			row.Actual = g.Total
			row.Transactions = g.Transactions
		}
		r.addRow(row)
	}

	for _, g := range groups {
		if g.CategoryID != nil && planned[*g.CategoryID] {
			continue
		}
		r.addRow(ReportRow{
			CategoryID:   g.CategoryID,
			Name:         g.Name,
			Icon:         g.Icon,
			Color:        g.Color,
			Planned:      decimal.Zero,
			Actual:       g.Total,
			Unplanned:    true,
			Transactions: g.Transactions,
		})
	}

	r.Difference = r.TotalActual.Sub(r.TotalPlanned)
	return r
}

func (r *Report) addRow(row ReportRow) {
	row.Difference = row.Actual.Sub(row.Planned)
	row.IsOver = row.Actual.GreaterThan(row.Planned)
	if row.Transactions == nil {
		row.Transactions = []models.Transaction{}
	}
	if row.IsOver {
		r.OverBudgetCount++
	}
	r.TotalPlanned = r.TotalPlanned.Add(row.Planned)
	r.TotalActual = r.TotalActual.Add(row.Actual)
	r.Rows = append(r.Rows, row)
}

// SpendTotal is the sum of |amount| over non-internal transactions.
func SpendTotal(txs []models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if !tx.IsInternal {
			total = total.Add(tx.Amount.Abs())
		}
	}
	return total
}
