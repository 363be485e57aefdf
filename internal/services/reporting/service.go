// Package reporting rolls a month's transactions up against its plan.
package reporting

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"household-budget-backend/internal/models"
	"household-budget-backend/internal/repository"
)

type Service struct {
	repos *repository.Repositories
}

func NewService(repos *repository.Repositories) *Service {
	return &Service{repos: repos}
}

type MonthReport struct {
	BudgetMonth *models.BudgetMonth `json:"budget_month"`
	Report
}

// MonthReport loads plans and spend concurrently and builds the report.
func (s *Service) MonthReport(ctx context.Context, monthID uuid.UUID) (*MonthReport, error) {
	month, err := s.repos.Months.GetByID(ctx, monthID)
	if err != nil {
		return nil, err
	}

	var (
		plans []models.BudgetCategory
		txs   []models.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		plans, err = s.repos.Plans.ListByMonth(gctx, monthID)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = s.repos.Transactions.ListSpend(gctx, monthID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &MonthReport{BudgetMonth: month, Report: BuildReport(plans, txs)}, nil
}

type Dashboard struct {
	BudgetMonth       *models.BudgetMonth  `json:"budget_month"`
	ByCategory        []CategoryGroup      `json:"by_category"`
	TotalPlanned      decimal.Decimal      `json:"total_planned"`
	TotalSpent        decimal.Decimal      `json:"total_spent"`
	Remaining         decimal.Decimal      `json:"remaining"`
	FixedExpenseTotal decimal.Decimal      `json:"fixed_expense_total"`
	FixedExpensePaid  decimal.Decimal      `json:"fixed_expense_paid"`
	PendingReview     int                  `json:"pending_review"`
	Recent            []models.Transaction `json:"recent"`
}

const recentLimit = 5

// Dashboard groups by the transaction side: only categories with spend
// appear in ByCategory.
func (s *Service) Dashboard(ctx context.Context, monthID uuid.UUID) (*Dashboard, error) {
	month, err := s.repos.Months.GetByID(ctx, monthID)
	if err != nil {
		return nil, err
	}

	var (
		plans []models.BudgetCategory
		txs   []models.Transaction
		bills []models.FixedExpense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		plans, err = s.repos.Plans.ListByMonth(gctx, monthID)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = s.repos.Transactions.List(gctx, repository.TransactionQuery{BudgetMonthID: &monthID})
		return err
	})
	g.Go(func() error {
		var err error
		bills, err = s.repos.FixedExpenses.ListByMonth(gctx, monthID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d := &Dashboard{
		BudgetMonth:       month,
		ByCategory:        GroupByCategory(txs),
		TotalPlanned:      decimal.Zero,
		TotalSpent:        SpendTotal(txs),
		FixedExpenseTotal: decimal.Zero,
		FixedExpensePaid:  decimal.Zero,
		Recent:            []models.Transaction{},
	}
	for _, p := range plans {
		d.TotalPlanned = d.TotalPlanned.Add(p.PlannedAmount)
	}
	d.Remaining = d.TotalPlanned.Sub(d.TotalSpent)
	for _, b := range bills {
		d.FixedExpenseTotal = d.FixedExpenseTotal.Add(b.Amount)
		if b.IsPaid {
			d.FixedExpensePaid = d.FixedExpensePaid.Add(b.Amount)
		}
	}
	for _, tx := range txs {
		if tx.NeedsReview {
			d.PendingReview++
		}
	}
	if len(txs) > recentLimit {
		d.Recent = txs[:recentLimit]
	} else if len(txs) > 0 {
		d.Recent = txs
	}
	if d.ByCategory == nil {
		d.ByCategory = []CategoryGroup{}
	}
	return d, nil
}
