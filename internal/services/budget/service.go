// Package budget drives the monthly clone, edit and close ritual.
package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"household-budget-backend/internal/apperr"
	"household-budget-backend/internal/auth"
	"household-budget-backend/internal/logger"
	"household-budget-backend/internal/models"
	"household-budget-backend/internal/repository"
	"household-budget-backend/internal/services/audit"
)

type Service struct {
	repos *repository.Repositories
	procs repository.Procedures
	audit *audit.Recorder
	now   func() time.Time
}

func NewService(repos *repository.Repositories, procs repository.Procedures, rec *audit.Recorder) *Service {
	return &Service{repos: repos, procs: procs, audit: rec, now: time.Now}
}

// MonthView is everything the lifecycle screen needs for one month.
type MonthView struct {
	Year             int                     `json:"year"`
	Month            int                     `json:"month"`
	Step             Step                    `json:"step"`
	HasPreviousMonth bool                    `json:"has_previous_month"`
	BudgetMonth      *models.BudgetMonth     `json:"budget_month"`
	Categories       []models.BudgetCategory `json:"categories"`
	FixedExpenses    []models.FixedExpense   `json:"fixed_expenses"`
	CreditCards      []models.CreditCard     `json:"credit_cards"`
	AllCategories    []models.Category       `json:"all_categories"`
}

// CurrentMonth loads the month containing now.
func (s *Service) CurrentMonth(ctx context.Context, now time.Time) (*MonthView, error) {
	return s.MonthView(ctx, now.Year(), int(now.Month()))
}

func (s *Service) MonthView(ctx context.Context, year, month int) (*MonthView, error) {
	if !models.ValidPeriod(year, month) {
		return nil, fmt.Errorf("period %d-%d: %w", year, month, apperr.ErrInvalidInput)
	}
	months, err := s.repos.Months.List(ctx)
	if err != nil {
		return nil, err
	}
	view := &MonthView{
		Year:             year,
		Month:            month,
		HasPreviousMonth: HasPreviousMonth(months, year, month),
		Categories:       []models.BudgetCategory{},
		FixedExpenses:    []models.FixedExpense{},
	}
	for i := range months {
		if months[i].Year == year && months[i].Month == month {
			view.BudgetMonth = &months[i]
			break
		}
	}

	if view.BudgetMonth != nil {
		if view.Categories, err = s.repos.Plans.ListByMonth(ctx, view.BudgetMonth.ID); err != nil {
			return nil, err
		}
		if view.FixedExpenses, err = s.repos.FixedExpenses.ListByMonth(ctx, view.BudgetMonth.ID); err != nil {
			return nil, err
		}
	}
	if view.CreditCards, err = s.repos.CreditCards.List(ctx, true); err != nil {
		return nil, err
	}
	if view.AllCategories, err = s.repos.Categories.List(ctx, true); err != nil {
		return nil, err
	}
	view.Step = DeriveStep(view.BudgetMonth, len(view.Categories))
	return view, nil
}

func (s *Service) ListMonths(ctx context.Context) ([]models.BudgetMonth, error) {
	return s.repos.Months.List(ctx)
}

// StartMonth is the clone step: copy the most recent earlier month when one
// exists, otherwise create an empty draft.
func (s *Service) StartMonth(ctx context.Context, year, month int) (*models.BudgetMonth, error) {
	log := logger.FromContext(ctx)
	if !models.ValidPeriod(year, month) {
		return nil, fmt.Errorf("period %d-%d: %w", year, month, apperr.ErrInvalidInput)
	}

	existing, err := s.repos.Months.FindByPeriod(ctx, year, month)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.IsClosed() {
			return nil, apperr.ErrMonthClosed
		}
		n, err := s.repos.Plans.CountByMonth(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, fmt.Errorf("month %s already planned: %w", existing.Period(), apperr.ErrConflict)
		}
	}

	months, err := s.repos.Months.List(ctx)
	if err != nil {
		return nil, err
	}
	if !HasPreviousMonth(months, year, month) {
		if existing != nil {
			return existing, nil
		}
		m, err := s.repos.Months.Create(ctx, year, month)
		if err != nil {
			log.Error().Err(err).Int("year", year).Int("month", month).Msg("create empty month failed")
			return nil, err
		}
		log.Info().Str("month_id", m.ID.String()).Str("period", m.Period()).Msg("empty budget month created")
		return m, nil
	}

	id, err := s.procs.CloneMonth(ctx, year, month)
	if err != nil {
		log.Error().Err(err).Int("year", year).Int("month", month).Msg("clone month failed")
		return nil, err
	}
	if userID, ok := auth.UserFromContext(ctx); ok {
		s.repos.Plans.InvalidateUser(userID)
	}
	m, err := s.repos.Months.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	log.Info().Str("month_id", m.ID.String()).Str("period", m.Period()).Msg("budget month cloned")
	return m, nil
}

// CreateMonth creates an empty draft without copying anything.
func (s *Service) CreateMonth(ctx context.Context, year, month int) (*models.BudgetMonth, error) {
	if !models.ValidPeriod(year, month) {
		return nil, fmt.Errorf("period %d-%d: %w", year, month, apperr.ErrInvalidInput)
	}
	existing, err := s.repos.Months.FindByPeriod(ctx, year, month)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("month %s exists: %w", existing.Period(), apperr.ErrConflict)
	}
	return s.repos.Months.Create(ctx, year, month)
}

// SetPlannedAmount creates the (month, category) plan on first write and
// updates it afterwards.
func (s *Service) SetPlannedAmount(ctx context.Context, monthID, categoryID uuid.UUID, amount decimal.Decimal) (*models.BudgetCategory, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("planned amount %s: %w", amount, apperr.ErrInvalidInput)
	}
	if _, err := s.repos.Months.GetByID(ctx, monthID); err != nil {
		return nil, err
	}
	if _, err := s.repos.Categories.GetByID(ctx, categoryID); err != nil {
		return nil, err
	}

	existing, err := s.repos.Plans.FindByMonthAndCategory(ctx, monthID, categoryID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		bc := &models.BudgetCategory{BudgetMonthID: monthID, CategoryID: categoryID, PlannedAmount: amount}
		if err := s.repos.Plans.Create(ctx, bc); err != nil {
			return nil, err
		}
		s.audit.Record(ctx, models.AuditCreate, audit.EntityBudgetCategory, bc.ID, &monthID, nil, bc)
		return bc, nil
	}

	before := *existing
	updated, err := s.repos.Plans.UpdatePlannedAmount(ctx, existing.ID, amount)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, models.AuditUpdate, audit.EntityBudgetCategory, updated.ID, &monthID, before, updated)
	return updated, nil
}

func (s *Service) DeletePlan(ctx context.Context, id uuid.UUID) error {
	bc, err := s.repos.Plans.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.audit.Record(ctx, models.AuditDelete, audit.EntityBudgetCategory, bc.ID, &bc.BudgetMonthID, bc, nil)
	return nil
}

// FixedExpenseInput is the editable part of a bill.
type FixedExpenseInput struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	DueDay *int            `json:"due_day"`
}

func (s *Service) ListFixedExpenses(ctx context.Context, monthID uuid.UUID) ([]models.FixedExpense, error) {
	if _, err := s.repos.Months.GetByID(ctx, monthID); err != nil {
		return nil, err
	}
	return s.repos.FixedExpenses.ListByMonth(ctx, monthID)
}

func (s *Service) AddFixedExpense(ctx context.Context, monthID uuid.UUID, in FixedExpenseInput) (*models.FixedExpense, error) {
	if _, err := s.repos.Months.GetByID(ctx, monthID); err != nil {
		return nil, err
	}
	fe := &models.FixedExpense{BudgetMonthID: monthID, Name: in.Name, Amount: in.Amount, DueDay: in.DueDay}
	if err := fe.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := s.repos.FixedExpenses.Create(ctx, fe); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, models.AuditCreate, audit.EntityFixedExpense, fe.ID, &monthID, nil, fe)
	return fe, nil
}

func (s *Service) UpdateFixedExpense(ctx context.Context, id uuid.UUID, in FixedExpenseInput) (*models.FixedExpense, error) {
	return s.editFixedExpense(ctx, id, func(fe *models.FixedExpense) {
		fe.Name = in.Name
		fe.Amount = in.Amount
		fe.DueDay = in.DueDay
	})
}

func (s *Service) SetFixedExpensePaid(ctx context.Context, id uuid.UUID, paid bool) (*models.FixedExpense, error) {
	return s.editFixedExpense(ctx, id, func(fe *models.FixedExpense) {
		fe.IsPaid = paid
	})
}

func (s *Service) editFixedExpense(ctx context.Context, id uuid.UUID, apply func(*models.FixedExpense)) (*models.FixedExpense, error) {
	fe, err := s.repos.FixedExpenses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *fe
	apply(fe)
	if err := fe.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := s.repos.FixedExpenses.Save(ctx, fe); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, models.AuditUpdate, audit.EntityFixedExpense, fe.ID, &fe.BudgetMonthID, before, fe)
	return fe, nil
}

func (s *Service) DeleteFixedExpense(ctx context.Context, id uuid.UUID) error {
	fe, err := s.repos.FixedExpenses.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.audit.Record(ctx, models.AuditDelete, audit.EntityFixedExpense, fe.ID, &fe.BudgetMonthID, fe, nil)
	return nil
}

func (s *Service) SetCardBudgetLimit(ctx context.Context, cardID uuid.UUID, limit decimal.Decimal) (*models.CreditCard, error) {
	if limit.IsNegative() {
		return nil, fmt.Errorf("budget limit %s: %w", limit, apperr.ErrInvalidInput)
	}
	return s.repos.CreditCards.Update(ctx, cardID, repository.CreditCardPatch{BudgetLimit: &limit})
}

// CloseSummary is the review screen shown before Close.
type CloseSummary struct {
	BudgetMonth       *models.BudgetMonth `json:"budget_month"`
	Step              Step                `json:"step"`
	CategoryCount     int                 `json:"category_count"`
	PlannedTotal      decimal.Decimal     `json:"planned_total"`
	FixedExpenseCount int                 `json:"fixed_expense_count"`
	FixedExpenseTotal decimal.Decimal     `json:"fixed_expense_total"`
	UnpaidFixedTotal  decimal.Decimal     `json:"unpaid_fixed_total"`
	CardBudgetTotal   decimal.Decimal     `json:"card_budget_total"`
	ActiveCreditCards int                 `json:"active_credit_cards"`
}

func (s *Service) CloseSummary(ctx context.Context, monthID uuid.UUID) (*CloseSummary, error) {
	m, err := s.repos.Months.GetByID(ctx, monthID)
	if err != nil {
		return nil, err
	}
	plans, err := s.repos.Plans.ListByMonth(ctx, monthID)
	if err != nil {
		return nil, err
	}
	bills, err := s.repos.FixedExpenses.ListByMonth(ctx, monthID)
	if err != nil {
		return nil, err
	}
	cards, err := s.repos.CreditCards.List(ctx, true)
	if err != nil {
		return nil, err
	}

	sum := &CloseSummary{
		BudgetMonth:       m,
		Step:              StepClose,
		CategoryCount:     len(plans),
		PlannedTotal:      decimal.Zero,
		FixedExpenseCount: len(bills),
		FixedExpenseTotal: decimal.Zero,
		UnpaidFixedTotal:  decimal.Zero,
		CardBudgetTotal:   decimal.Zero,
		ActiveCreditCards: len(cards),
	}
	if m.IsClosed() {
		sum.Step = StepClosed
	}
	for _, p := range plans {
		sum.PlannedTotal = sum.PlannedTotal.Add(p.PlannedAmount)
	}
	for _, b := range bills {
		sum.FixedExpenseTotal = sum.FixedExpenseTotal.Add(b.Amount)
		if !b.IsPaid {
			sum.UnpaidFixedTotal = sum.UnpaidFixedTotal.Add(b.Amount)
		}
	}
	for _, c := range cards {
		sum.CardBudgetTotal = sum.CardBudgetTotal.Add(c.BudgetLimit)
	}
	return sum, nil
}

// Close is the only irreversible transition. confirm must be true.
func (s *Service) Close(ctx context.Context, monthID uuid.UUID, confirm bool) (*models.BudgetMonth, error) {
	log := logger.FromContext(ctx)
	if !confirm {
		return nil, apperr.ErrConfirmationRequired
	}
	m, err := s.repos.Months.Close(ctx, monthID, s.now())
	if err != nil {
		log.Error().Err(err).Str("month_id", monthID.String()).Msg("close month failed")
		return nil, err
	}
	log.Info().Str("month_id", m.ID.String()).Str("period", m.Period()).Msg("budget month closed")
	return m, nil
}

func invalid(err error) error {
	switch {
	case errors.Is(err, models.ErrEmptyName), errors.Is(err, models.ErrNegativeAmount), errors.Is(err, models.ErrInvalidDueDay):
		return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	return err
}
