// Package categorization works the review inbox down to zero.
package categorization

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"household-budget-backend/internal/apperr"
	"household-budget-backend/internal/logger"
	"household-budget-backend/internal/models"
	"household-budget-backend/internal/repository"
	"household-budget-backend/internal/services/audit"
)

type Service struct {
	repos *repository.Repositories
	audit *audit.Recorder
	now   func() time.Time
}

func NewService(repos *repository.Repositories, rec *audit.Recorder) *Service {
	return &Service{repos: repos, audit: rec, now: time.Now}
}

type Query struct {
	BudgetMonthID *uuid.UUID
	Filter        Filter
	Limit         int
}

// List fetches newest first, then applies the filter over the fetched set.
func (s *Service) List(ctx context.Context, q Query) ([]models.Transaction, error) {
	txs, err := s.repos.Transactions.List(ctx, repository.TransactionQuery{BudgetMonthID: q.BudgetMonthID})
	if err != nil {
		return nil, err
	}
	out := q.Filter.Apply(txs)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// Categorize resolves a transaction with a category. Empty confidence
// means high.
func (s *Service) Categorize(ctx context.Context, id, categoryID uuid.UUID, confidence models.Confidence) (*models.Transaction, error) {
	log := logger.FromContext(ctx)
	if confidence == "" {
		confidence = models.ConfidenceHigh
	}
	if !confidence.Valid() {
		return nil, fmt.Errorf("confidence %q: %w", confidence, apperr.ErrInvalidInput)
	}
	if _, err := s.repos.Categories.GetByID(ctx, categoryID); err != nil {
		return nil, err
	}
	before, err := s.repos.Transactions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tx, err := s.repos.Transactions.Categorize(ctx, id, categoryID, confidence, s.now())
	if err != nil {
		log.Error().Err(err).Str("transaction_id", id.String()).Msg("categorize failed")
		return nil, err
	}
	s.audit.Record(ctx, models.AuditUpdate, audit.EntityTransaction, tx.ID, tx.BudgetMonthID, before, tx)
	log.Info().
		Str("transaction_id", tx.ID.String()).
		Str("category_id", categoryID.String()).
		Str("confidence", string(confidence)).
		Msg("transaction categorized")
	return tx, nil
}

// MarkInternal flags a transfer between the household's own accounts; it
// is then excluded from every spend total.
func (s *Service) MarkInternal(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	log := logger.FromContext(ctx)
	before, err := s.repos.Transactions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tx, err := s.repos.Transactions.MarkInternal(ctx, id, s.now())
	if err != nil {
		log.Error().Err(err).Str("transaction_id", id.String()).Msg("mark internal failed")
		return nil, err
	}
	s.audit.Record(ctx, models.AuditUpdate, audit.EntityTransaction, tx.ID, tx.BudgetMonthID, before, tx)
	log.Info().Str("transaction_id", tx.ID.String()).Msg("transaction marked internal")
	return tx, nil
}

type ManualInput struct {
	Merchant        string          `json:"merchant"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate time.Time       `json:"transaction_date"`
	CategoryID      *uuid.UUID      `json:"category_id"`
	IsInternal      bool            `json:"is_internal"`
}

// CreateManual records a transaction typed in by hand. The budget month is
// the one containing the transaction date, when it exists.
func (s *Service) CreateManual(ctx context.Context, in ManualInput) (*models.Transaction, error) {
	if strings.TrimSpace(in.Merchant) == "" {
		return nil, fmt.Errorf("merchant: %w", apperr.ErrInvalidInput)
	}
	if in.TransactionDate.IsZero() {
		return nil, fmt.Errorf("transaction date: %w", apperr.ErrInvalidInput)
	}
	if in.CategoryID != nil {
		if _, err := s.repos.Categories.GetByID(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
	}
	month, err := s.repos.Months.FindByPeriod(ctx, in.TransactionDate.Year(), int(in.TransactionDate.Month()))
	if err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		Merchant:        strings.TrimSpace(in.Merchant),
		Amount:          in.Amount,
		TransactionDate: in.TransactionDate,
		CategoryID:      in.CategoryID,
		IsInternal:      in.IsInternal,
		Source:          models.SourceManual,
		Confidence:      models.ConfidenceLow,
	}
	if in.CategoryID != nil {
		tx.Confidence = models.ConfidenceHigh
	}
	tx.NeedsReview = tx.PendingReview()
	if !tx.NeedsReview {
		at := s.now()
		tx.ReviewedAt = &at
	}
	if month != nil {
		tx.BudgetMonthID = &month.ID
	}

	if err := s.repos.Transactions.Create(ctx, tx); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, models.AuditCreate, audit.EntityTransaction, tx.ID, tx.BudgetMonthID, nil, tx)
	return tx, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.repos.Transactions.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.audit.Record(ctx, models.AuditDelete, audit.EntityTransaction, tx.ID, tx.BudgetMonthID, tx, nil)
	return nil
}

type InboxStats struct {
	Total         int             `json:"total"`
	Pending       int             `json:"pending"`
	Internal      int             `json:"internal"`
	Categorized   int             `json:"categorized"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
}

func (s *Service) InboxStats(ctx context.Context, monthID *uuid.UUID) (InboxStats, error) {
	stats := InboxStats{PendingAmount: decimal.Zero}
	txs, err := s.repos.Transactions.List(ctx, repository.TransactionQuery{BudgetMonthID: monthID})
	if err != nil {
		return stats, err
	}
	for _, tx := range txs {
		stats.Total++
		switch {
		case tx.IsInternal:
			stats.Internal++
		case tx.NeedsReview:
			stats.Pending++
			stats.PendingAmount = stats.PendingAmount.Add(tx.Amount.Abs())
		case tx.CategoryID != nil:
			stats.Categorized++
		}
	}
	return stats, nil
}
