// Package imports turns parsed statement files into reviewable
// transactions, processing each file content once.
package imports

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
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
	"household-budget-backend/internal/services/categorization"
)

const (
	progressEvery = 100
	historyLimit  = 1000
)

type Service struct {
	repos *repository.Repositories
	audit *audit.Recorder
	now   func() time.Time
}

func NewService(repos *repository.Repositories, rec *audit.Recorder) *Service {
	return &Service{repos: repos, audit: rec, now: time.Now}
}

// Row is one parsed statement line.
type Row struct {
	ExternalID      string            `json:"external_id"`
	Merchant        string            `json:"merchant"`
	Amount          decimal.Decimal   `json:"amount"`
	TransactionDate time.Time         `json:"transaction_date"`
	CategoryID      *uuid.UUID        `json:"category_id"`
	Confidence      models.Confidence `json:"confidence"`
	IsInternal      bool              `json:"is_internal"`
}

type Result struct {
	Batch    *models.ImportBatch `json:"batch"`
	Inserted int                 `json:"inserted"`
	Skipped  int                 `json:"skipped"`
}

// FileHash is the hex SHA-256 of the file content.
func FileHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Register opens a batch for content. Content seen before returns the
// existing batch together with ErrDuplicateImport, unless that batch
// failed, in which case it is reopened for a retry.
func (s *Service) Register(ctx context.Context, fileName string, source models.ImportSource, content []byte) (*models.ImportBatch, error) {
	return s.RegisterHash(ctx, fileName, source, FileHash(content))
}

func (s *Service) RegisterHash(ctx context.Context, fileName string, source models.ImportSource, fileHash string) (*models.ImportBatch, error) {
	if !source.Valid() {
		return nil, fmt.Errorf("source %q: %w", source, apperr.ErrInvalidInput)
	}
	if strings.TrimSpace(fileHash) == "" {
		return nil, fmt.Errorf("file hash: %w", apperr.ErrInvalidInput)
	}

	existing, err := s.repos.Imports.FindByHash(ctx, fileHash)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Status != models.ImportFailed {
			return existing, fmt.Errorf("batch %s: %w", existing.ID, apperr.ErrDuplicateImport)
		}
		if err := s.repos.Imports.Reopen(ctx, existing.ID); err != nil {
			return nil, err
		}
		log := logger.FromContext(ctx)
		log.Info().Str("batch_id", existing.ID.String()).Msg("failed import batch reopened")
		return s.repos.Imports.GetBatch(ctx, existing.ID)
	}

	batch, err := s.repos.Imports.CreateBatch(ctx, fileName, fileHash, source)
	if errors.Is(err, apperr.ErrConflict) {
		// lost a race with a concurrent upload of the same file
		if existing, ferr := s.repos.Imports.FindByHash(ctx, fileHash); ferr == nil && existing != nil {
			return existing, fmt.Errorf("batch %s: %w", existing.ID, apperr.ErrDuplicateImport)
		}
	}
	if err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx)
	log.Info().
		Str("batch_id", batch.ID.String()).
		Str("file_name", fileName).
		Str("source", string(source)).
		Msg("import batch registered")
	return batch, nil
}

func (s *Service) GetBatch(ctx context.Context, id uuid.UUID) (*models.ImportBatch, error) {
	return s.repos.Imports.GetBatch(ctx, id)
}

// Ingest inserts rows as transactions of batch. Rows whose external id is
// already stored are skipped. The batch ends completed or failed.
func (s *Service) Ingest(ctx context.Context, batch *models.ImportBatch, rows []Row) (*Result, error) {
	log := logger.FromContext(ctx).With().Str("batch_id", batch.ID.String()).Logger()

	txs, skipped, err := s.prepare(ctx, batch, rows)
	if err != nil {
		s.fail(ctx, batch, err)
		return nil, err
	}

	for start := 0; start < len(txs); start += progressEvery {
		end := min(start+progressEvery, len(txs))
		if err := s.repos.Transactions.CreateMany(ctx, txs[start:end]); err != nil {
			s.fail(ctx, batch, err)
			return nil, err
		}
		if end < len(txs) {
			if err := s.repos.Imports.UpdateBatchProgress(ctx, batch.ID, skipped+end); err != nil {
				log.Warn().Err(err).Msg("could not update import progress")
			}
		}
	}

	if err := s.repos.Imports.MarkBatchCompleted(ctx, batch.ID, len(rows), s.now()); err != nil {
		return nil, err
	}
	for _, tx := range txs {
		s.audit.Record(ctx, models.AuditCreate, audit.EntityTransaction, tx.ID, tx.BudgetMonthID, nil, tx)
	}

	done, err := s.repos.Imports.GetBatch(ctx, batch.ID)
	if err != nil {
		return nil, err
	}
	log.Info().Int("inserted", len(txs)).Int("skipped", skipped).Msg("import batch completed")
	return &Result{Batch: done, Inserted: len(txs), Skipped: skipped}, nil
}

func (s *Service) prepare(ctx context.Context, batch *models.ImportBatch, rows []Row) ([]*models.Transaction, int, error) {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.ExternalID != "" {
			ids = append(ids, r.ExternalID)
		}
	}
	seen, err := s.repos.Transactions.ExistingExternalIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	history, err := s.repos.Transactions.List(ctx, repository.TransactionQuery{Limit: historyLimit})
	if err != nil {
		return nil, 0, err
	}
	suggester := categorization.NewSuggester(history)

	months := make(map[string]*uuid.UUID)
	ownCategories := make(map[uuid.UUID]bool)
	skipped := 0
	txs := make([]*models.Transaction, 0, len(rows))

	for i, r := range rows {
		if r.ExternalID != "" && seen[r.ExternalID] {
			skipped++
			continue
		}
		if strings.TrimSpace(r.Merchant) == "" || r.TransactionDate.IsZero() {
			return nil, 0, fmt.Errorf("row %d: %w", i+1, apperr.ErrInvalidInput)
		}

		monthID, err := s.monthFor(ctx, months, r.TransactionDate)
		if err != nil {
			return nil, 0, err
		}
		tx := &models.Transaction{
			Merchant:        strings.TrimSpace(r.Merchant),
			Amount:          r.Amount,
			TransactionDate: r.TransactionDate,
			IsInternal:      r.IsInternal,
			Source:          batch.SourceType,
			Confidence:      models.ConfidenceLow,
			BudgetMonthID:   monthID,
			ImportBatchID:   &batch.ID,
		}
		if r.ExternalID != "" {
			ext := r.ExternalID
			tx.ExternalID = &ext
			seen[ext] = true
		}

		if r.CategoryID != nil && !ownCategories[*r.CategoryID] {
			_, err := s.repos.Categories.GetByID(ctx, *r.CategoryID)
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, 0, fmt.Errorf("row %d category %s: %w", i+1, *r.CategoryID, apperr.ErrInvalidInput)
			}
			if err != nil {
				return nil, 0, err
			}
			ownCategories[*r.CategoryID] = true
		}

		switch {
		case r.CategoryID != nil:
			tx.CategoryID = r.CategoryID
			tx.Confidence = models.ConfidenceHigh
			if r.Confidence.Valid() {
				tx.Confidence = r.Confidence
			}
		case !r.IsInternal:
			if sg, ok := suggester.Suggest(r.Merchant, r.Amount); ok {
				id := sg.CategoryID
				tx.CategoryID = &id
				tx.Confidence = sg.Confidence
			}
		}
		tx.NeedsReview = tx.PendingReview()
		txs = append(txs, tx)
	}
	return txs, skipped, nil
}

func (s *Service) monthFor(ctx context.Context, cache map[string]*uuid.UUID, date time.Time) (*uuid.UUID, error) {
	key := date.Format("2006-01")
	if id, ok := cache[key]; ok {
		return id, nil
	}
	m, err := s.repos.Months.FindByPeriod(ctx, date.Year(), int(date.Month()))
	if err != nil {
		return nil, err
	}
	var id *uuid.UUID
	if m != nil {
		id = &m.ID
	}
	cache[key] = id
	return id, nil
}

func (s *Service) fail(ctx context.Context, batch *models.ImportBatch, cause error) {
	log := logger.FromContext(ctx)
	log.Error().Err(cause).Str("batch_id", batch.ID.String()).Msg("import batch failed")
	if err := s.repos.Imports.MarkBatchFailed(ctx, batch.ID, cause.Error(), s.now()); err != nil {
		log.Error().Err(err).Str("batch_id", batch.ID.String()).Msg("could not mark batch failed")
	}
}
