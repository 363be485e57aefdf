package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"household-budget-backend/internal/apperr"
	"household-budget-backend/internal/models"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// TransactionQuery narrows a listing. Nil fields do not filter.
type TransactionQuery struct {
	BudgetMonthID *uuid.UUID
	ImportBatchID *uuid.UUID
	NeedsReview   *bool
	IsInternal    *bool
	Limit         int
}

// List returns transactions newest first by transaction_date.
func (r *TransactionRepository) List(ctx context.Context, f TransactionQuery) ([]models.Transaction, error) {
	q, userID, err := owned(ctx, r.db)
	if err != nil {
		return nil, err
	}
	q = q.Preload("Category", "user_id = ?", userID)
	if f.BudgetMonthID != nil {
		q = q.Where("budget_month_id = ?", *f.BudgetMonthID)
	}
	if f.ImportBatchID != nil {
		q = q.Where("import_batch_id = ?", *f.ImportBatchID)
	}
	if f.NeedsReview != nil {
		q = q.Where("needs_review = ?", *f.NeedsReview)
	}
	if f.IsInternal != nil {
		q = q.Where("is_internal = ?", *f.IsInternal)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var txs []models.Transaction
	if err := q.Order("transaction_date DESC").Order("created_at DESC").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// ListSpend returns the month's non-internal transactions, the input of
// every planned-vs-actual rollup.
func (r *TransactionRepository) ListSpend(ctx context.Context, monthID uuid.UUID) ([]models.Transaction, error) {
	internal := false
	return r.List(ctx, TransactionQuery{BudgetMonthID: &monthID, IsInternal: &internal})
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	q, userID, err := owned(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var tx models.Transaction
	if err := q.Preload("Category", "user_id = ?", userID).First(&tx, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", id, apperr.FromStore(err))
	}
	return &tx, nil
}

func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	return r.CreateMany(ctx, []*models.Transaction{tx})
}

// CreateMany inserts rows in batches of 100 inside one transaction.
func (r *TransactionRepository) CreateMany(ctx context.Context, txs []*models.Transaction) error {
	_, userID, err := owned(ctx, r.db)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		return nil
	}
	for _, tx := range txs {
		tx.UserID = userID
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).CreateInBatches(txs, 100).Error; err != nil {
		return fmt.Errorf("create transactions: %w", apperr.FromStore(err))
	}
	return nil
}

// Categorize assigns a category in a single UPDATE; a failure leaves the
// row exactly as it was.
func (r *TransactionRepository) Categorize(ctx context.Context, id, categoryID uuid.UUID, confidence models.Confidence, at time.Time) (*models.Transaction, error) {
	return r.resolve(ctx, id, map[string]interface{}{
		"category_id":  categoryID,
		"confidence":   confidence,
		"needs_review": false,
		"reviewed_at":  at,
	})
}

// MarkInternal flags a transfer between the household's own accounts.
func (r *TransactionRepository) MarkInternal(ctx context.Context, id uuid.UUID, at time.Time) (*models.Transaction, error) {
	return r.resolve(ctx, id, map[string]interface{}{
		"is_internal":  true,
		"needs_review": false,
		"reviewed_at":  at,
	})
}

func (r *TransactionRepository) resolve(ctx context.Context, id uuid.UUID, changes map[string]interface{}) (*models.Transaction, error) {
	q, _, err := owned(ctx, r.db)
	if err != nil {
		return nil, err
	}
	res := q.Model(&models.Transaction{}).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return nil, fmt.Errorf("update transaction %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("update transaction %s: %w", id, apperr.ErrNotFound)
	}
	return r.GetByID(ctx, id)
}

func (r *TransactionRepository) Delete(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	tx, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("user_id = ?", tx.UserID).Delete(&models.Transaction{}, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("delete transaction %s: %w", id, err)
	}
	return tx, nil
}

// ExistingExternalIDs reports which of ids are already stored for the user.
func (r *TransactionRepository) ExistingExternalIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	q, _, err := owned(ctx, r.db)
	if err != nil {
		return nil, err
	}
	found := make(map[string]bool)
	if len(ids) == 0 {
		return found, nil
	}
	var existing []string
	if err := q.Model(&models.Transaction{}).Where("external_id IN ?", ids).Pluck("external_id", &existing).Error; err != nil {
		return nil, fmt.Errorf("lookup external ids: %w", err)
	}
	for _, id := range existing {
		found[id] = true
	}
	return found, nil
}
