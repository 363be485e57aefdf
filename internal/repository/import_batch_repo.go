package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"household-budget-backend/internal/apperr"
	"household-budget-backend/internal/auth"
	"household-budget-backend/internal/models"
)

type ImportBatchRepository struct {
	db *gorm.DB
}

func NewImportBatchRepository(db *gorm.DB) *ImportBatchRepository {
	return &ImportBatchRepository{db: db}
}

// FindByHash returns nil, nil when the file was never imported.
func (r *ImportBatchRepository) FindByHash(ctx context.Context, fileHash string) (*models.ImportBatch, error) {
	q, _, err := owned(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var b models.ImportBatch
	res := q.Where("file_hash = ?", fileHash).Limit(1).Find(&b)
	if res.Error != nil {
		return nil, fmt.Errorf("find import batch: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &b, nil
}

// CreateBatch creates a new ImportBatch in processing state
func (r *ImportBatchRepository) CreateBatch(ctx context.Context, fileName, fileHash string, source models.ImportSource) (*models.ImportBatch, error) {
	_, userID, err := owned(ctx, r.db)
	if err != nil {
		return nil, err
	}
	b := &models.ImportBatch{
		UserID:     userID,
		FileName:   fileName,
		FileHash:   fileHash,
		SourceType: source,
		Status:     models.ImportProcessing,
	}
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		return nil, fmt.Errorf("create import batch: %w", apperr.FromStore(err))
	}
	return b, nil
}

func (r *ImportBatchRepository) GetBatch(ctx context.Context, id uuid.UUID) (*models.ImportBatch, error) {
	q, _, err := owned(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var b models.ImportBatch
	if err := q.First(&b, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get import batch %s: %w", id, apperr.FromStore(err))
	}
	return &b, nil
}

// UpdateBatchProgress updates the processed count in a batch
func (r *ImportBatchRepository) UpdateBatchProgress(ctx context.Context, id uuid.UUID, count int) error {
	return r.update(ctx, id, map[string]interface{}{"processed_count": count})
}

// MarkBatchCompleted sets batch status to completed. transaction_count
// is taken from the rows stored for the batch.
func (r *ImportBatchRepository) MarkBatchCompleted(ctx context.Context, id uuid.UUID, processed int, at time.Time) error {
	q, _, err := owned(ctx, r.db)
	if err != nil {
		return err
	}
	var stored int64
	if err := q.Model(&models.Transaction{}).Where("import_batch_id = ?", id).Count(&stored).Error; err != nil {
		return fmt.Errorf("count import batch %s rows: %w", id, err)
	}
	return r.update(ctx, id, map[string]interface{}{
		"processed_count":   processed,
		"transaction_count": int(stored),
		"status":            models.ImportCompleted,
		"completed_at":      at,
	})
}

func (r *ImportBatchRepository) MarkBatchFailed(ctx context.Context, id uuid.UUID, reason string, at time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":        models.ImportFailed,
		"error_message": reason,
		"completed_at":  at,
	})
}

// Reopen puts a failed batch back into processing so the same file can be
// retried. Rows a failed run already stored are removed with it.
func (r *ImportBatchRepository) Reopen(ctx context.Context, id uuid.UUID) error {
	userID, err := auth.RequireUser(ctx)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ImportBatch{}).
			Where("id = ? AND user_id = ? AND status = ?", id, userID, models.ImportFailed).
			Updates(map[string]interface{}{
				"status":            models.ImportProcessing,
				"processed_count":   0,
				"transaction_count": 0,
				"error_message":     nil,
				"completed_at":      nil,
			})
		if res.Error != nil {
			return fmt.Errorf("reopen import batch %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("reopen import batch %s: %w", id, apperr.ErrNotFound)
		}
		err := tx.Where("user_id = ? AND import_batch_id = ?", userID, id).
			Delete(&models.Transaction{}).Error
		if err != nil {
			return fmt.Errorf("drop rows of import batch %s: %w", id, err)
		}
		return nil
	})
}

func (r *ImportBatchRepository) update(ctx context.Context, id uuid.UUID, changes map[string]interface{}) error {
	q, _, err := owned(ctx, r.db)
	if err != nil {
		return err
	}
	res := q.Model(&models.ImportBatch{}).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return fmt.Errorf("update import batch %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update import batch %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}
