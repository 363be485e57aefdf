package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"household-budget-backend/internal/apperr"
	"household-budget-backend/internal/models"
)

type BudgetMonthRepository struct {
	db *gorm.DB
}

func NewBudgetMonthRepository(db *gorm.DB) *BudgetMonthRepository {
	return &BudgetMonthRepository{db: db}
}

// List returns the user's months, newest period first.
func (r *BudgetMonthRepository) List(ctx context.Context) ([]models.BudgetMonth, error) {
	q, _, err := owned(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var months []models.BudgetMonth
	if err := q.Order("year DESC").Order("month DESC").Find(&months).Error; err != nil {
		return nil, fmt.Errorf("list budget months: %w", err)
	}
	return months, nil
}

// FindByPeriod returns nil, nil when the user has no month for (year, month).
func (r *BudgetMonthRepository) FindByPeriod(ctx context.Context, year, month int) (*models.BudgetMonth, error) {
	q, _, err := owned(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var m models.BudgetMonth
	res := q.Where("year = ? AND month = ?", year, month).Limit(1).Find(&m)
	if res.Error != nil {
		return nil, fmt.Errorf("find budget month %04d-%02d: %w", year, month, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &m, nil
}

// GetByID fetch a single month by ID
func (r *BudgetMonthRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BudgetMonth, error) {
	q, _, err := owned(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var m models.BudgetMonth
	if err := q.First(&m, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get budget month %s: %w", id, apperr.FromStore(err))
	}
	return &m, nil
}

// Create inserts an empty draft month.
func (r *BudgetMonthRepository) Create(ctx context.Context, year, month int) (*models.BudgetMonth, error) {
	_, userID, err := owned(ctx, r.db)
	if err != nil {
		return nil, err
	}
	m := &models.BudgetMonth{
		UserID: userID,
		Year:   year,
		Month:  month,
		Status: models.BudgetStatusDraft,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, fmt.Errorf("create budget month %s: %w", m.Period(), apperr.FromStore(err))
	}
	return m, nil
}

// Close flips a draft month to closed. Only draft rows match the update,
// so a closed month can never be written back to draft here.
func (r *BudgetMonthRepository) Close(ctx context.Context, id uuid.UUID, at time.Time) (*models.BudgetMonth, error) {
	q, _, err := owned(ctx, r.db)
	if err != nil {
		return nil, err
	}
	res := q.Model(&models.BudgetMonth{}).
		Where("id = ? AND status = ?", id, models.BudgetStatusDraft).
		Updates(map[string]interface{}{
			"status":    models.BudgetStatusClosed,
			"closed_at": at,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("close budget month %s: %w", id, res.Error)
	}

	m, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		if m.IsClosed() {
			return nil, apperr.ErrMonthClosed
		}
		return nil, fmt.Errorf("close budget month %s: %w", id, apperr.ErrConflict)
	}
	return m, nil
}
