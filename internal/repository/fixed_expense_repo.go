package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"household-budget-backend/internal/apperr"
	"household-budget-backend/internal/models"
)

type FixedExpenseRepository struct {
	db *gorm.DB
}

func NewFixedExpenseRepository(db *gorm.DB) *FixedExpenseRepository {
	return &FixedExpenseRepository{db: db}
}

// ListByMonth orders by due day, bills without one last.
func (r *FixedExpenseRepository) ListByMonth(ctx context.Context, monthID uuid.UUID) ([]models.FixedExpense, error) {
	q, _, err := owned(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var expenses []models.FixedExpense
	err = q.Where("budget_month_id = ?", monthID).
		Order("due_day IS NULL").
		Order("due_day ASC").
		Order("name ASC").
		Find(&expenses).Error
	if err != nil {
		return nil, fmt.Errorf("list fixed expenses: %w", err)
	}
	return expenses, nil
}

func (r *FixedExpenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.FixedExpense, error) {
	q, _, err := owned(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var fe models.FixedExpense
	if err := q.First(&fe, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get fixed expense %s: %w", id, apperr.FromStore(err))
	}
	return &fe, nil
}

func (r *FixedExpenseRepository) Create(ctx context.Context, fe *models.FixedExpense) error {
	_, userID, err := owned(ctx, r.db)
	if err != nil {
		return err
	}
	fe.UserID = userID
	if err := r.db.WithContext(ctx).Create(fe).Error; err != nil {
		return fmt.Errorf("create fixed expense: %w", apperr.FromStore(err))
	}
	return nil
}

// Save writes every column of an existing row. Last write wins.
func (r *FixedExpenseRepository) Save(ctx context.Context, fe *models.FixedExpense) error {
	_, userID, err := owned(ctx, r.db)
	if err != nil {
		return err
	}
	if fe.UserID != userID {
		return apperr.ErrNotFound
	}
	if err := r.db.WithContext(ctx).Save(fe).Error; err != nil {
		return fmt.Errorf("update fixed expense %s: %w", fe.ID, err)
	}
	return nil
}

func (r *FixedExpenseRepository) Delete(ctx context.Context, id uuid.UUID) (*models.FixedExpense, error) {
	fe, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("user_id = ?", fe.UserID).Delete(&models.FixedExpense{}, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("delete fixed expense %s: %w", id, err)
	}
	return fe, nil
}
