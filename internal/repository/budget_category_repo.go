package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"household-budget-backend/internal/apperr"
	"household-budget-backend/internal/cache"
	"household-budget-backend/internal/models"
)

// BudgetCategoryRepository stores planned amounts. Reads are cached per
// (user, month) and every write invalidates that month's group.
type BudgetCategoryRepository struct {
	db    *gorm.DB
	cache *cache.QueryCache
}

func NewBudgetCategoryRepository(db *gorm.DB, c *cache.QueryCache) *BudgetCategoryRepository {
	return &BudgetCategoryRepository{db: db, cache: c}
}

func planGroup(userID, monthID uuid.UUID) string {
	return "budget_categories:" + userID.String() + ":" + monthID.String()
}

// ListByMonth returns the month's plans with their category embedded.
func (r *BudgetCategoryRepository) ListByMonth(ctx context.Context, monthID uuid.UUID) ([]models.BudgetCategory, error) {
	q, userID, err := owned(ctx, r.db)
	if err != nil {
		return nil, err
	}
	return cache.LoadSlice(r.cache, planGroup(userID, monthID), "all", func() ([]models.BudgetCategory, error) {
		var plans []models.BudgetCategory
		if err := q.Preload("Category", "user_id = ?", userID).Where("budget_month_id = ?", monthID).Find(&plans).Error; err != nil {
			return nil, fmt.Errorf("list budget categories: %w", err)
		}
		return plans, nil
	})
}

func (r *BudgetCategoryRepository) CountByMonth(ctx context.Context, monthID uuid.UUID) (int64, error) {
	q, _, err := owned(ctx, r.db)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := q.Model(&models.BudgetCategory{}).Where("budget_month_id = ?", monthID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count budget categories: %w", err)
	}
	return n, nil
}

// FindByMonthAndCategory returns nil, nil when no plan exists yet.
func (r *BudgetCategoryRepository) FindByMonthAndCategory(ctx context.Context, monthID, categoryID uuid.UUID) (*models.BudgetCategory, error) {
	q, _, err := owned(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var bc models.BudgetCategory
	res := q.Where("budget_month_id = ? AND category_id = ?", monthID, categoryID).Limit(1).Find(&bc)
	if res.Error != nil {
		return nil, fmt.Errorf("find budget category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &bc, nil
}

func (r *BudgetCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BudgetCategory, error) {
	q, _, err := owned(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var bc models.BudgetCategory
	if err := q.First(&bc, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get budget category %s: %w", id, apperr.FromStore(err))
	}
	return &bc, nil
}

func (r *BudgetCategoryRepository) Create(ctx context.Context, bc *models.BudgetCategory) error {
	_, userID, err := owned(ctx, r.db)
	if err != nil {
		return err
	}
	bc.UserID = userID
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(bc).Error; err != nil {
		return fmt.Errorf("create budget category: %w", apperr.FromStore(err))
	}
	r.cache.Invalidate(planGroup(userID, bc.BudgetMonthID))
	return nil
}

func (r *BudgetCategoryRepository) UpdatePlannedAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*models.BudgetCategory, error) {
	bc, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	bc.PlannedAmount = amount
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(bc).Error; err != nil {
		return nil, fmt.Errorf("update budget category %s: %w", id, err)
	}
	r.cache.Invalidate(planGroup(bc.UserID, bc.BudgetMonthID))
	return bc, nil
}

// Delete hard deletes a plan and returns the removed row.
func (r *BudgetCategoryRepository) Delete(ctx context.Context, id uuid.UUID) (*models.BudgetCategory, error) {
	bc, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("user_id = ?", bc.UserID).Delete(&models.BudgetCategory{}, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("delete budget category %s: %w", id, err)
	}
	r.cache.Invalidate(planGroup(bc.UserID, bc.BudgetMonthID))
	return bc, nil
}

// InvalidateUser drops every cached month of the user. Used after writes
// made outside this repository, such as the clone procedure.
func (r *BudgetCategoryRepository) InvalidateUser(userID uuid.UUID) {
	r.cache.InvalidatePrefix("budget_categories:" + userID.String() + ":")
}
