package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"household-budget-backend/internal/apperr"
	"household-budget-backend/internal/auth"
	"household-budget-backend/internal/models"
)

// Procedures are the server-side operations that must run atomically.
type Procedures interface {
	// CloneMonth creates (or fills an empty draft of) the target month from
	// the most recent earlier month and returns the target's id.
	CloneMonth(ctx context.Context, year, month int) (uuid.UUID, error)
	HasRole(ctx context.Context, role models.AppRole) (bool, error)
}

// LocalProcedures implements Procedures with gorm transactions.
type LocalProcedures struct {
	db *gorm.DB
}

func NewLocalProcedures(db *gorm.DB) *LocalProcedures {
	return &LocalProcedures{db: db}
}

func (p *LocalProcedures) CloneMonth(ctx context.Context, year, month int) (uuid.UUID, error) {
	userID, err := auth.RequireUser(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	var targetID uuid.UUID
	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var source models.BudgetMonth
		res := tx.Where("user_id = ?", userID).
			Where("year < ? OR (year = ? AND month < ?)", year, year, month).
			Order("year DESC").Order("month DESC").
			Limit(1).Find(&source)
		if res.Error != nil {
			return fmt.Errorf("find source month: %w", res.Error)
		}
		hasSource := res.RowsAffected > 0

		var target models.BudgetMonth
		res = tx.Where("user_id = ? AND year = ? AND month = ?", userID, year, month).Limit(1).Find(&target)
		if res.Error != nil {
			return fmt.Errorf("find target month: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			if target.IsClosed() {
				return apperr.ErrMonthClosed
			}
			var planned int64
			if err := tx.Model(&models.BudgetCategory{}).Where("budget_month_id = ?", target.ID).Count(&planned).Error; err != nil {
				return fmt.Errorf("count target plans: %w", err)
			}
			if planned > 0 {
				return fmt.Errorf("month %s already planned: %w", target.Period(), apperr.ErrConflict)
			}
			if hasSource && target.ClonedFrom == nil {
				if err := tx.Model(&target).Update("cloned_from", source.ID).Error; err != nil {
					return fmt.Errorf("link source month: %w", err)
				}
			}
		} else {
			target = models.BudgetMonth{UserID: userID, Year: year, Month: month, Status: models.BudgetStatusDraft}
			if hasSource {
				target.ClonedFrom = &source.ID
			}
			if err := tx.Create(&target).Error; err != nil {
				return fmt.Errorf("create month %s: %w", target.Period(), apperr.FromStore(err))
			}
		}
		targetID = target.ID

		if !hasSource {
			return nil
		}
		if err := clonePlans(tx, userID, source.ID, target.ID); err != nil {
			return err
		}
		return cloneFixedExpenses(tx, userID, source.ID, target.ID)
	})
	if err != nil {
		return uuid.Nil, err
	}
	return targetID, nil
}

func clonePlans(tx *gorm.DB, userID, sourceID, targetID uuid.UUID) error {
	var plans []models.BudgetCategory
	if err := tx.Where("user_id = ? AND budget_month_id = ?", userID, sourceID).Find(&plans).Error; err != nil {
		return fmt.Errorf("load source plans: %w", err)
	}
	if len(plans) == 0 {
		return nil
	}
	copies := make([]models.BudgetCategory, 0, len(plans))
	for _, bc := range plans {
		copies = append(copies, models.BudgetCategory{
			UserID:        userID,
			BudgetMonthID: targetID,
			CategoryID:    bc.CategoryID,
			PlannedAmount: bc.PlannedAmount,
		})
	}
	if err := tx.Create(&copies).Error; err != nil {
		return fmt.Errorf("copy plans: %w", apperr.FromStore(err))
	}
	return nil
}

// cloneFixedExpenses copies bills as unpaid, only into a month that has none.
func cloneFixedExpenses(tx *gorm.DB, userID, sourceID, targetID uuid.UUID) error {
	var existing int64
	if err := tx.Model(&models.FixedExpense{}).Where("budget_month_id = ?", targetID).Count(&existing).Error; err != nil {
		return fmt.Errorf("count target fixed expenses: %w", err)
	}
	if existing > 0 {
		return nil
	}
	var bills []models.FixedExpense
	if err := tx.Where("user_id = ? AND budget_month_id = ?", userID, sourceID).Find(&bills).Error; err != nil {
		return fmt.Errorf("load source fixed expenses: %w", err)
	}
	if len(bills) == 0 {
		return nil
	}
	copies := make([]models.FixedExpense, 0, len(bills))
	for _, fe := range bills {
		copies = append(copies, models.FixedExpense{
			UserID:        userID,
			BudgetMonthID: targetID,
			Name:          fe.Name,
			Amount:        fe.Amount,
			DueDay:        fe.DueDay,
			IsPaid:        false,
		})
	}
	if err := tx.Create(&copies).Error; err != nil {
		return fmt.Errorf("copy fixed expenses: %w", err)
	}
	return nil
}

func (p *LocalProcedures) HasRole(ctx context.Context, role models.AppRole) (bool, error) {
	userID, err := auth.RequireUser(ctx)
	if err != nil {
		return false, err
	}
	var n int64
	if err := p.db.WithContext(ctx).Model(&models.UserRole{}).
		Where("user_id = ? AND role = ?", userID, role).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check role: %w", err)
	}
	return n > 0, nil
}

// GrantRole is used by the CLI to bootstrap admins.
func (p *LocalProcedures) GrantRole(ctx context.Context, userID uuid.UUID, role models.AppRole) error {
	ur := &models.UserRole{UserID: userID, Role: role}
	if err := p.db.WithContext(ctx).Create(ur).Error; err != nil {
		return fmt.Errorf("grant role: %w", apperr.FromStore(err))
	}
	return nil
}
