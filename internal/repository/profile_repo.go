package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"household-budget-backend/internal/apperr"
	"household-budget-backend/internal/auth"
	"household-budget-backend/internal/models"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Get returns the current user's profile.
func (r *ProfileRepository) Get(ctx context.Context) (*models.Profile, error) {
	userID, err := auth.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	var p models.Profile
	if err := r.db.WithContext(ctx).First(&p, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("get profile: %w", apperr.FromStore(err))
	}
	return &p, nil
}

// Upsert creates the profile or overwrites its editable columns.
func (r *ProfileRepository) Upsert(ctx context.Context, p *models.Profile) error {
	userID, err := auth.RequireUser(ctx)
	if err != nil {
		return err
	}
	p.ID = userID
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "partner_name", "email", "avatar_url", "updated_at"}),
	}).Create(p).Error
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
