package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"household-budget-backend/internal/models"
)

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// AuditEntry describes one write. Old and New are marshalled to JSON; nil
// leaves the column empty.
type AuditEntry struct {
	Action           models.AuditAction
	EntityType       string
	EntityID         uuid.UUID
	Old              interface{}
	New              interface{}
	EditedAfterClose bool
}

func (r *AuditLogRepository) Record(ctx context.Context, e AuditEntry) error {
	_, userID, err := owned(ctx, r.db)
	if err != nil {
		return err
	}
	oldJSON, err := toJSON(e.Old)
	if err != nil {
		return fmt.Errorf("encode old values: %w", err)
	}
	newJSON, err := toJSON(e.New)
	if err != nil {
		return fmt.Errorf("encode new values: %w", err)
	}

	entry := &models.AuditLog{
		UserID:           userID,
		Action:           e.Action,
		EntityType:       e.EntityType,
		EntityID:         e.EntityID,
		OldValues:        oldJSON,
		NewValues:        newJSON,
		EditedAfterClose: e.EditedAfterClose,
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

type AuditQuery struct {
	EditedAfterCloseOnly bool
	EntityType           string
	Limit                int
}

// List returns the user's audit entries, newest first.
func (r *AuditLogRepository) List(ctx context.Context, f AuditQuery) ([]models.AuditLog, error) {
	q, _, err := owned(ctx, r.db)
	if err != nil {
		return nil, err
	}
	if f.EditedAfterCloseOnly {
		q = q.Where("edited_after_close = ?", true)
	}
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var entries []models.AuditLog
	if err := q.Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list audit log: %w", err)
	}
	return entries, nil
}

func toJSON(v interface{}) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
