package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditAction string

const (
	AuditCreate AuditAction = "create"
	AuditUpdate AuditAction = "update"
	AuditDelete AuditAction = "delete"
)

// AuditLog records a write to a month-scoped entity. EditedAfterClose is
// set when the entity's month was already closed at write time.
type AuditLog struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Action           AuditAction    `gorm:"type:varchar(8);not null" json:"action"`
	EntityType       string         `gorm:"not null;index:idx_audit_log_entity" json:"entity_type"`
	EntityID         uuid.UUID      `gorm:"type:uuid;not null;index:idx_audit_log_entity" json:"entity_id"`
	OldValues        datatypes.JSON `json:"old_values"`
	NewValues        datatypes.JSON `json:"new_values"`
	EditedAfterClose bool           `gorm:"not null;index" json:"edited_after_close"`
	CreatedAt        time.Time      `json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
