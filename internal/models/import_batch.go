package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ImportStatus string

const (
	ImportProcessing ImportStatus = "processing"
	ImportCompleted  ImportStatus = "completed"
	ImportFailed     ImportStatus = "failed"
)

// ImportBatch is one file import run. FileHash is unique per user so the
// same file content is never processed twice.
type ImportBatch struct {
	ID               uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_import_batches_hash" json:"user_id"`
	FileHash         string       `gorm:"not null;uniqueIndex:idx_import_batches_hash" json:"file_hash"`
	FileName         string       `gorm:"not null" json:"file_name"`
	SourceType       ImportSource `gorm:"type:varchar(8);not null" json:"source_type"`
	Status           ImportStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	ProcessedCount   int          `gorm:"not null" json:"processed_count"`
	TransactionCount int          `gorm:"not null" json:"transaction_count"`
	ErrorMessage     *string      `json:"error_message"`
	CompletedAt      *time.Time   `json:"completed_at"`
	CreatedAt        time.Time    `json:"created_at"`
}

func (b *ImportBatch) BeforeCreate(tx *gorm.DB) error {
	ensureID(&b.ID)
	if b.Status == "" {
		b.Status = ImportProcessing
	}
	return nil
}
