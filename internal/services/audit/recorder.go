// Package audit appends audit_log rows for writes to month scoped data.
package audit

import (
	"context"

	"github.com/google/uuid"

	"household-budget-backend/internal/logger"
	"household-budget-backend/internal/models"
	"household-budget-backend/internal/repository"
)

const (
	EntityBudgetCategory = "budget_category"
	EntityFixedExpense   = "fixed_expense"
	EntityTransaction    = "transaction"
)

// Recorder flags every write whose month is already closed. Writes are
// never blocked; a failure to record is logged and swallowed.
type Recorder struct {
	months *repository.BudgetMonthRepository
	log    *repository.AuditLogRepository
}

func NewRecorder(repos *repository.Repositories) *Recorder {
	return &Recorder{months: repos.Months, log: repos.Audit}
}

// Record stores one entry. monthID may be nil for rows without a month.
func (r *Recorder) Record(ctx context.Context, action models.AuditAction, entityType string, entityID uuid.UUID, monthID *uuid.UUID, before, after interface{}) {
	if r == nil {
		return
	}
	log := logger.FromContext(ctx)

	afterClose := false
	if monthID != nil {
		m, err := r.months.GetByID(ctx, *monthID)
		if err != nil {
			log.Warn().Err(err).Str("month_id", monthID.String()).Msg("audit: could not resolve month")
		} else {
			afterClose = m.IsClosed()
		}
	}

	err := r.log.Record(ctx, repository.AuditEntry{
		Action:           action,
		EntityType:       entityType,
		EntityID:         entityID,
		Old:              before,
		New:              after,
		EditedAfterClose: afterClose,
	})
	if err != nil {
		log.Error().Err(err).
			Str("entity_type", entityType).
			Str("entity_id", entityID.String()).
			Msg("audit: could not record entry")
		return
	}
	if afterClose {
		log.Info().
			Str("entity_type", entityType).
			Str("entity_id", entityID.String()).
			Str("action", string(action)).
			Msg("edit after month close")
	}
}
