package categorization

import (
	"fmt"
	"strings"

	"household-budget-backend/internal/apperr"
	"household-budget-backend/internal/models"
)

// Filter selects one of the three inbox views.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterPending  Filter = "pending"
	FilterInternal Filter = "internal"
)

// ParseFilter accepts the API spellings; empty means all.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "pending", "needs_review":
		return FilterPending, nil
	case "internal":
		return FilterInternal, nil
	}
	return "", fmt.Errorf("filter %q: %w", s, apperr.ErrInvalidInput)
}

func (f Filter) Match(tx models.Transaction) bool {
	switch f {
	case FilterPending:
		return tx.NeedsReview
	case FilterInternal:
		return tx.IsInternal
	default:
		return true
	}
}

// Apply keeps the matching transactions in their original order.
func (f Filter) Apply(txs []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.Match(tx) {
			out = append(out, tx)
		}
	}
	return out
}
