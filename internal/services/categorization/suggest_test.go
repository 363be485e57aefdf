package categorization

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"household-budget-backend/internal/models"
)

func TestSuggestKnownMerchant(t *testing.T) {
	transport := uuid.New()
	s := NewSuggester([]models.Transaction{
		{Merchant: "UBER *TRIP", Amount: decimal.NewFromInt(-20), CategoryID: &transport},
	})

	got, ok := s.Suggest("Uber Trip", decimal.NewFromInt(-40))
	require.True(t, ok)
	assert.Equal(t, transport, got.CategoryID)
	assert.Equal(t, models.ConfidenceHigh, got.Confidence)

	_, ok = s.Suggest("Pharmacy", decimal.NewFromInt(-40))
	assert.False(t, ok)
}

func TestSuggestAmbiguousMerchantIsMedium(t *testing.T) {
	food, fun := uuid.New(), uuid.New()
	s := NewSuggester([]models.Transaction{
		{Merchant: "Corner Shop", Amount: decimal.NewFromInt(-10), CategoryID: &food},
		{Merchant: "Corner Shop", Amount: decimal.NewFromInt(-10), CategoryID: &fun},
	})

	got, ok := s.Suggest("Corner Shop", decimal.NewFromInt(-10))
	require.True(t, ok)
	assert.Equal(t, models.ConfidenceMedium, got.Confidence)
}

func TestSuggesterIgnoresUncategorizedAndInternal(t *testing.T) {
	cat := uuid.New()
	s := NewSuggester([]models.Transaction{
		{Merchant: "Transfer", Amount: decimal.NewFromInt(-500), CategoryID: &cat, IsInternal: true},
		{Merchant: "Bakery", Amount: decimal.NewFromInt(-5)},
	})

	_, ok := s.Suggest("Transfer", decimal.NewFromInt(-500))
	assert.False(t, ok)
	_, ok = s.Suggest("Bakery", decimal.NewFromInt(-5))
	assert.False(t, ok)

	var nilSuggester *Suggester
	_, ok = nilSuggester.Suggest("Bakery", decimal.NewFromInt(-5))
	assert.False(t, ok)
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("UBER", "UBER"))
	assert.Equal(t, 3, levenshtein("KITTEN", "SITTING"))
	assert.Equal(t, 4, levenshtein("", "TRIP"))
}
