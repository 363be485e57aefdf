package categorization

import (
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"household-budget-backend/internal/models"
)

// Suggestion is a category guess for an imported row.
type Suggestion struct {
	CategoryID uuid.UUID
	Confidence models.Confidence
	Score      float64
}

// Suggester guesses a category from transactions the household already
// categorized, keyed by merchant name.
type Suggester struct {
	history []models.Transaction
}

// NewSuggester keeps only categorized, non-internal rows.
func NewSuggester(history []models.Transaction) *Suggester {
	s := &Suggester{}
	for _, tx := range history {
		if tx.CategoryID != nil && !tx.IsInternal {
			s.history = append(s.history, tx)
		}
	}
	return s
}

// Suggest returns false when no known merchant scores 60 or more.
func (s *Suggester) Suggest(merchant string, amount decimal.Decimal) (Suggestion, bool) {
	if s == nil || len(s.history) == 0 {
		return Suggestion{}, false
	}

	type candidate struct {
		categoryID uuid.UUID
		finalScore float64
	}
	var candidates []candidate
	categories := make(map[uuid.UUID]bool)

	for _, tx := range s.history {
		nameScore := nameSimilarity(merchant, tx.Merchant)
		if nameScore < 60 {
			continue
		}
		candidates = append(candidates, candidate{
			categoryID: *tx.CategoryID,
			finalScore: 0.9*nameScore + 0.1*amountScore(amount, tx.Amount),
		})
		categories[*tx.CategoryID] = true
	}
	if len(candidates) == 0 {
		return Suggestion{}, false
	}

	best := candidates[0]
	for _, c := range candidates {
		if c.finalScore > best.finalScore {
			best = c
		}
	}

	// the same merchant filed under several categories is ambiguous
	if len(categories) > 1 {
		best.finalScore *= 0.8
	}

	score := math.Min(best.finalScore, 100)
	switch {
	case score >= 90:
		return Suggestion{CategoryID: best.categoryID, Confidence: models.ConfidenceHigh, Score: score}, true
	case score >= 60:
		return Suggestion{CategoryID: best.categoryID, Confidence: models.ConfidenceMedium, Score: score}, true
	}
	return Suggestion{}, false
}

func nameSimilarity(a, b string) float64 {
	aTokens := strings.Fields(normalizeName(a))
	bTokens := strings.Fields(normalizeName(b))
	if len(bTokens) == 0 {
		return 0
	}

	total := 0.0
	for _, bt := range bTokens {
		best := 0.0
		for _, at := range aTokens {
			dist := levenshtein(bt, at)
			maxLen := math.Max(float64(len(bt)), float64(len(at)))
			sim := 1 - float64(dist)/maxLen
			if sim > best {
				best = sim
			}
		}
		total += best
	}
	return total / float64(len(bTokens)) * 100
}

func normalizeName(s string) string {
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "*", " ")
	s = strings.ReplaceAll(s, "-", " ")
	return strings.TrimSpace(s)
}

// amountScore is 100 for equal magnitudes and falls off with the ratio.
func amountScore(a, b decimal.Decimal) float64 {
	x, y := a.Abs(), b.Abs()
	if x.IsZero() || y.IsZero() {
		return 0
	}
	lo, hi := x, y
	if lo.GreaterThan(hi) {
		lo, hi = hi, lo
	}
	ratio, _ := lo.Div(hi).Float64()
	return ratio * 100
}

func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	dp := make([][]int, len(a)+1)
	for i := range dp {
		dp[i] = make([]int, len(b)+1)
	}
	for i := 0; i <= len(a); i++ {
		dp[i][0] = i
	}
	for j := 0; j <= len(b); j++ {
		dp[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			dp[i][j] = min(dp[i-1][j]+1, dp[i][j-1]+1, dp[i-1][j-1]+cost)
		}
	}
	return dp[len(a)][len(b)]
}
