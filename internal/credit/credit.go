// Package credit maps credit scores to loan tiers and clamps score changes.
// Pure computation, no I/O: issuance and the eligibility query both go
// through here and must agree.
package credit

import (
	"sort"

	"bursary/internal/models"
)

// DefaultTiers is the built-in tier table used by communities that have not
// configured their own.
func DefaultTiers() []models.CreditTier {
	return []models.CreditTier{
		{MinScore: 0, MaxLoanPrincipal: 5_000, MaxTermDays: 3},
		{MinScore: 500, MaxLoanPrincipal: 25_000, MaxTermDays: 7},
		{MinScore: 800, MaxLoanPrincipal: 100_000, MaxTermDays: 14},
	}
}

// TierFor returns the applicable tier for score: the highest-MinScore tier
// the score qualifies for. A score below every tier gets the lowest tier,
// that is the defined tie-break, not an error. An empty table falls back to
// the default table.
func TierFor(score int, tiers []models.CreditTier) models.CreditTier {
	if len(tiers) == 0 {
		tiers = DefaultTiers()
	}
	sorted := make([]models.CreditTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinScore > sorted[j].MinScore })
	for _, t := range sorted {
		if t.MinScore <= score {
			return t
		}
	}
	return sorted[len(sorted)-1]
}

// ClampScore bounds a score to [min, max].
func ClampScore(score, min, max int) int {
	if score < min {
		return min
	}
	if score > max {
		return max
	}
	return score
}

// Interest computes floor(principal * ratePct / 100).
func Interest(principal, ratePct int64) int64 {
	return principal * ratePct / 100
}
