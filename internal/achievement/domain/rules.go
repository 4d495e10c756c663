package domain

import (
	aggregatedomain "github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/aggregate/domain"
)

// LedgerView is the slice of ledger data the activity predicate needs.
type LedgerView struct {
	Categories []string
}

// Met evaluates a badge's unlock predicate against the user's current
// aggregates and ledger. Pure and side-effect free; unknown requirement
// types never unlock.
func Met(badge Badge, aggregate aggregatedomain.UserAggregate, ledger LedgerView) bool {
	switch badge.RequirementType {
	case RequirementStreak:
		return float64(aggregate.Streak) >= badge.RequirementValue
	case RequirementPoints:
		return float64(aggregate.EcoPoints) >= badge.RequirementValue
	case RequirementReduction:
		return aggregate.TotalCo2SavedKg >= badge.RequirementValue
	case RequirementActivity:
		return float64(countMatching(badge, ledger)) >= badge.RequirementValue
	default:
		return false
	}
}

func countMatching(badge Badge, ledger LedgerView) int {
	if badge.RequirementCondition == nil || *badge.RequirementCondition == "" {
		return len(ledger.Categories)
	}
	count := 0
	for _, category := range ledger.Categories {
		if category == *badge.RequirementCondition {
			count++
		}
	}
	return count
}
