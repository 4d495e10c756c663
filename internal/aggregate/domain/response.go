package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/streak"
)

// Response renders the stored aggregate for external readers at time now:
// CO2 rounded to two decimals, streak decayed against the calendar.
func (a UserAggregate) Response(now time.Time) AggregateResponse {
	effective := streak.Effective(streak.State{
		Current:        a.Streak,
		Longest:        a.LongestStreak,
		LastActiveDate: a.LastActiveDate,
	}, now)

	return AggregateResponse{
		UserID:              a.UserID.String(),
		EcoPoints:           a.EcoPoints,
		Level:               a.Level,
		ProgressToNextLevel: ProgressFor(a.EcoPoints),
		TotalCo2SavedKg:     RenderKg(decimal.NewFromFloat(a.TotalCo2SavedKg)),
		Streak:              effective,
		LongestStreak:       a.LongestStreak,
		LastActiveDate:      a.LastActiveDate,
	}
}
