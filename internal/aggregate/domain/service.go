package domain

import (
	"context"
	"time"

	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/equivalency"
)

// SummaryRequest selects a reporting window. Zero times default to the
// trailing thirty days ending now.
type SummaryRequest struct {
	UserID      string
	From        *time.Time
	To          *time.Time
	Granularity string
}

// SummaryResponse is the windowed report over the user's ledger.
type SummaryResponse struct {
	UserID            string                    `json:"user_id"`
	From              time.Time                 `json:"from"`
	To                time.Time                 `json:"to"`
	Granularity       SeriesGranularity         `json:"granularity"`
	TotalCo2Kg        float64                   `json:"total_co2_kg"`
	CategoryBreakdown map[string]float64        `json:"category_breakdown"`
	Series            []SeriesBucket            `json:"series"`
	Equivalencies     equivalency.Equivalencies `json:"equivalencies"`
}

// Service is the read side over derived aggregates and the ledger.
type Service interface {
	// Get returns the user's current aggregates; first-time users get the
	// zero state, not an error.
	Get(ctx context.Context, userID string) (*AggregateResponse, error)
	// Summary folds the user's ledger inside the requested window.
	Summary(ctx context.Context, req SummaryRequest) (*SummaryResponse, error)
	// Leaderboard returns the top users by eco-points.
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error)
}
