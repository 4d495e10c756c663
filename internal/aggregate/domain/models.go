// Package domain holds the derived per-user aggregate record and the pure
// fold that produces it from the activity ledger.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// UserAggregate is derived state: always reproducible by refolding the
// user's ledger, except the streak fields, which carry calendar-relative
// write-time state and are persisted explicitly.
type UserAggregate struct {
	UserID          snowflake.ID `gorm:"primaryKey" json:"user_id"`
	EcoPoints       int64        `gorm:"not null;default:0" json:"eco_points"`
	Level           int          `gorm:"not null;default:1" json:"level"`
	TotalCo2SavedKg float64      `gorm:"not null;default:0" json:"total_co2_saved_kg"`
	Streak          int          `gorm:"not null;default:0" json:"streak"`
	LongestStreak   int          `gorm:"not null;default:0" json:"longest_streak"`
	LastActiveDate  *time.Time   `json:"last_active_date,omitempty"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (UserAggregate) TableName() string { return "user_aggregates" }

// AggregateResponse is the external representation: CO2 rounded to two
// decimal places, streak decayed against the wall clock.
type AggregateResponse struct {
	UserID              string     `json:"user_id"`
	EcoPoints           int64      `json:"eco_points"`
	Level               int        `json:"level"`
	ProgressToNextLevel float64    `json:"progress_to_next_level"`
	TotalCo2SavedKg     float64    `json:"total_co2_saved_kg"`
	Streak              int        `json:"streak"`
	LongestStreak       int        `json:"longest_streak"`
	LastActiveDate      *time.Time `json:"last_active_date,omitempty"`
}

// SeriesGranularity selects the summary bucketing window.
type SeriesGranularity string

const (
	GranularityDay   SeriesGranularity = "day"
	GranularityWeek  SeriesGranularity = "week"
	GranularityMonth SeriesGranularity = "month"
)

// ParseGranularity validates a caller-supplied granularity, defaulting to day.
func ParseGranularity(raw string) (SeriesGranularity, error) {
	switch SeriesGranularity(raw) {
	case "", GranularityDay:
		return GranularityDay, nil
	case GranularityWeek:
		return GranularityWeek, nil
	case GranularityMonth:
		return GranularityMonth, nil
	default:
		return "", ErrInvalidGranularity
	}
}

// SeriesBucket is one time bucket of the summary series.
type SeriesBucket struct {
	Bucket            string             `json:"bucket"`
	Co2Kg             float64            `json:"co2_kg"`
	CategoryBreakdown map[string]float64 `json:"category_breakdown"`
}

// LeaderboardRow is one position in the points leaderboard.
type LeaderboardRow struct {
	Rank      int    `json:"rank"`
	UserID    string `json:"user_id"`
	EcoPoints int64  `json:"eco_points"`
	Level     int    `json:"level"`
}

var (
	ErrInvalidUser        = errors.New("invalid_user")
	ErrInvalidGranularity = errors.New("invalid_granularity")
	ErrInvalidWindow      = errors.New("invalid_window")
)
