// Package domain contains the activity ledger records and contracts.
package domain

import (
	"math"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Category classifies an activity for emission factors and point weighting.
type Category string

const (
	CategoryTransport Category = "transport"
	CategoryFood      Category = "food"
	CategoryEnergy    Category = "energy"
	CategoryOther     Category = "other"
)

// ParseCategory validates a caller-supplied category.
func ParseCategory(raw string) (Category, error) {
	switch Category(raw) {
	case CategoryTransport, CategoryFood, CategoryEnergy, CategoryOther:
		return Category(raw), nil
	default:
		return "", ErrInvalidCategory
	}
}

// Source records how an activity entered the ledger.
type Source string

const (
	SourceManual Source = "manual"
	SourceGPS    Source = "gps"
	SourceOCR    Source = "ocr"
	SourceAPI    Source = "api"
)

// ParseSource validates a caller-supplied source, defaulting to manual.
func ParseSource(raw string) (Source, error) {
	switch Source(raw) {
	case "", SourceManual:
		return SourceManual, nil
	case SourceGPS, SourceOCR, SourceAPI:
		return Source(raw), nil
	default:
		return "", ErrInvalidSource
	}
}

// ActivityEntry is one logged carbon action with its resolved CO2 quantity.
// Immutable once resolved except through Edit/Delete, which refold the
// owner's aggregates.
type ActivityEntry struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	UserID       snowflake.ID      `gorm:"not null;index" json:"user_id"`
	Category     Category          `gorm:"type:text;not null" json:"category"`
	ActivityType string            `gorm:"type:text;not null" json:"activity_type"`
	RawValue     float64           `gorm:"not null" json:"raw_value"`
	Co2Kg        float64           `gorm:"not null" json:"co2_kg"`
	Source       Source            `gorm:"type:text;not null;default:manual" json:"source"`
	Timestamp    time.Time         `gorm:"not null;index" json:"timestamp"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (ActivityEntry) TableName() string { return "activity_entries" }

// SubmitRequest is the engine-level submit contract. PrecomputedCo2Kg, when
// set (e.g. from the external GPS/ML estimator), skips factor resolution.
type SubmitRequest struct {
	UserID           string
	Category         string
	ActivityType     string
	Value            float64
	Source           string
	Region           string
	Timestamp        *time.Time
	PrecomputedCo2Kg *float64
	Metadata         map[string]any
}

// Patch carries the mutable fields of an entry. Nil means "leave as is".
type Patch struct {
	Category     *string
	ActivityType *string
	Value        *float64
	Timestamp    *time.Time
	Region       string
}

// Materially reports whether the patch requires re-resolving CO2.
func (p Patch) Materially() bool {
	return p.Category != nil || p.ActivityType != nil || p.Value != nil
}

// ListRequest selects a user's entries within an optional time range.
type ListRequest struct {
	UserID string
	From   *time.Time
	To     *time.Time
	Limit  int
}

// ValidValue reports whether a raw numeric input is usable: finite and >= 0.
func ValidValue(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
