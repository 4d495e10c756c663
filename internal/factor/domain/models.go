// Package domain contains emission factor records and the resolver contract.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// EmissionFactor maps (category, activity_type, region) to CO2 kg per unit.
// Rows are seeded and administered out of band; request-time access is
// read-only. A NULL/"global" region is the region-independent default.
type EmissionFactor struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Category     string       `gorm:"type:text;not null;uniqueIndex:ux_emission_factors_key,priority:1" json:"category"`
	ActivityType string       `gorm:"type:text;not null;uniqueIndex:ux_emission_factors_key,priority:2" json:"activity_type"`
	Region       *string      `gorm:"type:text;uniqueIndex:ux_emission_factors_key,priority:3" json:"region,omitempty"`
	Factor       float64      `gorm:"not null" json:"factor"`
	Source       string       `gorm:"type:text;not null;default:''" json:"source"`
	IsActive     bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (EmissionFactor) TableName() string { return "emission_factors" }

// Resolver converts a raw activity quantity into CO2 kilograms. It fails
// only on invalid numeric input; a missing factor degrades layer by layer
// down to the conservative fallback and never surfaces as an error.
type Resolver interface {
	Resolve(ctx context.Context, category, activityType string, value float64, region string) (float64, error)
}

var (
	ErrInvalidValue = errors.New("invalid_value")
)
