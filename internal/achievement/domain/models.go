// Package domain contains the badge catalog, unlock facts, and the rule
// predicates that connect them to user aggregates.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// RequirementType selects which aggregate a badge predicate reads.
type RequirementType string

const (
	RequirementStreak    RequirementType = "streak"
	RequirementPoints    RequirementType = "points"
	RequirementReduction RequirementType = "reduction"
	RequirementActivity  RequirementType = "activity"
)

// Badge is a static catalog entry. Requirements are administered out of
// band; request-time access is read-only.
type Badge struct {
	ID                   string          `gorm:"primaryKey" json:"id"`
	Name                 string          `gorm:"type:text;not null" json:"name"`
	Description          string          `gorm:"type:text;not null;default:''" json:"description"`
	RequirementType      RequirementType `gorm:"type:text;not null" json:"requirement_type"`
	RequirementValue     float64         `gorm:"not null" json:"requirement_value"`
	RequirementCondition *string         `gorm:"type:text" json:"requirement_condition,omitempty"`
	BonusPoints          int64           `gorm:"not null;default:0" json:"bonus_points"`
	IsActive             bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt            time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (Badge) TableName() string { return "badges" }

// Achievement is the one-time unlock fact for a (user, badge) pair. Never
// deleted once created. BonusPoints snapshots the badge's bonus at unlock
// time so refolds stay reproducible if the catalog changes later.
type Achievement struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID      snowflake.ID `gorm:"not null;uniqueIndex:ux_achievements_user_badge,priority:1" json:"user_id"`
	BadgeID     string       `gorm:"type:text;not null;uniqueIndex:ux_achievements_user_badge,priority:2" json:"badge_id"`
	BonusPoints int64        `gorm:"not null;default:0" json:"bonus_points"`
	UnlockedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"unlocked_at"`
}

// TableName sets the database table name.
func (Achievement) TableName() string { return "achievements" }

// UnlockedBadge pairs a badge with its unlock fact for API responses.
type UnlockedBadge struct {
	Badge      Badge     `json:"badge"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// Service evaluates badge predicates and persists unlocks.
type Service interface {
	// Evaluate checks every active badge for the user, unlocking those
	// whose predicate holds, and returns the newly unlocked badges.
	Evaluate(ctx context.Context, userID string) ([]UnlockedBadge, error)
	// ListUnlocked returns the user's unlock history, newest first.
	ListUnlocked(ctx context.Context, userID string) ([]UnlockedBadge, error)
	// ListBadges returns the active badge catalog.
	ListBadges(ctx context.Context) ([]Badge, error)
}

var ErrInvalidUser = errors.New("invalid_user")
