// Package seed bootstraps the badge catalog and the global emission factor
// table on startup. Seeding is idempotent; existing rows are left alone.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type badgeRow struct {
	ID               string
	Name             string
	Description      string
	RequirementType  string
	RequirementValue float64
	Condition        *string
	BonusPoints      int64
}

type factorRow struct {
	Category     string
	ActivityType string
	Factor       float64
}

func strptr(s string) *string { return &s }

var defaultBadges = []badgeRow{
	{"first-step", "First Step", "Log your first activity.", "activity", 1, nil, 10},
	{"getting-started", "Getting Started", "Log ten activities.", "activity", 10, nil, 25},
	{"commuter", "Conscious Commuter", "Log twenty transport activities.", "activity", 20, strptr("transport"), 50},
	{"plate-aware", "Plate Aware", "Log twenty food activities.", "activity", 20, strptr("food"), 50},
	{"week-streak", "One Week Streak", "Stay active seven days in a row.", "streak", 7, nil, 100},
	{"month-streak", "One Month Streak", "Stay active thirty days in a row.", "streak", 30, nil, 500},
	{"point-collector", "Point Collector", "Reach 1,000 eco-points.", "points", 1000, nil, 100},
	{"point-hoarder", "Point Hoarder", "Reach 10,000 eco-points.", "points", 10000, nil, 1000},
	{"carbon-cutter", "Carbon Cutter", "Track 100 kg of CO2.", "reduction", 100, nil, 200},
	{"climate-champion", "Climate Champion", "Track 1,000 kg of CO2.", "reduction", 1000, nil, 2000},
}

// Global factor rows mirror the resolver's built-in defaults so operators
// can override any of them per region without a deploy.
var defaultGlobalFactors = []factorRow{
	{"transport", "car_petrol", 0.192},
	{"transport", "car_diesel", 0.171},
	{"transport", "car_electric", 0.053},
	{"transport", "bus", 0.105},
	{"transport", "train", 0.041},
	{"transport", "metro", 0.031},
	{"transport", "motorbike", 0.114},
	{"transport", "flight_short", 0.255},
	{"transport", "flight_long", 0.195},
	{"transport", "bicycle", 0.0},
	{"transport", "walking", 0.0},
	{"food", "beef", 27.0},
	{"food", "lamb", 25.6},
	{"food", "pork", 6.9},
	{"food", "chicken", 4.7},
	{"food", "fish", 5.1},
	{"food", "dairy", 2.8},
	{"food", "eggs", 3.6},
	{"food", "rice", 2.7},
	{"food", "vegetables", 0.4},
	{"food", "fruits", 0.5},
	{"food", "vegan_meal", 0.7},
	{"food", "vegetarian_meal", 1.3},
	{"energy", "electricity", 0.233},
	{"energy", "natural_gas", 0.185},
	{"energy", "heating_oil", 0.268},
	{"energy", "lpg", 0.214},
	{"energy", "solar", 0.041},
	{"other", "waste_recycled", 0.021},
	{"other", "waste_landfill", 0.587},
	{"other", "water", 0.000344},
	{"other", "clothing", 15.0},
	{"other", "electronics", 50.0},
}

// EnsureDefaults seeds badges and global factors inside one transaction.
func EnsureDefaults(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureBadgesTx(ctx, tx); err != nil {
			return err
		}
		return ensureFactorsTx(ctx, tx, node)
	})
}

func ensureBadgesTx(ctx context.Context, tx *gorm.DB) error {
	now := time.Now().UTC()
	for _, badge := range defaultBadges {
		if err := tx.WithContext(ctx).Exec(
			`INSERT INTO badges
			   (id, name, description, requirement_type, requirement_value, requirement_condition, bonus_points, is_active, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, true, ?)
			 ON CONFLICT (id) DO NOTHING`,
			badge.ID, badge.Name, badge.Description,
			badge.RequirementType, badge.RequirementValue, badge.Condition,
			badge.BonusPoints, now,
		).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureFactorsTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	now := time.Now().UTC()
	for _, factor := range defaultGlobalFactors {
		if err := tx.WithContext(ctx).Exec(
			`INSERT INTO emission_factors
			   (id, category, activity_type, region, factor, source, is_active, created_at, updated_at)
			 VALUES (?, ?, ?, 'global', ?, 'builtin', true, ?, ?)
			 ON CONFLICT DO NOTHING`,
			node.Generate(), factor.Category, factor.ActivityType, factor.Factor, now, now,
		).Error; err != nil {
			return err
		}
	}
	return nil
}
