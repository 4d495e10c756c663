package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	achievementdomain "github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/achievement/domain"
	aggregatedomain "github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/aggregate/domain"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/clock"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/coordinator"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/events"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/observability/metrics"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/streak"
)

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Coordinator *coordinator.Coordinator
	Outbox      *events.Outbox
	Clock       clock.Clock
	Metrics     *metrics.EngineMetrics `optional:"true"`
}

// Service evaluates the badge catalog against user state. Evaluation runs
// behind the per-user coordinator because an unlock awards bonus points,
// which is an aggregate mutation like any other.
type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	coordinator *coordinator.Coordinator
	outbox      *events.Outbox
	clock       clock.Clock
	metrics     *metrics.EngineMetrics
}

func NewService(p ServiceParam) achievementdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("achievement.service"),
		genID:       p.GenID,
		coordinator: p.Coordinator,
		outbox:      p.Outbox,
		clock:       p.Clock,
		metrics:     p.Metrics,
	}
}

func (s *Service) Evaluate(ctx context.Context, userIDStr string) ([]achievementdomain.UnlockedBadge, error) {
	userID, err := parseUserID(userIDStr)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()

	var unlocked []achievementdomain.UnlockedBadge
	err = s.coordinator.Do(ctx, userID, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			agg, err := loadAggregate(ctx, tx, userID)
			if err != nil {
				return err
			}
			// Predicates see the decayed streak: a lapsed streak must not
			// unlock streak badges from its stored value.
			agg.Streak = streak.Effective(streak.State{
				Current:        agg.Streak,
				LastActiveDate: agg.LastActiveDate,
			}, now)

			ledger, err := loadLedgerView(ctx, tx, userID)
			if err != nil {
				return err
			}

			var badges []achievementdomain.Badge
			if err := tx.WithContext(ctx).
				Where("is_active = ?", true).
				Order("id ASC").
				Find(&badges).Error; err != nil {
				return err
			}

			held, err := loadUnlockedSet(ctx, tx, userID)
			if err != nil {
				return err
			}

			var bonus int64
			for _, badge := range badges {
				if held[badge.ID] {
					continue
				}
				if !achievementdomain.Met(badge, agg, ledger) {
					continue
				}

				res := tx.WithContext(ctx).Exec(
					`INSERT INTO achievements (id, user_id, badge_id, bonus_points, unlocked_at)
					 VALUES (?, ?, ?, ?, ?)
					 ON CONFLICT (user_id, badge_id) DO NOTHING`,
					s.genID.Generate(), userID, badge.ID, badge.BonusPoints, now,
				)
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					// Raced an earlier unlock; the fact already exists.
					continue
				}

				bonus += badge.BonusPoints
				unlocked = append(unlocked, achievementdomain.UnlockedBadge{
					Badge:      badge,
					UnlockedAt: now,
				})
				s.metrics.IncBadgeUnlocked(badge.ID)

				if err := s.outbox.PublishTx(ctx, tx, events.Event{
					UserID: userID,
					Type:   events.EventBadgeUnlocked,
					Payload: events.BadgePayload{
						UserID:      userID.String(),
						BadgeID:     badge.ID,
						BonusPoints: badge.BonusPoints,
					}.ToMap(),
					DedupeKey: fmt.Sprintf("%s:%s", events.EventBadgeUnlocked, badge.ID),
				}); err != nil {
					return err
				}
			}

			if bonus == 0 {
				return nil
			}
			// Upsert like the ledger path: a badge with a zero requirement
			// can unlock before the user's first entry creates the row.
			return tx.WithContext(ctx).Exec(
				`INSERT INTO user_aggregates
				   (user_id, eco_points, level, total_co2_saved_kg, streak, longest_streak, created_at, updated_at)
				 VALUES (?, ?, ?, 0, 0, 0, ?, ?)
				 ON CONFLICT (user_id) DO UPDATE SET
				   eco_points = user_aggregates.eco_points + ?,
				   level = ?,
				   updated_at = ?`,
				userID, bonus, aggregatedomain.LevelFor(agg.EcoPoints+bonus), now, now,
				bonus, aggregatedomain.LevelFor(agg.EcoPoints+bonus), now,
			).Error
		})
	})
	if err != nil {
		return nil, err
	}

	for _, u := range unlocked {
		s.log.Info("badge unlocked",
			zap.String("user_id", userID.String()),
			zap.String("badge_id", u.Badge.ID),
			zap.Int64("bonus_points", u.Badge.BonusPoints),
		)
	}
	return unlocked, nil
}

func (s *Service) ListUnlocked(ctx context.Context, userIDStr string) ([]achievementdomain.UnlockedBadge, error) {
	userID, err := parseUserID(userIDStr)
	if err != nil {
		return nil, err
	}

	var facts []achievementdomain.Achievement
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("unlocked_at DESC").
		Find(&facts).Error; err != nil {
		return nil, err
	}
	if len(facts) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(facts))
	for _, fact := range facts {
		ids = append(ids, fact.BadgeID)
	}
	var badges []achievementdomain.Badge
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&badges).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]achievementdomain.Badge, len(badges))
	for _, badge := range badges {
		byID[badge.ID] = badge
	}

	out := make([]achievementdomain.UnlockedBadge, 0, len(facts))
	for _, fact := range facts {
		badge, ok := byID[fact.BadgeID]
		if !ok {
			// Catalog row removed after unlock; the fact still stands.
			badge = achievementdomain.Badge{ID: fact.BadgeID, BonusPoints: fact.BonusPoints}
		}
		out = append(out, achievementdomain.UnlockedBadge{Badge: badge, UnlockedAt: fact.UnlockedAt})
	}
	return out, nil
}

func (s *Service) ListBadges(ctx context.Context) ([]achievementdomain.Badge, error) {
	var badges []achievementdomain.Badge
	if err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&badges).Error; err != nil {
		return nil, err
	}
	return badges, nil
}

func loadAggregate(ctx context.Context, tx *gorm.DB, userID snowflake.ID) (aggregatedomain.UserAggregate, error) {
	var agg aggregatedomain.UserAggregate
	err := tx.WithContext(ctx).Where("user_id = ?", userID).First(&agg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return aggregatedomain.UserAggregate{UserID: userID, Level: 1}, nil
	}
	if err != nil {
		return aggregatedomain.UserAggregate{}, err
	}
	return agg, nil
}

func loadLedgerView(ctx context.Context, tx *gorm.DB, userID snowflake.ID) (achievementdomain.LedgerView, error) {
	var rows []struct {
		Category string
	}
	if err := tx.WithContext(ctx).Raw(
		`SELECT category FROM activity_entries WHERE user_id = ?`,
		userID,
	).Scan(&rows).Error; err != nil {
		return achievementdomain.LedgerView{}, err
	}
	view := achievementdomain.LedgerView{Categories: make([]string, 0, len(rows))}
	for _, row := range rows {
		view.Categories = append(view.Categories, row.Category)
	}
	return view, nil
}

func loadUnlockedSet(ctx context.Context, tx *gorm.DB, userID snowflake.ID) (map[string]bool, error) {
	var rows []struct {
		BadgeID string
	}
	if err := tx.WithContext(ctx).Raw(
		`SELECT badge_id FROM achievements WHERE user_id = ?`,
		userID,
	).Scan(&rows).Error; err != nil {
		return nil, err
	}
	held := make(map[string]bool, len(rows))
	for _, row := range rows {
		held[row.BadgeID] = true
	}
	return held, nil
}

func parseUserID(raw string) (snowflake.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, achievementdomain.ErrInvalidUser
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		return 0, achievementdomain.ErrInvalidUser
	}
	return id, nil
}
