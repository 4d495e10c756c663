package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	activitydomain "github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/activity/domain"
	aggregatedomain "github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/aggregate/domain"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/clock"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/coordinator"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/events"
	factordomain "github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/factor/domain"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/observability/metrics"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/streak"
)

const (
	// Callers may backdate entries freely, but a future timestamp is a
	// client bug. Tolerate ordinary clock skew only.
	futureSkew = 5 * time.Minute

	defaultListLimit = 100
	maxListLimit     = 500
)

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Coordinator *coordinator.Coordinator
	Resolver    factordomain.Resolver
	Outbox      *events.Outbox
	Clock       clock.Clock
	Metrics     *metrics.EngineMetrics `optional:"true"`
}

// Service is the activity ledger. Mutations run one at a time per user
// behind the coordinator, and each mutation commits in a single transaction
// with the aggregate state it changes.
type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	coordinator *coordinator.Coordinator
	resolver    factordomain.Resolver
	outbox      *events.Outbox
	clock       clock.Clock
	metrics     *metrics.EngineMetrics
}

func NewService(p ServiceParam) activitydomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("activity.service"),
		genID:       p.GenID,
		coordinator: p.Coordinator,
		resolver:    p.Resolver,
		outbox:      p.Outbox,
		clock:       p.Clock,
		metrics:     p.Metrics,
	}
}

func (s *Service) Submit(ctx context.Context, req activitydomain.SubmitRequest) (*activitydomain.SubmitResponse, error) {
	userID, err := parseUserID(req.UserID)
	if err != nil {
		return nil, err
	}
	category, err := activitydomain.ParseCategory(req.Category)
	if err != nil {
		return nil, err
	}
	source, err := activitydomain.ParseSource(req.Source)
	if err != nil {
		return nil, err
	}
	activityType := strings.TrimSpace(strings.ToLower(req.ActivityType))
	if activityType == "" {
		return nil, activitydomain.ErrInvalidEntry
	}
	if !activitydomain.ValidValue(req.Value) {
		return nil, activitydomain.ErrInvalidValue
	}

	now := s.clock.Now()
	ts := now
	if req.Timestamp != nil {
		ts = req.Timestamp.UTC()
		if ts.After(now.Add(futureSkew)) {
			return nil, activitydomain.ErrInvalidTimestamp
		}
	}

	co2Kg, err := s.resolveCo2(ctx, string(category), activityType, req.Value, req.Region, req.PrecomputedCo2Kg)
	if err != nil {
		return nil, err
	}

	entry := activitydomain.ActivityEntry{
		ID:           s.genID.Generate(),
		UserID:       userID,
		Category:     category,
		ActivityType: activityType,
		RawValue:     req.Value,
		Co2Kg:        co2Kg,
		Source:       source,
		Timestamp:    ts,
		Metadata:     datatypes.JSONMap(req.Metadata),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	points := aggregatedomain.PointsFor(co2Kg, string(category))

	var stored aggregatedomain.UserAggregate
	err = s.coordinator.Do(ctx, userID, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}

			agg, err := loadAggregate(ctx, tx, userID)
			if err != nil {
				return err
			}

			advanced := streakAdvance(agg, entry.Timestamp)
			agg.EcoPoints += points
			agg.Level = aggregatedomain.LevelFor(agg.EcoPoints)
			agg.TotalCo2SavedKg = addKg(agg.TotalCo2SavedKg, co2Kg)
			agg.Streak = advanced.Current
			agg.LongestStreak = advanced.Longest
			agg.LastActiveDate = advanced.LastActiveDate
			agg.UpdatedAt = now

			if err := upsertAggregate(ctx, tx, agg); err != nil {
				return err
			}

			if err := s.outbox.PublishTx(ctx, tx, events.Event{
				UserID: userID,
				Type:   events.EventActivityLogged,
				Payload: events.ActivityPayload{
					EntryID:   entry.ID.String(),
					UserID:    userID.String(),
					Category:  string(category),
					Co2Kg:     co2Kg,
					EcoPoints: points,
				}.ToMap(),
				DedupeKey: fmt.Sprintf("%s:%s", events.EventActivityLogged, entry.ID),
			}); err != nil {
				return err
			}

			stored = agg
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncActivityLogged(string(category), string(source))
	s.log.Info("activity logged",
		zap.String("entry_id", entry.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("category", string(category)),
		zap.Float64("co2_kg", co2Kg),
		zap.Int64("points", points),
	)

	return &activitydomain.SubmitResponse{
		Entry:        entry,
		Aggregate:    stored.Response(now),
		PointsEarned: points,
	}, nil
}

func (s *Service) Edit(ctx context.Context, userIDStr, entryIDStr string, patch activitydomain.Patch) (*aggregatedomain.AggregateResponse, error) {
	userID, err := parseUserID(userIDStr)
	if err != nil {
		return nil, err
	}
	entryID, err := snowflake.ParseString(entryIDStr)
	if err != nil {
		return nil, activitydomain.ErrInvalidEntry
	}
	if !patch.Materially() && patch.Timestamp == nil {
		return nil, activitydomain.ErrEmptyPatch
	}

	now := s.clock.Now()
	if patch.Category != nil {
		if _, err := activitydomain.ParseCategory(*patch.Category); err != nil {
			return nil, err
		}
	}
	if patch.Value != nil && !activitydomain.ValidValue(*patch.Value) {
		return nil, activitydomain.ErrInvalidValue
	}
	if patch.Timestamp != nil && patch.Timestamp.UTC().After(now.Add(futureSkew)) {
		return nil, activitydomain.ErrInvalidTimestamp
	}

	var stored aggregatedomain.UserAggregate
	err = s.coordinator.Do(ctx, userID, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			entry, err := loadEntry(ctx, tx, userID, entryID)
			if err != nil {
				return err
			}

			if patch.Category != nil {
				entry.Category = activitydomain.Category(*patch.Category)
			}
			if patch.ActivityType != nil {
				at := strings.TrimSpace(strings.ToLower(*patch.ActivityType))
				if at == "" {
					return activitydomain.ErrInvalidEntry
				}
				entry.ActivityType = at
			}
			if patch.Value != nil {
				entry.RawValue = *patch.Value
			}
			if patch.Timestamp != nil {
				entry.Timestamp = patch.Timestamp.UTC()
			}

			if patch.Materially() {
				co2Kg, err := s.resolveCo2(ctx, string(entry.Category), entry.ActivityType, entry.RawValue, patch.Region, nil)
				if err != nil {
					return err
				}
				entry.Co2Kg = co2Kg
			}
			entry.UpdatedAt = now

			if err := tx.Save(&entry).Error; err != nil {
				return err
			}

			stored, err = s.refoldTx(ctx, tx, userID, now)
			if err != nil {
				return err
			}

			return s.outbox.PublishTx(ctx, tx, events.Event{
				UserID: userID,
				Type:   events.EventActivityUpdated,
				Payload: events.ActivityPayload{
					EntryID:  entry.ID.String(),
					UserID:   userID.String(),
					Category: string(entry.Category),
					Co2Kg:    entry.Co2Kg,
				}.ToMap(),
				DedupeKey: fmt.Sprintf("%s:%s:%d", events.EventActivityUpdated, entry.ID, now.UnixNano()),
			})
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncRefold("edit")
	s.log.Info("activity edited, aggregates refolded",
		zap.String("entry_id", entryID.String()),
		zap.String("user_id", userID.String()),
	)

	resp := stored.Response(now)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, userIDStr, entryIDStr string) (*aggregatedomain.AggregateResponse, error) {
	userID, err := parseUserID(userIDStr)
	if err != nil {
		return nil, err
	}
	entryID, err := snowflake.ParseString(entryIDStr)
	if err != nil {
		return nil, activitydomain.ErrInvalidEntry
	}

	now := s.clock.Now()

	var stored aggregatedomain.UserAggregate
	err = s.coordinator.Do(ctx, userID, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			entry, err := loadEntry(ctx, tx, userID, entryID)
			if err != nil {
				return err
			}

			if err := tx.Exec(
				`DELETE FROM activity_entries WHERE id = ? AND user_id = ?`,
				entryID, userID,
			).Error; err != nil {
				return err
			}

			stored, err = s.refoldTx(ctx, tx, userID, now)
			if err != nil {
				return err
			}

			return s.outbox.PublishTx(ctx, tx, events.Event{
				UserID: userID,
				Type:   events.EventActivityDeleted,
				Payload: events.ActivityPayload{
					EntryID: entry.ID.String(),
					UserID:  userID.String(),
				}.ToMap(),
				DedupeKey: fmt.Sprintf("%s:%s", events.EventActivityDeleted, entry.ID),
			})
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncRefold("delete")
	s.log.Info("activity deleted, aggregates refolded",
		zap.String("entry_id", entryID.String()),
		zap.String("user_id", userID.String()),
	)

	resp := stored.Response(now)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req activitydomain.ListRequest) ([]activitydomain.ActivityEntry, error) {
	userID, err := parseUserID(req.UserID)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query := s.db.WithContext(ctx).
		Where("user_id = ?", userID)
	if req.From != nil {
		query = query.Where("timestamp >= ?", req.From.UTC())
	}
	if req.To != nil {
		query = query.Where("timestamp < ?", req.To.UTC())
	}

	var entries []activitydomain.ActivityEntry
	if err := query.Order("timestamp DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// resolveCo2 prefers a caller-supplied quantity (external estimators have
// already resolved it) and otherwise runs the layered factor lookup.
func (s *Service) resolveCo2(ctx context.Context, category, activityType string, value float64, region string, precomputed *float64) (float64, error) {
	if precomputed != nil {
		if !activitydomain.ValidValue(*precomputed) {
			return 0, activitydomain.ErrInvalidValue
		}
		rounded, _ := decimal.NewFromFloat(*precomputed).Round(3).Float64()
		return rounded, nil
	}
	co2Kg, err := s.resolver.Resolve(ctx, category, activityType, value, region)
	if err != nil {
		if errors.Is(err, factordomain.ErrInvalidValue) {
			return 0, activitydomain.ErrInvalidValue
		}
		return 0, err
	}
	return co2Kg, nil
}

// refoldTx rebuilds the user's derived aggregates from the full ledger plus
// the bonus points snapshotted on past unlocks. Streak fields are write-time
// state and survive the refold untouched.
func (s *Service) refoldTx(ctx context.Context, tx *gorm.DB, userID snowflake.ID, now time.Time) (aggregatedomain.UserAggregate, error) {
	var rows []aggregatedomain.FoldEntry
	if err := tx.WithContext(ctx).Raw(
		`SELECT co2_kg, category, timestamp FROM activity_entries WHERE user_id = ?`,
		userID,
	).Scan(&rows).Error; err != nil {
		return aggregatedomain.UserAggregate{}, err
	}
	projection := aggregatedomain.Fold(rows)

	var bonus struct {
		Total int64
	}
	if err := tx.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(bonus_points), 0) AS total FROM achievements WHERE user_id = ?`,
		userID,
	).Scan(&bonus).Error; err != nil {
		return aggregatedomain.UserAggregate{}, err
	}

	agg, err := loadAggregate(ctx, tx, userID)
	if err != nil {
		return aggregatedomain.UserAggregate{}, err
	}

	agg.EcoPoints = projection.EcoPoints + bonus.Total
	agg.Level = aggregatedomain.LevelFor(agg.EcoPoints)
	agg.TotalCo2SavedKg, _ = projection.TotalCo2Kg.Float64()
	agg.UpdatedAt = now

	if err := upsertAggregate(ctx, tx, agg); err != nil {
		return aggregatedomain.UserAggregate{}, err
	}
	return agg, nil
}

// loadAggregate reads the user's aggregate row, returning a zero-state row
// for first-time users. No row lock: the coordinator already guarantees one
// mutation per user at a time.
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

func upsertAggregate(ctx context.Context, tx *gorm.DB, agg aggregatedomain.UserAggregate) error {
	return tx.WithContext(ctx).Exec(
		`INSERT INTO user_aggregates
		   (user_id, eco_points, level, total_co2_saved_kg, streak, longest_streak, last_active_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
		   eco_points = EXCLUDED.eco_points,
		   level = EXCLUDED.level,
		   total_co2_saved_kg = EXCLUDED.total_co2_saved_kg,
		   streak = EXCLUDED.streak,
		   longest_streak = EXCLUDED.longest_streak,
		   last_active_date = EXCLUDED.last_active_date,
		   updated_at = EXCLUDED.updated_at`,
		agg.UserID, agg.EcoPoints, agg.Level, agg.TotalCo2SavedKg,
		agg.Streak, agg.LongestStreak, agg.LastActiveDate,
		agg.UpdatedAt, agg.UpdatedAt,
	).Error
}

func loadEntry(ctx context.Context, tx *gorm.DB, userID, entryID snowflake.ID) (activitydomain.ActivityEntry, error) {
	var entry activitydomain.ActivityEntry
	err := tx.WithContext(ctx).Where("id = ? AND user_id = ?", entryID, userID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return activitydomain.ActivityEntry{}, activitydomain.ErrEntryNotFound
	}
	if err != nil {
		return activitydomain.ActivityEntry{}, err
	}
	return entry, nil
}

func parseUserID(raw string) (snowflake.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, activitydomain.ErrInvalidUser
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		return 0, activitydomain.ErrInvalidUser
	}
	return id, nil
}

func addKg(total, delta float64) float64 {
	sum, _ := decimal.NewFromFloat(total).Add(decimal.NewFromFloat(delta)).Float64()
	return sum
}

func streakAdvance(agg aggregatedomain.UserAggregate, ts time.Time) streak.State {
	return streak.Advance(streak.State{
		Current:        agg.Streak,
		Longest:        agg.LongestStreak,
		LastActiveDate: agg.LastActiveDate,
	}, ts)
}
