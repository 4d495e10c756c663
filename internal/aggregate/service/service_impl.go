package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	aggregatedomain "github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/aggregate/domain"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/clock"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/equivalency"
)

const defaultWindow = 30 * 24 * time.Hour

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

// Service serves the read side: current aggregates, windowed summaries,
// and the points leaderboard. It never mutates state.
type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func NewService(p ServiceParam) aggregatedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("aggregate.service"),
		clock: p.Clock,
	}
}

func (s *Service) Get(ctx context.Context, userIDStr string) (*aggregatedomain.AggregateResponse, error) {
	userID, err := parseUserID(userIDStr)
	if err != nil {
		return nil, err
	}

	var agg aggregatedomain.UserAggregate
	err = s.db.WithContext(ctx).Where("user_id = ?", userID).First(&agg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		agg = aggregatedomain.UserAggregate{UserID: userID, Level: 1}
	} else if err != nil {
		return nil, err
	}

	resp := agg.Response(s.clock.Now())
	return &resp, nil
}

func (s *Service) Summary(ctx context.Context, req aggregatedomain.SummaryRequest) (*aggregatedomain.SummaryResponse, error) {
	userID, err := parseUserID(req.UserID)
	if err != nil {
		return nil, err
	}
	granularity, err := aggregatedomain.ParseGranularity(req.Granularity)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	to := now
	if req.To != nil {
		to = req.To.UTC()
	}
	from := to.Add(-defaultWindow)
	if req.From != nil {
		from = req.From.UTC()
	}
	if !from.Before(to) {
		return nil, aggregatedomain.ErrInvalidWindow
	}

	var rows []aggregatedomain.FoldEntry
	if err := s.db.WithContext(ctx).Raw(
		`SELECT co2_kg, category, timestamp FROM activity_entries
		 WHERE user_id = ? AND timestamp >= ? AND timestamp < ?`,
		userID, from, to,
	).Scan(&rows).Error; err != nil {
		return nil, err
	}

	projection := aggregatedomain.Fold(rows)
	breakdown := make(map[string]float64, len(projection.CategoryBreakdown))
	for category, sum := range projection.CategoryBreakdown {
		breakdown[category] = aggregatedomain.RenderKg(sum)
	}
	total := aggregatedomain.RenderKg(projection.TotalCo2Kg)

	return &aggregatedomain.SummaryResponse{
		UserID:            userID.String(),
		From:              from,
		To:                to,
		Granularity:       granularity,
		TotalCo2Kg:        total,
		CategoryBreakdown: breakdown,
		Series:            aggregatedomain.FoldSeries(rows, granularity),
		Equivalencies:     equivalency.Calculate(total),
	}, nil
}

func (s *Service) Leaderboard(ctx context.Context, limit int) ([]aggregatedomain.LeaderboardRow, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows []struct {
		UserID    snowflake.ID
		EcoPoints int64
		Level     int
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT user_id, eco_points, level FROM user_aggregates
		 ORDER BY eco_points DESC, user_id ASC
		 LIMIT ?`,
		limit,
	).Scan(&rows).Error; err != nil {
		return nil, err
	}

	board := make([]aggregatedomain.LeaderboardRow, 0, len(rows))
	for i, row := range rows {
		board = append(board, aggregatedomain.LeaderboardRow{
			Rank:      i + 1,
			UserID:    row.UserID.String(),
			EcoPoints: row.EcoPoints,
			Level:     row.Level,
		})
	}
	return board, nil
}

func parseUserID(raw string) (snowflake.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, aggregatedomain.ErrInvalidUser
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		return 0, aggregatedomain.ErrInvalidUser
	}
	return id, nil
}
