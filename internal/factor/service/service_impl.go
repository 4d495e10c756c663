package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/cache"
	factordomain "github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/factor/domain"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/observability/metrics"
)

const (
	regionGlobal   = "global"
	factorCacheTTL = 5 * time.Minute
)

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Cache   cache.FactorCache
	Metrics *metrics.EngineMetrics `optional:"true"`
}

// Service resolves raw activity quantities to CO2 kilograms through the
// layered lookup: region factor, global factor, built-in defaults,
// conservative fallback.
type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	cache   cache.FactorCache
	metrics *metrics.EngineMetrics
}

func NewService(p ServiceParam) factordomain.Resolver {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("factor.service"),
		cache:   p.Cache,
		metrics: p.Metrics,
	}
}

func (s *Service) Resolve(ctx context.Context, category, activityType string, value float64, region string) (float64, error) {
	if !validInput(value) {
		return 0, factordomain.ErrInvalidValue
	}

	category = strings.TrimSpace(strings.ToLower(category))
	activityType = strings.TrimSpace(strings.ToLower(activityType))
	region = normalizeRegion(region)

	factor, found, err := s.lookupFactor(ctx, category, activityType, region)
	if err != nil {
		return 0, err
	}
	if !found {
		if factor, found = lookupDefault(category, activityType); !found {
			factor = fallbackFactor
			s.log.Warn("no emission factor found, using conservative fallback",
				zap.String("category", category),
				zap.String("activity_type", activityType),
				zap.String("region", region),
			)
			s.metrics.IncResolverFallback(category)
		}
	}

	return roundKg(value, factor), nil
}

// lookupFactor consults the store: exact region match first, then the
// global row. Hits are cached for the request hot path.
func (s *Service) lookupFactor(ctx context.Context, category, activityType, region string) (float64, bool, error) {
	key := cache.FactorKey{Category: category, ActivityType: activityType, Region: region}
	if factor, ok := s.cache.Get(key); ok {
		return factor, true, nil
	}

	if region != regionGlobal {
		factor, found, err := s.queryFactor(ctx, category, activityType, &region)
		if err != nil {
			return 0, false, err
		}
		if found {
			s.cache.Set(key, factor, factorCacheTTL)
			return factor, true, nil
		}
	}

	factor, found, err := s.queryFactor(ctx, category, activityType, nil)
	if err != nil {
		return 0, false, err
	}
	if found {
		s.cache.Set(key, factor, factorCacheTTL)
	}
	return factor, found, nil
}

func (s *Service) queryFactor(ctx context.Context, category, activityType string, region *string) (float64, bool, error) {
	var row struct {
		Factor *float64
	}
	query := `SELECT factor FROM emission_factors
	 WHERE category = ? AND activity_type = ? AND is_active = true`
	args := []any{category, activityType}
	if region != nil {
		query += ` AND region = ?`
		args = append(args, *region)
	} else {
		query += ` AND (region IS NULL OR region = 'global')`
	}
	query += ` LIMIT 1`

	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&row).Error; err != nil {
		return 0, false, err
	}
	if row.Factor == nil {
		return 0, false, nil
	}
	return *row.Factor, true, nil
}

// roundKg multiplies in decimal space and rounds to 3 decimal places once,
// at storage time, so rounding error never compounds.
func roundKg(value, factor float64) float64 {
	kg, _ := decimal.NewFromFloat(value).
		Mul(decimal.NewFromFloat(factor)).
		Round(3).
		Float64()
	return kg
}

func validInput(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0) && value >= 0
}

func normalizeRegion(region string) string {
	region = strings.TrimSpace(strings.ToLower(region))
	if region == "" {
		return regionGlobal
	}
	return region
}
