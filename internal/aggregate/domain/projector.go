package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// FoldEntry is the minimal ledger view the projector folds over.
type FoldEntry struct {
	Co2Kg     float64
	Category  string
	Timestamp time.Time
}

// Projection is the result of folding a ledger snapshot. CO2 sums are kept
// as decimals until the caller renders them, so thousands of float additions
// cannot drift.
type Projection struct {
	TotalCo2Kg        decimal.Decimal
	EcoPoints         int64
	CategoryBreakdown map[string]decimal.Decimal
}

const levelStep = 1000

var (
	pointsPerKg = decimal.NewFromInt(10)

	// Category weighting for eco-point conversion. Unknown categories are
	// rejected upstream; the "other" weight is the floor for anything that
	// slips through.
	categoryMultipliers = map[string]decimal.Decimal{
		"transport": decimal.RequireFromString("1.2"),
		"food":      decimal.RequireFromString("1.0"),
		"energy":    decimal.RequireFromString("1.1"),
		"other":     decimal.RequireFromString("0.8"),
	}
)

// PointsFor converts one entry's CO2 quantity into eco-points:
// floor(co2Kg * 10 * categoryMultiplier).
func PointsFor(co2Kg float64, category string) int64 {
	mult, ok := categoryMultipliers[category]
	if !ok {
		mult = categoryMultipliers["other"]
	}
	return decimal.NewFromFloat(co2Kg).Mul(pointsPerKg).Mul(mult).Floor().IntPart()
}

// LevelFor derives the level from a point total: floor(points/1000) + 1.
func LevelFor(ecoPoints int64) int {
	if ecoPoints < 0 {
		ecoPoints = 0
	}
	return int(ecoPoints/levelStep) + 1
}

// ProgressFor reports the fraction of the way to the next level.
func ProgressFor(ecoPoints int64) float64 {
	if ecoPoints < 0 {
		ecoPoints = 0
	}
	return float64(ecoPoints%levelStep) / float64(levelStep)
}

// Fold recomputes the derived aggregates from a full ledger snapshot.
// The result is independent of input order and idempotent: folding the same
// snapshot twice yields identical values. Streak state is deliberately not
// part of the fold.
func Fold(entries []FoldEntry) Projection {
	sorted := make([]FoldEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	p := Projection{
		TotalCo2Kg:        decimal.Zero,
		CategoryBreakdown: make(map[string]decimal.Decimal),
	}
	for _, entry := range sorted {
		kg := decimal.NewFromFloat(entry.Co2Kg)
		p.TotalCo2Kg = p.TotalCo2Kg.Add(kg)
		p.CategoryBreakdown[entry.Category] = p.CategoryBreakdown[entry.Category].Add(kg)
		p.EcoPoints += PointsFor(entry.Co2Kg, entry.Category)
	}
	return p
}

// FoldSeries groups entries into day/week/month buckets inside the caller's
// window. Buckets are emitted in ascending order; each carries its own
// category breakdown.
func FoldSeries(entries []FoldEntry, granularity SeriesGranularity) []SeriesBucket {
	sums := make(map[string]decimal.Decimal)
	breakdowns := make(map[string]map[string]decimal.Decimal)
	for _, entry := range entries {
		key := bucketKey(entry.Timestamp, granularity)
		kg := decimal.NewFromFloat(entry.Co2Kg)
		sums[key] = sums[key].Add(kg)
		if breakdowns[key] == nil {
			breakdowns[key] = make(map[string]decimal.Decimal)
		}
		breakdowns[key][entry.Category] = breakdowns[key][entry.Category].Add(kg)
	}

	keys := make([]string, 0, len(sums))
	for key := range sums {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	buckets := make([]SeriesBucket, 0, len(keys))
	for _, key := range keys {
		bucket := SeriesBucket{
			Bucket:            key,
			Co2Kg:             RenderKg(sums[key]),
			CategoryBreakdown: make(map[string]float64, len(breakdowns[key])),
		}
		for category, sum := range breakdowns[key] {
			bucket.CategoryBreakdown[category] = RenderKg(sum)
		}
		buckets = append(buckets, bucket)
	}
	return buckets
}

// RenderKg rounds a CO2 decimal to the external two-decimal representation.
func RenderKg(kg decimal.Decimal) float64 {
	rendered, _ := kg.Round(2).Float64()
	return rendered
}

func bucketKey(ts time.Time, granularity SeriesGranularity) string {
	switch granularity {
	case GranularityWeek:
		year, week := ts.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case GranularityMonth:
		return ts.Format("2006-01")
	default:
		return ts.Format("2006-01-02")
	}
}
