// Package metrics exposes Prometheus instruments for the carbon engine.
package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Config carries service-level const labels.
type Config struct {
	ServiceName string
	Environment string
}

// EngineMetrics counts the engine's observable facts: logged activities,
// resolver fallbacks, refolds and badge unlocks.
type EngineMetrics struct {
	activitiesLogged  *prometheus.CounterVec
	resolverFallbacks *prometheus.CounterVec
	refolds           *prometheus.CounterVec
	badgesUnlocked    *prometheus.CounterVec
}

var (
	engineMetricsOnce sync.Once
	engineMetrics     *EngineMetrics
)

// Engine returns the process-wide engine metrics, registering them on first use.
func Engine() *EngineMetrics {
	return EngineWithConfig(Config{})
}

// EngineWithConfig returns the process-wide engine metrics with const labels.
func EngineWithConfig(cfg Config) *EngineMetrics {
	engineMetricsOnce.Do(func() {
		engineMetrics = newEngineMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return engineMetrics
}

// ResetEngineMetricsForTest clears the singleton between test registries.
func ResetEngineMetricsForTest() {
	engineMetricsOnce = sync.Once{}
	engineMetrics = nil
}

func newEngineMetrics(registerer prometheus.Registerer, cfg Config) *EngineMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "ecotrack"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	activitiesLogged := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "ecotrack_activities_logged_total",
			Help:        "Total activity entries appended to the ledger.",
			ConstLabels: constLabels,
		},
		[]string{"category", "source"},
	)

	resolverFallbacks := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "ecotrack_factor_fallback_total",
			Help:        "Resolutions that hit the conservative fallback because no factor was found.",
			ConstLabels: constLabels,
		},
		[]string{"category"},
	)

	refolds := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "ecotrack_aggregate_refold_total",
			Help:        "Full aggregate recomputations triggered by edits and deletes.",
			ConstLabels: constLabels,
		},
		[]string{"reason"}, // edit | delete
	)

	badgesUnlocked := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "ecotrack_badges_unlocked_total",
			Help:        "Achievement unlocks persisted.",
			ConstLabels: constLabels,
		},
		[]string{"badge"},
	)

	registerer.MustRegister(
		activitiesLogged,
		resolverFallbacks,
		refolds,
		badgesUnlocked,
	)

	return &EngineMetrics{
		activitiesLogged:  activitiesLogged,
		resolverFallbacks: resolverFallbacks,
		refolds:           refolds,
		badgesUnlocked:    badgesUnlocked,
	}
}

func (m *EngineMetrics) IncActivityLogged(category, source string) {
	if m == nil {
		return
	}
	m.activitiesLogged.WithLabelValues(category, source).Inc()
}

func (m *EngineMetrics) IncResolverFallback(category string) {
	if m == nil {
		return
	}
	m.resolverFallbacks.WithLabelValues(category).Inc()
}

func (m *EngineMetrics) IncRefold(reason string) {
	if m == nil {
		return
	}
	m.refolds.WithLabelValues(reason).Inc()
}

func (m *EngineMetrics) IncBadgeUnlocked(badge string) {
	if m == nil {
		return
	}
	m.badgesUnlocked.WithLabelValues(badge).Inc()
}
