package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/achievement"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/activity"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/aggregate"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/clock"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/config"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/coordinator"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/events"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/factor"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/leaderboard"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/migration"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/observability/logger"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/observability/metrics"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/observability/tracing"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/prediction"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/seed"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/server"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/pkg/db"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		tracing.Module,
		fx.Provide(func() *snowflake.Node {
			node, err := snowflake.NewNode(1)
			if err != nil {
				panic(err)
			}
			return node
		}),
		clock.Module,
		fx.Provide(func(cfg config.Config) *metrics.EngineMetrics {
			return metrics.EngineWithConfig(metrics.Config{
				ServiceName: "ecotrack",
				Environment: cfg.Environment,
			})
		}),
		db.Module,
		fx.Invoke(func(conn *gorm.DB) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := migration.RunMigrations(sqlDB); err != nil {
				return err
			}
			return seed.EnsureDefaults(conn)
		}),
		coordinator.Module,
		events.Module,
		factor.Module,
		activity.Module,
		aggregate.Module,
		achievement.Module,
		prediction.Module,
		leaderboard.Module,
		server.Module,
	)
	app.Run()
}
