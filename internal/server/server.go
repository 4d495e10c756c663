// Package server exposes the engine over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	achievementdomain "github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/achievement/domain"
	activitydomain "github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/activity/domain"
	aggregatedomain "github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/aggregate/domain"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/config"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/leaderboard"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/observability/logger"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/observability/metrics"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/observability/tracing"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/prediction"
)

type ServerParam struct {
	fx.In

	Config         config.Config
	Log            *zap.Logger
	DB             *gorm.DB
	ActivitySvc    activitydomain.Service
	AggregateSvc   aggregatedomain.Service
	AchievementSvc achievementdomain.Service
	Estimator      prediction.Estimator
	Leaderboard    *leaderboard.Worker
}

type Server struct {
	cfg            config.Config
	log            *zap.Logger
	db             *gorm.DB
	activitySvc    activitydomain.Service
	aggregateSvc   aggregatedomain.Service
	achievementSvc achievementdomain.Service
	estimator      prediction.Estimator
	leaderboard    *leaderboard.Worker
	limiter        *rateLimiter
}

func NewServer(p ServerParam) *Server {
	return &Server{
		cfg:            p.Config,
		log:            p.Log.Named("server"),
		db:             p.DB,
		activitySvc:    p.ActivitySvc,
		aggregateSvc:   p.AggregateSvc,
		achievementSvc: p.AchievementSvc,
		estimator:      p.Estimator,
		leaderboard:    p.Leaderboard,
		limiter:        newRateLimiter(p.Config.RateLimit.Limit, p.Config.RateLimit.Window),
	}
}

func (s *Server) Router() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(tracing.GinMiddleware())
	router.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	router.Use(metrics.GinMiddleware(metrics.HTTP(metrics.Config{
		ServiceName: "ecotrack",
		Environment: s.cfg.Environment,
	})))

	router.GET("/healthz", s.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	{
		v1.POST("/activities", s.rateLimited(), s.SubmitActivity)
		v1.PATCH("/activities/:id", s.rateLimited(), s.EditActivity)
		v1.DELETE("/activities/:id", s.rateLimited(), s.DeleteActivity)
		v1.GET("/activities", s.ListActivities)

		v1.GET("/users/:user_id/aggregate", s.GetAggregate)
		v1.GET("/users/:user_id/summary", s.GetSummary)
		v1.POST("/users/:user_id/achievements/evaluate", s.rateLimited(), s.EvaluateAchievements)
		v1.GET("/users/:user_id/achievements", s.ListUserBadges)

		v1.GET("/badges", s.ListBadges)
		v1.GET("/leaderboard", s.Leaderboard)
		v1.POST("/estimate", s.rateLimited(), s.Estimate)
	}

	return router
}

func (s *Server) Healthz(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func run(lc fx.Lifecycle, s *Server, cfg config.Config, log *zap.Logger) {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return httpServer.Shutdown(ctx)
		},
	})
}
