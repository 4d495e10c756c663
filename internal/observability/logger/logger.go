// Package logger builds the service's zap logger and request middleware.
package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/config"
	obsctx "github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/observability/context"
)

var Module = fx.Module("logger",
	fx.Provide(New),
)

// New builds the root logger from config and installs it as the zap global.
func New(lc fx.Lifecycle, cfg config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if !cfg.IsProduction() {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	log, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	log = log.With(zap.String("env", cfg.Environment))
	zap.ReplaceGlobals(log)

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = log.Sync()
			return nil
		},
	})
	return log, nil
}

// FromContext returns the global logger enriched with trace and request
// identifiers carried by ctx.
func FromContext(ctx context.Context) *zap.Logger {
	log := zap.L()
	if ctx == nil {
		return log
	}

	fields := make([]zap.Field, 0, 4)
	if span := trace.SpanContextFromContext(ctx); span.IsValid() {
		fields = append(fields,
			zap.String("trace_id", span.TraceID().String()),
			zap.String("span_id", span.SpanID().String()),
		)
	}
	if requestID := obsctx.RequestIDFromContext(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if userID := obsctx.UserIDFromContext(ctx); userID != "" {
		fields = append(fields, zap.String("user_id", userID))
	}
	if len(fields) == 0 {
		return log
	}
	return log.With(fields...)
}
