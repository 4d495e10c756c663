package leaderboard

import (
	"context"

	"go.uber.org/fx"

	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/config"
)

var Module = fx.Module("leaderboard.worker",
	fx.Provide(configFromApp),
	fx.Provide(NewWorker),
	fx.Invoke(runWorker),
)

func configFromApp(cfg config.Config) Config {
	return Config{
		Size:            cfg.Leaderboard.Size,
		RefreshInterval: cfg.Leaderboard.RefreshInterval,
	}.withDefaults()
}

func runWorker(lc fx.Lifecycle, worker *Worker) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go worker.RunForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
