package aggregate

import (
	"go.uber.org/fx"

	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/aggregate/service"
)

var Module = fx.Module("aggregate.service",
	fx.Provide(service.NewService),
)
