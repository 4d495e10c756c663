package factor

import (
	"go.uber.org/fx"

	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/cache"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/factor/service"
)

var Module = fx.Module("factor.service",
	fx.Provide(cache.NewFactorCache),
	fx.Provide(service.NewService),
)
