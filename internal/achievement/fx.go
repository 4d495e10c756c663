package achievement

import (
	"go.uber.org/fx"

	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/achievement/service"
)

var Module = fx.Module("achievement.service",
	fx.Provide(service.NewService),
)
