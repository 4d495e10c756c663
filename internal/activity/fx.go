package activity

import (
	"go.uber.org/fx"

	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/activity/service"
)

var Module = fx.Module("activity.service",
	fx.Provide(service.NewService),
)
