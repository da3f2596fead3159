package zone

import (
	"github.com/aerwok/rocketrybox/internal/zone/service"
	"go.uber.org/fx"
)

var Module = fx.Module("zone.service",
	fx.Provide(service.NewService),
)
