package rateshop

import (
	"github.com/aerwok/rocketrybox/internal/rateshop/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rateshop.service",
	fx.Provide(service.NewService),
)
