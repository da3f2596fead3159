package pincode

import (
	"github.com/aerwok/rocketrybox/internal/pincode/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pincode.service",
	fx.Provide(service.NewService),
)
