package provider

import (
	"github.com/aerwok/rocketrybox/internal/config"
	"github.com/aerwok/rocketrybox/internal/provider/adapters"
	"github.com/aerwok/rocketrybox/internal/provider/adapters/delhivery"
	"github.com/aerwok/rocketrybox/internal/provider/adapters/xpressbees"
	quotedomain "github.com/aerwok/rocketrybox/internal/quote/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("provider.adapters",
	fx.Provide(func(cfg config.Config, engine quotedomain.Engine, log *zap.Logger) *adapters.Registry {
		return adapters.NewRegistry(
			delhivery.New(cfg.Provider.BaseURLs["delhivery"], cfg.Provider.APITokens["delhivery"], engine, log),
			xpressbees.New(cfg.Provider.BaseURLs["xpressbees"], cfg.Provider.APITokens["xpressbees"], engine, log),
		)
	}),
)
