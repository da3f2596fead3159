package main

import (
	"github.com/aerwok/rocketrybox/internal/audit"
	"github.com/aerwok/rocketrybox/internal/clock"
	"github.com/aerwok/rocketrybox/internal/config"
	"github.com/aerwok/rocketrybox/internal/events"
	"github.com/aerwok/rocketrybox/internal/logger"
	"github.com/aerwok/rocketrybox/internal/migration"
	"github.com/aerwok/rocketrybox/internal/observability/tracing"
	"github.com/aerwok/rocketrybox/internal/order"
	"github.com/aerwok/rocketrybox/internal/pincode"
	"github.com/aerwok/rocketrybox/internal/provider"
	"github.com/aerwok/rocketrybox/internal/quote"
	"github.com/aerwok/rocketrybox/internal/ratecard"
	"github.com/aerwok/rocketrybox/internal/rateshop"
	"github.com/aerwok/rocketrybox/internal/seed"
	"github.com/aerwok/rocketrybox/internal/server"
	"github.com/aerwok/rocketrybox/internal/wallet"
	"github.com/aerwok/rocketrybox/internal/zone"
	"github.com/aerwok/rocketrybox/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(func() *snowflake.Node {
			node, err := snowflake.NewNode(1)
			if err != nil {
				panic(err)
			}
			return node
		}),
		db.Module,
		fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := migration.RunMigrations(sqlDB); err != nil {
				return err
			}
			if !cfg.IsProduction() && cfg.Bootstrap.SeedDemoData {
				return seed.EnsureDemoData(conn)
			}
			return nil
		}),
		clock.Module,
		events.Module,
		tracing.Module,
		pincode.Module,
		zone.Module,
		ratecard.Module,
		quote.Module,
		provider.Module,
		rateshop.Module,
		wallet.Module,
		audit.Module,
		order.Module,
		server.Module,
	)
	app.Run()
}
