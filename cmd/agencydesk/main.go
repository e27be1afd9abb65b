package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/paperplanehq/agencydesk/internal/clock"
	"github.com/paperplanehq/agencydesk/internal/config"
	"github.com/paperplanehq/agencydesk/internal/migration"
	"github.com/paperplanehq/agencydesk/internal/observability"
	"github.com/paperplanehq/agencydesk/internal/server"
	"github.com/paperplanehq/agencydesk/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		fx.Provide(fx.Annotated{
			Name:   "projection_horizon_periods",
			Target: provideHorizonPeriods,
		}),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func provideHorizonPeriods(cfg config.Config) int {
	return cfg.ProjectionHorizonPeriods
}
