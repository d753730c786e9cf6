package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizledger/internal/clock"
	"github.com/smallbiznis/bizledger/internal/config"
	"github.com/smallbiznis/bizledger/internal/logger"
	"github.com/smallbiznis/bizledger/internal/migration"
	"github.com/smallbiznis/bizledger/internal/server"
	"github.com/smallbiznis/bizledger/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// HTTP surface and domain modules
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
