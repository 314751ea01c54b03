package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/mausamcrm/platform/internal/auth/token"
	"github.com/mausamcrm/platform/internal/authorization"
	"github.com/mausamcrm/platform/internal/clock"
	"github.com/mausamcrm/platform/internal/config"
	"github.com/mausamcrm/platform/internal/migration"
	"github.com/mausamcrm/platform/internal/provision"
	"github.com/mausamcrm/platform/internal/server"
	"github.com/mausamcrm/platform/internal/signup"
	"github.com/mausamcrm/platform/internal/subscription"
	"github.com/mausamcrm/platform/internal/tenant"
	"github.com/mausamcrm/platform/pkg/db"
	"github.com/mausamcrm/platform/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Functional domains
		tenant.Module,
		subscription.Module,
		provision.Module,
		token.Module,
		authorization.Module,
		signup.Module,

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
