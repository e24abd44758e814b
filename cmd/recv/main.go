package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/recvlabs/recv/internal/clock"
	"github.com/recvlabs/recv/internal/config"
	"github.com/recvlabs/recv/internal/credit"
	"github.com/recvlabs/recv/internal/entitlement"
	"github.com/recvlabs/recv/internal/migration"
	"github.com/recvlabs/recv/internal/observability"
	"github.com/recvlabs/recv/internal/payment"
	providerai "github.com/recvlabs/recv/internal/providers/ai"
	providerpayment "github.com/recvlabs/recv/internal/providers/payment"
	"github.com/recvlabs/recv/internal/ratelimit"
	"github.com/recvlabs/recv/internal/resource"
	"github.com/recvlabs/recv/internal/server"
	"github.com/recvlabs/recv/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Providers
		providerai.Module,
		providerpayment.Module,
		ratelimit.Module,

		// Functional domains
		entitlement.Module,
		credit.Module,
		resource.Module,
		payment.Module,

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
