package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/audit"
	"github.com/smallbiznis/crm/internal/billing"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/internal/company"
	"github.com/smallbiznis/crm/internal/config"
	"github.com/smallbiznis/crm/internal/contact"
	"github.com/smallbiznis/crm/internal/invitation"
	"github.com/smallbiznis/crm/internal/migration"
	"github.com/smallbiznis/crm/internal/observability"
	"github.com/smallbiznis/crm/internal/quote"
	"github.com/smallbiznis/crm/internal/server"
	"github.com/smallbiznis/crm/internal/timeline"
	"github.com/smallbiznis/crm/pkg/db"
	"go.uber.org/fx"
)

func main() {
	fx.New(appOptions()).Run()
}

func appOptions() fx.Option {
	return fx.Options(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		clock.Module,

		// Functional Domains
		audit.Module,
		company.Module,
		contact.Module,
		billing.Module,
		quote.Module,
		invitation.Module,
		timeline.Module,

		server.Module,
	)
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
