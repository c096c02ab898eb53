package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/erpnext-api-tester/cmd/app/commands"
	"github.com/allisson/erpnext-api-tester/internal/app"
	"github.com/allisson/erpnext-api-tester/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Serve the connection API (and metrics, when enabled)",
			Action: func(ctx context.Context, _ *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Apply pending schema migrations for DB_DRIVER",
			Action: withContainer(false,
				func(_ context.Context, _ *cli.Command, cfg *config.Config, container *app.Container) error {
					return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
				}),
		},
	}
}
