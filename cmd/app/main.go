// Command app runs the ERPNext API tester server and its maintenance commands.
package main

import (
	"context"
	"log/slog"
	"os"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/allisson/erpnext-api-tester/internal/app"
	"github.com/allisson/erpnext-api-tester/internal/config"
)

var version = "dev"

func main() {
	cmd := &cli.Command{
		Name:     "app",
		Usage:    "ERPNext API tester with sealed connection credentials",
		Version:  version,
		Commands: slices.Concat(getSystemCommands(version), getKeyCommands()),
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}

// containerAction is a command body that needs the loaded configuration and a container.
type containerAction func(ctx context.Context, cmd *cli.Command, cfg *config.Config, container *app.Container) error

// withContainer loads the configuration, optionally validates it, and hands a fresh
// container to action. The container is shut down when action returns.
func withContainer(validate bool, action containerAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg := config.Load()
		if validate {
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		container := app.NewContainer(cfg)
		defer func() {
			if err := container.Shutdown(ctx); err != nil {
				container.Logger().Warn("container shutdown failed", slog.Any("error", err))
			}
		}()

		return action(ctx, cmd, cfg, container)
	}
}
