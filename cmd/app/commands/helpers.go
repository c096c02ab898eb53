// Package commands implements the CLI subcommands. Each Run function receives its
// dependencies and an output writer so it can be exercised without a real process.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/allisson/erpnext-api-tester/internal/app"
)

// Report formats accepted by --format.
const (
	FormatText = "text"
	FormatJSON = "json"
)

func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("container shutdown failed", slog.Any("error", err))
	}
}

func validateFormat(format string) error {
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format %q, expected %s or %s", format, FormatText, FormatJSON)
	}
	return nil
}
