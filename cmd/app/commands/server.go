package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/erpnext-api-tester/internal/app"
	"github.com/allisson/erpnext-api-tester/internal/config"
)

const shutdownTimeout = 30 * time.Second

// RunServer serves the API, plus /metrics on its own port when enabled, until SIGINT,
// SIGTERM or a listener failure. Configuration and the master key are checked before
// any port is bound: a missing or malformed key returns an error and nothing listens.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)
	logger := container.Logger()
	logger.Info("starting server", slog.String("version", version))
	defer closeContainer(container, logger)

	if _, err := container.MasterKeyHolder(); err != nil {
		return err
	}

	apiServer, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}
	servers := []server{apiServer}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}
	if metricsServer != nil {
		servers = append(servers, metricsServer)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error { return srv.Start(gctx) })
	}

	// Runs on a signal or when any server fails to listen.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("stopping servers", slog.Duration("grace_period", shutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		errs := make([]error, 0, len(servers))
		for _, srv := range servers {
			errs = append(errs, srv.Shutdown(shutdownCtx))
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

type server interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
