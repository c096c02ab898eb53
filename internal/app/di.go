// Package app builds the object graph shared by the CLI commands.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/allisson/erpnext-api-tester/internal/config"
	connectionHTTP "github.com/allisson/erpnext-api-tester/internal/connection/http"
	connectionUseCase "github.com/allisson/erpnext-api-tester/internal/connection/usecase"
	cryptoDomain "github.com/allisson/erpnext-api-tester/internal/crypto/domain"
	cryptoService "github.com/allisson/erpnext-api-tester/internal/crypto/service"
	"github.com/allisson/erpnext-api-tester/internal/database"
	"github.com/allisson/erpnext-api-tester/internal/http"
	"github.com/allisson/erpnext-api-tester/internal/metrics"
)

// lazy holds one container component. The first get runs init; later calls return
// the same value, or the same error when init failed.
type lazy[T any] struct {
	once sync.Once
	val  T
	err  error
}

func (l *lazy[T]) get(init func() (T, error)) (T, error) {
	l.once.Do(func() { l.val, l.err = init() })
	return l.val, l.err
}

// Container wires the application. Components are built on first use, so a command
// that never touches the database never opens a pool.
type Container struct {
	config *config.Config

	// ctx bounds background goroutines owned by components (rate limiter cleanup).
	ctx    context.Context
	cancel context.CancelFunc

	logger          lazy[*slog.Logger]
	db              lazy[*sql.DB]
	txManager       lazy[database.TxManager]
	metricsProvider lazy[*metrics.Provider]
	businessMetrics lazy[metrics.BusinessMetrics]

	aeadManager     lazy[cryptoService.AEADManager]
	kmsService      lazy[cryptoService.KMSService]
	masterKeyHolder lazy[*cryptoDomain.MasterKeyHolder]

	connectionRepository lazy[connectionUseCase.ConnectionRepository]
	connectionUseCase    lazy[connectionUseCase.ConnectionUseCase]
	requestUseCase       lazy[connectionUseCase.RequestUseCase]
	connectionHandler    lazy[*connectionHTTP.ConnectionHandler]

	httpServer    lazy[*http.Server]
	metricsServer lazy[*http.MetricsServer]

	shutdownOnce sync.Once
}

func NewContainer(cfg *config.Config) *Container {
	ctx, cancel := context.WithCancel(context.Background())
	return &Container{config: cfg, ctx: ctx, cancel: cancel}
}

func (c *Container) Config() *config.Config {
	return c.config
}

func (c *Container) Logger() *slog.Logger {
	logger, _ := c.logger.get(func() (*slog.Logger, error) { return c.initLogger(), nil })
	return logger
}

// DB returns the connection pool. A failed connect is remembered, not retried.
func (c *Container) DB() (*sql.DB, error) {
	return c.db.get(c.initDB)
}

func (c *Container) TxManager() (database.TxManager, error) {
	return c.txManager.get(c.initTxManager)
}

// MetricsProvider returns nil, nil when METRICS_ENABLED is false.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	return c.metricsProvider.get(c.initMetricsProvider)
}

// BusinessMetrics falls back to a no-op recorder when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	return c.businessMetrics.get(c.initBusinessMetrics)
}

// HTTPServer returns the API server with its router already set up.
func (c *Container) HTTPServer() (*http.Server, error) {
	return c.httpServer.get(c.initHTTPServer)
}

// MetricsServer returns nil, nil when METRICS_ENABLED is false.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	return c.metricsServer.get(c.initMetricsServer)
}

// Shutdown flushes metrics, closes the pool and zeroes the active master key. Servers
// belong to the caller and must be stopped before. Calls after the first are no-ops.
func (c *Container) Shutdown(ctx context.Context) error {
	var errs []error
	c.shutdownOnce.Do(func() {
		c.cancel()

		if provider, err := c.metricsProvider.peek(); err == nil && provider != nil {
			if err := provider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("metrics provider shutdown: %w", err))
			}
		}
		if db, err := c.db.peek(); err == nil && db != nil {
			if err := db.Close(); err != nil {
				errs = append(errs, fmt.Errorf("database close: %w", err))
			}
		}
		if holder, err := c.masterKeyHolder.peek(); err == nil && holder != nil {
			holder.Close()
		}
	})
	return errors.Join(errs...)
}

// ErrContainerClosed is returned for components first requested after Shutdown.
var ErrContainerClosed = errors.New("container is shut down")

// peek returns the component without building it. A component never built before
// peek is sealed with ErrContainerClosed.
func (l *lazy[T]) peek() (T, error) {
	l.once.Do(func() { l.err = ErrContainerClosed })
	return l.val, l.err
}

// initLogger writes JSON to stdout. Unknown LOG_LEVEL values fall back to info.
func (c *Container) initLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.config.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(c.ctx, c.config.DBDriver, c.config.DBConnectionString, database.PoolConfig{
		MaxOpen:     c.config.DBMaxOpenConnections,
		MaxIdle:     c.config.DBMaxIdleConnections,
		MaxLifetime: c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}
	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}
	return metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}

func (c *Container) initHTTPServer() (*http.Server, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	handler, err := c.ConnectionHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get connection handler for http server: %w", err)
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, c.Logger())
	server.SetupRouter(c.ctx, c.config, handler, provider)
	return server, nil
}

func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}
	if provider == nil {
		return nil, nil
	}
	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
}
