package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/erpnext-api-tester/internal/metrics"
)

// MetricsServer exposes /metrics on a port of its own so scrapes never go through
// the API middleware chain (rate limiting, CORS).
type MetricsServer struct {
	server *http.Server
	logger *slog.Logger
}

func NewMetricsServer(host string, port int, logger *slog.Logger, provider *metrics.Provider) *MetricsServer {
	router := gin.New()
	router.Use(gin.Recovery(), CustomLoggerMiddleware(logger))
	if provider != nil {
		router.GET("/metrics", gin.WrapH(provider.Handler()))
	}

	srv := newHTTPServer(host, port, 15*time.Second)
	srv.Handler = router
	return &MetricsServer{server: srv, logger: logger}
}

// Handler returns the metrics router.
func (s *MetricsServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *MetricsServer) Start(ctx context.Context) error {
	return serve(s.server, "metrics", s.logger)
}

func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return shutdown(ctx, s.server, "metrics", s.logger)
}

func newHTTPServer(host string, port int, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}
}

// serve blocks until srv stops. A graceful shutdown is not an error.
func serve(srv *http.Server, name string, logger *slog.Logger) error {
	logger.Info("starting "+name+" server", slog.String("addr", srv.Addr))
	err := srv.ListenAndServe()
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("%s server: %w", name, err)
}

func shutdown(ctx context.Context, srv *http.Server, name string, logger *slog.Logger) error {
	logger.Info("shutting down " + name + " server")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("%s server shutdown: %w", name, err)
	}
	return nil
}
