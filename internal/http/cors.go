package http

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// corsWildcard in CORS_ALLOW_ORIGINS allows every origin.
const corsWildcard = "*"

// createCORSMiddleware returns nil when CORS is off or CORS_ALLOW_ORIGINS yields no origin.
// Credentials are never allowed, so a wildcard origin is safe to honor.
func createCORSMiddleware(enabled bool, allowOrigins string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins := parseOrigins(allowOrigins)
	if len(origins) == 0 {
		logger.Warn("cors enabled without allowed origins, middleware not installed")
		return nil
	}

	cfg := cors.Config{
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowHeaders:  []string{"Content-Type", "X-Request-Id"},
		ExposeHeaders: []string{"X-Request-Id"},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(origins, corsWildcard) {
		cfg.AllowAllOrigins = true
		logger.Info("cors enabled for all origins")
	} else {
		cfg.AllowOrigins = origins
		logger.Info("cors enabled", slog.Any("origins", origins))
	}

	return cors.New(cfg)
}

// parseOrigins splits a comma separated origin list, dropping blanks and duplicates.
func parseOrigins(raw string) []string {
	var origins []string
	for _, field := range strings.Split(raw, ",") {
		origin := strings.TrimRight(strings.TrimSpace(field), "/")
		if origin == "" || slices.Contains(origins, origin) {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
