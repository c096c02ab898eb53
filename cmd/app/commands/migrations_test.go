package commands

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrationsSource(t *testing.T) {
	assert.Equal(t, "file://migrations/postgresql", migrationsSource("postgres"))
	assert.Equal(t, "file://migrations/mysql", migrationsSource("mysql"))
	assert.Equal(t, "file://migrations/postgresql", migrationsSource(""))
}

func TestRunMigrations_InstanceErrors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name   string
		driver string
		dsn    string
	}{
		{name: "unknown scheme", driver: "invalid", dsn: "invalid://localhost"},
		{name: "dsn without scheme", driver: "postgres", dsn: "not-a-url"},
		{name: "mysql dsn without scheme", driver: "mysql", dsn: "user:pass@tcp(localhost:3306)/db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RunMigrations(logger, tt.driver, tt.dsn)
			assert.ErrorContains(t, err, "failed to create migrate instance")
		})
	}
}
