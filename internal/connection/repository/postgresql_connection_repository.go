// Package repository persists connections and their sealed credentials in PostgreSQL or MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	connectionDomain "github.com/allisson/erpnext-api-tester/internal/connection/domain"
	"github.com/allisson/erpnext-api-tester/internal/database"
	apperrors "github.com/allisson/erpnext-api-tester/internal/errors"
)

const connectionColumns = `id, name, base_url, algorithm,
			  api_key_nonce, api_key_ciphertext, api_key_tag,
			  api_secret_nonce, api_secret_ciphertext, api_secret_tag,
			  created_at, updated_at`

// PostgreSQLConnectionRepository implements Connection persistence for PostgreSQL databases.
type PostgreSQLConnectionRepository struct {
	db *sql.DB
}

// Create inserts a new connection with its sealed credentials.
func (p *PostgreSQLConnectionRepository) Create(ctx context.Context, conn *connectionDomain.Connection) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO connections (` + connectionColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := querier.ExecContext(
		ctx,
		query,
		conn.ID,
		conn.Name,
		conn.BaseURL,
		conn.Algorithm,
		conn.Credentials.APIKey.Nonce,
		conn.Credentials.APIKey.Ciphertext,
		conn.Credentials.APIKey.Tag,
		conn.Credentials.APISecret.Nonce,
		conn.Credentials.APISecret.Ciphertext,
		conn.Credentials.APISecret.Tag,
		conn.CreatedAt,
		conn.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create connection")
	}
	return nil
}

// Get retrieves a connection by ID.
func (p *PostgreSQLConnectionRepository) Get(
	ctx context.Context,
	id uuid.UUID,
) (*connectionDomain.Connection, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + connectionColumns + ` FROM connections WHERE id = $1`

	conn, err := scanConnection(querier.QueryRowContext(ctx, query, id), scanPostgresID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, connectionDomain.ErrConnectionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get connection")
	}
	return conn, nil
}

// List returns every connection, newest first.
func (p *PostgreSQLConnectionRepository) List(ctx context.Context) ([]*connectionDomain.Connection, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + connectionColumns + ` FROM connections ORDER BY created_at DESC, id DESC`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list connections")
	}
	return collectConnections(rows, scanPostgresID)
}

// ListForUpdate returns every connection and locks the rows until the surrounding
// transaction ends. Must be called inside TxManager.WithTx.
func (p *PostgreSQLConnectionRepository) ListForUpdate(
	ctx context.Context,
) ([]*connectionDomain.Connection, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + connectionColumns + ` FROM connections ORDER BY id FOR UPDATE`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to lock connections")
	}
	return collectConnections(rows, scanPostgresID)
}

// Update overwrites the metadata and the sealed credentials of an existing connection.
func (p *PostgreSQLConnectionRepository) Update(ctx context.Context, conn *connectionDomain.Connection) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE connections
			  SET name = $1, base_url = $2, algorithm = $3,
			      api_key_nonce = $4, api_key_ciphertext = $5, api_key_tag = $6,
			      api_secret_nonce = $7, api_secret_ciphertext = $8, api_secret_tag = $9,
			      updated_at = $10
			  WHERE id = $11`

	result, err := querier.ExecContext(
		ctx,
		query,
		conn.Name,
		conn.BaseURL,
		conn.Algorithm,
		conn.Credentials.APIKey.Nonce,
		conn.Credentials.APIKey.Ciphertext,
		conn.Credentials.APIKey.Tag,
		conn.Credentials.APISecret.Nonce,
		conn.Credentials.APISecret.Ciphertext,
		conn.Credentials.APISecret.Tag,
		conn.UpdatedAt,
		conn.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update connection")
	}
	return requireAffected(result)
}

// Delete removes a connection and its credential pair.
func (p *PostgreSQLConnectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM connections WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete connection")
	}
	return requireAffected(result)
}

// DeleteAll removes every connection and returns how many were deleted.
func (p *PostgreSQLConnectionRepository) DeleteAll(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM connections`)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete connections")
	}
	return result.RowsAffected()
}

// NewPostgreSQLConnectionRepository creates a new PostgreSQL Connection repository instance.
func NewPostgreSQLConnectionRepository(db *sql.DB) *PostgreSQLConnectionRepository {
	return &PostgreSQLConnectionRepository{db: db}
}
