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

// MySQLConnectionRepository implements Connection persistence for MySQL databases.
// IDs are stored as BINARY(16).
type MySQLConnectionRepository struct {
	db *sql.DB
}

// Create inserts a new connection with its sealed credentials.
func (m *MySQLConnectionRepository) Create(ctx context.Context, conn *connectionDomain.Connection) error {
	querier := database.GetTx(ctx, m.db)

	id, err := mysqlID(conn.ID)
	if err != nil {
		return err
	}

	query := `INSERT INTO connections (` + connectionColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLConnectionRepository) Get(ctx context.Context, id uuid.UUID) (*connectionDomain.Connection, error) {
	querier := database.GetTx(ctx, m.db)

	rawID, err := mysqlID(id)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + connectionColumns + ` FROM connections WHERE id = ?`

	conn, err := scanConnection(querier.QueryRowContext(ctx, query, rawID), scanMySQLID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, connectionDomain.ErrConnectionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get connection")
	}
	return conn, nil
}

// List returns every connection, newest first.
func (m *MySQLConnectionRepository) List(ctx context.Context) ([]*connectionDomain.Connection, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + connectionColumns + ` FROM connections ORDER BY created_at DESC, id DESC`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list connections")
	}
	return collectConnections(rows, scanMySQLID)
}

// ListForUpdate returns every connection and locks the rows until the surrounding
// transaction ends. Must be called inside TxManager.WithTx.
func (m *MySQLConnectionRepository) ListForUpdate(ctx context.Context) ([]*connectionDomain.Connection, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + connectionColumns + ` FROM connections ORDER BY id FOR UPDATE`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to lock connections")
	}
	return collectConnections(rows, scanMySQLID)
}

// Update overwrites the metadata and the sealed credentials of an existing connection.
//
// MySQL reports zero affected rows when every value is unchanged, so existence is
// checked with a lookup instead of RowsAffected.
func (m *MySQLConnectionRepository) Update(ctx context.Context, conn *connectionDomain.Connection) error {
	querier := database.GetTx(ctx, m.db)

	id, err := mysqlID(conn.ID)
	if err != nil {
		return err
	}

	query := `UPDATE connections
			  SET name = ?, base_url = ?, algorithm = ?,
			      api_key_nonce = ?, api_key_ciphertext = ?, api_key_tag = ?,
			      api_secret_nonce = ?, api_secret_ciphertext = ?, api_secret_tag = ?,
			      updated_at = ?
			  WHERE id = ?`

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
		id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update connection")
	}

	if affected, err := result.RowsAffected(); err == nil && affected > 0 {
		return nil
	}

	var exists int
	err = querier.QueryRowContext(ctx, `SELECT 1 FROM connections WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return connectionDomain.ErrConnectionNotFound
		}
		return apperrors.Wrap(err, "failed to check connection")
	}
	return nil
}

// Delete removes a connection and its credential pair.
func (m *MySQLConnectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	rawID, err := mysqlID(id)
	if err != nil {
		return err
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM connections WHERE id = ?`, rawID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete connection")
	}
	return requireAffected(result)
}

// DeleteAll removes every connection and returns how many were deleted.
func (m *MySQLConnectionRepository) DeleteAll(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM connections`)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete connections")
	}
	return result.RowsAffected()
}

// NewMySQLConnectionRepository creates a new MySQL Connection repository instance.
func NewMySQLConnectionRepository(db *sql.DB) *MySQLConnectionRepository {
	return &MySQLConnectionRepository{db: db}
}
