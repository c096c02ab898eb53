package repository

import (
	"database/sql"

	"github.com/google/uuid"

	connectionDomain "github.com/allisson/erpnext-api-tester/internal/connection/domain"
	apperrors "github.com/allisson/erpnext-api-tester/internal/errors"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// idScanner returns the scan destination for the id column and a function that
// copies the scanned value into the connection once Scan has run.
type idScanner func(conn *connectionDomain.Connection) (dest any, finish func() error)

func scanPostgresID(conn *connectionDomain.Connection) (any, func() error) {
	return &conn.ID, func() error { return nil }
}

func scanMySQLID(conn *connectionDomain.Connection) (any, func() error) {
	var raw []byte
	return &raw, func() error {
		if err := conn.ID.UnmarshalBinary(raw); err != nil {
			return apperrors.Wrap(err, "failed to unmarshal connection id")
		}
		return nil
	}
}

func scanConnection(row rowScanner, scanID idScanner) (*connectionDomain.Connection, error) {
	var conn connectionDomain.Connection
	idDest, finish := scanID(&conn)

	err := row.Scan(
		idDest,
		&conn.Name,
		&conn.BaseURL,
		&conn.Algorithm,
		&conn.Credentials.APIKey.Nonce,
		&conn.Credentials.APIKey.Ciphertext,
		&conn.Credentials.APIKey.Tag,
		&conn.Credentials.APISecret.Nonce,
		&conn.Credentials.APISecret.Ciphertext,
		&conn.Credentials.APISecret.Tag,
		&conn.CreatedAt,
		&conn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return &conn, nil
}

func collectConnections(rows *sql.Rows, scanID idScanner) ([]*connectionDomain.Connection, error) {
	defer func() {
		_ = rows.Close()
	}()

	connections := make([]*connectionDomain.Connection, 0)
	for rows.Next() {
		conn, err := scanConnection(rows, scanID)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan connection")
		}
		connections = append(connections, conn)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate connections")
	}
	return connections, nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return connectionDomain.ErrConnectionNotFound
	}
	return nil
}

func mysqlID(id uuid.UUID) ([]byte, error) {
	raw, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal connection id")
	}
	return raw, nil
}
