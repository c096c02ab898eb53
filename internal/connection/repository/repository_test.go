package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	connectionDomain "github.com/allisson/erpnext-api-tester/internal/connection/domain"
	cryptoDomain "github.com/allisson/erpnext-api-tester/internal/crypto/domain"
	"github.com/allisson/erpnext-api-tester/internal/database"
)

var columns = []string{
	"id", "name", "base_url", "algorithm",
	"api_key_nonce", "api_key_ciphertext", "api_key_tag",
	"api_secret_nonce", "api_secret_ciphertext", "api_secret_tag",
	"created_at", "updated_at",
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, mock
}

func testConnection() *connectionDomain.Connection {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &connectionDomain.Connection{
		ID:      uuid.Must(uuid.NewV7()),
		Name:    "Production",
		BaseURL: "https://erp.example.com",
		Credentials: connectionDomain.CredentialPair{
			APIKey: cryptoDomain.SealedSecret{
				Nonce:      "a2V5LW5vbmNlLTEy",
				Ciphertext: "a2V5",
				Tag:        "a2V5LXRhZy0xNi1ieXRlcw==",
			},
			APISecret: cryptoDomain.SealedSecret{
				Nonce:      "c2VjLW5vbmNlLTEy",
				Ciphertext: "c2VjcmV0",
				Tag:        "c2VjLXRhZy0xNi1ieXRlcw==",
			},
		},
		Algorithm: cryptoDomain.AESGCM,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func rowValues(conn *connectionDomain.Connection, id any) []driver.Value {
	return []driver.Value{
		id,
		conn.Name,
		conn.BaseURL,
		string(conn.Algorithm),
		conn.Credentials.APIKey.Nonce,
		conn.Credentials.APIKey.Ciphertext,
		conn.Credentials.APIKey.Tag,
		conn.Credentials.APISecret.Nonce,
		conn.Credentials.APISecret.Ciphertext,
		conn.Credentials.APISecret.Tag,
		conn.CreatedAt,
		conn.UpdatedAt,
	}
}

func anyArgs(n int) []driver.Value {
	args := make([]driver.Value, n)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	return args
}

func TestPostgreSQLConnectionRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgreSQLConnectionRepository(db)
		conn := testConnection()

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO connections")).
			WithArgs(anyArgs(12)...).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(ctx, conn))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Create failure", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgreSQLConnectionRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO connections")).
			WillReturnError(errors.New("duplicate"))

		err := repo.Create(ctx, testConnection())
		assert.ErrorContains(t, err, "failed to create connection")
	})

	t.Run("Get", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgreSQLConnectionRepository(db)
		conn := testConnection()

		mock.ExpectQuery(regexp.QuoteMeta("FROM connections WHERE id = $1")).
			WithArgs(conn.ID.String()).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(rowValues(conn, conn.ID.String())...))

		got, err := repo.Get(ctx, conn.ID)
		require.NoError(t, err)
		assert.Equal(t, conn, got)
		assert.True(t, got.HasSecrets())
	})

	t.Run("Get not found", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgreSQLConnectionRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM connections WHERE id = $1")).
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := repo.Get(ctx, uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, connectionDomain.ErrConnectionNotFound)
	})

	t.Run("List", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgreSQLConnectionRepository(db)
		first, second := testConnection(), testConnection()
		second.Name = "Staging"

		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(rowValues(second, second.ID.String())...).
				AddRow(rowValues(first, first.ID.String())...))

		got, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Staging", got[0].Name)
		assert.Equal(t, first.ID, got[1].ID)
	})

	t.Run("List empty", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgreSQLConnectionRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
			WillReturnRows(sqlmock.NewRows(columns))

		got, err := repo.List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("ListForUpdate inside transaction", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgreSQLConnectionRepository(db)
		conn := testConnection()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(rowValues(conn, conn.ID.String())...))
		mock.ExpectCommit()

		err := database.NewTxManager(db).WithTx(ctx, func(ctx context.Context) error {
			got, err := repo.ListForUpdate(ctx)
			if err != nil {
				return err
			}
			assert.Len(t, got, 1)
			return nil
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Update", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgreSQLConnectionRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE connections")).
			WithArgs(anyArgs(11)...).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Update(ctx, testConnection()))
	})

	t.Run("Update missing row", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgreSQLConnectionRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE connections")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Update(ctx, testConnection()), connectionDomain.ErrConnectionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgreSQLConnectionRepository(db)
		id := uuid.Must(uuid.NewV7())

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM connections WHERE id = $1")).
			WithArgs(id.String()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.Delete(ctx, id))

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM connections WHERE id = $1")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.Delete(ctx, id), connectionDomain.ErrConnectionNotFound)
	})

	t.Run("DeleteAll", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgreSQLConnectionRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM connections")).
			WillReturnResult(sqlmock.NewResult(0, 3))

		n, err := repo.DeleteAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})
}

func TestMySQLConnectionRepository(t *testing.T) {
	ctx := context.Background()

	binaryID := func(t *testing.T, id uuid.UUID) []byte {
		raw, err := id.MarshalBinary()
		require.NoError(t, err)
		return raw
	}

	t.Run("Create stores binary id", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewMySQLConnectionRepository(db)
		conn := testConnection()

		args := anyArgs(12)
		args[0] = binaryID(t, conn.ID)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO connections")).
			WithArgs(args...).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(ctx, conn))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Get", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewMySQLConnectionRepository(db)
		conn := testConnection()

		mock.ExpectQuery(regexp.QuoteMeta("FROM connections WHERE id = ?")).
			WithArgs(binaryID(t, conn.ID)).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(rowValues(conn, binaryID(t, conn.ID))...))

		got, err := repo.Get(ctx, conn.ID)
		require.NoError(t, err)
		assert.Equal(t, conn, got)
	})

	t.Run("Get not found", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewMySQLConnectionRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM connections WHERE id = ?")).
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := repo.Get(ctx, uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, connectionDomain.ErrConnectionNotFound)
	})

	t.Run("Get with corrupt id", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewMySQLConnectionRepository(db)
		conn := testConnection()

		mock.ExpectQuery(regexp.QuoteMeta("FROM connections WHERE id = ?")).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(rowValues(conn, []byte{1, 2, 3})...))

		_, err := repo.Get(ctx, conn.ID)
		assert.ErrorContains(t, err, "failed to unmarshal connection id")
	})

	t.Run("List", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewMySQLConnectionRepository(db)
		conn := testConnection()

		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(rowValues(conn, binaryID(t, conn.ID))...))

		got, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, conn.ID, got[0].ID)
	})

	t.Run("Update unchanged row still exists", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewMySQLConnectionRepository(db)
		conn := testConnection()

		mock.ExpectExec(regexp.QuoteMeta("UPDATE connections")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM connections WHERE id = ?")).
			WithArgs(binaryID(t, conn.ID)).
			WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

		assert.NoError(t, repo.Update(ctx, conn))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Update missing row", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewMySQLConnectionRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE connections")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM connections WHERE id = ?")).
			WillReturnRows(sqlmock.NewRows([]string{"1"}))

		assert.ErrorIs(t, repo.Update(ctx, testConnection()), connectionDomain.ErrConnectionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewMySQLConnectionRepository(db)
		id := uuid.Must(uuid.NewV7())

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM connections WHERE id = ?")).
			WithArgs(binaryID(t, id)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(ctx, id), connectionDomain.ErrConnectionNotFound)
	})

	t.Run("DeleteAll", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewMySQLConnectionRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM connections")).
			WillReturnResult(sqlmock.NewResult(0, 2))

		n, err := repo.DeleteAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})
}
