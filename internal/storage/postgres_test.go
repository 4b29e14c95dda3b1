package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPostgres(t *testing.T) (*PostgresStorage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresStorageFromDB(db), mock
}

func TestPostgresStorage_GetFound(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectQuery("SELECT value FROM kv_entries WHERE key").
		WithArgs("1:stats").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`{"totalDecisions":3}`))

	value, found, err := s.Get(context.Background(), "1:stats")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"totalDecisions":3}`, value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_GetMissingIsNotAnError(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectQuery("SELECT value FROM kv_entries WHERE key").
		WithArgs("1:stats").
		WillReturnError(sql.ErrNoRows)

	_, found, err := s.Get(context.Background(), "1:stats")
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_SetUpserts(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectExec("INSERT INTO kv_entries").
		WithArgs("1:preferences", `{"mood":"cozy"}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Set(context.Background(), "1:preferences", `{"mood":"cozy"}`))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_DeleteWrapsErrors(t *testing.T) {
	s, mock := newMockPostgres(t)
	boom := errors.New("connection reset")

	mock.ExpectExec("DELETE FROM kv_entries").
		WithArgs("1:auth_user").
		WillReturnError(boom)

	err := s.Delete(context.Background(), "1:auth_user")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
