package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/atinyakov/GophShare/internal/lifecycle"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secretRowColumns = []string{"id", "title", "envelope", "key", "burn_after_view", "auto_destroy_after", "view_count", "created_at"}

func setupMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestPostgresCreate_Success(t *testing.T) {
	repo, mock := setupMock(t)
	sec := testSecret("s1", baseTime, lifecycle.After1m)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO secrets (` + secretColumns + `)`)).
		WithArgs(sec.ID, sec.Title, sec.Envelope, sec.Key, true, 60, 0, baseTime.UnixMilli()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), sec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreate_Duplicate(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO secrets`)).
		WillReturnError(&pq.Error{Code: uniqueViolation})

	err := repo.Create(context.Background(), testSecret("s1", baseTime, lifecycle.Never))
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestPostgresCreate_Error(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO secrets`)).
		WillReturnError(errors.New("insert fail"))

	err := repo.Create(context.Background(), testSecret("s1", baseTime, lifecycle.Never))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert secret")
	assert.NotErrorIs(t, err, ErrAlreadyExists)
}

func TestPostgresList_Success(t *testing.T) {
	repo, mock := setupMock(t)
	later := baseTime.Add(time.Minute)

	rows := sqlmock.NewRows(secretRowColumns).
		AddRow("b", "second", "env-b", "key-b", false, 300, 2, later.UnixMilli()).
		AddRow("a", "first", "env-a", "key-a", true, 0, 0, baseTime.UnixMilli())
	mock.ExpectQuery(regexp.QuoteMeta(`FROM secrets ORDER BY created_at DESC`)).WillReturnRows(rows)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, lifecycle.After5m, list[0].AutoDestroyAfter)
	assert.Equal(t, 2, list[0].ViewCount)
	assert.True(t, list[0].CreatedAt.Equal(later))
	assert.True(t, list[1].BurnAfterView)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresList_Empty(t *testing.T) {
	repo, mock := setupMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM secrets`)).WillReturnRows(sqlmock.NewRows(secretRowColumns))

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestPostgresGet_NotFound(t *testing.T) {
	repo, mock := setupMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM secrets WHERE id = $1`)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(secretRowColumns))

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresDelete(t *testing.T) {
	repo, mock := setupMock(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM secrets WHERE id = $1`)).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "s1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresIncrementViewCount(t *testing.T) {
	repo, mock := setupMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE secrets SET view_count = view_count + 1 WHERE id = $1`)).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows(secretRowColumns).
			AddRow("s1", "t", "env", "key", true, 0, 3, baseTime.UnixMilli()))

	sec, err := repo.IncrementViewCount(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, sec.ViewCount)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE secrets`)).
		WithArgs("gone").
		WillReturnRows(sqlmock.NewRows(secretRowColumns))
	_, err = repo.IncrementViewCount(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresDeleteExpired(t *testing.T) {
	repo, mock := setupMock(t)
	now := baseTime.Add(time.Hour)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM secrets`)).
		WithArgs(now.UnixMilli()).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
