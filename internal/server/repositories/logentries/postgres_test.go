package logentries

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/keyshare/internal/server/models"
)

const (
	insertQ = `(?s)^INSERT\s+INTO\s+log_entries\s*\(account_id,\s*event,\s*param,\s*time\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id\s*$`
	beforeQ = `(?s)^SELECT\s+id,\s*account_id,\s*event,\s*param,\s*time\s+FROM\s+log_entries\s+WHERE\s+account_id\s*=\s*\$1\s+AND\s+time\s*<=\s*\$2\s+ORDER\s+BY\s+time\s+DESC,\s*id\s+DESC\s+LIMIT\s+\$3\s*$`
	afterQ  = `(?s)^SELECT\s+id,\s*account_id,\s*event,\s*param,\s*time\s+FROM\s+log_entries\s+WHERE\s+account_id\s*=\s*\$1\s+AND\s+time\s*>\s*\$2\s+ORDER\s+BY\s+time\s+ASC,\s*id\s+ASC\s+LIMIT\s+\$3\s*$`
	deleteQ = `^DELETE\s+FROM\s+log_entries\s+WHERE\s+account_id\s*=\s*\$1$`
)

var logColumns = []string{"id", "account_id", "event", "param", "time"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestAppend(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	p := int64(2)
	mock.ExpectQuery(insertQ).
		WithArgs("acc", "PIN_CHECK_FAILED", sql.NullInt64{Int64: 2, Valid: true}, int64(100)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))
	mock.ExpectQuery(insertQ).
		WithArgs("acc", "PIN_CHECK_SUCCESS", nil, int64(101)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))

	e := &models.LogEntry{AccountID: "acc", Event: models.EventPinCheckFailed, Param: &p, Time: 100}
	require.NoError(t, repo.Append(context.Background(), e))
	assert.Equal(t, int64(9), e.ID)

	e = &models.LogEntry{AccountID: "acc", Event: models.EventPinCheckSuccess, Time: 101}
	require.NoError(t, repo.Append(context.Background(), e))
	assert.Equal(t, int64(10), e.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppend_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).WillReturnError(errors.New("db down"))

	err := repo.Append(context.Background(), &models.LogEntry{AccountID: "acc", Event: models.EventSession, Time: 1})
	assert.ErrorContains(t, err, "db error: db down")
}

func TestListAtOrBefore(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(logColumns).
		AddRow(int64(3), "acc", "PIN_CHECK_BLOCKED", int64(60), int64(20)).
		AddRow(int64(2), "acc", "IRMA_SESSION", nil, int64(20))
	mock.ExpectQuery(beforeQ).WithArgs("acc", int64(20), 11).WillReturnRows(rows)

	got, err := repo.ListAtOrBefore(context.Background(), "acc", 20, 11)
	require.NoError(t, err)

	sixty := int64(60)
	assert.Equal(t, []models.LogEntry{
		{ID: 3, AccountID: "acc", Event: models.EventPinCheckBlocked, Param: &sixty, Time: 20},
		{ID: 2, AccountID: "acc", Event: models.EventSession, Time: 20},
	}, got)
}

func TestListAfter(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(logColumns).AddRow(int64(4), "acc", "IRMA_ENABLED", nil, int64(21))
	mock.ExpectQuery(afterQ).WithArgs("acc", int64(20), 10).WillReturnRows(rows)

	got, err := repo.ListAfter(context.Background(), "acc", 20, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.EventEnabled, got[0].Event)
}

func TestList_Errors(t *testing.T) {
	t.Run("query", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(afterQ).WillReturnError(errors.New("boom"))

		_, err := repo.ListAfter(context.Background(), "acc", 0, 10)
		assert.ErrorContains(t, err, "db error: boom")
	})

	t.Run("rows", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		rows := sqlmock.NewRows(logColumns).
			AddRow(int64(1), "acc", "IRMA_SESSION", nil, int64(1)).
			RowError(0, errors.New("broken row"))
		mock.ExpectQuery(beforeQ).WillReturnRows(rows)

		_, err := repo.ListAtOrBefore(context.Background(), "acc", 1, 11)
		assert.ErrorContains(t, err, "broken row")
	})
}

func TestDeleteByAccount(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(deleteQ).WithArgs("acc").WillReturnResult(sqlmock.NewResult(0, 3))
	require.NoError(t, repo.DeleteByAccount(context.Background(), "acc"))

	mock.ExpectExec(deleteQ).WithArgs("acc").WillReturnError(errors.New("boom"))
	assert.ErrorContains(t, repo.DeleteByAccount(context.Background(), "acc"), "db error: boom")
}
