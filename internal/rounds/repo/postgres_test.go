package repo

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func setupRoundsMock(t *testing.T) (*Postgres, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPostgres(db)
	closer := func() { db.Close() }
	return repo, mock, closer
}

func expectLockRound(mock sqlmock.Sqlmock, roundID, status string) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM rounds WHERE id=$1 FOR UPDATE")).
		WithArgs(roundID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(status))
}

func TestActivate_ClosesPreviousActiveInSameTx(t *testing.T) {
	repo, mock, close := setupRoundsMock(t)
	defer close()

	mock.ExpectBegin()
	expectLockRound(mock, "r2", "open")
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE rounds SET status='closed', end_time=NOW() WHERE status='active' AND id<>$1 RETURNING id")).
		WithArgs("r2").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("r1"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE rounds SET status='active', start_time=COALESCE(start_time, NOW()) WHERE id=$1")).
		WithArgs("r2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	closed, err := repo.Activate(context.Background(), "r2")
	require.NoError(t, err)
	require.Equal(t, []string{"r1"}, closed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivate_NoActiveSibling_ClosesNothing(t *testing.T) {
	repo, mock, close := setupRoundsMock(t)
	defer close()

	mock.ExpectBegin()
	expectLockRound(mock, "r1", "open")
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE rounds SET status='closed', end_time=NOW() WHERE status='active' AND id<>$1 RETURNING id")).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE rounds SET status='active', start_time=COALESCE(start_time, NOW()) WHERE id=$1")).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	closed, err := repo.Activate(context.Background(), "r1")
	require.NoError(t, err)
	require.Empty(t, closed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivate_ClosedRound_IsTerminal(t *testing.T) {
	repo, mock, close := setupRoundsMock(t)
	defer close()

	mock.ExpectBegin()
	expectLockRound(mock, "r1", "closed")
	mock.ExpectRollback()

	_, err := repo.Activate(context.Background(), "r1")
	require.ErrorIs(t, err, ErrRoundClosed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClose_AlreadyClosed_IsNoOp(t *testing.T) {
	repo, mock, close := setupRoundsMock(t)
	defer close()

	mock.ExpectBegin()
	expectLockRound(mock, "r1", "closed")
	mock.ExpectCommit()

	require.NoError(t, repo.Close(context.Background(), "r1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetResult_RejectsClosedRound(t *testing.T) {
	repo, mock, close := setupRoundsMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT r.status FROM matches m JOIN rounds r ON r.id = m.round_id WHERE m.id=$1 FOR UPDATE OF r")).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("closed"))
	mock.ExpectRollback()

	err := repo.SetResult(context.Background(), "m1", "A")
	require.ErrorIs(t, err, ErrRoundClosed)
}

func TestSetResult_InvalidOutcome_NoDBAccess(t *testing.T) {
	repo, mock, close := setupRoundsMock(t)
	defer close()

	err := repo.SetResult(context.Background(), "m1", "X")
	require.ErrorIs(t, err, ErrInvalidResult)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetResult_WritesOutcome(t *testing.T) {
	repo, mock, close := setupRoundsMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT r.status FROM matches m JOIN rounds r ON r.id = m.round_id WHERE m.id=$1 FOR UPDATE OF r")).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("active"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE matches SET result=$1 WHERE id=$2")).
		WithArgs("B", "m1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SetResult(context.Background(), "m1", "B"))
}

func TestGetActive_NoActiveRound(t *testing.T) {
	repo, mock, close := setupRoundsMock(t)
	defer close()

	mock.ExpectQuery("SELECT id, name, status, prize_pool_kobo, start_time, end_time, created_at").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetActive(context.Background())
	require.ErrorIs(t, err, ErrNoActiveRound)
}
