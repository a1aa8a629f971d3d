package repo

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	wrepo "github.com/premierpredict/jackpot-core/internal/wallet/repo"
)

func setupPaymentMock(t *testing.T) (*Postgres, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPostgres(db, wrepo.NewPostgres(db))
	closer := func() { db.Close() }
	return repo, mock, closer
}

func expectLockPending(mock sqlmock.Sqlmock, reference, owner, status string) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT account_id, status FROM pending_payments WHERE reference=$1 FOR UPDATE")).
		WithArgs(reference).
		WillReturnRows(sqlmock.NewRows([]string{"account_id", "status"}).AddRow(owner, status))
}

func TestReconcile_FirstDelivery_Credits(t *testing.T) {
	repo, mock, close := setupPaymentMock(t)
	defer close()

	mock.ExpectBegin()
	expectLockPending(mock, "dep_abc", "acc-1", "pending")
	mock.ExpectExec(regexp.QuoteMeta("UPDATE pending_payments SET status='success' WHERE reference=$1")).
		WithArgs("dep_abc").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT balance_kobo FROM wallets WHERE account_id=$1 FOR UPDATE")).
		WithArgs("acc-1").
		WillReturnRows(sqlmock.NewRows([]string{"balance_kobo"}).AddRow(int64(10000)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM wallet_txns WHERE reference=$1")).
		WithArgs("dep_abc").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE wallets SET balance_kobo = $1, version = version + 1, updated_at = NOW() WHERE account_id=$2")).
		WithArgs(int64(15000), "acc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO wallet_txns(account_id, delta_kobo, kind, reference) VALUES($1,$2,$3,$4)")).
		WithArgs("acc-1", int64(5000), wrepo.KindDepositCredit, "dep_abc").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	credited, bal, err := repo.Reconcile(context.Background(), "dep_abc", 5000, "acc-1")
	require.NoError(t, err)
	require.True(t, credited)
	require.Equal(t, int64(15000), bal)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcile_SecondDelivery_AlreadyCredited(t *testing.T) {
	repo, mock, close := setupPaymentMock(t)
	defer close()

	// Status já success: resposta definida sem nenhuma escrita
	mock.ExpectBegin()
	expectLockPending(mock, "dep_abc", "acc-1", "success")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT balance_kobo FROM wallets WHERE account_id=$1")).
		WithArgs("acc-1").
		WillReturnRows(sqlmock.NewRows([]string{"balance_kobo"}).AddRow(int64(15000)))
	mock.ExpectCommit()

	credited, bal, err := repo.Reconcile(context.Background(), "dep_abc", 5000, "acc-1")
	require.NoError(t, err)
	require.False(t, credited)
	require.Equal(t, int64(15000), bal)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcile_UnknownReference_FailsClosed(t *testing.T) {
	repo, mock, close := setupPaymentMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT account_id, status FROM pending_payments WHERE reference=$1 FOR UPDATE")).
		WithArgs("dep_forged").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, _, err := repo.Reconcile(context.Background(), "dep_forged", 5000, "acc-1")
	require.ErrorIs(t, err, ErrUnknownReference)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcile_AccountMismatch_FailsClosed(t *testing.T) {
	repo, mock, close := setupPaymentMock(t)
	defer close()

	mock.ExpectBegin()
	expectLockPending(mock, "dep_abc", "acc-1", "pending")
	mock.ExpectRollback()

	_, _, err := repo.Reconcile(context.Background(), "dep_abc", 5000, "acc-2")
	require.ErrorIs(t, err, ErrUnknownReference)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePending_InsertsIntent(t *testing.T) {
	repo, mock, close := setupPaymentMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO pending_payments(reference, account_id, requested_kobo, status) VALUES($1,$2,$3,'pending')")).
		WithArgs("dep_abc", "acc-1", int64(5000)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.CreatePending(context.Background(), "dep_abc", "acc-1", 5000)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
