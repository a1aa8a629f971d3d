package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/premierpredict/jackpot-core/internal/wallet/repo"
)

type fakeWalletRepo struct {
	balance int64
}

func (f *fakeWalletRepo) CreateAccount(_ context.Context, _ string) (string, error) {
	return "acc-1", nil
}

func (f *fakeWalletRepo) GetBalance(_ context.Context, accountID string) (int64, error) {
	if accountID != "acc-1" {
		return 0, repo.ErrNotFound
	}
	return f.balance, nil
}

func (f *fakeWalletRepo) ListTransactions(_ context.Context, _ string, _ int) ([]repo.Txn, error) {
	return nil, nil
}

func (f *fakeWalletRepo) RequestWithdrawal(_ context.Context, accountID string, amount int64, bankName, accountNumber string) (*repo.Withdrawal, error) {
	return &repo.Withdrawal{ID: "wd-1", AccountID: accountID, AmountKobo: amount, BankName: bankName, AccountNumber: accountNumber, Status: "pending"}, nil
}

func (f *fakeWalletRepo) ApproveWithdrawal(_ context.Context, _ string) error { return nil }
func (f *fakeWalletRepo) RejectWithdrawal(_ context.Context, _ string) error  { return nil }
func (f *fakeWalletRepo) ListWithdrawals(_ context.Context) ([]repo.Withdrawal, error) {
	return nil, nil
}

func newTestMux(r Repo) *http.ServeMux {
	mux := http.NewServeMux()
	NewServer(zap.NewNop(), r).Register(mux)
	return mux
}

func TestGetBalance_OK(t *testing.T) {
	mux := newTestMux(&fakeWalletRepo{balance: 45000})

	req := httptest.NewRequest(http.MethodGet, "/wallet?accountId=acc-1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"accountId":"acc-1","balance_kobo":45000}`, rec.Body.String())
}

func TestGetBalance_UnknownAccount_404(t *testing.T) {
	mux := newTestMux(&fakeWalletRepo{})

	req := httptest.NewRequest(http.MethodGet, "/wallet?accountId=ghost", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReadEndpoints_RejectNonGet(t *testing.T) {
	mux := newTestMux(&fakeWalletRepo{})

	for _, path := range []string{"/wallet?accountId=acc-1", "/wallet/transactions?accountId=acc-1"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code, path)
	}
}
