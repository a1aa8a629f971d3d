package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/premierpredict/jackpot-core/internal/payment/gateway"
	"github.com/premierpredict/jackpot-core/pkg/contracts/events"
)

const testSecret = "sk_test_secret"

func sign(body []byte) string {
	mac := hmac.New(sha512.New, []byte(testSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// fakeStore simula a reconciliação: primeira vez credita, repetições não
type fakeStore struct {
	pending map[string]string // reference -> accountID
	credits map[string]int64  // reference -> valor creditado
	balance int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{pending: map[string]string{}, credits: map[string]int64{}}
}

func (f *fakeStore) CreatePending(_ context.Context, reference, accountID string, _ int64) error {
	f.pending[reference] = accountID
	return nil
}

func (f *fakeStore) Reconcile(_ context.Context, reference string, amount int64, _ string) (bool, int64, error) {
	if _, ok := f.pending[reference]; !ok {
		return false, 0, errors.New("unknown reference")
	}
	if _, done := f.credits[reference]; done {
		return false, f.balance, nil
	}
	f.credits[reference] = amount
	f.balance += amount
	return true, f.balance, nil
}

type fakeVerifier struct{ data *gateway.VerifyData }

func (f *fakeVerifier) VerifyTransaction(_ context.Context, _ string) (*gateway.VerifyData, error) {
	return f.data, nil
}

type fakePublisher struct{ published []events.DepositCredited }

func (f *fakePublisher) PublishDepositCredited(_ context.Context, e events.DepositCredited) error {
	f.published = append(f.published, e)
	return nil
}

func webhookBody(reference string, amount int64) []byte {
	return []byte(`{"event":"charge.success","data":{"reference":"` + reference + `","amount":` + strconv.FormatInt(amount, 10) + `,"metadata":{"account_id":"acc-1"}}}`)
}

func TestHandleWebhook_InvalidSignature_RejectedBeforeState(t *testing.T) {
	store := newFakeStore()
	svc := New(zap.NewNop(), store, nil, nil, testSecret)

	body := webhookBody("dep_1", 5000)
	_, err := svc.HandleWebhook(context.Background(), body, "deadbeef")
	require.ErrorIs(t, err, ErrInvalidSignature)
	require.Empty(t, store.credits)
}

func TestHandleWebhook_ValidSignature_Credits(t *testing.T) {
	store := newFakeStore()
	store.pending["dep_1"] = "acc-1"
	publ := &fakePublisher{}
	svc := New(zap.NewNop(), store, nil, publ, testSecret)

	body := webhookBody("dep_1", 5000)
	res, err := svc.HandleWebhook(context.Background(), body, sign(body))
	require.NoError(t, err)
	require.True(t, res.Credited)
	require.Equal(t, int64(5000), res.BalanceKobo)
	require.Len(t, publ.published, 1)
}

func TestHandleWebhook_IrrelevantEvent_Ignored(t *testing.T) {
	store := newFakeStore()
	svc := New(zap.NewNop(), store, nil, nil, testSecret)

	body := []byte(`{"event":"transfer.success","data":{"reference":"dep_1","amount":5000}}`)
	res, err := svc.HandleWebhook(context.Background(), body, sign(body))
	require.NoError(t, err)
	require.False(t, res.Credited)
	require.Empty(t, store.credits)
}

func TestBothPaths_SameReference_CreditOnce(t *testing.T) {
	store := newFakeStore()
	store.pending["dep_1"] = "acc-1"
	publ := &fakePublisher{}
	verifier := &fakeVerifier{data: &gateway.VerifyData{
		Reference: "dep_1", Status: "success", AmountKobo: 5000, AccountID: "acc-1",
	}}
	svc := New(zap.NewNop(), store, verifier, publ, testSecret)

	// verify primeiro, webhook depois: tanto faz a ordem, credita uma vez
	res1, err := svc.VerifyAndCredit(context.Background(), "dep_1")
	require.NoError(t, err)
	require.True(t, res1.Credited)

	body := webhookBody("dep_1", 5000)
	res2, err := svc.HandleWebhook(context.Background(), body, sign(body))
	require.NoError(t, err)
	require.False(t, res2.Credited)
	require.Equal(t, res1.BalanceKobo, res2.BalanceKobo)

	require.Equal(t, int64(5000), store.balance)
	require.Len(t, publ.published, 1)
}

func TestTwoReferences_CreditTwice(t *testing.T) {
	store := newFakeStore()
	store.pending["dep_1"] = "acc-1"
	store.pending["dep_2"] = "acc-1"
	svc := New(zap.NewNop(), store, nil, nil, testSecret)

	b1 := webhookBody("dep_1", 5000)
	b2 := webhookBody("dep_2", 3000)

	res1, err := svc.HandleWebhook(context.Background(), b1, sign(b1))
	require.NoError(t, err)
	require.True(t, res1.Credited)

	res2, err := svc.HandleWebhook(context.Background(), b2, sign(b2))
	require.NoError(t, err)
	require.True(t, res2.Credited)

	require.Equal(t, int64(8000), store.balance)
}

func TestVerifyAndCredit_NotConfirmedByGateway(t *testing.T) {
	store := newFakeStore()
	store.pending["dep_1"] = "acc-1"
	verifier := &fakeVerifier{data: &gateway.VerifyData{Reference: "dep_1", Status: "failed"}}
	svc := New(zap.NewNop(), store, verifier, nil, testSecret)

	_, err := svc.VerifyAndCredit(context.Background(), "dep_1")
	require.ErrorIs(t, err, ErrNotConfirmed)
	require.Empty(t, store.credits)
}

func TestInitiateDeposit_GeneratesUniqueReference(t *testing.T) {
	store := newFakeStore()
	svc := New(zap.NewNop(), store, nil, nil, testSecret)

	r1, err := svc.InitiateDeposit(context.Background(), "acc-1", 5000)
	require.NoError(t, err)
	r2, err := svc.InitiateDeposit(context.Background(), "acc-1", 5000)
	require.NoError(t, err)

	require.NotEqual(t, r1, r2)
	require.Contains(t, store.pending, r1)
	require.Contains(t, store.pending, r2)
}
