package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/premierpredict/jackpot-core/internal/rounds/repo"
	"github.com/premierpredict/jackpot-core/pkg/contracts/events"
)

type fakeRegistry struct {
	closedOnActivate []string
	closeErr         error
}

func (f *fakeRegistry) CreateRound(_ context.Context, name string, prizePool *int64, start, end *time.Time) (*repo.Round, error) {
	return &repo.Round{ID: "r-new", Name: name, Status: "open", PrizePoolKobo: prizePool, StartTime: start, EndTime: end}, nil
}

func (f *fakeRegistry) AddMatch(_ context.Context, roundID, home, away string, scheduled *time.Time) (*repo.Match, error) {
	return &repo.Match{ID: "m-new", RoundID: roundID, Home: home, Away: away, ScheduledTime: scheduled}, nil
}

func (f *fakeRegistry) Activate(_ context.Context, _ string) ([]string, error) {
	return f.closedOnActivate, nil
}

func (f *fakeRegistry) Close(_ context.Context, _ string) error { return f.closeErr }

func (f *fakeRegistry) SetResult(_ context.Context, _, _ string) error { return nil }

func (f *fakeRegistry) GetActive(_ context.Context) (*repo.RoundWithMatches, error) {
	return nil, repo.ErrNoActiveRound
}

func (f *fakeRegistry) ListRounds(_ context.Context) ([]repo.Round, error) { return nil, nil }

type fakeClosePublisher struct{ published []events.RoundClosed }

func (f *fakeClosePublisher) PublishRoundClosed(_ context.Context, e events.RoundClosed) error {
	f.published = append(f.published, e)
	return nil
}

func newTestMux(reg *fakeRegistry, publ *fakeClosePublisher) *http.ServeMux {
	mux := http.NewServeMux()
	NewServer(zap.NewNop(), reg, nil, publ).Register(mux)
	return mux
}

func TestActivate_PublishesRoundClosedForDisplacedRound(t *testing.T) {
	// r1 estava ativa; ativar r2 encerra r1 e precisa disparar a liquidação dela
	publ := &fakeClosePublisher{}
	mux := newTestMux(&fakeRegistry{closedOnActivate: []string{"r1"}}, publ)

	req := httptest.NewRequest(http.MethodPost, "/rounds/r2/activate", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, publ.published, 1)
	require.Equal(t, "r1", publ.published[0].RoundID)
}

func TestActivate_NothingDisplaced_NoEvent(t *testing.T) {
	publ := &fakeClosePublisher{}
	mux := newTestMux(&fakeRegistry{}, publ)

	req := httptest.NewRequest(http.MethodPost, "/rounds/r1/activate", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, publ.published)
}

func TestClose_PublishesRoundClosed(t *testing.T) {
	publ := &fakeClosePublisher{}
	mux := newTestMux(&fakeRegistry{}, publ)

	req := httptest.NewRequest(http.MethodPost, "/rounds/r1/close", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, publ.published, 1)
	require.Equal(t, "r1", publ.published[0].RoundID)
}
