package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/premierpredict/jackpot-core/internal/rounds/cache"
	"github.com/premierpredict/jackpot-core/internal/rounds/dto"
	"github.com/premierpredict/jackpot-core/internal/rounds/repo"
	"github.com/premierpredict/jackpot-core/pkg/contracts/events"
)

// Repo define as operações do registro de rodadas usadas pelo handler HTTP
type Repo interface {
	CreateRound(ctx context.Context, name string, prizePool *int64, start, end *time.Time) (*repo.Round, error)
	AddMatch(ctx context.Context, roundID, home, away string, scheduled *time.Time) (*repo.Match, error)
	Activate(ctx context.Context, roundID string) (closed []string, err error)
	Close(ctx context.Context, roundID string) error
	SetResult(ctx context.Context, matchID, outcome string) error
	GetActive(ctx context.Context) (*repo.RoundWithMatches, error)
	ListRounds(ctx context.Context) ([]repo.Round, error)
}

// Server expõe endpoints de leitura da rodada ativa e a superfície de admin
// A autenticação do admin é colaborador externo; aqui se confia no chamador
type Server struct {
	log   *zap.Logger
	repo  Repo
	cache *cache.RoundCache
	publ  interface {
		PublishRoundClosed(context.Context, events.RoundClosed) error
	}
}

func NewServer(log *zap.Logger, r Repo, c *cache.RoundCache, p interface {
	PublishRoundClosed(context.Context, events.RoundClosed) error
}) *Server {
	return &Server{log: log, repo: r, cache: c, publ: p}
}

// Register adiciona as rotas de rodadas ao mux compartilhado da API
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/rounds", s.rounds)            // GET lista, POST cria
	mux.HandleFunc("/rounds/active", s.active)     // GET
	mux.HandleFunc("/rounds/", s.roundAction)      // POST /rounds/{id}/activate|close|results|matches
}

func (s *Server) rounds(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := s.repo.ListRounds(r.Context())
		if err != nil {
			writeErr(w, s.log, err)
			return
		}
		out := make([]dto.RoundResponse, 0, len(list))
		for _, rr := range list {
			out = append(out, toRoundResponse(rr))
		}
		writeJSON(w, out)
	case http.MethodPost:
		var req dto.CreateRoundRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			http.Error(w, "name required", http.StatusBadRequest)
			return
		}
		rd, err := s.repo.CreateRound(r.Context(), req.Name, req.PrizePoolKobo, req.StartTime, req.EndTime)
		if err != nil {
			writeErr(w, s.log, err)
			return
		}
		writeJSON(w, toRoundResponse(*rd))
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// active serve a rodada ativa, preferindo o cache Redis quando quente
func (s *Server) active(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.cache != nil {
		if rwm, ok := s.cache.Get(r.Context()); ok {
			writeJSON(w, toActiveResponse(rwm))
			return
		}
	}

	rwm, err := s.repo.GetActive(r.Context())
	if err != nil {
		if errors.Is(err, repo.ErrNoActiveRound) {
			writeJSON(w, map[string]string{"message": "no active round"})
			return
		}
		writeErr(w, s.log, err)
		return
	}

	if s.cache != nil {
		if err := s.cache.Set(r.Context(), rwm); err != nil {
			s.log.Warn("round cache set failed", zap.Error(err))
		}
	}
	writeJSON(w, toActiveResponse(rwm))
}

// roundAction trata /rounds/{id}/activate, /close, /results e /matches
func (s *Server) roundAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/rounds/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		http.Error(w, "roundId required", http.StatusBadRequest)
		return
	}
	roundID, action := parts[0], parts[1]

	switch action {
	case "activate":
		closed, err := s.repo.Activate(r.Context(), roundID)
		if err != nil {
			writeErr(w, s.log, err)
			return
		}
		s.invalidate(r.Context())
		// A rodada deslocada foi encerrada junto: emite round_closed pra cada
		// uma, é isso que dispara a liquidação dos tickets pendentes dela
		if s.publ != nil {
			for _, cid := range closed {
				if err := s.publ.PublishRoundClosed(r.Context(), events.RoundClosed{RoundID: cid, Ts: time.Now()}); err != nil {
					s.log.Error("publish round_closed", zap.String("roundId", cid), zap.Error(err))
				}
			}
		}
		writeJSON(w, map[string]string{"roundId": roundID, "status": "active"})

	case "close":
		if err := s.repo.Close(r.Context(), roundID); err != nil {
			writeErr(w, s.log, err)
			return
		}
		s.invalidate(r.Context())
		// Evento best-effort: o worker de liquidação consome e liquida os tickets
		if s.publ != nil {
			if err := s.publ.PublishRoundClosed(r.Context(), events.RoundClosed{RoundID: roundID, Ts: time.Now()}); err != nil {
				s.log.Error("publish round_closed", zap.String("roundId", roundID), zap.Error(err))
			}
		}
		writeJSON(w, map[string]string{"roundId": roundID, "status": "closed"})

	case "results":
		var req dto.ResultsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		for _, rw := range req.Results {
			if err := s.repo.SetResult(r.Context(), rw.MatchID, rw.Outcome); err != nil {
				writeErr(w, s.log, err)
				return
			}
		}
		s.invalidate(r.Context())
		writeJSON(w, map[string]string{"message": "results updated"})

	case "matches":
		var req dto.AddMatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Home == "" || req.Away == "" {
			http.Error(w, "home and away required", http.StatusBadRequest)
			return
		}
		m, err := s.repo.AddMatch(r.Context(), roundID, req.Home, req.Away, req.ScheduledTime)
		if err != nil {
			writeErr(w, s.log, err)
			return
		}
		s.invalidate(r.Context())
		writeJSON(w, dto.MatchResponse{ID: m.ID, Home: m.Home, Away: m.Away, ScheduledTime: m.ScheduledTime})

	default:
		http.Error(w, "unknown action", http.StatusNotFound)
	}
}

func (s *Server) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("round cache invalidate failed", zap.Error(err))
	}
}

func toRoundResponse(r repo.Round) dto.RoundResponse {
	return dto.RoundResponse{
		ID:            r.ID,
		Name:          r.Name,
		Status:        r.Status,
		PrizePoolKobo: r.PrizePoolKobo,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
	}
}

func toActiveResponse(rwm *repo.RoundWithMatches) dto.ActiveRoundResponse {
	out := dto.ActiveRoundResponse{Round: toRoundResponse(rwm.Round)}
	for _, m := range rwm.Matches {
		out.Matches = append(out.Matches, dto.MatchResponse{
			ID:            m.ID,
			Home:          m.Home,
			Away:          m.Away,
			ScheduledTime: m.ScheduledTime,
			Result:        m.Result,
		})
	}
	return out
}

func writeErr(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, repo.ErrRoundClosed):
		http.Error(w, "round closed", http.StatusConflict)
	case errors.Is(err, repo.ErrInvalidResult):
		http.Error(w, "invalid result", http.StatusBadRequest)
	case errors.Is(err, context.DeadlineExceeded):
		http.Error(w, "operation timed out; retry", http.StatusServiceUnavailable)
	default:
		log.Error("rounds op failed", zap.Error(err))
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
