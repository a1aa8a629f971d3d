package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	rrepo "github.com/premierpredict/jackpot-core/internal/rounds/repo"
	"github.com/premierpredict/jackpot-core/internal/ticket/dto"
	"github.com/premierpredict/jackpot-core/internal/ticket/repo"
	"github.com/premierpredict/jackpot-core/internal/ticket/service"
	wrepo "github.com/premierpredict/jackpot-core/internal/wallet/repo"
)

// Placer é a superfície do serviço de apostas usada pelo handler.
type Placer interface {
	PlaceBet(ctx context.Context, accountID, roundID string, selections []repo.Selection) (*repo.Ticket, error)
}

// Reader lê tickets já persistidos.
type Reader interface {
	Get(ctx context.Context, ticketID string) (*repo.Ticket, []repo.Selection, error)
	ListByAccount(ctx context.Context, accountID string) ([]repo.Ticket, error)
	ListPendingAndWon(ctx context.Context) ([]repo.Ticket, error)
}

type Server struct {
	log    *zap.Logger
	placer Placer
	reader Reader
}

func NewServer(log *zap.Logger, placer Placer, reader Reader) *Server {
	return &Server{log: log, placer: placer, reader: reader}
}

// Register adiciona as rotas de tickets ao mux compartilhado da API
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/tickets", s.tickets)    // POST aposta; GET ?accountId= histórico, sem param lista admin
	mux.HandleFunc("/tickets/", s.getTicket) // GET /tickets/{id}
}

func (s *Server) tickets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.placeBet(w, r)
	case http.MethodGet:
		s.listTickets(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.AccountID == "" || req.RoundID == "" || len(req.Selections) == 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	selections := make([]repo.Selection, 0, len(req.Selections))
	for _, sel := range req.Selections {
		selections = append(selections, repo.Selection{
			MatchID:          sel.MatchID,
			PredictedOutcome: sel.PredictedOutcome,
		})
	}

	t, err := s.placer.PlaceBet(r.Context(), req.AccountID, req.RoundID, selections)
	if err != nil {
		writeErr(w, s.log, err)
		return
	}

	writeJSON(w, dto.PlaceBetResponse{TicketID: t.ID, Reference: t.Reference, Status: t.Status})
}

func (s *Server) listTickets(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("accountId")

	var (
		list []repo.Ticket
		err  error
	)
	if accountID != "" {
		list, err = s.reader.ListByAccount(r.Context(), accountID)
	} else {
		// visão do admin: pendentes e premiados
		list, err = s.reader.ListPendingAndWon(r.Context())
	}
	if err != nil {
		writeErr(w, s.log, err)
		return
	}

	out := make([]dto.TicketSummary, 0, len(list))
	for _, t := range list {
		out = append(out, dto.TicketSummary{
			TicketID:  t.ID,
			AccountID: t.AccountID,
			RoundID:   t.RoundID,
			Verdict:   t.Status,
			CreatedAt: t.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, out)
}

func (s *Server) getTicket(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/tickets/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "ticketId required", http.StatusBadRequest)
		return
	}

	t, sels, err := s.reader.Get(r.Context(), id)
	if err != nil {
		writeErr(w, s.log, err)
		return
	}

	resp := dto.TicketResponse{
		TicketID:  t.ID,
		AccountID: t.AccountID,
		RoundID:   t.RoundID,
		StakeKobo: t.StakeKobo,
		Verdict:   t.Status,
	}
	for _, sel := range sels {
		resp.Selections = append(resp.Selections, dto.SelectionResult{
			MatchID:          sel.MatchID,
			PredictedOutcome: sel.PredictedOutcome,
			Correct:          sel.Correct,
		})
	}
	writeJSON(w, resp)
}

// writeErr traduz a taxonomia de erros da aposta para HTTP
// Erros de seleção/saldo/tempo voltam precisos; falha de infra vira 503 genérico
func writeErr(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSelections):
		http.Error(w, "invalid selections", http.StatusBadRequest)
	case errors.Is(err, service.ErrSelectionMismatch):
		http.Error(w, "selection does not belong to round", http.StatusConflict)
	case errors.Is(err, service.ErrRoundNotActive):
		http.Error(w, "round not active", http.StatusConflict)
	case errors.Is(err, service.ErrRoundClosed):
		http.Error(w, "round closed", http.StatusConflict)
	case errors.Is(err, wrepo.ErrInsufficientFunds):
		http.Error(w, "insufficient funds", http.StatusConflict)
	case errors.Is(err, repo.ErrNotFound), errors.Is(err, rrepo.ErrNotFound), errors.Is(err, wrepo.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, context.DeadlineExceeded):
		http.Error(w, "operation timed out; retry", http.StatusServiceUnavailable)
	default:
		log.Error("ticket op failed", zap.Error(err))
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
