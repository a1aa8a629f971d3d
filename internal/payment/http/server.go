package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/premierpredict/jackpot-core/internal/payment/dto"
	"github.com/premierpredict/jackpot-core/internal/payment/repo"
	"github.com/premierpredict/jackpot-core/internal/payment/service"
)

// Reconciler é a superfície do serviço de pagamentos usada pelos handlers.
type Reconciler interface {
	InitiateDeposit(ctx context.Context, accountID string, amount int64) (string, error)
	VerifyAndCredit(ctx context.Context, reference string) (*service.Result, error)
	HandleWebhook(ctx context.Context, rawBody []byte, signature string) (*service.Result, error)
}

type Server struct {
	log *zap.Logger
	svc Reconciler
}

func NewServer(log *zap.Logger, svc Reconciler) *Server {
	return &Server{log: log, svc: svc}
}

// Register adiciona as rotas de pagamento ao mux compartilhado da API
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/payments/initiate", s.initiate) // POST
	mux.HandleFunc("/payments/verify", s.verify)     // GET ?reference=...
	mux.HandleFunc("/paystack/webhook", s.webhook)   // POST, assinado
}

func (s *Server) initiate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.InitiateDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.AccountID == "" || req.AmountKobo <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	reference, err := s.svc.InitiateDeposit(r.Context(), req.AccountID, req.AmountKobo)
	if err != nil {
		s.log.Error("initiate deposit", zap.Error(err))
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, dto.InitiateDepositResponse{Reference: reference})
}

// verify é o retorno do pagador após o redirect do gateway
func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	reference := r.URL.Query().Get("reference")
	if reference == "" {
		http.Error(w, "reference required", http.StatusBadRequest)
		return
	}

	res, err := s.svc.VerifyAndCredit(r.Context(), reference)
	if err != nil {
		writePaymentErr(w, s.log, err)
		return
	}
	writeJSON(w, dto.ReconcileResponse{Credited: res.Credited, BalanceKobo: res.BalanceKobo})
}

// webhook recebe o push assíncrono do gateway
// Sempre responde 200 quando processou, pra entrega at-least-once parar de repetir
func (s *Server) webhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if _, err := s.svc.HandleWebhook(r.Context(), body, r.Header.Get("x-paystack-signature")); err != nil {
		writePaymentErr(w, s.log, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// writePaymentErr nunca devolve detalhe interno ao remetente externo
func writePaymentErr(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSignature):
		http.Error(w, "invalid signature", http.StatusUnauthorized)
	case errors.Is(err, repo.ErrUnknownReference), errors.Is(err, service.ErrNotConfirmed):
		log.Warn("payment notification rejected", zap.Error(err))
		http.Error(w, "not accepted", http.StatusBadRequest)
	case errors.Is(err, context.DeadlineExceeded):
		http.Error(w, "not accepted", http.StatusServiceUnavailable)
	default:
		log.Error("payment op failed", zap.Error(err))
		http.Error(w, "not accepted", http.StatusServiceUnavailable)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
