package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/premierpredict/jackpot-core/internal/shared/metrics"
	"github.com/premierpredict/jackpot-core/internal/wallet/dto"
	"github.com/premierpredict/jackpot-core/internal/wallet/repo"
)

// Repo define a interface de operações de carteira usadas pelo handler HTTP
type Repo interface {
	CreateAccount(ctx context.Context, username string) (string, error)
	GetBalance(ctx context.Context, accountID string) (int64, error)
	ListTransactions(ctx context.Context, accountID string, limit int) ([]repo.Txn, error)
	RequestWithdrawal(ctx context.Context, accountID string, amount int64, bankName, accountNumber string) (*repo.Withdrawal, error)
	ApproveWithdrawal(ctx context.Context, withdrawalID string) error
	RejectWithdrawal(ctx context.Context, withdrawalID string) error
	ListWithdrawals(ctx context.Context) ([]repo.Withdrawal, error)
}

// Server expõe endpoints HTTP de carteira e saques
type Server struct {
	log  *zap.Logger
	repo Repo
}

// NewServer instancia o servidor HTTP de wallet
func NewServer(log *zap.Logger, repo Repo) *Server { return &Server{log: log, repo: repo} }

// Register adiciona as rotas de carteira ao mux compartilhado da API
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/accounts", s.createAccount)        // POST
	mux.HandleFunc("/wallet", s.getBalance)             // GET ?accountId=...
	mux.HandleFunc("/wallet/transactions", s.listTxns)  // GET ?accountId=...
	mux.HandleFunc("/withdrawals", s.withdrawals)       // POST cria, GET lista (admin)
	mux.HandleFunc("/withdrawals/", s.withdrawalAction) // POST /withdrawals/{id}/approve|reject
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Username == "" {
		http.Error(w, "username required", http.StatusBadRequest)
		return
	}
	id, err := s.repo.CreateAccount(r.Context(), req.Username)
	if err != nil {
		s.log.Error("create account", zap.Error(err))
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, dto.AccountResponse{AccountID: id})
}

func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	accountID := r.URL.Query().Get("accountId")
	if accountID == "" {
		http.Error(w, "accountId required", http.StatusBadRequest)
		return
	}
	bal, err := s.repo.GetBalance(r.Context(), accountID)
	if err != nil {
		writeErr(w, s.log, err)
		return
	}
	writeJSON(w, dto.BalanceResponse{AccountID: accountID, BalanceKobo: bal})
}

func (s *Server) listTxns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	accountID := r.URL.Query().Get("accountId")
	if accountID == "" {
		http.Error(w, "accountId required", http.StatusBadRequest)
		return
	}
	txns, err := s.repo.ListTransactions(r.Context(), accountID, 50)
	if err != nil {
		writeErr(w, s.log, err)
		return
	}
	out := make([]dto.TxnResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, dto.TxnResponse{
			DeltaKobo: t.DeltaKobo,
			Kind:      t.Kind,
			Reference: t.Reference,
			CreatedAt: t.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, out)
}

func (s *Server) withdrawals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := s.repo.ListWithdrawals(r.Context())
		if err != nil {
			writeErr(w, s.log, err)
			return
		}
		out := make([]dto.WithdrawalListItem, 0, len(list))
		for _, wd := range list {
			out = append(out, dto.WithdrawalListItem{
				WithdrawalID:  wd.ID,
				AccountID:     wd.AccountID,
				AmountKobo:    wd.AmountKobo,
				BankName:      wd.BankName,
				AccountNumber: wd.AccountNumber,
				Status:        wd.Status,
				CreatedAt:     wd.CreatedAt.Format(time.RFC3339),
			})
		}
		writeJSON(w, out)
	case http.MethodPost:
		var req dto.WithdrawalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.AccountID == "" || req.AmountKobo <= 0 || req.BankName == "" || req.AccountNumber == "" {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		wd, err := s.repo.RequestWithdrawal(r.Context(), req.AccountID, req.AmountKobo, req.BankName, req.AccountNumber)
		if err != nil {
			writeErr(w, s.log, err)
			return
		}
		metrics.WithdrawalRequests.Inc()
		writeJSON(w, dto.WithdrawalResponse{WithdrawalID: wd.ID, AmountKobo: wd.AmountKobo, Status: wd.Status})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// withdrawalAction trata /withdrawals/{id}/approve e /withdrawals/{id}/reject
func (s *Server) withdrawalAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/withdrawals/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		http.Error(w, "withdrawalId required", http.StatusBadRequest)
		return
	}
	id, action := parts[0], parts[1]

	var err error
	switch action {
	case "approve":
		err = s.repo.ApproveWithdrawal(r.Context(), id)
	case "reject":
		err = s.repo.RejectWithdrawal(r.Context(), id)
	default:
		http.Error(w, "unknown action", http.StatusNotFound)
		return
	}
	if err != nil {
		writeErr(w, s.log, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// writeErr mapeia erros do repositório para status HTTP
func writeErr(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, repo.ErrInsufficientFunds):
		http.Error(w, "insufficient funds", http.StatusConflict)
	case errors.Is(err, context.DeadlineExceeded):
		http.Error(w, "operation timed out; retry", http.StatusServiceUnavailable)
	default:
		log.Error("wallet op failed", zap.Error(err))
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
	}
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
