package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/premierpredict/jackpot-core/internal/payment/gateway"
	"github.com/premierpredict/jackpot-core/internal/shared/metrics"
	"github.com/premierpredict/jackpot-core/pkg/contracts/events"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrNotConfirmed     = errors.New("payment not confirmed by gateway")
)

// Store é a parte do repositório de pagamentos que o serviço usa.
type Store interface {
	CreatePending(ctx context.Context, reference, accountID string, amount int64) error
	Reconcile(ctx context.Context, reference string, amount int64, accountID string) (credited bool, balance int64, err error)
}

// Verifier consulta o gateway sobre o status real de uma transação.
type Verifier interface {
	VerifyTransaction(ctx context.Context, reference string) (*gateway.VerifyData, error)
}

// Publisher emite deposit_credited quando um crédito acontece de fato.
type Publisher interface {
	PublishDepositCredited(ctx context.Context, e events.DepositCredited) error
}

// Service reconcilia notificações do gateway com o ledger
// Dois caminhos independentes (verify e webhook) desembocam no mesmo Reconcile,
// que credita no máximo uma vez por reference
type Service struct {
	log      *zap.Logger
	store    Store
	verifier Verifier
	publ     Publisher
	secret   string
}

func New(log *zap.Logger, store Store, verifier Verifier, publ Publisher, secret string) *Service {
	return &Service{log: log, store: store, verifier: verifier, publ: publ, secret: secret}
}

// Result é o desfecho de uma reconciliação.
type Result struct {
	Credited    bool  // false = AlreadyCredited, desfecho definido e não erro
	BalanceKobo int64 // saldo após (ou no momento de) o crédito
}

// InitiateDeposit registra a intenção de depósito e gera o reference
// O reference viaja ao gateway e volta pelos dois caminhos de notificação
func (s *Service) InitiateDeposit(ctx context.Context, accountID string, amount int64) (string, error) {
	reference := "dep_" + uuid.NewString()
	if err := s.store.CreatePending(ctx, reference, accountID, amount); err != nil {
		return "", err
	}
	return reference, nil
}

// VerifyAndCredit é o caminho síncrono: o pagador voltou do redirect
// Consulta o gateway e, se confirmado, reconcilia com o valor confirmado
func (s *Service) VerifyAndCredit(ctx context.Context, reference string) (*Result, error) {
	data, err := s.verifier.VerifyTransaction(ctx, reference)
	if err != nil {
		return nil, err
	}
	if data.Status != "success" {
		return nil, ErrNotConfirmed
	}
	return s.reconcile(ctx, data.Reference, data.AmountKobo, data.AccountID)
}

// webhookPayload é o envelope enviado pelo gateway no push assíncrono.
type webhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Metadata  struct {
			AccountID string `json:"account_id"`
		} `json:"metadata"`
	} `json:"data"`
}

// HandleWebhook é o caminho assíncrono: push at-least-once do gateway
// Assinatura inválida é rejeitada antes de qualquer acesso a estado
func (s *Service) HandleWebhook(ctx context.Context, rawBody []byte, signature string) (*Result, error) {
	if !ValidSignature(s.secret, rawBody, signature) {
		s.log.Warn("webhook signature mismatch")
		return nil, ErrInvalidSignature
	}

	var payload webhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return nil, err
	}
	if payload.Event != "charge.success" {
		// outros eventos não interessam ao core; reconhece e descarta
		return &Result{Credited: false}, nil
	}

	return s.reconcile(ctx, payload.Data.Reference, payload.Data.Amount, payload.Data.Metadata.AccountID)
}

func (s *Service) reconcile(ctx context.Context, reference string, amount int64, accountID string) (*Result, error) {
	credited, balance, err := s.store.Reconcile(ctx, reference, amount, accountID)
	if err != nil {
		return nil, err
	}

	if !credited {
		metrics.DuplicateNotifications.Inc()
		s.log.Info("duplicate payment notification", zap.String("reference", reference))
		return &Result{Credited: false, BalanceKobo: balance}, nil
	}

	metrics.DepositsCredited.Inc()
	s.log.Info("deposit credited",
		zap.String("reference", reference),
		zap.Int64("amount_kobo", amount),
	)

	if s.publ != nil {
		if perr := s.publ.PublishDepositCredited(ctx, events.DepositCredited{
			Reference:   reference,
			AccountID:   accountID,
			AmountKobo:  amount,
			BalanceKobo: balance,
			TsUnixMs:    time.Now().UnixMilli(),
		}); perr != nil {
			s.log.Warn("publish deposit_credited", zap.String("reference", reference), zap.Error(perr))
		}
	}

	return &Result{Credited: true, BalanceKobo: balance}, nil
}
