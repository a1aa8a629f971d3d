package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/premierpredict/jackpot-core/internal/settlement/repo"
	"github.com/premierpredict/jackpot-core/internal/shared/metrics"
	"github.com/premierpredict/jackpot-core/pkg/contracts/events"
)

// Store é a parte do repositório de liquidação que o serviço usa.
type Store interface {
	Settle(ctx context.Context, ticketID string) (*repo.Outcome, bool, error)
	PendingTicketIDs(ctx context.Context, roundID string) ([]string, error)
}

// Publisher emite ticket_settled para consumidores downstream (ex.: premiação).
type Publisher interface {
	PublishTicketSettled(ctx context.Context, e events.TicketSettled) error
}

// Service aplica a liquidação e emite o evento correspondente
// O pagamento de prêmio não acontece aqui: é consumidor downstream do veredito
type Service struct {
	log   *zap.Logger
	store Store
	publ  Publisher
}

func New(log *zap.Logger, store Store, publ Publisher) *Service {
	return &Service{log: log, store: store, publ: publ}
}

// Settle liquida um ticket; idempotente em reinvocações
func (s *Service) Settle(ctx context.Context, ticketID string) (*repo.Outcome, error) {
	out, alreadySettled, err := s.store.Settle(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if alreadySettled {
		return out, nil
	}

	metrics.Settlements.WithLabelValues(out.Verdict).Inc()
	s.log.Info("ticket settled",
		zap.String("ticketId", out.TicketID),
		zap.String("verdict", out.Verdict),
	)

	if s.publ != nil {
		if perr := s.publ.PublishTicketSettled(ctx, events.TicketSettled{
			TicketID:  out.TicketID,
			AccountID: out.AccountID,
			RoundID:   out.RoundID,
			Verdict:   out.Verdict,
			Ts:        time.Now(),
		}); perr != nil {
			s.log.Warn("publish ticket_settled", zap.String("ticketId", out.TicketID), zap.Error(perr))
		}
	}

	return out, nil
}

// SettleRound liquida todos os tickets pendentes de uma rodada encerrada
func (s *Service) SettleRound(ctx context.Context, roundID string) (int, error) {
	ids, err := s.store.PendingTicketIDs(ctx, roundID)
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, id := range ids {
		if _, err := s.Settle(ctx, id); err != nil {
			return settled, err
		}
		settled++
	}
	return settled, nil
}
