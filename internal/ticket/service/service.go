package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	rrepo "github.com/premierpredict/jackpot-core/internal/rounds/repo"
	"github.com/premierpredict/jackpot-core/internal/shared/metrics"
	"github.com/premierpredict/jackpot-core/internal/ticket/repo"
	wrepo "github.com/premierpredict/jackpot-core/internal/wallet/repo"
	"github.com/premierpredict/jackpot-core/pkg/contracts/events"
)

var (
	ErrInvalidSelections = errors.New("invalid selections")
	ErrRoundNotActive    = errors.New("round not active")
	ErrRoundClosed       = errors.New("round closed")
	ErrSelectionMismatch = errors.New("selection does not belong to round")
)

var validOutcomes = map[string]bool{"A": true, "B": true, "C": true}

// Store é a parte do repositório de tickets que o serviço usa.
type Store interface {
	Create(ctx context.Context, accountID, roundID string, stake int64, selections []repo.Selection) (*repo.Ticket, error)
}

// Rounds é a visão do registro de rodadas necessária para validar a aposta.
type Rounds interface {
	GetRound(ctx context.Context, roundID string) (*rrepo.Round, error)
	MatchIDs(ctx context.Context, roundID string) (map[string]bool, error)
}

// Publisher emite o evento ticket_placed após o commit.
type Publisher interface {
	PublishTicketPlaced(ctx context.Context, e events.TicketPlaced) error
}

// Service implementa o fluxo de aposta: valida, debita e persiste
// Stake fixo e N seleções exatas, variante estrita
type Service struct {
	log        *zap.Logger
	store      Store
	rounds     Rounds
	publ       Publisher
	stakeKobo  int64
	selections int // N
}

func New(log *zap.Logger, store Store, rounds Rounds, publ Publisher, stakeKobo int64, selections int) *Service {
	return &Service{
		log:        log,
		store:      store,
		rounds:     rounds,
		publ:       publ,
		stakeKobo:  stakeKobo,
		selections: selections,
	}
}

// PlaceBet valida e cria o ticket debitando o stake fixo
// Toda validação acontece antes de qualquer escrita; falha de infraestrutura
// durante a transação desfaz tudo, sem ticket órfão nem débito perdido
func (s *Service) PlaceBet(ctx context.Context, accountID, roundID string, selections []repo.Selection) (*repo.Ticket, error) {
	// (a) forma das seleções: N exatas, resultados válidos, sem jogo repetido
	if len(selections) != s.selections {
		metrics.TicketsRejected.WithLabelValues("invalid_selections").Inc()
		return nil, ErrInvalidSelections
	}
	seen := make(map[string]bool, len(selections))
	for _, sel := range selections {
		if sel.MatchID == "" || !validOutcomes[sel.PredictedOutcome] || seen[sel.MatchID] {
			metrics.TicketsRejected.WithLabelValues("invalid_selections").Inc()
			return nil, ErrInvalidSelections
		}
		seen[sel.MatchID] = true
	}

	// (b) rodada alvo precisa estar ativa
	round, err := s.rounds.GetRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	switch round.Status {
	case "active":
	case "closed":
		metrics.TicketsRejected.WithLabelValues("round_closed").Inc()
		return nil, ErrRoundClosed
	default:
		metrics.TicketsRejected.WithLabelValues("round_not_active").Inc()
		return nil, ErrRoundNotActive
	}

	// (c) cada jogo selecionado pertence à rodada
	ids, err := s.rounds.MatchIDs(ctx, roundID)
	if err != nil {
		return nil, err
	}
	for _, sel := range selections {
		if !ids[sel.MatchID] {
			metrics.TicketsRejected.WithLabelValues("selection_mismatch").Inc()
			return nil, ErrSelectionMismatch
		}
	}

	// Unidade atômica: débito + ticket + seleções
	t, err := s.store.Create(ctx, accountID, roundID, s.stakeKobo, selections)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrRoundNotActive):
			// A rodada fechou entre a validação e o commit; a aposta perde a corrida
			metrics.TicketsRejected.WithLabelValues("round_not_active").Inc()
			return nil, ErrRoundNotActive
		case errors.Is(err, wrepo.ErrInsufficientFunds):
			metrics.TicketsRejected.WithLabelValues("insufficient_funds").Inc()
		}
		return nil, err
	}

	metrics.TicketsPlaced.Inc()

	if s.publ != nil {
		if perr := s.publ.PublishTicketPlaced(ctx, events.TicketPlaced{
			TicketID:  t.ID,
			AccountID: t.AccountID,
			RoundID:   t.RoundID,
			StakeKobo: t.StakeKobo,
			Reference: t.Reference,
			TsUnixMs:  time.Now().UnixMilli(),
		}); perr != nil {
			s.log.Warn("publish ticket_placed", zap.String("ticketId", t.ID), zap.Error(perr))
		}
	}

	return t, nil
}
