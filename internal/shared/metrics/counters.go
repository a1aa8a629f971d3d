package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Contadores de negócio expostos via /metrics.
// Cada serviço incrementa só os que lhe dizem respeito.
var (
	TicketsPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jackpot_tickets_placed_total",
		Help: "Tickets criados com sucesso (stake debitado e seleções gravadas).",
	})

	TicketsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jackpot_tickets_rejected_total",
		Help: "Tentativas de aposta rejeitadas, por motivo.",
	}, []string{"reason"})

	DepositsCredited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jackpot_deposits_credited_total",
		Help: "Depósitos creditados na carteira (exatamente um por referência).",
	})

	DuplicateNotifications = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jackpot_duplicate_payment_notifications_total",
		Help: "Notificações de pagamento recebidas para referência já creditada.",
	})

	Settlements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jackpot_settlements_total",
		Help: "Tickets liquidados, por veredito.",
	}, []string{"verdict"})

	WithdrawalRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jackpot_withdrawal_requests_total",
		Help: "Pedidos de saque registrados (saldo já debitado).",
	})

	RoundClosedConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jackpot_round_closed_consumed_total",
		Help: "Eventos round_closed consumidos pelo settlement-worker.",
	})

	SettlementWorkerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jackpot_settlement_worker_errors_total",
		Help: "Falhas do settlement-worker, por fase (read, decode, settle).",
	}, []string{"stage"})
)
