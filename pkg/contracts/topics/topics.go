package topics

const (
	// Tickets
	TicketPlaced  = "ticket_placed"
	TicketSettled = "ticket_settled"

	// Rodadas
	RoundClosed = "round_closed"

	// Pagamentos
	DepositCredited = "deposit_credited"

	// DLQs
	RoundClosedDLQ = "round_closed_dlq"
)
