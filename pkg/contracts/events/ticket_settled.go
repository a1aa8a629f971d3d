package events

import "time"

// Evento emitido pelo settlement-worker após liquidar um ticket.
type TicketSettled struct {
	TicketID  string    `json:"ticketId"`
	AccountID string    `json:"accountId"`
	RoundID   string    `json:"roundId"`
	Verdict   string    `json:"verdict"` // "won" | "lost"
	Ts        time.Time `json:"ts"`
}
