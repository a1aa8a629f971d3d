package repo

import "time"

// Ticket é o modelo persistido no Postgres.
// Imutável após a criação, exceto status, gravado uma única vez na liquidação.
type Ticket struct {
	ID        string
	AccountID string
	RoundID   string
	StakeKobo int64
	Reference string
	Status    string // pending | won | lost
	CreatedAt time.Time
}

// Selection é o palpite do usuário para um jogo da rodada do ticket.
// Correct fica nil até a liquidação.
type Selection struct {
	MatchID          string
	PredictedOutcome string // A | B | C
	Correct          *bool
}
