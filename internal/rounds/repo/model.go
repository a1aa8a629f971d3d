package repo

import "time"

// Round é o modelo persistido no Postgres.
// Transições de status são unidirecionais: open -> active -> closed.
type Round struct {
	ID            string
	Name          string
	Status        string // open | active | closed
	PrizePoolKobo *int64
	StartTime     *time.Time
	EndTime       *time.Time
	CreatedAt     time.Time
}

// Match pertence a exatamente uma rodada.
// Result fica vazio até o admin gravar o resultado oficial.
type Match struct {
	ID            string
	RoundID       string
	Home          string
	Away          string
	ScheduledTime *time.Time
	Result        string // "" | A | B | C
}

// RoundWithMatches agrega a rodada e seus jogos para o caminho de leitura.
type RoundWithMatches struct {
	Round   Round
	Matches []Match
}

// ResultWrite é uma gravação de resultado vinda do admin.
type ResultWrite struct {
	MatchID string `json:"match_id"`
	Outcome string `json:"outcome"`
}
