package events

import "time"

// Evento emitido quando uma rodada é encerrada pelo admin.
// O settlement-worker consome este evento e liquida os tickets pendentes.
type RoundClosed struct {
	RoundID string    `json:"roundId"`
	Ts      time.Time `json:"ts"`
}
