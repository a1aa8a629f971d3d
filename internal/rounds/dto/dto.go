package dto

import (
	"time"

	"github.com/premierpredict/jackpot-core/internal/rounds/repo"
)

type CreateRoundRequest struct {
	Name          string     `json:"name"`
	PrizePoolKobo *int64     `json:"prize_pool_kobo,omitempty"`
	StartTime     *time.Time `json:"start_time,omitempty"`
	EndTime       *time.Time `json:"end_time,omitempty"`
}

type AddMatchRequest struct {
	Home          string     `json:"home"`
	Away          string     `json:"away"`
	ScheduledTime *time.Time `json:"scheduled_time,omitempty"`
}

type ResultsRequest struct {
	Results []repo.ResultWrite `json:"results"`
}

type RoundResponse struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Status        string     `json:"status"`
	PrizePoolKobo *int64     `json:"prize_pool_kobo,omitempty"`
	StartTime     *time.Time `json:"start_time,omitempty"`
	EndTime       *time.Time `json:"end_time,omitempty"`
}

type MatchResponse struct {
	ID            string     `json:"id"`
	Home          string     `json:"home"`
	Away          string     `json:"away"`
	ScheduledTime *time.Time `json:"scheduled_time,omitempty"`
	Result        string     `json:"result,omitempty"`
}

type ActiveRoundResponse struct {
	Round   RoundResponse   `json:"round"`
	Matches []MatchResponse `json:"matches"`
}
