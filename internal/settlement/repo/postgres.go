package repo

import (
	"context"
	"database/sql"
	"errors"
)

// Postgres liquida tickets contra os resultados oficiais da rodada
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var ErrNotFound = errors.New("not found")

// SelectionScore é o desfecho de uma seleção após a liquidação.
type SelectionScore struct {
	MatchID          string
	PredictedOutcome string
	Result           string
	Correct          bool
}

// Outcome é o resultado completo de uma liquidação.
type Outcome struct {
	TicketID   string
	AccountID  string
	RoundID    string
	Verdict    string // won | lost
	Selections []SelectionScore
}

// Settle calcula e grava o veredito do ticket uma única vez
// Ticket já liquidado vira leitura pura: devolve o desfecho armazenado
// sem nenhuma escrita; alreadySettled diferencia os dois casos
func (p *Postgres) Settle(ctx context.Context, ticketID string) (out *Outcome, alreadySettled bool, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	var status, roundID, accountID string
	err = tx.QueryRowContext(ctx,
		`SELECT status, round_id, account_id FROM tickets WHERE id=$1 FOR UPDATE`, ticketID).
		Scan(&status, &roundID, &accountID)
	if err == sql.ErrNoRows {
		return nil, false, ErrNotFound
	}
	if err != nil {
		return nil, false, err
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT s.id, s.match_id, s.predicted_outcome, m.result, s.correct
		FROM selections s
		JOIN matches m ON m.id = s.match_id
		WHERE s.ticket_id=$1
		ORDER BY s.id`, ticketID)
	if err != nil {
		return nil, false, err
	}

	type row struct {
		selID     int64
		matchID   string
		predicted string
		result    string
		stored    sql.NullBool
	}
	var sels []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.selID, &r.matchID, &r.predicted, &r.result, &r.stored); err != nil {
			rows.Close()
			return nil, false, err
		}
		sels = append(sels, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	out = &Outcome{TicketID: ticketID, AccountID: accountID, RoundID: roundID}

	if status != "pending" {
		// já liquidado: devolve o desfecho congelado, sem regravar nada
		out.Verdict = status
		for _, r := range sels {
			out.Selections = append(out.Selections, SelectionScore{
				MatchID:          r.matchID,
				PredictedOutcome: r.predicted,
				Result:           r.result,
				Correct:          r.stored.Valid && r.stored.Bool,
			})
		}
		if err = tx.Commit(); err != nil {
			return nil, false, err
		}
		return out, true, nil
	}

	var flags []bool
	for _, r := range sels {
		c := score(r.predicted, r.result)
		flags = append(flags, c)
		out.Selections = append(out.Selections, SelectionScore{
			MatchID:          r.matchID,
			PredictedOutcome: r.predicted,
			Result:           r.result,
			Correct:          c,
		})
		if _, err = tx.ExecContext(ctx,
			`UPDATE selections SET correct=$1 WHERE id=$2`, c, r.selID); err != nil {
			return nil, false, err
		}
	}

	out.Verdict = verdict(flags)
	if _, err = tx.ExecContext(ctx,
		`UPDATE tickets SET status=$1 WHERE id=$2`, out.Verdict, ticketID); err != nil {
		return nil, false, err
	}

	if err = tx.Commit(); err != nil {
		return nil, false, err
	}
	return out, false, nil
}

// PendingTicketIDs lista os tickets ainda pendentes de uma rodada
func (p *Postgres) PendingTicketIDs(ctx context.Context, roundID string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id FROM tickets
		WHERE round_id=$1 AND status='pending'
		ORDER BY created_at`, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
