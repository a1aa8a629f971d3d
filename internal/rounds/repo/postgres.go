package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Postgres implementa o registro de rodadas e jogos em banco
// Status de rodada e resultado de jogo só mudam por aqui
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrNotFound      = errors.New("not found")
	ErrRoundClosed   = errors.New("round closed")
	ErrNoActiveRound = errors.New("no active round")
	ErrInvalidResult = errors.New("invalid result")
)

// Resultados possíveis de um jogo.
var validOutcomes = map[string]bool{"A": true, "B": true, "C": true}

// CreateRound registra uma nova rodada em estado open
func (p *Postgres) CreateRound(ctx context.Context, name string, prizePool *int64, start, end *time.Time) (*Round, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO rounds(id, name, status, prize_pool_kobo, start_time, end_time)
		VALUES($1,$2,'open',$3,$4,$5)`,
		id, name, prizePool, start, end)
	if err != nil {
		return nil, err
	}
	return &Round{ID: id, Name: name, Status: "open", PrizePoolKobo: prizePool, StartTime: start, EndTime: end}, nil
}

// AddMatch adiciona um jogo a uma rodada ainda não encerrada
func (p *Postgres) AddMatch(ctx context.Context, roundID, home, away string, scheduled *time.Time) (*Match, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	status, err := lockRound(ctx, tx, roundID)
	if err != nil {
		return nil, err
	}
	if status == "closed" {
		return nil, ErrRoundClosed
	}

	id := uuid.NewString()
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO matches(id, round_id, home, away, scheduled_time, result)
		VALUES($1,$2,$3,$4,$5,'')`,
		id, roundID, home, away, scheduled); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return &Match{ID: id, RoundID: roundID, Home: home, Away: away, ScheduledTime: scheduled}, nil
}

// Activate torna a rodada alvo a única ativa do sistema
// Encerra qualquer outra rodada ativa na mesma transação e devolve os ids
// encerrados: o chamador emite round_closed pra cada um, senão os tickets
// pendentes da rodada deslocada nunca seriam liquidados
// Rodada já encerrada não volta: exige criar uma rodada nova
func (p *Postgres) Activate(ctx context.Context, roundID string) ([]string, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	status, err := lockRound(ctx, tx, roundID)
	if err != nil {
		return nil, err
	}
	if status == "closed" {
		return nil, ErrRoundClosed
	}

	// Fecha a rodada ativa anterior, se houver. Rodadas open ficam como estão.
	rows, err := tx.QueryContext(ctx,
		`UPDATE rounds SET status='closed', end_time=NOW() WHERE status='active' AND id<>$1 RETURNING id`, roundID)
	if err != nil {
		return nil, err
	}
	var closed []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		closed = append(closed, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE rounds SET status='active', start_time=COALESCE(start_time, NOW()) WHERE id=$1`, roundID); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return closed, nil
}

// Close encerra a rodada em definitivo
// Idempotente: fechar de novo não tem efeito
func (p *Postgres) Close(ctx context.Context, roundID string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	status, err := lockRound(ctx, tx, roundID)
	if err != nil {
		return err
	}
	if status == "closed" {
		return tx.Commit()
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE rounds SET status='closed', end_time=NOW() WHERE id=$1`, roundID); err != nil {
		return err
	}
	return tx.Commit()
}

// SetResult grava o resultado oficial de um jogo
// Rejeita rodada encerrada; regravar o mesmo jogo vale o último valor
func (p *Postgres) SetResult(ctx context.Context, matchID, outcome string) error {
	if !validOutcomes[outcome] {
		return ErrInvalidResult
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var roundStatus string
	err = tx.QueryRowContext(ctx, `
		SELECT r.status
		FROM matches m JOIN rounds r ON r.id = m.round_id
		WHERE m.id=$1
		FOR UPDATE OF r`, matchID).Scan(&roundStatus)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if roundStatus == "closed" {
		return ErrRoundClosed
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE matches SET result=$1 WHERE id=$2`, outcome, matchID); err != nil {
		return err
	}
	return tx.Commit()
}

// GetActive retorna a única rodada ativa com seus jogos
func (p *Postgres) GetActive(ctx context.Context) (*RoundWithMatches, error) {
	var r Round
	err := p.db.QueryRowContext(ctx, `
		SELECT id, name, status, prize_pool_kobo, start_time, end_time, created_at
		FROM rounds
		WHERE status='active'
		ORDER BY created_at DESC
		LIMIT 1`).Scan(&r.ID, &r.Name, &r.Status, &r.PrizePoolKobo, &r.StartTime, &r.EndTime, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNoActiveRound
	}
	if err != nil {
		return nil, err
	}

	matches, err := p.matchesOf(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	return &RoundWithMatches{Round: r, Matches: matches}, nil
}

// GetRound retorna uma rodada pelo id
func (p *Postgres) GetRound(ctx context.Context, roundID string) (*Round, error) {
	var r Round
	err := p.db.QueryRowContext(ctx, `
		SELECT id, name, status, prize_pool_kobo, start_time, end_time, created_at
		FROM rounds WHERE id=$1`, roundID).
		Scan(&r.ID, &r.Name, &r.Status, &r.PrizePoolKobo, &r.StartTime, &r.EndTime, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// MatchIDs retorna os ids dos jogos da rodada, para validação de seleções
func (p *Postgres) MatchIDs(ctx context.Context, roundID string) (map[string]bool, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id FROM matches WHERE round_id=$1`, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// ListRounds retorna todas as rodadas, mais recentes primeiro
func (p *Postgres) ListRounds(ctx context.Context) ([]Round, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, status, prize_pool_kobo, start_time, end_time, created_at
		FROM rounds
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Round
	for rows.Next() {
		var r Round
		if err := rows.Scan(&r.ID, &r.Name, &r.Status, &r.PrizePoolKobo, &r.StartTime, &r.EndTime, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *Postgres) matchesOf(ctx context.Context, roundID string) ([]Match, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, round_id, home, away, scheduled_time, result
		FROM matches
		WHERE round_id=$1
		ORDER BY scheduled_time NULLS LAST, id`, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ID, &m.RoundID, &m.Home, &m.Away, &m.ScheduledTime, &m.Result); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// lockRound trava a linha da rodada e devolve o status corrente
func lockRound(ctx context.Context, tx *sql.Tx, roundID string) (string, error) {
	var status string
	err := tx.QueryRowContext(ctx,
		`SELECT status FROM rounds WHERE id=$1 FOR UPDATE`, roundID).Scan(&status)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return status, err
}
