package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	wrepo "github.com/premierpredict/jackpot-core/internal/wallet/repo"
)

// Postgres persiste tickets e seleções
// A criação é uma unidade atômica junto com o débito do stake na carteira
type Postgres struct {
	db     *sql.DB
	wallet *wrepo.Postgres
}

func NewPostgres(db *sql.DB, wallet *wrepo.Postgres) *Postgres {
	return &Postgres{db: db, wallet: wallet}
}

var (
	ErrNotFound       = errors.New("not found")
	ErrRoundNotActive = errors.New("round not active")
)

// Create grava ticket e seleções debitando o stake, tudo ou nada
// Revalida o status da rodada sob lock compartilhado: um Close concorrente
// segura o FOR SHARE, então nunca nasce ticket contra rodada encerrada
func (p *Postgres) Create(ctx context.Context, accountID, roundID string, stake int64, selections []Selection) (*Ticket, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var roundStatus string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM rounds WHERE id=$1 FOR SHARE`, roundID).Scan(&roundStatus)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if roundStatus != "active" {
		return nil, ErrRoundNotActive
	}

	ticketID := uuid.NewString()
	reference := "stake:" + ticketID

	if _, err = p.wallet.DebitTx(ctx, tx, accountID, stake, wrepo.KindStakeDebit, reference); err != nil {
		return nil, err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO tickets(id, account_id, round_id, stake_kobo, reference, status)
		VALUES($1,$2,$3,$4,$5,'pending')`,
		ticketID, accountID, roundID, stake, reference); err != nil {
		return nil, err
	}

	for _, sel := range selections {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO selections(ticket_id, match_id, predicted_outcome)
			VALUES($1,$2,$3)`,
			ticketID, sel.MatchID, sel.PredictedOutcome); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return &Ticket{
		ID:        ticketID,
		AccountID: accountID,
		RoundID:   roundID,
		StakeKobo: stake,
		Reference: reference,
		Status:    "pending",
	}, nil
}

// Get retorna o ticket com suas seleções
func (p *Postgres) Get(ctx context.Context, ticketID string) (*Ticket, []Selection, error) {
	var t Ticket
	err := p.db.QueryRowContext(ctx, `
		SELECT id, account_id, round_id, stake_kobo, reference, status, created_at
		FROM tickets WHERE id=$1`, ticketID).
		Scan(&t.ID, &t.AccountID, &t.RoundID, &t.StakeKobo, &t.Reference, &t.Status, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	sels, err := p.selectionsOf(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	return &t, sels, nil
}

// ListByAccount retorna os tickets de uma conta, mais recentes primeiro
func (p *Postgres) ListByAccount(ctx context.Context, accountID string) ([]Ticket, error) {
	return p.list(ctx, `
		SELECT id, account_id, round_id, stake_kobo, reference, status, created_at
		FROM tickets WHERE account_id=$1
		ORDER BY created_at DESC`, accountID)
}

// ListPendingAndWon alimenta a visão do admin
func (p *Postgres) ListPendingAndWon(ctx context.Context) ([]Ticket, error) {
	return p.list(ctx, `
		SELECT id, account_id, round_id, stake_kobo, reference, status, created_at
		FROM tickets WHERE status IN ('pending','won')
		ORDER BY created_at DESC`)
}

func (p *Postgres) list(ctx context.Context, query string, args ...any) ([]Ticket, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Ticket
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.ID, &t.AccountID, &t.RoundID, &t.StakeKobo, &t.Reference, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (p *Postgres) selectionsOf(ctx context.Context, ticketID string) ([]Selection, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT match_id, predicted_outcome, correct
		FROM selections
		WHERE ticket_id=$1
		ORDER BY id`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Selection
	for rows.Next() {
		var s Selection
		if err := rows.Scan(&s.MatchID, &s.PredictedOutcome, &s.Correct); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
