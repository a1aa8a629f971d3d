package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Postgres implementa o ledger de carteira em banco
// Toda mutação de saldo passa por aqui; nenhum outro componente escreve em wallets
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
)

// Tipos de movimentação registrados no ledger.
const (
	KindStakeDebit       = "stake_debit"
	KindDepositCredit    = "deposit_credit"
	KindWithdrawalDebit  = "withdrawal_debit"
	KindWithdrawalRefund = "withdrawal_refund"
)

// Txn é um registro append-only do ledger.
type Txn struct {
	ID        int64
	AccountID string
	DeltaKobo int64
	Kind      string
	Reference string
	CreatedAt time.Time
}

// CreateAccount cria conta e carteira zerada na mesma transação
// A carteira nasce junto com a conta e nunca é removida
func (p *Postgres) CreateAccount(ctx context.Context, username string) (accountID string, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	accountID = uuid.NewString()
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO accounts(id, username) VALUES($1,$2)`,
		accountID, username); err != nil {
		return "", err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO wallets(id, account_id, balance_kobo, version) VALUES($1,$2,0,1)`,
		uuid.NewString(), accountID); err != nil {
		return "", err
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return accountID, nil
}

// GetBalance retorna o saldo atual da carteira do usuário
func (p *Postgres) GetBalance(ctx context.Context, accountID string) (int64, error) {
	var bal int64
	err := p.db.QueryRowContext(ctx,
		`SELECT balance_kobo FROM wallets WHERE account_id=$1`, accountID).Scan(&bal)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	return bal, err
}

// Credit abre a própria transação e credita a carteira
func (p *Postgres) Credit(ctx context.Context, accountID string, amount int64, kind, reference string) (int64, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	bal, err := p.CreditTx(ctx, tx, accountID, amount, kind, reference)
	if err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return bal, nil
}

// Debit abre a própria transação e debita a carteira
// Falha com ErrInsufficientFunds sem alterar nada
func (p *Postgres) Debit(ctx context.Context, accountID string, amount int64, kind, reference string) (int64, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	bal, err := p.DebitTx(ctx, tx, accountID, amount, kind, reference)
	if err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return bal, nil
}

// CreditTx credita dentro de uma transação já aberta pelo chamador
// Lock pessimista na linha da carteira; replay por reference vira no-op
func (p *Postgres) CreditTx(ctx context.Context, tx *sql.Tx, accountID string, amount int64, kind, reference string) (int64, error) {
	bal, replay, err := p.lockWallet(ctx, tx, accountID, reference)
	if err != nil {
		return 0, err
	}
	if replay {
		return bal, nil
	}

	newBalance := bal + amount
	if err := p.applyDelta(ctx, tx, accountID, newBalance, amount, kind, reference); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// DebitTx debita dentro de uma transação já aberta pelo chamador
// Verifica saldo sob lock antes de aplicar o delta
func (p *Postgres) DebitTx(ctx context.Context, tx *sql.Tx, accountID string, amount int64, kind, reference string) (int64, error) {
	bal, replay, err := p.lockWallet(ctx, tx, accountID, reference)
	if err != nil {
		return 0, err
	}
	if replay {
		return bal, nil
	}

	if bal < amount {
		return 0, ErrInsufficientFunds
	}

	newBalance := bal - amount
	if err := p.applyDelta(ctx, tx, accountID, newBalance, -amount, kind, reference); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// lockWallet trava a linha da carteira e detecta replay de reference
// A checagem roda depois do lock pra não correr com outra entrega da mesma notificação
func (p *Postgres) lockWallet(ctx context.Context, tx *sql.Tx, accountID, reference string) (balance int64, replay bool, err error) {
	err = tx.QueryRowContext(ctx,
		`SELECT balance_kobo FROM wallets WHERE account_id=$1 FOR UPDATE`, accountID).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, false, ErrNotFound
	}
	if err != nil {
		return 0, false, err
	}

	if reference != "" {
		var n int
		err = tx.QueryRowContext(ctx,
			`SELECT 1 FROM wallet_txns WHERE reference=$1`, reference).Scan(&n)
		if err == nil {
			return balance, true, nil
		}
		if err != sql.ErrNoRows {
			return 0, false, err
		}
	}
	return balance, false, nil
}

// applyDelta atualiza o saldo materializado e grava o registro do ledger na mesma transação
func (p *Postgres) applyDelta(ctx context.Context, tx *sql.Tx, accountID string, newBalance, delta int64, kind, reference string) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE wallets SET balance_kobo = $1, version = version + 1, updated_at = NOW() WHERE account_id=$2`,
		newBalance, accountID); err != nil {
		return err
	}

	var ref any
	if reference != "" {
		ref = reference
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO wallet_txns(account_id, delta_kobo, kind, reference) VALUES($1,$2,$3,$4)`,
		accountID, delta, kind, ref); err != nil {
		return err
	}
	return nil
}

// ListTransactions retorna o extrato do ledger, mais recente primeiro
func (p *Postgres) ListTransactions(ctx context.Context, accountID string, limit int) ([]Txn, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, account_id, delta_kobo, kind, COALESCE(reference,''), created_at
		FROM wallet_txns
		WHERE account_id=$1
		ORDER BY id DESC
		LIMIT $2`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Txn
	for rows.Next() {
		var t Txn
		if err := rows.Scan(&t.ID, &t.AccountID, &t.DeltaKobo, &t.Kind, &t.Reference, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
