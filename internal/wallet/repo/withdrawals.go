package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Withdrawal é um pedido de saque aguardando aprovação manual.
type Withdrawal struct {
	ID            string
	AccountID     string
	AmountKobo    int64
	BankName      string
	AccountNumber string
	Status        string // pending | paid | rejected
	CreatedAt     time.Time
}

// RequestWithdrawal debita o saldo imediatamente e registra o pedido
// Débito e pedido ficam na mesma transação: ou ambos existem, ou nenhum
func (p *Postgres) RequestWithdrawal(ctx context.Context, accountID string, amount int64, bankName, accountNumber string) (*Withdrawal, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	id := uuid.NewString()
	if _, err = p.DebitTx(ctx, tx, accountID, amount, KindWithdrawalDebit, "withdraw:"+id); err != nil {
		return nil, err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO withdrawals(id, account_id, amount_kobo, bank_name, account_number, status)
		VALUES($1,$2,$3,$4,$5,'pending')`,
		id, accountID, amount, bankName, accountNumber); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return &Withdrawal{
		ID:            id,
		AccountID:     accountID,
		AmountKobo:    amount,
		BankName:      bankName,
		AccountNumber: accountNumber,
		Status:        "pending",
	}, nil
}

// ApproveWithdrawal marca o pedido como pago
// Idempotente: pedido já tratado não muda de novo
func (p *Postgres) ApproveWithdrawal(ctx context.Context, withdrawalID string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	status, _, _, err := p.lockWithdrawal(ctx, tx, withdrawalID)
	if err != nil {
		return err
	}
	if status != "pending" {
		return nil
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE withdrawals SET status='paid', updated_at=NOW() WHERE id=$1`, withdrawalID); err != nil {
		return err
	}
	return tx.Commit()
}

// RejectWithdrawal rejeita o pedido e devolve o valor à carteira
// Estorno e mudança de status na mesma transação; idempotente por status
func (p *Postgres) RejectWithdrawal(ctx context.Context, withdrawalID string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	status, accountID, amount, err := p.lockWithdrawal(ctx, tx, withdrawalID)
	if err != nil {
		return err
	}
	if status != "pending" {
		return nil
	}

	if _, err = p.CreditTx(ctx, tx, accountID, amount, KindWithdrawalRefund, "withdraw-refund:"+withdrawalID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE withdrawals SET status='rejected', updated_at=NOW() WHERE id=$1`, withdrawalID); err != nil {
		return err
	}
	return tx.Commit()
}

// ListWithdrawals lista pedidos de saque para a visão do admin
func (p *Postgres) ListWithdrawals(ctx context.Context) ([]Withdrawal, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, account_id, amount_kobo, bank_name, account_number, status, created_at
		FROM withdrawals
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Withdrawal
	for rows.Next() {
		var w Withdrawal
		if err := rows.Scan(&w.ID, &w.AccountID, &w.AmountKobo, &w.BankName, &w.AccountNumber, &w.Status, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (p *Postgres) lockWithdrawal(ctx context.Context, tx *sql.Tx, id string) (status, accountID string, amount int64, err error) {
	err = tx.QueryRowContext(ctx, `
		SELECT status, account_id, amount_kobo
		FROM withdrawals WHERE id=$1
		FOR UPDATE`, id).Scan(&status, &accountID, &amount)
	if err == sql.ErrNoRows {
		return "", "", 0, ErrNotFound
	}
	return status, accountID, amount, err
}
