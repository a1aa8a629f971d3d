package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	wrepo "github.com/premierpredict/jackpot-core/internal/wallet/repo"
)

// Postgres guarda os pagamentos externos pendentes e executa a reconciliação
// A unicidade de reference no banco é a última defesa contra crédito duplo
type Postgres struct {
	db     *sql.DB
	wallet *wrepo.Postgres
}

func NewPostgres(db *sql.DB, wallet *wrepo.Postgres) *Postgres {
	return &Postgres{db: db, wallet: wallet}
}

var ErrUnknownReference = errors.New("unknown payment reference")

// PendingPayment é um depósito iniciado aguardando confirmação do gateway.
type PendingPayment struct {
	Reference     string
	AccountID     string
	RequestedKobo int64
	Status        string // pending | success
	CreatedAt     time.Time
}

// CreatePending registra a intenção de depósito antes do redirect ao gateway
func (p *Postgres) CreatePending(ctx context.Context, reference, accountID string, amount int64) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO pending_payments(reference, account_id, requested_kobo, status)
		VALUES($1,$2,$3,'pending')`,
		reference, accountID, amount)
	return err
}

// Reconcile credita a carteira no máximo uma vez por reference
// Chamada pelos dois caminhos de entrega (verify e webhook), em qualquer ordem,
// quantas vezes vierem: a primeira credita, as demais retornam credited=false
func (p *Postgres) Reconcile(ctx context.Context, reference string, amount int64, accountID string) (credited bool, balance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback()

	var owner, status string
	err = tx.QueryRowContext(ctx, `
		SELECT account_id, status FROM pending_payments
		WHERE reference=$1
		FOR UPDATE`, reference).Scan(&owner, &status)
	if err == sql.ErrNoRows {
		// Notificação sem depósito iniciado: callback forjado ou corrompido
		return false, 0, ErrUnknownReference
	}
	if err != nil {
		return false, 0, err
	}
	if accountID != "" && accountID != owner {
		return false, 0, ErrUnknownReference
	}

	if status == "success" {
		bal, err := p.wallet.GetBalance(ctx, owner)
		if err != nil {
			return false, 0, err
		}
		if err = tx.Commit(); err != nil {
			return false, 0, err
		}
		return false, bal, nil
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE pending_payments SET status='success' WHERE reference=$1`, reference); err != nil {
		return false, 0, err
	}

	bal, err := p.wallet.CreditTx(ctx, tx, owner, amount, wrepo.KindDepositCredit, reference)
	if err != nil {
		return false, 0, err
	}

	if err = tx.Commit(); err != nil {
		return false, 0, err
	}
	return true, bal, nil
}

// GetPending retorna o registro de um depósito pelo reference
func (p *Postgres) GetPending(ctx context.Context, reference string) (*PendingPayment, error) {
	var pp PendingPayment
	err := p.db.QueryRowContext(ctx, `
		SELECT reference, account_id, requested_kobo, status, created_at
		FROM pending_payments WHERE reference=$1`, reference).
		Scan(&pp.Reference, &pp.AccountID, &pp.RequestedKobo, &pp.Status, &pp.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrUnknownReference
	}
	if err != nil {
		return nil, err
	}
	return &pp, nil
}
