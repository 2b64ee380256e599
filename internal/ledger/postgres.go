// internal/ledger/postgres.go
package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLedger stores balances in an accounts table. Debit is a conditional
// UPDATE so the balance check and the deduction are one atomic statement;
// CreditAll runs inside a single transaction.
type PostgresLedger struct {
	Pool *pgxpool.Pool
}

func NewPostgresLedger(pool *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{Pool: pool}
}

func (p *PostgresLedger) Debit(ctx context.Context, account uuid.UUID, amount uint64) error {
	q := `
		UPDATE accounts SET balance = balance - $2
		WHERE id = $1 AND balance >= $2
	`
	tag, err := p.Pool.Exec(ctx, q, account, amount)
	if err != nil {
		return fmt.Errorf("debit %s: %w", account, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("debit %d from %s: %w", amount, account, ErrInsufficientFunds)
	}
	return nil
}

func (p *PostgresLedger) Credit(ctx context.Context, account uuid.UUID, amount uint64) error {
	if _, err := p.Pool.Exec(ctx, upsertCredit, account, amount); err != nil {
		return fmt.Errorf("credit %s: %w", account, err)
	}
	return nil
}

func (p *PostgresLedger) CreditAll(ctx context.Context, transfers []Transfer) error {
	err := pgx.BeginTxFunc(ctx, p.Pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, t := range transfers {
			if _, err := tx.Exec(ctx, upsertCredit, t.Account, t.Amount); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("credit batch of %d: %w", len(transfers), err)
	}
	return nil
}

const upsertCredit = `
	INSERT INTO accounts (id, balance) VALUES ($1, $2)
	ON CONFLICT (id) DO UPDATE SET balance = accounts.balance + $2
`
