// internal/database/audit.go
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/stakering/stakering/internal/game"
)

// RecordSettlement persists the terminal outcome of a settled game: the game
// row flips to completed and one payout row is written per winner. Everything
// goes in one transaction so the audit trail can never show a half-settled game.
func RecordSettlement(ctx context.Context, receipt game.PayoutReceipt) error {
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsertGame := `
			INSERT INTO games (id, status, total_stake, fee, remainder)
			VALUES ($1, 'completed', $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET status = 'completed', fee = $3, remainder = $4
		`
		if _, e := tx.Exec(ctx, upsertGame, receipt.GameID, receipt.TotalPool, receipt.Fee, receipt.Remainder); e != nil {
			return e
		}

		for _, rw := range receipt.Rewards {
			q := `
				INSERT INTO payouts (game_id, account, score, amount)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (game_id, account)
				DO UPDATE SET score = $3, amount = $4
			`
			if _, e := tx.Exec(ctx, q, receipt.GameID, rw.Account, rw.Score, rw.Amount); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx upsert settlement: %w", err)
	}
	return nil
}

// RecordForfeit persists a forfeited game outcome.
func RecordForfeit(ctx context.Context, receipt game.ForfeitReceipt) error {
	q := `
		INSERT INTO games (id, status, total_stake, forfeited)
		VALUES ($1, 'completed', $2, TRUE)
		ON CONFLICT (id) DO UPDATE SET status = 'completed', forfeited = TRUE
	`
	if _, err := DB.Exec(ctx, q, receipt.GameID, receipt.Amount); err != nil {
		return fmt.Errorf("upsert forfeit: %w", err)
	}
	return nil
}

// RecordExpiration persists an expired game and its refund list.
func RecordExpiration(ctx context.Context, receipt game.ExpirationReceipt) error {
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsertGame := `
			INSERT INTO games (id, status, expired)
			VALUES ($1, 'completed', TRUE)
			ON CONFLICT (id) DO UPDATE SET status = 'completed', expired = TRUE
		`
		if _, e := tx.Exec(ctx, upsertGame, receipt.GameID); e != nil {
			return e
		}

		for _, t := range receipt.Refunds {
			q := `
				INSERT INTO refunds (game_id, account, amount)
				VALUES ($1, $2, $3)
				ON CONFLICT (game_id, account) DO UPDATE SET amount = $3
			`
			if _, e := tx.Exec(ctx, q, receipt.GameID, t.Account, t.Amount); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx upsert expiration: %w", err)
	}
	return nil
}
