// internal/game/expire.go
package game

import (
	"context"
	"time"

	"github.com/stakering/stakering/internal/ledger"
)

// ExpirationReceipt reports a refunded game. Refunds lists exactly the
// accounts that staked, in stake order, each with its recorded amount.
type ExpirationReceipt struct {
	GameID  uint64            `json:"game_id"`
	Refunds []ledger.Transfer `json:"refunds"`
}

// Expire closes a game that never filled its slots within the staking window
// and refunds every recorded participant its exact stake.
//
// Only Open games past their deadline qualify; anything else (still within
// the window, already Active, already Completed) is GameNotExpirable. The
// refund set is the participant list captured at stake time, enumerated
// directly. Refunds are one atomic batch: a failed batch leaves the game Open
// and expirable, so the call can be retried. A game with zero stakers refunds
// nothing and still completes.
func (e *Engine) Expire(ctx context.Context, gameID uint64, now time.Time) (ExpirationReceipt, error) {
	g, err := e.Registry.lookup(gameID)
	if err != nil {
		return ExpirationReceipt{}, err
	}

	g.mu.Lock()
	events, receipt, err := e.expireLocked(ctx, g, now)
	g.mu.Unlock()
	if err != nil {
		return ExpirationReceipt{}, err
	}
	e.emit(events)
	return receipt, nil
}

func (e *Engine) expireLocked(ctx context.Context, g *Game, now time.Time) ([]Event, ExpirationReceipt, error) {
	if g.status != StatusOpen || !g.expired(now, e.Rules.ExpirationWindow) {
		return nil, ExpirationReceipt{}, ErrGameNotExpirable
	}

	refunds := make([]ledger.Transfer, 0, len(g.participants))
	for _, p := range g.participants {
		refunds = append(refunds, ledger.Transfer{Account: p, Amount: g.stakeOf[p]})
	}

	if len(refunds) > 0 {
		if err := e.Ledger.CreditAll(ctx, refunds); err != nil {
			return nil, ExpirationReceipt{}, transferErr("credit", err)
		}
	}

	g.status = StatusCompleted

	ev := record(EventGameExpired, g.ID, now)
	ev.Amount = g.totalStake
	refundList := make([]map[string]interface{}, len(refunds))
	for i, t := range refunds {
		refundList[i] = map[string]interface{}{
			"account": t.Account.String(),
			"amount":  t.Amount,
		}
	}
	ev.Payload = map[string]interface{}{"refunds": refundList}
	events := []Event{ev, record(EventGameCompleted, g.ID, now)}

	return events, ExpirationReceipt{GameID: g.ID, Refunds: refunds}, nil
}
