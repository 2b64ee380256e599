// internal/game/settle.go
package game

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stakering/stakering/internal/ledger"
)

// Reward is one winner's share of the pool.
type Reward struct {
	Account uuid.UUID `json:"account"`
	Score   uint64    `json:"score"`
	Amount  uint64    `json:"amount"`
}

// PayoutReceipt reports a completed weighted settlement. Fee and Remainder
// both go to the fee recipient; Rewards sum to the pool minus Remainder.
type PayoutReceipt struct {
	GameID    uint64   `json:"game_id"`
	TotalPool uint64   `json:"total_pool"`
	Fee       uint64   `json:"fee"`
	Remainder uint64   `json:"remainder"`
	Rewards   []Reward `json:"rewards"`
}

// ForfeitReceipt reports a forfeiture: the whole pool seized to the fee recipient.
type ForfeitReceipt struct {
	GameID uint64 `json:"game_id"`
	Amount uint64 `json:"amount"`
}

// Settle distributes the pool of an active game across winners weighted by
// scores.
//
// fee = floor(totalStake * feePercent / 100), pool = totalStake - fee.
// Each reward is floor(pool * score / scoreSum), computed from the full pool
// and the full score sum for every term; no running remainder is carried
// between winners. Whatever floor division leaves over goes to the fee
// recipient together with the fee, never silently lost.
//
// All credits are applied as one atomic ledger batch. If the batch fails, no
// balance moves and the game stays Active, so the same call can be retried.
func (e *Engine) Settle(ctx context.Context, gameID uint64, winners []uuid.UUID, scores []uint64, now time.Time) (PayoutReceipt, error) {
	g, err := e.Registry.lookup(gameID)
	if err != nil {
		return PayoutReceipt{}, err
	}

	g.mu.Lock()
	events, receipt, err := e.settleLocked(ctx, g, winners, scores, now)
	g.mu.Unlock()
	if err != nil {
		return PayoutReceipt{}, err
	}
	e.emit(events)
	return receipt, nil
}

func (e *Engine) settleLocked(ctx context.Context, g *Game, winners []uuid.UUID, scores []uint64, now time.Time) ([]Event, PayoutReceipt, error) {
	if g.status != StatusActive {
		return nil, PayoutReceipt{}, ErrGameNotActive
	}
	if len(winners) == 0 || len(winners) != len(scores) {
		return nil, PayoutReceipt{}, ErrInvalidWinnerSet
	}
	seen := make(map[uuid.UUID]bool, len(winners))
	var scoreSum uint64
	for i, w := range winners {
		if scores[i] == 0 {
			return nil, PayoutReceipt{}, ErrZeroTotalScore
		}
		if seen[w] {
			return nil, PayoutReceipt{}, ErrInvalidWinnerSet
		}
		seen[w] = true
		if _, ok := g.stakeOf[w]; !ok {
			return nil, PayoutReceipt{}, ErrInvalidWinnerSet
		}
		scoreSum += scores[i]
	}

	fee := g.totalStake * e.Rules.FeePercent / 100
	pool := g.totalStake - fee

	rewards := make([]Reward, len(winners))
	var distributed uint64
	for i, w := range winners {
		amt := pool * scores[i] / scoreSum
		rewards[i] = Reward{Account: w, Score: scores[i], Amount: amt}
		distributed += amt
	}
	remainder := pool - distributed

	transfers := make([]ledger.Transfer, 0, len(rewards)+1)
	for _, rw := range rewards {
		transfers = append(transfers, ledger.Transfer{Account: rw.Account, Amount: rw.Amount})
	}
	transfers = append(transfers, ledger.Transfer{Account: e.Rules.FeeRecipient, Amount: fee + remainder})

	if err := e.Ledger.CreditAll(ctx, transfers); err != nil {
		return nil, PayoutReceipt{}, transferErr("credit", err)
	}

	receipt := PayoutReceipt{
		GameID:    g.ID,
		TotalPool: g.totalStake,
		Fee:       fee,
		Remainder: remainder,
		Rewards:   rewards,
	}
	g.status = StatusCompleted

	ev := record(EventGameSettled, g.ID, now)
	ev.Amount = pool
	rewardList := make([]map[string]interface{}, len(rewards))
	for i, rw := range rewards {
		rewardList[i] = map[string]interface{}{
			"account": rw.Account.String(),
			"score":   rw.Score,
			"amount":  rw.Amount,
		}
	}
	ev.Payload = map[string]interface{}{
		"fee":       fee,
		"remainder": remainder,
		"rewards":   rewardList,
	}
	events := []Event{ev, record(EventGameCompleted, g.ID, now)}
	return events, receipt, nil
}

// Forfeit seizes the entire pool of an active game to the fee recipient,
// with no winner computation.
func (e *Engine) Forfeit(ctx context.Context, gameID uint64, now time.Time) (ForfeitReceipt, error) {
	g, err := e.Registry.lookup(gameID)
	if err != nil {
		return ForfeitReceipt{}, err
	}

	g.mu.Lock()
	events, receipt, err := e.forfeitLocked(ctx, g, now)
	g.mu.Unlock()
	if err != nil {
		return ForfeitReceipt{}, err
	}
	e.emit(events)
	return receipt, nil
}

func (e *Engine) forfeitLocked(ctx context.Context, g *Game, now time.Time) ([]Event, ForfeitReceipt, error) {
	if g.status != StatusActive {
		return nil, ForfeitReceipt{}, ErrGameNotActive
	}

	if err := e.Ledger.Credit(ctx, e.Rules.FeeRecipient, g.totalStake); err != nil {
		return nil, ForfeitReceipt{}, transferErr("credit", err)
	}

	receipt := ForfeitReceipt{GameID: g.ID, Amount: g.totalStake}
	g.status = StatusCompleted

	ev := record(EventGameForfeited, g.ID, now)
	ev.Amount = receipt.Amount
	events := []Event{ev, record(EventGameCompleted, g.ID, now)}
	return events, receipt, nil
}
