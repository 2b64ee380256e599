// internal/game/stake.go
package game

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StakeReceipt reports an accepted stake. Activated is true when this stake
// filled the last slot and flipped the game to Active.
type StakeReceipt struct {
	GameID    uint64    `json:"game_id"`
	Account   uuid.UUID `json:"account"`
	Amount    uint64    `json:"amount"`
	Activated bool      `json:"activated"`
}

// Stake locks the uniform minimum stake from account into the game.
//
// Preconditions are checked in a fixed order and the first failure is
// reported: game open, a slot free, account not already in, deadline not
// passed. The ledger debit happens before any state is mutated, so a failed
// debit leaves the game exactly as it was. The n-th accepted stake
// (n = requested player count) activates the game, never earlier or later.
func (e *Engine) Stake(ctx context.Context, gameID uint64, account uuid.UUID, now time.Time) (StakeReceipt, error) {
	g, err := e.Registry.lookup(gameID)
	if err != nil {
		return StakeReceipt{}, err
	}

	g.mu.Lock()
	events, receipt, err := e.stakeLocked(ctx, g, account, now)
	g.mu.Unlock()
	if err != nil {
		return StakeReceipt{}, err
	}
	e.emit(events)
	return receipt, nil
}

func (e *Engine) stakeLocked(ctx context.Context, g *Game, account uuid.UUID, now time.Time) ([]Event, StakeReceipt, error) {
	// An Active game is by definition full, and that is the more useful
	// error for a racing staker; Completed (or anything else) is simply
	// no longer accepting.
	if g.status == StatusActive {
		return nil, StakeReceipt{}, ErrGameFull
	}
	if g.status != StatusOpen {
		return nil, StakeReceipt{}, ErrGameNotOpen
	}
	if g.slotsRemaining <= 0 {
		return nil, StakeReceipt{}, ErrGameFull
	}
	if _, staked := g.stakeOf[account]; staked {
		return nil, StakeReceipt{}, ErrAlreadyStaked
	}
	if g.expired(now, e.Rules.ExpirationWindow) {
		return nil, StakeReceipt{}, ErrGameExpired
	}

	amount := e.Rules.MinimumStake
	if err := e.Ledger.Debit(ctx, account, amount); err != nil {
		return nil, StakeReceipt{}, transferErr("debit", err)
	}

	g.participants = append(g.participants, account)
	g.stakeOf[account] = amount
	g.totalStake += amount
	g.slotsRemaining--

	acct := account
	ev := record(EventStakePlaced, g.ID, now)
	ev.Account = &acct
	ev.Amount = amount
	events := []Event{ev}

	activated := false
	if g.slotsRemaining == 0 {
		g.status = StatusActive
		activated = true
		act := record(EventGameActivated, g.ID, now)
		act.Amount = g.totalStake
		events = append(events, act)
	}

	receipt := StakeReceipt{GameID: g.ID, Account: account, Amount: amount, Activated: activated}
	return events, receipt, nil
}
