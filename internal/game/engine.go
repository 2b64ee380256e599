// internal/game/engine.go
package game

import (
	"time"

	"github.com/google/uuid"
	"github.com/stakering/stakering/internal/ledger"
)

// Rules are the fixed economic parameters of the engine. They are read at
// construction and never change for the life of the process.
type Rules struct {
	// MinimumStake is the uniform stake every player locks, in the token's
	// smallest unit.
	MinimumStake uint64
	// FeePercent is the house cut taken off the pool at settlement, 0..100.
	FeePercent uint64
	// ExpirationWindow is how long after creation a game may accept stakes.
	ExpirationWindow time.Duration
	// FeeRecipient receives the fee, the rounding remainder, and forfeited pools.
	FeeRecipient uuid.UUID
}

// Engine drives the game lifecycle state machine: slot accounting, stake
// bookkeeping, settlement arithmetic, and expiration refunds. Who may invoke
// which transition is decided by the caller (see internal/accessgate); the
// engine itself is agnostic to caller identity.
type Engine struct {
	Rules    Rules
	Registry *Registry
	Ledger   ledger.Ledger

	// RecordFn receives every transition record; see events.go.
	RecordFn RecordFn
}

func NewEngine(l ledger.Ledger, rules Rules) *Engine {
	return &Engine{
		Rules:    rules,
		Registry: NewRegistry(),
		Ledger:   l,
	}
}

// Create opens a new game with playerCount slots and returns its id.
func (e *Engine) Create(playerCount int, now time.Time) (uint64, error) {
	if playerCount < 2 {
		return 0, ErrInvalidPlayerCount
	}
	g := e.Registry.create(playerCount, now)

	ev := record(EventGameCreated, g.ID, now)
	ev.Payload = map[string]interface{}{"player_count": playerCount}
	e.emit([]Event{ev})
	return g.ID, nil
}

// Snapshot returns the current state of a game, or ErrNotFound.
func (e *Engine) Snapshot(gameID uint64) (Snapshot, error) {
	g, err := e.Registry.lookup(gameID)
	if err != nil {
		return Snapshot{}, err
	}
	return g.Snapshot(), nil
}

// IsParticipant reports whether account has staked in the given game.
func (e *Engine) IsParticipant(gameID uint64, account uuid.UUID) (bool, error) {
	g, err := e.Registry.lookup(gameID)
	if err != nil {
		return false, err
	}
	return g.HasParticipant(account), nil
}
