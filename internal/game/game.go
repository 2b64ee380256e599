// internal/game/game.go
package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle stage of a game. Transitions are monotone:
// Open -> Active -> Completed, or Open -> Completed directly via expiration.
// Completed is terminal; no operation touches a completed game again.
type Status uint8

const (
	StatusOpen Status = iota
	StatusActive
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	}
	return "unknown"
}

// Game holds the entire state for a single staking game. It is never deleted;
// completed games remain in the registry as auditable records.
//
// mu serializes every mutating operation on this game, including the external
// ledger call the operation performs. That lock ownership is what makes a
// re-entrant mutation on the same game impossible mid-operation.
type Game struct {
	ID           uint64
	PlayerCount  int
	CreationTime time.Time

	mu             sync.Mutex
	status         Status
	totalStake     uint64
	slotsRemaining int

	// participants preserves stake order; stakeOf is the membership map.
	// Refunds enumerate participants directly, exactly as recorded at stake
	// time, never reconstructed from anything derived.
	participants []uuid.UUID
	stakeOf      map[uuid.UUID]uint64
}

func newGame(id uint64, playerCount int, now time.Time) *Game {
	return &Game{
		ID:             id,
		PlayerCount:    playerCount,
		CreationTime:   now,
		status:         StatusOpen,
		slotsRemaining: playerCount,
		stakeOf:        make(map[uuid.UUID]uint64, playerCount),
	}
}

// Snapshot is a read-only view of a game's current totals and status.
type Snapshot struct {
	ID             uint64    `json:"id"`
	PlayerCount    int       `json:"player_count"`
	TotalStake     uint64    `json:"total_stake"`
	SlotsRemaining int       `json:"slots_remaining"`
	Status         string    `json:"status"`
	CreationTime   time.Time `json:"creation_time"`
}

func (g *Game) snapshotLocked() Snapshot {
	return Snapshot{
		ID:             g.ID,
		PlayerCount:    g.PlayerCount,
		TotalStake:     g.totalStake,
		SlotsRemaining: g.slotsRemaining,
		Status:         g.status.String(),
		CreationTime:   g.CreationTime,
	}
}

// Snapshot returns the game's current state under its lock.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

// HasParticipant reports whether account has staked in this game.
func (g *Game) HasParticipant(account uuid.UUID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.stakeOf[account]
	return ok
}

// expired reports whether the staking deadline has passed as of now.
func (g *Game) expired(now time.Time, window time.Duration) bool {
	return !now.Before(g.CreationTime.Add(window))
}
