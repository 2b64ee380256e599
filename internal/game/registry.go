// internal/game/registry.go
package game

import (
	"sync"
	"time"
)

// Registry owns the mapping from game id to Game and allocates ids
// monotonically starting at 0. Ids are never reused and games are never
// removed. The registry lock covers only the map and the counter; each game
// carries its own lock for state transitions.
type Registry struct {
	mu     sync.Mutex
	nextID uint64
	games  map[uint64]*Game
}

func NewRegistry() *Registry {
	return &Registry{
		games: make(map[uint64]*Game),
	}
}

// create allocates the next id and registers a fresh open game.
func (r *Registry) create(playerCount int, now time.Time) *Game {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := newGame(r.nextID, playerCount, now)
	r.games[g.ID] = g
	r.nextID++
	return g
}

// lookup returns the game for id. Unknown ids are reported explicitly; the
// registry never hands back a zero-valued record for an id it did not create.
func (r *Registry) lookup(id uint64) (*Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return g, nil
}

// Count returns how many games have been created so far.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.games)
}
