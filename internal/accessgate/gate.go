// internal/accessgate/gate.go
package accessgate

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrPaused rejects every mutating call while the system is paused.
var ErrPaused = errors.New("system is paused")

// ErrNotAdministrator rejects administrator-only calls from other accounts.
var ErrNotAdministrator = errors.New("caller is not an administrator")

// Gate is the access-control collaborator consulted before dispatching any
// mutating operation. The game engine never sees it; gating happens at the
// call boundary.
type Gate interface {
	IsAdministrator(account uuid.UUID) bool
	IsPaused() bool
}

// StaticGate holds a fixed administrator set and a runtime pause flag.
type StaticGate struct {
	mu     sync.RWMutex
	admins map[uuid.UUID]bool
	paused bool
}

func NewStaticGate(admins []uuid.UUID) *StaticGate {
	m := make(map[uuid.UUID]bool, len(admins))
	for _, a := range admins {
		m[a] = true
	}
	return &StaticGate{admins: m}
}

func (g *StaticGate) IsAdministrator(account uuid.UUID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.admins[account]
}

func (g *StaticGate) IsPaused() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.paused
}

func (g *StaticGate) Pause() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paused = true
}

func (g *StaticGate) Unpause() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paused = false
}

// Authorize runs the standard pre-dispatch checks: pause first, then role.
// Pass admin=false for operations any caller may trigger.
func Authorize(g Gate, caller uuid.UUID, admin bool) error {
	if g.IsPaused() {
		return ErrPaused
	}
	if admin && !g.IsAdministrator(caller) {
		return ErrNotAdministrator
	}
	return nil
}
