// internal/accessgate/gate_test.go
package accessgate

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	admin := uuid.New()
	player := uuid.New()
	g := NewStaticGate([]uuid.UUID{admin})

	assert.NoError(t, Authorize(g, player, false))
	assert.NoError(t, Authorize(g, admin, true))
	assert.ErrorIs(t, Authorize(g, player, true), ErrNotAdministrator)

	g.Pause()
	// pause trumps role: even the admin is rejected while paused
	assert.ErrorIs(t, Authorize(g, admin, true), ErrPaused)
	assert.ErrorIs(t, Authorize(g, player, false), ErrPaused)

	g.Unpause()
	assert.NoError(t, Authorize(g, player, false))
}
