// internal/game/events.go
package game

import (
	"time"

	"github.com/google/uuid"
)

// EventType is an enum-like type for transition records emitted by the engine.
type EventType string

const (
	EventGameCreated   EventType = "game_created"   // (gameId, playerCount)
	EventStakePlaced   EventType = "stake_placed"   // (gameId, account, amount)
	EventGameActivated EventType = "game_activated" // (gameId, totalStake)
	EventGameSettled   EventType = "game_settled"   // (gameId, rewards, fee, remainder)
	EventGameForfeited EventType = "game_forfeited" // (gameId, totalStake)
	EventGameExpired   EventType = "game_expired"   // (gameId, refunds)
	EventGameCompleted EventType = "game_completed" // (gameId) terminal marker
)

// Event is one transition record. Every state change emits at least one;
// settlement paths additionally emit a terminal game_completed record.
type Event struct {
	Type      EventType              `json:"type"`
	GameID    uint64                 `json:"game_id"`
	Account   *uuid.UUID             `json:"account,omitempty"`
	Amount    uint64                 `json:"amount,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

// RecordFn receives every emitted Event. If nil, records are dropped. The
// engine calls it after the game lock is released, so a recorder may query
// snapshots but must not assume it observes the game mid-transition.
type RecordFn func(ev Event)

// emit fans the collected records out to the configured recorder.
func (e *Engine) emit(events []Event) {
	if e.RecordFn == nil {
		return
	}
	for _, ev := range events {
		e.RecordFn(ev)
	}
}

func record(t EventType, gameID uint64, now time.Time) Event {
	return Event{Type: t, GameID: gameID, Timestamp: now.Unix()}
}
