// internal/handlers/api_server.go
package handlers

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/stakering/stakering/internal/accessgate"
	"github.com/stakering/stakering/internal/game"
)

// Auditor persists terminal receipts. A failed audit write is logged, never
// surfaced to the caller: the funds already moved.
type Auditor interface {
	RecordSettlement(ctx context.Context, receipt game.PayoutReceipt) error
	RecordForfeit(ctx context.Context, receipt game.ForfeitReceipt) error
	RecordExpiration(ctx context.Context, receipt game.ExpirationReceipt) error
}

// Server wires the game engine, the access gate, and the event hub into an
// HTTP surface. Every mutating route consults the gate before dispatching to
// the engine; the engine itself never sees caller identity.
type Server struct {
	Logger *logrus.Logger
	Engine *game.Engine
	Gate   *accessgate.StaticGate
	Hub    *EventHub

	// AdminPasswordHash is the argon2id hash guarding /admin/login.
	// Empty disables password login.
	AdminPasswordHash string

	// Audit, when set, persists terminal receipts (settle/forfeit/expire).
	Audit Auditor
}

func NewServer(logger *logrus.Logger, engine *game.Engine, gate *accessgate.StaticGate) *Server {
	return &Server{
		Logger: logger,
		Engine: engine,
		Gate:   gate,
		Hub:    NewEventHub(logger),
	}
}

// Routes builds the route table. The caller wraps it with middleware.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/session", s.SessionHandler)
	mux.HandleFunc("/admin/login", s.AdminLoginHandler)
	mux.HandleFunc("/admin/pause", s.PauseHandler)
	mux.HandleFunc("/admin/unpause", s.UnpauseHandler)
	mux.HandleFunc("/admin/sweep", s.SweepHandler)

	mux.HandleFunc("/game/create", s.CreateGameHandler)
	mux.HandleFunc("/game/", s.GameHandler)

	mux.HandleFunc("/events/ws", s.EventsWSHandler)

	return mux
}
