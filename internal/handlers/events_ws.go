// internal/handlers/events_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/stakering/stakering/internal/game"
)

// EventHub fans transition records out to subscribed websocket watchers.
// Watchers are read-only; anything they send is ignored.
type EventHub struct {
	logger *logrus.Logger
	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
}

func NewEventHub(logger *logrus.Logger) *EventHub {
	return &EventHub{
		logger: logger,
		conns:  make(map[*websocket.Conn]struct{}),
	}
}

func (h *EventHub) add(c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = struct{}{}
}

func (h *EventHub) remove(c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, c)
}

// Broadcast sends one transition record to every connected watcher. A watcher
// that cannot be written to is dropped; the engine never blocks on a slow
// subscriber for more than the write timeout.
func (h *EventHub) Broadcast(ev game.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Errorf("failed to marshal event %s: %v", ev.Type, err)
		return
	}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := c.Write(ctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			h.logger.Debugf("dropping slow event watcher: %v", err)
			h.remove(c)
			c.Close(websocket.StatusPolicyViolation, "write failed")
		}
	}
}

// EventsWSHandler upgrades the connection and streams every transition record
// (creations, stakes, activations, settlements, expirations) until the client
// goes away.
func (s *Server) EventsWSHandler(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{"events"},
		OriginPatterns: []string{"*"}, // Adjust for production security.
	})
	if err != nil {
		s.Logger.Warnf("WebSocket accept error on events feed: %v", err)
		return
	}
	s.Logger.Infof("event watcher connected from %s", r.RemoteAddr)

	s.Hub.add(c)
	defer func() {
		s.Hub.remove(c)
		c.Close(websocket.StatusNormalClosure, "bye")
	}()

	// Drain the read side so pings are answered; watchers have nothing to say.
	for {
		if _, _, err := c.Read(r.Context()); err != nil {
			s.Logger.Infof("event watcher disconnected: %v", err)
			return
		}
	}
}
