// internal/handlers/game.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stakering/stakering/internal/accessgate"
)

// CreateGameHandler opens a new game. Administrator only.
func (s *Server) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	caller, err := callerAccount(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	if err := accessgate.Authorize(s.Gate, caller, true); err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		PlayerCount int `json:"player_count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad create request payload", http.StatusBadRequest)
		return
	}

	gameID, err := s.Engine.Create(req.PlayerCount, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"game_id": gameID})
}

// GameHandler parses routes under /game/{id} and dispatches to the matching
// operation: stake, settle, forfeit, expire, participant lookup, or snapshot.
func (s *Server) GameHandler(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/game/"), "/")
	if len(parts) < 1 || parts[0] == "" {
		http.Error(w, "missing game id", http.StatusBadRequest)
		return
	}
	gameID, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.handleGameInfo(w, gameID)
		return
	}

	switch parts[1] {
	case "participant":
		if len(parts) == 3 && r.Method == http.MethodGet {
			s.handleIsParticipant(w, gameID, parts[2])
			return
		}
	case "stake":
		if r.Method == http.MethodPost {
			s.handleStake(w, r, gameID)
			return
		}
	case "settle":
		if r.Method == http.MethodPost {
			s.handleSettle(w, r, gameID)
			return
		}
	case "forfeit":
		if r.Method == http.MethodPost {
			s.handleForfeit(w, r, gameID)
			return
		}
	case "expire":
		if r.Method == http.MethodPost {
			s.handleExpire(w, r, gameID)
			return
		}
	}
	http.Error(w, "unsupported game route", http.StatusNotFound)
}

func (s *Server) handleGameInfo(w http.ResponseWriter, gameID uint64) {
	snap, err := s.Engine.Snapshot(gameID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleIsParticipant(w http.ResponseWriter, gameID uint64, accountStr string) {
	account, err := uuid.Parse(accountStr)
	if err != nil {
		http.Error(w, "invalid account id", http.StatusBadRequest)
		return
	}
	ok, err := s.Engine.IsParticipant(gameID, account)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"participant": ok})
}

// handleStake locks the caller's stake into the game. Open to any
// authenticated account; refused while paused.
func (s *Server) handleStake(w http.ResponseWriter, r *http.Request, gameID uint64) {
	caller, err := callerAccount(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	if err := accessgate.Authorize(s.Gate, caller, false); err != nil {
		writeError(w, err)
		return
	}

	receipt, err := s.Engine.Stake(r.Context(), gameID, caller, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	s.Logger.WithFields(map[string]interface{}{
		"game_id": gameID, "account": caller, "activated": receipt.Activated,
	}).Info("stake accepted")
	writeJSON(w, http.StatusOK, receipt)
}

// handleSettle distributes the pool to declared winners. Administrator only.
func (s *Server) handleSettle(w http.ResponseWriter, r *http.Request, gameID uint64) {
	caller, err := callerAccount(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	if err := accessgate.Authorize(s.Gate, caller, true); err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Winners []uuid.UUID `json:"winners"`
		Scores  []uint64    `json:"scores"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad settle request payload", http.StatusBadRequest)
		return
	}

	receipt, err := s.Engine.Settle(r.Context(), gameID, req.Winners, req.Scores, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	if s.Audit != nil {
		if err := s.Audit.RecordSettlement(r.Context(), receipt); err != nil {
			s.Logger.Errorf("audit write for settled game %d failed: %v", gameID, err)
		}
	}
	writeJSON(w, http.StatusOK, receipt)
}

// handleForfeit seizes the pool to the fee recipient. Administrator only.
func (s *Server) handleForfeit(w http.ResponseWriter, r *http.Request, gameID uint64) {
	caller, err := callerAccount(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	if err := accessgate.Authorize(s.Gate, caller, true); err != nil {
		writeError(w, err)
		return
	}

	receipt, err := s.Engine.Forfeit(r.Context(), gameID, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	if s.Audit != nil {
		if err := s.Audit.RecordForfeit(r.Context(), receipt); err != nil {
			s.Logger.Errorf("audit write for forfeited game %d failed: %v", gameID, err)
		}
	}
	writeJSON(w, http.StatusOK, receipt)
}

// handleExpire refunds a game that never filled. Expiration is lazy: any
// authenticated caller may trigger it once the deadline has passed.
func (s *Server) handleExpire(w http.ResponseWriter, r *http.Request, gameID uint64) {
	caller, err := callerAccount(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	if err := accessgate.Authorize(s.Gate, caller, false); err != nil {
		writeError(w, err)
		return
	}

	receipt, err := s.Engine.Expire(r.Context(), gameID, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	if s.Audit != nil {
		if err := s.Audit.RecordExpiration(r.Context(), receipt); err != nil {
			s.Logger.Errorf("audit write for expired game %d failed: %v", gameID, err)
		}
	}
	writeJSON(w, http.StatusOK, receipt)
}
