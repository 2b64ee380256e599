// internal/handlers/session.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/stakering/stakering/internal/auth"
)

// SessionHandler issues a session token. With no body it mints a fresh
// account id (ephemeral player); a body may pin an existing account id so a
// returning player keeps its ledger balance.
func (s *Server) SessionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Account string `json:"account"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err.Error() != "EOF" {
		http.Error(w, "bad session request payload", http.StatusBadRequest)
		return
	}

	account := uuid.New()
	if req.Account != "" {
		parsed, err := uuid.Parse(req.Account)
		if err != nil {
			http.Error(w, "invalid account id", http.StatusBadRequest)
			return
		}
		account = parsed
	}

	token, err := auth.CreateToken(account)
	if err != nil {
		s.Logger.Errorf("failed to sign session token: %v", err)
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]string{
		"account": account.String(),
		"token":   token,
	})
}
