// internal/handlers/admin.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/stakering/stakering/internal/accessgate"
	"github.com/stakering/stakering/internal/auth"
)

// AdminLoginHandler issues a session token for a configured administrator
// account after verifying the shared admin password against its argon2id hash.
func (s *Server) AdminLoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.AdminPasswordHash == "" {
		http.Error(w, "admin login disabled", http.StatusForbidden)
		return
	}

	var req struct {
		Account  string `json:"account"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad login payload", http.StatusBadRequest)
		return
	}
	account, err := uuid.Parse(req.Account)
	if err != nil {
		http.Error(w, "invalid account id", http.StatusBadRequest)
		return
	}
	if !s.Gate.IsAdministrator(account) {
		writeError(w, accessgate.ErrNotAdministrator)
		return
	}

	match, err := auth.ComparePasswordAndHash(req.Password, s.AdminPasswordHash)
	if err != nil {
		s.Logger.Errorf("admin password hash comparison failed: %v", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}
	if !match {
		http.Error(w, "wrong password", http.StatusForbidden)
		return
	}

	token, err := auth.CreateToken(account)
	if err != nil {
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]string{"account": account.String(), "token": token})
}

// PauseHandler stops every mutating operation until unpaused. Administrator only.
// Pause itself stays allowed while paused, otherwise unpause would be impossible.
func (s *Server) PauseHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}
	s.Gate.Pause()
	s.Logger.Warnf("system paused by %s", caller)
	writeJSON(w, http.StatusOK, map[string]bool{"paused": true})
}

// UnpauseHandler resumes mutating operations. Administrator only.
func (s *Server) UnpauseHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}
	s.Gate.Unpause()
	s.Logger.Warnf("system unpaused by %s", caller)
	writeJSON(w, http.StatusOK, map[string]bool{"paused": false})
}

// SweepHandler moves accumulated house funds (fees, remainders, forfeits) from
// the fee recipient to an administrator account. Thin ledger pass-through with
// no state-machine involvement. Administrator only.
func (s *Server) SweepHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}

	var req struct {
		To     uuid.UUID `json:"to"`
		Amount uint64    `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad sweep payload", http.StatusBadRequest)
		return
	}
	if req.Amount == 0 {
		http.Error(w, "amount must be positive", http.StatusBadRequest)
		return
	}

	house := s.Engine.Rules.FeeRecipient
	if err := s.Engine.Ledger.Debit(r.Context(), house, req.Amount); err != nil {
		writeError(w, err)
		return
	}
	if err := s.Engine.Ledger.Credit(r.Context(), req.To, req.Amount); err != nil {
		// put the debited amount back so a failed sweep moves nothing
		if cerr := s.Engine.Ledger.Credit(r.Context(), house, req.Amount); cerr != nil {
			s.Logger.Errorf("sweep rollback failed, %d stranded from %s: %v", req.Amount, house, cerr)
		}
		writeError(w, err)
		return
	}
	s.Logger.WithFields(map[string]interface{}{
		"by": caller, "to": req.To, "amount": req.Amount,
	}).Info("house sweep")
	writeJSON(w, http.StatusOK, map[string]interface{}{"to": req.To, "amount": req.Amount})
}

// requireAdmin authenticates the caller and runs the admin gate checks,
// writing the error response itself on failure.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return uuid.Nil, false
	}
	caller, err := callerAccount(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return uuid.Nil, false
	}
	if !s.Gate.IsAdministrator(caller) {
		writeError(w, accessgate.ErrNotAdministrator)
		return uuid.Nil, false
	}
	return caller, true
}
