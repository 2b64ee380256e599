// internal/handlers/utils.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/stakering/stakering/internal/accessgate"
	"github.com/stakering/stakering/internal/auth"
	"github.com/stakering/stakering/internal/game"
)

// extractCookieToken extracts a named cookie value from the "Cookie" header, or returns empty if not found.
func extractCookieToken(cookieHeader, cookieName string) string {
	parts := strings.Split(cookieHeader, cookieName+"=")
	if len(parts) < 2 {
		return ""
	}
	token := parts[1]
	if idx := strings.Index(token, ";"); idx != -1 {
		token = token[:idx]
	}
	return token
}

// callerAccount authenticates the request's session token and returns the account id.
func callerAccount(r *http.Request) (uuid.UUID, error) {
	token := extractCookieToken(r.Header.Get("Cookie"), "auth_token")
	if token == "" {
		return uuid.Nil, errors.New("missing auth_token")
	}
	return auth.AuthenticateToken(token)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps engine and gate errors onto HTTP statuses so a caller can
// tell bad arguments, wrong game status, authorization failures, and ledger
// failures apart without parsing messages.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "internal"

	switch {
	case errors.Is(err, accessgate.ErrPaused):
		status, code = http.StatusServiceUnavailable, "paused"
	case errors.Is(err, accessgate.ErrNotAdministrator):
		status, code = http.StatusForbidden, "not_administrator"
	case errors.Is(err, game.ErrNotFound):
		status, code = http.StatusNotFound, "game_not_found"
	default:
		var ge *game.Error
		if errors.As(err, &ge) {
			code = ge.Code
			switch ge.Kind {
			case game.KindValidation:
				status = http.StatusBadRequest
			case game.KindState:
				status = http.StatusConflict
			case game.KindAuthorization:
				status = http.StatusForbidden
			case game.KindTransfer:
				status = http.StatusPaymentRequired
			}
		}
	}

	writeJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": err.Error(),
	})
}
