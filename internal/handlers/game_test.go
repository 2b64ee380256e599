// internal/handlers/game_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stakering/stakering/internal/accessgate"
	"github.com/stakering/stakering/internal/auth"
	"github.com/stakering/stakering/internal/game"
	"github.com/stakering/stakering/internal/ledger"
)

// setupTestServer wires a server over an in-memory ledger with one admin account.
func setupTestServer(t *testing.T) (*Server, *ledger.MemoryLedger, uuid.UUID) {
	t.Helper()
	auth.Init() // ephemeral keys, no DB needed

	l := ledger.NewMemoryLedger()
	engine := game.NewEngine(l, game.Rules{
		MinimumStake:     100,
		FeePercent:       5,
		ExpirationWindow: 7 * 24 * time.Hour,
		FeeRecipient:     uuid.New(),
	})

	admin := uuid.New()
	gate := accessgate.NewStaticGate([]uuid.UUID{admin})

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewServer(logger, engine, gate), l, admin
}

func doJSON(t *testing.T, s *Server, method, path string, account uuid.UUID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	token, err := auth.CreateToken(account)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	req.Header.Set("Cookie", "auth_token="+token)
	w := httptest.NewRecorder()
	s.Routes().ServeHTTP(w, req)
	return w
}

func TestCreateGameRequiresAdmin(t *testing.T) {
	s, _, admin := setupTestServer(t)

	w := doJSON(t, s, "POST", "/game/create", uuid.New(), `{"player_count":2}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, s, "POST", "/game/create", admin, `{"player_count":2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		GameID uint64 `json:"game_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	if resp.GameID != 0 {
		t.Fatalf("first game should get id 0, got %d", resp.GameID)
	}
}

func TestCreateGameRejectsBadPlayerCount(t *testing.T) {
	s, _, admin := setupTestServer(t)

	w := doJSON(t, s, "POST", "/game/create", admin, `{"player_count":1}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestStakeFlowOverHTTP(t *testing.T) {
	s, l, admin := setupTestServer(t)

	w := doJSON(t, s, "POST", "/game/create", admin, `{"player_count":2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("create failed: %d %s", w.Code, w.Body.String())
	}

	players := []uuid.UUID{uuid.New(), uuid.New()}
	for _, p := range players {
		l.SetBalance(p, 100)
	}

	for i, p := range players {
		w = doJSON(t, s, "POST", "/game/0/stake", p, "")
		if w.Code != http.StatusOK {
			t.Fatalf("stake %d failed: %d %s", i, w.Code, w.Body.String())
		}
	}

	// second stake from the same account conflicts
	l.SetBalance(players[0], 100)
	w = doJSON(t, s, "POST", "/game/0/stake", players[0], "")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate stake, got %d", w.Code)
	}

	// snapshot reflects activation
	w = doJSON(t, s, "GET", "/game/0", players[0], "")
	if w.Code != http.StatusOK {
		t.Fatalf("snapshot failed: %d", w.Code)
	}
	var snap game.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if snap.Status != "active" || snap.TotalStake != 200 {
		t.Fatalf("unexpected snapshot after filling: %+v", snap)
	}

	// participant query
	w = doJSON(t, s, "GET", fmt.Sprintf("/game/0/participant/%s", players[0]), players[0], "")
	var part struct {
		Participant bool `json:"participant"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &part); err != nil || !part.Participant {
		t.Fatalf("expected participant=true, got %s (err %v)", w.Body.String(), err)
	}

	// settle as admin
	body, _ := json.Marshal(map[string]interface{}{
		"winners": players,
		"scores":  []uint64{60, 40},
	})
	w = doJSON(t, s, "POST", "/game/0/settle", admin, string(body))
	if w.Code != http.StatusOK {
		t.Fatalf("settle failed: %d %s", w.Code, w.Body.String())
	}
	var receipt game.PayoutReceipt
	if err := json.Unmarshal(w.Body.Bytes(), &receipt); err != nil {
		t.Fatalf("failed to decode payout receipt: %v", err)
	}
	if receipt.Fee != 10 || receipt.Rewards[0].Amount != 114 {
		t.Fatalf("unexpected payout arithmetic: %+v", receipt)
	}
}

func TestStakeInsufficientFunds(t *testing.T) {
	s, _, admin := setupTestServer(t)
	doJSON(t, s, "POST", "/game/create", admin, `{"player_count":2}`)

	// account never funded
	w := doJSON(t, s, "POST", "/game/0/stake", uuid.New(), "")
	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402 for unfunded stake, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPausedSystemRejectsMutations(t *testing.T) {
	s, l, admin := setupTestServer(t)
	doJSON(t, s, "POST", "/game/create", admin, `{"player_count":2}`)

	w := doJSON(t, s, "POST", "/admin/pause", admin, "")
	if w.Code != http.StatusOK {
		t.Fatalf("pause failed: %d", w.Code)
	}

	player := uuid.New()
	l.SetBalance(player, 100)
	w = doJSON(t, s, "POST", "/game/0/stake", player, "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 while paused, got %d", w.Code)
	}

	// reads keep working while paused
	w = doJSON(t, s, "GET", "/game/0", player, "")
	if w.Code != http.StatusOK {
		t.Fatalf("snapshot should work while paused, got %d", w.Code)
	}

	doJSON(t, s, "POST", "/admin/unpause", admin, "")
	w = doJSON(t, s, "POST", "/game/0/stake", player, "")
	if w.Code != http.StatusOK {
		t.Fatalf("stake after unpause failed: %d %s", w.Code, w.Body.String())
	}
}

func TestSettleRequiresAdmin(t *testing.T) {
	s, l, admin := setupTestServer(t)
	doJSON(t, s, "POST", "/game/create", admin, `{"player_count":2}`)
	players := []uuid.UUID{uuid.New(), uuid.New()}
	for _, p := range players {
		l.SetBalance(p, 100)
		doJSON(t, s, "POST", "/game/0/stake", p, "")
	}

	body, _ := json.Marshal(map[string]interface{}{
		"winners": players, "scores": []uint64{1, 1},
	})
	w := doJSON(t, s, "POST", "/game/0/settle", players[0], string(body))
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for player settle, got %d", w.Code)
	}
}

func TestUnknownGameIs404(t *testing.T) {
	s, _, _ := setupTestServer(t)

	w := doJSON(t, s, "GET", "/game/99", uuid.New(), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown game, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSessionIssuesToken(t *testing.T) {
	s, _, _ := setupTestServer(t)

	req := httptest.NewRequest("POST", "/session", bytes.NewBufferString(""))
	w := httptest.NewRecorder()
	s.Routes().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("session failed: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Account string `json:"account"`
		Token   string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode session: %v", err)
	}
	got, err := auth.AuthenticateToken(resp.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if got.String() != resp.Account {
		t.Fatalf("token subject mismatch: %s vs %s", got, resp.Account)
	}
}
