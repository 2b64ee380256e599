// internal/ledger/memory.go
package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryLedger is an in-process Ledger keeping balances in a map. It backs the
// engine tests and the standalone (no-postgres) server mode.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[uuid.UUID]uint64

	// creditFailures injects a per-account error on credit, for exercising
	// settlement atomicity in tests.
	creditFailures map[uuid.UUID]error
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances:       make(map[uuid.UUID]uint64),
		creditFailures: make(map[uuid.UUID]error),
	}
}

// SetBalance seeds an account balance.
func (m *MemoryLedger) SetBalance(account uuid.UUID, amount uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[account] = amount
}

// Balance returns the current balance of account (zero if never seen).
func (m *MemoryLedger) Balance(account uuid.UUID) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[account]
}

// FailCreditsTo makes every future credit to account fail with err, until
// called again with a nil err.
func (m *MemoryLedger) FailCreditsTo(account uuid.UUID, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.creditFailures, account)
		return
	}
	m.creditFailures[account] = err
}

func (m *MemoryLedger) Debit(ctx context.Context, account uuid.UUID, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bal := m.balances[account]
	if bal < amount {
		return fmt.Errorf("debit %d from %s: %w", amount, account, ErrInsufficientFunds)
	}
	m.balances[account] = bal - amount
	return nil
}

func (m *MemoryLedger) Credit(ctx context.Context, account uuid.UUID, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.creditFailures[account]; err != nil {
		return err
	}
	m.balances[account] += amount
	return nil
}

// CreditAll applies every transfer or none: injected failures are checked
// before any balance is touched.
func (m *MemoryLedger) CreditAll(ctx context.Context, transfers []Transfer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range transfers {
		if err := m.creditFailures[t.Account]; err != nil {
			return err
		}
	}
	for _, t := range transfers {
		m.balances[t.Account] += t.Amount
	}
	return nil
}
