// internal/ledger/ledger.go
package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrInsufficientFunds is returned by Debit when the account cannot cover the amount.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Transfer is one credit leg of a batch: Amount token units to Account.
type Transfer struct {
	Account uuid.UUID `json:"account"`
	Amount  uint64    `json:"amount"`
}

// Ledger is the external account collaborator. Amounts are unsigned integers
// in the token's smallest unit. A failed call must leave every balance
// untouched; CreditAll in particular is all-or-nothing so that a settlement
// can never be partially paid.
//
// Implementations must not call back into the game engine: the engine holds
// the per-game lock across these calls.
type Ledger interface {
	Debit(ctx context.Context, account uuid.UUID, amount uint64) error
	Credit(ctx context.Context, account uuid.UUID, amount uint64) error
	CreditAll(ctx context.Context, transfers []Transfer) error
}
