// internal/ledger/memory_test.go
package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebitRequiresBalance(t *testing.T) {
	l := NewMemoryLedger()
	a := uuid.New()
	l.SetBalance(a, 50)

	err := l.Debit(context.Background(), a, 51)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, uint64(50), l.Balance(a), "failed debit must not move the balance")

	require.NoError(t, l.Debit(context.Background(), a, 50))
	assert.Equal(t, uint64(0), l.Balance(a))
}

func TestCreditAccumulates(t *testing.T) {
	l := NewMemoryLedger()
	a := uuid.New()

	require.NoError(t, l.Credit(context.Background(), a, 30))
	require.NoError(t, l.Credit(context.Background(), a, 12))
	assert.Equal(t, uint64(42), l.Balance(a))
}

func TestCreditAllIsAllOrNothing(t *testing.T) {
	l := NewMemoryLedger()
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	boom := errors.New("account frozen")
	l.FailCreditsTo(b, boom)

	err := l.CreditAll(context.Background(), []Transfer{
		{Account: a, Amount: 10},
		{Account: b, Amount: 20},
		{Account: c, Amount: 30},
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, uint64(0), l.Balance(a))
	assert.Equal(t, uint64(0), l.Balance(c))

	l.FailCreditsTo(b, nil)
	require.NoError(t, l.CreditAll(context.Background(), []Transfer{
		{Account: a, Amount: 10},
		{Account: b, Amount: 20},
		{Account: c, Amount: 30},
	}))
	assert.Equal(t, uint64(10), l.Balance(a))
	assert.Equal(t, uint64(20), l.Balance(b))
	assert.Equal(t, uint64(30), l.Balance(c))
}
