// internal/game/settle_test.go
package game

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettleWeightedPayout(t *testing.T) {
	// totalStake 200, fee 5% => fee 10, pool 190
	// scores 60/40 => floor(190*60/100)=114, floor(190*40/100)=76, sum 190 exactly
	feeRecipient := uuid.New()
	e, l, mr := setupTestEngine(t, Rules{MinimumStake: 100, FeePercent: 5, FeeRecipient: feeRecipient})
	gameID, err := e.Create(2, testClock)
	require.NoError(t, err)
	players := fillGame(t, e, l, gameID, 2)

	receipt, err := e.Settle(context.Background(), gameID, players, []uint64{60, 40}, testClock)
	require.NoError(t, err)

	assert.Equal(t, uint64(10), receipt.Fee)
	assert.Equal(t, uint64(0), receipt.Remainder)
	require.Len(t, receipt.Rewards, 2)
	assert.Equal(t, uint64(114), receipt.Rewards[0].Amount)
	assert.Equal(t, uint64(76), receipt.Rewards[1].Amount)

	assert.Equal(t, uint64(114), l.Balance(players[0]))
	assert.Equal(t, uint64(76), l.Balance(players[1]))
	assert.Equal(t, uint64(10), l.Balance(feeRecipient))

	snap, _ := e.Snapshot(gameID)
	assert.Equal(t, "completed", snap.Status)
	assert.Len(t, mr.byType(EventGameSettled), 1)
	assert.Len(t, mr.byType(EventGameCompleted), 1)
}

func TestSettleRemainderReachesFeeRecipient(t *testing.T) {
	// 4 players x 25 => pool 100 at 0% fee; scores {1,1,1} => 33 each,
	// remainder 1 must reach the fee recipient, not vanish.
	feeRecipient := uuid.New()
	e, l, _ := setupTestEngine(t, Rules{MinimumStake: 25, FeePercent: 0, FeeRecipient: feeRecipient})
	gameID, err := e.Create(4, testClock)
	require.NoError(t, err)
	players := fillGame(t, e, l, gameID, 4)

	receipt, err := e.Settle(context.Background(), gameID, players[:3], []uint64{1, 1, 1}, testClock)
	require.NoError(t, err)

	assert.Equal(t, uint64(0), receipt.Fee)
	assert.Equal(t, uint64(1), receipt.Remainder)
	for i := 0; i < 3; i++ {
		assert.Equal(t, uint64(33), receipt.Rewards[i].Amount)
		assert.Equal(t, uint64(33), l.Balance(players[i]))
	}
	assert.Equal(t, uint64(1), l.Balance(feeRecipient))

	// total credited equals the full pool: nothing lost, nothing minted
	var credited uint64
	for _, rw := range receipt.Rewards {
		credited += rw.Amount
	}
	assert.Equal(t, uint64(100), credited+receipt.Fee+receipt.Remainder)
}

func TestSettleRejectsBadWinnerSets(t *testing.T) {
	e, l, _ := setupTestEngine(t, Rules{})
	gameID, err := e.Create(2, testClock)
	require.NoError(t, err)
	players := fillGame(t, e, l, gameID, 2)
	outsider := uuid.New()

	cases := []struct {
		name    string
		winners []uuid.UUID
		scores  []uint64
		want    error
	}{
		{"no winners", nil, nil, ErrInvalidWinnerSet},
		{"length mismatch", players, []uint64{1}, ErrInvalidWinnerSet},
		{"zero score", players, []uint64{1, 0}, ErrZeroTotalScore},
		{"non-participant", []uuid.UUID{outsider}, []uint64{1}, ErrInvalidWinnerSet},
		{"duplicate winner", []uuid.UUID{players[0], players[0]}, []uint64{1, 1}, ErrInvalidWinnerSet},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Settle(context.Background(), gameID, tc.winners, tc.scores, testClock)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	// the game stays settleable after every rejected attempt
	_, err = e.Settle(context.Background(), gameID, players[:1], []uint64{1}, testClock)
	assert.NoError(t, err)
}

func TestSettleRequiresActiveGame(t *testing.T) {
	e, l, _ := setupTestEngine(t, Rules{})
	gameID, err := e.Create(2, testClock)
	require.NoError(t, err)
	player := fundAccounts(l, 1, 100)[0]
	_, err = e.Stake(context.Background(), gameID, player, testClock)
	require.NoError(t, err)

	// still open, one slot left
	_, err = e.Settle(context.Background(), gameID, []uuid.UUID{player}, []uint64{1}, testClock)
	assert.ErrorIs(t, err, ErrGameNotActive)
	assert.Equal(t, KindState, KindOf(err))
}

func TestSettleAtomicOnCreditFailure(t *testing.T) {
	feeRecipient := uuid.New()
	e, l, mr := setupTestEngine(t, Rules{MinimumStake: 100, FeePercent: 5, FeeRecipient: feeRecipient})
	gameID, err := e.Create(2, testClock)
	require.NoError(t, err)
	players := fillGame(t, e, l, gameID, 2)

	boom := errors.New("credit rejected")
	l.FailCreditsTo(players[1], boom)

	_, err = e.Settle(context.Background(), gameID, players, []uint64{60, 40}, testClock)
	require.Error(t, err)
	assert.Equal(t, KindTransfer, KindOf(err))
	assert.ErrorIs(t, err, boom)

	// no partial credits, no status change
	assert.Equal(t, uint64(0), l.Balance(players[0]))
	assert.Equal(t, uint64(0), l.Balance(feeRecipient))
	snap, _ := e.Snapshot(gameID)
	assert.Equal(t, "active", snap.Status)
	assert.Empty(t, mr.byType(EventGameSettled))

	// retrying the identical call succeeds once the cause is fixed
	l.FailCreditsTo(players[1], nil)
	receipt, err := e.Settle(context.Background(), gameID, players, []uint64{60, 40}, testClock)
	require.NoError(t, err)
	assert.Equal(t, uint64(114), receipt.Rewards[0].Amount)
}

func TestSettleOnCompletedGameNeverRetransfers(t *testing.T) {
	feeRecipient := uuid.New()
	e, l, _ := setupTestEngine(t, Rules{MinimumStake: 100, FeePercent: 5, FeeRecipient: feeRecipient})
	gameID, err := e.Create(2, testClock)
	require.NoError(t, err)
	players := fillGame(t, e, l, gameID, 2)

	_, err = e.Settle(context.Background(), gameID, players, []uint64{1, 1}, testClock)
	require.NoError(t, err)
	balanceAfter := l.Balance(players[0])

	_, err = e.Settle(context.Background(), gameID, players, []uint64{1, 1}, testClock)
	assert.ErrorIs(t, err, ErrGameNotActive)
	assert.Equal(t, KindState, KindOf(err))
	assert.Equal(t, balanceAfter, l.Balance(players[0]))

	_, err = e.Forfeit(context.Background(), gameID, testClock)
	assert.ErrorIs(t, err, ErrGameNotActive)
	assert.Equal(t, uint64(10), l.Balance(feeRecipient))
}

func TestForfeitSeizesWholePool(t *testing.T) {
	feeRecipient := uuid.New()
	e, l, mr := setupTestEngine(t, Rules{MinimumStake: 100, FeePercent: 5, FeeRecipient: feeRecipient})
	gameID, err := e.Create(3, testClock)
	require.NoError(t, err)
	players := fillGame(t, e, l, gameID, 3)

	receipt, err := e.Forfeit(context.Background(), gameID, testClock)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), receipt.Amount)
	assert.Equal(t, uint64(300), l.Balance(feeRecipient))
	for _, p := range players {
		assert.Equal(t, uint64(0), l.Balance(p))
	}

	snap, _ := e.Snapshot(gameID)
	assert.Equal(t, "completed", snap.Status)
	assert.Len(t, mr.byType(EventGameForfeited), 1)
}

func TestForfeitRequiresActiveGame(t *testing.T) {
	e, _, _ := setupTestEngine(t, Rules{})
	gameID, err := e.Create(2, testClock)
	require.NoError(t, err)

	_, err = e.Forfeit(context.Background(), gameID, testClock)
	assert.ErrorIs(t, err, ErrGameNotActive)
}
