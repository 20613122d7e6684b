package balance

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradehub/matching-engine/pkg/logger"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestKeeper(t *testing.T) *Memory {
	t.Helper()
	log, err := logger.NewLogger()
	require.NoError(t, err)
	return NewMemory(log)
}

// Test 1: Deposits accumulate per user and currency
func TestMemory_Deposit(t *testing.T) {
	keeper := newTestKeeper(t)

	keeper.Deposit("alice", "USD", dec("100"))
	keeper.Deposit("alice", "USD", dec("50"))
	keeper.Deposit("alice", "BTC", dec("2"))

	assert.True(t, keeper.Available("alice", "USD").Equal(dec("150")))
	assert.True(t, keeper.Available("alice", "BTC").Equal(dec("2")))
	assert.True(t, keeper.Available("bob", "USD").IsZero())
}

// Test 2: Reserve deducts from tracked balances and refuses shortfalls
func TestMemory_Reserve(t *testing.T) {
	keeper := newTestKeeper(t)
	ctx := context.Background()

	keeper.Deposit("alice", "USD", dec("100"))

	assert.True(t, keeper.Reserve(ctx, "alice", "USD", dec("60")))
	assert.True(t, keeper.Available("alice", "USD").Equal(dec("40")))

	assert.False(t, keeper.Reserve(ctx, "alice", "USD", dec("41")))
	assert.True(t, keeper.Available("alice", "USD").Equal(dec("40")))

	assert.True(t, keeper.Reserve(ctx, "alice", "USD", dec("40")))
	assert.True(t, keeper.Available("alice", "USD").IsZero())
}

// Test 3: Untracked users pass the reserve check
func TestMemory_ReserveUntrackedUser(t *testing.T) {
	keeper := newTestKeeper(t)
	ctx := context.Background()

	assert.True(t, keeper.Reserve(ctx, "ghost", "USD", dec("1000000")))
}

// Test 4: A tracked user with the wrong currency is refused
func TestMemory_ReserveWrongCurrency(t *testing.T) {
	keeper := newTestKeeper(t)
	ctx := context.Background()

	keeper.Deposit("alice", "USD", dec("100"))

	assert.False(t, keeper.Reserve(ctx, "alice", "BTC", dec("1")))
}

// Test 5: Settlements append to the ledger in order
func TestMemory_Settle(t *testing.T) {
	keeper := newTestKeeper(t)
	ctx := context.Background()

	require.NoError(t, keeper.Settle(ctx, "alice", "bob", dec("5"), dec("100")))
	require.NoError(t, keeper.Settle(ctx, "carol", "dave", dec("2"), dec("101")))

	settlements := keeper.Settlements()
	require.Len(t, settlements, 2)
	assert.Equal(t, "alice", settlements[0].BuyerID)
	assert.Equal(t, "bob", settlements[0].SellerID)
	assert.True(t, settlements[0].Amount.Equal(dec("5")))
	assert.True(t, settlements[0].Price.Equal(dec("100")))
	assert.Equal(t, "carol", settlements[1].BuyerID)
}
