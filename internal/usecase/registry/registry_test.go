package registry

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderbookv1 "github.com/tradehub/matching-engine/internal/domain/orderbook/v1"
	"github.com/tradehub/matching-engine/internal/usecase/orderbook"
	"github.com/tradehub/matching-engine/pkg/logger"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	log, err := logger.NewLogger()
	require.NoError(t, err)
	return NewRegistry(orderbook.Collaborators{}, log)
}

// Test 1: The same symbol always resolves to the same book instance
func TestRegistry_GetOrCreate(t *testing.T) {
	reg := newTestRegistry(t)

	first := reg.GetOrCreate("BTC-USD")
	second := reg.GetOrCreate("BTC-USD")
	other := reg.GetOrCreate("ETH-USD")

	assert.Same(t, first, second)
	assert.NotSame(t, first, other)
	assert.Equal(t, []string{"BTC-USD", "ETH-USD"}, reg.Markets())
}

// Test 2: Get does not create books
func TestRegistry_Get(t *testing.T) {
	reg := newTestRegistry(t)

	_, ok := reg.Get("BTC-USD")
	assert.False(t, ok)
	assert.Empty(t, reg.Markets())

	reg.GetOrCreate("BTC-USD")
	book, ok := reg.Get("BTC-USD")
	assert.True(t, ok)
	assert.Equal(t, "BTC-USD", book.Market())
}

// Test 3: Orders on different markets never see each other
func TestRegistry_MarketIsolation(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	bid, err := reg.SubmitOrder(ctx, "BTC-USD", "alice", orderbookv1.SideBuy, orderbookv1.KindLimit, dec("100"), dec("5"))
	require.NoError(t, err)

	ask, err := reg.SubmitOrder(ctx, "ETH-USD", "bob", orderbookv1.SideSell, orderbookv1.KindLimit, dec("90"), dec("5"))
	require.NoError(t, err)

	// Despite crossing prices, the orders are on separate books.
	btcOrder, ok := reg.GetOrder("BTC-USD", bid.ID)
	require.True(t, ok)
	assert.Equal(t, orderbookv1.StatusOpen, btcOrder.Status)
	assert.True(t, btcOrder.Filled.IsZero())

	ethOrder, ok := reg.GetOrder("ETH-USD", ask.ID)
	require.True(t, ok)
	assert.Equal(t, orderbookv1.StatusOpen, ethOrder.Status)

	_, ok = reg.GetOrder("ETH-USD", bid.ID)
	assert.False(t, ok)
}

// Test 4: Cancel routes to the right book and reports unknown markets
func TestRegistry_CancelOrder(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	order, err := reg.SubmitOrder(ctx, "BTC-USD", "alice", orderbookv1.SideBuy, orderbookv1.KindLimit, dec("100"), dec("5"))
	require.NoError(t, err)

	assert.False(t, reg.CancelOrder(ctx, "ETH-USD", order.ID))
	assert.True(t, reg.CancelOrder(ctx, "BTC-USD", order.ID))
	assert.False(t, reg.CancelOrder(ctx, "BTC-USD", order.ID))
}

// Test 5: Depth lookups fail for markets the registry does not serve
func TestRegistry_GetDepth(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	_, err := reg.GetDepth("BTC-USD", 10)
	assert.ErrorIs(t, err, ErrUnknownMarket)

	_, err = reg.SubmitOrder(ctx, "BTC-USD", "alice", orderbookv1.SideBuy, orderbookv1.KindLimit, dec("100"), dec("5"))
	require.NoError(t, err)

	depth, err := reg.GetDepth("BTC-USD", 10)
	require.NoError(t, err)
	require.Len(t, depth.Bids, 1)
	assert.True(t, depth.Bids[0].Price.Equal(dec("100")))
}

// Test 6: Concurrent first references still converge on one book
func TestRegistry_ConcurrentGetOrCreate(t *testing.T) {
	reg := newTestRegistry(t)

	books := make([]*orderbook.OrderBook, 16)
	var wg sync.WaitGroup
	for i := range books {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			books[i] = reg.GetOrCreate("BTC-USD")
		}(i)
	}
	wg.Wait()

	for _, book := range books[1:] {
		assert.Same(t, books[0], book)
	}
}
