package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderbookv1 "github.com/tradehub/matching-engine/internal/domain/orderbook/v1"
	"github.com/tradehub/matching-engine/internal/usecase/orderbook"
	"github.com/tradehub/matching-engine/internal/usecase/registry"
	"github.com/tradehub/matching-engine/pkg/logger"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// fakeReader feeds scripted requests to the order processor and then blocks
// until the engine shuts down.
type fakeReader struct {
	requests chan *orderbookv1.PlaceOrderRequest

	mu        sync.Mutex
	committed int
	closed    bool
}

func newFakeReader(requests ...*orderbookv1.PlaceOrderRequest) *fakeReader {
	ch := make(chan *orderbookv1.PlaceOrderRequest, len(requests))
	for _, r := range requests {
		ch <- r
	}
	return &fakeReader{requests: ch}
}

func (f *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, *orderbookv1.PlaceOrderRequest, error) {
	select {
	case request := <-f.requests:
		return kafka.Message{Offset: request.Offset}, request, nil
	case <-ctx.Done():
		return kafka.Message{}, nil, ctx.Err()
	}
}

func (f *fakeReader) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed += len(msgs)
	return nil
}

// fakePublisher counts depth broadcasts per market.
type fakePublisher struct {
	mu     sync.Mutex
	trades int
	depths map[string]int
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{depths: make(map[string]int)}
}

func (f *fakePublisher) PublishTrade(_ context.Context, _ *orderbookv1.Trade) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trades++
	return nil
}

func (f *fakePublisher) PublishDepth(_ context.Context, market string, _ *orderbookv1.Depth) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.depths[market]++
	return nil
}

func (f *fakePublisher) depthCount(market string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.depths[market]
}

func placeRequest(market, userID, side, kind, price, amount string, offset int64) *orderbookv1.PlaceOrderRequest {
	return &orderbookv1.PlaceOrderRequest{
		Op:     orderbookv1.OpPlace,
		Market: market,
		UserID: userID,
		Side:   side,
		Kind:   kind,
		Price:  dec(price),
		Amount: dec(amount),
		Offset: offset,
	}
}

func newTestEngine(t *testing.T, reader *fakeReader, publisher *fakePublisher, options *Options) (*Engine, *registry.Registry) {
	t.Helper()
	log, err := logger.NewLogger()
	require.NoError(t, err)
	reg := registry.NewRegistry(orderbook.Collaborators{MarketData: publisher}, log)
	return NewEngineWithOptions(reg, reader, publisher, log, options), reg
}

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

// Test 1: Intake requests flow through matching and get committed
func TestEngine_ProcessesIntake(t *testing.T) {
	reader := newFakeReader(
		placeRequest("BTC-USD", "alice", "buy", "limit", "100", "5", 1),
		placeRequest("BTC-USD", "bob", "sell", "limit", "100", "5", 2),
	)
	publisher := newFakePublisher()
	eng, reg := newTestEngine(t, reader, publisher, &Options{DepthInterval: time.Hour, DepthLevels: 20})

	ctx := context.Background()
	require.NoError(t, eng.Start(ctx))

	waitFor(t, func() bool {
		reader.mu.Lock()
		defer reader.mu.Unlock()
		return reader.committed == 2
	})

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, eng.Stop(stopCtx))

	publisher.mu.Lock()
	assert.Equal(t, 1, publisher.trades)
	publisher.mu.Unlock()

	assert.Equal(t, int64(1), eng.GetTotalTrades())

	depth, err := reg.GetDepth("BTC-USD", 10)
	require.NoError(t, err)
	assert.Empty(t, depth.Bids)
	assert.Empty(t, depth.Asks)

	reader.mu.Lock()
	assert.True(t, reader.closed)
	reader.mu.Unlock()
}

// Test 2: Cancel requests route to the book of the named market
func TestEngine_ProcessesCancel(t *testing.T) {
	reader := newFakeReader(
		placeRequest("BTC-USD", "alice", "buy", "limit", "100", "5", 1),
	)
	publisher := newFakePublisher()
	eng, reg := newTestEngine(t, reader, publisher, &Options{DepthInterval: time.Hour, DepthLevels: 20})

	ctx := context.Background()
	require.NoError(t, eng.Start(ctx))

	waitFor(t, func() bool {
		reader.mu.Lock()
		defer reader.mu.Unlock()
		return reader.committed == 1
	})

	orders := reg.GetUserOrders("BTC-USD", "alice")
	require.Len(t, orders, 1)

	reader.requests <- &orderbookv1.PlaceOrderRequest{
		Op:      orderbookv1.OpCancel,
		Market:  "BTC-USD",
		OrderID: orders[0].ID,
		Offset:  2,
	}

	waitFor(t, func() bool {
		order, ok := reg.GetOrder("BTC-USD", orders[0].ID)
		return ok && order.Status == orderbookv1.StatusCanceled
	})

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, eng.Stop(stopCtx))
}

// Test 3: Malformed requests are skipped and still committed
func TestEngine_SkipsMalformedRequests(t *testing.T) {
	reader := newFakeReader(
		&orderbookv1.PlaceOrderRequest{Op: "noop", Market: "BTC-USD", Offset: 1},
		placeRequest("BTC-USD", "alice", "short", "limit", "100", "5", 2),
		placeRequest("BTC-USD", "alice", "buy", "limit", "100", "5", 3),
	)
	publisher := newFakePublisher()
	eng, reg := newTestEngine(t, reader, publisher, &Options{DepthInterval: time.Hour, DepthLevels: 20})

	ctx := context.Background()
	require.NoError(t, eng.Start(ctx))

	waitFor(t, func() bool {
		reader.mu.Lock()
		defer reader.mu.Unlock()
		return reader.committed == 3
	})

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, eng.Stop(stopCtx))

	// Only the well-formed submission reached the book.
	orders := reg.GetUserOrders("BTC-USD", "alice")
	require.Len(t, orders, 1)
	assert.Equal(t, orderbookv1.StatusOpen, orders[0].Status)
}

// Test 4: The broadcaster publishes depth for every active market
func TestEngine_BroadcastsDepth(t *testing.T) {
	reader := newFakeReader(
		placeRequest("BTC-USD", "alice", "buy", "limit", "100", "5", 1),
		placeRequest("ETH-USD", "bob", "sell", "limit", "200", "3", 2),
	)
	publisher := newFakePublisher()
	eng, _ := newTestEngine(t, reader, publisher, &Options{DepthInterval: 20 * time.Millisecond, DepthLevels: 20})

	ctx := context.Background()
	require.NoError(t, eng.Start(ctx))

	waitFor(t, func() bool {
		return publisher.depthCount("BTC-USD") > 0 && publisher.depthCount("ETH-USD") > 0
	})

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, eng.Stop(stopCtx))
}
