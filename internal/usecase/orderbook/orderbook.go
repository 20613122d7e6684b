package orderbook

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/btree"
	"github.com/shopspring/decimal"
	balancev1 "github.com/tradehub/matching-engine/internal/domain/balance/v1"
	marketdatav1 "github.com/tradehub/matching-engine/internal/domain/marketdata/v1"
	orderbookv1 "github.com/tradehub/matching-engine/internal/domain/orderbook/v1"
	orderstorev1 "github.com/tradehub/matching-engine/internal/domain/orderstore/v1"
	pkgerrors "github.com/tradehub/matching-engine/pkg/errors"
	"github.com/tradehub/matching-engine/pkg/logger"
)

var (
	// ErrInsufficientBalance indicates the balance keeper refused the reserve.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrBookHalted indicates the book detected an invariant violation and
	// refuses further mutation.
	ErrBookHalted = errors.New("order book halted")
)

const btreeDegree = 16

// Collaborators are the external services an order book reports to. All of
// them are invoked after a book mutation commits, never while the book lock
// is held. Any of them may be nil.
type Collaborators struct {
	Balance    balancev1.Keeper
	Store      orderstorev1.Store
	MarketData marketdatav1.Publisher
}

// OrderBook holds all resting orders for a single market, matches crossing
// orders under price-time priority and serves depth snapshots. One mutex per
// book serializes submissions and cancellations; independent markets share
// no state.
type OrderBook struct {
	market string
	base   string
	quote  string

	logger *logger.Logger
	peers  Collaborators

	mu       sync.RWMutex
	bids     *btree.BTreeG[*orderbookv1.Level]
	asks     *btree.BTreeG[*orderbookv1.Level]
	byID     map[string]*orderbookv1.Order
	byUser   map[string][]string
	sequence int64
	halted   bool
}

// NewOrderBook creates an empty order book for the given market symbol.
// The symbol is expected in BASE-QUOTE form, e.g. BTC-USD.
func NewOrderBook(market string, peers Collaborators, log *logger.Logger) *OrderBook {
	base, quote, _ := strings.Cut(market, "-")
	less := func(a, b *orderbookv1.Level) bool {
		return a.Price.LessThan(b.Price)
	}
	return &OrderBook{
		market: market,
		base:   base,
		quote:  quote,
		logger: log,
		peers:  peers,
		bids:   btree.NewG(btreeDegree, less),
		asks:   btree.NewG(btreeDegree, less),
		byID:   make(map[string]*orderbookv1.Order),
		byUser: make(map[string][]string),
	}
}

// Market returns the market symbol this book serves.
func (b *OrderBook) Market() string {
	return b.market
}

// Halted reports whether the book refuses mutation after an invariant violation.
func (b *OrderBook) Halted() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.halted
}

// Submit validates and executes a new order. A limit order is appended to its
// price level before matching runs; a market order is handed directly to the
// matching loop and never rests. The returned order reflects the final fill
// state after matching.
func (b *OrderBook) Submit(ctx context.Context, userID string, side orderbookv1.Side, kind orderbookv1.Kind, price, amount decimal.Decimal) (orderbookv1.Order, error) {
	order := orderbookv1.NewOrder(b.market, userID, side, kind, price, amount)
	if err := order.Validate(); err != nil {
		return orderbookv1.Order{}, err
	}

	// Balance reserve runs before insertion and outside the book lock.
	if !b.reserve(ctx, order) {
		return orderbookv1.Order{}, ErrInsufficientBalance
	}

	b.mu.Lock()
	if b.halted {
		b.mu.Unlock()
		return orderbookv1.Order{}, ErrBookHalted
	}

	b.sequence++
	order.Sequence = b.sequence
	b.byID[order.ID] = order
	b.byUser[userID] = append(b.byUser[userID], order.ID)

	var trades []*orderbookv1.Trade
	switch kind {
	case orderbookv1.KindLimit:
		side := b.sideTree(order.Side)
		level, ok := side.Get(&orderbookv1.Level{Price: order.Price})
		if !ok {
			level = orderbookv1.NewLevel(order.Price)
			side.ReplaceOrInsert(level)
		}
		if err := level.Append(order); err != nil {
			b.mu.Unlock()
			return orderbookv1.Order{}, err
		}
		trades = b.matchCrossing()
	case orderbookv1.KindMarket:
		trades = b.matchMarket(order)
	}

	b.verifyInvariants(order)
	result := *order
	dirty := b.snapshotOrders(order.ID, trades)
	halted := b.halted
	b.mu.Unlock()

	b.afterCommit(ctx, dirty, trades)

	if halted {
		return result, ErrBookHalted
	}
	return result, nil
}

// Cancel removes an open order from its price level and marks it canceled.
// It returns false for unknown ids and for orders already in a terminal
// state, leaving all book state unchanged.
func (b *OrderBook) Cancel(ctx context.Context, orderID string) bool {
	b.mu.Lock()
	if b.halted {
		b.mu.Unlock()
		return false
	}

	order, ok := b.byID[orderID]
	if !ok || order.Status.Terminal() {
		b.mu.Unlock()
		return false
	}

	// Market orders never rest; only limit orders occupy a level.
	if order.Kind == orderbookv1.KindLimit {
		side := b.sideTree(order.Side)
		if level, found := side.Get(&orderbookv1.Level{Price: order.Price}); found {
			if err := level.Remove(order); err != nil {
				b.fault(fmt.Errorf("cancel %s: %w", orderID, err))
				b.mu.Unlock()
				return false
			}
			if level.IsEmpty() {
				side.Delete(level)
			}
		}
	}

	order.Status = orderbookv1.StatusCanceled
	persisted := *order
	b.mu.Unlock()

	b.persist(ctx, &persisted)
	return true
}

// GetOrder returns a snapshot of the order with the given id, including
// orders already in a terminal state. The second result reports existence.
func (b *OrderBook) GetOrder(orderID string) (orderbookv1.Order, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	order, ok := b.byID[orderID]
	if !ok {
		return orderbookv1.Order{}, false
	}
	return *order, true
}

// GetUserOrders returns snapshots of all orders ever submitted by the user,
// in submission order. The result is a snapshot at call time and is not
// affected by later mutation.
func (b *OrderBook) GetUserOrders(userID string) []orderbookv1.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := b.byUser[userID]
	orders := make([]orderbookv1.Order, 0, len(ids))
	for _, id := range ids {
		if order, ok := b.byID[id]; ok {
			orders = append(orders, *order)
		}
	}
	return orders
}

// Depth aggregates the top maxLevels price levels of each side by summing
// remaining quantity per level. A side shorter than maxLevels yields fewer
// entries; a non-positive maxLevels yields an empty snapshot.
func (b *OrderBook) Depth(maxLevels int) *orderbookv1.Depth {
	b.mu.RLock()
	defer b.mu.RUnlock()

	depth := &orderbookv1.Depth{
		Bids: []orderbookv1.DepthEntry{},
		Asks: []orderbookv1.DepthEntry{},
	}
	if maxLevels <= 0 {
		return depth
	}
	b.bids.Descend(func(level *orderbookv1.Level) bool {
		if len(depth.Bids) >= maxLevels {
			return false
		}
		depth.Bids = append(depth.Bids, orderbookv1.DepthEntry{
			Price:  level.Price,
			Amount: level.TotalRemaining(),
		})
		return true
	})
	b.asks.Ascend(func(level *orderbookv1.Level) bool {
		if len(depth.Asks) >= maxLevels {
			return false
		}
		depth.Asks = append(depth.Asks, orderbookv1.DepthEntry{
			Price:  level.Price,
			Amount: level.TotalRemaining(),
		})
		return true
	})
	return depth
}

// BestBid returns the highest bid price, or false when the side is empty.
func (b *OrderBook) BestBid() (decimal.Decimal, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if level, ok := b.bids.Max(); ok {
		return level.Price, true
	}
	return decimal.Zero, false
}

// BestAsk returns the lowest ask price, or false when the side is empty.
func (b *OrderBook) BestAsk() (decimal.Decimal, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if level, ok := b.asks.Min(); ok {
		return level.Price, true
	}
	return decimal.Zero, false
}

// matchCrossing repeatedly pairs the earliest order at the best price of each
// side while the book is crossed. The order with the lower sequence is the
// maker and its price governs the execution price.
func (b *OrderBook) matchCrossing() []*orderbookv1.Trade {
	var trades []*orderbookv1.Trade
	for {
		bestBid, okBid := b.bids.Max()
		bestAsk, okAsk := b.asks.Min()
		if !okBid || !okAsk {
			break
		}
		if bestBid.Price.LessThan(bestAsk.Price) {
			break
		}

		bid := bestBid.Front()
		ask := bestAsk.Front()
		maker, taker := bid, ask
		if bid.Sequence > ask.Sequence {
			maker, taker = ask, bid
		}

		qty := decimal.Min(maker.Remaining(), taker.Remaining())
		if err := b.execute(maker, taker, qty); err != nil {
			b.fault(err)
			return trades
		}
		bestBid.ReduceRemaining(qty)
		bestAsk.ReduceRemaining(qty)
		trades = append(trades, orderbookv1.NewTrade(maker, taker, qty))

		b.evictFilled(bestBid, orderbookv1.SideBuy, bid)
		b.evictFilled(bestAsk, orderbookv1.SideSell, ask)
	}
	return trades
}

// matchMarket fills a transient market order against the best opposite-side
// liquidity. Any remainder after the opposite side is exhausted is discarded
// and the order is marked canceled; market orders never rest.
func (b *OrderBook) matchMarket(order *orderbookv1.Order) []*orderbookv1.Trade {
	var trades []*orderbookv1.Trade
	for order.Remaining().IsPositive() {
		level, ok := b.bestOpposite(order.Side)
		if !ok {
			break
		}

		maker := level.Front()
		qty := decimal.Min(maker.Remaining(), order.Remaining())
		if err := b.execute(maker, order, qty); err != nil {
			b.fault(err)
			return trades
		}
		level.ReduceRemaining(qty)
		trades = append(trades, orderbookv1.NewTrade(maker, order, qty))

		b.evictFilled(level, order.Side.Opposite(), maker)
	}

	if !order.IsFilled() {
		order.Status = orderbookv1.StatusCanceled
	}
	return trades
}

// execute applies the fill to both orders.
func (b *OrderBook) execute(maker, taker *orderbookv1.Order, qty decimal.Decimal) error {
	if err := maker.Fill(qty); err != nil {
		return err
	}
	return taker.Fill(qty)
}

// evictFilled removes a fully executed order from its level and drops the
// level once empty. Orders stay in byID for historical lookup.
func (b *OrderBook) evictFilled(level *orderbookv1.Level, side orderbookv1.Side, order *orderbookv1.Order) {
	if !order.IsFilled() {
		return
	}
	if err := level.Remove(order); err != nil {
		b.fault(fmt.Errorf("evict %s: %w", order.ID, err))
		return
	}
	if level.IsEmpty() {
		b.sideTree(side).Delete(level)
	}
}

// bestOpposite returns the best price level on the side opposing aggressor.
func (b *OrderBook) bestOpposite(aggressor orderbookv1.Side) (*orderbookv1.Level, bool) {
	if aggressor == orderbookv1.SideBuy {
		return b.asks.Min()
	}
	return b.bids.Max()
}

func (b *OrderBook) sideTree(side orderbookv1.Side) *btree.BTreeG[*orderbookv1.Level] {
	if side == orderbookv1.SideBuy {
		return b.bids
	}
	return b.asks
}

// verifyInvariants checks the book after the matching loop: the book must not
// be left crossed and no order may be overfilled. A violation is a
// programming fault; the book halts rather than risk further inconsistent
// trades. Caller must hold the write lock.
func (b *OrderBook) verifyInvariants(order *orderbookv1.Order) {
	bestBid, okBid := b.bids.Max()
	bestAsk, okAsk := b.asks.Min()
	if okBid && okAsk && bestBid.Price.GreaterThanOrEqual(bestAsk.Price) {
		b.fault(fmt.Errorf("book left crossed: best bid %s >= best ask %s", bestBid.Price, bestAsk.Price))
	}
	if order.Filled.GreaterThan(order.Amount) {
		b.fault(fmt.Errorf("order %s overfilled: %s > %s", order.ID, order.Filled, order.Amount))
	}
}

// fault records an invariant violation and halts the book. Caller must hold
// the write lock.
func (b *OrderBook) fault(err error) {
	b.halted = true
	b.logger.Error(pkgerrors.NewTracer(pkgerrors.BookHaltedError).Wrap(err),
		logger.Field{Key: "market", Value: b.market},
	)
}

// reserve consults the balance keeper before insertion. Buys reserve quote
// currency, sells reserve base. A market buy has no limit price, so the
// current best ask sizes the reserve; with no opposite liquidity the order
// cannot execute and passes through unreserved.
func (b *OrderBook) reserve(ctx context.Context, order *orderbookv1.Order) bool {
	if b.peers.Balance == nil {
		return true
	}
	if order.Side == orderbookv1.SideSell {
		return b.peers.Balance.Reserve(ctx, order.UserID, b.base, order.Amount)
	}

	price := order.Price
	if order.Kind == orderbookv1.KindMarket {
		bestAsk, ok := b.BestAsk()
		if !ok {
			return true
		}
		price = bestAsk
	}
	return b.peers.Balance.Reserve(ctx, order.UserID, b.quote, order.Amount.Mul(price))
}

// snapshotOrders copies the final state of every order touched by a
// submission so collaborator calls run on stable data outside the lock.
// Caller must hold the write lock.
func (b *OrderBook) snapshotOrders(takerID string, trades []*orderbookv1.Trade) []*orderbookv1.Order {
	seen := map[string]bool{}
	var dirty []*orderbookv1.Order
	add := func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		if order, ok := b.byID[id]; ok {
			snapshot := *order
			dirty = append(dirty, &snapshot)
		}
	}
	add(takerID)
	for _, trade := range trades {
		add(trade.MakerOrderID)
		add(trade.TakerOrderID)
	}
	return dirty
}

// afterCommit reports a completed submission to the collaborators. The book
// state is already consistent; failures here are logged and never unwind the
// mutation.
func (b *OrderBook) afterCommit(ctx context.Context, dirty []*orderbookv1.Order, trades []*orderbookv1.Trade) {
	for _, order := range dirty {
		b.persist(ctx, order)
	}
	for _, trade := range trades {
		if b.peers.Balance != nil {
			if err := b.peers.Balance.Settle(ctx, trade.BuyerID(), trade.SellerID(), trade.Amount, trade.Price); err != nil {
				b.logger.ErrorContext(ctx, err,
					logger.Field{Key: "action", Value: "settle_trade"},
					logger.Field{Key: "tradeID", Value: trade.ID},
				)
			}
		}
		if b.peers.MarketData != nil {
			if err := b.peers.MarketData.PublishTrade(ctx, trade); err != nil {
				b.logger.ErrorContext(ctx, err,
					logger.Field{Key: "action", Value: "publish_trade"},
					logger.Field{Key: "tradeID", Value: trade.ID},
				)
			}
		}
	}
}

func (b *OrderBook) persist(ctx context.Context, order *orderbookv1.Order) {
	if b.peers.Store == nil {
		return
	}
	if err := b.peers.Store.Persist(ctx, order); err != nil {
		b.logger.ErrorContext(ctx, err,
			logger.Field{Key: "action", Value: "persist_order"},
			logger.Field{Key: "orderID", Value: order.ID},
		)
	}
}
