package registry

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	orderbookv1 "github.com/tradehub/matching-engine/internal/domain/orderbook/v1"
	"github.com/tradehub/matching-engine/internal/usecase/orderbook"
	"github.com/tradehub/matching-engine/pkg/logger"
)

// ErrUnknownMarket indicates a lookup against a market this registry does not serve.
var ErrUnknownMarket = errors.New("unknown market")

// Registry owns one order book per market symbol. It is the only component
// with process-wide lifecycle: every lookup for a symbol returns the same
// book instance, and operations on independent markets proceed in parallel.
type Registry struct {
	peers  orderbook.Collaborators
	logger *logger.Logger

	mu    sync.RWMutex
	books map[string]*orderbook.OrderBook
}

// NewRegistry creates an empty registry sharing the given collaborators
// across all books it creates.
func NewRegistry(peers orderbook.Collaborators, log *logger.Logger) *Registry {
	return &Registry{
		peers:  peers,
		logger: log,
		books:  make(map[string]*orderbook.OrderBook),
	}
}

// GetOrCreate returns the order book owned for the symbol, creating it on
// first reference.
func (r *Registry) GetOrCreate(market string) *orderbook.OrderBook {
	r.mu.RLock()
	book, ok := r.books[market]
	r.mu.RUnlock()
	if ok {
		return book
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if book, ok = r.books[market]; ok {
		return book
	}
	book = orderbook.NewOrderBook(market, r.peers, r.logger)
	r.books[market] = book
	r.logger.Info("order book created", logger.Field{Key: "market", Value: market})
	return book
}

// Get returns the book for the symbol without creating it.
func (r *Registry) Get(market string) (*orderbook.OrderBook, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	book, ok := r.books[market]
	return book, ok
}

// Markets lists the known market symbols in lexical order.
func (r *Registry) Markets() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	markets := make([]string, 0, len(r.books))
	for market := range r.books {
		markets = append(markets, market)
	}
	sort.Strings(markets)
	return markets
}

// SubmitOrder routes a submission to its market's book.
func (r *Registry) SubmitOrder(ctx context.Context, market, userID string, side orderbookv1.Side, kind orderbookv1.Kind, price, amount decimal.Decimal) (orderbookv1.Order, error) {
	return r.GetOrCreate(market).Submit(ctx, userID, side, kind, price, amount)
}

// CancelOrder cancels an order on the given market. Unknown markets and
// unknown ids report false.
func (r *Registry) CancelOrder(ctx context.Context, market, orderID string) bool {
	book, ok := r.Get(market)
	if !ok {
		return false
	}
	return book.Cancel(ctx, orderID)
}

// GetOrder looks up an order on the given market.
func (r *Registry) GetOrder(market, orderID string) (orderbookv1.Order, bool) {
	book, ok := r.Get(market)
	if !ok {
		return orderbookv1.Order{}, false
	}
	return book.GetOrder(orderID)
}

// GetUserOrders lists a user's orders on the given market.
func (r *Registry) GetUserOrders(market, userID string) []orderbookv1.Order {
	book, ok := r.Get(market)
	if !ok {
		return nil
	}
	return book.GetUserOrders(userID)
}

// GetDepth returns the bounded depth snapshot for the given market.
func (r *Registry) GetDepth(market string, maxLevels int) (*orderbookv1.Depth, error) {
	book, ok := r.Get(market)
	if !ok {
		return nil, ErrUnknownMarket
	}
	return book.Depth(maxLevels), nil
}
