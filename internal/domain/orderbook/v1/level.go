package orderbookv1

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrNilOrder indicates a nil order passed to a level operation.
	ErrNilOrder = errors.New("order cannot be nil")
	// ErrOrderNotFound indicates the order does not rest at this level.
	ErrOrderNotFound = errors.New("order not found in level")
	// ErrPriceMismatch indicates an order whose price differs from the level price.
	ErrPriceMismatch = errors.New("order price does not match level price")
)

// Level represents a price level in the order book: the FIFO queue of open
// orders resting at one exact price, ordered by ascending sequence.
type Level struct {
	Price  decimal.Decimal
	Orders []*Order

	totalRemaining decimal.Decimal
}

// NewLevel creates a new empty Level at the specified price.
func NewLevel(price decimal.Decimal) *Level {
	return &Level{
		Price:          price,
		Orders:         make([]*Order, 0, 4),
		totalRemaining: decimal.Zero,
	}
}

// Append adds an order at the back of the queue. Orders arrive with strictly
// increasing sequence numbers, so append order is time priority.
func (l *Level) Append(order *Order) error {
	if order == nil {
		return ErrNilOrder
	}
	if !order.Price.Equal(l.Price) {
		return fmt.Errorf("%w: level %s, order %s", ErrPriceMismatch, l.Price, order.Price)
	}
	l.Orders = append(l.Orders, order)
	l.totalRemaining = l.totalRemaining.Add(order.Remaining())
	return nil
}

// Remove unlinks an order from the queue.
func (l *Level) Remove(order *Order) error {
	if order == nil {
		return ErrNilOrder
	}
	for i, o := range l.Orders {
		if o == order {
			l.Orders = append(l.Orders[:i], l.Orders[i+1:]...)
			l.totalRemaining = l.totalRemaining.Sub(order.Remaining())
			return nil
		}
	}
	return ErrOrderNotFound
}

// Front returns the earliest resting order, or nil if the level is empty.
func (l *Level) Front() *Order {
	if len(l.Orders) == 0 {
		return nil
	}
	return l.Orders[0]
}

// ReduceRemaining records that qty of resting quantity was executed at this level.
func (l *Level) ReduceRemaining(qty decimal.Decimal) {
	l.totalRemaining = l.totalRemaining.Sub(qty)
}

// IsEmpty checks if the level has no orders.
func (l *Level) IsEmpty() bool {
	return len(l.Orders) == 0
}

// OrderCount returns the number of orders at this level.
func (l *Level) OrderCount() int {
	return len(l.Orders)
}

// TotalRemaining returns the summed unexecuted quantity resting at this level.
func (l *Level) TotalRemaining() decimal.Decimal {
	return l.totalRemaining
}
