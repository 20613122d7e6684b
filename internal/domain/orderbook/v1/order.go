package orderbookv1

import (
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidSide indicates a side outside the {buy, sell} set.
	ErrInvalidSide = errors.New("side must be buy or sell")
	// ErrInvalidKind indicates a kind outside the {limit, market} set.
	ErrInvalidKind = errors.New("kind must be limit or market")
	// ErrInvalidAmount indicates a non-positive order amount.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInvalidPrice indicates a non-positive price on a limit order.
	ErrInvalidPrice = errors.New("price must be positive for limit orders")
)

// Side represents the side of an order.
type Side uint8

const (
	// SideBuy represents a buy (bid) order.
	SideBuy Side = iota + 1
	// SideSell represents a sell (ask) order.
	SideSell
)

// Valid reports whether the side belongs to the closed {buy, sell} set.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Opposite returns the opposing side.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	default:
		return fmt.Sprintf("side(%d)", uint8(s))
	}
}

// ParseSide converts a wire name into a Side.
func ParseSide(s string) (Side, error) {
	switch s {
	case "buy":
		return SideBuy, nil
	case "sell":
		return SideSell, nil
	default:
		return 0, ErrInvalidSide
	}
}

// Kind represents the kind of an order.
type Kind uint8

const (
	// KindLimit represents a limit order that may rest in the book.
	KindLimit Kind = iota + 1
	// KindMarket represents a market order that never rests.
	KindMarket
)

// Valid reports whether the kind belongs to the closed {limit, market} set.
func (k Kind) Valid() bool {
	return k == KindLimit || k == KindMarket
}

func (k Kind) String() string {
	switch k {
	case KindLimit:
		return "limit"
	case KindMarket:
		return "market"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind converts a wire name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "limit":
		return KindLimit, nil
	case "market":
		return KindMarket, nil
	default:
		return 0, ErrInvalidKind
	}
}

// Status represents the lifecycle state of an order.
type Status uint8

const (
	// StatusOpen means the order is resting or partially filled.
	StatusOpen Status = iota + 1
	// StatusFilled means the order is fully executed. Terminal.
	StatusFilled
	// StatusCanceled means the order was canceled or its market remainder discarded. Terminal.
	StatusCanceled
)

// Terminal reports whether the status permits no further mutation.
func (s Status) Terminal() bool {
	return s == StatusFilled || s == StatusCanceled
}

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusFilled:
		return "filled"
	case StatusCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Order represents a single order in the order book.
type Order struct {
	ID       string          `json:"id"`
	UserID   string          `json:"userID"`
	Market   string          `json:"market"`
	Side     Side            `json:"side"`
	Kind     Kind            `json:"kind"`
	Price    decimal.Decimal `json:"price"`
	Amount   decimal.Decimal `json:"amount"`
	Filled   decimal.Decimal `json:"filled"`
	Status   Status          `json:"status"`
	Sequence int64           `json:"sequence"`

	CreatedAt time.Time `json:"createdAt"`
}

// NewOrder creates a new open order with a generated ULID.
func NewOrder(market, userID string, side Side, kind Kind, price, amount decimal.Decimal) *Order {
	return &Order{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Market:    market,
		Side:      side,
		Kind:      kind,
		Price:     price,
		Amount:    amount,
		Filled:    decimal.Zero,
		Status:    StatusOpen,
		CreatedAt: time.Now(),
	}
}

// Validate checks the order parameters against the submission rules.
func (o *Order) Validate() error {
	if !o.Side.Valid() {
		return ErrInvalidSide
	}
	if !o.Kind.Valid() {
		return ErrInvalidKind
	}
	if !o.Amount.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrInvalidAmount, o.Amount)
	}
	if o.Kind == KindLimit && !o.Price.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrInvalidPrice, o.Price)
	}
	return nil
}

// IsBid checks if the order is a bid (buy) order.
func (o *Order) IsBid() bool {
	return o.Side == SideBuy
}

// IsAsk checks if the order is an ask (sell) order.
func (o *Order) IsAsk() bool {
	return o.Side == SideSell
}

// Remaining returns the unexecuted quantity.
func (o *Order) Remaining() decimal.Decimal {
	return o.Amount.Sub(o.Filled)
}

// IsFilled checks if the order is fully executed.
func (o *Order) IsFilled() bool {
	return o.Filled.Equal(o.Amount)
}

// Fill increments the executed quantity and flips the status to filled when
// the amount is reached. Filled never exceeds Amount.
func (o *Order) Fill(qty decimal.Decimal) error {
	next := o.Filled.Add(qty)
	if next.GreaterThan(o.Amount) {
		return fmt.Errorf("fill %s exceeds amount %s on order %s", next, o.Amount, o.ID)
	}
	o.Filled = next
	if o.IsFilled() {
		o.Status = StatusFilled
	}
	return nil
}
