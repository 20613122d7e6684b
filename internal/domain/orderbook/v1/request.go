package orderbookv1

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidOp indicates an intake message carrying an unknown operation.
var ErrInvalidOp = errors.New("op must be place or cancel")

// RequestOp represents the operation carried by an intake message.
type RequestOp string

const (
	// OpPlace places a new order.
	OpPlace RequestOp = "place"
	// OpCancel cancels a resting order.
	OpCancel RequestOp = "cancel"
)

// PlaceOrderRequest represents an intake message for the matching engine:
// either a new order submission or a cancellation.
type PlaceOrderRequest struct {
	Op      RequestOp       `json:"op"`
	Market  string          `json:"market"`
	OrderID string          `json:"orderID,omitempty"` // cancel only
	UserID  string          `json:"userID,omitempty"`
	Side    string          `json:"side,omitempty"`
	Kind    string          `json:"kind,omitempty"`
	Price   decimal.Decimal `json:"price,omitempty"`
	Amount  decimal.Decimal `json:"amount,omitempty"`
	Offset  int64           `json:"-"` // offset of the message in the stream
}
