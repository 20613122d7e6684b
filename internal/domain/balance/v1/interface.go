package balancev1

import (
	"context"

	"github.com/shopspring/decimal"
)

// Keeper is the balance/risk collaborator consulted around matching.
// Reserve is called before a submission is inserted into the book; a false
// result rejects the order. Settle is called once per trade after the book
// mutation commits and must not influence book state.
type Keeper interface {
	Reserve(ctx context.Context, userID, currency string, amount decimal.Decimal) bool
	Settle(ctx context.Context, buyerID, sellerID string, amount, price decimal.Decimal) error
}
