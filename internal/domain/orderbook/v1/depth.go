package orderbookv1

import "github.com/shopspring/decimal"

// DepthEntry is one aggregated price level in a depth snapshot.
type DepthEntry struct {
	Price  decimal.Decimal `json:"price"`
	Amount decimal.Decimal `json:"amount"`
}

// Depth is a bounded read-only aggregation of the book: the top levels of
// each side with their summed remaining quantity. Bids descend, asks ascend.
type Depth struct {
	Bids []DepthEntry `json:"bids"`
	Asks []DepthEntry `json:"asks"`
}
