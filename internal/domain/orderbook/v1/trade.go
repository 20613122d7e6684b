package orderbookv1

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// Trade represents one execution between a resting maker order and a taker.
// The maker's price always governs the execution price.
type Trade struct {
	ID           string          `json:"id"`
	Market       string          `json:"market"`
	Price        decimal.Decimal `json:"price"`
	Amount       decimal.Decimal `json:"amount"`
	MakerOrderID string          `json:"makerOrderID"`
	TakerOrderID string          `json:"takerOrderID"`
	MakerUserID  string          `json:"makerUserID"`
	TakerUserID  string          `json:"takerUserID"`
	TakerSide    Side            `json:"takerSide"`
	Time         time.Time       `json:"time"`
}

// NewTrade creates a trade fact for a maker/taker pairing.
func NewTrade(maker, taker *Order, amount decimal.Decimal) *Trade {
	return &Trade{
		ID:           ulid.Make().String(),
		Market:       maker.Market,
		Price:        maker.Price,
		Amount:       amount,
		MakerOrderID: maker.ID,
		TakerOrderID: taker.ID,
		MakerUserID:  maker.UserID,
		TakerUserID:  taker.UserID,
		TakerSide:    taker.Side,
		Time:         time.Now(),
	}
}

// BuyerID returns the user id on the buy side of the trade.
func (t *Trade) BuyerID() string {
	if t.TakerSide == SideBuy {
		return t.TakerUserID
	}
	return t.MakerUserID
}

// SellerID returns the user id on the sell side of the trade.
func (t *Trade) SellerID() string {
	if t.TakerSide == SideSell {
		return t.TakerUserID
	}
	return t.MakerUserID
}
