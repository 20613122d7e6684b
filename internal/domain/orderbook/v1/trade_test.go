package orderbookv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test 1: The maker's price governs the trade, never the taker's
func TestNewTrade_MakerPrice(t *testing.T) {
	maker := NewOrder("BTC-USD", "alice", SideBuy, KindLimit, dec("100"), dec("10"))
	taker := NewOrder("BTC-USD", "bob", SideSell, KindLimit, dec("90"), dec("5"))

	trade := NewTrade(maker, taker, dec("5"))

	assert.True(t, trade.Price.Equal(dec("100")))
	assert.True(t, trade.Amount.Equal(dec("5")))
	assert.Equal(t, maker.ID, trade.MakerOrderID)
	assert.Equal(t, taker.ID, trade.TakerOrderID)
	assert.Equal(t, SideSell, trade.TakerSide)
	assert.Equal(t, "BTC-USD", trade.Market)
}

// Test 2: Buyer and seller resolve from the taker side
func TestTrade_BuyerSeller(t *testing.T) {
	maker := NewOrder("BTC-USD", "alice", SideBuy, KindLimit, dec("100"), dec("10"))
	taker := NewOrder("BTC-USD", "bob", SideSell, KindLimit, dec("90"), dec("5"))

	trade := NewTrade(maker, taker, dec("5"))
	assert.Equal(t, "alice", trade.BuyerID())
	assert.Equal(t, "bob", trade.SellerID())

	maker = NewOrder("BTC-USD", "carol", SideSell, KindLimit, dec("100"), dec("10"))
	taker = NewOrder("BTC-USD", "dave", SideBuy, KindLimit, dec("110"), dec("5"))

	trade = NewTrade(maker, taker, dec("5"))
	assert.Equal(t, "dave", trade.BuyerID())
	assert.Equal(t, "carol", trade.SellerID())
}
