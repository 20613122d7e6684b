package balance

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradehub/matching-engine/pkg/logger"
)

// Settlement records one settled trade for downstream reconciliation.
type Settlement struct {
	BuyerID  string
	SellerID string
	Amount   decimal.Decimal
	Price    decimal.Decimal
	Time     time.Time
}

// Memory is an in-memory balance keeper. Reserves are deducted from tracked
// available balances; settlement is recorded as an append-only ledger and is
// eventually consistent relative to the book. Users with no tracked account
// pass the reserve check, so funding is opt-in for callers that enforce it.
type Memory struct {
	logger *logger.Logger

	mu        sync.RWMutex
	available map[string]map[string]decimal.Decimal // user -> currency -> available
	settled   []Settlement
}

// NewMemory creates an empty in-memory balance keeper.
func NewMemory(log *logger.Logger) *Memory {
	return &Memory{
		logger:    log,
		available: make(map[string]map[string]decimal.Decimal),
	}
}

// Deposit credits a user's available balance for a currency.
func (m *Memory) Deposit(userID, currency string, amount decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.available[userID] == nil {
		m.available[userID] = make(map[string]decimal.Decimal)
	}
	m.available[userID][currency] = m.available[userID][currency].Add(amount)
}

// Available returns a user's available balance for a currency.
func (m *Memory) Available(userID, currency string) decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.available[userID][currency]
}

// Reserve deducts amount from the user's available balance. It returns false
// when the tracked balance cannot cover the reserve; untracked users pass.
func (m *Memory) Reserve(ctx context.Context, userID, currency string, amount decimal.Decimal) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, tracked := m.available[userID]
	if !tracked {
		return true
	}
	balance := account[currency]
	if balance.LessThan(amount) {
		m.logger.DebugContext(ctx, "reserve refused",
			logger.Field{Key: "userID", Value: userID},
			logger.Field{Key: "currency", Value: currency},
			logger.Field{Key: "requested", Value: amount.String()},
			logger.Field{Key: "available", Value: balance.String()},
		)
		return false
	}
	account[currency] = balance.Sub(amount)
	return true
}

// Settle appends the trade to the settlement ledger.
func (m *Memory) Settle(ctx context.Context, buyerID, sellerID string, amount, price decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settled = append(m.settled, Settlement{
		BuyerID:  buyerID,
		SellerID: sellerID,
		Amount:   amount,
		Price:    price,
		Time:     time.Now(),
	})
	return nil
}

// Settlements returns a copy of the settlement ledger.
func (m *Memory) Settlements() []Settlement {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Settlement, len(m.settled))
	copy(out, m.settled)
	return out
}
