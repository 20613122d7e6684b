package orderstorev1

import (
	"context"

	orderbookv1 "github.com/tradehub/matching-engine/internal/domain/orderbook/v1"
)

// Store is the persistence collaborator for orders. Persist is invoked on
// creation, each fill and cancellation, and must be idempotent: persisting
// the same order state twice is safe.
type Store interface {
	Persist(ctx context.Context, order *orderbookv1.Order) error
	Load(ctx context.Context, orderID string) (*orderbookv1.Order, error)
}
