package orderstore

import (
	"context"
	"encoding/json"

	orderbookv1 "github.com/tradehub/matching-engine/internal/domain/orderbook/v1"
	"github.com/tradehub/matching-engine/pkg/errors"
	"github.com/tradehub/matching-engine/pkg/logger"
	"github.com/tradehub/matching-engine/pkg/redis"
)

const hashKey = "orders"

// Store persists order state in a Redis hash, one field per order id. Writes
// carry the full final state of the order, so re-persisting the same state is
// a no-op from the reader's point of view.
type Store struct {
	logger      *logger.Logger
	redisclient redis.Client
}

// NewStore creates a new order store backed by the given Redis client.
func NewStore(redisclient redis.Client, log *logger.Logger) *Store {
	return &Store{
		logger:      log,
		redisclient: redisclient,
	}
}

// Persist writes the order's current state.
func (s *Store) Persist(ctx context.Context, order *orderbookv1.Order) error {
	buf, err := json.Marshal(order)
	if err != nil {
		return errors.NewTracer(errors.OrderMarshalError).Wrap(err)
	}

	if _, err := s.redisclient.HSet(ctx, hashKey, map[string]any{order.ID: buf}); err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "orderID",
			Value: order.ID,
		})
		return errors.NewTracer(errors.OrderPersistError).Wrap(err)
	}
	return nil
}

// Load reads an order by id. A missing id yields a nil order and no error.
func (s *Store) Load(ctx context.Context, orderID string) (*orderbookv1.Order, error) {
	data, err := s.redisclient.HGet(ctx, hashKey, orderID)
	if err != nil {
		return nil, errors.NewTracer(errors.OrderLoadError).Wrap(err)
	}
	if data == "" {
		return nil, nil
	}

	var order orderbookv1.Order
	if err := json.Unmarshal([]byte(data), &order); err != nil {
		return nil, errors.NewTracer(errors.OrderUnmarshalError).Wrap(err)
	}
	return &order, nil
}
