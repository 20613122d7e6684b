package orderreaderv1

import (
	"context"

	"github.com/segmentio/kafka-go"
	orderbookv1 "github.com/tradehub/matching-engine/internal/domain/orderbook/v1"
)

// OrderReader defines the interface for reading order requests from a source.
type OrderReader interface {
	// ReadMessage reads a message and returns it with the parsed request
	ReadMessage(ctx context.Context) (kafka.Message, *orderbookv1.PlaceOrderRequest, error)
	// Close closes the reader
	Close() error

	// CommitMessages commits the messages after processing
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}
