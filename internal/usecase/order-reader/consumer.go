package orderreader

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	orderbookv1 "github.com/tradehub/matching-engine/internal/domain/orderbook/v1"
	"github.com/tradehub/matching-engine/pkg/config"
	"github.com/tradehub/matching-engine/pkg/logger"
)

// Reader represents a Kafka reader for consuming order requests from the
// intake topic.
type Reader struct {
	kafkaReader *kafka.Reader
	logger      *logger.Logger
}

// NewReader creates a new Kafka reader for the order intake topic. It returns
// an implementation of the OrderReader interface.
func NewReader(config config.KafkaConfig, log *logger.Logger) Reader {
	kafkaReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  config.Brokers,
		Topic:    config.Topic,
		GroupID:  config.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	return Reader{
		kafkaReader: kafkaReader,
		logger:      log,
	}
}

// logError is a helper method to log errors consistently
func (r Reader) logError(err error, operation string) {
	r.logger.Error(err,
		logger.Field{Key: "error", Value: err.Error()},
		logger.Field{Key: "operation", Value: operation},
	)
}

// ReadMessage reads a message from the Kafka topic and parses it as a
// PlaceOrderRequest. The offset is not committed here; callers commit via
// CommitMessages once the request has been processed.
func (r Reader) ReadMessage(ctx context.Context) (kafka.Message, *orderbookv1.PlaceOrderRequest, error) {
	msg, err := r.kafkaReader.FetchMessage(ctx)
	if err != nil {
		r.logError(err, "FetchMessage")
		return kafka.Message{Offset: 0}, nil, err
	}

	var request orderbookv1.PlaceOrderRequest
	if err := json.Unmarshal(msg.Value, &request); err != nil {
		r.logError(err, "UnmarshalRequest")
		return kafka.Message{Offset: 0}, nil, err
	}

	r.logger.Info("ReadMessage",
		logger.Field{Key: "op", Value: request.Op},
		logger.Field{Key: "market", Value: request.Market},
		logger.Field{Key: "userID", Value: request.UserID},
		logger.Field{Key: "side", Value: request.Side},
		logger.Field{Key: "kind", Value: request.Kind},
		logger.Field{Key: "price", Value: request.Price},
		logger.Field{Key: "amount", Value: request.Amount},
	)

	request.Offset = msg.Offset // Set the offset in the request

	return msg, &request, nil
}

// Close properly closes the Kafka reader.
func (r Reader) Close() error {
	if err := r.kafkaReader.Close(); err != nil {
		r.logError(err, "Close")
		return err
	}
	return nil
}

// CommitMessages commits the messages to Kafka after processing.
func (r Reader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	if err := r.kafkaReader.CommitMessages(ctx, msgs...); err != nil {
		r.logError(err, "CommitMessages")
		return err
	}
	return nil
}
