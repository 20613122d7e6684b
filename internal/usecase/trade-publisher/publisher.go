package tradepublisher

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	orderbookv1 "github.com/tradehub/matching-engine/internal/domain/orderbook/v1"
	"github.com/tradehub/matching-engine/pkg/config"
	"github.com/tradehub/matching-engine/pkg/errors"
	"github.com/tradehub/matching-engine/pkg/logger"
)

// Publisher represents a Kafka publisher for trade and depth events.
type Publisher struct {
	tradeWriter *kafka.Writer
	depthWriter *kafka.Writer
	logger      *logger.Logger
}

type depthEvent struct {
	Market string             `json:"market"`
	Depth  *orderbookv1.Depth `json:"depth"`
}

// NewPublisher creates a new Kafka publisher for trade and depth events.
func NewPublisher(config config.TradePublisherConfig, log *logger.Logger) *Publisher {
	tradeWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers: config.Brokers,
		Topic:   config.Topic,
	})
	depthWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers: config.Brokers,
		Topic:   config.DepthTopic,
	})

	return &Publisher{
		tradeWriter: tradeWriter,
		depthWriter: depthWriter,
		logger:      log,
	}
}

// PublishTrade publishes a trade fact to the trade topic, keyed by market.
func (p *Publisher) PublishTrade(ctx context.Context, trade *orderbookv1.Trade) error {
	value, err := json.Marshal(trade)
	if err != nil {
		return errors.NewTracer(errors.TradePublishError).Wrap(err)
	}

	msg := kafka.Message{
		Key:   []byte(trade.Market),
		Value: value,
	}
	if err := p.tradeWriter.WriteMessages(ctx, msg); err != nil {
		p.logger.ErrorContext(ctx, err,
			logger.Field{Key: "tradeID", Value: trade.ID},
			logger.Field{Key: "market", Value: trade.Market},
		)
		return errors.NewTracer(errors.TradePublishError).Wrap(err)
	}
	return nil
}

// PublishDepth publishes a depth snapshot to the depth topic, keyed by market.
func (p *Publisher) PublishDepth(ctx context.Context, market string, depth *orderbookv1.Depth) error {
	value, err := json.Marshal(depthEvent{Market: market, Depth: depth})
	if err != nil {
		return errors.NewTracer(errors.DepthPublishError).Wrap(err)
	}

	msg := kafka.Message{
		Key:   []byte(market),
		Value: value,
	}
	if err := p.depthWriter.WriteMessages(ctx, msg); err != nil {
		p.logger.ErrorContext(ctx, err,
			logger.Field{Key: "market", Value: market},
		)
		return errors.NewTracer(errors.DepthPublishError).Wrap(err)
	}
	return nil
}

// Close closes both writers.
func (p *Publisher) Close() error {
	if err := p.tradeWriter.Close(); err != nil {
		return err
	}
	return p.depthWriter.Close()
}
