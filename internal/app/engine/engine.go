package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	marketdatav1 "github.com/tradehub/matching-engine/internal/domain/marketdata/v1"
	orderreaderv1 "github.com/tradehub/matching-engine/internal/domain/order-reader/v1"
	orderbookv1 "github.com/tradehub/matching-engine/internal/domain/orderbook/v1"
	"github.com/tradehub/matching-engine/internal/usecase/registry"
	"github.com/tradehub/matching-engine/pkg/logger"
)

// Engine is the main process loop: it consumes order requests from the
// intake stream, routes them to the market registry and periodically
// broadcasts depth snapshots for every active market.
type Engine struct {
	registry    *registry.Registry
	orderReader orderreaderv1.OrderReader
	marketData  marketdatav1.Publisher
	logger      *logger.Logger

	// Shutdown coordination
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Configuration
	depthInterval time.Duration
	depthLevels   int

	// Trade statistics
	mu          sync.RWMutex
	totalTrades int64
}

// NewEngine creates a new instance of Engine with the provided dependencies.
func NewEngine(
	registry *registry.Registry,
	orderReader orderreaderv1.OrderReader,
	marketData marketdatav1.Publisher,
	logger *logger.Logger,
) *Engine {
	return NewEngineWithOptions(registry, orderReader, marketData, logger, DefaultEngineOptions())
}

// NewEngineWithOptions creates a new engine with custom options
func NewEngineWithOptions(
	registry *registry.Registry,
	orderReader orderreaderv1.OrderReader,
	marketData marketdatav1.Publisher,
	logger *logger.Logger,
	options *Options,
) *Engine {
	return &Engine{
		registry:    registry,
		orderReader: orderReader,
		marketData:  marketData,
		logger:      logger,

		depthInterval: options.DepthInterval,
		depthLevels:   options.DepthLevels,
	}
}

// Start initializes the engine and starts processing routines.
func (e *Engine) Start(ctx context.Context) error {
	e.ctx, e.cancel = context.WithCancel(ctx)

	e.wg.Add(2)
	go e.runOrderProcessor()
	go e.runDepthBroadcaster()

	e.logger.Info("Engine started", logger.Field{
		Key:   "markets",
		Value: e.registry.Markets(),
	})

	return nil
}

// Stop gracefully shuts down the engine
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel != nil {
		e.cancel()
	}

	// Wait for goroutines to finish with timeout
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("Engine stopped gracefully")
		return nil
	case <-ctx.Done():
		e.logger.Warn("Engine stop timeout exceeded")
		return ctx.Err()
	}
}

// runOrderProcessor combines request reading and processing in a single goroutine
func (e *Engine) runOrderProcessor() {
	defer e.wg.Done()

	e.logger.Info("Starting order processor")

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("Order processor shutting down")
			e.orderReader.Close()
			return
		default:
			msg, request, err := e.orderReader.ReadMessage(e.ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					continue
				}
				e.logger.ErrorContext(e.ctx, err, logger.Field{
					Key:   "action",
					Value: "read_order_message",
				})
				// Simple backoff
				time.Sleep(100 * time.Millisecond)
				continue
			}

			if err := e.processRequest(request); err != nil {
				e.logger.ErrorContext(e.ctx, err,
					logger.Field{Key: "action", Value: "process_request"},
					logger.Field{Key: "offset", Value: request.Offset},
				)
			}

			if err := e.orderReader.CommitMessages(e.ctx, msg); err != nil {
				e.logger.ErrorContext(e.ctx, err, logger.Field{
					Key:   "action",
					Value: "commit_order_message",
				})
			}
		}
	}
}

// runDepthBroadcaster periodically publishes a depth snapshot per market
func (e *Engine) runDepthBroadcaster() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.depthInterval)
	defer ticker.Stop()

	e.logger.Info("Starting depth broadcaster")

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("Depth broadcaster shutting down")
			return
		case <-ticker.C:
			e.broadcastDepth()
		}
	}
}

// processRequest processes a single order request
func (e *Engine) processRequest(request *orderbookv1.PlaceOrderRequest) error {
	e.logger.Debug("Processing request",
		logger.Field{Key: "op", Value: request.Op},
		logger.Field{Key: "market", Value: request.Market},
		logger.Field{Key: "offset", Value: request.Offset},
	)

	switch request.Op {
	case orderbookv1.OpCancel:
		canceled := e.registry.CancelOrder(e.ctx, request.Market, request.OrderID)
		e.logger.Info("Cancel processed",
			logger.Field{Key: "market", Value: request.Market},
			logger.Field{Key: "orderID", Value: request.OrderID},
			logger.Field{Key: "canceled", Value: canceled},
		)
		return nil
	case orderbookv1.OpPlace:
		side, err := orderbookv1.ParseSide(request.Side)
		if err != nil {
			return err
		}
		kind, err := orderbookv1.ParseKind(request.Kind)
		if err != nil {
			return err
		}

		order, err := e.registry.SubmitOrder(e.ctx, request.Market, request.UserID, side, kind, request.Price, request.Amount)
		if err != nil {
			return err
		}

		if order.Filled.IsPositive() {
			e.recordTrade()
		}
		e.logger.Info("Order processed",
			logger.Field{Key: "market", Value: order.Market},
			logger.Field{Key: "orderID", Value: order.ID},
			logger.Field{Key: "status", Value: order.Status.String()},
			logger.Field{Key: "filled", Value: order.Filled.String()},
		)
		return nil
	default:
		return orderbookv1.ErrInvalidOp
	}
}

// broadcastDepth publishes the bounded depth of every known market
func (e *Engine) broadcastDepth() {
	for _, market := range e.registry.Markets() {
		depth, err := e.registry.GetDepth(market, e.depthLevels)
		if err != nil {
			continue
		}
		if err := e.marketData.PublishDepth(e.ctx, market, depth); err != nil {
			e.logger.ErrorContext(e.ctx, err,
				logger.Field{Key: "action", Value: "publish_depth"},
				logger.Field{Key: "market", Value: market},
			)
		}
	}
}

func (e *Engine) recordTrade() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.totalTrades++
}

// GetTotalTrades returns the number of submissions that resulted in at least one fill
func (e *Engine) GetTotalTrades() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.totalTrades
}
