package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "github.com/tradehub/matching-engine/internal/app/engine"
	"github.com/tradehub/matching-engine/internal/usecase/balance"
	"github.com/tradehub/matching-engine/internal/usecase/orderbook"
	orderreader "github.com/tradehub/matching-engine/internal/usecase/order-reader"
	"github.com/tradehub/matching-engine/internal/usecase/orderstore"
	"github.com/tradehub/matching-engine/internal/usecase/registry"
	tradepublisher "github.com/tradehub/matching-engine/internal/usecase/trade-publisher"
	"github.com/tradehub/matching-engine/pkg/config"
	"github.com/tradehub/matching-engine/pkg/logger"
	"github.com/tradehub/matching-engine/pkg/redis"
)

var cfg *config.Config
var log *logger.Logger

func init() {
	cfg = &config.Config{}
	if err := config.Load(cfg); err != nil {
		panic(err)
	}

	l, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}
	log = l
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	redisConfig := redis.DefaultConfig()
	redisConfig.Addrs = []string{cfg.RedisConfig.Addrs}
	redisConfig.Password = cfg.RedisConfig.Password
	redisConfig.Username = cfg.RedisConfig.Username
	redisConfig.DB = cfg.RedisConfig.DB
	rclient := redis.NewClient(log, redisConfig)

	if err := rclient.Connect(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "connect_redis",
		})
		return
	}

	// Initialize components
	publisher := tradepublisher.NewPublisher(cfg.TradePublisherConfig, log)
	reg := registry.NewRegistry(orderbook.Collaborators{
		Balance:    balance.NewMemory(log),
		Store:      orderstore.NewStore(rclient, log),
		MarketData: publisher,
	}, log)
	for _, market := range cfg.Markets {
		reg.GetOrCreate(market)
	}

	oReader := orderreader.NewReader(cfg.KafkaConfig, log)
	engine := app.NewEngineWithOptions(reg, oReader, publisher, log, &app.Options{
		DepthInterval: cfg.DepthInterval,
		DepthLevels:   cfg.DepthLevels,
	})

	// Start the engine
	if err := engine.Start(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "start_engine",
		})
		return
	}

	log.Info("Matching engine started successfully", logger.Field{
		Key:   "markets",
		Value: cfg.Markets,
	})

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info("Received shutdown signal", logger.Field{
		Key:   "signal",
		Value: sig.String(),
	})

	cancel()

	// Create a timeout context for graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := engine.Stop(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "stop_engine",
		})
	}

	if err := publisher.Close(); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "close_publisher",
		})
	}

	if err := rclient.Disconnect(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "disconnect_redis",
		})
	}

	log.Info("Matching engine shutdown complete")
}
