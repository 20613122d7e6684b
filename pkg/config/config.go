package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MustLoad loads the configuration from environment variables and .env file.
func MustLoad[T any](cfg T) {
	_ = godotenv.Load() // Load environment variables from .env file

	env.Must(cfg, env.Parse(cfg))
}

// Load loads the configuration from environment variables and .env file.
func Load[T any](cfg T) error {
	_ = godotenv.Load() // .env file is optional

	if err := env.Parse(cfg); err != nil {
		return err
	}

	return nil
}

// Config holds the configuration for the matching engine process.
type Config struct {
	// Markets is the list of market symbols served by this process, e.g. BTC-USD,ETH-USD.
	Markets []string `env:"MARKETS,required"`

	KafkaConfig          `envPrefix:"KAFKA_"`
	TradePublisherConfig `envPrefix:"TRADE_"`
	RedisConfig          `envPrefix:"REDIS_"`

	// DepthInterval is how often the depth broadcaster publishes a snapshot per market.
	DepthInterval time.Duration `env:"DEPTH_INTERVAL" envDefault:"2s"`
	// DepthLevels bounds the number of price levels per side in a published snapshot.
	DepthLevels int `env:"DEPTH_LEVELS" envDefault:"20"`
}

// KafkaConfig holds the configuration for the order intake consumer.
type KafkaConfig struct {
	Topic   string   `env:"TOPIC,required"`
	GroupID string   `env:"GROUP_ID" envDefault:"matching_engine"`
	Brokers []string `env:"BROKER,required"`
}

// TradePublisherConfig holds the configuration for the trade/depth publisher.
type TradePublisherConfig struct {
	Topic      string   `env:"TOPIC,required"`
	DepthTopic string   `env:"DEPTH_TOPIC" envDefault:"depth"`
	Brokers    []string `env:"BROKER,required"`
}

// RedisConfig holds the configuration for the Redis order store.
type RedisConfig struct {
	Addrs    string `env:"ADDRESS,required"`
	Password string `env:"PASSWORD" envDefault:""`
	Username string `env:"USERNAME" envDefault:""`
	DB       int    `env:"DB" envDefault:"0"`
}
