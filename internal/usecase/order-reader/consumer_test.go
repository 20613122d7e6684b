package orderreader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradehub/matching-engine/pkg/config"
	"github.com/tradehub/matching-engine/pkg/logger"
)

// Test 1: The reader joins its consumer group on the intake topic
func TestNewReader(t *testing.T) {
	log, err := logger.NewLogger()
	require.NoError(t, err)

	reader := NewReader(config.KafkaConfig{
		Brokers: []string{"localhost:9092"},
		Topic:   "orders",
		GroupID: "matching_engine",
	}, log)

	cfg := reader.kafkaReader.Config()
	assert.Equal(t, "orders", cfg.Topic)
	assert.Equal(t, "matching_engine", cfg.GroupID)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers)

	require.NoError(t, reader.Close())
}
