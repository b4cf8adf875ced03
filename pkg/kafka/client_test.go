package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/pkg/config"
)

func TestProduceRequiresOpen(t *testing.T) {
	c := NewClient()
	err := c.Produce(context.Background(), "media.assets.cleanup", []byte("k"), []byte("v"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not opened")
}

func TestOpenRejectsEmptyBrokers(t *testing.T) {
	c := NewClient()
	assert.Error(t, c.Open(config.KafkaConfig{}))
}

func TestWriterIsReusedPerTopic(t *testing.T) {
	c := NewClient()
	require.NoError(t, c.Open(config.KafkaConfig{BootstrapServers: []string{"localhost:9092"}, ClientID: "test"}))
	defer c.Close()

	w1, err := c.writer("a")
	require.NoError(t, err)
	w2, err := c.writer("a")
	require.NoError(t, err)
	w3, err := c.writer("b")
	require.NoError(t, err)

	assert.Same(t, w1, w2)
	assert.NotSame(t, w1, w3)
	assert.Equal(t, "a", w1.Topic)
}
