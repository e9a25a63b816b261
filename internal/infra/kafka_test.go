package infra

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Event Topic Tests ---

func TestEventTopic(t *testing.T) {
	assert.Equal(t, "footyheroes.player", EventTopic("player"))
	assert.Equal(t, "footyheroes.match", EventTopic("match"))
	assert.Equal(t, "footyheroes.match_request", EventTopic("match_request"))
}

// --- Disabled Producer Tests ---

func TestKafkaProducer_DisabledIsNoOp(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	p := NewKafkaProducer("", true, logger)
	require.NoError(t, p.Publish(context.Background(), EventTopic("match"), []byte("k"), []byte("v")))
	require.NoError(t, p.Close())

	p = NewKafkaProducer("localhost:9092", false, logger)
	require.NoError(t, p.Publish(context.Background(), EventTopic("player"), []byte("k"), []byte("v")))
	require.NoError(t, p.Close())
}
