package embedder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/recall/pkg/alert"
	"github.com/soundprediction/recall/pkg/config"
	"github.com/soundprediction/recall/pkg/errs"
)

func breakerConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         60,
		Timeout:          60,
		ReadyToTripRatio: 0.5,
	}
}

func TestCircuitBreakerPassesThroughWhenHealthy(t *testing.T) {
	inner := &fakeClient{dims: 3}
	client := NewCircuitBreakerClient(inner, breakerConfig(), &alert.NoOpAlerter{}, "test")

	vectors, err := client.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vectors, 2)
	assert.Equal(t, 3, client.Dimensions())
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	inner := &fakeClient{fail: true}

	var alerted []string
	alerter := alert.FuncAlerter(func(subject, message string) error {
		alerted = append(alerted, subject)
		return nil
	})
	client := NewCircuitBreakerClient(inner, breakerConfig(), alerter, "embedding")

	// Three consecutive failures at a 0.5 trip ratio open the breaker.
	for i := 0; i < 3; i++ {
		_, err := client.Embed(context.Background(), []string{"x"})
		require.Error(t, err)
	}

	callsBefore := inner.calls
	_, err := client.Embed(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeService), "open breaker should fail fast with a service error")
	assert.Equal(t, callsBefore, inner.calls, "open breaker must not reach the provider")

	require.NotEmpty(t, alerted)
	assert.Contains(t, alerted[0], "embedding")
}

func TestCircuitBreakerEmbedSingle(t *testing.T) {
	inner := &fakeClient{}
	client := NewCircuitBreakerClient(inner, breakerConfig(), nil, "test")

	vector, err := client.EmbedSingle(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0}, vector)
}
