package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordMetricsWithoutSentryClient(t *testing.T) {
	m := NewSentryMetrics()

	// Spans are fire-and-forget; recording must be safe with no client.
	assert.NotPanics(t, func() {
		m.RecordAPIRequest(context.Background(), "/generate_melody", 200, 5*time.Millisecond)
		m.RecordSearchMetrics(context.Background(), "generate_melody", 100, 5*time.Millisecond)
	})
}

func TestRecordMetricsDisabled(t *testing.T) {
	m := &SentryMetrics{enabled: false}
	assert.NotPanics(t, func() {
		m.RecordAPIRequest(context.Background(), "/health", 200, time.Millisecond)
		m.RecordSearchMetrics(context.Background(), "reharmonize_melody", 15, time.Millisecond)
	})
}
