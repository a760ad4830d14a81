package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestObservability_RecordDoesNotPanic(t *testing.T) {
	obs := New("listings-workers-test", zaptest.NewLogger(t))
	ctx := context.Background()

	obs.RecordJobProcessed(ctx, "fetch-listings", "completed")
	obs.RecordJobDuration(ctx, "fetch-listings", 25*time.Millisecond, "completed")
	obs.RecordSearch(ctx, true, 3)
	obs.RecordSearch(ctx, false, 0)
	obs.Shutdown()
}

func TestObservability_ZeroValueIsSafe(t *testing.T) {
	var obs Observability
	obs.RecordJobProcessed(context.Background(), "x", "failed")
	obs.RecordSearch(context.Background(), true, 1)
	obs.Shutdown()
}

func TestNewTracing_NoEndpoint(t *testing.T) {
	tr, err := NewTracing("listings-workers-test", "")
	require.NoError(t, err)

	_, span := tr.Tracer().Start(context.Background(), "test-span")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	assert.NoError(t, tr.Shutdown(context.Background()))
}
