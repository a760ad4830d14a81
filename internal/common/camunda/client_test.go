package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "listings-workers/internal/common/errors"
)

var fastRetry = &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

func TestRetry_SucceedsAfterTransientErrors(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetry, "complete-job", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("rpc error: code = Unavailable")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetry, "throw-error", func(context.Context) error {
		calls++
		return errors.New("job not found")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.False(t, stdErr.Retryable)
	assert.Equal(t, "not_found", stdErr.Metadata["reason"])
}

func TestRetry_GivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetry, "topology", func(context.Context) error {
		calls++
		return errors.New("connection refused")
	})
	require.Error(t, err)
	assert.Equal(t, fastRetry.MaxRetries+1, calls)
	assert.Contains(t, err.Error(), "zeebe")
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, &RetryConfig{MaxRetries: 5, BaseDelay: time.Second, MaxDelay: time.Second}, "op", func(context.Context) error {
		return errors.New("deadline exceeded")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

type countingHandler struct{ calls int }

func (c *countingHandler) Handle(worker.JobClient, entities.Job) { c.calls++ }

func TestInstrument_CallsHandler(t *testing.T) {
	h := &countingHandler{}
	wrapped := Instrument("classify-search-query", h)

	wrapped(nil, entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1}})
	wrapped(nil, entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 2}})
	assert.Equal(t, 2, h.calls)
}

type recordingRecorder struct {
	processed []string
	durations int
}

func (r *recordingRecorder) RecordJobProcessed(_ context.Context, taskType, status string) {
	r.processed = append(r.processed, taskType+":"+status)
}

func (r *recordingRecorder) RecordJobDuration(context.Context, string, time.Duration, string) {
	r.durations++
}

func TestInstrumentWith_ReportsToRecorder(t *testing.T) {
	h := &countingHandler{}
	rec := &recordingRecorder{}
	wrapped := InstrumentWith("fetch-listings", h, rec)

	wrapped(nil, entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 7}})
	assert.Equal(t, 1, h.calls)
	assert.Equal(t, []string{"fetch-listings:handled"}, rec.processed)
	assert.Equal(t, 1, rec.durations)
}

// throwingHandler only builds a throw-error command.
type throwingHandler struct{}

func (throwingHandler) Handle(client worker.JobClient, _ entities.Job) { client.NewThrowErrorCommand() }

type nilCommandClient struct{ worker.JobClient }

func (nilCommandClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 { return nil }

func TestInstrumentWith_ReportsOutcome(t *testing.T) {
	rec := &recordingRecorder{}
	wrapped := InstrumentWith("record-search-event", throwingHandler{}, rec)

	wrapped(nilCommandClient{}, entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 9}})
	assert.Equal(t, []string{"record-search-event:bpmn_error"}, rec.processed)
}
