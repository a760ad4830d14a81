package camunda

import (
	"context"
	"time"

	"listings-workers/internal/common/config"
	"listings-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// JobHandler is implemented by every worker package's Handler.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// JobRecorder receives per-job measurements in addition to the prometheus collectors.
type JobRecorder interface {
	RecordJobProcessed(ctx context.Context, taskType, status string)
	RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string)
}

// Job outcomes as reported to the recorder.
const (
	OutcomeCompleted = "completed"
	OutcomeBPMNError = "bpmn_error"
	OutcomeFailed    = "failed"
	OutcomeNone      = "handled"
)

// outcomeClient notes which terminal command the handler built.
type outcomeClient struct {
	worker.JobClient
	outcome string
}

func (c *outcomeClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	c.outcome = OutcomeCompleted
	return c.JobClient.NewCompleteJobCommand()
}

func (c *outcomeClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	c.outcome = OutcomeBPMNError
	return c.JobClient.NewThrowErrorCommand()
}

func (c *outcomeClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	c.outcome = OutcomeFailed
	return c.JobClient.NewFailJobCommand()
}

// Instrument wraps h so every job updates the active gauge, duration
// histogram and completed/failed counters.
func Instrument(taskType string, h JobHandler) worker.JobHandler {
	return InstrumentWith(taskType, h, nil)
}

// InstrumentWith is Instrument that also reports to rec when it is non-nil.
func InstrumentWith(taskType string, h JobHandler, rec JobRecorder) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		active := metrics.WorkerJobsActive.WithLabelValues(taskType)
		active.Inc()
		defer active.Dec()

		oc := &outcomeClient{JobClient: client, outcome: OutcomeNone}
		start := time.Now()
		h.Handle(oc, job)
		elapsed := time.Since(start)

		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
		switch oc.outcome {
		case OutcomeCompleted:
			metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		case OutcomeBPMNError, OutcomeFailed:
			metrics.WorkerJobsFailed.WithLabelValues(taskType, oc.outcome).Inc()
		}

		if rec != nil {
			ctx := context.Background()
			rec.RecordJobProcessed(ctx, taskType, oc.outcome)
			rec.RecordJobDuration(ctx, taskType, elapsed, oc.outcome)
		}
	}
}

// StartWorker opens a job worker for taskType using the per-worker settings.
// rec may be nil.
func StartWorker(client zbc.Client, taskType string, wc config.WorkerConfig, h JobHandler, rec JobRecorder, log *zap.Logger) worker.JobWorker {
	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(InstrumentWith(taskType, h, rec)).
		MaxJobsActive(wc.MaxJobsActive).
		Timeout(config.GetDuration(wc.Timeout)).
		Name(taskType + "-worker").
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wc.MaxJobsActive),
		zap.Int("timeoutMs", wc.Timeout),
	)
	return jobWorker
}
