// internal/common/errors/handler.go
package errors

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler fails or throws a job based on the error's code.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleJobError normalizes err, then fails the job with retries when the code is
// retryable and the job still has retries left, otherwise throws a BPMN error.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := NormalizeError(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	h.logError(job, stdErr, bpmnErr)

	if bpmnErr.Retries > 0 && job.Retries > 0 {
		h.failJobWithRetries(ctx, client, job, bpmnErr)
		return
	}
	h.throwBPMNError(ctx, client, job, bpmnErr)
}

// NormalizeError ensures we always have a StandardError.
func NormalizeError(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// retriesLeft caps the recommended count at what the job has remaining.
func retriesLeft(job entities.Job, maxRetries int) int32 {
	if job.Retries > 0 && int(job.Retries)-1 < maxRetries {
		return job.Retries - 1
	}
	return int32(maxRetries)
}

func (h *ErrorHandler) failJobWithRetries(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retriesLeft(job, bpmnErr.Retries)).
		ErrorMessage(bpmnErr.Message)

	if withVars, err := cmd.VariablesFromMap(bpmnErr.ToErrorVariables()); err == nil {
		_, _ = withVars.Send(ctx)
		return
	}
	_, _ = cmd.Send(ctx)
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	if withVars, err := cmd.VariablesFromMap(bpmnErr.ToErrorVariables()); err == nil {
		_, _ = withVars.Send(ctx)
		return
	}
	_, _ = cmd.Send(ctx)
}

func (h *ErrorHandler) logError(job entities.Job, stdErr *StandardError, bpmnErr *BPMNError) {
	h.logger.Error("Job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        string(stdErr.Code),
		"bpmnErrorCode":    bpmnErr.Code,
		"message":          bpmnErr.Message,
		"details":          stdErr.Details,
		"retryable":        stdErr.Retryable,
		"retries":          bpmnErr.Retries,
		"errorCategory":    GetErrorCategory(stdErr.Code),
		"workflowInstance": job.ProcessInstanceKey,
	})
}
