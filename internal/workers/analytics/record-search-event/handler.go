// internal/workers/analytics/record-search-event/handler.go
package recordsearchevent

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"listings-workers/internal/common/camunda"
	"listings-workers/internal/common/logger"
	"listings-workers/internal/models"
	"listings-workers/internal/search"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "record-search-event"
)

var (
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
)

const insertSearchEvent = `
		INSERT INTO search_events (
			id, search_query, normalized_query, is_location, reason,
			request_path, backend_count, result_count, error_message,
			workflow_key, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}
	input.workflowKey = job.ProcessInstanceKey

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, ErrDatabaseInsertFailed.Error(), err.Error(), 3)
		return
	}

	h.completeJob(client, job, output)
}

// Event builds the row for input without writing it.
func (h *Handler) Event(input *Input) models.SearchEvent {
	c := search.ClassifyQuery(input.SearchQuery)
	event := models.SearchEvent{
		ID:              uuid.New().String(),
		SearchQuery:     input.SearchQuery,
		NormalizedQuery: c.Normalized,
		IsLocation:      c.IsLocation,
		Reason:          c.Reason,
		RequestPath:     input.Path,
		BackendCount:    input.BackendCount,
		ResultCount:     input.Count,
		ErrorMessage:    input.Error,
		WorkflowKey:     input.workflowKey,
		CreatedAt:       h.now(),
	}
	if input.Reason != "" {
		event.Reason = input.Reason
		if input.IsLocation != nil {
			event.IsLocation = *input.IsLocation
		}
	}
	if event.RequestPath == "" {
		event.RequestPath = search.ListingsPath
	}
	return event
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	event := h.Event(input)

	_, err := h.db.ExecContext(ctx, insertSearchEvent,
		event.ID,
		event.SearchQuery,
		event.NormalizedQuery,
		event.IsLocation,
		event.Reason,
		event.RequestPath,
		event.BackendCount,
		event.ResultCount,
		sql.NullString{String: event.ErrorMessage, Valid: event.ErrorMessage != ""},
		sql.NullInt64{Int64: event.WorkflowKey, Valid: event.WorkflowKey != 0},
		event.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert failed: %v", ErrDatabaseInsertFailed, err)
	}

	h.logger.Info("search event recorded", map[string]interface{}{
		"eventId":     event.ID,
		"isLocation":  event.IsLocation,
		"resultCount": event.ResultCount,
		"hasError":    event.ErrorMessage != "",
	})

	return &Output{
		EventID:    event.ID,
		RecordedAt: event.CreatedAt.Format(time.RFC3339),
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	// the row is already written; a lost completion would insert it twice
	err = camunda.Retry(context.Background(), camunda.DefaultRetryConfig, "complete-job", func(ctx context.Context) error {
		_, err := cmd.Send(ctx)
		return err
	})
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

// failJob hands retryable failures back to the broker and throws the rest.
func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

	if retries > 0 && job.Retries > 0 {
		left := job.Retries - 1
		if left > retries {
			left = retries
		}
		_, err := client.NewFailJobCommand().
			JobKey(job.Key).
			Retries(left).
			ErrorMessage(errorMessage).
			Send(context.Background())
		if err != nil {
			h.logger.Error("failed to fail job", map[string]interface{}{
				"error": err,
			})
		}
		return
	}

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
