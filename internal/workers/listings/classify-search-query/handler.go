// internal/workers/listings/classify-search-query/handler.go
package classifysearchquery

import (
	"context"
	"encoding/json"
	"fmt"

	"listings-workers/internal/common/logger"
	"listings-workers/internal/search"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "classify-search-query"

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output := h.execute(ctx, &input)
	h.completeJob(client, job, output)
}

// execute never fails: every string, including the empty one, has a classification.
func (h *Handler) execute(_ context.Context, input *Input) *Output {
	c := search.ClassifyQuery(input.SearchQuery)

	h.logger.Debug("search query classified", map[string]interface{}{
		"searchQuery": input.SearchQuery,
		"isLocation":  c.IsLocation,
		"reason":      c.Reason,
	})

	return &Output{
		IsLocation:      c.IsLocation,
		NormalizedQuery: c.Normalized,
		Reason:          c.Reason,
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{"error": err})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input), nil
}
