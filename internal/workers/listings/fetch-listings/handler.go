// internal/workers/listings/fetch-listings/handler.go
package fetchlistings

import (
	"context"
	"encoding/json"
	"fmt"

	"listings-workers/internal/common/logger"
	"listings-workers/internal/listings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "fetch-listings"

type Handler struct {
	config  *Config
	service *listings.Service
	logger  logger.Logger
}

func NewHandler(config *Config, service *listings.Service, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		service: service,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
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

func (h *Handler) execute(ctx context.Context, input *Input) *Output {
	result := h.service.Search(ctx, input.SearchQuery, input.Filters)

	output := &Output{
		Listings:     result.Listings,
		Count:        result.Count(),
		BackendCount: result.BackendCount,
		IsLocation:   result.IsLocation,
		Reason:       result.Reason,
		Path:         result.Path,
		Error:        result.Error,
		HasError:     result.Error != "",
	}

	if output.HasError {
		h.logger.Warn("listings unavailable", map[string]interface{}{
			"path":  output.Path,
			"error": output.Error,
		})
	} else {
		h.logger.Info("listings fetched", map[string]interface{}{
			"path":         output.Path,
			"count":        output.Count,
			"backendCount": output.BackendCount,
		})
	}
	return output
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
