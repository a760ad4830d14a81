// internal/workers/listings/build-listings-request/handler.go
package buildlistingsrequest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"listings-workers/internal/common/logger"
	"listings-workers/internal/search"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "build-listings-request"

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

	output := h.execute(&input)

	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
	}
}

func (h *Handler) execute(input *Input) *Output {
	params := search.QueryParams(input.SearchQuery, input.Filters)
	path := search.BuildPath(h.config.ListingsPath, input.SearchQuery, input.Filters)

	output := &Output{
		Path:        path,
		QueryParams: params,
	}
	if output.QueryParams == nil {
		output.QueryParams = []string{}
	}
	for _, p := range params {
		if strings.HasPrefix(p, "q=") {
			output.IncludesKeyword = true
			break
		}
	}

	h.logger.Debug("listings request built", map[string]interface{}{
		"path":            output.Path,
		"includesKeyword": output.IncludesKeyword,
	})
	return output
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

func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	return h.execute(input), nil
}
