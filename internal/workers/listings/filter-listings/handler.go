// internal/workers/listings/filter-listings/handler.go
package filterlistings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"listings-workers/internal/common/logger"
	"listings-workers/internal/models"
	"listings-workers/internal/search"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "filter-listings"

const (
	ModeLocation = "location"
	ModeKeyword  = "keyword"
	ModeNone     = "none"
)

var ErrInvalidInput = errors.New("INVALID_INPUT")

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

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, ErrInvalidInput.Error(), err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	listings := models.ParseListings(input.Listings)

	mode, err := resolveMode(input.Mode, input.SearchQuery)
	if err != nil {
		return nil, err
	}

	var kept []models.Listing
	switch mode {
	case ModeLocation:
		kept = search.FilterByLocation(listings, input.SearchQuery)
	case ModeKeyword:
		kept = search.FilterByKeyword(listings, input.SearchQuery)
	default:
		kept = append([]models.Listing{}, listings...)
	}

	h.logger.Debug("listings filtered", map[string]interface{}{
		"mode":       mode,
		"inputCount": len(listings),
		"count":      len(kept),
	})

	return &Output{
		Listings:   kept,
		Count:      len(kept),
		InputCount: len(listings),
		Mode:       mode,
	}, nil
}

func resolveMode(requested, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return ModeNone, nil
	}
	switch strings.ToLower(strings.TrimSpace(requested)) {
	case "":
		if search.IsLocationQuery(query) {
			return ModeLocation, nil
		}
		return ModeKeyword, nil
	case ModeLocation:
		return ModeLocation, nil
	case ModeKeyword:
		return ModeKeyword, nil
	default:
		return "", fmt.Errorf("%w: unknown mode '%s'", ErrInvalidInput, requested)
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
	return h.execute(ctx, input)
}
