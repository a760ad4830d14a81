// internal/workers/data-access/query-listings-index/handler.go
package querylistingsindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"

	apperrors "listings-workers/internal/common/errors"
	"listings-workers/internal/common/logger"
	"listings-workers/internal/models"
	"listings-workers/internal/search"
	"listings-workers/internal/workers/data-access/query-listings-index/queries"
)

const TaskType = "query-listings-index"

type Handler struct {
	config       *Config
	client       *elasticsearch.Client
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, client *elasticsearch.Client, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		client:       client,
		logger:       log,
		errorHandler: apperrors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errorHandler.HandleJobError(context.Background(), client, job,
			apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(context.Background(), client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidInputError("input cannot be nil")
	}

	index := input.IndexName
	if index == "" {
		index = h.config.Index
	}

	q := queries.ListingsQuery{
		Index:       index,
		SearchQuery: input.SearchQuery,
		Filters:     input.Filters,
		From:        input.Pagination.From,
		Size:        input.Pagination.Size,
	}

	if strings.TrimSpace(input.SearchQuery) != "" && search.IsLocationQuery(input.SearchQuery) {
		return h.executeLocation(ctx, q)
	}

	result, err := queries.Execute(ctx, h.client, q)
	if err != nil {
		return nil, h.mapError(ctx, index, err)
	}

	h.logger.Info("listings index queried", map[string]interface{}{
		"index":      index,
		"isLocation": false,
		"totalHits":  result.TotalHits,
		"count":      len(result.Listings),
		"took":       result.Took,
	})

	return &Output{
		Listings:  result.Listings,
		Count:     len(result.Listings),
		TotalHits: result.TotalHits,
		MaxScore:  result.MaxScore,
		Took:      result.Took,
	}, nil
}

// executeLocation collects every candidate, applies the strict location
// filter and only then paginates. TotalHits counts the listings that passed.
func (h *Handler) executeLocation(ctx context.Context, q queries.ListingsQuery) (*Output, error) {
	result, err := queries.Scan(ctx, h.client, q, h.config.ScanLimit)
	if err != nil {
		return nil, h.mapError(ctx, q.Index, err)
	}
	if result.Truncated {
		h.logger.Warn("location scan hit its limit", map[string]interface{}{
			"index":      q.Index,
			"candidates": result.TotalHits,
			"scanned":    len(result.Listings),
		})
	}

	matched := search.FilterByLocation(result.Listings, q.SearchQuery)

	from, size := q.Pagination()
	page := []models.Listing{}
	if from < len(matched) {
		end := from + size
		if end > len(matched) {
			end = len(matched)
		}
		page = matched[from:end]
	}

	h.logger.Info("listings index queried", map[string]interface{}{
		"index":      q.Index,
		"isLocation": true,
		"candidates": result.TotalHits,
		"matched":    len(matched),
		"count":      len(page),
		"took":       result.Took,
	})

	return &Output{
		Listings:   page,
		Count:      len(page),
		TotalHits:  int64(len(matched)),
		IsLocation: true,
		Took:       result.Took,
	}, nil
}

func (h *Handler) mapError(ctx context.Context, index string, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return apperrors.NewSearchTimeoutError(index)
	case errors.Is(err, queries.ErrIndexNotFound):
		return apperrors.NewIndexNotFoundError(index)
	case errors.Is(err, queries.ErrMissingIndex):
		return apperrors.NewInvalidInputError(err.Error())
	default:
		return apperrors.NewSearchQueryFailedError(index, err)
	}
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
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
