// internal/workers/listings/parse-listing-filters/handler.go
package parselistingfilters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"listings-workers/internal/common/logger"
	"listings-workers/internal/common/validation"
	"listings-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "parse-listing-filters"

var ErrInvalidFilterFormat = errors.New("INVALID_FILTER_FORMAT")

var (
	filtersSchema = validation.MustCompile(rawFiltersSchema)
	nonNumeric    = regexp.MustCompile(`[^\d.]+`)
)

var validSortOptions = func() map[string]bool {
	m := make(map[string]bool, len(models.ValidSortOptions))
	for _, s := range models.ValidSortOptions {
		m[s] = true
	}
	return m
}()

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
		h.failJob(client, job, ErrInvalidFilterFormat.Error(), err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	raw := input.RawFilters
	if raw == nil {
		raw = map[string]interface{}{}
	}

	result, err := filtersSchema.Validate(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilterFormat, err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFilterFormat, result.Summary())
	}

	filters := models.Filters{
		Locations:  parseStringArray(raw["locations"]),
		Categories: parseStringArray(raw["categories"]),
		Ratings:    []float64{},
		SortBy:     models.SortRelevance,
	}

	if pr, ok := raw["priceRange"].(map[string]interface{}); ok {
		if filters.PriceRange.Min, err = parseAmount(pr["min"]); err != nil {
			return nil, fmt.Errorf("%w: priceRange.min: %v", ErrInvalidFilterFormat, err)
		}
		if filters.PriceRange.Max, err = parseAmount(pr["max"]); err != nil {
			return nil, fmt.Errorf("%w: priceRange.max: %v", ErrInvalidFilterFormat, err)
		}
		if filters.PriceRange.Max > 0 && filters.PriceRange.Min > filters.PriceRange.Max {
			return nil, fmt.Errorf("%w: price min (%v) > max (%v)",
				ErrInvalidFilterFormat, filters.PriceRange.Min, filters.PriceRange.Max)
		}
	}

	ratings, err := h.parseRatings(raw["ratings"])
	if err != nil {
		return nil, err
	}
	filters.Ratings = ratings

	if s, ok := raw["sortBy"].(string); ok {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			if !validSortOptions[s] {
				return nil, fmt.Errorf("%w: invalid sortBy '%s'", ErrInvalidFilterFormat, s)
			}
			filters.SortBy = s
		}
	}

	h.logger.Info("filters parsed successfully", map[string]interface{}{
		"categories": filters.Categories,
		"locations":  filters.Locations,
		"priceRange": filters.PriceRange,
		"ratings":    filters.Ratings,
		"sortBy":     filters.SortBy,
	})

	return &Output{Filters: filters}, nil
}

func (h *Handler) parseRatings(raw interface{}) ([]float64, error) {
	var items []interface{}
	switch v := raw.(type) {
	case nil:
		return []float64{}, nil
	case []interface{}:
		items = v
	default:
		items = []interface{}{v}
	}

	out := make([]float64, 0, len(items))
	for _, item := range items {
		r, err := parseAmount(item)
		if err != nil {
			return nil, fmt.Errorf("%w: rating: %v", ErrInvalidFilterFormat, err)
		}
		if r > h.config.MaxRating {
			return nil, fmt.Errorf("%w: rating %v exceeds %v", ErrInvalidFilterFormat, r, h.config.MaxRating)
		}
		out = append(out, r)
	}
	return out, nil
}

// parseStringArray accepts a comma-separated string or an array, trims and
// de-duplicates. Always non-nil.
func parseStringArray(raw interface{}) []string {
	result := []string{}
	seen := make(map[string]bool)

	add := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			result = append(result, s)
			seen[s] = true
		}
	}

	switch v := raw.(type) {
	case string:
		for _, s := range strings.Split(v, ",") {
			add(s)
		}
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	case []string:
		for _, s := range v {
			add(s)
		}
	}
	return result
}

// parseAmount reads a non-negative number. Strings may carry currency marks
// and thousands separators ("NGN 15,000.50", "₦20000"). nil is zero.
func parseAmount(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case float64:
		if v < 0 {
			return 0, errors.New("negative value not allowed")
		}
		return v, nil
	case int:
		if v < 0 {
			return 0, errors.New("negative value not allowed")
		}
		return float64(v), nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, nil
		}
		if strings.HasPrefix(trimmed, "-") {
			return 0, errors.New("negative value not allowed")
		}
		cleaned := nonNumeric.ReplaceAllString(strings.ReplaceAll(trimmed, ",", ""), "")
		if cleaned == "" {
			return 0, fmt.Errorf("not a number: %q", v)
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not a number: %v", v)
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
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
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
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
