package listings

import (
	"context"

	"listings-workers/internal/common/logger"
	"listings-workers/internal/common/metrics"
	"listings-workers/internal/models"
	"listings-workers/internal/search"
)

// SearchResult is the outcome of one search. Failures are reported in Error
// with empty Listings; Search never returns a Go error.
type SearchResult struct {
	Seq          uint64           `json:"seq,omitempty"`
	Query        string           `json:"query"`
	IsLocation   bool             `json:"isLocation"`
	Reason       string           `json:"reason"`
	Path         string           `json:"path"`
	Listings     []models.Listing `json:"listings"`
	BackendCount int              `json:"backendCount"`
	Error        string           `json:"error,omitempty"`
	Stale        bool             `json:"stale,omitempty"`
}

// Count is the number of listings to display.
func (r *SearchResult) Count() int {
	return len(r.Listings)
}

// SearchRecorder is told about every completed search.
type SearchRecorder interface {
	RecordSearch(ctx context.Context, isLocation bool, results int)
}

// Service runs classify, build, fetch and filter for a single search.
type Service struct {
	fetcher  Fetcher
	basePath string
	logger   logger.Logger
	recorder SearchRecorder
}

// NewService builds a Service. An empty basePath means search.ListingsPath.
func NewService(fetcher Fetcher, basePath string, log logger.Logger) *Service {
	if basePath == "" {
		basePath = search.ListingsPath
	}
	return &Service{fetcher: fetcher, basePath: basePath, logger: log}
}

// WithRecorder sets the recorder for completed searches.
func (s *Service) WithRecorder(r SearchRecorder) *Service {
	s.recorder = r
	return s
}

// Search fetches and filters listings for (query, filters). Location queries
// are never sent to the backend as text and are filtered locally instead;
// keyword queries are left to the backend's own matching.
func (s *Service) Search(ctx context.Context, query string, filters models.Filters) *SearchResult {
	c := search.ClassifyQuery(query)
	result := &SearchResult{
		Query:      query,
		IsLocation: c.IsLocation,
		Reason:     c.Reason,
		Path:       search.BuildPath(s.basePath, query, filters),
		Listings:   []models.Listing{},
	}
	metrics.SearchQueriesTotal.WithLabelValues(metrics.Classification(c.IsLocation), c.Reason).Inc()

	listings, err := s.fetcher.FetchListings(ctx, result.Path)
	if err != nil {
		result.Error = ErrorMessage(err)
		s.logger.Warn("listings search failed", map[string]interface{}{
			"path":  result.Path,
			"error": err,
		})
		return result
	}

	result.BackendCount = len(listings)
	if c.IsLocation {
		result.Listings = search.FilterByLocation(listings, query)
	} else {
		result.Listings = listings
	}

	metrics.SearchResultsReturned.WithLabelValues(metrics.Classification(c.IsLocation)).Observe(float64(len(result.Listings)))
	if s.recorder != nil {
		s.recorder.RecordSearch(ctx, c.IsLocation, len(result.Listings))
	}
	s.logger.Debug("listings search completed", map[string]interface{}{
		"path":         result.Path,
		"isLocation":   c.IsLocation,
		"reason":       c.Reason,
		"backendCount": result.BackendCount,
		"count":        len(result.Listings),
	})
	return result
}
