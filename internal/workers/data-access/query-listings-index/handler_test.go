// internal/workers/data-access/query-listings-index/handler_test.go
package querylistingsindex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	apperrors "listings-workers/internal/common/errors"
	"listings-workers/internal/common/logger"
	"listings-workers/internal/models"
	"listings-workers/internal/workers/data-access/query-listings-index/queries"
)

// ==========================
// Test Helpers
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
		Index:   "listings",
	}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

const searchHits = `{
  "took": 3,
  "hits": {
    "total": {"value": 3},
    "max_score": 1.0,
    "hits": [
      {"_id": "a1", "_source": {"title": "Sango Suites", "category": "hotel", "location": {"raw": "Sango, Ibadan"}}},
      {"_id": "a2", "_source": {"id": "b2", "title": "Bodija Grill", "category": "restaurant", "location": {"area": "Bodija"}}},
      {"_id": "a3", "_source": {"id": "b3", "title": "Ota Lodge", "category": "hotel", "location": {"nestedArea": "Sango Ota"}}}
    ]
  }
}`

// fakeElasticsearch answers every request with status and body and records
// the last search body it saw.
func fakeElasticsearch(t *testing.T, status int, body string, lastBody *string) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if lastBody != nil && r.Body != nil {
			raw, _ := io.ReadAll(r.Body)
			*lastBody = string(raw)
		}
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func createRealElasticsearchClient(t *testing.T) *elasticsearch.Client {
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{"http://localhost:9200"}})
	if err != nil {
		t.Skipf("Skipping test: failed to create Elasticsearch client: %v", err)
	}
	res, err := client.Info()
	if err != nil {
		t.Skipf("Skipping test: Elasticsearch not responding: %v", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		t.Skipf("Skipping test: Elasticsearch error: %s", res.String())
	}
	return client
}

// ==========================
// Execute Tests
// ==========================

func TestHandler_Execute_LocationQueryFiltersHits(t *testing.T) {
	var sent string
	client := fakeElasticsearch(t, http.StatusOK, searchHits, &sent)
	handler := NewHandler(createTestConfig(), client, createTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{SearchQuery: "sango"})
	require.NoError(t, err)

	assert.True(t, output.IsLocation)
	assert.Equal(t, int64(2), output.TotalHits)
	require.Equal(t, 2, output.Count)
	assert.Equal(t, "a1", output.Listings[0].ID)
	assert.Equal(t, "b3", output.Listings[1].ID)
	assert.Equal(t, "sango ota", output.Listings[1].MatchedLocation)
	assert.NotContains(t, sent, "multi_match")
	assert.Contains(t, sent, `"*sango*"`)
}

// pagedElasticsearch serves the catalog in batches keyed by search_after,
// the way a cluster walks a sorted index.
func pagedElasticsearch(t *testing.T, catalog []map[string]interface{}) (*elasticsearch.Client, *atomic.Int32) {
	t.Helper()
	requests := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		var body struct {
			SearchAfter []interface{} `json:"search_after"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		start := 0
		if len(body.SearchAfter) == 1 {
			start = int(body.SearchAfter[0].(float64)) + 1
		}
		end := start + queries.ScanBatchSize
		if end > len(catalog) {
			end = len(catalog)
		}

		hits := make([]map[string]interface{}, 0, end-start)
		for i := start; i < end; i++ {
			hits = append(hits, map[string]interface{}{
				"_id": catalog[i]["id"], "_source": catalog[i], "sort": []interface{}{i},
			})
		}
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"hits": map[string]interface{}{"total": map[string]interface{}{"value": len(catalog)}, "hits": hits},
		})
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client, requests
}

func TestHandler_Execute_LocationMatchesBeyondFirstBatch(t *testing.T) {
	catalog := make([]map[string]interface{}, 0, queries.ScanBatchSize+10)
	for i := 0; i < queries.ScanBatchSize+5; i++ {
		catalog = append(catalog, map[string]interface{}{
			"id": fmt.Sprintf("d%d", i), "title": "Dugbe stall", "location": map[string]interface{}{"raw": "Dugbe"},
		})
	}
	for i := 0; i < 5; i++ {
		catalog = append(catalog, map[string]interface{}{
			"id": fmt.Sprintf("s%d", i), "title": "Sango stay", "location": map[string]interface{}{"flatArea": "Sango"},
		})
	}
	client, requests := pagedElasticsearch(t, catalog)
	handler := NewHandler(createTestConfig(), client, createTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{SearchQuery: "sango", Pagination: Pagination{Size: 2}})
	require.NoError(t, err)

	assert.Equal(t, int32(2), requests.Load())
	assert.Equal(t, int64(5), output.TotalHits)
	require.Equal(t, 2, output.Count)
	assert.Equal(t, "s0", output.Listings[0].ID)
	assert.Equal(t, "s1", output.Listings[1].ID)

	output, err = handler.Execute(context.Background(), &Input{SearchQuery: "sango", Pagination: Pagination{From: 4, Size: 2}})
	require.NoError(t, err)
	require.Equal(t, 1, output.Count)
	assert.Equal(t, "s4", output.Listings[0].ID)

	output, err = handler.Execute(context.Background(), &Input{SearchQuery: "sango", Pagination: Pagination{From: 10}})
	require.NoError(t, err)
	assert.NotNil(t, output.Listings)
	assert.Zero(t, output.Count)
}

func TestHandler_Execute_LocationScanLimit(t *testing.T) {
	catalog := make([]map[string]interface{}, 0, 20)
	for i := 0; i < 20; i++ {
		catalog = append(catalog, map[string]interface{}{
			"id": fmt.Sprintf("s%d", i), "location": "Sango",
		})
	}
	client, _ := pagedElasticsearch(t, catalog)
	cfg := createTestConfig()
	cfg.ScanLimit = 8

	output, err := NewHandler(cfg, client, createTestLogger(t)).
		Execute(context.Background(), &Input{SearchQuery: "sango", Pagination: Pagination{Size: 50}})
	require.NoError(t, err)
	assert.Equal(t, 8, output.Count)
	assert.Equal(t, int64(8), output.TotalHits)
}

func TestHandler_Execute_KeywordQueryKeepsAllHits(t *testing.T) {
	var sent string
	client := fakeElasticsearch(t, http.StatusOK, searchHits, &sent)
	handler := NewHandler(createTestConfig(), client, createTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		SearchQuery: "cheap family friendly hotels",
		Filters:     models.Filters{SortBy: models.SortRating},
	})
	require.NoError(t, err)

	assert.False(t, output.IsLocation)
	assert.Equal(t, 3, output.Count)
	assert.Equal(t, 1.0, output.MaxScore)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(sent), &body))
	assert.Contains(t, sent, "cheap family friendly hotels")
	assert.NotNil(t, body["sort"])
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode apperrors.ErrorCode
	}{
		{
			name:     "index missing",
			status:   http.StatusNotFound,
			body:     `{"error": {"type": "index_not_found_exception"}, "status": 404}`,
			wantCode: apperrors.ErrCodeIndexNotFound,
		},
		{
			name:     "cluster error",
			status:   http.StatusBadRequest,
			body:     `{"error": {"type": "parsing_exception"}, "status": 400}`,
			wantCode: apperrors.ErrCodeSearchQueryFailed,
		},
		{
			name:     "garbage body",
			status:   http.StatusOK,
			body:     `not json`,
			wantCode: apperrors.ErrCodeSearchQueryFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := fakeElasticsearch(t, tt.status, tt.body, nil)
			handler := NewHandler(createTestConfig(), client, createTestLogger(t))

			output, err := handler.Execute(context.Background(), &Input{SearchQuery: "hotel"})
			require.Error(t, err)
			assert.Nil(t, output)

			stdErr, ok := apperrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
		})
	}
}

func TestHandler_Execute_CustomIndex(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		_, _ = w.Write([]byte(`{"hits": {"total": {"value": 0}, "hits": []}}`))
	}))
	defer srv.Close()

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	output, err := NewHandler(createTestConfig(), client, createTestLogger(t)).
		Execute(context.Background(), &Input{IndexName: "listings-staging"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "/listings-staging/_search"))
	assert.NotNil(t, output.Listings)
	assert.Zero(t, output.Count)
}

// ==========================
// Live Cluster Test
// ==========================

func TestHandler_Execute_RealCluster(t *testing.T) {
	client := createRealElasticsearchClient(t)
	handler := NewHandler(createTestConfig(), client, createTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{IndexName: "listings-test-missing-index"})
	require.Error(t, err)
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeIndexNotFound, stdErr.Code)
}
