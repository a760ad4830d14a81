// internal/workers/data-access/query-listings-index/queries/execute.go
package queries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"listings-workers/internal/models"
)

var ErrIndexNotFound = errors.New("index not found")

type QueryResult struct {
	Listings  []models.Listing
	TotalHits int64
	MaxScore  float64
	Took      int64
	Truncated bool
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []struct {
			ID     string                 `json:"_id"`
			Source map[string]interface{} `json:"_source"`
			Sort   []interface{}          `json:"sort"`
		} `json:"hits"`
	} `json:"hits"`
}

// Execute runs q as one page and decodes the hits.
func Execute(ctx context.Context, client *elasticsearch.Client, q ListingsQuery) (*QueryResult, error) {
	req, err := BuildRequest(q)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	r, err := do(ctx, client, req, q.Index)
	if err != nil {
		return nil, err
	}

	result := &QueryResult{TotalHits: r.Hits.Total.Value}
	if r.Hits.MaxScore != nil {
		result.MaxScore = *r.Hits.MaxScore
	}
	result.Listings, _ = decodeHits(r)
	result.Took = time.Since(start).Milliseconds()
	return result, nil
}

// Scan walks every hit of q in batches with search_after, ignoring q's
// pagination, and stops after limit listings. Truncated reports whether the
// limit cut the walk short.
func Scan(ctx context.Context, client *elasticsearch.Client, q ListingsQuery, limit int) (*QueryResult, error) {
	if limit < 1 {
		limit = DefaultScanLimit
	}

	start := time.Now()
	result := &QueryResult{}
	var after []interface{}
	for first := true; ; first = false {
		req, err := BuildScanRequest(q, after)
		if err != nil {
			return nil, err
		}
		r, err := do(ctx, client, req, q.Index)
		if err != nil {
			return nil, err
		}
		if first {
			result.TotalHits = r.Hits.Total.Value
		}

		listings, last := decodeHits(r)
		result.Listings = append(result.Listings, listings...)
		if len(result.Listings) >= limit {
			result.Truncated = len(result.Listings) > limit || len(r.Hits.Hits) == ScanBatchSize
			result.Listings = result.Listings[:limit]
			break
		}
		if len(r.Hits.Hits) < ScanBatchSize || len(last) == 0 {
			break
		}
		after = last
	}

	result.Took = time.Since(start).Milliseconds()
	return result, nil
}

func do(ctx context.Context, client *elasticsearch.Client, req *esapi.SearchRequest, index string) (*searchResponse, error) {
	res, err := req.Do(ctx, client)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, index)
	}
	if res.IsError() {
		return nil, fmt.Errorf("search query failed: %s", res.String())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return &r, nil
}

// decodeHits parses each _source like a backend record, so both the canonical
// listing shape and raw catalog documents are read. A hit without its own id
// takes the document _id. The sort key of the last hit is returned as well.
func decodeHits(r *searchResponse) ([]models.Listing, []interface{}) {
	listings := make([]models.Listing, 0, len(r.Hits.Hits))
	var last []interface{}
	for _, hit := range r.Hits.Hits {
		last = hit.Sort
		if len(hit.Source) == 0 {
			continue
		}
		l := models.ParseListing(hit.Source)
		if l.ID == "" {
			l.ID = hit.ID
		}
		listings = append(listings, l)
	}
	return listings, last
}
