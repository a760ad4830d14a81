// internal/workers/data-access/query-listings-index/queries/builders.go
package queries

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"listings-workers/internal/models"
	"listings-workers/internal/search"
)

var ErrMissingIndex = errors.New("index name is required")

const (
	DefaultSize = 20
	MaxSize     = 100

	// ScanBatchSize is the page size used while collecting every location candidate.
	ScanBatchSize = 500
	// DefaultScanLimit caps how many candidates one location query may collect.
	DefaultScanLimit = 10000
)

var (
	keywordFields  = []string{"title^3", "description^2", "category", "tags"}
	locationFields = []string{"location.nestedArea", "location.flatArea", "location.raw", "location.address", "location.city"}
)

// ListingsQuery is one catalog mirror search.
type ListingsQuery struct {
	Index       string
	SearchQuery string
	Filters     models.Filters
	From        int
	Size        int
}

// Pagination clamps From and Size to sane values.
func (q ListingsQuery) Pagination() (from, size int) {
	from, size = q.From, q.Size
	if from < 0 {
		from = 0
	}
	if size < 1 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	return from, size
}

// BuildRequest renders q as a search request against q.Index.
func BuildRequest(q ListingsQuery) (*esapi.SearchRequest, error) {
	if q.Index == "" {
		return nil, ErrMissingIndex
	}

	body, err := json.Marshal(BuildBody(q))
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	from, size := q.Pagination()
	return &esapi.SearchRequest{
		Index: []string{q.Index},
		Body:  bytes.NewReader(body),
		From:  &from,
		Size:  &size,
	}, nil
}

// BuildScanRequest renders one batch of a location query walk. after is the
// sort key of the previous batch's last hit, nil for the first batch.
func BuildScanRequest(q ListingsQuery, after []interface{}) (*esapi.SearchRequest, error) {
	if q.Index == "" {
		return nil, ErrMissingIndex
	}

	body := BuildBody(q)
	sort := sortClause(q.Filters.SortBy)
	body["sort"] = append(sort, map[string]interface{}{"id": "asc"})
	if len(after) > 0 {
		body["search_after"] = after
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	size := ScanBatchSize
	return &esapi.SearchRequest{
		Index: []string{q.Index},
		Body:  bytes.NewReader(encoded),
		Size:  &size,
	}, nil
}

// BuildBody builds the query DSL. Location queries are never sent as text
// search; they only narrow the hits to documents sharing a word or word
// fragment with the query, and the caller applies the strict location filter.
func BuildBody(q ListingsQuery) map[string]interface{} {
	must := []interface{}{}
	filter := []interface{}{}

	if text := strings.TrimSpace(q.SearchQuery); text != "" {
		if search.IsLocationQuery(text) {
			if clause := locationClause(text); clause != nil {
				filter = append(filter, clause)
			}
		} else {
			must = append(must, map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":  text,
					"fields": keywordFields,
					"type":   "best_fields",
				},
			})
		}
	}

	if len(q.Filters.Categories) > 0 {
		mapped := make([]string, 0, len(q.Filters.Categories))
		for _, c := range q.Filters.Categories {
			mapped = append(mapped, search.MapCategory(c))
		}
		filter = append(filter, map[string]interface{}{
			"terms": map[string]interface{}{"category": mapped},
		})
	}

	if len(q.Filters.Locations) > 0 {
		should := make([]interface{}, 0, len(q.Filters.Locations))
		for _, loc := range q.Filters.Locations {
			should = append(should, map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":  loc,
					"fields": locationFields,
					"type":   "phrase",
				},
			})
		}
		filter = append(filter, map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               should,
				"minimum_should_match": 1,
			},
		})
	}

	price := map[string]interface{}{}
	if q.Filters.PriceRange.Min != 0 {
		price["gte"] = q.Filters.PriceRange.Min
	}
	if q.Filters.PriceRange.Max != 0 {
		price["lte"] = q.Filters.PriceRange.Max
	}
	if len(price) > 0 {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"priceFrom": price},
		})
	}

	if min, ok := q.Filters.MinRating(); ok {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"rating": map[string]interface{}{"gte": min}},
		})
	}

	if len(must) == 0 {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery := map[string]interface{}{"must": must}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
	}
	if sort := sortClause(q.Filters.SortBy); sort != nil {
		body["sort"] = sort
	}
	return body
}

// locationClause matches documents where any location field shares a token
// with the normalized query or contains one of its words. It is wider than the
// strict location filter, which still decides what is kept.
func locationClause(query string) map[string]interface{} {
	nq := search.NormalizeLocation(query)
	if nq == "" {
		return nil
	}

	should := make([]interface{}, 0, len(locationFields)*2)
	for _, field := range locationFields {
		should = append(should, map[string]interface{}{
			"match": map[string]interface{}{field: map[string]interface{}{"query": nq}},
		})
	}
	for _, word := range strings.Fields(nq) {
		for _, field := range locationFields {
			should = append(should, map[string]interface{}{
				"wildcard": map[string]interface{}{field: map[string]interface{}{
					"value":            "*" + word + "*",
					"case_insensitive": true,
				}},
			})
		}
	}

	return map[string]interface{}{
		"bool": map[string]interface{}{
			"should":               should,
			"minimum_should_match": 1,
		},
	}
}

func sortClause(sortBy string) []map[string]interface{} {
	switch sortBy {
	case models.SortPriceAsc:
		return []map[string]interface{}{{"priceFrom": "asc"}}
	case models.SortPriceDesc:
		return []map[string]interface{}{{"priceFrom": "desc"}}
	case models.SortRating:
		return []map[string]interface{}{{"rating": "desc"}}
	case models.SortNewest:
		return []map[string]interface{}{{"createdAt": "desc"}}
	}
	return nil
}
