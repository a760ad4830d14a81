// internal/workers/data-access/query-listings-index/models.go
package querylistingsindex

import "listings-workers/internal/models"

type Input struct {
	SearchQuery string         `json:"searchQuery"`
	Filters     models.Filters `json:"filters"`
	IndexName   string         `json:"indexName,omitempty"`
	Pagination  Pagination     `json:"pagination"`
}

type Pagination struct {
	From int `json:"from"`
	Size int `json:"size"`
}

type Output struct {
	Listings   []models.Listing `json:"listings"`
	Count      int              `json:"count"`
	TotalHits  int64            `json:"totalHits"`
	MaxScore   float64          `json:"maxScore"`
	IsLocation bool             `json:"isLocation"`
	Took       int64            `json:"took"` // milliseconds
}
