// internal/workers/listings/filter-listings/models.go
package filterlistings

import "listings-workers/internal/models"

// Input.Listings takes raw backend listing objects in any of the shapes
// models.ParseListing understands, including the listings other workers output.
type Input struct {
	Listings    []interface{} `json:"listings"`
	SearchQuery string        `json:"searchQuery"`
	// Mode forces "location" or "keyword"; empty classifies the query.
	Mode string `json:"mode,omitempty"`
}

type Output struct {
	Listings   []models.Listing `json:"listings"`
	Count      int              `json:"count"`
	InputCount int              `json:"inputCount"`
	Mode       string           `json:"mode"`
}
