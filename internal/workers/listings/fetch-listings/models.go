// internal/workers/listings/fetch-listings/models.go
package fetchlistings

import "listings-workers/internal/models"

type Input struct {
	SearchQuery string         `json:"searchQuery"`
	Filters     models.Filters `json:"filters"`
}

// Output always completes the job; a backend failure is reported in Error
// with an empty Listings slice.
type Output struct {
	Listings     []models.Listing `json:"listings"`
	Count        int              `json:"count"`
	BackendCount int              `json:"backendCount"`
	IsLocation   bool             `json:"isLocation"`
	Reason       string           `json:"reason"`
	Path         string           `json:"path"`
	Error        string           `json:"error"`
	HasError     bool             `json:"hasError"`
}
