// internal/workers/listings/build-listings-request/models.go
package buildlistingsrequest

import "listings-workers/internal/models"

type Input struct {
	SearchQuery string         `json:"searchQuery"`
	Filters     models.Filters `json:"filters"`
}

type Output struct {
	Path            string   `json:"path"`
	QueryParams     []string `json:"queryParams"`
	IncludesKeyword bool     `json:"includesKeyword"`
}
