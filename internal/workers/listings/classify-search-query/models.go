// internal/workers/listings/classify-search-query/models.go
package classifysearchquery

type Input struct {
	SearchQuery string `json:"searchQuery"`
}

type Output struct {
	IsLocation      bool   `json:"isLocation"`
	NormalizedQuery string `json:"normalizedQuery"`
	Reason          string `json:"reason"`
}
