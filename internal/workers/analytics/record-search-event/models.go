// internal/workers/analytics/record-search-event/models.go
package recordsearchevent

// Input mirrors the fetch-listings output plus the query that produced it.
// isLocation and reason are recomputed when reason is missing.
type Input struct {
	SearchQuery  string `json:"searchQuery"`
	IsLocation   *bool  `json:"isLocation,omitempty"`
	Reason       string `json:"reason,omitempty"`
	Path         string `json:"path"`
	BackendCount int    `json:"backendCount"`
	Count        int    `json:"count"`
	Error        string `json:"error,omitempty"`

	workflowKey int64
}

type Output struct {
	EventID    string `json:"eventId"`
	RecordedAt string `json:"recordedAt"`
}
