package models

import "time"

// SearchEvent is one audited search, stored in the search_events table.
type SearchEvent struct {
	ID              string    `json:"id" db:"id"`
	SearchQuery     string    `json:"searchQuery" db:"search_query"`
	NormalizedQuery string    `json:"normalizedQuery" db:"normalized_query"`
	IsLocation      bool      `json:"isLocation" db:"is_location"`
	Reason          string    `json:"reason" db:"reason"`
	RequestPath     string    `json:"requestPath" db:"request_path"`
	BackendCount    int       `json:"backendCount" db:"backend_count"`
	ResultCount     int       `json:"resultCount" db:"result_count"`
	ErrorMessage    string    `json:"errorMessage,omitempty" db:"error_message"`
	WorkflowKey     int64     `json:"workflowKey,omitempty" db:"workflow_key"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}
