package models

// StatusSuccess is the only envelope status treated as a successful reply.
const StatusSuccess = "success"

// ListingsEnvelope is the wire shape of GET /listings:
// {"status": "success", "data": {"listings": [...]}, "message": "..."}.
// Listings stay raw until ParseListings normalizes them.
type ListingsEnvelope struct {
	Status  string        `json:"status"`
	Data    *ListingsData `json:"data,omitempty"`
	Message string        `json:"message,omitempty"`
}

type ListingsData struct {
	Listings []interface{} `json:"listings"`
}

// HasListings reports whether data.listings was present (possibly empty).
func (e *ListingsEnvelope) HasListings() bool {
	return e.Data != nil && e.Data.Listings != nil
}

// IsSuccess applies the success rule: status "success" and data.listings present.
func (e *ListingsEnvelope) IsSuccess() bool {
	return e.Status == StatusSuccess && e.HasListings()
}
