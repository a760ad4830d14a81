// internal/workers/listings/parse-listing-filters/models.go
package parselistingfilters

import "listings-workers/internal/models"

type Input struct {
	RawFilters map[string]interface{} `json:"rawFilters"`
}

type Output struct {
	Filters models.Filters `json:"filters"`
}

// rawFiltersSchema checks shapes only; value rules live in the handler.
const rawFiltersSchema = `{
  "type": "object",
  "properties": {
    "locations":  {"type": ["array", "string", "null"], "items": {"type": "string"}},
    "categories": {"type": ["array", "string", "null"], "items": {"type": "string"}},
    "priceRange": {
      "type": ["object", "null"],
      "properties": {
        "min": {"type": ["number", "string", "null"]},
        "max": {"type": ["number", "string", "null"]}
      }
    },
    "ratings": {"type": ["array", "number", "null"], "items": {"type": ["number", "string"]}},
    "sortBy":  {"type": ["string", "null"]}
  }
}`
