package models

// Sort options accepted by the listings backend. SortRelevance is the backend's
// natural order and is never sent.
const (
	SortRelevance = "relevance"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
	SortNewest    = "newest"
)

// ValidSortOptions lists every accepted SortBy value.
var ValidSortOptions = []string{SortRelevance, SortPriceAsc, SortPriceDesc, SortRating, SortNewest}

type PriceRange struct {
	Min float64 `json:"min,omitempty"`
	Max float64 `json:"max,omitempty"`
}

// Filters is the caller-supplied structured part of a search.
type Filters struct {
	Locations  []string   `json:"locations,omitempty"`
	Categories []string   `json:"categories,omitempty"`
	PriceRange PriceRange `json:"priceRange"`
	Ratings    []float64  `json:"ratings,omitempty"`
	SortBy     string     `json:"sortBy,omitempty"`
}

// MinRating returns the smallest threshold and whether any were given.
func (f Filters) MinRating() (float64, bool) {
	if len(f.Ratings) == 0 {
		return 0, false
	}
	min := f.Ratings[0]
	for _, r := range f.Ratings[1:] {
		if r < min {
			min = r
		}
	}
	return min, true
}

// IsEmpty reports whether no filter field is set.
func (f Filters) IsEmpty() bool {
	return len(f.Locations) == 0 &&
		len(f.Categories) == 0 &&
		f.PriceRange.Min == 0 && f.PriceRange.Max == 0 &&
		len(f.Ratings) == 0 &&
		(f.SortBy == "" || f.SortBy == SortRelevance)
}
