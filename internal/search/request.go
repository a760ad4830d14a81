package search

import (
	"net/url"
	"strconv"
	"strings"

	"listings-workers/internal/models"
)

// ListingsPath is the backend listings endpoint.
const ListingsPath = "/listings"

// categorySynonyms translates caller category names to backend names.
// Keys are lower-case; lookups trim and lower-case the value first.
var categorySynonyms = map[string]string{
	"vendor":      "services",
	"vendors":     "services",
	"service":     "services",
	"hotels":      "hotel",
	"restaurants": "restaurant",
	"shortlets":   "shortlet",
	"events":      "event",
}

// MapCategory returns the backend name for category, or category unchanged.
func MapCategory(category string) string {
	if mapped, ok := categorySynonyms[strings.ToLower(strings.TrimSpace(category))]; ok {
		return mapped
	}
	return category
}

// BuildListingsPath renders the GET path for a search. Parameters appear in
// the order q, locations, categories, minPrice, maxPrice, minRating, sort and
// only when they apply; a search with none gives the bare path.
func BuildListingsPath(searchQuery string, filters models.Filters) string {
	return BuildPath(ListingsPath, searchQuery, filters)
}

// BuildPath is BuildListingsPath with a configurable base path.
func BuildPath(base, searchQuery string, filters models.Filters) string {
	params := QueryParams(searchQuery, filters)
	if len(params) == 0 {
		return base
	}
	return base + "?" + strings.Join(params, "&")
}

// QueryParams returns the encoded key=value pairs in transmission order.
func QueryParams(searchQuery string, filters models.Filters) []string {
	var params []string
	add := func(key, value string) {
		params = append(params, key+"="+url.QueryEscape(value))
	}

	if q := strings.TrimSpace(searchQuery); q != "" && !IsLocationQuery(q) {
		add("q", q)
	}
	if len(filters.Locations) > 0 {
		add("locations", strings.Join(filters.Locations, ","))
	}
	if len(filters.Categories) > 0 {
		mapped := make([]string, len(filters.Categories))
		for i, c := range filters.Categories {
			mapped[i] = MapCategory(c)
		}
		add("categories", strings.Join(mapped, ","))
	}
	if filters.PriceRange.Min != 0 {
		add("minPrice", formatNumber(filters.PriceRange.Min))
	}
	if filters.PriceRange.Max != 0 {
		add("maxPrice", formatNumber(filters.PriceRange.Max))
	}
	if min, ok := filters.MinRating(); ok {
		add("minRating", formatNumber(min))
	}
	if filters.SortBy != "" && filters.SortBy != models.SortRelevance {
		add("sort", filters.SortBy)
	}
	return params
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
