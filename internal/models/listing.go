package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Location is the resolved form of every shape a catalog record may use for
// its place: a plain string, an object with area/address/geolocation, or
// top-level area/city/address fields. The flat area is encoded as "flatArea"
// so it cannot be confused with the backend's nested "area".
type Location struct {
	NestedArea  string `json:"nestedArea,omitempty"`
	Area        string `json:"flatArea,omitempty"`
	Raw         string `json:"raw,omitempty"`
	Address     string `json:"address,omitempty"`
	City        string `json:"city,omitempty"`
	Geolocation string `json:"geolocation,omitempty"`
}

// Listing is the canonical catalog entry every search step works on.
type Listing struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	PriceFrom   float64  `json:"priceFrom,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	Location    Location `json:"location"`

	// MatchedLocation is set on copies kept by the strict location filter.
	MatchedLocation string `json:"matchedLocation,omitempty"`
}

// LocationFields returns the raw location strings in match priority order:
// nested area, flat area, raw location, address, city. Empty entries are kept
// so callers can tell which field matched.
func (l Listing) LocationFields() [5]string {
	return [5]string{l.Location.NestedArea, l.Location.Area, l.Location.Raw, l.Location.Address, l.Location.City}
}

// LocationText is the single location string used by keyword search.
func (l Listing) LocationText() string {
	for _, s := range []string{l.Location.Raw, l.Location.Area, l.Location.NestedArea, l.Location.Address, l.Location.Geolocation, l.Location.City} {
		if s != "" {
			return s
		}
	}
	return ""
}

// TagText joins tags with spaces.
func (l Listing) TagText() string {
	return strings.Join(l.Tags, " ")
}

// MainCategory returns the part of a dot-delimited category before the dot.
func (l Listing) MainCategory() string {
	main, _, _ := strings.Cut(l.Category, ".")
	return main
}

// SubCategory returns the part after the dot, or "".
func (l Listing) SubCategory() string {
	_, sub, _ := strings.Cut(l.Category, ".")
	return sub
}

// ParseListing reads a backend record of any known shape, or a Listing that
// was already encoded as JSON. Unknown or malformed fields become zero values;
// it never fails.
func ParseListing(raw map[string]interface{}) Listing {
	l := Listing{
		ID:          firstString(raw, "id", "_id", "listingId"),
		Title:       firstString(raw, "title", "name"),
		Category:    firstString(raw, "category"),
		Description: firstString(raw, "description"),
		Tags:        parseTags(raw["tags"]),
		PriceFrom:   firstNumber(raw, "priceFrom", "price_from", "price"),
		Rating:      firstNumber(raw, "rating"),
	}

	switch loc := raw["location"].(type) {
	case string:
		l.Location.Raw = loc
	case map[string]interface{}:
		l.Location.NestedArea = firstString(loc, "nestedArea", "area")
		l.Location.Area = firstString(loc, "flatArea")
		l.Location.Raw = firstString(loc, "raw")
		l.Location.Address = stringOf(loc["address"])
		l.Location.Geolocation = stringOf(loc["geolocation"])
		if city := stringOf(loc["city"]); city != "" {
			l.Location.City = city
		}
	}

	if l.Location.Area == "" {
		l.Location.Area = firstString(raw, "area")
	}
	if l.Location.Address == "" {
		l.Location.Address = firstString(raw, "address")
	}
	if l.Location.City == "" {
		l.Location.City = firstString(raw, "city")
	}

	return l
}

// ParseListings applies ParseListing to every element that is an object.
func ParseListings(raw []interface{}) []Listing {
	out := make([]Listing, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, ParseListing(m))
		}
	}
	return out
}

func firstString(raw map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s := stringOf(raw[k]); s != "" {
			return s
		}
	}
	return ""
}

func firstNumber(raw map[string]interface{}, keys ...string) float64 {
	for _, k := range keys {
		if v, ok := numberOf(raw[k]); ok {
			return v
		}
	}
	return 0
}

func stringOf(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int, int64, bool:
		return fmt.Sprint(t)
	}
	return ""
}

func numberOf(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

func parseTags(v interface{}) []string {
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		parts := strings.Split(t, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := stringOf(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return append([]string(nil), t...)
	}
	return nil
}
