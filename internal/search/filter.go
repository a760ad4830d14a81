package search

import (
	"strings"
	"unicode/utf8"

	"listings-workers/internal/models"
)

// minWordRunes is the exclusive lower bound on word length for the two
// word-overlap rules.
const minWordRunes = 2

// FilterListings picks the filter path from the query's classification: the
// keyword path for keyword queries, the strict location path for place queries.
// An empty query returns a copy of listings. Input is never modified and the
// backend order is kept.
func FilterListings(listings []models.Listing, query string) []models.Listing {
	if strings.TrimSpace(query) == "" {
		return append([]models.Listing(nil), listings...)
	}
	if IsLocationQuery(query) {
		return FilterByLocation(listings, query)
	}
	return FilterByKeyword(listings, query)
}

// FilterByKeyword keeps listings where the lower-cased query occurs in the
// title, category, location text, description or tags.
func FilterByKeyword(listings []models.Listing, query string) []models.Listing {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if q == "" || matchesKeyword(l, q) {
			out = append(out, l)
		}
	}
	return out
}

func matchesKeyword(l models.Listing, q string) bool {
	for _, field := range []string{l.Title, l.Category, l.LocationText(), l.Description, l.TagText()} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// FilterByLocation keeps listings with a location candidate matching the
// normalized query. Kept copies carry the matching candidate in MatchedLocation.
func FilterByLocation(listings []models.Listing, query string) []models.Listing {
	nq := NormalizeLocation(query)
	out := make([]models.Listing, 0, len(listings))
	if nq == "" {
		return out
	}
	queryWords := significantWords(nq)
	for _, l := range listings {
		if matched, ok := matchCandidates(Candidates(l), nq, queryWords); ok {
			cp := l
			cp.MatchedLocation = matched
			out = append(out, cp)
		}
	}
	return out
}

// MatchesLocation reports whether l passes the strict location filter for query.
func MatchesLocation(l models.Listing, query string) bool {
	nq := NormalizeLocation(query)
	if nq == "" {
		return false
	}
	_, ok := matchCandidates(Candidates(l), nq, significantWords(nq))
	return ok
}

// Candidates returns up to five normalized, non-empty location strings in
// priority order: nested area, flat area, raw location, address, city.
func Candidates(l models.Listing) []string {
	fields := l.LocationFields()
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if n := NormalizeLocation(f); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// matchCandidates applies, per candidate and in order: exact equality,
// candidate contains query, a candidate word inside the query, a query word
// inside the candidate.
func matchCandidates(candidates []string, nq string, queryWords []string) (string, bool) {
	for _, c := range candidates {
		if c == nq || strings.Contains(c, nq) {
			return c, true
		}
		for _, w := range significantWords(c) {
			if strings.Contains(nq, w) {
				return c, true
			}
		}
		for _, w := range queryWords {
			if strings.Contains(c, w) {
				return c, true
			}
		}
	}
	return "", false
}

func significantWords(s string) []string {
	words := strings.Fields(s)
	out := words[:0]
	for _, w := range words {
		if utf8.RuneCountInString(w) > minWordRunes {
			out = append(out, w)
		}
	}
	return out
}
