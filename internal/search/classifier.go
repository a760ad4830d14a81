// Package search holds the pure listing search logic: query classification,
// location normalization, listing filters and backend request building.
package search

import (
	"strings"
	"unicode/utf8"
)

// Short-query thresholds. A query within both limits is treated as a place.
const (
	MaxShortQueryWords = 3
	MaxShortQueryRunes = 15
)

// Classification reasons.
const (
	ReasonEmpty      = "empty"
	ReasonIndicator  = "indicator"
	ReasonShortQuery = "short_query"
	ReasonKeyword    = "keyword"
)

// locationIndicators is matched by substring containment of the lower-cased
// query, so an entry also fires inside a longer word: "road" in "broadway",
// "ondo" in "condo", "oyo" in "toyota". Such queries classify as locations.
var locationIndicators = []string{
	// Ibadan neighbourhoods and landmarks
	"bodija", "dugbe", "sango", "mokola", "agodi", "jericho", "oluyole", "ojoo",
	"apete", "samonda", "agbowo", "eleyele", "moniya", "molete", "iyaganku",
	"idi ape", "olorunsogo", "basorun", "mapo", "beere", "oja oba", "adamasingba",
	"alakia", "egbeda", "odo ona", "apata", "gbagi", "challenge", "ring road",
	"iwo road", "new garage", "old ife road", "secretariat", "felele", "orogun",
	"ologuneru", "omi adio", "onireke", "kudeti", "oke ado", "oke bola",
	"ijokodo", "olodo", "akobo",

	// address suffixes
	"road", "street", "estate", "junction", "market", "avenue", "close",
	"crescent", "layout", "garage", "roundabout", "expressway", "bypass",
	"quarters", "phase",

	// cities and states
	"ibadan", "lagos", "abuja", "oyo", "ogun", "osun", "ondo", "ekiti", "kwara",
	"ilorin", "abeokuta", "osogbo", "oshogbo", "ogbomoso", "ile-ife", "ile ife",
	"port harcourt", "kano", "kaduna", "enugu", "benin", "nigeria", "iseyin", "saki",
}

// categoryTerms are catalog category words. A short query made only of these
// is a keyword search, not a place.
var categoryTerms = map[string]bool{
	"hotel": true, "hotels": true, "restaurant": true, "restaurants": true,
	"shortlet": true, "shortlets": true, "event": true, "events": true,
	"service": true, "services": true, "vendor": true, "vendors": true,
}

// Classification is the outcome of ClassifyQuery.
type Classification struct {
	Query      string `json:"query"`
	Normalized string `json:"normalizedQuery"`
	IsLocation bool   `json:"isLocation"`
	Reason     string `json:"reason"`
}

// IsLocationQuery guesses whether query names a place rather than a keyword.
//
// The heuristic has no gazetteer behind it. Any query of at most three words
// and fifteen characters counts as a location unless every word is a catalog
// category term, so short generic words such as "cheap" or "xyz" are still
// classified as places. The strict location filter is lenient enough that
// these degrade to broad matches instead of empty results.
func IsLocationQuery(query string) bool {
	return ClassifyQuery(query).IsLocation
}

// ClassifyQuery is IsLocationQuery plus the rule that decided it.
func ClassifyQuery(query string) Classification {
	q := strings.ToLower(strings.TrimSpace(query))
	c := Classification{Query: query, Normalized: NormalizeLocation(query)}

	switch {
	case q == "":
		c.Reason = ReasonEmpty
	case containsIndicator(q):
		c.IsLocation, c.Reason = true, ReasonIndicator
	case isShortQuery(q) && !onlyCategoryTerms(q):
		c.IsLocation, c.Reason = true, ReasonShortQuery
	default:
		c.Reason = ReasonKeyword
	}
	return c
}

func containsIndicator(q string) bool {
	for _, ind := range locationIndicators {
		if strings.Contains(q, ind) {
			return true
		}
	}
	return false
}

func isShortQuery(q string) bool {
	return len(strings.Fields(q)) <= MaxShortQueryWords && utf8.RuneCountInString(q) <= MaxShortQueryRunes
}

func onlyCategoryTerms(q string) bool {
	words := strings.Fields(q)
	for _, w := range words {
		if !categoryTerms[w] {
			return false
		}
	}
	return len(words) > 0
}

// Indicators returns a copy of the indicator dictionary.
func Indicators() []string {
	return append([]string(nil), locationIndicators...)
}
