package search

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	lowerCaser       = cases.Lower(language.Und)
	punctuationRegex = regexp.MustCompile("[.,/#!$%^&*;:{}=\\-_`~()'\"?]")
)

// NormalizeLocation lower-cases s, strips the punctuation set
// . , / # ! $ % ^ & * ; : { } = - _ ` ~ ( ) ' " ?
// collapses runs of Unicode white space to one space and trims. It is idempotent.
func NormalizeLocation(s string) string {
	s = lowerCaser.String(s)
	s = punctuationRegex.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}
