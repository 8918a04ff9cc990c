package search

import "strings"

// Common words that carry no signal for verbatim matching.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "be": {}, "is": {}, "are": {},
	"was": {}, "to": {}, "of": {}, "and": {}, "in": {}, "that": {},
	"have": {}, "it": {}, "for": {}, "not": {}, "on": {}, "with": {},
	"as": {}, "you": {}, "do": {}, "at": {}, "this": {}, "but": {},
	"by": {}, "from": {},
}

const wordPunctuation = ".,!?;:'\"-()[]{}"

// significantWords lowercases text, strips surrounding punctuation, and
// drops stop words.
func significantWords(text string) []string {
	var words []string
	for _, field := range strings.Fields(text) {
		word := strings.ToLower(strings.Trim(field, wordPunctuation))
		if word == "" {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		words = append(words, word)
	}
	return words
}

// containsAllQueryWords reports whether every significant query word appears
// in the document. A query with no significant words never matches.
func containsAllQueryWords(document, query string) bool {
	queryWords := significantWords(query)
	if len(queryWords) == 0 {
		return false
	}

	seen := make(map[string]struct{})
	for _, word := range significantWords(document) {
		seen[word] = struct{}{}
	}
	for _, word := range queryWords {
		if _, ok := seen[word]; !ok {
			return false
		}
	}
	return true
}
