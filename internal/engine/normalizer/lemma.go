package normalizer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// keepEndings are plural-looking endings of words that are already base
// forms ("status", "glass", "crisis", "dangerous").
var keepEndings = []string{"ss", "us", "is"}

// suffixRules reduce regular noun plurals, tried in order. The first match
// wins, so longer endings come first.
var suffixRules = []struct {
	suffix, replace string
}{
	{"ies", "y"},
	{"sses", "ss"},
	{"ches", "ch"},
	{"shes", "sh"},
	{"xes", "x"},
	{"s", ""},
}

// lemma reduces a lowercased word to its dictionary base form, treating it
// as a noun regardless of its part of speech.
func (r *resources) lemma(word string) string {
	if base, ok := r.exceptions[word]; ok {
		return base
	}
	if utf8.RuneCountInString(word) <= 3 || !isAlpha(word) {
		return word
	}
	for _, end := range keepEndings {
		if strings.HasSuffix(word, end) {
			return word
		}
	}
	for _, rule := range suffixRules {
		if strings.HasSuffix(word, rule.suffix) {
			return strings.TrimSuffix(word, rule.suffix) + rule.replace
		}
	}
	return word
}

func isAlpha(word string) bool {
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
