package normalizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// contractions are split off the end of a word as separate tokens, the way
// Penn Treebank tokenization does ("don't" -> "do", "n't").
var contractions = []string{"n't", "'s", "'re", "'ve", "'ll", "'d", "'m"}

// tokenize splits text into word-level tokens. Punctuation runes become
// their own tokens; numbers keep inner separators ("3.5", "1,000") and words
// keep inner hyphens, dots and apostrophes until contractions are split.
func tokenize(text string) []string {
	text = cleanText(norm.NFC.String(text))

	var tokens []string
	for _, field := range strings.Fields(text) {
		for _, tok := range splitWord(field) {
			tokens = append(tokens, splitContraction(tok)...)
		}
	}
	return tokens
}

// splitWord splits one whitespace-delimited field at punctuation, keeping
// each punctuation rune as a separate token.
func splitWord(field string) []string {
	runes := []rune(field)
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for i, r := range runes {
		if isWordRune(r) || joinsWord(runes, i) {
			current.WriteRune(r)
			continue
		}
		flush()
		tokens = append(tokens, string(r))
	}
	flush()
	return tokens
}

// joinsWord reports whether the separator at runes[i] stays inside the
// surrounding token.
func joinsWord(runes []rune, i int) bool {
	if i == 0 || i == len(runes)-1 {
		return false
	}
	prev, next := runes[i-1], runes[i+1]
	switch runes[i] {
	case '.', ',', ':':
		if unicode.IsDigit(prev) && unicode.IsDigit(next) {
			return true
		}
		return runes[i] == '.' && unicode.IsLetter(prev) && unicode.IsLetter(next)
	case '-', '\'':
		return isWordRune(prev) && isWordRune(next)
	}
	return false
}

// splitContraction separates a trailing English clitic from its host word.
func splitContraction(tok string) []string {
	lower := strings.ToLower(tok)
	for _, c := range contractions {
		if len(lower) > len(c) && strings.HasSuffix(lower, c) {
			cut := len(tok) - len(c)
			return []string{tok[:cut], tok[cut:]}
		}
	}
	return []string{tok}
}

// cleanText removes control characters, folds typographic apostrophes and
// replaces whitespace with spaces.
func cleanText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == 0 || r == 0xFFFD || isControl(r) {
			continue
		}
		switch {
		case isWhitespace(r):
			b.WriteRune(' ')
		case r == '’' || r == '‘':
			b.WriteRune('\'')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

func isWhitespace(r rune) bool {
	if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

func isControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return unicode.IsControl(r)
}
