// Package normalizer turns raw messages into cleaned token sequences:
// tokenize, drop stop words, lemmatize, lowercase.
package normalizer

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// English is the only language with bundled linguistic tables.
const English = "english"

// Options configures a Normalizer.
type Options struct {
	Language string `json:"language" yaml:"language"`
}

// Normalizer is stateless after construction and safe for concurrent use.
type Normalizer struct {
	opts Options
	res  *resources
}

// New creates a Normalizer for the configured language. An empty language
// selects English.
func New(opts Options) (*Normalizer, error) {
	if opts.Language == "" {
		opts.Language = English
	}
	if opts.Language != English {
		return nil, fmt.Errorf("normalizer: unsupported language %q", opts.Language)
	}
	res, err := loadEnglish()
	if err != nil {
		return nil, err
	}
	return &Normalizer{opts: opts, res: res}, nil
}

// Options returns the options the Normalizer was built with.
func (n *Normalizer) Options() Options {
	return n.opts
}

// Normalize converts a message into its token sequence. Stop words are
// matched on the lowercased token so "The" is dropped like "the".
// Punctuation tokens are kept. Blank input yields an empty sequence.
func (n *Normalizer) Normalize(message string) []string {
	lower := cases.Lower(language.English)
	raw := tokenize(message)
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		folded := strings.TrimSpace(lower.String(tok))
		if folded == "" || n.res.stopwords[folded] {
			continue
		}
		out = append(out, n.res.lemma(folded))
	}
	return out
}

// NormalizeAll normalizes every message, preserving order.
func (n *Normalizer) NormalizeAll(messages []string) [][]string {
	out := make([][]string, len(messages))
	for i, m := range messages {
		out[i] = n.Normalize(m)
	}
	return out
}

// IsStopword reports whether the lowercased word is in the stop-word set.
func (n *Normalizer) IsStopword(word string) bool {
	return n.res.stopwords[strings.ToLower(word)]
}
