// Package testdata embeds a small labelled corpus of disaster messages for
// integration tests.
package testdata

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/crimson-sun/triage/internal/model"
)

//go:embed corpus.json
var corpusJSON []byte

// CorpusEntry is one labelled message. Categories lists the positive
// categories; every other category is 0.
type CorpusEntry struct {
	ID         int      `json:"id"`
	Message    string   `json:"message"`
	Genre      string   `json:"genre"`
	Categories []string `json:"categories"`
}

// LoadCorpus parses the embedded corpus.json and returns all entries.
func LoadCorpus() ([]CorpusEntry, error) {
	var entries []CorpusEntry
	if err := json.Unmarshal(corpusJSON, &entries); err != nil {
		return nil, fmt.Errorf("parse corpus.json: %w", err)
	}
	return entries, nil
}

// Dataset builds a Dataset over the given category columns. A positive
// category outside the columns is an error.
func Dataset(categories []string) (*model.Dataset, error) {
	entries, err := LoadCorpus()
	if err != nil {
		return nil, err
	}
	col := make(map[string]int, len(categories))
	for j, c := range categories {
		col[c] = j
	}
	messages := make([]string, len(entries))
	raw := make([][]int64, len(entries))
	for i, e := range entries {
		messages[i] = e.Message
		raw[i] = make([]int64, len(categories))
		for _, c := range e.Categories {
			j, ok := col[c]
			if !ok {
				return nil, fmt.Errorf("entry %d: unknown category %q", e.ID, c)
			}
			raw[i][j] = 1
		}
	}
	return model.NewDataset(messages, categories, raw)
}
