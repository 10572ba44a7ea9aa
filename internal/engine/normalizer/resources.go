package normalizer

import (
	"bufio"
	_ "embed"
	"fmt"
	"strings"
	"sync"
)

//go:embed stopwords_en.txt
var stopwordsEN string

//go:embed lemmas_en.txt
var lemmasEN string

// resources are the static linguistic tables for one language. They are
// loaded once per process and never mutated afterwards.
type resources struct {
	stopwords  map[string]bool
	exceptions map[string]string
}

var english struct {
	once sync.Once
	res  *resources
	err  error
}

// loadEnglish parses the embedded English tables. Safe to call multiple
// times; only the first call does any work.
func loadEnglish() (*resources, error) {
	english.once.Do(func() {
		stop, err := parseStopwords(stopwordsEN)
		if err != nil {
			english.err = err
			return
		}
		exc, err := parseLemmas(lemmasEN)
		if err != nil {
			english.err = err
			return
		}
		english.res = &resources{stopwords: stop, exceptions: exc}
	})
	return english.res, english.err
}

func parseStopwords(text string) (map[string]bool, error) {
	words := make(map[string]bool, 200)
	err := eachLine(text, func(fields []string) error {
		if len(fields) != 1 {
			return fmt.Errorf("stop word line has %d fields", len(fields))
		}
		words[fields[0]] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("normalizer: stopwords: %w", err)
	}
	return words, nil
}

func parseLemmas(text string) (map[string]string, error) {
	exc := make(map[string]string, 128)
	err := eachLine(text, func(fields []string) error {
		switch len(fields) {
		case 1:
			exc[fields[0]] = fields[0]
		case 2:
			exc[fields[0]] = fields[1]
		default:
			return fmt.Errorf("lemma line has %d fields", len(fields))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("normalizer: lemmas: %w", err)
	}
	return exc, nil
}

// eachLine calls fn with the fields of every non-blank, non-comment line.
func eachLine(text string, fn func([]string) error) error {
	scanner := bufio.NewScanner(strings.NewReader(text))
	line := 0
	for scanner.Scan() {
		line++
		s := strings.TrimSpace(scanner.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		if err := fn(strings.Fields(s)); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	return scanner.Err()
}
