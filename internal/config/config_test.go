package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/crimson-sun/triage/internal/engine/search"
)

var envKeys = []string{
	"TRIAGE_SOURCE", "TRIAGE_TABLE", "TRIAGE_MESSAGE_COLUMN", "TRIAGE_LABEL_OFFSET",
	"TRIAGE_CATEGORIES", "TRIAGE_TEST_SIZE", "TRIAGE_SEED", "TRIAGE_FOLDS",
	"TRIAGE_SHUFFLE", "TRIAGE_SCORING", "TRIAGE_WORKERS", "TRIAGE_OUTPUT_FORMAT",
	"TRIAGE_OUTPUT_PRETTY", "TRIAGE_REPORT_PATH", "TRIAGE_WEBHOOK_URL",
	"TRIAGE_LOG_LEVEL", "TRIAGE_LOG_FORMAT",
}

// clearEnv blanks every TRIAGE_* variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "triage.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source.Table != "disaster" || cfg.Source.MessageColumn != "message" || cfg.Source.LabelOffset != 4 {
		t.Errorf("source defaults = %+v", cfg.Source)
	}
	if cfg.Split.TestSize != 0.2 {
		t.Errorf("test size = %v, want 0.2", cfg.Split.TestSize)
	}
	if cfg.Search.Folds != 5 || cfg.Search.Scoring != search.ScoreMeanLabelAccuracy {
		t.Errorf("search defaults = %+v", cfg.Search)
	}
	if cfg.Search.Grid.Size() != 324 {
		t.Errorf("default grid size = %d, want 324", cfg.Search.Grid.Size())
	}
	if cfg.Search.Workers < 1 {
		t.Errorf("workers = %d", cfg.Search.Workers)
	}
	if cfg.Log.Level != "info" || cfg.Output.Format != "text" {
		t.Errorf("log/output defaults = %+v / %+v", cfg.Log, cfg.Output)
	}
}

func TestLoad_YAMLOverlaysDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
seed: 7
source:
  table: messages
  categories: [water, food]
search:
  folds: 3
  grid:
    n_estimators: [5]
    ngram_ranges: [[1, 3]]
output:
  report_path: /tmp/report.jsonl
  webhook_headers:
    Authorization: Bearer x
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Seed != 7 || cfg.Source.Table != "messages" || cfg.Search.Folds != 3 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Source.MessageColumn != "message" {
		t.Errorf("unset field lost its default: %q", cfg.Source.MessageColumn)
	}
	if !reflect.DeepEqual(cfg.Source.Categories, []string{"water", "food"}) {
		t.Errorf("categories = %v", cfg.Source.Categories)
	}
	g := cfg.Search.Grid
	if !reflect.DeepEqual(g.NEstimators, []int{5}) || !reflect.DeepEqual(g.NGramRanges, [][2]int{{1, 3}}) {
		t.Errorf("grid axes = %+v", g)
	}
	if len(g.MaxDF) != 3 {
		t.Errorf("unset grid axis lost its default: %v", g.MaxDF)
	}
	if cfg.Output.WebhookHeaders["Authorization"] != "Bearer x" {
		t.Errorf("webhook headers = %v", cfg.Output.WebhookHeaders)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "seed: 7\nsearch:\n  folds: 3\n")
	t.Setenv("TRIAGE_SEED", "99")
	t.Setenv("TRIAGE_FOLDS", "4")
	t.Setenv("TRIAGE_SHUFFLE", "true")
	t.Setenv("TRIAGE_CATEGORIES", "water, food ,")
	t.Setenv("TRIAGE_LOG_FORMAT", "json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Seed != 99 || cfg.Search.Folds != 4 || !cfg.Search.Shuffle {
		t.Errorf("env overrides not applied: seed %d folds %d shuffle %v", cfg.Seed, cfg.Search.Folds, cfg.Search.Shuffle)
	}
	if !reflect.DeepEqual(cfg.Source.Categories, []string{"water", "food"}) {
		t.Errorf("categories = %v", cfg.Source.Categories)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log format = %q", cfg.Log.Format)
	}
}

func TestLoad_BadEnvNumberKeepsValue(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRIAGE_TEST_SIZE", "a fifth")
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Split.TestSize != 0.2 {
		t.Errorf("test size = %v, want default 0.2", cfg.Split.TestSize)
	}
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(writeConfig(t, "invalid yaml: [")); err == nil {
		t.Error("expected error for invalid YAML")
	}
	if _, err := Load(writeConfig(t, "search:\n  grid:\n    ngram_ranges: [[0, 1]]\n")); err == nil {
		t.Error("expected error for an n-gram range starting at 0")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"provider", func(c *Config) { c.Source.Provider = "postgres" }, "provider"},
		{"label offset", func(c *Config) { c.Source.LabelOffset = 0 }, "label_offset"},
		{"test size", func(c *Config) { c.Split.TestSize = 1 }, "test_size"},
		{"folds", func(c *Config) { c.Search.Folds = 1 }, "folds"},
		{"workers", func(c *Config) { c.Search.Workers = 0 }, "workers"},
		{"scoring", func(c *Config) { c.Search.Scoring = "f1" }, "scorer"},
		{"ngram", func(c *Config) { c.Search.Grid.NGramRanges = [][2]int{{2, 1}} }, "ngram"},
		{"max df", func(c *Config) { c.Search.Grid.MaxDF = []float64{1.5} }, "max_df"},
		{"max features", func(c *Config) { c.Search.Grid.MaxFeatures = []int{-1} }, "max_features"},
		{"n estimators", func(c *Config) { c.Search.Grid.NEstimators = []int{0} }, "n_estimators"},
		{"min split", func(c *Config) { c.Search.Grid.MinSamplesSplit = []int{1} }, "min_samples_split"},
		{"output format", func(c *Config) { c.Output.Format = "xml" }, "output format"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}

	cfg := Defaults()
	cfg.Search.Grid.UseIDF = nil
	if err := cfg.Validate(); err != nil {
		t.Errorf("empty axis rejected by Validate: %v", err)
	}
}

func TestConversions(t *testing.T) {
	cfg := Defaults()
	cfg.Seed = 5
	cfg.Search.Scoring = search.ScoreSubsetAccuracy

	sc := cfg.SourceConfig("data.db")
	if sc.Path != "data.db" || sc.Table != "disaster" || sc.LabelOffset != 4 {
		t.Errorf("SourceConfig = %+v", sc)
	}

	s, err := cfg.Searcher()
	if err != nil {
		t.Fatal(err)
	}
	if s.Seed != 5 || s.Folds != 5 || s.Grid == nil || s.Grid.Size() != 324 || s.Scorer == nil {
		t.Errorf("Searcher = %+v", s)
	}
}
