package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/crimson-sun/triage/internal/engine/search"
	"github.com/crimson-sun/triage/internal/source"
)

// Config holds all triage configuration.
type Config struct {
	Source SourceConfig `yaml:"source"`
	Split  SplitConfig  `yaml:"split"`
	Seed   uint64       `yaml:"seed"`
	Search SearchConfig `yaml:"search"`
	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`
}

// SourceConfig describes where the corpus lives and how its columns are
// laid out.
type SourceConfig struct {
	Provider      string   `yaml:"provider"` // "sqlite", "csv"; empty guesses from the path
	Table         string   `yaml:"table"`
	MessageColumn string   `yaml:"message_column"`
	LabelOffset   int      `yaml:"label_offset"`
	Categories    []string `yaml:"categories"` // empty = every label column
}

// SplitConfig holds the train/test split settings.
type SplitConfig struct {
	TestSize float64 `yaml:"test_size"`
}

// SearchConfig holds cross-validation settings and the grid.
type SearchConfig struct {
	Folds   int         `yaml:"folds"`
	Shuffle bool        `yaml:"shuffle"`
	Scoring string      `yaml:"scoring"`
	Workers int         `yaml:"workers"`
	Grid    search.Grid `yaml:"grid"`
}

// OutputConfig holds report destinations. Reports always go to stdout.
type OutputConfig struct {
	Format         string            `yaml:"format"` // "text", "json"
	Pretty         bool              `yaml:"pretty"`
	ReportPath     string            `yaml:"report_path"` // NDJSON file, optional
	WebhookURL     string            `yaml:"webhook_url"` // optional
	WebhookHeaders map[string]string `yaml:"webhook_headers"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text", "json"
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Source: SourceConfig{
			Table:         source.DefaultTable,
			MessageColumn: source.DefaultMessageColumn,
			LabelOffset:   source.DefaultLabelOffset,
		},
		Split: SplitConfig{TestSize: 0.2},
		Seed:  42,
		Search: SearchConfig{
			Folds:   search.DefaultFolds,
			Scoring: search.ScoreMeanLabelAccuracy,
			Workers: runtime.NumCPU(),
			Grid:    search.DefaultGrid(),
		},
		Output: OutputConfig{Format: "text"},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then TRIAGE_* environment variables, and
// validates the result.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides fields from the environment. Unparseable numbers
// keep the current value.
func applyEnv(cfg *Config) {
	cfg.Source.Provider = getenv("TRIAGE_SOURCE", cfg.Source.Provider)
	cfg.Source.Table = getenv("TRIAGE_TABLE", cfg.Source.Table)
	cfg.Source.MessageColumn = getenv("TRIAGE_MESSAGE_COLUMN", cfg.Source.MessageColumn)
	cfg.Source.LabelOffset = getenvInt("TRIAGE_LABEL_OFFSET", cfg.Source.LabelOffset)
	if v := os.Getenv("TRIAGE_CATEGORIES"); v != "" {
		cfg.Source.Categories = splitList(v)
	}
	cfg.Split.TestSize = getenvFloat("TRIAGE_TEST_SIZE", cfg.Split.TestSize)
	cfg.Seed = getenvUint("TRIAGE_SEED", cfg.Seed)
	cfg.Search.Folds = getenvInt("TRIAGE_FOLDS", cfg.Search.Folds)
	cfg.Search.Shuffle = getenvBool("TRIAGE_SHUFFLE", cfg.Search.Shuffle)
	cfg.Search.Scoring = getenv("TRIAGE_SCORING", cfg.Search.Scoring)
	cfg.Search.Workers = getenvInt("TRIAGE_WORKERS", cfg.Search.Workers)
	cfg.Output.Format = getenv("TRIAGE_OUTPUT_FORMAT", cfg.Output.Format)
	cfg.Output.Pretty = getenvBool("TRIAGE_OUTPUT_PRETTY", cfg.Output.Pretty)
	cfg.Output.ReportPath = getenv("TRIAGE_REPORT_PATH", cfg.Output.ReportPath)
	cfg.Output.WebhookURL = getenv("TRIAGE_WEBHOOK_URL", cfg.Output.WebhookURL)
	cfg.Log.Level = getenv("TRIAGE_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getenv("TRIAGE_LOG_FORMAT", cfg.Log.Format)
}

// Validate checks that every setting is usable. Empty grid axes are left
// for the search to reject.
func (c Config) Validate() error {
	if c.Source.Provider != "" && c.Source.Provider != "sqlite" && c.Source.Provider != "csv" {
		return fmt.Errorf("config: unknown source provider %q", c.Source.Provider)
	}
	if c.Source.LabelOffset < 1 {
		return fmt.Errorf("config: label_offset %d < 1", c.Source.LabelOffset)
	}
	if c.Split.TestSize <= 0 || c.Split.TestSize >= 1 {
		return fmt.Errorf("config: test_size %v outside (0, 1)", c.Split.TestSize)
	}
	if c.Search.Folds < 2 {
		return fmt.Errorf("config: folds %d < 2", c.Search.Folds)
	}
	if c.Search.Workers < 1 {
		return fmt.Errorf("config: workers %d < 1", c.Search.Workers)
	}
	if _, err := search.ScorerByName(c.Search.Scoring); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := validateGrid(c.Search.Grid); err != nil {
		return err
	}
	if c.Output.Format != "text" && c.Output.Format != "json" {
		return fmt.Errorf("config: output format %q, want text or json", c.Output.Format)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("config: log format %q, want text or json", c.Log.Format)
	}
	return nil
}

func validateGrid(g search.Grid) error {
	for _, r := range g.NGramRanges {
		if r[0] < 1 || r[1] < r[0] {
			return fmt.Errorf("config: grid: invalid ngram range (%d, %d)", r[0], r[1])
		}
	}
	for _, v := range g.MaxDF {
		if v <= 0 || v > 1 {
			return fmt.Errorf("config: grid: max_df %v outside (0, 1]", v)
		}
	}
	for _, v := range g.MaxFeatures {
		if v < 0 {
			return fmt.Errorf("config: grid: negative max_features %d", v)
		}
	}
	for _, v := range g.NEstimators {
		if v < 1 {
			return fmt.Errorf("config: grid: n_estimators %d < 1", v)
		}
	}
	for _, v := range g.MinSamplesSplit {
		if v < 2 {
			return fmt.Errorf("config: grid: min_samples_split %d < 2", v)
		}
	}
	return nil
}

// SourceConfig converts the source section for a corpus at path.
func (c Config) SourceConfig(path string) source.Config {
	return source.Config{
		Provider:      c.Source.Provider,
		Path:          path,
		Table:         c.Source.Table,
		MessageColumn: c.Source.MessageColumn,
		LabelOffset:   c.Source.LabelOffset,
		Categories:    c.Source.Categories,
	}
}

// Searcher converts the search section. The normalizer and logger are
// left for the caller.
func (c Config) Searcher() (search.Searcher, error) {
	scorer, err := search.ScorerByName(c.Search.Scoring)
	if err != nil {
		return search.Searcher{}, fmt.Errorf("config: %w", err)
	}
	grid := c.Search.Grid
	return search.Searcher{
		Grid:    &grid,
		Folds:   c.Search.Folds,
		Shuffle: c.Search.Shuffle,
		Seed:    c.Seed,
		Scorer:  scorer,
		Workers: c.Search.Workers,
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvUint(key string, fallback uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
