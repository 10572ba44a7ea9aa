package source

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/crimson-sun/triage/internal/model"
)

// Constructor is a function that creates a new Source instance.
type Constructor func() Source

var registry = map[string]Constructor{}

// Register adds a source constructor under the given provider name.
func Register(name string, ctor Constructor) {
	registry[name] = ctor
}

// Get returns the source constructor for the given provider name.
func Get(name string) (Constructor, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown source provider: %s", name)
	}
	return ctor, nil
}

// Providers returns the names of all registered source providers, sorted.
func Providers() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProviderFor guesses a provider from the file extension: ".csv" is csv,
// anything else is sqlite.
func ProviderFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return "csv"
	}
	return "sqlite"
}

// Load resolves cfg's provider (or guesses one from the path) and loads
// the corpus.
func Load(ctx context.Context, cfg Config) (*model.Dataset, error) {
	cfg = cfg.WithDefaults()
	if cfg.Provider == "" {
		cfg.Provider = ProviderFor(cfg.Path)
	}
	ctor, err := Get(cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrDataAccess, err)
	}
	return ctor().Load(ctx, cfg)
}
