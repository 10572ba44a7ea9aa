package source

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/crimson-sun/triage/internal/model"
)

var columns = []string{"id", "message", "original", "genre", "related", "water", "food"}

func TestLabelColumns(t *testing.T) {
	cfg := Config{}.WithDefaults()
	got, err := LabelColumns(columns, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"related", "water", "food"}) {
		t.Errorf("LabelColumns = %v", got)
	}

	cfg.Categories = []string{"food", "related"}
	got, err = LabelColumns(columns, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"food", "related"}) {
		t.Errorf("selected = %v, want configured order", got)
	}
}

func TestLabelColumnsErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing message column", Config{MessageColumn: "text", LabelOffset: 4}},
		{"offset past end", Config{MessageColumn: "message", LabelOffset: 7}},
		{"message inside labels", Config{MessageColumn: "message", LabelOffset: 1}},
		{"unknown category", Config{MessageColumn: "message", LabelOffset: 4, Categories: []string{"fire"}}},
		{"category before offset", Config{MessageColumn: "message", LabelOffset: 4, Categories: []string{"genre"}}},
		{"duplicate category", Config{MessageColumn: "message", LabelOffset: 4, Categories: []string{"water", "water"}}},
		{"empty category", Config{MessageColumn: "message", LabelOffset: 4, Categories: []string{"water", ""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LabelColumns(columns, tt.cfg); !errors.Is(err, model.ErrDataAccess) {
				t.Fatalf("err = %v, want ErrDataAccess", err)
			}
		})
	}

	dup := []string{"id", "message", "original", "genre", "water", "water"}
	if _, err := LabelColumns(dup, Config{}.WithDefaults()); !errors.Is(err, model.ErrDataAccess) {
		t.Fatalf("duplicate label column: err = %v, want ErrDataAccess", err)
	}
}

func TestParseLabel(t *testing.T) {
	tests := []struct {
		in      any
		want    int64
		wantErr bool
	}{
		{int64(2), 2, false},
		{1, 1, false},
		{float64(1), 1, false},
		{1.5, 0, true},
		{true, 1, false},
		{[]byte("0"), 0, false},
		{" 1 ", 1, false},
		{"1.0", 1, false},
		{"yes", 0, true},
		{nil, 0, true},
		{struct{}{}, 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLabel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLabel(%#v) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLabel(%#v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestValidIdentifier(t *testing.T) {
	for name, want := range map[string]bool{
		"disaster":       true,
		"aid_related":    true,
		"_x1":            true,
		"1table":         false,
		"drop table; --": false,
		`message"`:       false,
		"":               false,
	} {
		if got := ValidIdentifier(name); got != want {
			t.Errorf("ValidIdentifier(%q) = %v, want %v", name, got, want)
		}
	}
}

type stubSource struct{ got Config }

func (s *stubSource) Load(_ context.Context, cfg Config) (*model.Dataset, error) {
	s.got = cfg
	return model.NewDataset([]string{"m"}, []string{"water"}, [][]int64{{1}})
}

func TestRegistryLoad(t *testing.T) {
	stub := &stubSource{}
	Register("stub", func() Source { return stub })
	defer delete(registry, "stub")

	if _, err := Load(context.Background(), Config{Provider: "stub", Path: "x.db"}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if stub.got.Table != DefaultTable || stub.got.LabelOffset != DefaultLabelOffset {
		t.Errorf("defaults not applied: %+v", stub.got)
	}

	if _, err := Load(context.Background(), Config{Provider: "nope"}); !errors.Is(err, model.ErrDataAccess) {
		t.Errorf("unknown provider: err = %v, want ErrDataAccess", err)
	}
	found := false
	for _, p := range Providers() {
		if p == "stub" {
			found = true
		}
	}
	if !found {
		t.Errorf("Providers() = %v, missing stub", Providers())
	}
}

func TestProviderFor(t *testing.T) {
	if got := ProviderFor("data/messages.CSV"); got != "csv" {
		t.Errorf("ProviderFor(csv) = %q", got)
	}
	if got := ProviderFor("data/DisasterResponse.db"); got != "sqlite" {
		t.Errorf("ProviderFor(db) = %q", got)
	}
}
