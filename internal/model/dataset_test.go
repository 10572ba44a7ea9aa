package model

import (
	"errors"
	"reflect"
	"testing"
)

func TestCoerceLabel(t *testing.T) {
	tests := []struct {
		in   int64
		want uint8
	}{
		{0, 0},
		{1, 1},
		{2, 1},
		{7, 1},
	}
	for _, tt := range tests {
		if got := CoerceLabel(tt.in); got != tt.want {
			t.Errorf("CoerceLabel(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNewDataset(t *testing.T) {
	ds, err := NewDataset(
		[]string{"need water", "storm coming"},
		[]string{"related", "water"},
		[][]int64{{2, 1}, {1, 0}},
	)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	if ds.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", ds.Len())
	}
	want := [][]uint8{{1, 1}, {1, 0}}
	if !reflect.DeepEqual(ds.Labels, want) {
		t.Errorf("Labels = %v, want %v (legacy 2 coerced to 1)", ds.Labels, want)
	}
}

func TestNewDatasetErrors(t *testing.T) {
	tests := []struct {
		name       string
		messages   []string
		categories []string
		raw        [][]int64
	}{
		{"no categories", []string{"a"}, nil, [][]int64{{}}},
		{"empty category", []string{"a"}, []string{""}, [][]int64{{0}}},
		{"duplicate category", []string{"a"}, []string{"water", "water"}, [][]int64{{0, 1}}},
		{"count mismatch", []string{"a", "b"}, []string{"water"}, [][]int64{{1}}},
		{"short row", []string{"a"}, []string{"water", "food"}, [][]int64{{1}}},
		{"negative label", []string{"a"}, []string{"water"}, [][]int64{{-1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDataset(tt.messages, tt.categories, tt.raw)
			if !errors.Is(err, ErrDataAccess) {
				t.Fatalf("err = %v, want ErrDataAccess", err)
			}
		})
	}
}

func TestSubsetAndColumn(t *testing.T) {
	ds, err := NewDataset(
		[]string{"a", "b", "c"},
		[]string{"x", "y"},
		[][]int64{{1, 0}, {0, 1}, {1, 1}},
	)
	if err != nil {
		t.Fatal(err)
	}
	sub := ds.Subset([]int{2, 0})
	if !reflect.DeepEqual(sub.Messages, []string{"c", "a"}) {
		t.Errorf("Messages = %v", sub.Messages)
	}
	if got := Column(sub.Labels, 1); !reflect.DeepEqual(got, []uint8{1, 0}) {
		t.Errorf("Column(1) = %v, want [1 0]", got)
	}
	if !reflect.DeepEqual(sub.Categories, ds.Categories) {
		t.Errorf("Categories = %v", sub.Categories)
	}
}

func TestSparseVectorAt(t *testing.T) {
	v := SparseVector{Indices: []int{1, 4, 9}, Values: []float64{0.5, 2, 3}}
	for i, want := range map[int]float64{0: 0, 1: 0.5, 4: 2, 5: 0, 9: 3, 10: 0} {
		if got := v.At(i); got != want {
			t.Errorf("At(%d) = %v, want %v", i, got, want)
		}
	}
	if v.Len() != 3 {
		t.Errorf("Len() = %d, want 3", v.Len())
	}
}
