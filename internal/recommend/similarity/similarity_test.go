// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package similarity

import (
	"math"
	"reflect"
	"testing"
)

const epsilon = 1e-9

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestCosine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"scaled", []float64{1, 2, 3}, []float64{2, 4, 6}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 1}, []float64{-1, -1}, -1},
		{"zero vector", []float64{0, 0, 0}, []float64{1, 2, 3}, 0},
		{"length mismatch", []float64{1, 2}, []float64{1, 2, 3}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Cosine(tt.a, tt.b); !approxEqual(got, tt.want) {
				t.Errorf("Cosine(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestMinMaxNormalize(t *testing.T) {
	t.Parallel()

	got := MinMaxNormalize([][]float64{
		{0, 5, 10},
		{10, 5, 20},
		{5, 5, 15},
	})
	want := [][]float64{
		{0, 0, 0},
		{1, 0, 1},
		{0.5, 0, 0.5},
	}

	for i := range want {
		for j := range want[i] {
			if !approxEqual(got[i][j], want[i][j]) {
				t.Errorf("normalized[%d][%d] = %v, want %v", i, j, got[i][j], want[i][j])
			}
		}
	}

	if MinMaxNormalize(nil) != nil {
		t.Error("MinMaxNormalize(nil) should return nil")
	}
}

func TestMinMaxNormalize_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := [][]float64{{1, 2}, {3, 4}}
	MinMaxNormalize(in)
	if in[0][0] != 1 || in[1][1] != 4 {
		t.Errorf("input mutated: %v", in)
	}
}

func TestJaccard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{"identical", []string{"Bread", "Milk"}, []string{"Bread", "Milk"}, 1},
		{"half overlap", []string{"Bread", "Milk"}, []string{"Milk"}, 0.5},
		{"one of three", []string{"Bread", "Milk"}, []string{"Milk", "Eggs"}, 1.0 / 3.0},
		{"disjoint", []string{"Bread"}, []string{"Eggs"}, 0},
		{"both empty", nil, nil, 0},
		{"one empty", []string{"Bread"}, nil, 0},
		{"duplicates ignored", []string{"Milk", "Milk"}, []string{"Milk"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a, b := NewSet(tt.a), NewSet(tt.b)
			if got := Jaccard(a, b); !approxEqual(got, tt.want) {
				t.Errorf("Jaccard(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := Jaccard(b, a); !approxEqual(got, tt.want) {
				t.Errorf("Jaccard(%v, %v) = %v, want %v (symmetry)", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestIntersection(t *testing.T) {
	t.Parallel()

	got := Intersection(NewSet([]string{"Milk", "Bread", "Eggs"}), NewSet([]string{"Eggs", "Milk", "Tea"}))
	want := []string{"Eggs", "Milk"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Intersection = %v, want %v", got, want)
	}

	if got := Intersection(NewSet(nil), NewSet([]string{"Milk"})); len(got) != 0 {
		t.Errorf("Intersection with empty set = %v, want empty", got)
	}
}

func TestRankItems(t *testing.T) {
	t.Parallel()

	names := []string{"Apples", "Bananas", "Cheese", "Pears"}
	vectors := [][]float64{
		{1, 0, 1},
		{1, 0, 1},
		{0, 1, 0},
		{1, 0, 0.9},
	}

	got := RankItems(names, vectors, 0.5, 5)

	if len(got) != len(names) {
		t.Fatalf("RankItems returned %d entries, want %d", len(got), len(names))
	}

	for name, similar := range got {
		for _, s := range similar {
			if s.ItemName == name {
				t.Errorf("%s lists itself as similar", name)
			}
			if s.Score <= 0.5 {
				t.Errorf("%s -> %s score %v should exceed threshold", name, s.ItemName, s.Score)
			}
		}
	}

	if len(got["Cheese"]) != 0 {
		t.Errorf("Cheese similar = %v, want none", got["Cheese"])
	}

	apples := got["Apples"]
	if len(apples) != 2 {
		t.Fatalf("Apples similar = %v, want 2 entries", apples)
	}
	if apples[0].ItemName != "Bananas" || !approxEqual(apples[0].Score, 1) {
		t.Errorf("Apples top similar = %+v, want Bananas with score 1", apples[0])
	}
	if apples[1].ItemName != "Pears" {
		t.Errorf("Apples second similar = %+v, want Pears", apples[1])
	}
}

func TestRankItems_TopKAndTieBreak(t *testing.T) {
	t.Parallel()

	names := []string{"A", "E", "D", "C", "B", "F", "G"}
	vectors := make([][]float64, len(names))
	for i := range vectors {
		vectors[i] = []float64{0, 1, 1}
	}
	// One distinct vector keeps the normalization range non-zero.
	vectors = append(vectors, []float64{1, 0, 0})
	names = append(names, "Z")

	got := RankItems(names, vectors, 0.5, 5)

	a := got["A"]
	if len(a) != 5 {
		t.Fatalf("A similar = %d entries, want 5", len(a))
	}
	want := []string{"B", "C", "D", "E", "F"}
	for i, s := range a {
		if s.ItemName != want[i] {
			t.Errorf("A similar[%d] = %s, want %s", i, s.ItemName, want[i])
		}
	}
}
