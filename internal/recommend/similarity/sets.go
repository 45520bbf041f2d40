// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package similarity

import "sort"

// Set is a set of item names.
type Set map[string]struct{}

// NewSet builds a Set from names, ignoring duplicates.
func NewSet(names []string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Intersection returns the names present in both sets, sorted.
func Intersection(a, b Set) []string {
	if len(b) < len(a) {
		a, b = b, a
	}

	out := make([]string, 0, len(a))
	for n := range a {
		if b.Has(n) {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// Jaccard returns |a ∩ b| / |a ∪ b|, or 0 when both sets are empty.
// It is symmetric in its arguments.
func Jaccard(a, b Set) float64 {
	inter := 0
	small, large := a, b
	if len(large) < len(small) {
		small, large = large, small
	}
	for n := range small {
		if large.Has(n) {
			inter++
		}
	}

	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
