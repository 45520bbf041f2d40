// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package similarity

import "math"

// MinMaxNormalize rescales every dimension to [0, 1] across vectors:
// (v - min) / (max - min), or 0 when the dimension is constant.
// All vectors must have the same length as the first one.
func MinMaxNormalize(vectors [][]float64) [][]float64 {
	if len(vectors) == 0 {
		return nil
	}

	dims := len(vectors[0])
	mins := make([]float64, dims)
	maxs := make([]float64, dims)
	for i := 0; i < dims; i++ {
		mins[i] = math.Inf(1)
		maxs[i] = math.Inf(-1)
	}

	for _, v := range vectors {
		for i := 0; i < dims; i++ {
			mins[i] = math.Min(mins[i], v[i])
			maxs[i] = math.Max(maxs[i], v[i])
		}
	}

	out := make([][]float64, len(vectors))
	for n, v := range vectors {
		norm := make([]float64, dims)
		for i := 0; i < dims; i++ {
			if r := maxs[i] - mins[i]; r > 0 {
				norm[i] = (v[i] - mins[i]) / r
			}
		}
		out[n] = norm
	}
	return out
}

// Cosine returns dot(a, b) / (|a|*|b|), or 0 when either vector is zero or
// the lengths differ.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
