// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package similarity

import (
	"sort"

	"github.com/tomtom215/pantry/internal/models"
)

// RankItems computes, for every item, the other items whose normalized
// feature vectors have cosine similarity strictly above threshold, keeping
// the topK best. names[i] labels vectors[i]; names are assumed unique.
//
// Vectors are min-max normalized together before comparison. Lists are
// sorted by descending score, ties by item name. An item never appears in
// its own list. Every name has an entry, possibly empty.
func RankItems(names []string, vectors [][]float64, threshold float64, topK int) map[string][]models.SimilarItem {
	normalized := MinMaxNormalize(vectors)

	result := make(map[string][]models.SimilarItem, len(names))
	for i, name := range names {
		similar := make([]models.SimilarItem, 0)

		for j, other := range names {
			if i == j || other == name {
				continue
			}

			score := Cosine(normalized[i], normalized[j])
			if score > threshold {
				similar = append(similar, models.SimilarItem{ItemName: other, Score: score})
			}
		}

		sort.Slice(similar, func(a, b int) bool {
			if similar[a].Score != similar[b].Score {
				return similar[a].Score > similar[b].Score
			}
			return similar[a].ItemName < similar[b].ItemName
		})

		if topK > 0 && len(similar) > topK {
			similar = similar[:topK]
		}
		result[name] = similar
	}

	return result
}
