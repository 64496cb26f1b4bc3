package search

import (
	"sort"

	"path2prevention/internal/model"
)

// HybridScore blends cosine similarity and full-text rank.
func HybridScore(weight, vectorSimilarity, textRank float64) float64 {
	return weight*vectorSimilarity + (1-weight)*textRank
}

// MergeHybrid full-outer-joins vector candidates (VectorSimilarity set) with
// text candidates (TextRank set) on program id. A missing side counts as 0.
// Rows with a non-positive combined score are dropped. Order among exact ties
// is not guaranteed.
func MergeHybrid(vectorRows, textRows []model.ProgramRow, weight float64, limit int) []model.ProgramRow {
	byID := make(map[uint]*model.ProgramRow, len(vectorRows)+len(textRows))
	order := make([]uint, 0, len(vectorRows)+len(textRows))

	for _, row := range vectorRows {
		r := row
		r.TextRank = nil
		byID[r.ID] = &r
		order = append(order, r.ID)
	}
	for _, row := range textRows {
		if existing, ok := byID[row.ID]; ok {
			existing.TextRank = row.TextRank
			continue
		}
		r := row
		r.VectorSimilarity = nil
		byID[r.ID] = &r
		order = append(order, r.ID)
	}

	merged := make([]model.ProgramRow, 0, len(order))
	for _, id := range order {
		r := byID[id]
		vs, tr := valueOr(r.VectorSimilarity), valueOr(r.TextRank)
		combined := HybridScore(weight, vs, tr)
		if combined <= 0 {
			continue
		}
		r.VectorSimilarity = &vs
		r.TextRank = &tr
		r.Similarity = &combined
		merged = append(merged, *r)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return *merged[i].Similarity > *merged[j].Similarity
	})
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

func valueOr(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
