package recommend

import (
	"cmp"
	"slices"
)

type scored struct {
	index int
	score float64
}

// rankExcluding orders row descending by score, keeping catalog order on
// ties, drops the entry at index self and returns at most topN entries.
// self is excluded by identity so an equal-scoring neighbour survives.
func rankExcluding(row []float64, self, topN int) []scored {
	candidates := make([]scored, 0, len(row))
	for i, s := range row {
		if i == self {
			continue
		}
		candidates = append(candidates, scored{index: i, score: s})
	}

	slices.SortStableFunc(candidates, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	if len(candidates) > topN {
		candidates = candidates[:topN]
	}
	return candidates
}
