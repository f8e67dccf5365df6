package domain

import (
	"cmp"
	"math"
	"slices"
)

// Rank converts scores into competition ranks where rank 1 is the highest
// score. It is the double argsort of the negated scores: the first argsort
// orders alternatives from best to worst, the second maps each alternative
// back to its position. The sort is stable, so equal scores are ranked in
// index order (the earlier alternative wins). NaN scores rank last.
//
// The returned ranks are always a permutation of 1..len(scores).
func Rank(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}

	slices.SortStableFunc(order, func(a, b int) int {
		sa, sb := scores[a], scores[b]
		switch {
		case math.IsNaN(sa) && math.IsNaN(sb):
			return 0
		case math.IsNaN(sa):
			return 1
		case math.IsNaN(sb):
			return -1
		}
		// Descending by score.
		return cmp.Compare(sb, sa)
	})

	ranks := make([]int, len(scores))
	for pos, idx := range order {
		ranks[idx] = pos + 1
	}
	return ranks
}

// IsPermutation reports whether ranks holds each of 1..len(ranks) exactly once.
func IsPermutation(ranks []int) bool {
	seen := make([]bool, len(ranks))
	for _, r := range ranks {
		if r < 1 || r > len(ranks) || seen[r-1] {
			return false
		}
		seen[r-1] = true
	}
	return true
}
