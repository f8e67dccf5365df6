package domain

import (
	"fmt"
	"slices"
)

// Outcome is what a method's core algorithm produces before it is wrapped
// into a Result.
type Outcome struct {
	// Scores holds one value per alternative; its meaning is method-specific
	// but always orders alternatives (higher is better).
	Scores []float64

	// Rankings holds one rank per alternative, 1 being best.
	Rankings []int

	// Diagnostics carries method-specific intermediate data.
	Diagnostics Data
}

// RankedAlternative is one row of a ranking.
type RankedAlternative struct {
	Alternative Alternative `json:"alternative"`
	Score       float64     `json:"score"`
	Rank        int         `json:"rank"`
}

// Result is the immutable output of one method invocation.
type Result struct {
	methodName  string
	matrix      *DecisionMatrix
	scores      []float64
	rankings    []int
	diagnostics Data
}

// NewResult builds a Result, failing with ErrDimensionMismatch when scores
// or rankings do not hold exactly one entry per alternative.
func NewResult(
	methodName string,
	matrix *DecisionMatrix,
	scores []float64,
	rankings []int,
	diagnostics Data,
) (*Result, error) {
	if matrix == nil {
		return nil, fmt.Errorf("result for %s: %w", methodName, ErrInvalidMatrix)
	}
	n := matrix.NumAlternatives()
	if len(scores) != n {
		return nil, fmt.Errorf("%w: %d scores for %d alternatives", ErrDimensionMismatch, len(scores), n)
	}
	if len(rankings) != n {
		return nil, fmt.Errorf("%w: %d rankings for %d alternatives", ErrDimensionMismatch, len(rankings), n)
	}
	if diagnostics.data == nil {
		diagnostics = NewData()
	}

	return &Result{
		methodName:  methodName,
		matrix:      matrix,
		scores:      slices.Clone(scores),
		rankings:    slices.Clone(rankings),
		diagnostics: diagnostics,
	}, nil
}

// MethodName returns the name of the method that produced the result.
func (r *Result) MethodName() string { return r.methodName }

// Matrix returns the decision matrix the result was computed from.
func (r *Result) Matrix() *DecisionMatrix { return r.matrix }

// Scores returns a copy of the score vector.
func (r *Result) Scores() []float64 { return slices.Clone(r.scores) }

// Rankings returns a copy of the ranking vector.
func (r *Result) Rankings() []int { return slices.Clone(r.rankings) }

// Diagnostics returns the method-specific diagnostic data.
func (r *Result) Diagnostics() Data { return r.diagnostics }

// Best returns the alternative with the lowest rank number. On equal rank
// numbers the earlier alternative wins.
func (r *Result) Best() RankedAlternative {
	if len(r.rankings) == 0 {
		return RankedAlternative{}
	}
	best := 0
	for i, rank := range r.rankings {
		if rank < r.rankings[best] {
			best = i
		}
	}
	return r.entry(best)
}

// Worst returns the alternative with the highest rank number. On equal
// rank numbers the later alternative wins, mirroring the tail of Ranked.
func (r *Result) Worst() RankedAlternative {
	ranked := r.Ranked()
	if len(ranked) == 0 {
		return RankedAlternative{}
	}
	return ranked[len(ranked)-1]
}

// Ranked returns every alternative ordered by ascending rank.
func (r *Result) Ranked() []RankedAlternative {
	order := make([]int, len(r.rankings))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return r.rankings[a] - r.rankings[b]
	})

	out := make([]RankedAlternative, len(order))
	for pos, idx := range order {
		out[pos] = r.entry(idx)
	}
	return out
}

// ScoreOf returns the score of the named alternative.
func (r *Result) ScoreOf(name string) (float64, bool) {
	i := r.matrix.AlternativeIndex(name)
	if i < 0 {
		return 0, false
	}
	return r.scores[i], true
}

// RankOf returns the rank of the named alternative.
func (r *Result) RankOf(name string) (int, bool) {
	i := r.matrix.AlternativeIndex(name)
	if i < 0 {
		return 0, false
	}
	return r.rankings[i], true
}

func (r *Result) entry(i int) RankedAlternative {
	return RankedAlternative{
		Alternative: r.matrix.Alternative(i),
		Score:       r.scores[i],
		Rank:        r.rankings[i],
	}
}
