// Package testutils provides utilities for testing, including random
// decision problem generators. These components are intended for internal
// use within the project's test suites and tools and are not part of the
// public API.
package testutils

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ahrav/go-mcdm/internal/domain"
)

// GeneratedProblem is a random decision problem together with perfectly
// consistent AHP judgments derived from its values and weights.
type GeneratedProblem struct {
	Alternatives []domain.Alternative
	Criteria     []domain.Criterion
	Values       [][]float64
	Weights      []float64

	// PairwiseCriteria compares criteria by weight ratio.
	PairwiseCriteria [][]float64
	// PairwiseAlternatives compares alternatives per criterion by value
	// ratio, inverted for cost criteria.
	PairwiseAlternatives [][][]float64
}

// GenerateProblem creates a random problem with the given shape.
// The seed parameter controls randomization - use time.Now().UnixNano() for
// non-deterministic generation or a fixed value for reproducible tests.
// Values are positive with two decimals, weights are integers in [1, 10]
// and every criterion direction is drawn at random.
func GenerateProblem(alternatives, criteria int, seed int64) *GeneratedProblem {
	rng := rand.New(rand.NewSource(seed))

	p := &GeneratedProblem{
		Alternatives: make([]domain.Alternative, alternatives),
		Criteria:     make([]domain.Criterion, criteria),
		Values:       make([][]float64, alternatives),
		Weights:      make([]float64, criteria),
	}

	for j := range criteria {
		dir := domain.Benefit
		if rng.Intn(2) == 0 {
			dir = domain.Cost
		}
		p.Criteria[j] = domain.Criterion{Name: fmt.Sprintf("C%d", j+1), Direction: dir}
		p.Weights[j] = float64(1 + rng.Intn(10))
	}

	for i := range alternatives {
		p.Alternatives[i] = domain.Alternative{Name: fmt.Sprintf("A%d", i+1)}
		p.Values[i] = make([]float64, criteria)
		for j := range criteria {
			p.Values[i][j] = math.Round((1+rng.Float64()*99)*100) / 100
		}
	}

	p.PairwiseCriteria = ConsistentPairwise(p.Weights...)
	p.PairwiseAlternatives = make([][][]float64, criteria)
	for j, c := range p.Criteria {
		priorities := make([]float64, alternatives)
		for i := range alternatives {
			priorities[i] = p.Values[i][j]
			if c.IsCost() {
				priorities[i] = 1 / priorities[i]
			}
		}
		p.PairwiseAlternatives[j] = ConsistentPairwise(priorities...)
	}

	return p
}

// Matrix builds the decision matrix with both pairwise inputs attached.
func (p *GeneratedProblem) Matrix() (*domain.DecisionMatrix, error) {
	m, err := domain.NewDecisionMatrix(p.Alternatives, p.Criteria, p.Values, p.Weights)
	if err != nil {
		return nil, err
	}
	m = domain.WithInput(m, domain.KeyPairwiseCriteria, p.PairwiseCriteria)
	m = domain.WithInput(m, domain.KeyPairwiseAlternatives, p.PairwiseAlternatives)
	return m, nil
}

// ConsistentPairwise builds a perfectly consistent comparison matrix with
// a[i][j] = v[i]/v[j]. Its consistency ratio is zero.
func ConsistentPairwise(v ...float64) [][]float64 {
	out := make([][]float64, len(v))
	for i := range v {
		out[i] = make([]float64, len(v))
		for j := range v {
			out[i][j] = v[i] / v[j]
		}
	}
	return out
}
