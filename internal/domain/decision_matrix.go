package domain

import (
	"fmt"
	"math"
	"slices"
)

// DecisionMatrix is the input to every ranking method: alternatives (rows)
// scored against criteria (columns), plus one weight per criterion and a
// typed side channel of method-specific inputs.
//
// A DecisionMatrix is immutable. Every structural change (adding an
// alternative or criterion, reweighting, rescaling values, attaching
// inputs) returns a new value, so dimensional invariants cannot be broken
// by partial updates and no ranking method can mutate its caller's matrix.
type DecisionMatrix struct {
	alternatives []Alternative
	criteria     []Criterion
	values       [][]float64
	weights      []float64
	data         Data
}

// NewDecisionMatrix validates and builds a DecisionMatrix.
//
// The values matrix must have one row per alternative and one column per
// criterion, and hold only finite numbers. When weights is nil every
// criterion gets an equal weight; otherwise weights must have one
// non-negative entry per criterion and are normalized to sum to 1 when
// their sum is positive. A zero-sum weight vector is accepted here and
// rejected by methods at execution time.
//
// Empty matrices are allowed so they can be grown with WithAlternative
// and WithCriterion; methods reject them at execution time.
func NewDecisionMatrix(
	alternatives []Alternative,
	criteria []Criterion,
	values [][]float64,
	weights []float64,
) (*DecisionMatrix, error) {
	verr := NewValidationError("decision matrix")
	verr.Err = ErrInvalidMatrix

	seen := make(map[string]struct{}, len(alternatives))
	for i, alt := range alternatives {
		if alt.Name == "" {
			verr.AddError(fmt.Sprintf("alternative %d has an empty name", i))
			continue
		}
		if _, dup := seen[alt.Name]; dup {
			verr.AddError(fmt.Sprintf("duplicate alternative name %q", alt.Name))
		}
		seen[alt.Name] = struct{}{}
	}

	seen = make(map[string]struct{}, len(criteria))
	for j, c := range criteria {
		if c.Name == "" {
			verr.AddError(fmt.Sprintf("criterion %d has an empty name", j))
			continue
		}
		if !c.Direction.Valid() {
			verr.AddError(fmt.Sprintf("criterion %q has invalid direction %q", c.Name, c.Direction))
		}
		if _, dup := seen[c.Name]; dup {
			verr.AddError(fmt.Sprintf("duplicate criterion name %q", c.Name))
		}
		seen[c.Name] = struct{}{}
	}

	if len(values) != len(alternatives) {
		verr.AddError(fmt.Sprintf("values has %d rows, expected %d (one per alternative)",
			len(values), len(alternatives)))
	}
	for i, row := range values {
		if len(row) != len(criteria) {
			verr.AddError(fmt.Sprintf("values row %d has %d columns, expected %d (one per criterion)",
				i, len(row), len(criteria)))
			continue
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				verr.AddError(fmt.Sprintf("values[%d][%d] is not finite", i, j))
			}
		}
	}

	if weights == nil {
		weights = equalWeights(len(criteria))
	}
	if len(weights) != len(criteria) {
		verr.AddError(fmt.Sprintf("weights has %d entries, expected %d (one per criterion)",
			len(weights), len(criteria)))
	}
	for j, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			verr.AddError(fmt.Sprintf("weight %d must be a finite non-negative number, got %v", j, w))
		}
	}

	if verr.HasErrors() {
		return nil, verr
	}

	return &DecisionMatrix{
		alternatives: slices.Clone(alternatives),
		criteria:     slices.Clone(criteria),
		values:       cloneRows(values),
		weights:      normalizeWeights(weights),
		data:         NewData(),
	}, nil
}

// equalWeights returns n weights of 1/n.
func equalWeights(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1 / float64(n)
	}
	return w
}

// normalizeWeights scales a copy of w to sum to 1 when its sum is positive.
func normalizeWeights(w []float64) []float64 {
	out := slices.Clone(w)
	if out == nil {
		out = []float64{}
	}
	var sum float64
	for _, v := range out {
		sum += v
	}
	if sum <= 0 {
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func cloneRows(values [][]float64) [][]float64 {
	out := make([][]float64, len(values))
	for i, row := range values {
		out[i] = slices.Clone(row)
	}
	return out
}

// NumAlternatives returns the number of rows.
func (m *DecisionMatrix) NumAlternatives() int { return len(m.alternatives) }

// NumCriteria returns the number of columns.
func (m *DecisionMatrix) NumCriteria() int { return len(m.criteria) }

// Alternatives returns a copy of the alternatives in row order.
func (m *DecisionMatrix) Alternatives() []Alternative { return slices.Clone(m.alternatives) }

// Alternative returns the alternative at row i.
func (m *DecisionMatrix) Alternative(i int) Alternative { return m.alternatives[i] }

// Criteria returns a copy of the criteria in column order.
func (m *DecisionMatrix) Criteria() []Criterion { return slices.Clone(m.criteria) }

// Criterion returns the criterion at column j.
func (m *DecisionMatrix) Criterion(j int) Criterion { return m.criteria[j] }

// Directions returns the direction of every criterion in column order.
func (m *DecisionMatrix) Directions() []Direction {
	dirs := make([]Direction, len(m.criteria))
	for j, c := range m.criteria {
		dirs[j] = c.Direction
	}
	return dirs
}

// Values returns a deep copy of the values matrix.
func (m *DecisionMatrix) Values() [][]float64 { return cloneRows(m.values) }

// Value returns the raw value of alternative i on criterion j.
func (m *DecisionMatrix) Value(i, j int) float64 { return m.values[i][j] }

// Column returns a copy of column j.
func (m *DecisionMatrix) Column(j int) []float64 {
	col := make([]float64, len(m.values))
	for i, row := range m.values {
		col[i] = row[j]
	}
	return col
}

// Weights returns a copy of the weight vector.
func (m *DecisionMatrix) Weights() []float64 { return slices.Clone(m.weights) }

// Data returns the method input side channel.
func (m *DecisionMatrix) Data() Data { return m.data }

// IsEmpty reports whether the matrix has no alternatives or no criteria.
func (m *DecisionMatrix) IsEmpty() bool {
	return len(m.alternatives) == 0 || len(m.criteria) == 0
}

// HasWeights reports whether the matrix has a weight vector with a
// positive sum.
func (m *DecisionMatrix) HasWeights() bool {
	if len(m.weights) == 0 {
		return false
	}
	var sum float64
	for _, w := range m.weights {
		sum += w
	}
	return sum > 0
}

// AlternativeIndex returns the row index of the named alternative, or -1.
func (m *DecisionMatrix) AlternativeIndex(name string) int {
	return slices.IndexFunc(m.alternatives, func(a Alternative) bool { return a.Name == name })
}

// CriterionIndex returns the column index of the named criterion, or -1.
func (m *DecisionMatrix) CriterionIndex(name string) int {
	return slices.IndexFunc(m.criteria, func(c Criterion) bool { return c.Name == name })
}

// Copy returns a deep copy of the matrix, including its side channel.
func (m *DecisionMatrix) Copy() *DecisionMatrix {
	return &DecisionMatrix{
		alternatives: slices.Clone(m.alternatives),
		criteria:     slices.Clone(m.criteria),
		values:       cloneRows(m.values),
		weights:      slices.Clone(m.weights),
		data:         m.data.clone(),
	}
}

// WithAlternative returns a new matrix with alt appended as the last row.
// The row must carry one value per criterion.
func (m *DecisionMatrix) WithAlternative(alt Alternative, row []float64) (*DecisionMatrix, error) {
	values := append(cloneRows(m.values), slices.Clone(row))
	next, err := NewDecisionMatrix(append(m.Alternatives(), alt), m.criteria, values, m.weights)
	if err != nil {
		return nil, err
	}
	next.data = m.data
	return next, nil
}

// WithCriterion returns a new matrix with c appended as the last column.
// The column must carry one value per alternative. Weights are
// renormalized after appending weight.
func (m *DecisionMatrix) WithCriterion(c Criterion, column []float64, weight float64) (*DecisionMatrix, error) {
	if len(column) != len(m.alternatives) {
		return nil, newValidationErrorf("decision matrix", ErrDimensionMismatch,
			"column has %d values, expected %d (one per alternative)", len(column), len(m.alternatives))
	}
	values := cloneRows(m.values)
	for i := range values {
		values[i] = append(values[i], column[i])
	}
	weights := append(slices.Clone(m.weights), weight)
	next, err := NewDecisionMatrix(m.alternatives, append(m.Criteria(), c), values, weights)
	if err != nil {
		return nil, err
	}
	next.data = m.data
	return next, nil
}

// WithWeights returns a new matrix with weights replaced and normalized to
// sum to 1.
func (m *DecisionMatrix) WithWeights(weights []float64) (*DecisionMatrix, error) {
	if len(weights) != len(m.criteria) {
		return nil, newValidationErrorf("decision matrix", ErrDimensionMismatch,
			"invalid number of weights: got %d, expected %d", len(weights), len(m.criteria))
	}
	next, err := NewDecisionMatrix(m.alternatives, m.criteria, m.values, weights)
	if err != nil {
		return nil, err
	}
	next.data = m.data
	return next, nil
}

// WithValues returns a new matrix with the values matrix replaced. The
// shape must not change. Normalizers use it to produce rescaled copies.
func (m *DecisionMatrix) WithValues(values [][]float64) (*DecisionMatrix, error) {
	next, err := NewDecisionMatrix(m.alternatives, m.criteria, values, m.weights)
	if err != nil {
		return nil, err
	}
	next.data = m.data
	return next, nil
}

// WithInput returns a new matrix carrying value under key in its side
// channel.
func WithInput[T any](m *DecisionMatrix, key Key[T], value T) *DecisionMatrix {
	next := *m
	next.data = With(m.data, key, value)
	return &next
}

// Input retrieves a typed method input from the matrix side channel.
func Input[T any](m *DecisionMatrix, key Key[T]) (T, bool) {
	return Get(m.data, key)
}
