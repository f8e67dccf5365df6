// Package normalization provides pure functions that rescale the columns of
// a decision matrix onto comparable scales. Every function returns new
// slices and leaves its input untouched.
package normalization

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/ahrav/go-mcdm/internal/domain"
)

// Scheme names a normalization scheme selectable from configuration.
type Scheme string

const (
	// SchemeVector divides each column by its Euclidean norm.
	SchemeVector Scheme = "vector"
	// SchemeLinear maps each column onto [0,1] by min-max scaling.
	SchemeLinear Scheme = "linear"
	// SchemeSum divides each column by its sum.
	SchemeSum Scheme = "sum"
	// SchemeMaxRatio divides by the column best according to direction.
	SchemeMaxRatio Scheme = "max_ratio"
)

// ErrDivisionByZero is returned when a scheme would divide by a zero entry.
var ErrDivisionByZero = errors.New("normalization: division by zero")

// ParseScheme resolves a scheme name case-insensitively.
func ParseScheme(s string) (Scheme, error) {
	switch sc := Scheme(strings.ToLower(strings.TrimSpace(s))); sc {
	case SchemeVector, SchemeLinear, SchemeSum, SchemeMaxRatio:
		return sc, nil
	default:
		return "", fmt.Errorf("unknown normalization scheme %q", s)
	}
}

// Apply rescales values with the given scheme. Directions are only
// consulted by the direction-aware schemes.
func Apply(scheme Scheme, values [][]float64, directions []domain.Direction) ([][]float64, error) {
	switch scheme {
	case SchemeVector:
		return Vector(values)
	case SchemeLinear:
		return Linear(values, directions)
	case SchemeSum:
		return Sum(values)
	case SchemeMaxRatio:
		return MaxRatio(values, directions)
	default:
		return nil, fmt.Errorf("unknown normalization scheme %q", scheme)
	}
}

// Vector divides each column by its L2 norm. A zero-norm column is divided
// by 1 so it stays all zeros.
func Vector(values [][]float64) ([][]float64, error) {
	cols, err := columns(values)
	if err != nil {
		return nil, err
	}
	for _, col := range cols {
		norm := floats.Norm(col, 2)
		if norm == 0 {
			norm = 1
		}
		floats.Scale(1/norm, col)
	}
	return rows(cols, len(values)), nil
}

// Linear applies min-max scaling per column. Benefit columns map the
// minimum to 0 and the maximum to 1; cost columns are reversed. A constant
// column becomes all ones for benefit criteria and all zeros for cost
// criteria.
func Linear(values [][]float64, directions []domain.Direction) ([][]float64, error) {
	cols, err := columns(values)
	if err != nil {
		return nil, err
	}
	if err := checkDirections(len(cols), directions); err != nil {
		return nil, err
	}
	for j, col := range cols {
		// Halved operands keep hi-lo finite for any finite column.
		lo, hi := floats.Min(col)/2, floats.Max(col)/2
		span := hi - lo
		benefit := directions[j] == domain.Benefit
		for i, v := range col {
			v /= 2
			switch {
			case span == 0 && benefit:
				col[i] = 1
			case span == 0:
				col[i] = 0
			case benefit:
				col[i] = (v - lo) / span
			default:
				col[i] = (hi - v) / span
			}
		}
	}
	return rows(cols, len(values)), nil
}

// Sum divides each column by its sum. A zero-sum column is left unchanged.
func Sum(values [][]float64) ([][]float64, error) {
	cols, err := columns(values)
	if err != nil {
		return nil, err
	}
	for _, col := range cols {
		if s := floats.Sum(col); s != 0 {
			floats.Scale(1/s, col)
		}
	}
	return rows(cols, len(values)), nil
}

// MaxRatio rescales every column relative to its best value: benefit
// entries become v/max, cost entries become min/v. The best entry of each
// column therefore maps to 1.
func MaxRatio(values [][]float64, directions []domain.Direction) ([][]float64, error) {
	cols, err := columns(values)
	if err != nil {
		return nil, err
	}
	if err := checkDirections(len(cols), directions); err != nil {
		return nil, err
	}
	for j, col := range cols {
		if directions[j] == domain.Benefit {
			best := floats.Max(col)
			if best == 0 {
				return nil, fmt.Errorf("column %d: maximum is zero: %w", j, ErrDivisionByZero)
			}
			floats.Scale(1/best, col)
			continue
		}
		best := floats.Min(col)
		for i, v := range col {
			if v == 0 {
				return nil, fmt.Errorf("column %d row %d: %w", j, i, ErrDivisionByZero)
			}
			col[i] = best / v
		}
	}
	return rows(cols, len(values)), nil
}

// Weighted multiplies each column by its weight.
func Weighted(values [][]float64, weights []float64) ([][]float64, error) {
	cols, err := columns(values)
	if err != nil {
		return nil, err
	}
	if len(weights) != len(cols) {
		return nil, fmt.Errorf("%w: %d weights for %d columns",
			domain.ErrDimensionMismatch, len(weights), len(cols))
	}
	for j, col := range cols {
		floats.Scale(weights[j], col)
	}
	return rows(cols, len(values)), nil
}

// columns transposes values into freshly allocated columns, rejecting
// ragged input.
func columns(values [][]float64) ([][]float64, error) {
	if len(values) == 0 {
		return nil, nil
	}
	n := len(values[0])
	cols := make([][]float64, n)
	for j := range cols {
		cols[j] = make([]float64, len(values))
	}
	for i, row := range values {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d columns, expected %d",
				domain.ErrDimensionMismatch, i, len(row), n)
		}
		for j, v := range row {
			cols[j][i] = v
		}
	}
	return cols, nil
}

func rows(cols [][]float64, n int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, len(cols))
		for j, col := range cols {
			out[i][j] = col[i]
		}
	}
	return out
}

func checkDirections(n int, directions []domain.Direction) error {
	if len(directions) != n {
		return fmt.Errorf("%w: %d directions for %d columns",
			domain.ErrDimensionMismatch, len(directions), n)
	}
	return nil
}
