package methods

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/ahrav/go-mcdm/infrastructure/normalization"
	"github.com/ahrav/go-mcdm/internal/domain"
	"github.com/ahrav/go-mcdm/internal/ports"
)

var (
	_ ports.Method    = (*MARCOS)(nil)
	_ ports.Algorithm = (*MARCOS)(nil)
)

// ErrNonPositiveValue is returned when MARCOS receives a zero or negative
// performance value.
var ErrNonPositiveValue = errors.New("MARCOS requires strictly positive values")

// CompromiseOutcome holds the scores and intermediate vectors of a MARCOS
// computation. Ideal and AntiIdeal are the weighted reference rows;
// UtilityPositive and UtilityNegative are k⁺ and k⁻.
type CompromiseOutcome struct {
	Scores          []float64
	Ideal           []float64
	AntiIdeal       []float64
	UtilityPositive []float64
	UtilityNegative []float64
}

// CompromiseScores runs the MARCOS compromise-boundary algorithm directly
// on raw values.
//
// Columns and the ideal/anti-ideal pair are rescaled relative to the ideal
// value (benefit: v/best, cost: best/v) and weighted. With S the row sums,
// k⁻ = S/ΣAAI and k⁺ = S/ΣAI, f(k⁻) = k⁺/(k⁺+k⁻), f(k⁺) = k⁻/(k⁺+k⁻) and
// the score is f(k) = (k⁺+k⁻) / (1 + (1-f(k⁺))/f(k⁺) + (1-f(k⁻))/f(k⁻)).
// Higher scores are better. Every value must be strictly positive: the
// ratios lose their meaning for negative entries and a zero entry fails
// with ErrNonPositiveValue wrapping normalization.ErrDivisionByZero.
func CompromiseScores(values [][]float64, weights []float64, directions []domain.Direction) (CompromiseOutcome, error) {
	for i, row := range values {
		for j, v := range row {
			switch {
			case v == 0:
				return CompromiseOutcome{}, fmt.Errorf("%w: row %d column %d is zero: %w",
					ErrNonPositiveValue, i, j, normalization.ErrDivisionByZero)
			case v < 0:
				return CompromiseOutcome{}, fmt.Errorf("%w: row %d column %d is %g",
					ErrNonPositiveValue, i, j, v)
			}
		}
	}

	scaled, err := normalization.MaxRatio(values, directions)
	if err != nil {
		return CompromiseOutcome{}, err
	}
	weighted, err := normalization.Weighted(scaled, weights)
	if err != nil {
		return CompromiseOutcome{}, err
	}

	// After rescaling the ideal is 1 in every column and the anti-ideal is
	// min/max for both directions.
	nCrit := len(weights)
	ideal := make([]float64, nCrit)
	antiIdeal := make([]float64, nCrit)
	col := make([]float64, len(values))
	for j := range nCrit {
		for i, row := range values {
			col[i] = row[j]
		}
		ideal[j] = weights[j]
		antiIdeal[j] = floats.Min(col) / floats.Max(col) * weights[j]
	}

	sumIdeal, sumAnti := floats.Sum(ideal), floats.Sum(antiIdeal)
	if sumIdeal == 0 || sumAnti == 0 {
		return CompromiseOutcome{}, fmt.Errorf("reference solutions have zero utility: %w",
			normalization.ErrDivisionByZero)
	}

	n := len(values)
	out := CompromiseOutcome{
		Scores:          make([]float64, n),
		Ideal:           ideal,
		AntiIdeal:       antiIdeal,
		UtilityPositive: make([]float64, n),
		UtilityNegative: make([]float64, n),
	}
	for i, row := range weighted {
		s := floats.Sum(row)
		kNeg, kPos := s/sumAnti, s/sumIdeal
		out.UtilityNegative[i], out.UtilityPositive[i] = kNeg, kPos
		if kNeg+kPos == 0 {
			continue
		}
		fNeg := kPos / (kPos + kNeg)
		fPos := kNeg / (kPos + kNeg)
		out.Scores[i] = (kPos + kNeg) / (1 + (1-fPos)/fPos + (1-fNeg)/fNeg)
	}
	return out, nil
}

// MARCOS adapts CompromiseScores to the method protocol so it can be
// registered alongside the other engines. It is not registered by default.
type MARCOS struct {
	name string
}

// NewMARCOS creates a MARCOS engine.
func NewMARCOS(name string) (*MARCOS, error) {
	if name == "" {
		return nil, ErrEmptyMethodName
	}
	return &MARCOS{name: name}, nil
}

// NewMARCOSFromConfig creates a MARCOS engine. MARCOS takes no parameters.
func NewMARCOSFromConfig(id string, params map[string]any) (ports.Method, error) {
	if len(params) > 0 {
		return nil, fmt.Errorf("MARCOS takes no parameters, got %d", len(params))
	}
	return NewMARCOS(id)
}

// Name returns the unique identifier for this engine.
func (mc *MARCOS) Name() string { return mc.name }

// Validate always succeeds: MARCOS has no configuration.
func (mc *MARCOS) Validate() error { return nil }

// Execute ranks the alternatives of m.
func (mc *MARCOS) Execute(ctx context.Context, m *domain.DecisionMatrix) (*domain.Result, error) {
	return Execute(ctx, mc, m)
}

// ValidateSpecific is a no-op.
func (mc *MARCOS) ValidateSpecific(*domain.DecisionMatrix) error { return nil }

// Normalize is the identity: CompromiseScores rescales internally.
func (mc *MARCOS) Normalize(m *domain.DecisionMatrix) (*domain.DecisionMatrix, error) {
	return m, nil
}

// Run computes the compromise scores of m.
func (mc *MARCOS) Run(_ context.Context, m *domain.DecisionMatrix) (domain.Outcome, error) {
	out, err := CompromiseScores(m.Values(), m.Weights(), m.Directions())
	if err != nil {
		return domain.Outcome{}, err
	}

	diag := domain.NewData()
	diag = domain.With(diag, domain.KeyIdeal, out.Ideal)
	diag = domain.With(diag, domain.KeyAntiIdeal, out.AntiIdeal)
	diag = domain.With(diag, domain.KeyUtilityPositive, out.UtilityPositive)
	diag = domain.With(diag, domain.KeyUtilityNegative, out.UtilityNegative)

	return domain.Outcome{
		Scores:      out.Scores,
		Rankings:    domain.Rank(out.Scores),
		Diagnostics: diag,
	}, nil
}
