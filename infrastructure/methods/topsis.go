package methods

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-mcdm/infrastructure/normalization"
	"github.com/ahrav/go-mcdm/internal/domain"
	"github.com/ahrav/go-mcdm/internal/ports"
)

var (
	_ ports.Method    = (*TOPSIS)(nil)
	_ ports.Algorithm = (*TOPSIS)(nil)
)

// TOPSIS ranks alternatives by their relative closeness to the positive
// ideal solution and distance from the negative ideal solution.
//
// Algorithm: columns are normalized (vector normalization by default) and
// multiplied by their weights. For each criterion the positive ideal is the
// best column value and the negative ideal the worst, according to the
// criterion direction. The score of an alternative is
// d⁻ / (d⁺ + d⁻), where d⁺ and d⁻ are its Euclidean distances to the
// positive and negative ideals. Scores lie in [0,1]; an alternative that
// coincides with both ideals scores 0.5.
//
// TOPSIS is stateless after construction and safe for concurrent use.
type TOPSIS struct {
	name   string
	config TOPSISConfig
}

// TOPSISConfig controls the normalization applied before scoring.
type TOPSISConfig struct {
	// Normalization selects the column scaling: "vector" (Euclidean norm)
	// or "linear" (min-max, direction aware).
	Normalization normalization.Scheme `yaml:"normalization" json:"normalization" validate:"required,oneof=vector linear"`
}

// DefaultTOPSISConfig returns the classic configuration using vector
// normalization.
func DefaultTOPSISConfig() TOPSISConfig {
	return TOPSISConfig{Normalization: normalization.SchemeVector}
}

// NewTOPSIS creates a TOPSIS engine with a validated configuration.
func NewTOPSIS(name string, config TOPSISConfig) (*TOPSIS, error) {
	if name == "" {
		return nil, ErrEmptyMethodName
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &TOPSIS{name: name, config: config}, nil
}

// NewTOPSISFromConfig creates a TOPSIS engine from a configuration map.
// This is the boundary adapter for YAML/JSON configuration.
func NewTOPSISFromConfig(id string, params map[string]any) (ports.Method, error) {
	cfg := DefaultTOPSISConfig()
	if err := decodeConfig(params, &cfg); err != nil {
		return nil, err
	}
	return NewTOPSIS(id, cfg)
}

// Name returns the unique identifier for this engine.
func (t *TOPSIS) Name() string { return t.name }

// Config returns the engine configuration.
func (t *TOPSIS) Config() TOPSISConfig { return t.config }

// Validate verifies the engine configuration.
func (t *TOPSIS) Validate() error {
	if err := validate.Struct(t.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// WithParameters returns a new engine with the same name whose
// configuration is decoded from params over the defaults. Unknown keys are
// rejected. The receiver is never modified.
func (t *TOPSIS) WithParameters(params yaml.Node) (*TOPSIS, error) {
	config := DefaultTOPSISConfig()
	if err := decodeParameters(params, &config); err != nil {
		return nil, err
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("parameter validation failed: %w", err)
	}
	return &TOPSIS{name: t.name, config: config}, nil
}

// Execute ranks the alternatives of m.
func (t *TOPSIS) Execute(ctx context.Context, m *domain.DecisionMatrix) (*domain.Result, error) {
	return Execute(ctx, t, m)
}

// ValidateSpecific is a no-op: TOPSIS needs nothing beyond the matrix.
func (t *TOPSIS) ValidateSpecific(*domain.DecisionMatrix) error { return nil }

// Normalize returns the weighted normalized matrix.
func (t *TOPSIS) Normalize(m *domain.DecisionMatrix) (*domain.DecisionMatrix, error) {
	scaled, err := normalization.Apply(t.config.Normalization, m.Values(), m.Directions())
	if err != nil {
		return nil, err
	}
	weighted, err := normalization.Weighted(scaled, m.Weights())
	if err != nil {
		return nil, err
	}
	return m.WithValues(weighted)
}

// Run computes the ideal solutions, the distances to them and the relative
// closeness of every alternative.
func (t *TOPSIS) Run(_ context.Context, m *domain.DecisionMatrix) (domain.Outcome, error) {
	nAlt, nCrit := m.NumAlternatives(), m.NumCriteria()

	// Linear scaling already turns cost columns into benefit columns.
	flipped := t.config.Normalization == normalization.SchemeLinear

	pis := make([]float64, nCrit)
	nis := make([]float64, nCrit)
	for j := range nCrit {
		col := m.Column(j)
		hi, lo := floats.Max(col), floats.Min(col)
		if flipped || m.Criterion(j).IsBenefit() {
			pis[j], nis[j] = hi, lo
		} else {
			pis[j], nis[j] = lo, hi
		}
	}

	values := m.Values()
	distPIS := make([]float64, nAlt)
	distNIS := make([]float64, nAlt)
	scores := make([]float64, nAlt)
	for i, row := range values {
		distPIS[i] = floats.Distance(row, pis, 2)
		distNIS[i] = floats.Distance(row, nis, 2)
		if total := distPIS[i] + distNIS[i]; total > 0 {
			scores[i] = distNIS[i] / total
		} else {
			scores[i] = 0.5
		}
	}

	diag := domain.NewData()
	diag = domain.With(diag, domain.KeyPIS, pis)
	diag = domain.With(diag, domain.KeyNIS, nis)
	diag = domain.With(diag, domain.KeyDistancePIS, distPIS)
	diag = domain.With(diag, domain.KeyDistanceNIS, distNIS)

	return domain.Outcome{
		Scores:      scores,
		Rankings:    domain.Rank(scores),
		Diagnostics: diag,
	}, nil
}
