package methods

import (
	"context"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-mcdm/internal/domain"
	"github.com/ahrav/go-mcdm/internal/ports"
)

var (
	_ ports.Method    = (*AHP)(nil)
	_ ports.Algorithm = (*AHP)(nil)
)

// randomIndex holds Saaty's random consistency index for matrices of size
// 1 through 10.
var randomIndex = [...]float64{0, 0, 0.58, 0.90, 1.12, 1.24, 1.32, 1.41, 1.45, 1.49}

const (
	// DefaultConsistencyThreshold is the largest accepted consistency ratio.
	DefaultConsistencyThreshold = 0.1
	// DefaultRandomIndexFallback approximates the random index for n > 10.
	DefaultRandomIndexFallback = 1.5
)

// AHP derives criteria weights and per-criterion alternative weights from
// pairwise comparison matrices, rejects inconsistent judgments, and scores
// each alternative by the weighted sum of its local priorities.
//
// The decision matrix must carry domain.KeyPairwiseCriteria (|C|×|C|) and
// domain.KeyPairwiseAlternatives (one |A|×|A| matrix per criterion). Its
// raw values and weights are not used by the computation.
//
// Weights are extracted with the column-normalization approximation to the
// principal eigenvector. Every matrix whose consistency ratio exceeds the
// configured threshold fails the invocation with a *domain.ConsistencyError.
type AHP struct {
	name   string
	config AHPConfig
}

// AHPConfig controls the consistency acceptance rule.
type AHPConfig struct {
	// ConsistencyThreshold is the largest accepted consistency ratio.
	ConsistencyThreshold float64 `yaml:"consistency_threshold" json:"consistency_threshold" validate:"gt=0,lte=1"`

	// RandomIndexFallback is the random index used for matrices larger
	// than 10×10.
	RandomIndexFallback float64 `yaml:"random_index_fallback" json:"random_index_fallback" validate:"gt=0"`
}

// DefaultAHPConfig returns Saaty's conventional 0.1 threshold and a 1.5
// random index beyond the tabulated sizes.
func DefaultAHPConfig() AHPConfig {
	return AHPConfig{
		ConsistencyThreshold: DefaultConsistencyThreshold,
		RandomIndexFallback:  DefaultRandomIndexFallback,
	}
}

// NewAHP creates an AHP engine with a validated configuration.
func NewAHP(name string, config AHPConfig) (*AHP, error) {
	if name == "" {
		return nil, ErrEmptyMethodName
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &AHP{name: name, config: config}, nil
}

// NewAHPFromConfig creates an AHP engine from a configuration map.
func NewAHPFromConfig(id string, params map[string]any) (ports.Method, error) {
	cfg := DefaultAHPConfig()
	if err := decodeConfig(params, &cfg); err != nil {
		return nil, err
	}
	return NewAHP(id, cfg)
}

// Name returns the unique identifier for this engine.
func (a *AHP) Name() string { return a.name }

// Config returns the engine configuration.
func (a *AHP) Config() AHPConfig { return a.config }

// Validate verifies the engine configuration.
func (a *AHP) Validate() error {
	if err := validate.Struct(a.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// WithParameters returns a new engine with the same name whose
// configuration is decoded from params over the defaults. Unknown keys are
// rejected. The receiver is never modified.
func (a *AHP) WithParameters(params yaml.Node) (*AHP, error) {
	config := DefaultAHPConfig()
	if err := decodeParameters(params, &config); err != nil {
		return nil, err
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("parameter validation failed: %w", err)
	}
	return &AHP{name: a.name, config: config}, nil
}

// Execute ranks the alternatives of m.
func (a *AHP) Execute(ctx context.Context, m *domain.DecisionMatrix) (*domain.Result, error) {
	return Execute(ctx, a, m)
}

// ValidateSpecific requires both pairwise comparison inputs to be attached.
func (a *AHP) ValidateSpecific(m *domain.DecisionMatrix) error {
	verr := domain.NewValidationError(a.name + " inputs")
	verr.Err = domain.ErrMissingInput
	if _, ok := domain.Input(m, domain.KeyPairwiseCriteria); !ok {
		verr.AddError("required pairwise comparison matrix for criteria")
	}
	if _, ok := domain.Input(m, domain.KeyPairwiseAlternatives); !ok {
		verr.AddError("required pairwise comparison matrices for alternatives")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// Normalize is the identity: comparison matrices are not rescaled.
func (a *AHP) Normalize(m *domain.DecisionMatrix) (*domain.DecisionMatrix, error) {
	return m, nil
}

// Run derives the weights, checks every matrix for consistency and
// aggregates the local priorities.
func (a *AHP) Run(ctx context.Context, m *domain.DecisionMatrix) (domain.Outcome, error) {
	nAlt, nCrit := m.NumAlternatives(), m.NumCriteria()
	pc, _ := domain.Input(m, domain.KeyPairwiseCriteria)
	pa, _ := domain.Input(m, domain.KeyPairwiseAlternatives)

	if err := checkPairwise("criteria", pc, nCrit); err != nil {
		return domain.Outcome{}, err
	}
	if len(pa) != nCrit {
		return domain.Outcome{}, fmt.Errorf("%w: %d alternative matrices for %d criteria",
			ErrNotSquare, len(pa), nCrit)
	}

	criteriaWeights, err := PriorityVector(pc)
	if err != nil {
		return domain.Outcome{}, err
	}
	criteriaCR := a.consistencyRatio(pc, criteriaWeights)
	if criteriaCR > a.config.ConsistencyThreshold {
		return domain.Outcome{}, &domain.ConsistencyError{
			Matrix:    "criteria",
			Ratio:     criteriaCR,
			Threshold: a.config.ConsistencyThreshold,
		}
	}

	alternativeWeights := make([][]float64, nCrit)
	local := mat.NewDense(nAlt, nCrit, nil)
	cr := criteriaCR
	for j, comparisons := range pa {
		if err := ctx.Err(); err != nil {
			return domain.Outcome{}, err
		}
		label := fmt.Sprintf("criterion %d", j+1)
		if err := checkPairwise(label, comparisons, nAlt); err != nil {
			return domain.Outcome{}, err
		}
		w, err := PriorityVector(comparisons)
		if err != nil {
			return domain.Outcome{}, err
		}
		cr = a.consistencyRatio(comparisons, w)
		if cr > a.config.ConsistencyThreshold {
			return domain.Outcome{}, &domain.ConsistencyError{
				Matrix:    label,
				Ratio:     cr,
				Threshold: a.config.ConsistencyThreshold,
			}
		}
		alternativeWeights[j] = w
		local.SetCol(j, w)
	}

	var product mat.VecDense
	product.MulVec(local, mat.NewVecDense(nCrit, criteriaWeights))
	scores := make([]float64, nAlt)
	for i := range scores {
		scores[i] = product.AtVec(i)
	}

	diag := domain.NewData()
	diag = domain.With(diag, domain.KeyCriteriaWeights, criteriaWeights)
	diag = domain.With(diag, domain.KeyAlternativeWeights, alternativeWeights)
	diag = domain.With(diag, domain.KeyConsistencyRatio, cr)
	diag = domain.With(diag, domain.KeyCriteriaConsistencyRatio, criteriaCR)

	return domain.Outcome{
		Scores:      scores,
		Rankings:    domain.Rank(scores),
		Diagnostics: diag,
	}, nil
}

func (a *AHP) consistencyRatio(matrix [][]float64, weights []float64) float64 {
	return consistencyRatio(matrix, weights, a.config.RandomIndexFallback)
}

// PriorityVector approximates the principal eigenvector of a pairwise
// comparison matrix: every column is normalized to sum to 1 and the rows
// of the result are averaged. The returned weights sum to 1.
func PriorityVector(matrix [][]float64) ([]float64, error) {
	n := len(matrix)
	if err := checkPairwise("matrix", matrix, n); err != nil {
		return nil, err
	}

	colSums := make([]float64, n)
	for _, row := range matrix {
		for j, v := range row {
			colSums[j] += v
		}
	}

	weights := make([]float64, n)
	normalized := make([]float64, n)
	for i, row := range matrix {
		for j, v := range row {
			normalized[j] = v / colSums[j]
		}
		mean, err := stats.Mean(normalized)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		weights[i] = mean
	}
	return weights, nil
}

// ConsistencyRatio returns Saaty's consistency ratio CR = CI/RI of matrix
// given its priority vector, using DefaultRandomIndexFallback beyond the
// tabulated sizes. Matrices of size 1 or 2 are always consistent.
func ConsistencyRatio(matrix [][]float64, weights []float64) float64 {
	return consistencyRatio(matrix, weights, DefaultRandomIndexFallback)
}

func consistencyRatio(matrix [][]float64, weights []float64, fallback float64) float64 {
	n := len(weights)
	if n <= 1 {
		return 0
	}

	a := mat.NewDense(n, n, nil)
	for i, row := range matrix {
		a.SetRow(i, row)
	}
	var weighted mat.VecDense
	weighted.MulVec(a, mat.NewVecDense(n, weights))

	consistency := make([]float64, n)
	for i := range consistency {
		consistency[i] = weighted.AtVec(i) / weights[i]
	}
	lambdaMax, err := stats.Mean(consistency)
	if err != nil {
		return 0
	}

	ci := (lambdaMax - float64(n)) / float64(n-1)
	ri := RandomIndex(n, fallback)
	if ri <= 0 {
		return 0
	}
	return ci / ri
}

// RandomIndex returns the random consistency index for an n×n matrix, or
// fallback when n is beyond the table.
func RandomIndex(n int, fallback float64) float64 {
	if n < 1 {
		return 0
	}
	if n > len(randomIndex) {
		return fallback
	}
	return randomIndex[n-1]
}

// checkPairwise verifies that matrix is n×n with positive finite entries.
func checkPairwise(label string, matrix [][]float64, n int) error {
	if len(matrix) != n {
		return fmt.Errorf("%s: %w: %d rows, expected %d", label, ErrNotSquare, len(matrix), n)
	}
	for i, row := range matrix {
		if len(row) != n {
			return fmt.Errorf("%s: %w: row %d has %d columns, expected %d",
				label, ErrNotSquare, i, len(row), n)
		}
		for j, v := range row {
			if !(v > 0) || math.IsInf(v, 0) {
				return fmt.Errorf("%s: %w: entry [%d][%d] is %v", label, ErrNonPositiveEntry, i, j, v)
			}
		}
	}
	return nil
}
