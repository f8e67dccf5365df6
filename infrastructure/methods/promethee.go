package methods

import (
	"context"
	"fmt"

	"github.com/montanaflynn/stats"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-mcdm/infrastructure/preference"
	"github.com/ahrav/go-mcdm/internal/domain"
	"github.com/ahrav/go-mcdm/internal/ports"
)

var (
	_ ports.Method    = (*PROMETHEE)(nil)
	_ ports.Algorithm = (*PROMETHEE)(nil)
)

// PROMETHEE ranks alternatives by their net outranking flow (PROMETHEE II).
//
// For every ordered pair (i, j) of distinct alternatives and every
// criterion k, the directional difference d (benefit: v[i,k]-v[j,k]; cost:
// the negation) is mapped through the criterion's preference function, and
// the weighted sum over criteria gives the preference of i over j. The
// outflow of i is the row sum of the preference matrix divided by n-1, the
// inflow the column sum divided by n-1, and the score is outflow - inflow.
//
// Preference functions come from domain.KeyPreferences when it is attached
// to the matrix; otherwise every criterion uses the configured default.
type PROMETHEE struct {
	name   string
	config PROMETHEEConfig
}

// PROMETHEEConfig holds the preference function applied to criteria that
// have no explicit setting.
type PROMETHEEConfig struct {
	Default preference.Spec `yaml:"default" json:"default"`
}

// DefaultPROMETHEEConfig returns a configuration whose default is the usual
// (strict step) function with zero thresholds.
func DefaultPROMETHEEConfig() PROMETHEEConfig {
	return PROMETHEEConfig{Default: preference.Default()}
}

// NewPROMETHEE creates a PROMETHEE engine with a validated configuration.
func NewPROMETHEE(name string, config PROMETHEEConfig) (*PROMETHEE, error) {
	if name == "" {
		return nil, ErrEmptyMethodName
	}
	if err := config.Default.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &PROMETHEE{name: name, config: config}, nil
}

// NewPROMETHEEFromConfig creates a PROMETHEE engine from a configuration
// map such as {"default": {"function": "linear", "q": 1, "p": 3}}.
func NewPROMETHEEFromConfig(id string, params map[string]any) (ports.Method, error) {
	cfg := DefaultPROMETHEEConfig()
	if err := decodeConfig(params, &cfg); err != nil {
		return nil, err
	}
	if cfg.Default.Type != "" {
		t, err := preference.ParseType(string(cfg.Default.Type))
		if err != nil {
			return nil, err
		}
		cfg.Default.Type = t
	}
	return NewPROMETHEE(id, cfg)
}

// Name returns the unique identifier for this engine.
func (p *PROMETHEE) Name() string { return p.name }

// Config returns the engine configuration.
func (p *PROMETHEE) Config() PROMETHEEConfig { return p.config }

// Validate verifies the engine configuration.
func (p *PROMETHEE) Validate() error {
	if err := p.config.Default.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// WithParameters returns a new engine with the same name whose
// configuration is decoded from params over the defaults. Unknown keys are
// rejected and the function name is matched like ParseType does. The
// receiver is never modified.
func (p *PROMETHEE) WithParameters(params yaml.Node) (*PROMETHEE, error) {
	config := DefaultPROMETHEEConfig()
	if err := decodeParameters(params, &config); err != nil {
		return nil, err
	}
	t, err := preference.ParseType(string(config.Default.Type))
	if err != nil {
		return nil, err
	}
	config.Default.Type = t
	if err := config.Default.Validate(); err != nil {
		return nil, fmt.Errorf("parameter validation failed: %w", err)
	}
	return &PROMETHEE{name: p.name, config: config}, nil
}

// Execute ranks the alternatives of m.
func (p *PROMETHEE) Execute(ctx context.Context, m *domain.DecisionMatrix) (*domain.Result, error) {
	return Execute(ctx, p, m)
}

// ValidateSpecific checks that attached preference settings cover every
// criterion exactly once.
func (p *PROMETHEE) ValidateSpecific(m *domain.DecisionMatrix) error {
	settings, ok := domain.Input(m, domain.KeyPreferences)
	if !ok {
		return nil
	}
	if len(settings) != m.NumCriteria() {
		verr := domain.NewValidationError(p.name + " inputs")
		verr.Err = domain.ErrDimensionMismatch
		verr.AddError(fmt.Sprintf("got %d preference settings for %d criteria",
			len(settings), m.NumCriteria()))
		return verr
	}
	return nil
}

// Normalize is the identity: raw values are compared pairwise.
func (p *PROMETHEE) Normalize(m *domain.DecisionMatrix) (*domain.DecisionMatrix, error) {
	return m, nil
}

// Run builds the preference matrix and derives the flows.
func (p *PROMETHEE) Run(ctx context.Context, m *domain.DecisionMatrix) (domain.Outcome, error) {
	specs, err := p.specs(m)
	if err != nil {
		return domain.Outcome{}, err
	}

	n := m.NumAlternatives()
	values := m.Values()
	weights := m.Weights()
	directions := m.Directions()

	prefs := make([][]float64, n)
	for i := range prefs {
		prefs[i] = make([]float64, n)
	}
	for i := range n {
		if err := ctx.Err(); err != nil {
			return domain.Outcome{}, err
		}
		for j := range n {
			if i == j {
				continue
			}
			var pi float64
			for k, spec := range specs {
				d := values[i][k] - values[j][k]
				if directions[k] == domain.Cost {
					d = -d
				}
				pi += weights[k] * spec.Evaluate(d)
			}
			prefs[i][j] = pi
		}
	}

	outflow := make([]float64, n)
	inflow := make([]float64, n)
	net := make([]float64, n)
	column := make([]float64, n)
	for i := range n {
		for j := range n {
			column[j] = prefs[j][i]
		}
		out, err := stats.Sum(prefs[i])
		if err != nil {
			return domain.Outcome{}, err
		}
		in, err := stats.Sum(column)
		if err != nil {
			return domain.Outcome{}, err
		}
		if n > 1 {
			outflow[i] = out / float64(n-1)
			inflow[i] = in / float64(n-1)
		}
		net[i] = outflow[i] - inflow[i]
	}

	diag := domain.NewData()
	diag = domain.With(diag, domain.KeyPreferenceMatrix, prefs)
	diag = domain.With(diag, domain.KeyOutflow, outflow)
	diag = domain.With(diag, domain.KeyInflow, inflow)

	return domain.Outcome{
		Scores:      net,
		Rankings:    domain.Rank(net),
		Diagnostics: diag,
	}, nil
}

// specs resolves one preference function per criterion.
func (p *PROMETHEE) specs(m *domain.DecisionMatrix) ([]preference.Spec, error) {
	specs := make([]preference.Spec, m.NumCriteria())
	settings, ok := domain.Input(m, domain.KeyPreferences)
	if !ok {
		for k := range specs {
			specs[k] = p.config.Default
		}
		return specs, nil
	}
	for k, s := range settings {
		spec, err := preference.NewSpec(s.Function, s.Q, s.P)
		if err != nil {
			return nil, fmt.Errorf("criterion %q: %w", m.Criterion(k).Name, err)
		}
		specs[k] = spec
	}
	return specs, nil
}
