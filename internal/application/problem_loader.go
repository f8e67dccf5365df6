package application

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-mcdm/infrastructure/methods"
	"github.com/ahrav/go-mcdm/infrastructure/preference"
	"github.com/ahrav/go-mcdm/internal/domain"
	"github.com/ahrav/go-mcdm/internal/ports"
)

// Problem is a decision problem compiled from a ProblemConfig: the decision
// matrix with its method inputs attached, and the configured methods.
// A Problem is shared between callers that load identical configurations;
// both the matrix and the methods are immutable, so sharing is safe.
type Problem struct {
	// Name is the problem name from the configuration metadata.
	Name string
	// Matrix carries the values, weights and method inputs.
	Matrix *domain.DecisionMatrix
	// Methods holds the configured method instances in configuration
	// order. It is empty when the configuration lists no methods.
	Methods []ports.Method
}

// MethodNames returns the names of the configured methods in order.
func (p *Problem) MethodNames() []string {
	names := make([]string, len(p.Methods))
	for i, m := range p.Methods {
		names[i] = m.Name()
	}
	return names
}

// methodTyper is implemented by registries that can list the method types
// they know how to create.
type methodTyper interface {
	MethodTypes() []string
}

// ProblemLoader provides YAML configuration parsing, validation, and
// caching for decision problems, transforming declarative YAML files into
// ready-to-rank decision matrices.
// Use ProblemLoader to load problems from files or readers while benefiting
// from SHA256-based caching and comprehensive validation.
type ProblemLoader struct {
	// validator performs struct field validation and the custom rules
	// registered by RegisterProblemValidators.
	validator *validator.Validate
	// registry creates the method instances listed in the configuration.
	registry ports.MethodRegistry
	// cache stores compiled problems indexed by SHA256 hash of the
	// normalized configuration.
	cache   map[string]*Problem
	cacheMu sync.RWMutex
	// sf prevents duplicate compilation when multiple goroutines request
	// the same problem simultaneously.
	sf singleflight.Group
}

// NewProblemLoader creates a new problem loader backed by registry. Method
// types are checked against the registry's factories when it can list
// them, and against the built-in types otherwise.
// NewProblemLoader returns an error if validator registration fails.
func NewProblemLoader(registry ports.MethodRegistry) (*ProblemLoader, error) {
	if registry == nil {
		return nil, fmt.Errorf("%w: method registry cannot be nil", domain.ErrInvalidConfiguration)
	}

	types := []string{methods.NameTOPSIS, methods.NameAHP, methods.NamePROMETHEE, methods.NameMARCOS}
	if typer, ok := registry.(methodTyper); ok {
		types = typer.MethodTypes()
	}

	v := validator.New()
	if err := RegisterProblemValidators(v, types); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	return &ProblemLoader{
		validator: v,
		registry:  registry,
		cache:     make(map[string]*Problem),
	}, nil
}

// load parses, validates and compiles data, deduplicating concurrent
// compilation of identical configurations.
func (pl *ProblemLoader) load(ctx context.Context, data []byte) (*Problem, error) {
	config, err := pl.parseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Hash the normalized config so formatting differences share a cache entry.
	hash, err := pl.calculateConfigHash(config)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate hash: %w", err)
	}

	v, err, _ := pl.sf.Do(hash, func() (any, error) {
		if problem, ok := pl.getCachedProblem(hash); ok {
			return problem, nil
		}

		if err := pl.validateConfig(config); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}

		problem, err := pl.buildProblem(ctx, config)
		if err != nil {
			return nil, fmt.Errorf("failed to build problem: %w", err)
		}

		pl.cacheProblem(hash, problem)
		return problem, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Problem), nil
}

// LoadFromFile loads and compiles a decision problem from a YAML file.
// A missing file is reported as ports.ErrConfigNotFound.
func (pl *ProblemLoader) LoadFromFile(ctx context.Context, path string) (*Problem, error) {
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ports.NewConfigError(cleanPath, ports.ErrConfigNotFound)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return pl.load(ctx, data)
}

// LoadFromReader loads and compiles a decision problem from an io.Reader.
func (pl *ProblemLoader) LoadFromReader(ctx context.Context, r io.Reader) (*Problem, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	return pl.load(ctx, data)
}

// parseYAML decodes data into a ProblemConfig in strict mode so unknown
// fields are rejected instead of silently ignored.
func (pl *ProblemLoader) parseYAML(data []byte) (*ProblemConfig, error) {
	var config ProblemConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}
	return &config, nil
}

// validateConfig runs struct tag validation followed by the semantic rules
// that relate fields to each other.
func (pl *ProblemLoader) validateConfig(config *ProblemConfig) error {
	if err := pl.validator.Struct(config); err != nil {
		return fmt.Errorf("struct validation failed: %w", err)
	}

	if err := pl.validateSemantics(config); err != nil {
		return fmt.Errorf("semantic validation failed: %w", err)
	}

	return nil
}

func invalidConfig(key, format string, args ...any) error {
	return ports.NewConfigError(key, fmt.Errorf("%w: %s", domain.ErrInvalidConfiguration, fmt.Sprintf(format, args...)))
}

// validateSemantics checks uniqueness of names and that every per-criterion
// list matches the number of criteria.
func (pl *ProblemLoader) validateSemantics(config *ProblemConfig) error {
	nCrit := len(config.Criteria)
	nAlt := len(config.Alternatives)

	criteria := make(map[string]struct{}, nCrit)
	for _, c := range config.Criteria {
		if _, dup := criteria[c.Name]; dup {
			return invalidConfig("criteria", "duplicate criterion name %q", c.Name)
		}
		criteria[c.Name] = struct{}{}
	}

	alternatives := make(map[string]struct{}, nAlt)
	for _, a := range config.Alternatives {
		if _, dup := alternatives[a.Name]; dup {
			return invalidConfig("alternatives", "duplicate alternative name %q", a.Name)
		}
		alternatives[a.Name] = struct{}{}

		if len(a.Values) != nCrit {
			return invalidConfig("alternatives", "alternative %q has %d values, expected %d",
				a.Name, len(a.Values), nCrit)
		}
	}

	if len(config.Weights) > 0 && len(config.Weights) != nCrit {
		return invalidConfig("weights", "got %d weights, expected %d", len(config.Weights), nCrit)
	}

	if pw := config.Pairwise; pw != nil {
		if err := checkSquare("pairwise.criteria", pw.Criteria, nCrit); err != nil {
			return err
		}
		if len(pw.Alternatives) != nCrit {
			return invalidConfig("pairwise.alternatives", "got %d matrices, expected %d (one per criterion)",
				len(pw.Alternatives), nCrit)
		}
		for j, matrix := range pw.Alternatives {
			if err := checkSquare(fmt.Sprintf("pairwise.alternatives[%d]", j), matrix, nAlt); err != nil {
				return err
			}
		}
	}

	if len(config.Preferences) > 0 {
		if len(config.Preferences) != nCrit {
			return invalidConfig("preferences", "got %d settings, expected %d",
				len(config.Preferences), nCrit)
		}
		for j, p := range config.Preferences {
			if _, err := preference.NewSpec(p.Function, p.Q, p.P); err != nil {
				return ports.NewConfigError(fmt.Sprintf("preferences[%d]", j), err)
			}
		}
	}

	names := make(map[string]struct{}, len(config.Methods))
	for _, mc := range config.Methods {
		name := mc.RegistrationName()
		key := fold(name)
		if _, dup := names[key]; dup {
			return invalidConfig("methods", "duplicate method name %q", name)
		}
		names[key] = struct{}{}

		if err := ValidateMethodParameters(mc.Type, mc.Parameters); err != nil {
			return ports.NewConfigError("methods."+name, fmt.Errorf("parameter validation failed: %w", err))
		}
	}

	return nil
}

func checkSquare(key string, matrix [][]float64, n int) error {
	if len(matrix) != n {
		return invalidConfig(key, "matrix has %d rows, expected %d", len(matrix), n)
	}
	for i, row := range matrix {
		if len(row) != n {
			return invalidConfig(key, "row %d has %d columns, expected %d", i, len(row), n)
		}
	}
	return nil
}

// buildProblem compiles a validated configuration into a Problem.
func (pl *ProblemLoader) buildProblem(ctx context.Context, config *ProblemConfig) (*Problem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	criteria := make([]domain.Criterion, len(config.Criteria))
	for j, cc := range config.Criteria {
		dir, err := domain.ParseDirection(cc.Direction)
		if err != nil {
			return nil, err
		}
		c, err := domain.NewCriterion(cc.Name, dir, cc.Description)
		if err != nil {
			return nil, err
		}
		criteria[j] = c
	}

	alternatives := make([]domain.Alternative, len(config.Alternatives))
	values := make([][]float64, len(config.Alternatives))
	for i, ac := range config.Alternatives {
		alternatives[i] = domain.NewAlternative(ac.Name, ac.Description)
		values[i] = ac.Values
	}

	var weights []float64
	if len(config.Weights) > 0 {
		weights = config.Weights
	}

	matrix, err := domain.NewDecisionMatrix(alternatives, criteria, values, weights)
	if err != nil {
		return nil, err
	}

	if pw := config.Pairwise; pw != nil {
		matrix = domain.WithInput(matrix, domain.KeyPairwiseCriteria, pw.Criteria)
		matrix = domain.WithInput(matrix, domain.KeyPairwiseAlternatives, pw.Alternatives)
	}

	if len(config.Preferences) > 0 {
		settings := make([]domain.PreferenceSetting, len(config.Preferences))
		for j, p := range config.Preferences {
			settings[j] = domain.PreferenceSetting{Function: p.Function, Q: p.Q, P: p.P}
		}
		matrix = domain.WithInput(matrix, domain.KeyPreferences, settings)
	}

	problem := &Problem{
		Name:    config.Metadata.Name,
		Matrix:  matrix,
		Methods: make([]ports.Method, 0, len(config.Methods)),
	}
	for _, mc := range config.Methods {
		method, err := pl.createMethod(mc)
		if err != nil {
			return nil, fmt.Errorf("failed to create method %s: %w", mc.RegistrationName(), err)
		}
		problem.Methods = append(problem.Methods, method)
	}

	return problem, nil
}

// createMethod decodes the method parameters and delegates creation to the
// registry.
func (pl *ProblemLoader) createMethod(mc MethodConfig) (ports.Method, error) {
	var params map[string]any
	if !mc.Parameters.IsZero() {
		if err := mc.Parameters.Decode(&params); err != nil {
			return nil, fmt.Errorf("failed to decode parameters: %w", err)
		}
	}

	return pl.registry.CreateMethod(mc.Type, mc.RegistrationName(), params)
}

// calculateConfigHash computes the SHA256 hash of a normalized
// ProblemConfig so semantically identical files share a cache entry.
func (pl *ProblemLoader) calculateConfigHash(config *ProblemConfig) (string, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(config); err != nil {
		return "", fmt.Errorf("failed to encode config for hashing: %w", err)
	}

	hash := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(hash[:]), nil
}

func (pl *ProblemLoader) getCachedProblem(hash string) (*Problem, bool) {
	pl.cacheMu.RLock()
	defer pl.cacheMu.RUnlock()

	problem, ok := pl.cache[hash]
	return problem, ok
}

func (pl *ProblemLoader) cacheProblem(hash string, problem *Problem) {
	pl.cacheMu.Lock()
	defer pl.cacheMu.Unlock()

	pl.cache[hash] = problem
}

// ClearCache removes all cached problems, forcing subsequent loads to
// recompile from source.
func (pl *ProblemLoader) ClearCache() {
	pl.cacheMu.Lock()
	defer pl.cacheMu.Unlock()

	pl.cache = make(map[string]*Problem)
}
