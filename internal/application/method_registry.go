package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/ahrav/go-mcdm/infrastructure/methods"
	"github.com/ahrav/go-mcdm/infrastructure/middleware"
	"github.com/ahrav/go-mcdm/internal/domain"
	"github.com/ahrav/go-mcdm/internal/ports"
)

// Verify interface compliance at compile time.
var _ ports.MethodRegistry = (*DefaultMethodRegistry)(nil)

// maxSuggestionDistance bounds how far a misspelled name may be from a
// registered one before no suggestion is offered.
const maxSuggestionDistance = 3

// DefaultMethodRegistry implements the MethodRegistry interface and acts as
// the orchestrator that executes registered methods by name.
// It keeps the last successful Result per method so callers can inspect
// diagnostics after a batch run.
type DefaultMethodRegistry struct {
	// methods maps folded method names to their wrapped implementations.
	methods map[string]ports.Method
	// factories maps folded method types to their factory functions.
	factories map[string]factoryEntry
	// results holds the last successful Result per folded method name.
	results map[string]*domain.Result
	// middlewares wrap every method on registration.
	middlewares []middleware.Middleware
	logger      *slog.Logger
	// mu protects concurrent access to all maps.
	mu sync.RWMutex
}

type factoryEntry struct {
	methodType string
	factory    ports.MethodFactory
}

// RegistryOption configures a DefaultMethodRegistry.
type RegistryOption func(*DefaultMethodRegistry)

// WithLogger sets the logger used for execution events.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *DefaultMethodRegistry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMiddleware wraps every method registered afterwards with the given
// middlewares. The first middleware is the outermost.
func WithMiddleware(mws ...middleware.Middleware) RegistryOption {
	return func(r *DefaultMethodRegistry) {
		r.middlewares = append(r.middlewares, mws...)
	}
}

// NewMethodRegistry creates a registry with the built-in factories for
// TOPSIS, AHP, PROMETHEE and MARCOS but no registered methods.
func NewMethodRegistry(opts ...RegistryOption) *DefaultMethodRegistry {
	r := &DefaultMethodRegistry{
		methods:   make(map[string]ports.Method),
		factories: make(map[string]factoryEntry),
		results:   make(map[string]*domain.Result),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.addFactory(methods.NameTOPSIS, methods.NewTOPSISFromConfig)
	r.addFactory(methods.NameAHP, methods.NewAHPFromConfig)
	r.addFactory(methods.NamePROMETHEE, methods.NewPROMETHEEFromConfig)
	r.addFactory(methods.NameMARCOS, methods.NewMARCOSFromConfig)

	return r
}

// NewDefaultMethodRegistry creates a registry with TOPSIS, AHP and
// PROMETHEE registered under their canonical names using default
// configuration. MARCOS is reachable through CreateMethod only.
func NewDefaultMethodRegistry(opts ...RegistryOption) (*DefaultMethodRegistry, error) {
	r := NewMethodRegistry(opts...)
	if err := r.RegisterBuiltins(); err != nil {
		return nil, err
	}
	return r, nil
}

// RegisterBuiltins registers TOPSIS, AHP and PROMETHEE under their
// canonical names with default configuration.
func (r *DefaultMethodRegistry) RegisterBuiltins() error {
	for _, name := range []string{methods.NameTOPSIS, methods.NameAHP, methods.NamePROMETHEE} {
		method, err := r.CreateMethod(name, name, nil)
		if err != nil {
			return err
		}
		if err := r.Register(method); err != nil {
			return err
		}
	}
	return nil
}

// fold case-folds a method name for lookups. A Caser is stateful, so each
// call gets its own.
func fold(name string) string { return cases.Fold().String(name) }

// Register adds a method to the registry. It rejects nil methods, empty
// names, names already taken (ignoring case) and methods whose Validate
// fails.
func (r *DefaultMethodRegistry) Register(method ports.Method) error {
	if method == nil {
		return fmt.Errorf("%w: method cannot be nil", domain.ErrInvalidConfiguration)
	}
	name := method.Name()
	if name == "" {
		return fmt.Errorf("%w: method name cannot be empty", domain.ErrInvalidConfiguration)
	}
	if err := method.Validate(); err != nil {
		return fmt.Errorf("method %s failed validation: %w", name, err)
	}

	key := fold(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.methods[key]; exists {
		return fmt.Errorf("%w: method %s already registered", domain.ErrInvalidConfiguration, name)
	}

	var wrapped ports.Method = method
	if len(r.middlewares) > 0 {
		wrapped = middleware.Chain(method, r.middlewares...)
	}
	r.methods[key] = wrapped

	r.logger.Debug("method registered", slog.String("method", name))
	return nil
}

// RegisterFactory registers a factory for a method type, replacing any
// previous factory for the same type.
func (r *DefaultMethodRegistry) RegisterFactory(methodType string, factory ports.MethodFactory) error {
	if methodType == "" {
		return fmt.Errorf("%w: method type cannot be empty", domain.ErrInvalidConfiguration)
	}
	if factory == nil {
		return fmt.Errorf("%w: factory function cannot be nil", domain.ErrInvalidConfiguration)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.addFactory(methodType, factory)
	return nil
}

func (r *DefaultMethodRegistry) addFactory(methodType string, factory ports.MethodFactory) {
	r.factories[fold(methodType)] = factoryEntry{methodType: methodType, factory: factory}
}

// CreateMethod builds a method of the given type without registering it.
func (r *DefaultMethodRegistry) CreateMethod(methodType, id string, params map[string]any) (ports.Method, error) {
	r.mu.RLock()
	entry, exists := r.factories[fold(methodType)]
	types := r.factoryTypesLocked()
	r.mu.RUnlock()

	if !exists {
		return nil, &domain.MethodNotFoundError{Name: methodType, Suggestion: suggest(methodType, types)}
	}
	if id == "" {
		return nil, fmt.Errorf("%w: method ID cannot be empty", domain.ErrInvalidConfiguration)
	}
	if params == nil {
		params = make(map[string]any)
	}

	method, err := entry.factory(id, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create method %s of type %s: %w", id, methodType, err)
	}
	return method, nil
}

// Get returns the registered method with the given name, ignoring case.
// Unknown names yield a *domain.MethodNotFoundError that suggests the
// closest registered name.
func (r *DefaultMethodRegistry) Get(name string) (ports.Method, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if method, ok := r.methods[fold(name)]; ok {
		return method, nil
	}
	return nil, &domain.MethodNotFoundError{Name: name, Suggestion: suggest(name, r.namesLocked())}
}

// Methods returns the registered method names in sorted order.
func (r *DefaultMethodRegistry) Methods() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.namesLocked()
}

// MethodTypes returns the types CreateMethod accepts in sorted order.
func (r *DefaultMethodRegistry) MethodTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.factoryTypesLocked()
}

func (r *DefaultMethodRegistry) namesLocked() []string {
	names := make([]string, 0, len(r.methods))
	for _, m := range r.methods {
		names = append(names, m.Name())
	}
	slices.Sort(names)
	return names
}

func (r *DefaultMethodRegistry) factoryTypesLocked() []string {
	types := make([]string, 0, len(r.factories))
	for _, e := range r.factories {
		types = append(types, e.methodType)
	}
	slices.Sort(types)
	return types
}

// Execute runs the named method on m and remembers the Result on success.
func (r *DefaultMethodRegistry) Execute(ctx context.Context, name string, m *domain.DecisionMatrix) (*domain.Result, error) {
	method, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	r.logger.DebugContext(ctx, "executing method",
		slog.String("method", method.Name()),
		slog.Int("alternatives", numAlternatives(m)),
		slog.Int("criteria", numCriteria(m)),
	)

	result, err := method.Execute(ctx, m)
	if err != nil {
		r.logger.WarnContext(ctx, "method failed",
			slog.String("method", method.Name()),
			slog.String("status", middleware.Status(err)),
			slog.Any("error", err),
		)
		return nil, err
	}

	r.mu.Lock()
	r.results[fold(method.Name())] = result
	r.mu.Unlock()

	r.logger.DebugContext(ctx, "method completed",
		slog.String("method", method.Name()),
		slog.String("best", result.Best().Alternative.Name),
	)
	return result, nil
}

// ExecuteAll runs every registered method on m in name order. Results of
// the methods that succeeded are returned even when others fail; the
// failures are joined into the returned error.
func (r *DefaultMethodRegistry) ExecuteAll(ctx context.Context, m *domain.DecisionMatrix) (map[string]*domain.Result, error) {
	results := make(map[string]*domain.Result)
	var errs []error

	for _, name := range r.Methods() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		result, err := r.Execute(ctx, name, m)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		results[name] = result
	}

	return results, errors.Join(errs...)
}

// LastResult returns the last successful Result produced by the named
// method through this registry.
func (r *DefaultMethodRegistry) LastResult(name string) (*domain.Result, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, ok := r.results[fold(name)]
	return result, ok
}

// suggest returns the candidate closest to name by edit distance, or ""
// when nothing is close enough.
func suggest(name string, candidates []string) string {
	target := fold(name)
	best, bestDist := "", maxSuggestionDistance+1
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(target, fold(c)); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func numAlternatives(m *domain.DecisionMatrix) int {
	if m == nil {
		return 0
	}
	return m.NumAlternatives()
}

func numCriteria(m *domain.DecisionMatrix) int {
	if m == nil {
		return 0
	}
	return m.NumCriteria()
}
