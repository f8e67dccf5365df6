// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"context"

	"github.com/ahrav/go-mcdm/internal/domain"
)

// Method represents one ranking algorithm as seen by its callers.
// Every Method follows the same protocol: validate the decision matrix,
// normalize a private copy, compute scores and rankings, and wrap them into
// a domain.Result. Methods must not modify the matrix they receive and must
// be safe for concurrent use.
type Method interface {
	// Name returns the unique identifier used for registration and lookup.
	Name() string

	// Execute ranks the alternatives of m.
	//
	// Input-shape problems are reported as *domain.ValidationError before any
	// numeric work begins. Failures raised while normalizing or computing are
	// reported as *domain.MethodExecutionError wrapping the cause, so callers
	// can tell the two kinds apart with errors.As.
	//
	// Example:
	//
	//	result, err := method.Execute(ctx, matrix)
	//	if err != nil {
	//	    return fmt.Errorf("method %s failed: %w", method.Name(), err)
	//	}
	Execute(ctx context.Context, m *domain.DecisionMatrix) (*domain.Result, error)

	// Validate checks if the method is properly configured and ready for
	// execution. It is typically called during registration.
	Validate() error
}

// Algorithm holds the three method-specific hooks plugged into the shared
// execution protocol. Implementations carry no per-invocation state:
// intermediate values are returned in domain.Outcome diagnostics.
type Algorithm interface {
	// Name returns the method name reported in results and errors.
	Name() string

	// ValidateSpecific checks method-specific inputs, such as pairwise
	// matrices attached to m. It runs after the shared matrix checks.
	ValidateSpecific(m *domain.DecisionMatrix) error

	// Normalize returns the matrix the algorithm computes on. It receives a
	// private copy and may return it unchanged.
	Normalize(m *domain.DecisionMatrix) (*domain.DecisionMatrix, error)

	// Run computes one score and one rank per alternative.
	Run(ctx context.Context, m *domain.DecisionMatrix) (domain.Outcome, error)
}

// MethodFactory creates a Method from an identifier and a raw parameter
// map, typically decoded from a YAML problem file.
type MethodFactory func(id string, params map[string]any) (Method, error)

// MethodRegistry manages the set of methods available for execution.
type MethodRegistry interface {
	// Register adds a ready-made method. Names must be unique.
	Register(method Method) error

	// RegisterFactory adds a factory for the given method type.
	RegisterFactory(methodType string, factory MethodFactory) error

	// CreateMethod builds a method of the given type without registering it.
	CreateMethod(methodType, id string, params map[string]any) (Method, error)

	// Get returns the registered method with the given name.
	Get(name string) (Method, error)

	// Methods returns the registered method names in sorted order.
	Methods() []string
}
