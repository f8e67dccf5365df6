package methods

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahrav/go-mcdm/internal/domain"
	"github.com/ahrav/go-mcdm/internal/ports"
)

var _ ports.Method = (*Protocol)(nil)

// Protocol adapts any ports.Algorithm into a ports.Method by running the
// shared four-step sequence around its hooks:
//
//  1. validate the matrix (nil, empty, unweighted) and the algorithm's own
//     inputs, failing with *domain.ValidationError;
//  2. normalize a private copy of the matrix;
//  3. run the algorithm;
//  4. wrap scores, rankings and diagnostics into a *domain.Result.
//
// Any error or panic raised in steps 2 and 3 is returned as a
// *domain.MethodExecutionError carrying the original cause.
type Protocol struct {
	alg ports.Algorithm
}

// NewProtocol wraps alg. It fails with ErrNilAlgorithm when alg is nil.
func NewProtocol(alg ports.Algorithm) (*Protocol, error) {
	if alg == nil {
		return nil, ErrNilAlgorithm
	}
	return &Protocol{alg: alg}, nil
}

// Name returns the wrapped algorithm's name.
func (p *Protocol) Name() string { return p.alg.Name() }

// Validate checks that the algorithm is named and, when it exposes a
// Validate method, that its configuration is valid.
func (p *Protocol) Validate() error {
	if p.alg.Name() == "" {
		return ErrEmptyMethodName
	}
	if v, ok := p.alg.(interface{ Validate() error }); ok {
		return v.Validate()
	}
	return nil
}

// Execute runs the protocol for the wrapped algorithm.
func (p *Protocol) Execute(ctx context.Context, m *domain.DecisionMatrix) (*domain.Result, error) {
	return Execute(ctx, p.alg, m)
}

// Execute runs the validate → normalize → compute → wrap sequence for alg
// over m. The input matrix is never modified: normalization receives a
// deep copy. The returned Result references m, not the normalized copy.
func Execute(ctx context.Context, alg ports.Algorithm, m *domain.DecisionMatrix) (*domain.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", alg.Name(), err)
	}

	if err := validateMatrix(m); err != nil {
		return nil, err
	}
	if err := alg.ValidateSpecific(m); err != nil {
		return nil, asValidationError(alg.Name(), err)
	}

	normalized, err := guard(alg.Name(), func() (*domain.DecisionMatrix, error) {
		return alg.Normalize(m.Copy())
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", alg.Name(), err)
	}

	outcome, err := guard(alg.Name(), func() (domain.Outcome, error) {
		return alg.Run(ctx, normalized)
	})
	if err != nil {
		return nil, err
	}
	if outcome.Rankings == nil {
		outcome.Rankings = domain.Rank(outcome.Scores)
	}

	result, err := domain.NewResult(alg.Name(), m, outcome.Scores, outcome.Rankings, outcome.Diagnostics)
	if err != nil {
		return nil, domain.NewMethodExecutionError(alg.Name(), err)
	}
	return result, nil
}

// validateMatrix applies the checks shared by every method.
func validateMatrix(m *domain.DecisionMatrix) error {
	verr := domain.NewValidationError("decision matrix")
	switch {
	case m == nil:
		verr.Err = domain.ErrInvalidMatrix
		verr.AddError("matrix is nil")
	case m.IsEmpty():
		verr.Err = domain.ErrEmptyMatrix
		verr.AddError("the decision matrix cannot be empty")
	case !m.HasWeights():
		verr.Err = domain.ErrNoWeights
		verr.AddError("the decision matrix must have weights")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// asValidationError keeps validation errors as they are and classifies
// anything else returned by ValidateSpecific as one.
func asValidationError(method string, err error) error {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return err
	}
	return &domain.ValidationError{
		Entity: method + " inputs",
		Errors: []string{err.Error()},
		Err:    err,
	}
}

// guard runs fn, converting returned errors and panics into a
// MethodExecutionError for method. Context errors pass through unchanged.
func guard[T any](method string, fn func() (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			out = zero
			err = domain.NewMethodExecutionError(method, fmt.Errorf("panic: %v", r))
		}
	}()

	out, err = fn()
	if err == nil {
		return out, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return out, fmt.Errorf("%s: %w", method, err)
	}
	if domain.IsExecutionError(err) {
		return out, err
	}
	// Input-shape errors are only reported before normalization. A matrix
	// rejected here was produced by the algorithm itself.
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		err = fmt.Errorf("intermediate matrix invalid: %s", verr.Error())
	}
	return out, domain.NewMethodExecutionError(method, err)
}
