package application

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-mcdm/infrastructure/middleware"
	"github.com/ahrav/go-mcdm/internal/domain"
	"github.com/ahrav/go-mcdm/internal/ports"
	"github.com/ahrav/go-mcdm/internal/testutils"
)

// supplierMatrix returns three suppliers scored on price (cost), quality
// (benefit), delivery days (cost) and service (benefit), with consistent
// AHP judgments and usual preference functions attached.
//
// Expected bests: TOPSIS picks Supplier C, AHP and PROMETHEE pick
// Supplier B.
func supplierMatrix(t *testing.T) *domain.DecisionMatrix {
	t.Helper()

	m, err := domain.NewDecisionMatrix(
		[]domain.Alternative{
			domain.NewAlternative("Supplier A", "incumbent"),
			domain.NewAlternative("Supplier B", ""),
			domain.NewAlternative("Supplier C", ""),
		},
		[]domain.Criterion{
			domain.MustCriterion("Price", domain.Cost, ""),
			domain.MustCriterion("Quality", domain.Benefit, ""),
			domain.MustCriterion("Delivery", domain.Cost, ""),
			domain.MustCriterion("Service", domain.Benefit, ""),
		},
		[][]float64{
			{100, 8, 20, 6},
			{120, 9, 15, 8},
			{80, 7, 25, 5},
		},
		[]float64{4, 3, 2, 1},
	)
	require.NoError(t, err)

	m = domain.WithInput(m, domain.KeyPairwiseCriteria, testutils.ConsistentPairwise(4, 3, 2, 1))
	m = domain.WithInput(m, domain.KeyPairwiseAlternatives, [][][]float64{
		testutils.ConsistentPairwise(2, 1, 3),
		testutils.ConsistentPairwise(2, 3, 1),
		testutils.ConsistentPairwise(2, 3, 1),
		testutils.ConsistentPairwise(2, 3, 1),
	})
	m = domain.WithInput(m, domain.KeyPreferences, []domain.PreferenceSetting{
		{Function: "usual"}, {Function: "usual"}, {Function: "usual"}, {Function: "usual"},
	})
	return m
}

// plainMatrix returns the supplier values without any method inputs, so
// AHP rejects it.
func plainMatrix(t *testing.T) *domain.DecisionMatrix {
	t.Helper()

	m, err := domain.NewDecisionMatrix(
		[]domain.Alternative{{Name: "Supplier A"}, {Name: "Supplier B"}, {Name: "Supplier C"}},
		[]domain.Criterion{
			domain.MustCriterion("Price", domain.Cost, ""),
			domain.MustCriterion("Quality", domain.Benefit, ""),
		},
		[][]float64{{100, 8}, {120, 9}, {80, 7}},
		nil,
	)
	require.NoError(t, err)
	return m
}

func newRegistry(t *testing.T, opts ...RegistryOption) *DefaultMethodRegistry {
	t.Helper()
	r, err := NewDefaultMethodRegistry(opts...)
	require.NoError(t, err)
	return r
}

// stubMethod is a configurable ports.Method for registry tests.
type stubMethod struct {
	name        string
	validateErr error
	execute     func(ctx context.Context, m *domain.DecisionMatrix) (*domain.Result, error)
}

func (s *stubMethod) Name() string { return s.name }

func (s *stubMethod) Validate() error { return s.validateErr }

func (s *stubMethod) Execute(ctx context.Context, m *domain.DecisionMatrix) (*domain.Result, error) {
	if s.execute != nil {
		return s.execute(ctx, m)
	}
	return nil, errors.New("stub: not implemented")
}

// failingMethod returns a method that always fails with a wrapped cause.
func failingMethod(name string, cause error) ports.Method {
	return &stubMethod{
		name: name,
		execute: func(context.Context, *domain.DecisionMatrix) (*domain.Result, error) {
			return nil, domain.NewMethodExecutionError(name, cause)
		},
	}
}

// countingMiddleware counts Execute calls passing through it.
func countingMiddleware(calls *atomic.Int64) middleware.Middleware {
	return func(next ports.Method) ports.Method {
		return &stubMethod{
			name:        next.Name(),
			validateErr: next.Validate(),
			execute: func(ctx context.Context, m *domain.DecisionMatrix) (*domain.Result, error) {
				calls.Add(1)
				return next.Execute(ctx, m)
			},
		}
	}
}
