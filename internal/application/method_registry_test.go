package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-mcdm/infrastructure/methods"
	"github.com/ahrav/go-mcdm/internal/domain"
	"github.com/ahrav/go-mcdm/internal/ports"
)

func TestNewDefaultMethodRegistry(t *testing.T) {
	r := newRegistry(t)

	assert.Equal(t, []string{"AHP", "PROMETHEE", "TOPSIS"}, r.Methods())
	assert.Equal(t, []string{"AHP", "MARCOS", "PROMETHEE", "TOPSIS"}, r.MethodTypes())

	_, err := r.Get(methods.NameMARCOS)
	assert.ErrorIs(t, err, domain.ErrMethodNotFound, "MARCOS is available through the factory only")
}

func TestNewMethodRegistry_Empty(t *testing.T) {
	r := NewMethodRegistry()

	assert.Empty(t, r.Methods())
	assert.Len(t, r.MethodTypes(), 4)
}

func TestDefaultMethodRegistry_Get(t *testing.T) {
	r := newRegistry(t)

	t.Run("ignores case", func(t *testing.T) {
		for _, name := range []string{"TOPSIS", "topsis", "Topsis"} {
			m, err := r.Get(name)
			require.NoError(t, err, name)
			assert.Equal(t, methods.NameTOPSIS, m.Name())
		}
	})

	t.Run("suggests the closest name", func(t *testing.T) {
		_, err := r.Get("TOPSYS")
		require.Error(t, err)

		var notFound *domain.MethodNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "TOPSYS", notFound.Name)
		assert.Equal(t, methods.NameTOPSIS, notFound.Suggestion)
		assert.ErrorIs(t, err, domain.ErrMethodNotFound)
		assert.Contains(t, err.Error(), "did you mean 'TOPSIS'")
	})

	t.Run("no suggestion when nothing is close", func(t *testing.T) {
		_, err := r.Get("electre-tri-b")

		var notFound *domain.MethodNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Empty(t, notFound.Suggestion)
	})
}

func TestDefaultMethodRegistry_Register(t *testing.T) {
	tests := []struct {
		name    string
		method  ports.Method
		wantErr string
	}{
		{
			name:    "nil method",
			method:  nil,
			wantErr: "method cannot be nil",
		},
		{
			name:    "empty name",
			method:  &stubMethod{name: ""},
			wantErr: "method name cannot be empty",
		},
		{
			name:    "duplicate name ignoring case",
			method:  &stubMethod{name: "topsis"},
			wantErr: "already registered",
		},
		{
			name:    "failing validation",
			method:  &stubMethod{name: "broken", validateErr: errors.New("missing weights")},
			wantErr: "missing weights",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRegistry(t)

			err := r.Register(tt.method)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Len(t, r.Methods(), 3)
		})
	}

	t.Run("accepts a new method", func(t *testing.T) {
		r := newRegistry(t)
		marcos, err := methods.NewMARCOS(methods.NameMARCOS)
		require.NoError(t, err)

		require.NoError(t, r.Register(marcos))
		assert.Equal(t, []string{"AHP", "MARCOS", "PROMETHEE", "TOPSIS"}, r.Methods())
	})
}

func TestDefaultMethodRegistry_CreateMethod(t *testing.T) {
	r := NewMethodRegistry()

	t.Run("built-in type with parameters", func(t *testing.T) {
		m, err := r.CreateMethod("topsis", "TOPSIS-linear", map[string]any{"normalization": "linear"})
		require.NoError(t, err)

		topsis, ok := m.(*methods.TOPSIS)
		require.True(t, ok)
		assert.Equal(t, "TOPSIS-linear", topsis.Name())
		assert.Equal(t, "linear", string(topsis.Config().Normalization))
	})

	t.Run("MARCOS through the factory", func(t *testing.T) {
		m, err := r.CreateMethod(methods.NameMARCOS, methods.NameMARCOS, nil)
		require.NoError(t, err)
		assert.Equal(t, methods.NameMARCOS, m.Name())
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := r.CreateMethod("PROMETHE", "x", nil)
		var notFound *domain.MethodNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, methods.NamePROMETHEE, notFound.Suggestion)
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := r.CreateMethod(methods.NameAHP, "", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
	})

	t.Run("invalid parameters", func(t *testing.T) {
		_, err := r.CreateMethod(methods.NameAHP, "strict", map[string]any{"consistency_threshold": 2.5})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create method strict of type AHP")
	})
}

func TestDefaultMethodRegistry_RegisterFactory(t *testing.T) {
	r := NewMethodRegistry()

	require.Error(t, r.RegisterFactory("", func(string, map[string]any) (ports.Method, error) { return nil, nil }))
	require.Error(t, r.RegisterFactory("custom", nil))

	var gotID string
	var gotParams map[string]any
	err := r.RegisterFactory("Custom", func(id string, params map[string]any) (ports.Method, error) {
		gotID, gotParams = id, params
		return &stubMethod{name: id}, nil
	})
	require.NoError(t, err)
	assert.Contains(t, r.MethodTypes(), "Custom")

	m, err := r.CreateMethod("custom", "mine", nil)
	require.NoError(t, err)
	assert.Equal(t, "mine", m.Name())
	assert.Equal(t, "mine", gotID)
	assert.NotNil(t, gotParams, "factories always receive a parameter map")
}

func TestDefaultMethodRegistry_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the last result", func(t *testing.T) {
		r := newRegistry(t)
		m := supplierMatrix(t)

		_, ok := r.LastResult(methods.NameTOPSIS)
		assert.False(t, ok)

		result, err := r.Execute(ctx, "topsis", m)
		require.NoError(t, err)
		assert.Equal(t, methods.NameTOPSIS, result.MethodName())
		assert.Equal(t, "Supplier C", result.Best().Alternative.Name)

		last, ok := r.LastResult("TOPSIS")
		require.True(t, ok)
		assert.Same(t, result, last)
	})

	t.Run("unknown method", func(t *testing.T) {
		r := newRegistry(t)

		_, err := r.Execute(ctx, "VIKOR", supplierMatrix(t))
		assert.ErrorIs(t, err, domain.ErrMethodNotFound)
	})

	t.Run("failure keeps the previous result", func(t *testing.T) {
		r := newRegistry(t)

		first, err := r.Execute(ctx, methods.NameAHP, supplierMatrix(t))
		require.NoError(t, err)

		_, err = r.Execute(ctx, methods.NameAHP, plainMatrix(t))
		require.Error(t, err)
		assert.True(t, domain.IsValidationError(err))
		assert.ErrorIs(t, err, domain.ErrMissingInput)

		last, ok := r.LastResult(methods.NameAHP)
		require.True(t, ok)
		assert.Same(t, first, last)
	})

	t.Run("does not mutate the matrix", func(t *testing.T) {
		r := newRegistry(t)
		m := supplierMatrix(t)
		before := m.Values()

		_, err := r.Execute(ctx, methods.NamePROMETHEE, m)
		require.NoError(t, err)
		assert.Equal(t, before, m.Values())
	})
}

func TestDefaultMethodRegistry_ExecuteAll(t *testing.T) {
	ctx := context.Background()

	t.Run("all succeed", func(t *testing.T) {
		r := newRegistry(t)

		results, err := r.ExecuteAll(ctx, supplierMatrix(t))
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "Supplier B", results[methods.NameAHP].Best().Alternative.Name)
		assert.Equal(t, "Supplier B", results[methods.NamePROMETHEE].Best().Alternative.Name)
		assert.Equal(t, "Supplier C", results[methods.NameTOPSIS].Best().Alternative.Name)
	})

	t.Run("partial failure", func(t *testing.T) {
		r := newRegistry(t)

		results, err := r.ExecuteAll(ctx, plainMatrix(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "AHP:")
		assert.ErrorIs(t, err, domain.ErrMissingInput)

		assert.Len(t, results, 2)
		assert.Contains(t, results, methods.NameTOPSIS)
		assert.Contains(t, results, methods.NamePROMETHEE)
	})

	t.Run("canceled context", func(t *testing.T) {
		r := newRegistry(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		results, err := r.ExecuteAll(cctx, supplierMatrix(t))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, results)
	})
}

func TestDefaultMethodRegistry_WithMiddleware(t *testing.T) {
	var calls atomic.Int64
	r := newRegistry(t, WithMiddleware(countingMiddleware(&calls)))

	_, err := r.ExecuteAll(context.Background(), supplierMatrix(t))
	require.NoError(t, err)
	assert.Equal(t, int64(3), calls.Load())

	m, err := r.Get("ahp")
	require.NoError(t, err)
	assert.Equal(t, methods.NameAHP, m.Name(), "middleware must preserve the method name")
}

func TestDefaultMethodRegistry_ConcurrentAccess(t *testing.T) {
	r := newRegistry(t)
	m := supplierMatrix(t)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := r.Execute(context.Background(), methods.NameTOPSIS, m)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			err := r.Register(&stubMethod{name: fmt.Sprintf("stub-%d", i)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, r.Methods(), 23)
}
