package preference

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{in: "usual", want: Usual},
		{in: "U_SHAPE", want: UShape},
		{in: "v-shape", want: VShape},
		{in: " level ", want: Level},
		{in: "linear", want: Linear},
		{in: "Gaussian", want: Gaussian},
		{in: "sigmoid", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseType(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnknownType))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		spec    Spec
		wantErr bool
	}{
		{name: "default", spec: Default()},
		{name: "linear ordered thresholds", spec: Spec{Type: Linear, Q: 1, P: 3}},
		{name: "linear equal thresholds", spec: Spec{Type: Linear, Q: 2, P: 2}},
		{name: "linear inverted thresholds", spec: Spec{Type: Linear, Q: 3, P: 1}, wantErr: true},
		{name: "level inverted thresholds", spec: Spec{Type: Level, Q: 3, P: 1}, wantErr: true},
		{name: "u shape ignores p ordering", spec: Spec{Type: UShape, Q: 3, P: 0}},
		{name: "negative q", spec: Spec{Type: UShape, Q: -1}, wantErr: true},
		{name: "negative p", spec: Spec{Type: VShape, P: -1}, wantErr: true},
		{name: "missing type", spec: Spec{}, wantErr: true},
		{name: "unknown type", spec: Spec{Type: "sigmoid"}, wantErr: true},
		{name: "NaN threshold", spec: Spec{Type: Gaussian, P: math.NaN()}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewSpec(t *testing.T) {
	s, err := NewSpec("linear", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, Spec{Type: Linear, Q: 1, P: 2}, s)
	assert.Equal(t, "linear(q=1, p=2)", s.String())

	_, err = NewSpec("linear", 2, 1)
	require.Error(t, err)

	_, err = NewSpec("unknown", 0, 0)
	require.Error(t, err)
}

func TestSpec_Evaluate(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		d    float64
		want float64
	}{
		{name: "usual positive", spec: Spec{Type: Usual}, d: 0.001, want: 1},
		{name: "usual zero", spec: Spec{Type: Usual}, d: 0, want: 0},
		{name: "u shape below q", spec: Spec{Type: UShape, Q: 2}, d: 2, want: 0},
		{name: "u shape above q", spec: Spec{Type: UShape, Q: 2}, d: 2.5, want: 1},
		{name: "v shape ramp", spec: Spec{Type: VShape, P: 4}, d: 1, want: 0.25},
		{name: "v shape saturates", spec: Spec{Type: VShape, P: 4}, d: 8, want: 1},
		{name: "v shape zero p is step", spec: Spec{Type: VShape}, d: 0.1, want: 1},
		{name: "level indifference", spec: Spec{Type: Level, Q: 1, P: 3}, d: 1, want: 0},
		{name: "level weak", spec: Spec{Type: Level, Q: 1, P: 3}, d: 3, want: 0.5},
		{name: "level strict", spec: Spec{Type: Level, Q: 1, P: 3}, d: 3.1, want: 1},
		{name: "linear indifference", spec: Spec{Type: Linear, Q: 1, P: 3}, d: 1, want: 0},
		{name: "linear ramp", spec: Spec{Type: Linear, Q: 1, P: 3}, d: 2, want: 0.5},
		{name: "linear saturates", spec: Spec{Type: Linear, Q: 1, P: 3}, d: 5, want: 1},
		{name: "linear equal thresholds is step at q", spec: Spec{Type: Linear, Q: 2, P: 2}, d: 2.1, want: 1},
		{name: "gaussian at p", spec: Spec{Type: Gaussian, P: 2}, d: 2, want: 1 - math.Exp(-1)},
		{name: "gaussian zero p is step", spec: Spec{Type: Gaussian}, d: 0.5, want: 1},
		{name: "negative difference", spec: Spec{Type: Gaussian, P: 2}, d: -3, want: 0},
		{name: "unknown type", spec: Spec{Type: "sigmoid"}, d: 3, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.spec.Evaluate(tt.d), 1e-12)
		})
	}
}

// TestSpec_EvaluateMonotone checks that every shape is non-decreasing in d
// and bounded by [0,1] for fixed thresholds.
func TestSpec_EvaluateMonotone(t *testing.T) {
	specs := []Spec{
		{Type: Usual},
		{Type: UShape, Q: 1},
		{Type: VShape, P: 2},
		{Type: Level, Q: 0.5, P: 1.5},
		{Type: Linear, Q: 0.5, P: 1.5},
		{Type: Gaussian, P: 1},
	}

	for _, s := range specs {
		t.Run(string(s.Type), func(t *testing.T) {
			prev := s.Evaluate(-5)
			for d := -5.0; d <= 5.0; d += 0.01 {
				v := s.Evaluate(d)
				assert.GreaterOrEqual(t, v, prev, "decreased at d=%v", d)
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 1.0)
				prev = v
			}
		})
	}
}
