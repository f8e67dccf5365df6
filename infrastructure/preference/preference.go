// Package preference implements the six generalized criterion functions
// used by outranking methods. Each function maps a directional performance
// difference d to a preference degree in [0,1].
package preference

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Type identifies a preference function shape.
type Type string

// Supported preference function shapes.
const (
	// Usual is a strict step: any positive difference is full preference.
	Usual Type = "usual"
	// UShape is a step at the indifference threshold q.
	UShape Type = "u_shape"
	// VShape rises linearly from 0 to 1 over (0, p].
	VShape Type = "v_shape"
	// Level yields 0 up to q, 0.5 up to p, and 1 beyond.
	Level Type = "level"
	// Linear rises linearly from 0 to 1 over (q, p].
	Linear Type = "linear"
	// Gaussian rises smoothly as 1 - exp(-d²/p²).
	Gaussian Type = "gaussian"
)

// ErrUnknownType is returned for preference function names that are not
// registered.
var ErrUnknownType = errors.New("unknown preference function")

// Types returns all supported shapes in declaration order.
func Types() []Type {
	return []Type{Usual, UShape, VShape, Level, Linear, Gaussian}
}

// ParseType resolves a preference function name case-insensitively. Dashes
// are accepted in place of underscores.
func ParseType(s string) (Type, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, t := range Types() {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(specStructLevel, Spec{})
	return v
}

// specStructLevel enforces p >= q for the shapes that use both thresholds.
func specStructLevel(sl validator.StructLevel) {
	s := sl.Current().Interface().(Spec)
	if (s.Type == Level || s.Type == Linear) && s.P < s.Q {
		sl.ReportError(s.P, "P", "p", "gtefield", "Q")
	}
}

// Spec is a preference function together with its thresholds.
// Q is the indifference threshold and P the preference threshold.
type Spec struct {
	Type Type    `yaml:"function" json:"function" validate:"required,oneof=usual u_shape v_shape level linear gaussian"`
	Q    float64 `yaml:"q" json:"q" validate:"min=0"`
	P    float64 `yaml:"p" json:"p" validate:"min=0"`
}

// Default returns the usual function with zero thresholds.
func Default() Spec { return Spec{Type: Usual} }

// NewSpec parses the function name and validates the thresholds.
func NewSpec(function string, q, p float64) (Spec, error) {
	t, err := ParseType(function)
	if err != nil {
		return Spec{}, err
	}
	s := Spec{Type: t, Q: q, P: p}
	if err := s.Validate(); err != nil {
		return Spec{}, err
	}
	return s, nil
}

// Validate checks the spec against its struct constraints.
func (s Spec) Validate() error {
	if math.IsNaN(s.Q) || math.IsNaN(s.P) {
		return fmt.Errorf("preference %s: thresholds must be numbers", s.Type)
	}
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("preference %s: %w", s.Type, err)
	}
	return nil
}

// String renders the spec as "type(q=.., p=..)".
func (s Spec) String() string {
	return fmt.Sprintf("%s(q=%g, p=%g)", s.Type, s.Q, s.P)
}

// Evaluate returns the preference degree for difference d. Every shape
// returns 0 when d <= 0. An unknown type yields 0.
func (s Spec) Evaluate(d float64) float64 {
	if d <= 0 {
		return 0
	}

	switch s.Type {
	case Usual:
		return 1
	case UShape:
		if d > s.Q {
			return 1
		}
		return 0
	case VShape:
		if s.P <= 0 {
			return 1
		}
		return math.Min(d/s.P, 1)
	case Level:
		switch {
		case d <= s.Q:
			return 0
		case d <= s.P:
			return 0.5
		default:
			return 1
		}
	case Linear:
		switch {
		case d <= s.Q:
			return 0
		case d <= s.P:
			return (d - s.Q) / (s.P - s.Q)
		default:
			return 1
		}
	case Gaussian:
		// sigma = p/√2, so 2σ² = p².
		if s.P <= 0 {
			return 1
		}
		return 1 - math.Exp(-(d*d)/(s.P*s.P))
	default:
		return 0
	}
}
