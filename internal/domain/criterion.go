package domain

import (
	"fmt"
	"strings"
)

// Direction tells whether higher or lower raw values of a criterion are
// preferred.
type Direction string

// Supported criterion directions.
const (
	// Benefit criteria prefer higher raw values.
	Benefit Direction = "benefit"

	// Cost criteria prefer lower raw values.
	Cost Direction = "cost"
)

// ParseDirection converts a string into a Direction. Matching is
// case-insensitive; anything other than benefit or cost fails validation.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Benefit:
		return Benefit, nil
	case Cost:
		return Cost, nil
	default:
		return "", newValidationErrorf("criterion", ErrInvalidDirection,
			"direction %q not valid, must be either 'benefit' or 'cost'", s)
	}
}

// Valid reports whether d is one of the enumerated directions.
func (d Direction) Valid() bool { return d == Benefit || d == Cost }

// Criterion is a dimension of evaluation. It is immutable after construction.
type Criterion struct {
	// Name uniquely identifies the criterion within a decision matrix.
	Name string `json:"name" yaml:"name"`

	// Direction is benefit (higher preferred) or cost (lower preferred).
	Direction Direction `json:"direction" yaml:"direction"`

	// Description is optional free text.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// NewCriterion creates a Criterion, rejecting empty names and directions
// other than benefit or cost.
func NewCriterion(name string, direction Direction, description string) (Criterion, error) {
	if strings.TrimSpace(name) == "" {
		return Criterion{}, newValidationErrorf("criterion", ErrInvalidMatrix, "name cannot be empty")
	}
	if !direction.Valid() {
		return Criterion{}, newValidationErrorf("criterion "+name, ErrInvalidDirection,
			"direction %q not valid, must be either 'benefit' or 'cost'", direction)
	}
	return Criterion{Name: name, Direction: direction, Description: description}, nil
}

// MustCriterion is like NewCriterion but panics on invalid input.
// It is intended for literals in tests and examples.
func MustCriterion(name string, direction Direction, description string) Criterion {
	c, err := NewCriterion(name, direction, description)
	if err != nil {
		panic(err)
	}
	return c
}

// IsBenefit reports whether higher values are preferred.
func (c Criterion) IsBenefit() bool { return c.Direction == Benefit }

// IsCost reports whether lower values are preferred.
func (c Criterion) IsCost() bool { return c.Direction == Cost }

func (c Criterion) String() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.Direction)
}
