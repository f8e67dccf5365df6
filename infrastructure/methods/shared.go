// Package methods provides the ranking engines that implement the
// ports.Method protocol: TOPSIS, AHP, PROMETHEE and MARCOS.
package methods

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Canonical method names used for registration.
const (
	NameTOPSIS    = "TOPSIS"
	NameAHP       = "AHP"
	NamePROMETHEE = "PROMETHEE"
	NameMARCOS    = "MARCOS"
)

// Common errors returned by the engines.
var (
	// ErrEmptyMethodName is returned when attempting to create a method with an empty name.
	ErrEmptyMethodName = errors.New("method name cannot be empty")

	// ErrNilAlgorithm is returned when a protocol is built without an algorithm.
	ErrNilAlgorithm = errors.New("algorithm cannot be nil")

	// ErrNotSquare is returned when a pairwise comparison matrix is not square
	// or has the wrong size.
	ErrNotSquare = errors.New("pairwise comparison matrix has invalid shape")

	// ErrNonPositiveEntry is returned when a pairwise comparison matrix holds
	// a zero, negative or non-finite judgment.
	ErrNonPositiveEntry = errors.New("pairwise comparison matrix entries must be positive")
)

// Package-level validator instance for configuration validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()

// decodeConfig overlays a raw parameter map onto cfg, which must already
// hold the defaults.
func decodeConfig(params map[string]any, cfg any) error {
	if len(params) == 0 {
		return nil
	}
	data, err := yaml.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// decodeParameters overlays a YAML parameter node onto cfg, failing on
// keys cfg does not declare. An empty node leaves cfg unchanged.
func decodeParameters(params yaml.Node, cfg any) error {
	if params.IsZero() {
		return nil
	}
	data, err := yaml.Marshal(&params)
	if err != nil {
		return fmt.Errorf("failed to encode parameters: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode parameters: %w", err)
	}
	return nil
}
