package application

import (
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-mcdm/infrastructure/methods"
	"github.com/ahrav/go-mcdm/infrastructure/preference"
	"github.com/ahrav/go-mcdm/internal/domain"
)

// ValidateMethodParameters validates the parameters for a built-in method
// type, rejecting unknown keys so configuration typos are not silently
// ignored. Types registered through custom factories validate their own
// parameters when they are created.
// ValidateMethodParameters returns an error if decoding fails or if any
// validation rule is violated.
func ValidateMethodParameters(methodType string, params yaml.Node) error {
	if params.IsZero() {
		return nil
	}

	switch fold(methodType) {
	case fold(methods.NameTOPSIS):
		return validateTOPSISParams(params)
	case fold(methods.NameAHP):
		return validateAHPParams(params)
	case fold(methods.NamePROMETHEE):
		return validatePROMETHEEParams(params)
	case fold(methods.NameMARCOS):
		return validateMARCOSParams(params)
	default:
		return nil
	}
}

// validateTOPSISParams accepts an optional normalization of vector or
// linear.
func validateTOPSISParams(params yaml.Node) error {
	engine, err := methods.NewTOPSIS(methods.NameTOPSIS, methods.DefaultTOPSISConfig())
	if err != nil {
		return err
	}
	_, err = engine.WithParameters(params)
	return err
}

// validateAHPParams accepts an optional consistency_threshold in (0, 1]
// and random_index_fallback above zero.
func validateAHPParams(params yaml.Node) error {
	engine, err := methods.NewAHP(methods.NameAHP, methods.DefaultAHPConfig())
	if err != nil {
		return err
	}
	_, err = engine.WithParameters(params)
	return err
}

// validatePROMETHEEParams accepts an optional default preference function
// applied to criteria without an explicit setting.
func validatePROMETHEEParams(params yaml.Node) error {
	engine, err := methods.NewPROMETHEE(methods.NamePROMETHEE, methods.DefaultPROMETHEEConfig())
	if err != nil {
		return err
	}
	_, err = engine.WithParameters(params)
	return err
}

// validateMARCOSParams rejects any parameter.
func validateMARCOSParams(params yaml.Node) error {
	var paramMap map[string]any
	if err := params.Decode(&paramMap); err != nil {
		return fmt.Errorf("failed to decode parameters: %w", err)
	}
	if len(paramMap) > 0 {
		return fmt.Errorf("%s takes no parameters", methods.NameMARCOS)
	}
	return nil
}

// RegisterProblemValidators registers custom validation functions with
// the validator instance for use in problem configuration validation.
// methodTypes lists the method types the methodtype tag accepts; matching
// ignores case.
// RegisterProblemValidators returns an error if any validator registration
// fails.
func RegisterProblemValidators(v *validator.Validate, methodTypes []string) error {
	if err := v.RegisterValidation("semver", validateSemver); err != nil {
		return fmt.Errorf("failed to register semver validator: %w", err)
	}

	if err := v.RegisterValidation("direction", validateDirection); err != nil {
		return fmt.Errorf("failed to register direction validator: %w", err)
	}

	if err := v.RegisterValidation("preference", validatePreferenceFunction); err != nil {
		return fmt.Errorf("failed to register preference validator: %w", err)
	}

	folded := make([]string, len(methodTypes))
	for i, t := range methodTypes {
		folded[i] = fold(t)
	}
	methodType := func(fl validator.FieldLevel) bool {
		return slices.Contains(folded, fold(fl.Field().String()))
	}
	if err := v.RegisterValidation("methodtype", methodType); err != nil {
		return fmt.Errorf("failed to register methodtype validator: %w", err)
	}

	return nil
}

// validateSemver validates that a string follows semantic versioning
// format (X.Y.Z where X, Y, Z are non-negative integers).
func validateSemver(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	var major, minor, patch int
	n, err := fmt.Sscanf(value, "%d.%d.%d", &major, &minor, &patch)
	return err == nil && n == 3 && major >= 0 && minor >= 0 && patch >= 0
}

// validateDirection accepts benefit or cost in any letter case.
func validateDirection(fl validator.FieldLevel) bool {
	_, err := domain.ParseDirection(fl.Field().String())
	return err == nil
}

// validatePreferenceFunction accepts any known preference function name.
func validatePreferenceFunction(fl validator.FieldLevel) bool {
	_, err := preference.ParseType(fl.Field().String())
	return err == nil
}
