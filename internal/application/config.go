package application

import (
	"gopkg.in/yaml.v3"
)

// ProblemConfig defines a complete decision problem and serves as the
// primary configuration entry point for the system.
// Use ProblemConfig to describe the alternatives, criteria, weights and
// method-specific inputs of a ranking problem, together with the methods
// that should rank it.
type ProblemConfig struct {
	// Version specifies the configuration schema version using semantic
	// versioning to ensure compatibility across system updates.
	Version string `yaml:"version" validate:"required,semver"`
	// Metadata contains descriptive information about the problem
	// including name, tags, and labels for organization and discovery.
	Metadata Metadata `yaml:"metadata" validate:"required"`
	// Criteria defines the evaluation dimensions in column order.
	Criteria []CriterionConfig `yaml:"criteria" validate:"required,min=1,dive"`
	// Alternatives defines the candidates in row order, each carrying one
	// raw value per criterion.
	Alternatives []AlternativeConfig `yaml:"alternatives" validate:"required,min=1,dive"`
	// Weights holds one non-negative weight per criterion. When omitted,
	// every criterion is weighted equally.
	Weights []float64 `yaml:"weights,omitempty" validate:"omitempty,dive,min=0"`
	// Pairwise carries the comparison matrices consumed by AHP.
	Pairwise *PairwiseConfig `yaml:"pairwise,omitempty"`
	// Preferences selects one preference function per criterion for
	// PROMETHEE, in criterion order.
	Preferences []PreferenceConfig `yaml:"preferences,omitempty" validate:"omitempty,dive"`
	// Methods lists the ranking methods to instantiate. When omitted, the
	// default registry methods are used.
	Methods []MethodConfig `yaml:"methods,omitempty" validate:"omitempty,dive"`
}

// Metadata provides descriptive information about a decision problem
// to support organization, discovery, and reporting.
type Metadata struct {
	// Name is the human-readable identifier for this problem.
	Name string `yaml:"name" validate:"required,min=1,max=255"`
	// Description provides a detailed explanation of the problem.
	Description string `yaml:"description" validate:"max=1000"`
	// Tags are categorical labels that enable filtering and grouping.
	Tags []string `yaml:"tags" validate:"max=20,dive,min=1,max=50"`
	// Labels are arbitrary key-value pairs for integration with external
	// systems and custom categorization.
	Labels map[string]string `yaml:"labels" validate:"max=50"`
}

// CriterionConfig defines one evaluation dimension.
type CriterionConfig struct {
	// Name must be unique across criteria.
	Name string `yaml:"name" validate:"required,min=1,max=100"`
	// Direction is benefit or cost, in any letter case.
	Direction string `yaml:"direction" validate:"required,direction"`
	// Description is optional free text.
	Description string `yaml:"description,omitempty" validate:"max=1000"`
}

// AlternativeConfig defines one candidate and its raw performance values.
type AlternativeConfig struct {
	// Name must be unique across alternatives.
	Name string `yaml:"name" validate:"required,min=1,max=100"`
	// Description is optional free text.
	Description string `yaml:"description,omitempty" validate:"max=1000"`
	// Values holds one raw value per criterion, in criterion order.
	Values []float64 `yaml:"values" validate:"required,min=1"`
}

// PairwiseConfig carries Saaty-scale comparison matrices for AHP.
// Both matrices must be provided together.
type PairwiseConfig struct {
	// Criteria is the square comparison matrix over criteria.
	Criteria [][]float64 `yaml:"criteria" validate:"required,min=1"`
	// Alternatives holds one square comparison matrix over alternatives
	// per criterion, in criterion order.
	Alternatives [][][]float64 `yaml:"alternatives" validate:"required,min=1"`
}

// PreferenceConfig selects the preference function and thresholds used
// for one criterion.
type PreferenceConfig struct {
	// Function is the preference function name such as usual or linear.
	Function string `yaml:"function" validate:"required,preference"`
	// Q is the indifference threshold.
	Q float64 `yaml:"q" validate:"min=0"`
	// P is the preference threshold.
	P float64 `yaml:"p" validate:"min=0"`
}

// MethodConfig defines one ranking method instance.
type MethodConfig struct {
	// Name is the registration name, unique across methods. It defaults
	// to Type when omitted.
	Name string `yaml:"name,omitempty" validate:"omitempty,min=1,max=100"`
	// Type selects the method implementation.
	Type string `yaml:"type" validate:"required,methodtype"`
	// Parameters contains type-specific configuration as flexible YAML
	// that will be validated according to the method type.
	Parameters yaml.Node `yaml:"parameters,omitempty"`
}

// RegistrationName returns the name the method is registered under.
func (mc MethodConfig) RegistrationName() string {
	if mc.Name != "" {
		return mc.Name
	}
	return mc.Type
}
