package domain

// Alternative is a candidate being evaluated, such as a supplier or design.
// It carries identity only; scores live on a Result.
type Alternative struct {
	// Name uniquely identifies the alternative within a decision matrix.
	Name string `json:"name" yaml:"name"`

	// Description is optional free text.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// NewAlternative creates an Alternative.
func NewAlternative(name, description string) Alternative {
	return Alternative{Name: name, Description: description}
}

func (a Alternative) String() string { return a.Name }
