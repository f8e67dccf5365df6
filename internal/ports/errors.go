package ports

import (
	"errors"
	"fmt"
)

// ErrConfigNotFound indicates that a problem file or a required
// configuration section is missing.
var ErrConfigNotFound = errors.New("configuration not found")

// ConfigError ties a configuration failure to the key that caused it,
// such as "alternatives", "preferences[2]" or "methods.topsis". Keys use
// the YAML field names so users can find the offending entry.
type ConfigError struct {
	// Key locates the failing entry. For a missing file it holds the path.
	Key string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a ConfigError for key.
func NewConfigError(key string, err error) *ConfigError {
	return &ConfigError{Key: key, Err: err}
}

// IsConfigError reports whether err carries a ConfigError anywhere in its
// chain.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}
