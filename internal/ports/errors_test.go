package ports

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigError(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		err     error
		wantMsg string
	}{
		{
			name:    "missing file",
			key:     "problems/supplier.yaml",
			err:     ErrConfigNotFound,
			wantMsg: "config problems/supplier.yaml: configuration not found",
		},
		{
			name:    "indexed key",
			key:     "preferences[2]",
			err:     errors.New("p must be >= q"),
			wantMsg: "config preferences[2]: p must be >= q",
		},
		{
			name:    "no key",
			err:     errors.New("empty document"),
			wantMsg: "config: empty document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfigError(tt.key, tt.err)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Equal(t, tt.key, err.Key)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

// TestIsConfigError verifies that config errors survive fmt.Errorf wrapping.
func TestIsConfigError(t *testing.T) {
	base := NewConfigError("methods.topsis", ErrConfigNotFound)
	wrapped := fmt.Errorf("load problem: %w", base)

	assert.True(t, IsConfigError(wrapped))
	assert.ErrorIs(t, wrapped, ErrConfigNotFound)

	var cfgErr *ConfigError
	assert.ErrorAs(t, wrapped, &cfgErr)
	assert.Equal(t, "methods.topsis", cfgErr.Key)

	assert.False(t, IsConfigError(errors.New("plain")))
	assert.False(t, IsConfigError(nil))
}
