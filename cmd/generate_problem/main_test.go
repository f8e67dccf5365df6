package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-mcdm/internal/application"
)

func TestRun_GeneratedProblemLoadsAndRanks(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"-alternatives", "6", "-criteria", "3", "-seed", "42"}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	registry := application.NewMethodRegistry()
	loader, err := application.NewProblemLoader(registry)
	require.NoError(t, err)

	problem, err := loader.LoadFromReader(context.Background(), &stdout)
	require.NoError(t, err)
	assert.Equal(t, "generated-6x3", problem.Name)
	assert.Equal(t, 6, problem.Matrix.NumAlternatives())
	assert.Equal(t, 3, problem.Matrix.NumCriteria())
	require.Len(t, problem.Methods, 4)

	for _, method := range problem.Methods {
		require.NoError(t, registry.Register(method))
	}
	comparison, err := registry.Compare(context.Background(), problem.Matrix, problem.MethodNames(), application.CompareOptions{})
	require.NoError(t, err)
	assert.Len(t, comparison.Methods, 4)
	assert.Empty(t, comparison.Failures)
}

func TestRun_Deterministic(t *testing.T) {
	var first, second bytes.Buffer
	require.NoError(t, run([]string{"-seed", "7"}, &first, &bytes.Buffer{}))
	require.NoError(t, run([]string{"-seed", "7"}, &second, &bytes.Buffer{}))
	assert.Equal(t, first.String(), second.String())
}

func TestRun_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "problem.yaml")

	var stdout bytes.Buffer
	require.NoError(t, run([]string{"-seed", "3", "-output", path}, &stdout, &bytes.Buffer{}))
	assert.Contains(t, stdout.String(), "- Path: "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: generated-5x4")
}

func TestRun_InvalidShape(t *testing.T) {
	err := run([]string{"-criteria", "0"}, &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one")
}
