package methods

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-mcdm/internal/domain"
)

// newMatrix builds a decision matrix with alternatives named A1..An and
// criteria named C1..Cm.
func newMatrix(t *testing.T, values [][]float64, directions []domain.Direction, weights []float64) *domain.DecisionMatrix {
	t.Helper()

	alts := make([]domain.Alternative, len(values))
	for i := range alts {
		alts[i] = domain.NewAlternative(altName(i), "")
	}
	crits := make([]domain.Criterion, len(directions))
	for j, d := range directions {
		crits[j] = domain.MustCriterion(critName(j), d, "")
	}

	m, err := domain.NewDecisionMatrix(alts, crits, values, weights)
	require.NoError(t, err)
	return m
}

func altName(i int) string  { return "A" + string(rune('1'+i)) }
func critName(j int) string { return "C" + string(rune('1'+j)) }

// supplierMatrix is the three-supplier problem: price (cost), quality
// (benefit), delivery days (cost), service (benefit).
func supplierMatrix(t *testing.T) *domain.DecisionMatrix {
	t.Helper()
	return newMatrix(t,
		[][]float64{
			{100, 8, 20, 6},
			{120, 9, 15, 8},
			{80, 7, 25, 5},
		},
		[]domain.Direction{domain.Cost, domain.Benefit, domain.Cost, domain.Benefit},
		[]float64{0.4, 0.3, 0.2, 0.1},
	)
}

// snapshot captures the mutable-looking parts of a matrix so tests can
// prove an engine left it untouched.
type snapshot struct {
	values  [][]float64
	weights []float64
}

func takeSnapshot(m *domain.DecisionMatrix) snapshot {
	return snapshot{values: m.Values(), weights: m.Weights()}
}

func (s snapshot) requireUnchanged(t *testing.T, m *domain.DecisionMatrix) {
	t.Helper()
	require.Equal(t, s.values, m.Values(), "values must not be modified")
	require.Equal(t, s.weights, m.Weights(), "weights must not be modified")
}
