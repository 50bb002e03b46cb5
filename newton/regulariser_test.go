package newton

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/armadaproject/optimisation/internal/opterrors"
)

func TestFactorisePositiveDefinite(t *testing.T) {
	h := mat.NewSymDense(2, []float64{4, 1, 1, 3})
	r := &Regulariser{Reg0: 1e-7}

	chols, state, err := r.Factorise([]*mat.SymDense{h})
	require.NoError(t, err)
	require.Len(t, chols, 1)
	assert.Equal(t, 0, state.Escalations)
	// The smallest eigenvalue is positive, so only the initial shift applies.
	assert.Equal(t, 1e-7, state.Reg)
}

func TestFactoriseIndefinite(t *testing.T) {
	// One negative and one positive eigenvalue; the initial shift becomes
	// -2 times the smallest eigenvalue.
	h := mat.NewSymDense(2, []float64{-1, 0, 0, 1})
	r := &Regulariser{Reg0: 1e-7}

	chols, state, err := r.Factorise([]*mat.SymDense{h})
	require.NoError(t, err)
	assert.Greater(t, state.Reg, 0.0)
	assert.InDelta(t, 2.0, state.Reg, 1e-9)

	// The factorisation reconstructs h + reg*I.
	var reconstructed mat.SymDense
	chols[0].ToSym(&reconstructed)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			expected := h.At(i, j)
			if i == j {
				expected += state.Reg
			}
			assert.InDelta(t, expected, reconstructed.At(i, j), 1e-8)
		}
	}
}

func TestFactoriseBatchSharesShift(t *testing.T) {
	// The second row needs a shift; the single batch-wide shift must make
	// both rows factorisable.
	hs := []*mat.SymDense{
		mat.NewSymDense(1, []float64{2}),
		mat.NewSymDense(1, []float64{-3}),
	}
	r := &Regulariser{Reg0: 1e-7}

	chols, state, err := r.Factorise(hs)
	require.NoError(t, err)
	require.Len(t, chols, 2)
	assert.InDelta(t, 6.0, state.Reg, 1e-9)
}

func TestFactoriseExhaustion(t *testing.T) {
	// A Hessian containing NaN values never admits a factorisation, so the
	// escalation loop must terminate with an error after a bounded number
	// of attempts.
	h := mat.NewSymDense(1, []float64{math.NaN()})
	r := &Regulariser{Reg0: 1e-7}

	_, state, err := r.Factorise([]*mat.SymDense{h})
	var exhausted *opterrors.ErrRegularisationExhausted
	require.ErrorAs(t, err, &exhausted)
	assert.GreaterOrEqual(t, exhausted.Reg, regLimit)
	assert.LessOrEqual(t, exhausted.Attempts, 30)
	assert.Equal(t, exhausted.Attempts, state.Escalations)
}

func TestEscalateCountsAttempts(t *testing.T) {
	// Starting from a shift of 1, diag(-3) fails once (-3+1 < 0) and
	// succeeds after a single escalation to 5.
	hs := []*mat.SymDense{mat.NewSymDense(1, []float64{-3})}
	r := &Regulariser{Reg0: 1e-7}

	_, state, err := r.Escalate(hs, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Escalations)
	assert.InDelta(t, 5.0, state.Reg, 1e-12)
}

func TestLowestEigenvalueExactForTinyMatrices(t *testing.T) {
	assert.InDelta(t, -5.0, exactLowestEigenvalue(mat.NewSymDense(1, []float64{-5})), 1e-12)
	assert.InDelta(t, -1.0, exactLowestEigenvalue(mat.NewSymDense(2, []float64{-1, 0, 0, 1})), 1e-12)
}

func TestLowestEigenvalueIterative(t *testing.T) {
	h := mat.NewSymDense(3, []float64{
		-4, 0, 0,
		0, 1, 0,
		0, 0, 10,
	})
	est := lowestEigenvalue(h, eigIterations, eigTolerance)
	assert.InDelta(t, -4.0, est, 0.1)

	// A positive multiple of the identity is its own bound.
	id := mat.NewSymDense(3, []float64{
		2, 0, 0,
		0, 2, 0,
		0, 0, 2,
	})
	assert.InDelta(t, 2.0, lowestEigenvalue(id, eigIterations, eigTolerance), 1e-9)
}
