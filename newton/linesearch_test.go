package newton

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// Objective assigning a fixed loss to each of the five default candidate
// multipliers [0.1, 0.316, 1, 3.16, 10], for a one-row batch with x = 0 and
// d = 1 so that the trial point equals the multiplier.
func candidateLosses(losses [5]float64) Objective {
	return func(x *mat.Dense) *mat.VecDense {
		// Multipliers are log-spaced, so the index is recovered from the
		// base-10 logarithm of the trial point.
		j := int(math.Round(2*math.Log10(x.At(0, 0)))) + 2
		return mat.NewVecDense(1, []float64{losses[j]})
	}
}

func TestLineSearchPrefersBestCandidate(t *testing.T) {
	x := mat.NewDense(1, 1, []float64{0})
	d := mat.NewDense(1, 1, []float64{1})
	current := mat.NewVecDense(1, []float64{2})

	ls := lineSearch(candidateLosses([5]float64{5, 3, 1, 4, 9}), x, d, current, 5, false)
	assert.InDelta(t, 1.0, ls.steps.AtVec(0), 1e-9)
	assert.InDelta(t, 1.0, ls.loss.AtVec(0), 1e-12)
}

func TestLineSearchKeepsIncumbentWhenAllCandidatesWorse(t *testing.T) {
	x := mat.NewDense(1, 1, []float64{0})
	d := mat.NewDense(1, 1, []float64{1})
	current := mat.NewVecDense(1, []float64{0.5})

	ls := lineSearch(candidateLosses([5]float64{5, 3, 1, 4, 9}), x, d, current, 5, false)
	assert.Equal(t, 0.0, ls.steps.AtVec(0))
	assert.Equal(t, 0.5, ls.loss.AtVec(0))
}

func TestLineSearchForceStepIgnoresIncumbent(t *testing.T) {
	x := mat.NewDense(1, 1, []float64{0})
	d := mat.NewDense(1, 1, []float64{1})
	current := mat.NewVecDense(1, []float64{0.5})

	ls := lineSearch(candidateLosses([5]float64{5, 3, 1, 4, 9}), x, d, current, 5, true)
	assert.InDelta(t, 1.0, ls.steps.AtVec(0), 1e-9)
	assert.InDelta(t, 1.0, ls.loss.AtVec(0), 1e-12)
}

func TestLineSearchTreatsNaNAsInfinite(t *testing.T) {
	nan := func(x *mat.Dense) *mat.VecDense {
		return mat.NewVecDense(1, []float64{math.NaN()})
	}
	x := mat.NewDense(1, 1, []float64{0})
	d := mat.NewDense(1, 1, []float64{1})
	current := mat.NewVecDense(1, []float64{7})

	ls := lineSearch(nan, x, d, current, 5, false)
	assert.Equal(t, 0.0, ls.steps.AtVec(0))
	assert.Equal(t, 7.0, ls.loss.AtVec(0))

	// With a forced step the earliest candidate wins the all-NaN tie and
	// the loss guarantee no longer holds.
	ls = lineSearch(nan, x, d, current, 5, true)
	assert.InDelta(t, 0.1, ls.steps.AtVec(0), 1e-9)
	assert.True(t, math.IsInf(ls.loss.AtVec(0), 1))
}

func TestLineSearchSingleCandidateIsUnitStep(t *testing.T) {
	evaluated := []float64{}
	f := func(x *mat.Dense) *mat.VecDense {
		evaluated = append(evaluated, x.At(0, 0))
		return mat.NewVecDense(1, []float64{0})
	}
	x := mat.NewDense(1, 1, []float64{0})
	d := mat.NewDense(1, 1, []float64{2})
	current := mat.NewVecDense(1, []float64{1})

	ls := lineSearch(f, x, d, current, 1, false)
	require.Equal(t, []float64{2}, evaluated)
	assert.Equal(t, 1.0, ls.steps.AtVec(0))
	assert.Equal(t, 0.0, ls.loss.AtVec(0))
}

func TestLineSearchRowsAreIndependent(t *testing.T) {
	// Row 0 improves at every multiplier, row 1 only worsens.
	f := func(x *mat.Dense) *mat.VecDense {
		return mat.NewVecDense(2, []float64{
			-x.At(0, 0),
			math.Abs(x.At(1, 0)),
		})
	}
	x := mat.NewDense(2, 1, []float64{0, 0})
	d := mat.NewDense(2, 1, []float64{1, 1})
	current := mat.NewVecDense(2, []float64{0, 0})

	ls := lineSearch(f, x, d, current, 5, false)
	assert.InDelta(t, 10.0, ls.steps.AtVec(0), 1e-9)
	assert.InDelta(t, -10.0, ls.loss.AtVec(0), 1e-9)
	assert.Equal(t, 0.0, ls.steps.AtVec(1))
	assert.Equal(t, 0.0, ls.loss.AtVec(1))
	assert.Equal(t, 1.0, ls.dirNorms.AtVec(0))
	assert.Equal(t, 1.0, ls.dirNorms.AtVec(1))
}
