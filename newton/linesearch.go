package newton

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/armadaproject/optimisation/internal/linalg"
)

// lineSearchResult holds the per-row outcome of a line search.
type lineSearchResult struct {
	// Chosen step multiplier per row.
	steps *mat.VecDense
	// Loss achieved at the chosen multiplier per row.
	loss *mat.VecDense
	// Euclidean norm of the search direction per row; used downstream as a
	// convergence signal.
	dirNorms *mat.VecDense
}

// lineSearch chooses a step multiplier along d for every row of the batch.
// Candidate multipliers are log-spaced across [1e-1, 1e1]; the objective is
// evaluated once per candidate for the whole batch and NaN losses are treated
// as +Inf so they are never selected. Unless forceStep is set, a zero-step
// candidate at the current loss is included, so the selected loss never
// exceeds the current one. Ties are broken in favour of the earliest
// candidate.
func lineSearch(f Objective, x, d *mat.Dense, current *mat.VecDense, points int, forceStep bool) lineSearchResult {
	m, n := x.Dims()

	var multipliers []float64
	if points >= 2 {
		multipliers = make([]float64, points)
		floats.LogSpan(multipliers, 1e-1, 1e1)
	} else {
		multipliers = []float64{1}
	}
	if !forceStep {
		multipliers = append([]float64{0}, multipliers...)
	}

	losses := mat.NewDense(m, len(multipliers), nil)
	trial := mat.NewDense(m, n, nil)
	for j, bet := range multipliers {
		if bet == 0 {
			losses.SetCol(j, mat.VecDenseCopyOf(current).RawVector().Data)
			continue
		}
		trial.Scale(bet, d)
		trial.Add(x, trial)
		y := f(trial)
		for i := 0; i < m; i++ {
			v := y.AtVec(i)
			if math.IsNaN(v) {
				v = math.Inf(1)
			}
			losses.Set(i, j, v)
		}
	}

	steps := mat.NewVecDense(m, nil)
	loss := mat.NewVecDense(m, nil)
	for i := 0; i < m; i++ {
		row := losses.RawRowView(i)
		best := 0
		for j := 1; j < len(row); j++ {
			if row[j] < row[best] {
				best = j
			}
		}
		steps.SetVec(i, multipliers[best])
		loss.SetVec(i, row[best])
	}

	return lineSearchResult{steps: steps, loss: loss, dirNorms: linalg.RowNorms(d)}
}
