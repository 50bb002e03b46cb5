package newton

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/armadaproject/optimisation/internal/opterrors"
)

// VecProblem is the unbatched analogue of Problem: a single problem instance
// over a vector-valued variable.
type VecProblem struct {
	F func(x *mat.VecDense) float64
	G func(x *mat.VecDense) *mat.VecDense
	H func(x *mat.VecDense) *mat.SymDense
}

// VecResult is the unbatched analogue of Result.
type VecResult struct {
	X          *mat.VecDense
	Loss       float64
	History    []*mat.VecDense
	Iterations int
	Converged  bool
}

// MinimiseVec runs Minimise on a single unbatched problem instance. The
// iterate is treated as a batch with one row; Options.Callback, if set, still
// receives the 1-row batched iterate.
func MinimiseVec(problem VecProblem, x0 *mat.VecDense, opts Options) (*VecResult, error) {
	if problem.F == nil || problem.G == nil || problem.H == nil {
		return nil, errors.WithStack(&opterrors.ErrInvalidArgument{
			Name:    "problem",
			Value:   problem,
			Message: "F, G and H evaluators are all required",
		})
	}
	if x0 == nil {
		return nil, errors.WithStack(&opterrors.ErrInvalidArgument{
			Name:    "x0",
			Value:   x0,
			Message: "an initial point is required",
		})
	}
	n := x0.Len()
	asVec := func(x *mat.Dense) *mat.VecDense {
		return mat.NewVecDense(n, x.RawRowView(0))
	}
	batched := Problem{
		F: func(x *mat.Dense) *mat.VecDense {
			return mat.NewVecDense(1, []float64{problem.F(asVec(x))})
		},
		G: func(x *mat.Dense) *mat.Dense {
			g := mat.VecDenseCopyOf(problem.G(asVec(x)))
			return mat.NewDense(1, n, g.RawVector().Data)
		},
		H: func(x *mat.Dense) []*mat.SymDense {
			return []*mat.SymDense{problem.H(asVec(x))}
		},
	}

	res, err := Minimise(batched, opts, mat.NewDense(1, n, mat.VecDenseCopyOf(x0).RawVector().Data))
	if err != nil {
		return nil, err
	}
	rv := &VecResult{
		X:          mat.NewVecDense(n, res.X.RawRowView(0)),
		Loss:       res.Loss.AtVec(0),
		Iterations: res.Iterations,
		Converged:  res.Converged,
	}
	for _, snapshot := range res.History {
		rv.History = append(rv.History, mat.NewVecDense(n, snapshot.RawRowView(0)))
	}
	return rv, nil
}
