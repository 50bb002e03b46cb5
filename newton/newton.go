package newton

import (
	"math"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/armadaproject/optimisation/internal/linalg"
	"github.com/armadaproject/optimisation/internal/opterrors"
	"github.com/armadaproject/optimisation/reporter"
)

// Objective evaluates the per-row loss of a batched iterate.
type Objective func(x *mat.Dense) *mat.VecDense

// Gradient evaluates the per-row gradient of a batched iterate; the result
// has the same shape as x.
type Gradient func(x *mat.Dense) *mat.Dense

// Hessian evaluates the per-row Hessian of a batched iterate; hs[i] is the
// Hessian of row i.
type Hessian func(x *mat.Dense) []*mat.SymDense

// Problem bundles the caller-supplied evaluators. How the derivatives are
// produced, e.g., by automatic differentiation, finite differences, or closed
// form, is up to the caller.
type Problem struct {
	F Objective
	G Gradient
	H Hessian
}

type Options struct {
	// Initial Hessian regularisation. Defaults to 1e-7.
	Reg0 float64
	// Iteration cap. Defaults to 100.
	MaxIterations int
	// Number of line-search candidates per iteration. Defaults to 5.
	LineSearchPoints int
	// Take a non-zero step every iteration even if it worsens the loss;
	// used to escape plateaus.
	ForceStep bool
	// Record iterate snapshots in Result.History.
	FullOutput bool
	// Convergence threshold on the improvement indicator. Defaults to 1e-9.
	Tolerance float64
	// Require the improvement indicator of every row to fall below
	// Tolerance, instead of the default batch-wide mean. With the mean, a
	// single slowly-converging row keeps the whole batch iterating and a
	// few fast rows can stop it early.
	PerRowTolerance bool
	// Called with the updated iterate after every iteration; the iterate
	// must not be retained or mutated.
	Callback func(x *mat.Dense)
	// Receives per-iteration diagnostics. Defaults to reporter.Null.
	Reporter reporter.Reporter
	// Logger for debug diagnostics. The standard logger is used if nil.
	Logger log.FieldLogger
}

func (opts Options) withDefaults() Options {
	if opts.Reg0 == 0 {
		opts.Reg0 = 1e-7
	}
	if opts.MaxIterations == 0 {
		opts.MaxIterations = 100
	}
	if opts.LineSearchPoints == 0 {
		opts.LineSearchPoints = 5
	}
	if opts.Tolerance == 0 {
		opts.Tolerance = 1e-9
	}
	if opts.Reporter == nil {
		opts.Reporter = reporter.Null{}
	}
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}
	return opts
}

// Result of a batched minimisation.
type Result struct {
	// Best point observed, per row. Not necessarily the final iterate.
	X *mat.Dense
	// Loss at the best point, per row.
	Loss *mat.VecDense
	// Iterate snapshots across the run, ending with the best point.
	// Populated only when Options.FullOutput is set.
	History []*mat.Dense
	// Number of iterations performed.
	Iterations int
	// Whether the improvement indicator fell below the tolerance. False
	// when the run stopped by exhausting the iteration budget.
	Converged bool
}

// Minimise runs batched Newton-type minimisation of problem with respect to a
// single optimisation variable of shape (batch, size). Each batch row is an
// independent problem instance; all rows are stepped in lockstep.
//
// Every iteration evaluates the gradient and Hessian, obtains a
// positive-definite factorisation of the regularised Hessian, solves
// (H + reg*I) d = -g for the Newton direction per row, and runs a multi-point
// line search along d. The run terminates once the mean of step times
// direction norm falls below the tolerance, or after MaxIterations. Both are
// success paths; the tracked per-row best point is returned either way.
//
// Fatal conditions abort with no partial result: a NaN gradient or Hessian
// (ErrNumericalInstability) and regularisation escalation exhaustion
// (ErrRegularisationExhausted).
func Minimise(problem Problem, opts Options, vars ...*mat.Dense) (*Result, error) {
	if len(vars) != 1 {
		return nil, errors.WithStack(&opterrors.ErrInvalidArgument{
			Name:    "vars",
			Value:   len(vars),
			Message: "exactly one optimisation variable is supported",
		})
	}
	if problem.F == nil || problem.G == nil || problem.H == nil {
		return nil, errors.WithStack(&opterrors.ErrInvalidArgument{
			Name:    "problem",
			Value:   problem,
			Message: "F, G and H evaluators are all required",
		})
	}
	opts = opts.withDefaults()

	x := mat.DenseCopyOf(vars[0])
	m, n := x.Dims()
	f := mat.VecDenseCopyOf(problem.F(x))

	xBest := mat.DenseCopyOf(x)
	fBest := mat.VecDenseCopyOf(f)
	var history []*mat.Dense
	if opts.FullOutput {
		history = append(history, mat.DenseCopyOf(x))
	}
	if opts.Callback != nil {
		opts.Callback(x)
	}

	reg := &Regulariser{Reg0: opts.Reg0, Logger: opts.Logger}
	d := mat.NewDense(m, n, nil)
	negGrad := mat.NewVecDense(n, nil)
	di := mat.NewVecDense(n, nil)

	opts.Reporter.Header()
	defer opts.Reporter.Footer()

	iterations, converged := 0, false
	for it := 0; it < opts.MaxIterations; it++ {
		g := problem.G(x)
		if linalg.HasNaN(g) {
			return nil, errors.WithStack(&opterrors.ErrNumericalInstability{
				Stage: "gradient", Message: "contains NaN values",
			})
		}
		hs := problem.H(x)
		if len(hs) != m {
			return nil, errors.WithStack(&opterrors.ErrInvalidArgument{
				Name:    "problem.H",
				Value:   len(hs),
				Message: "must return one Hessian per batch row",
			})
		}
		for _, h := range hs {
			if linalg.HasNaN(h) {
				return nil, errors.WithStack(&opterrors.ErrNumericalInstability{
					Stage: "hessian", Message: "contains NaN values",
				})
			}
		}

		chols, state, err := reg.Factorise(hs)
		if err != nil {
			return nil, err
		}

		for i := 0; i < m; i++ {
			for j := 0; j < n; j++ {
				negGrad.SetVec(j, -g.At(i, j))
			}
			if err := chols[i].SolveVecTo(di, negGrad); err != nil {
				return nil, errors.WithStack(&opterrors.ErrNumericalInstability{
					Stage: "newton step", Message: err.Error(),
				})
			}
			d.SetRow(i, di.RawVector().Data)
		}

		ls := lineSearch(problem.F, x, d, f, opts.LineSearchPoints, opts.ForceStep)

		for i := 0; i < m; i++ {
			row := x.RawRowView(i)
			floats.AddScaled(row, ls.steps.AtVec(i), d.RawRowView(i))
		}
		if opts.FullOutput {
			history = append(history, mat.DenseCopyOf(x))
		}
		if opts.Callback != nil {
			opts.Callback(x)
		}

		// Per-row best-point tracking; rows are independent.
		for i := 0; i < m; i++ {
			if ls.loss.AtVec(i) < fBest.AtVec(i) {
				fBest.SetVec(i, ls.loss.AtVec(i))
				xBest.SetRow(i, x.RawRowView(i))
			}
		}
		f.CopyVec(ls.loss)
		iterations = it + 1

		improvement := improvementIndicator(ls, opts.PerRowTolerance)
		opts.Reporter.Row(
			it, improvement, mat.Sum(ls.loss)/float64(m),
			state.Escalations, ls.steps.AtVec(0), mat.Norm(g, 2),
		)
		opts.Logger.WithFields(log.Fields{
			"it":          it,
			"improvement": improvement,
			"loss":        mat.Sum(ls.loss) / float64(m),
			"escalations": state.Escalations,
			"reg":         state.Reg,
		}).Debug("sqp iteration")

		if improvement < opts.Tolerance {
			converged = true
			break
		}
	}

	if opts.FullOutput {
		history = append(history, mat.DenseCopyOf(xBest))
	}
	return &Result{
		X:          xBest,
		Loss:       fBest,
		History:    history,
		Iterations: iterations,
		Converged:  converged,
	}, nil
}

// improvementIndicator aggregates per-row step times direction norm into the
// scalar compared against the tolerance: the batch-wide mean by default, or
// the slowest row when perRow is set.
func improvementIndicator(ls lineSearchResult, perRow bool) float64 {
	m := ls.steps.Len()
	rv := 0.0
	for i := 0; i < m; i++ {
		v := ls.steps.AtVec(i) * ls.dirNorms.AtVec(i)
		if perRow {
			rv = math.Max(rv, v)
		} else {
			rv += v / float64(m)
		}
	}
	return rv
}
