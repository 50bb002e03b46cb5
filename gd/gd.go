// Package gd drives first-order minimisation: it repeatedly evaluates the
// gradient and hands it to an optimisation.Optimiser, with an exponential
// step-size schedule applied between iterations.
package gd

import (
	"math"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/armadaproject/optimisation"
	"github.com/armadaproject/optimisation/adam"
	"github.com/armadaproject/optimisation/internal/opterrors"
	"github.com/armadaproject/optimisation/reporter"
)

// Problem bundles the caller-supplied loss and gradient evaluators.
type Problem struct {
	F func(x *mat.VecDense) float64
	G func(x *mat.VecDense) *mat.VecDense
}

type Options struct {
	// Optimiser applying the per-iteration update. Defaults to Adam with
	// the initial step length.
	Optimiser optimisation.Optimiser
	// Initial and final step lengths of the exponential schedule. Default
	// to 1e-1 and 1e-2 respectively. The schedule is applied only when the
	// optimiser implements optimisation.StepSizeSetter.
	InitialStep float64
	FinalStep   float64
	// Iteration cap. Defaults to 1000.
	MaxIterations int
	// Stop once the distance between successive iterates falls below this.
	// Defaults to 1e-9.
	Tolerance float64
	// Record iterate snapshots in Result.History.
	FullOutput bool
	// Called with the updated iterate after every iteration.
	Callback func(x *mat.VecDense)
	// Receives per-iteration diagnostics. Defaults to reporter.Null.
	Reporter reporter.Reporter
	// Logger for debug diagnostics. The standard logger is used if nil.
	Logger log.FieldLogger
}

func (opts Options) withDefaults() (Options, error) {
	if opts.InitialStep == 0 {
		opts.InitialStep = 1e-1
	}
	if opts.FinalStep == 0 {
		opts.FinalStep = 1e-2
	}
	if opts.InitialStep < 0 {
		return opts, errors.WithStack(&opterrors.ErrInvalidArgument{
			Name:    "InitialStep",
			Value:   opts.InitialStep,
			Message: "outside allowed range (0, Inf)",
		})
	}
	if opts.FinalStep < 0 {
		return opts, errors.WithStack(&opterrors.ErrInvalidArgument{
			Name:    "FinalStep",
			Value:   opts.FinalStep,
			Message: "outside allowed range (0, Inf)",
		})
	}
	if opts.MaxIterations == 0 {
		opts.MaxIterations = 1000
	}
	if opts.Tolerance == 0 {
		opts.Tolerance = 1e-9
	}
	if opts.Optimiser == nil {
		opt, err := adam.NewDefault(opts.InitialStep)
		if err != nil {
			return opts, err
		}
		opts.Optimiser = opt
	}
	if opts.Reporter == nil {
		opts.Reporter = reporter.Null{}
	}
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}
	return opts, nil
}

// Result of a first-order minimisation.
type Result struct {
	// Final iterate.
	X *mat.VecDense
	// Loss at the final iterate.
	Loss float64
	// Iterate snapshots across the run. Populated only when
	// Options.FullOutput is set.
	History []*mat.VecDense
	// Number of iterations performed.
	Iterations int
	// Whether the run stopped because successive iterates stopped moving.
	Converged bool
}

// Minimise runs first-order minimisation of problem starting from x0.
func Minimise(problem Problem, x0 *mat.VecDense, opts Options) (*Result, error) {
	if problem.F == nil || problem.G == nil {
		return nil, errors.WithStack(&opterrors.ErrInvalidArgument{
			Name:    "problem",
			Value:   problem,
			Message: "F and G evaluators are both required",
		})
	}
	if x0 == nil {
		return nil, errors.WithStack(&opterrors.ErrInvalidArgument{
			Name:    "x0",
			Value:   x0,
			Message: "an initial point is required",
		})
	}
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	x := mat.VecDenseCopyOf(x0)
	n := x.Len()
	opts.Optimiser.Extend(n)

	var history []*mat.VecDense
	if opts.FullOutput {
		history = append(history, mat.VecDenseCopyOf(x))
	}
	if opts.Callback != nil {
		opts.Callback(x)
	}

	gamma := math.Pow(opts.FinalStep/opts.InitialStep, 1/float64(opts.MaxIterations))
	eta := opts.InitialStep
	setter, scheduled := opts.Optimiser.(optimisation.StepSizeSetter)
	if scheduled {
		setter.SetEta(eta)
	}

	opts.Reporter.Header()
	defer opts.Reporter.Footer()

	xPrev := mat.NewVecDense(n, nil)
	iterations, converged := 0, false
	for it := 0; it < opts.MaxIterations; it++ {
		xPrev.CopyVec(x)
		g := problem.G(x)
		opts.Optimiser.Update(x, x, g)
		if opts.FullOutput {
			history = append(history, mat.VecDenseCopyOf(x))
		}
		if opts.Callback != nil {
			opts.Callback(x)
		}

		xPrev.SubVec(xPrev, x)
		improvement := mat.Norm(xPrev, 2)
		loss := problem.F(x)
		iterations = it + 1

		opts.Reporter.Row(it, improvement, loss, mat.Norm(g, 2))
		opts.Logger.WithFields(log.Fields{
			"it":          it,
			"improvement": improvement,
			"loss":        loss,
			"eta":         eta,
		}).Debug("gd iteration")

		eta *= gamma
		if scheduled {
			setter.SetEta(eta)
		}
		if improvement < opts.Tolerance {
			converged = true
			break
		}
	}

	return &Result{
		X:          x,
		Loss:       problem.F(x),
		History:    history,
		Iterations: iterations,
		Converged:  converged,
	}, nil
}
