// Package lbfgs wraps gonum's limited-memory BFGS implementation in the same
// driver surface as the other packages in this module. All algorithmic work is
// delegated to gonum.org/v1/gonum/optimize.
package lbfgs

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/optimize"

	"github.com/armadaproject/optimisation/internal/opterrors"
)

// Problem bundles the caller-supplied loss and gradient evaluators, in the
// slice-based form gonum expects. G stores the gradient at x into grad.
type Problem struct {
	F func(x []float64) float64
	G func(grad, x []float64)
}

type Options struct {
	// Iteration cap. Defaults to 100.
	MaxIterations int
	// Stop once the gradient infinity norm falls below this; gonum's
	// default threshold is used when zero.
	GradientTolerance float64
	// Logger for debug diagnostics. The standard logger is used if nil.
	Logger log.FieldLogger
}

// Result of a quasi-Newton minimisation.
type Result struct {
	X          []float64
	Loss       float64
	Iterations int
	// Termination reason as reported by gonum.
	Status optimize.Status
}

// Minimise runs L-BFGS minimisation of problem starting from x0.
func Minimise(problem Problem, x0 []float64, opts Options) (*Result, error) {
	if problem.F == nil || problem.G == nil {
		return nil, errors.WithStack(&opterrors.ErrInvalidArgument{
			Name:    "problem",
			Value:   problem,
			Message: "F and G evaluators are both required",
		})
	}
	if len(x0) == 0 {
		return nil, errors.WithStack(&opterrors.ErrInvalidArgument{
			Name:    "x0",
			Value:   x0,
			Message: "an initial point is required",
		})
	}
	if opts.MaxIterations == 0 {
		opts.MaxIterations = 100
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}

	p := optimize.Problem{Func: problem.F, Grad: problem.G}
	settings := &optimize.Settings{
		MajorIterations:   opts.MaxIterations,
		GradientThreshold: opts.GradientTolerance,
	}
	rv, err := optimize.Minimize(p, append([]float64(nil), x0...), settings, &optimize.LBFGS{})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := rv.Status.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	logger.WithFields(log.Fields{
		"status":     rv.Status,
		"iterations": rv.Stats.MajorIterations,
		"loss":       rv.F,
	}).Debug("lbfgs finished")

	return &Result{
		X:          rv.X,
		Loss:       rv.F,
		Iterations: rv.Stats.MajorIterations,
		Status:     rv.Status,
	}, nil
}
