// Package minimise implements the minimise command-line application, which
// runs the optimisation drivers in this module on built-in test problems.
package minimise

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/armadaproject/optimisation/gd"
	"github.com/armadaproject/optimisation/internal/opterrors"
	"github.com/armadaproject/optimisation/lbfgs"
	"github.com/armadaproject/optimisation/newton"
	"github.com/armadaproject/optimisation/reporter"
)

const (
	ProblemQuadratic  = "quadratic"
	ProblemRosenbrock = "rosenbrock"
)

// Params are the application parameters, populated from flags and
// optionally a config file.
type Params struct {
	Problem          string
	MaxIterations    int
	Reg0             float64
	LineSearchPoints int
	ForceStep        bool
	Centres          []float64
	Verbose          bool
}

// App is the minimise application object. Methods on App run one driver each
// and print the outcome to Out.
type App struct {
	Params *Params
	Out    io.Writer
}

func New() *App {
	return &App{
		Params: &Params{
			Problem:       ProblemQuadratic,
			MaxIterations: 100,
			Centres:       []float64{1, -3, 5},
		},
		Out: os.Stdout,
	}
}

func (a *App) sqpReporter() reporter.Reporter {
	if !a.Params.Verbose {
		return reporter.Null{}
	}
	return reporter.MustNewTablePrinter(
		a.Out, "",
		[]string{"it", "imprv", "loss", "reg_it", "bet", "||g||_2"},
		[]string{"%05d", "%9.4e", "%9.4e", "%02d", "%9.4e", "%9.4e"},
	)
}

func (a *App) gdReporter() reporter.Reporter {
	if !a.Params.Verbose {
		return reporter.Null{}
	}
	return reporter.MustNewTablePrinter(
		a.Out, "",
		[]string{"it", "imprv", "loss", "||g||_2"},
		[]string{"%05d", "%9.4e", "%9.4e", "%9.4e"},
	)
}

// Sqp minimises the configured problem with the batched Newton driver.
func (a *App) Sqp() error {
	opts := newton.Options{
		Reg0:             a.Params.Reg0,
		MaxIterations:    a.Params.MaxIterations,
		LineSearchPoints: a.Params.LineSearchPoints,
		ForceStep:        a.Params.ForceStep,
		Reporter:         a.sqpReporter(),
	}
	switch a.Params.Problem {
	case ProblemQuadratic:
		if len(a.Params.Centres) == 0 {
			return errors.WithStack(&opterrors.ErrInvalidArgument{
				Name:    "centres",
				Value:   a.Params.Centres,
				Message: "at least one bowl centre is required",
			})
		}
		res, err := newton.Minimise(
			quadraticBowls(a.Params.Centres), opts,
			mat.NewDense(len(a.Params.Centres), 1, nil),
		)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(a.Out, 1, 1, 1, ' ', 0)
		fmt.Fprintf(w, "row\tcentre\tx\tloss\n")
		for i, c := range a.Params.Centres {
			fmt.Fprintf(w, "%d\t%g\t%g\t%g\n", i, c, res.X.At(i, 0), res.Loss.AtVec(i))
		}
		return w.Flush()
	case ProblemRosenbrock:
		res, err := newton.MinimiseVec(rosenbrock(), mat.NewVecDense(2, nil), opts)
		if err != nil {
			return err
		}
		return a.printVec(res.X, res.Loss, res.Iterations)
	default:
		return errors.WithStack(&opterrors.ErrInvalidArgument{
			Name:    "problem",
			Value:   a.Params.Problem,
			Message: fmt.Sprintf("must be one of %q", []string{ProblemQuadratic, ProblemRosenbrock}),
		})
	}
}

// Gd minimises the configured problem with the first-order driver.
func (a *App) Gd() error {
	var problem gd.Problem
	var x0 *mat.VecDense
	switch a.Params.Problem {
	case ProblemQuadratic:
		if len(a.Params.Centres) == 0 {
			return errors.WithStack(&opterrors.ErrInvalidArgument{
				Name:    "centres",
				Value:   a.Params.Centres,
				Message: "at least one bowl centre is required",
			})
		}
		c := a.Params.Centres[0]
		problem = gd.Problem{
			F: func(x *mat.VecDense) float64 {
				v := x.AtVec(0) - c
				return v * v
			},
			G: func(x *mat.VecDense) *mat.VecDense {
				return mat.NewVecDense(1, []float64{2 * (x.AtVec(0) - c)})
			},
		}
		x0 = mat.NewVecDense(1, nil)
	case ProblemRosenbrock:
		problem = rosenbrockGd()
		x0 = mat.NewVecDense(2, nil)
	default:
		return errors.WithStack(&opterrors.ErrInvalidArgument{
			Name:    "problem",
			Value:   a.Params.Problem,
			Message: fmt.Sprintf("must be one of %q", []string{ProblemQuadratic, ProblemRosenbrock}),
		})
	}
	res, err := gd.Minimise(problem, x0, gd.Options{
		MaxIterations: a.Params.MaxIterations,
		Reporter:      a.gdReporter(),
	})
	if err != nil {
		return err
	}
	return a.printVec(res.X, res.Loss, res.Iterations)
}

// Lbfgs minimises the Rosenbrock problem with the quasi-Newton driver.
func (a *App) Lbfgs() error {
	f, g := rosenbrockSlices()
	res, err := lbfgs.Minimise(lbfgs.Problem{F: f, G: g}, []float64{0, 0}, lbfgs.Options{
		MaxIterations: a.Params.MaxIterations,
	})
	if err != nil {
		return err
	}
	return a.printVec(mat.NewVecDense(len(res.X), res.X), res.Loss, res.Iterations)
}

func (a *App) printVec(x *mat.VecDense, loss float64, iterations int) error {
	w := tabwriter.NewWriter(a.Out, 1, 1, 1, ' ', 0)
	fmt.Fprintf(w, "x:\t%v\n", mat.Formatted(x.T()))
	fmt.Fprintf(w, "loss:\t%g\n", loss)
	fmt.Fprintf(w, "iterations:\t%d\n", iterations)
	return w.Flush()
}
