package minimise

import (
	"gonum.org/v1/gonum/mat"

	"github.com/armadaproject/optimisation/gd"
	"github.com/armadaproject/optimisation/newton"
)

// quadraticBowls is a batch of independent one-dimensional bowls
// f_i(x) = (x - c_i)^2, one per centre.
func quadraticBowls(centres []float64) newton.Problem {
	m := len(centres)
	return newton.Problem{
		F: func(x *mat.Dense) *mat.VecDense {
			rv := mat.NewVecDense(m, nil)
			for i, c := range centres {
				v := x.At(i, 0) - c
				rv.SetVec(i, v*v)
			}
			return rv
		},
		G: func(x *mat.Dense) *mat.Dense {
			rv := mat.NewDense(m, 1, nil)
			for i, c := range centres {
				rv.Set(i, 0, 2*(x.At(i, 0)-c))
			}
			return rv
		},
		H: func(x *mat.Dense) []*mat.SymDense {
			rv := make([]*mat.SymDense, m)
			for i := range centres {
				rv[i] = mat.NewSymDense(1, []float64{2})
			}
			return rv
		},
	}
}

func rosenbrockF(x, y float64) float64 {
	a := 1 - x
	b := y - x*x
	return a*a + 100*b*b
}

func rosenbrockG(x, y float64) (float64, float64) {
	b := y - x*x
	return -2*(1-x) - 400*x*b, 200 * b
}

// rosenbrock is the two-dimensional Rosenbrock function with closed-form
// derivatives, minimised at (1, 1).
func rosenbrock() newton.VecProblem {
	return newton.VecProblem{
		F: func(v *mat.VecDense) float64 {
			return rosenbrockF(v.AtVec(0), v.AtVec(1))
		},
		G: func(v *mat.VecDense) *mat.VecDense {
			gx, gy := rosenbrockG(v.AtVec(0), v.AtVec(1))
			return mat.NewVecDense(2, []float64{gx, gy})
		},
		H: func(v *mat.VecDense) *mat.SymDense {
			x, y := v.AtVec(0), v.AtVec(1)
			return mat.NewSymDense(2, []float64{
				2 - 400*y + 1200*x*x, -400 * x,
				-400 * x, 200,
			})
		},
	}
}

func rosenbrockGd() gd.Problem {
	p := rosenbrock()
	return gd.Problem{F: p.F, G: p.G}
}

func rosenbrockSlices() (func(x []float64) float64, func(grad, x []float64)) {
	f := func(x []float64) float64 {
		return rosenbrockF(x[0], x[1])
	}
	g := func(grad, x []float64) {
		grad[0], grad[1] = rosenbrockG(x[0], x[1])
	}
	return f, g
}
