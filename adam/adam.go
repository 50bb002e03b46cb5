package adam

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/armadaproject/optimisation/internal/linalg"
	"github.com/armadaproject/optimisation/internal/opterrors"
)

const (
	defaultBeta1 = 0.9
	defaultBeta2 = 0.999
	defaultEps   = 1e-8
)

// Adam optimiser with bias correction; see the following paper for details:
// https://arxiv.org/abs/1412.6980
type Adam struct {
	eta   float64
	beta1 float64
	beta2 float64
	eps   float64
	t     int
	m     *mat.VecDense
	v     *mat.VecDense
}

func New(eta, beta1, beta2, eps float64) (*Adam, error) {
	if eta < 0 {
		return nil, errors.WithStack(&opterrors.ErrInvalidArgument{
			Name:    "eta",
			Value:   eta,
			Message: "outside allowed range [0, Inf)",
		})
	}
	if beta1 < 0 || beta1 >= 1 {
		return nil, errors.WithStack(&opterrors.ErrInvalidArgument{
			Name:    "beta1",
			Value:   beta1,
			Message: "outside allowed range [0, 1)",
		})
	}
	if beta2 < 0 || beta2 >= 1 {
		return nil, errors.WithStack(&opterrors.ErrInvalidArgument{
			Name:    "beta2",
			Value:   beta2,
			Message: "outside allowed range [0, 1)",
		})
	}
	if eps <= 0 {
		return nil, errors.WithStack(&opterrors.ErrInvalidArgument{
			Name:    "eps",
			Value:   eps,
			Message: "outside allowed range (0, Inf)",
		})
	}
	return &Adam{eta: eta, beta1: beta1, beta2: beta2, eps: eps}, nil
}

// NewDefault returns an Adam optimiser with the standard
// beta1=0.9, beta2=0.999, eps=1e-8 hyperparameters.
func NewDefault(eta float64) (*Adam, error) {
	return New(eta, defaultBeta1, defaultBeta2, defaultEps)
}

func MustNew(eta, beta1, beta2, eps float64) *Adam {
	opt, err := New(eta, beta1, beta2, eps)
	if err != nil {
		panic(err)
	}
	return opt
}

func (o *Adam) Update(out, p *mat.VecDense, g mat.Vector) *mat.VecDense {
	o.t++
	c1 := 1 - math.Pow(o.beta1, float64(o.t))
	c2 := 1 - math.Pow(o.beta2, float64(o.t))
	for i := 0; i < p.Len(); i++ {
		gi := g.AtVec(i)
		mi := o.beta1*o.m.AtVec(i) + (1-o.beta1)*gi
		vi := o.beta2*o.v.AtVec(i) + (1-o.beta2)*gi*gi
		o.m.SetVec(i, mi)
		o.v.SetVec(i, vi)
		out.SetVec(i, p.AtVec(i)-o.eta*(mi/c1)/(math.Sqrt(vi/c2)+o.eps))
	}
	return out
}

func (o *Adam) Extend(n int) {
	o.m = linalg.ExtendVecDense(o.m, n)
	o.v = linalg.ExtendVecDense(o.v, n)
}

// SetEta changes the step length; used by step-size schedules.
func (o *Adam) SetEta(eta float64) {
	o.eta = eta
}
