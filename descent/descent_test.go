package descent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"

	"github.com/armadaproject/optimisation/internal/opterrors"
	optslices "github.com/armadaproject/optimisation/internal/slices"
)

func TestNew(t *testing.T) {
	_, err := New(-1.0)
	var invalid *opterrors.ErrInvalidArgument
	assert.ErrorAs(t, err, &invalid)
	assert.Equal(t, "eta", invalid.Name)

	opt, err := New(0.5)
	assert.NoError(t, err)
	assert.NotNil(t, opt)
}

func TestDescent(t *testing.T) {
	tests := map[string]struct {
		eta       float64
		p0        *mat.VecDense
		gs        []*mat.VecDense
		expecteds []*mat.VecDense
	}{
		"eta is zero": {
			eta: 0.0,
			p0:  mat.NewVecDense(2, optslices.Ones[float64](2)),
			gs: []*mat.VecDense{
				mat.NewVecDense(2, optslices.Ones[float64](2)),
				mat.NewVecDense(2, optslices.Ones[float64](2)),
			},
			expecteds: []*mat.VecDense{
				mat.NewVecDense(2, optslices.Ones[float64](2)),
				mat.NewVecDense(2, optslices.Ones[float64](2)),
			},
		},
		"eta non-zero": {
			eta: 2.0,
			p0:  mat.NewVecDense(2, optslices.Zeros[float64](2)),
			gs: []*mat.VecDense{
				mat.NewVecDense(2, optslices.Ones[float64](2)),
				mat.NewVecDense(2, optslices.Ones[float64](2)),
			},
			expecteds: []*mat.VecDense{
				mat.NewVecDense(2, []float64{-2, -2}),
				mat.NewVecDense(2, []float64{-4, -4}),
			},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			opt := MustNew(tc.eta)
			p := tc.p0
			for i, g := range tc.gs {
				opt.Extend(g.Len())
				rv := opt.Update(p, p, g)
				assert.Equal(t, p, rv)
				assert.Equal(t, tc.expecteds[i], p)
			}
		})
	}
}

func TestSetEta(t *testing.T) {
	opt := MustNew(0.0)
	opt.SetEta(1.0)
	p := mat.NewVecDense(1, []float64{0})
	opt.Update(p, p, mat.NewVecDense(1, []float64{2}))
	assert.Equal(t, mat.NewVecDense(1, []float64{-2}), p)
}
