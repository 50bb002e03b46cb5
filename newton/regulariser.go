package newton

import (
	"math"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/armadaproject/optimisation/internal/linalg"
	"github.com/armadaproject/optimisation/internal/opterrors"
	optslices "github.com/armadaproject/optimisation/internal/slices"
)

const (
	// Factor by which the diagonal shift grows between factorisation attempts.
	regGrowth = 5.0
	// Upper bound on the diagonal shift; escalating to this value or beyond is fatal.
	regLimit = 0.99e7
	// Iteration cap and tolerance for the iterative lowest-eigenvalue estimator.
	eigIterations = 100
	eigTolerance  = 1e-3
	// Below this dimension eigenvalues are computed exactly; iterative
	// estimation is unreliable for such small matrices.
	exactEigDim = 3
	// Smallest non-zero diagonal shift used by the escalation loop.
	minReg = 1e-7
)

// RegularisationState describes the outcome of a factorisation attempt.
type RegularisationState struct {
	// Number of times the diagonal shift was escalated.
	Escalations int
	// Final value of the diagonal shift.
	Reg float64
}

// Regulariser produces positive-definite Cholesky factorisations of batched
// symmetric matrices that may be indefinite or ill-conditioned. It first
// estimates the lowest eigenvalue across the batch to choose an initial
// diagonal shift, then escalates that shift geometrically until every row of
// the batch admits a valid factorisation.
type Regulariser struct {
	// Initial diagonal shift. The effective shift is never smaller than this.
	Reg0 float64
	// Logger for per-attempt diagnostics. The standard logger is used if nil.
	Logger log.FieldLogger
}

// Factorise returns per-row Cholesky factorisations of hs[i] + reg*I for a
// single shift reg shared by the whole batch, together with the shift and the
// number of escalations needed to find it. Rows must be square, symmetric,
// and of equal dimension. The only failure mode is escalation exhaustion,
// reported as ErrRegularisationExhausted.
func (r *Regulariser) Factorise(hs []*mat.SymDense) ([]*mat.Cholesky, RegularisationState, error) {
	est := lowestEigenvalueBatch(hs)
	reg := math.Max(math.Max(-2*est, 0), r.Reg0)
	return r.Escalate(hs, reg)
}

// Escalate attempts Cholesky factorisations of hs[i] + reg*I, multiplying reg
// by a constant factor after every failed attempt. It is the final step of
// Factorise but is also usable standalone when an initial shift is already
// known. The loop is bounded: once reg reaches the upper bound without a
// successful factorisation, ErrRegularisationExhausted is returned.
func (r *Regulariser) Escalate(hs []*mat.SymDense, reg float64) ([]*mat.Cholesky, RegularisationState, error) {
	logger := r.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	if math.IsNaN(reg) {
		reg = math.Max(r.Reg0, minReg)
	}
	escalations := 0
	for {
		if chols, ok := factoriseShifted(hs, reg); ok {
			return chols, RegularisationState{Escalations: escalations, Reg: reg}, nil
		}
		escalations++
		reg = math.Max(regGrowth*reg, minReg)
		logger.WithFields(log.Fields{"escalations": escalations, "reg": reg}).
			Debug("factorisation failed; escalating diagonal shift")
		if reg >= regLimit {
			return nil, RegularisationState{Escalations: escalations, Reg: reg}, errors.WithStack(
				&opterrors.ErrRegularisationExhausted{Attempts: escalations, Reg: reg},
			)
		}
	}
}

// factoriseShifted attempts to factorise every row of the batch with the same
// diagonal shift. The attempt fails as a whole if any row is not positive
// definite or yields a factor containing NaN values.
func factoriseShifted(hs []*mat.SymDense, reg float64) ([]*mat.Cholesky, bool) {
	chols := make([]*mat.Cholesky, len(hs))
	for i, h := range hs {
		chol := &mat.Cholesky{}
		if ok := chol.Factorize(linalg.ShiftDiag(h, reg)); !ok {
			return nil, false
		}
		var l mat.TriDense
		chol.LTo(&l)
		if linalg.HasNaN(&l) {
			return nil, false
		}
		chols[i] = chol
	}
	return chols, true
}

// lowestEigenvalueBatch returns an estimate of the smallest eigenvalue across
// all rows of the batch.
func lowestEigenvalueBatch(hs []*mat.SymDense) float64 {
	rv := math.Inf(1)
	for _, h := range hs {
		var est float64
		if h.SymmetricDim() < exactEigDim {
			est = exactLowestEigenvalue(h)
		} else {
			est = lowestEigenvalue(h, eigIterations, eigTolerance)
		}
		if math.IsNaN(est) {
			// Leave the shift to the escalation loop.
			continue
		}
		if est < rv {
			rv = est
		}
	}
	if math.IsInf(rv, 1) {
		return 0
	}
	return rv
}

func exactLowestEigenvalue(h *mat.SymDense) float64 {
	var eig mat.EigenSym
	if ok := eig.Factorize(h, false); !ok {
		// Leave the initial shift to the escalation loop.
		return 0
	}
	return floats.Min(eig.Values(nil))
}

// lowestEigenvalue approximates the smallest eigenvalue of h by power
// iteration on sigma*I - h, where sigma is the infinity norm of h and hence an
// upper bound on its spectral radius. The iteration is bounded by
// maxIterations and stops early once successive Rayleigh quotients agree to
// within tol. The estimate is approximate; the escalation loop backstops it.
func lowestEigenvalue(h *mat.SymDense, maxIterations int, tol float64) float64 {
	n := h.SymmetricDim()
	sigma := mat.Norm(h, math.Inf(1))

	b := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			b.SetSym(i, j, -h.At(i, j))
		}
		b.SetSym(i, i, sigma-h.At(i, i))
	}

	v := mat.NewVecDense(n, optslices.Fill(1/math.Sqrt(float64(n)), n))
	w := mat.NewVecDense(n, nil)
	lambda := 0.0
	for it := 0; it < maxIterations; it++ {
		w.MulVec(b, v)
		next := mat.Dot(v, w)
		norm := mat.Norm(w, 2)
		if norm == 0 {
			// h is a non-negative multiple of the identity.
			break
		}
		w.ScaleVec(1/norm, w)
		v.CopyVec(w)
		if math.Abs(next-lambda) <= tol {
			lambda = next
			break
		}
		lambda = next
	}
	return sigma - lambda
}
