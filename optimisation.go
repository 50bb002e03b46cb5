// Package optimisation provides numerical optimisation algorithms.
//
// First-order methods implement the Optimiser interface and are driven by the
// gd package. Second-order (Newton-type) minimisation lives in the newton
// package, and the lbfgs package wraps gonum's quasi-Newton implementation.
package optimisation

import "gonum.org/v1/gonum/mat"

// Optimiser represents a first-order optimisation algorithm.
type Optimiser interface {
	// Update the parameters using gradient and store the result in out.
	Update(out, parameters *mat.VecDense, gradient mat.Vector) *mat.VecDense
	// Extend the internal state of the optimiser to accommodate at least n parameters.
	Extend(n int)
}

// StepSizeSetter is implemented by optimisers whose step length can be
// adjusted between iterations, e.g., by a step-size schedule.
type StepSizeSetter interface {
	SetEta(eta float64)
}
