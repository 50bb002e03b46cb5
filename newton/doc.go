// Package newton implements batched Newton-type (SQP-style) unconstrained
// minimisation of smooth scalar objectives with caller-supplied gradient and
// Hessian evaluators.
//
// A batch of independent problem instances is processed in lockstep: the
// iterate is a matrix with one row per instance, and every iteration evaluates
// the whole batch together. Indefinite or ill-conditioned curvature is handled
// by the Regulariser, which shifts the Hessian diagonal until a
// positive-definite Cholesky factorisation exists, and step lengths are chosen
// by a multi-point geometric line search that never worsens the loss unless
// explicitly forced to.
//
// Despite the SQP naming, no constraints are enforced.
package newton
