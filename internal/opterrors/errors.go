// Package opterrors contains generic errors that should be returned by the
// optimisation drivers in this module. Fatal numerical conditions are expressed
// as typed errors so that callers can distinguish between invalid input,
// an unstable objective, and an exhausted regularisation loop using errors.As.
package opterrors

import (
	"fmt"
)

// ErrInvalidArgument is a generic error to be returned on invalid argument.
// Message is optional and is omitted from the error message if not provided.
type ErrInvalidArgument struct {
	Name    string      // Name of the field referred to, e.g., "eta"
	Value   interface{} // The invalid value that was provided
	Message string      // An optional message explaining why the value is invalid
}

func (err *ErrInvalidArgument) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("value %v is invalid for field %q", err.Value, err.Name)
	}
	return fmt.Sprintf("value %v is invalid for field %q; %s", err.Value, err.Name, err.Message)
}

// ErrNumericalInstability indicates that some evaluation produced an invalid
// (NaN) value at one of the named stages of an optimisation run, e.g., the
// gradient or Hessian evaluation. The run is aborted with no partial result.
type ErrNumericalInstability struct {
	Stage   string // Stage at which the invalid value was produced, e.g., "gradient"
	Message string // An optional message to include with the error message
}

func (err *ErrNumericalInstability) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("numerical instability in %s evaluation", err.Stage)
	}
	return fmt.Sprintf("numerical instability in %s evaluation; %s", err.Stage, err.Message)
}

// ErrRegularisationExhausted indicates that no positive-definite factorisation
// of the regularised Hessian could be found before the diagonal shift reached
// its upper bound. The run is aborted with no partial result.
type ErrRegularisationExhausted struct {
	Attempts int     // Number of escalation attempts made
	Reg      float64 // Final value of the diagonal shift
}

func (err *ErrRegularisationExhausted) Error() string {
	return fmt.Sprintf(
		"no positive-definite factorisation found after %d escalations; diagonal shift reached %v",
		err.Attempts, err.Reg,
	)
}
