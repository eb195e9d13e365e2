package rve

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameters reports malformed geometric inputs.
	ErrInvalidParameters = errors.New("invalid parameters")
	// ErrInvalidDimension reports an ndim outside {2, 3}.
	ErrInvalidDimension = errors.New("invalid dimension")
	// ErrDimensionMismatch reports points of differing dimensionality.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrPackingInfeasible reports that a sampling budget ran out before the
	// target density was reached.
	ErrPackingInfeasible = errors.New("packing infeasible")
)

// InfeasibleError is returned when MaxMisses or MaxAttempts is exhausted.
// Partial holds everything accepted up to that point.
type InfeasibleError struct {
	Reason  string
	Misses  int
	Partial *Result
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("%v: %s after %d consecutive misses (%d inclusions, density %.6f of target %.6f)",
		ErrPackingInfeasible, e.Reason, e.Misses, e.Partial.OriginalCount(), e.Partial.Density, e.Partial.Params.MinDensity)
}

func (e *InfeasibleError) Unwrap() error { return ErrPackingInfeasible }
