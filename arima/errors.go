package arima

import (
	"errors"
	"fmt"
)

var (
	// ErrNonConvergence is returned when the likelihood optimizer stops
	// without meeting its convergence criterion.
	ErrNonConvergence = errors.New("arima: optimizer did not converge")

	// ErrOverparameterized is returned when p+q+P+Q >= n/10.
	ErrOverparameterized = errors.New("arima: too many parameters for the sample size")

	// ErrInvalidOrder is returned for negative orders, seasonal terms without
	// a period, or an intercept with d+D > 1.
	ErrInvalidOrder = errors.New("arima: invalid order")
)

// FitError describes a failed fit of one order.
type FitError struct {
	Order Order
	NObs  int
	Err   error
}

func (e *FitError) Error() string {
	return fmt.Sprintf("fit %s on %d observations: %v", e.Order, e.NObs, e.Err)
}

func (e *FitError) Unwrap() error {
	return e.Err
}
