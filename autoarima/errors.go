package autoarima

import (
	"errors"
	"fmt"

	"github.com/sartorproj/pricearima/arima"
)

// ErrNoModelFound is returned when no candidate of a search could be fitted.
var ErrNoModelFound = errors.New("autoarima: no model found")

// FitFailure records one candidate that could not be fitted.
type FitFailure struct {
	Order     arima.Order
	Intercept bool
	Err       error
}

// SearchError is returned when a search ends without a single fitted
// candidate. It matches ErrNoModelFound and, when the search was cut short,
// the context error.
type SearchError struct {
	NObs     int
	D        int
	Failures []FitFailure
	Cause    error
}

func (e *SearchError) Error() string {
	msg := fmt.Sprintf("%v: %d observations at d=%d, %d candidates failed",
		ErrNoModelFound, e.NObs, e.D, len(e.Failures))
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *SearchError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrNoModelFound}
	}
	return []error{ErrNoModelFound, e.Cause}
}
