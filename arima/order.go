package arima

import (
	"fmt"
)

// Order represents a (seasonal) ARIMA order (p, d, q) x (P, D, Q, m).
// The seasonal part is ignored unless M > 1.
type Order struct {
	P int // AR order
	D int // Differencing order
	Q int // MA order
	// Seasonal components
	SP int // Seasonal AR order
	SD int // Seasonal differencing order
	SQ int // Seasonal MA order
	M  int // Seasonal period, e.g. 5 for a trading week
}

// IsSeasonal reports whether the order carries any seasonal terms.
func (o Order) IsSeasonal() bool {
	return o.M > 1 && o.SP+o.SD+o.SQ > 0
}

// NumCoeffs is the number of ARMA coefficients p+q+P+Q.
func (o Order) NumCoeffs() int {
	n := o.P + o.Q
	if o.M > 1 {
		n += o.SP + o.SQ
	}
	return n
}

// TotalDiff is d + D, the order of integration that limits the intercept.
func (o Order) TotalDiff() int {
	if o.M > 1 {
		return o.D + o.SD
	}
	return o.D
}

// Lost is the number of leading observations consumed by differencing.
func (o Order) Lost() int {
	if o.M > 1 {
		return o.D + o.SD*o.M
	}
	return o.D
}

// Validate checks that all orders are non-negative and that seasonal terms
// come with a period.
func (o Order) Validate() error {
	if o.P < 0 || o.D < 0 || o.Q < 0 || o.SP < 0 || o.SD < 0 || o.SQ < 0 || o.M < 0 {
		return fmt.Errorf("%w: negative order in %s", ErrInvalidOrder, o)
	}
	if o.M <= 1 && o.SP+o.SD+o.SQ > 0 {
		return fmt.Errorf("%w: seasonal terms need a period > 1, got %d", ErrInvalidOrder, o.M)
	}
	return nil
}

func (o Order) String() string {
	if o.IsSeasonal() {
		return fmt.Sprintf("ARIMA(%d,%d,%d)(%d,%d,%d)[%d]", o.P, o.D, o.Q, o.SP, o.SD, o.SQ, o.M)
	}
	return fmt.Sprintf("ARIMA(%d,%d,%d)", o.P, o.D, o.Q)
}
