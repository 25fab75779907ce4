package arima

import (
	"math/rand"

	"github.com/sartorproj/pricearima/timeseries"
)

// simulateARMA draws n observations of an ARMA process around mean, after a
// burn-in.
func simulateARMA(seed int64, n int, ar, ma []float64, mean float64) *timeseries.Series {
	rng := rand.New(rand.NewSource(seed))
	burn := 200
	total := n + burn
	x := make([]float64, total)
	e := make([]float64, total)
	for t := 0; t < total; t++ {
		e[t] = rng.NormFloat64()
		v := e[t]
		for i, phi := range ar {
			if t-i-1 >= 0 {
				v += phi * x[t-i-1]
			}
		}
		for j, theta := range ma {
			if t-j-1 >= 0 {
				v += theta * e[t-j-1]
			}
		}
		x[t] = v
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = x[burn+i] + mean
	}
	return timeseries.New(out)
}

func cumulate(s *timeseries.Series, start, drift float64) *timeseries.Series {
	out := make([]float64, s.Len())
	level := start
	for i, v := range s.Values {
		level += drift + v
		out[i] = level
	}
	return timeseries.New(out)
}
