package arima

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

var errNotStationary = errors.New("state covariance did not converge")

// stateSpace is the Harvey representation of a zero-mean ARMA process
// with unit innovation variance:
//
//	a_t = T a_{t-1} + R e_t,  y_t = a_t[0]
//
// T has the AR coefficients in its first column and ones on the
// superdiagonal, R = (1, theta_1, ..., theta_{r-1}).
type stateSpace struct {
	r   int
	phi []float64 // length r, zero padded
	v   []float64 // R R', row major r*r
	p0  []float64 // stationary covariance of a_0, row major r*r
}

func newStateSpace(phi, theta []float64) (*stateSpace, error) {
	r := max(len(phi), len(theta)+1)

	ss := &stateSpace{
		r:   r,
		phi: make([]float64, r),
		v:   make([]float64, r*r),
	}
	copy(ss.phi, phi)

	rvec := make([]float64, r)
	rvec[0] = 1
	copy(rvec[1:], theta)
	for i := 0; i < r; i++ {
		for j := 0; j < r; j++ {
			ss.v[i*r+j] = rvec[i] * rvec[j]
		}
	}

	p0, err := stationaryCovariance(ss.phi, ss.v, r)
	if err != nil {
		return nil, err
	}
	ss.p0 = p0
	return ss, nil
}

// stationaryCovariance solves P = T P T' + V by Smith's doubling
// algorithm: P = sum_k T^k V T'^k.
func stationaryCovariance(phi, v []float64, r int) ([]float64, error) {
	t := mat.NewDense(r, r, nil)
	for i := 0; i < r; i++ {
		t.Set(i, 0, phi[i])
		if i < r-1 {
			t.Set(i, i+1, 1)
		}
	}

	p := mat.NewDense(r, r, append([]float64(nil), v...))
	a := mat.DenseCopyOf(t)

	var tmp, step mat.Dense
	for iter := 0; iter < 64; iter++ {
		tmp.Mul(a, p)
		step.Mul(&tmp, a.T())
		p.Add(p, &step)

		if mat.Norm(&step, math.Inf(1)) <= 1e-12*(1+mat.Norm(p, math.Inf(1))) {
			out := make([]float64, r*r)
			for i := 0; i < r; i++ {
				for j := 0; j < r; j++ {
					out[i*r+j] = p.At(i, j)
				}
			}
			return out, nil
		}
		a.Mul(a, a)
	}
	return nil, errNotStationary
}

// filterResult accumulates the concentrated likelihood terms.
type filterResult struct {
	ssq    float64 // sum of squared standardized innovations
	sumlog float64 // sum of log prediction variances
	nu     int
	resid  []float64 // raw one-step innovations, if requested
	state  []float64 // filtered state after the last observation
}

// filter runs the Kalman filter over y (already demeaned). It reports false
// when a prediction variance becomes non-positive or non-finite.
func (ss *stateSpace) filter(y []float64, keepResid bool) (filterResult, bool) {
	r := ss.r
	phi := ss.phi

	a := make([]float64, r)
	anew := make([]float64, r)
	p := append([]float64(nil), ss.p0...)
	pnew := make([]float64, r*r)
	mm := make([]float64, r*r)

	var res filterResult
	if keepResid {
		res.resid = make([]float64, len(y))
	}

	steady := false
	for t, obs := range y {
		for i := 0; i < r; i++ {
			v := phi[i] * a[0]
			if i < r-1 {
				v += a[i+1]
			}
			anew[i] = v
		}

		if !steady {
			if t == 0 {
				copy(pnew, p)
			} else {
				// mm = T P
				for i := 0; i < r; i++ {
					for j := 0; j < r; j++ {
						v := phi[i] * p[j]
						if i < r-1 {
							v += p[(i+1)*r+j]
						}
						mm[i*r+j] = v
					}
				}
				// pnew = mm T' + V
				for i := 0; i < r; i++ {
					for j := 0; j < r; j++ {
						v := phi[j] * mm[i*r]
						if j < r-1 {
							v += mm[i*r+j+1]
						}
						pnew[i*r+j] = v + ss.v[i*r+j]
					}
				}
			}
		}

		f := pnew[0]
		if !(f > 0) || math.IsInf(f, 0) {
			return res, false
		}

		innov := obs - anew[0]
		for i := 0; i < r; i++ {
			a[i] = anew[i] + pnew[i*r]*innov/f
		}
		if !steady {
			for i := 0; i < r; i++ {
				for j := 0; j < r; j++ {
					p[i*r+j] = pnew[i*r+j] - pnew[i*r]*pnew[j]/f
				}
			}
			// Once the prediction variance reaches the innovation variance
			// the filter has converged and P no longer changes.
			if t > 0 && math.Abs(f-1) < 1e-12 {
				steady = true
			}
		}

		res.ssq += innov * innov / f
		res.sumlog += math.Log(f)
		res.nu++
		if keepResid {
			res.resid[t] = innov
		}
	}

	res.state = a
	return res, true
}

// predictState advances the state mean h steps without new observations
// and returns the observation forecasts.
func (ss *stateSpace) predictState(state []float64, h int) []float64 {
	r := ss.r
	a := append([]float64(nil), state...)
	next := make([]float64, r)
	out := make([]float64, h)
	for step := 0; step < h; step++ {
		for i := 0; i < r; i++ {
			v := ss.phi[i] * a[0]
			if i < r-1 {
				v += a[i+1]
			}
			next[i] = v
		}
		a, next = next, a
		out[step] = a[0]
	}
	return out
}
