package arima

import (
	"math"
)

// maxPartial bounds transformed partial autocorrelations away from the
// unit circle.
const maxPartial = 0.9999

// partialsToCoeffs maps unconstrained values through tanh to partial
// autocorrelations and then, by the Durbin-Levinson recursion, to the
// coefficients of a stationary AR polynomial 1 - c_1 B - ... - c_p B^p.
func partialsToCoeffs(raw []float64) []float64 {
	p := len(raw)
	coeffs := make([]float64, p)
	work := make([]float64, p)
	for k := 0; k < p; k++ {
		kappa := clamp(math.Tanh(raw[k]), -maxPartial, maxPartial)
		copy(work, coeffs[:k])
		for j := 0; j < k; j++ {
			coeffs[j] = work[j] - kappa*work[k-1-j]
		}
		coeffs[k] = kappa
	}
	return coeffs
}

// maCoeffs returns invertible MA coefficients for 1 + t_1 B + ... + t_q B^q.
func maCoeffs(raw []float64) []float64 {
	coeffs := partialsToCoeffs(raw)
	for i := range coeffs {
		coeffs[i] = -coeffs[i]
	}
	return coeffs
}

// partialToRaw inverts the tanh step for a starting value.
func partialToRaw(kappa float64) float64 {
	return math.Atanh(clamp(kappa, -0.9, 0.9))
}

// expandAR multiplies phi(B) by Phi(B^m) and returns the result in the
// x_t = sum c_i x_{t-i} convention.
func expandAR(phi, sphi []float64, m int) []float64 {
	return fromPoly(polyMul(arPoly(phi, 1), arPoly(sphi, m)), -1)
}

// expandMA multiplies theta(B) by Theta(B^m).
func expandMA(theta, stheta []float64, m int) []float64 {
	return fromPoly(polyMul(maPoly(theta, 1), maPoly(stheta, m)), 1)
}

func arPoly(coeffs []float64, lag int) []float64 {
	poly := make([]float64, len(coeffs)*lag+1)
	poly[0] = 1
	for i, c := range coeffs {
		poly[(i+1)*lag] = -c
	}
	return poly
}

func maPoly(coeffs []float64, lag int) []float64 {
	poly := make([]float64, len(coeffs)*lag+1)
	poly[0] = 1
	for i, c := range coeffs {
		poly[(i+1)*lag] = c
	}
	return poly
}

// diffPoly is (1-B)^d (1-B^m)^D.
func diffPoly(d, sd, m int) []float64 {
	poly := []float64{1}
	for i := 0; i < d; i++ {
		poly = polyMul(poly, []float64{1, -1})
	}
	if m > 1 {
		seasonal := make([]float64, m+1)
		seasonal[0], seasonal[m] = 1, -1
		for i := 0; i < sd; i++ {
			poly = polyMul(poly, seasonal)
		}
	}
	return poly
}

func polyMul(a, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i, x := range a {
		if x == 0 {
			continue
		}
		for j, y := range b {
			out[i+j] += x * y
		}
	}
	return out
}

// fromPoly drops the leading 1 and scales the rest by sign. Trailing zeros
// are trimmed.
func fromPoly(poly []float64, sign float64) []float64 {
	end := len(poly)
	for end > 1 && poly[end-1] == 0 {
		end--
	}
	out := make([]float64, end-1)
	for i := 1; i < end; i++ {
		out[i-1] = sign * poly[i]
	}
	return out
}

// psiWeights returns the first h coefficients of the MA(infinity)
// representation of an ARMA process with the given AR and MA coefficients.
func psiWeights(ar, ma []float64, h int) []float64 {
	psi := make([]float64, h)
	if h == 0 {
		return psi
	}
	psi[0] = 1
	for j := 1; j < h; j++ {
		v := 0.0
		if j <= len(ma) {
			v = ma[j-1]
		}
		for i := 1; i <= len(ar) && i <= j; i++ {
			v += ar[i-1] * psi[j-i]
		}
		psi[j] = v
	}
	return psi
}

func clamp(v, lower, upper float64) float64 {
	return math.Max(lower, math.Min(upper, v))
}
