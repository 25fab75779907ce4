package arima

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartialsToCoeffs(t *testing.T) {
	k1, k2 := 0.5, -0.3
	coeffs := partialsToCoeffs([]float64{math.Atanh(k1), math.Atanh(k2)})

	// AR(2) from partial autocorrelations: phi1 = k1(1-k2), phi2 = k2.
	assert.InDeltaSlice(t, []float64{k1 * (1 - k2), k2}, coeffs, 1e-12)
	assert.Empty(t, partialsToCoeffs(nil))
}

func TestPartialsToCoeffsClamped(t *testing.T) {
	coeffs := partialsToCoeffs([]float64{100})
	assert.InDelta(t, maxPartial, coeffs[0], 1e-12)

	ma := maCoeffs([]float64{math.Atanh(0.4)})
	assert.InDeltaSlice(t, []float64{-0.4}, ma, 1e-12)
}

func TestExpandAR(t *testing.T) {
	// (1 - 0.5B)(1 - 0.3B^4)
	got := expandAR([]float64{0.5}, []float64{0.3}, 4)
	assert.InDeltaSlice(t, []float64{0.5, 0, 0, 0.3, -0.15}, got, 1e-12)

	assert.InDeltaSlice(t, []float64{0.5}, expandAR([]float64{0.5}, nil, 0), 1e-12)
	assert.Empty(t, expandAR(nil, nil, 4))
}

func TestExpandMA(t *testing.T) {
	// (1 + 0.4B)(1 + 0.2B^2)
	got := expandMA([]float64{0.4}, []float64{0.2}, 2)
	assert.InDeltaSlice(t, []float64{0.4, 0.2, 0.08}, got, 1e-12)
}

func TestDiffPoly(t *testing.T) {
	assert.Equal(t, []float64{1}, diffPoly(0, 0, 0))
	assert.Equal(t, []float64{1, -2, 1}, diffPoly(2, 0, 0))
	assert.Equal(t, []float64{1, -1, 0, -1, 1}, diffPoly(1, 1, 3))
}

func TestPsiWeights(t *testing.T) {
	psi := psiWeights([]float64{0.5}, nil, 4)
	assert.InDeltaSlice(t, []float64{1, 0.5, 0.25, 0.125}, psi, 1e-12)

	// Random walk: every weight is one.
	assert.Equal(t, []float64{1, 1, 1}, psiWeights([]float64{1}, nil, 3))

	// MA(1) truncates.
	assert.InDeltaSlice(t, []float64{1, 0.3, 0, 0}, psiWeights(nil, []float64{0.3}, 4), 1e-12)
	assert.Empty(t, psiWeights(nil, nil, 0))
}
