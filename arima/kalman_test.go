package arima

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStationaryCovarianceAR1(t *testing.T) {
	phi := 0.8
	ss, err := newStateSpace([]float64{phi}, nil)
	require.NoError(t, err)

	require.Equal(t, 1, ss.r)
	assert.InDelta(t, 1/(1-phi*phi), ss.p0[0], 1e-9)
}

func TestStationaryCovarianceMA1(t *testing.T) {
	theta := 0.4
	ss, err := newStateSpace(nil, []float64{theta})
	require.NoError(t, err)

	require.Equal(t, 2, ss.r)
	assert.InDeltaSlice(t, []float64{1 + theta*theta, theta, theta, theta * theta}, ss.p0, 1e-12)
}

func TestStationaryCovarianceSatisfiesLyapunov(t *testing.T) {
	phi := []float64{0.5, -0.3, 0.1}
	theta := []float64{0.4, 0.2}
	ss, err := newStateSpace(phi, theta)
	require.NoError(t, err)

	r := ss.r
	for i := 0; i < r; i++ {
		for j := 0; j < r; j++ {
			// (T P T')_{ij} + V_{ij}
			tp := func(a, b int) float64 {
				v := ss.phi[a] * ss.p0[b]
				if a < r-1 {
					v += ss.p0[(a+1)*r+b]
				}
				return v
			}
			v := ss.phi[j] * tp(i, 0)
			if j < r-1 {
				v += tp(i, j+1)
			}
			v += ss.v[i*r+j]
			assert.InDelta(t, ss.p0[i*r+j], v, 1e-9, "P[%d][%d]", i, j)
		}
	}
}

func TestStationaryCovarianceUnitRoot(t *testing.T) {
	_, err := newStateSpace([]float64{1}, nil)
	assert.ErrorIs(t, err, errNotStationary)
}

func TestFilterAR1Likelihood(t *testing.T) {
	// For an AR(1) the exact likelihood factorizes into the stationary
	// density of y_0 and the conditional densities of the rest.
	phi := 0.6
	y := []float64{0.5, -0.2, 1.1, 0.3, -0.7, 0.05}

	ss, err := newStateSpace([]float64{phi}, nil)
	require.NoError(t, err)
	res, ok := ss.filter(y, true)
	require.True(t, ok)

	v0 := 1 / (1 - phi*phi)
	ssq := y[0] * y[0] / v0
	for i := 1; i < len(y); i++ {
		e := y[i] - phi*y[i-1]
		ssq += e * e
		assert.InDelta(t, e, res.resid[i], 1e-12)
	}

	assert.InDelta(t, ssq, res.ssq, 1e-12)
	assert.InDelta(t, math.Log(v0), res.sumlog, 1e-12)
	assert.Equal(t, len(y), res.nu)
	assert.InDelta(t, y[len(y)-1], res.state[0], 1e-12)
}

func TestFilterRejectsBadVariance(t *testing.T) {
	ss := &stateSpace{r: 1, phi: []float64{0}, v: []float64{0}, p0: []float64{0}}
	_, ok := ss.filter([]float64{1, 2}, false)
	assert.False(t, ok)
}

func TestPredictState(t *testing.T) {
	ss, err := newStateSpace([]float64{0.5}, nil)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{1, 0.5, 0.25}, ss.predictState([]float64{2}, 3), 1e-12)
}
