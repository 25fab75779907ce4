package stats

import (
	"fmt"
	"math"

	"github.com/sartorproj/pricearima/timeseries"
	"gonum.org/v1/gonum/mat"
)

// olsResult holds the pieces of an ordinary least squares fit that the
// unit-root tests need.
type olsResult struct {
	coeffs  []float64
	stdErrs []float64
	ssr     float64
	nobs    int
	k       int
}

// ols regresses y on the columns of x. The design is solved by QR and the
// coefficient covariance is taken from the Cholesky inverse of X'X.
func ols(x *mat.Dense, y []float64) (*olsResult, error) {
	n, k := x.Dims()
	if n <= k {
		return nil, fmt.Errorf("%w: %d observations for %d regressors", timeseries.ErrInsufficientData, n, k)
	}

	yv := mat.NewVecDense(n, y)

	var qr mat.QR
	qr.Factorize(x)

	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, yv); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateSeries, err)
	}

	var fitted mat.VecDense
	fitted.MulVec(x, &beta)

	var resid mat.VecDense
	resid.SubVec(yv, &fitted)
	ssr := mat.Dot(&resid, &resid)

	var xtx mat.SymDense
	xtx.SymOuterK(1, x.T())

	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok {
		return nil, fmt.Errorf("%w: singular design matrix", ErrDegenerateSeries)
	}
	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateSeries, err)
	}

	s2 := ssr / float64(n-k)
	coeffs := make([]float64, k)
	stdErrs := make([]float64, k)
	for i := 0; i < k; i++ {
		coeffs[i] = beta.AtVec(i)
		stdErrs[i] = math.Sqrt(s2 * inv.At(i, i))
	}

	return &olsResult{
		coeffs:  coeffs,
		stdErrs: stdErrs,
		ssr:     ssr,
		nobs:    n,
		k:       k,
	}, nil
}

func (r *olsResult) tValue(i int) float64 {
	return r.coeffs[i] / r.stdErrs[i]
}

// logLik is the Gaussian log-likelihood with the variance concentrated out.
func (r *olsResult) logLik() float64 {
	n := float64(r.nobs)
	return -n / 2 * (math.Log(2*math.Pi) + math.Log(r.ssr/n) + 1)
}

func (r *olsResult) aic() float64 {
	return -2*r.logLik() + 2*float64(r.k)
}

func (r *olsResult) bic() float64 {
	return -2*r.logLik() + float64(r.k)*math.Log(float64(r.nobs))
}
