package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTestSize(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		holdout float64
		period  int
		want    int
	}{
		{"share of series", 100, 0.2, 0, 20},
		{"capped", 500, 0.2, 0, 30},
		{"floor", 10, 0.1, 0, 3},
		{"at least a season", 40, 0.1, 12, 12},
		{"period of one ignored", 40, 0.1, 1, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, testSize(tt.n, tt.holdout, tt.period))
		})
	}
}

func TestForecastErrors(t *testing.T) {
	actual := []float64{100, 200, 0, 400}
	predicted := []float64{110, 190, 10, 400}

	rmse, mae, mape := forecastErrors(actual, predicted)

	assert.InDelta(t, math.Sqrt(300.0/4), rmse, 1e-10)
	assert.InDelta(t, 7.5, mae, 1e-10)
	// Zero actual skipped: (10% + 5%) / 4.
	assert.InDelta(t, 3.75, mape, 1e-10)
}

func TestForecastErrorsEmpty(t *testing.T) {
	rmse, mae, mape := forecastErrors(nil, []float64{1})
	assert.Zero(t, rmse)
	assert.Zero(t, mae)
	assert.Zero(t, mape)
}
