package timeseries

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadJSONRecords(t *testing.T) {
	doc := `[
		{"date": "2024-03-01", "close": 179.66},
		{"date": "2024-03-04", "close": 175.10},
		{"date": "2024-03-05", "close": null}
	]`

	series, err := LoadJSONFromReader(strings.NewReader(doc), nil)
	require.NoError(t, err)

	require.Equal(t, 3, series.Len())
	assert.Equal(t, 179.66, series.Values[0])
	assert.True(t, math.IsNaN(series.Values[2]))
	require.True(t, series.HasTimestamps())
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), series.Timestamps[1])
}

func TestLoadJSONChartPayload(t *testing.T) {
	doc := `{"chart": {"result": [{
		"timestamp": [1709303400, 1709562600],
		"indicators": {"quote": [{"close": [179.66, 175.10]}]}
	}]}}`

	opts := &JSONOptions{
		ValuesPath: "chart.result.0.indicators.quote.0.close",
		TimesPath:  "chart.result.0.timestamp",
	}
	series, err := LoadJSONFromReader(strings.NewReader(doc), opts)
	require.NoError(t, err)

	assert.Equal(t, []float64{179.66, 175.10}, series.Values)
	require.True(t, series.HasTimestamps())
	assert.Equal(t, int64(1709303400), series.Timestamps[0].Unix())
}

func TestLoadJSONErrors(t *testing.T) {
	_, err := LoadJSONFromReader(strings.NewReader(`{not json`), nil)
	assert.Error(t, err)

	_, err = LoadJSONFromReader(strings.NewReader(`{"a": 1}`), &JSONOptions{ValuesPath: "a"})
	assert.Error(t, err)

	_, err = LoadJSONFromReader(strings.NewReader(`[]`), nil)
	assert.Error(t, err)
}

func TestLoadJSONMismatchedTimesIgnored(t *testing.T) {
	doc := `{"close": [1, 2, 3], "date": ["2024-01-01"]}`

	series, err := LoadJSONFromReader(strings.NewReader(doc), &JSONOptions{ValuesPath: "close", TimesPath: "date"})
	require.NoError(t, err)
	assert.Equal(t, 3, series.Len())
	assert.False(t, series.HasTimestamps())
}

func TestLoadJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"date": "2024-03-01", "close": 1.5}]`), 0o600))

	series, err := LoadJSON(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5}, series.Values)

	_, err = LoadJSON(filepath.Join(t.TempDir(), "missing.json"), nil)
	assert.Error(t, err)
}
