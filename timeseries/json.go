package timeseries

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/tidwall/gjson"
)

// JSONOptions selects the price and time arrays inside a saved JSON payload
// using gjson path syntax.
//
// For a quote-chart dump:
//
//	ValuesPath: "chart.result.0.indicators.quote.0.close"
//	TimesPath:  "chart.result.0.timestamp"
//
// For an array of records:
//
//	ValuesPath: "#.close"
//	TimesPath:  "#.date"
type JSONOptions struct {
	ValuesPath string
	TimesPath  string // optional
	TimeLayout string // layout for string times; numeric times are unix seconds
	Name       string
}

// DefaultJSONOptions returns options for an array of {"date","close"} records.
func DefaultJSONOptions() *JSONOptions {
	return &JSONOptions{
		ValuesPath: "#.close",
		TimesPath:  "#.date",
		TimeLayout: "2006-01-02",
		Name:       "close",
	}
}

// LoadJSON loads a time series from a saved JSON document.
func LoadJSON(filename string, opts *JSONOptions) (*Series, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadJSONFromReader(file, opts)
}

// LoadJSONFromReader loads a series from a JSON document.
// Null prices become NaN and are dropped by Clean.
func LoadJSONFromReader(r io.Reader, opts *JSONOptions) (*Series, error) {
	if opts == nil {
		opts = DefaultJSONOptions()
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON document")
	}

	vals := gjson.GetBytes(data, opts.ValuesPath)
	if !vals.Exists() || !vals.IsArray() {
		return nil, fmt.Errorf("path %q does not select an array", opts.ValuesPath)
	}

	var values []float64
	for _, v := range vals.Array() {
		if v.Type != gjson.Number {
			values = append(values, math.NaN())
			continue
		}
		values = append(values, v.Float())
	}
	if len(values) == 0 {
		return nil, errors.New("no valid data found in JSON")
	}

	series := New(values)
	series.Name = opts.Name

	if opts.TimesPath == "" {
		return series, nil
	}

	times := gjson.GetBytes(data, opts.TimesPath)
	if !times.IsArray() || len(times.Array()) != len(values) {
		return series, nil
	}

	timestamps := make([]time.Time, 0, len(values))
	for _, t := range times.Array() {
		switch t.Type {
		case gjson.Number:
			timestamps = append(timestamps, time.Unix(t.Int(), 0).UTC())
		case gjson.String:
			ts, ok := parseDate(t.String(), opts.TimeLayout)
			if !ok {
				return series, nil
			}
			timestamps = append(timestamps, ts)
		default:
			return series, nil
		}
	}
	series.Timestamps = timestamps
	return series, nil
}
