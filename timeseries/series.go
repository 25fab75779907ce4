// Package timeseries provides core time series data structures and operations.
package timeseries

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// DefaultMinObservations is the minimum series length accepted by Clean
// when the caller does not configure one.
const DefaultMinObservations = 20

var (
	// ErrInsufficientData is returned when a series is too short for the
	// requested operation.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrUnorderedIndex is returned when timestamps are not strictly increasing.
	ErrUnorderedIndex = errors.New("timestamps must be strictly increasing")
)

// Series represents a time series of observations.
// Timestamps are optional; when nil the position is the index.
type Series struct {
	Timestamps []time.Time
	Values     []float64
	Name       string
}

// New creates a new index-only time series from values.
func New(values []float64) *Series {
	return &Series{Values: values}
}

// NewWithTimestamps creates a time series with explicit timestamps.
func NewWithTimestamps(timestamps []time.Time, values []float64) (*Series, error) {
	if len(timestamps) != len(values) {
		return nil, errors.New("timestamps and values must have the same length")
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
	}, nil
}

// Len returns the length of the series.
func (s *Series) Len() int {
	return len(s.Values)
}

// HasTimestamps reports whether every observation carries a timestamp.
func (s *Series) HasTimestamps() bool {
	return len(s.Timestamps) > 0 && len(s.Timestamps) == len(s.Values)
}

// Mean calculates the arithmetic mean of the series.
func (s *Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return stat.Mean(s.Values, nil)
}

// Variance calculates the unbiased sample variance of the series.
func (s *Series) Variance() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	return stat.Variance(s.Values, nil)
}

// Std calculates the standard deviation of the series.
func (s *Series) Std() float64 {
	return math.Sqrt(s.Variance())
}

// Clean drops missing (NaN or infinite) observations and validates the
// result: timestamps, when present, must be strictly increasing and at
// least minObs observations must remain. The input is not modified.
func Clean(s *Series, minObs int) (*Series, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil series", ErrInsufficientData)
	}
	if minObs <= 0 {
		minObs = DefaultMinObservations
	}

	withTimes := s.HasTimestamps()
	values := make([]float64, 0, len(s.Values))
	var timestamps []time.Time
	if withTimes {
		timestamps = make([]time.Time, 0, len(s.Values))
	}

	for i, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if withTimes {
			ts := s.Timestamps[i]
			if n := len(timestamps); n > 0 && !ts.After(timestamps[n-1]) {
				return nil, fmt.Errorf("%w: observation %d at %s follows %s",
					ErrUnorderedIndex, i, ts.Format(time.RFC3339), timestamps[n-1].Format(time.RFC3339))
			}
			timestamps = append(timestamps, ts)
		}
		values = append(values, v)
	}

	if len(values) < minObs {
		return nil, fmt.Errorf("%w: %d valid observations of %d, need at least %d",
			ErrInsufficientData, len(values), len(s.Values), minObs)
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}, nil
}

// Diff calculates the first difference of the series (d=1).
func (s *Series) Diff() *Series {
	return s.lagDiff(1, "_diff")
}

// DiffN applies first differencing n times. DiffN(0) returns a copy.
func (s *Series) DiffN(n int) *Series {
	out := s.Copy()
	for i := 0; i < n; i++ {
		out = out.Diff()
	}
	return out
}

// SeasonalDiff calculates the seasonal difference with period m.
func (s *Series) SeasonalDiff(m int) *Series {
	return s.lagDiff(m, "_seasonal_diff")
}

func (s *Series) lagDiff(lag int, suffix string) *Series {
	if lag <= 0 || len(s.Values) <= lag {
		return &Series{Values: []float64{}, Name: s.Name + suffix}
	}

	result := make([]float64, len(s.Values)-lag)
	for i := lag; i < len(s.Values); i++ {
		result[i-lag] = s.Values[i] - s.Values[i-lag]
	}

	var timestamps []time.Time
	if s.HasTimestamps() {
		timestamps = make([]time.Time, len(result))
		copy(timestamps, s.Timestamps[lag:])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     result,
		Name:       s.Name + suffix,
	}
}

// Slice returns a slice of the series from start to end (exclusive).
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > len(s.Values) {
		end = len(s.Values)
	}
	if start >= end {
		return &Series{Values: []float64{}, Name: s.Name}
	}

	values := make([]float64, end-start)
	copy(values, s.Values[start:end])

	var timestamps []time.Time
	if s.HasTimestamps() {
		timestamps = make([]time.Time, len(values))
		copy(timestamps, s.Timestamps[start:end])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}

// Tail returns the last n observations.
func (s *Series) Tail(n int) *Series {
	if n <= 0 || n >= len(s.Values) {
		return s.Copy()
	}
	return s.Slice(len(s.Values)-n, len(s.Values))
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	values := make([]float64, len(s.Values))
	copy(values, s.Values)

	var timestamps []time.Time
	if len(s.Timestamps) > 0 {
		timestamps = make([]time.Time, len(s.Timestamps))
		copy(timestamps, s.Timestamps)
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}

// Log applies natural logarithm transformation.
// Non-positive values become NaN and are dropped by Clean.
func (s *Series) Log() *Series {
	result := make([]float64, len(s.Values))
	for i, v := range s.Values {
		if v > 0 {
			result[i] = math.Log(v)
		} else {
			result[i] = math.NaN()
		}
	}

	out := s.Copy()
	out.Values = result
	out.Name = s.Name + "_log"
	return out
}
