package analysis

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Median spacings in [minDailyGap, maxDailyGap) are treated as a daily
// (business day) calendar.
const (
	minDailyGap = 20 * time.Hour
	maxDailyGap = 36 * time.Hour
)

// forecastDates extends a timestamp index by h steps. Daily data steps over
// weekends; finer or coarser data steps by the median observed gap.
func forecastDates(ts []time.Time, h int) []time.Time {
	if len(ts) < 2 || h < 1 {
		return nil
	}

	gaps := make([]float64, len(ts)-1)
	for i := 1; i < len(ts); i++ {
		gaps[i-1] = float64(ts[i].Sub(ts[i-1]))
	}
	sort.Float64s(gaps)
	step := time.Duration(stat.Quantile(0.5, stat.Empirical, gaps, nil))
	if step <= 0 {
		return nil
	}

	daily := step >= minDailyGap && step < maxDailyGap
	dates := make([]time.Time, h)
	next := ts[len(ts)-1]
	for i := range dates {
		if daily {
			next = nextBusinessDay(next)
		} else {
			next = next.Add(step)
		}
		dates[i] = next
	}
	return dates
}

func nextBusinessDay(t time.Time) time.Time {
	t = t.AddDate(0, 0, 1)
	for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		t = t.AddDate(0, 0, 1)
	}
	return t
}
