package timeseries

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	DateColumn  string // Column name for dates (optional)
	ValueColumn string // Column name for values (default: "Close")
	IDColumn    string // Column name for series ID (optional, for filtering)
	IDFilter    string // Value to filter by ID column, e.g. a ticker
	DateFormat  string // Date format (default: "2006-01-02")
	HasHeader   bool   // Whether CSV has header row (default: true)
	Delimiter   rune   // Field delimiter (default: ',')
	SkipRows    int    // Number of rows to skip at start
}

// DefaultCSVOptions returns default options for CSV loading.
// The defaults match a daily OHLC price export.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		ValueColumn: "Close",
		DateFormat:  "2006-01-02",
		HasHeader:   true,
		Delimiter:   ',',
	}
}

var dateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
	"2006",
}

// LoadCSV loads a time series from a CSV file.
func LoadCSV(filename string, opts *CSVOptions) (*Series, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadCSVFromReader(file, opts)
}

// LoadCSVFromReader loads a time series from an io.Reader.
// Missing or unparsable values are kept as NaN so that Clean can drop
// them together with their timestamps.
func LoadCSVFromReader(r io.Reader, opts *CSVOptions) (*Series, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	for i := 0; i < opts.SkipRows; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, fmt.Errorf("skip row %d: %w", i, err)
		}
	}

	valueIdx, dateIdx, idIdx := -1, -1, -1

	if opts.HasHeader {
		header, err := reader.Read()
		if err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}

		for i, h := range header {
			h = unquote(h)
			switch {
			case h == opts.ValueColumn:
				valueIdx = i
			case opts.ValueColumn == "" && (h == "y" || h == "value" || h == "Close" || h == "Adj Close"):
				valueIdx = i
			case opts.DateColumn != "" && h == opts.DateColumn:
				dateIdx = i
			case h == "ds" || h == "date" || h == "Date" || h == "Datetime":
				if dateIdx == -1 {
					dateIdx = i
				}
			case opts.IDColumn != "" && h == opts.IDColumn:
				idIdx = i
			}
		}

		if valueIdx == -1 {
			if opts.ValueColumn != "" {
				return nil, fmt.Errorf("value column %q not found in header", opts.ValueColumn)
			}
			valueIdx = len(header) - 1
		}
	} else {
		dateIdx = 0
		valueIdx = 1
	}

	var values []float64
	var timestamps []time.Time
	datesOK := dateIdx >= 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if opts.IDFilter != "" && idIdx >= 0 && idIdx < len(record) {
			if unquote(record[idIdx]) != opts.IDFilter {
				continue
			}
		}

		if valueIdx >= len(record) {
			continue
		}
		values = append(values, parseValue(unquote(record[valueIdx])))

		if !datesOK {
			continue
		}
		if dateIdx >= len(record) {
			datesOK = false
			continue
		}
		ts, ok := parseDate(unquote(record[dateIdx]), opts.DateFormat)
		if !ok {
			datesOK = false
			continue
		}
		timestamps = append(timestamps, ts)
	}

	if len(values) == 0 {
		return nil, errors.New("no valid data found in CSV")
	}

	series := New(values)
	series.Name = opts.ValueColumn
	if datesOK && len(timestamps) == len(values) {
		series.Timestamps = timestamps
	}
	return series, nil
}

func unquote(s string) string {
	return strings.TrimSpace(strings.Trim(s, "\""))
}

func parseValue(s string) float64 {
	switch s {
	case "", "NA", "N/A", "NaN", "nan", "null", "None", "-":
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func parseDate(s, preferred string) (time.Time, bool) {
	if preferred != "" {
		if ts, err := time.Parse(preferred, s); err == nil {
			return ts, true
		}
	}
	for _, layout := range dateFormats {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
