package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Output formats understood by Write.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Write renders the report to w in the given format.
func (r *Report) Write(w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		return r.writeText(w)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

func (r *Report) writeText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	p := func(format string, args ...any) {
		fmt.Fprintf(tw, format+"\n", args...)
	}

	title := "Price series analysis"
	if r.Name != "" {
		title += ": " + r.Name
	}
	p("%s", title)
	p("%s", strings.Repeat("=", len(title)))
	if r.RunID != "" {
		p("Run:\t%s", r.RunID)
	}
	p("Generated:\t%s", r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	p("Observations:\t%d", r.Observations)

	if a := r.Stationarity; a != nil {
		p("")
		p("Augmented Dickey-Fuller (regression %s, %d lags)", a.Regression, a.Lags)
		p("  Statistic:\t%.4f", a.Statistic)
		p("  p-value:\t%.4f", a.PValue)
		for _, level := range []string{"1%", "5%", "10%"} {
			if v, ok := a.CriticalValues[level]; ok {
				p("  Critical %s:\t%.4f", level, v)
			}
		}
		p("  Verdict:\t%s at %g", a.Verdict, a.Significance)
	}
	p("Differencing order d:\t%d", r.D)

	if m := r.Model; m != nil {
		p("")
		p("Model: %s", m.Order)
		writeCoeffs(p, "ar", m.AR)
		writeCoeffs(p, "ma", m.MA)
		writeCoeffs(p, "sar", m.SAR)
		writeCoeffs(p, "sma", m.SMA)
		if m.HasIntercept {
			p("  intercept\t%.6f", m.Intercept)
		}
		p("  sigma^2\t%.6f", m.Variance)
		p("  Log likelihood:\t%.4f", m.LogLik)
		p("  AIC:\t%.4f", m.AIC)
		if m.AICc != nil {
			p("  AICc:\t%.4f", *m.AICc)
		}
		p("  BIC:\t%.4f", m.BIC)
	}

	if d := r.Diagnostics; d != nil {
		p("")
		p("Residual diagnostics")
		if lb := d.LjungBox; lb != nil {
			p("  Ljung-Box Q(%d):\t%.4f (p=%.4f)", lb.Lags, lb.Statistic, lb.PValue)
		}
		if d.DurbinWatson != nil {
			p("  Durbin-Watson:\t%.4f", *d.DurbinWatson)
		}
	}

	if s := r.Search; s != nil {
		p("")
		p("Search")
		if s.Value != nil {
			p("  %s:\t%.4f", strings.ToUpper(s.Criterion), *s.Value)
		}
		p("  Models fitted:\t%d", s.ModelsEvaluated)
		p("  Models failed:\t%d", s.ModelsFailed)
		p("  Stopped:\t%s", s.StopReason)
	}

	if f := r.Forecast; f != nil {
		p("")
		p("Forecast (%d steps, %.0f%% interval)", f.Horizon, f.Confidence*100)
		for i := range f.Mean {
			label := fmt.Sprintf("t+%d", i+1)
			if i < len(f.Dates) {
				label = f.Dates[i].Format("2006-01-02")
			}
			p("  %s\t%.4f\t[%.4f, %.4f]", label, f.Mean[i], f.Lower[i], f.Upper[i])
		}
	}

	if b := r.Backtest; b != nil {
		p("")
		p("Backtest (train %d, test %d)", b.Train, b.Test)
		p("  RMSE:\t%.4f", b.RMSE)
		p("  MAE:\t%.4f", b.MAE)
		p("  MAPE:\t%.2f%%", b.MAPE)
	}

	return tw.Flush()
}

func writeCoeffs(p func(string, ...any), name string, coeffs []float64) {
	for i, c := range coeffs {
		p("  %s%d\t%.6f", name, i+1, c)
	}
}
