// Package stats computes per-item price summaries and confidence scores
// from historical unit prices.
package stats

import (
	"fmt"
	"math"
)

// meanFloor bounds the divisor when computing the coefficient of variation
// so an all-zero price series yields a large finite CV instead of dividing
// by zero.
const meanFloor = 1e-6

// DefaultSinglePointCV is the coefficient of variation charged to an item
// backed by exactly one historical price. A lone observation has no
// measurable variance but should not collect full confidence credit either.
const DefaultSinglePointCV = 0.25

// Options tunes summary computation.
type Options struct {
	// SinglePointCV is the coefficient of variation assigned when exactly
	// one price survives filtering. Zero treats a single point as
	// zero-variance (maximal credit for its sample size).
	SinglePointCV float64
}

// DefaultOptions returns the standard option set.
func DefaultOptions() Options {
	return Options{SinglePointCV: DefaultSinglePointCV}
}

// Summary holds the computed statistics for a single pay item.
//
// CoefVar is +Inf when undefined (no data, or the mean collapsed to zero);
// it is never silently reported as 0 in that case.
type Summary struct {
	DataPoints int
	Mean       float64
	StdDev     float64
	CoefVar    float64
	Confidence float64
}

// Compute filters prices to finite non-negative values and returns their
// summary. It never panics: n=0, n=1, and all-identical inputs are ordinary
// results, not errors.
func Compute(prices []float64, opts Options) Summary {
	vals := filter(prices)
	n := len(vals)
	if n == 0 {
		return Summary{DataPoints: 0, CoefVar: math.Inf(1)}
	}

	mean := mean(vals)
	sd := stdDev(vals, mean)

	var cv float64
	switch {
	case n == 1:
		cv = opts.SinglePointCV
	default:
		cv = sd / math.Max(math.Abs(mean), meanFloor)
	}

	return Summary{
		DataPoints: n,
		Mean:       mean,
		StdDev:     sd,
		CoefVar:    cv,
		Confidence: Confidence(n, cv),
	}
}

// Confidence maps a sample count and coefficient of variation to [0, 1]:
//
//	(1 - e^(-n/30)) * 1/(1+cv)
//
// Zero when n <= 0 or cv is not finite. Monotonically non-decreasing in n
// for a fixed cv.
func Confidence(n int, cv float64) float64 {
	if n <= 0 || math.IsNaN(cv) || math.IsInf(cv, 0) || cv < 0 {
		return 0
	}
	return (1 - math.Exp(-float64(n)/30)) * (1 / (1 + cv))
}

// filter drops non-finite and negative values. DataPoints reflects the
// post-filter count, never the raw input length.
func filter(prices []float64) []float64 {
	out := make([]float64, 0, len(prices))
	for _, p := range prices {
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			continue
		}
		out = append(out, p)
	}
	return out
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// stdDev returns the sample standard deviation (ddof=1); 0 when n <= 1.
// Two-pass over the already-computed mean keeps it stable for large n.
func stdDev(vals []float64, mean float64) float64 {
	n := len(vals)
	if n <= 1 {
		return 0
	}
	var ss float64
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

// FormatStdDev renders a standard deviation for artifact cells. Zero-data
// items show "N/A".
func (s Summary) FormatStdDev() string {
	if s.DataPoints == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", s.StdDev)
}

// FormatCoefVar renders a coefficient of variation, "N/A" when undefined.
func (s Summary) FormatCoefVar() string {
	if math.IsNaN(s.CoefVar) || math.IsInf(s.CoefVar, 0) {
		return "N/A"
	}
	return fmt.Sprintf("%.4f", s.CoefVar)
}
