// Package stats implements the small set of pure statistical functions the
// threshold detector needs: mean, standard deviation, type-7 quantile
// interpolation, the normal inverse CDF (Acklam's approximation), and the
// Student's t inverse CDF. It is intentionally standard-library-only
// (math); see DESIGN.md for why no third-party numerics package is wired.
package stats

import (
	"errors"
	"math"
	"sort"
)

// ErrDegenerate is returned when a distribution cannot be constructed from
// the supplied data (too few points, non-finite or zero variance).
var ErrDegenerate = errors.New("stats: degenerate distribution")

// Mean returns the arithmetic mean of data. Panics are never raised; callers
// must ensure len(data) > 0 (this package's callers always check sample
// size against min_sample_size first).
func Mean(data []float64) float64 {
	var sum float64
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// StdDev returns the sample standard deviation (Bessel-corrected, n-1) of
// data given its precomputed mean.
func StdDev(data []float64, mean float64) float64 {
	if len(data) < 2 {
		return 0
	}
	var sumSq float64
	for _, v := range data {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(data)-1))
}

// MeanStdDev is a convenience wrapper returning both moments, and
// ErrDegenerate if the result is non-finite or the standard deviation is
// zero (a model built on it would divide by zero downstream).
func MeanStdDev(data []float64) (mean, stddev float64, err error) {
	if len(data) == 0 {
		return 0, 0, ErrDegenerate
	}
	mean = Mean(data)
	stddev = StdDev(data, mean)
	if !isFinite(mean) || !isFinite(stddev) || stddev == 0 {
		return mean, stddev, ErrDegenerate
	}
	return mean, stddev, nil
}

// Quantile computes the q-th quantile (0 <= q <= 1) of data using linear
// interpolation between closest ranks, R's type 7 (the default for most
// statistical packages, and the one spec.md names for quartiles). data is
// copied and sorted; the caller's slice is not mutated.
func Quantile(data []float64, q float64) float64 {
	n := len(data)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return data[0]
	}
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)

	h := (float64(n) - 1) * q
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	if lo == hi {
		return sorted[lo]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
