package valueobject

import "fmt"

// Boundary is a probability-like boundary parameter for the ZScore, TTest
// and LogNormal model kinds: open interval (0.5, 1.0).
type Boundary struct{ v float64 }

func ParseBoundary(v float64) (Boundary, error) {
	if !(v > 0.5 && v < 1.0) {
		return Boundary{}, fmt.Errorf("%w: boundary must be in (0.5, 1.0), got %v", ErrInvalidForm, v)
	}
	return Boundary{v: v}, nil
}
func (b Boundary) Float64() float64 { return b.v }

// NormalBoundary is an alias contract for Boundary, used by the ZScore,
// TTest and LogNormal model kinds: in (0.5, 1.0).
type NormalBoundary = Boundary

// ParseNormalBoundary is retained as a distinctly-named constructor so
// callers reading the Model for a ZScore threshold can spell out intent.
func ParseNormalBoundary(v float64) (NormalBoundary, error) { return ParseBoundary(v) }

// PercentageBoundary is a non-negative percentage parameter (0 permitted:
// limits collapse onto the baseline).
type PercentageBoundary struct{ v float64 }

func ParsePercentageBoundary(v float64) (PercentageBoundary, error) {
	if !(v >= 0) {
		return PercentageBoundary{}, fmt.Errorf("%w: percentage boundary must be >= 0, got %v", ErrInvalidForm, v)
	}
	return PercentageBoundary{v: v}, nil
}
func (b PercentageBoundary) Float64() float64 { return b.v }

// IqrBoundary is a non-negative IQR multiplier (k in the Iqr/DeltaIqr models).
type IqrBoundary struct{ v float64 }

func ParseIqrBoundary(v float64) (IqrBoundary, error) {
	if !(v >= 0) {
		return IqrBoundary{}, fmt.Errorf("%w: IQR boundary must be >= 0, got %v", ErrInvalidForm, v)
	}
	return IqrBoundary{v: v}, nil
}
func (b IqrBoundary) Float64() float64 { return b.v }

// SampleSize is a historical-data sample count, minimum 2 (a single point
// yields no variance and cannot fit any of the statistical models).
type SampleSize struct{ v int }

func ParseSampleSize(v int) (SampleSize, error) {
	if v < 2 {
		return SampleSize{}, fmt.Errorf("%w: sample size must be >= 2, got %d", ErrInvalidForm, v)
	}
	return SampleSize{v: v}, nil
}
func (s SampleSize) Int() int { return s.v }

// Window is a rolling lookback window expressed in seconds, strictly positive.
type Window struct{ v int64 }

func ParseWindow(seconds int64) (Window, error) {
	if seconds <= 0 {
		return Window{}, fmt.Errorf("%w: window must be > 0 seconds, got %d", ErrInvalidForm, seconds)
	}
	return Window{v: seconds}, nil
}
func (w Window) Seconds() int64 { return w.v }
