package service

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/Strob0t/CodeForge/internal/domain/threshold"
	"github.com/Strob0t/CodeForge/internal/port/database"
	"github.com/Strob0t/CodeForge/internal/stats"
)

// maxWindowSeconds bounds how far back a threshold's rolling window can
// reach, guarding both the time.Duration multiplication in EvaluateMetric
// against int64 overflow and the resulting since-time against underflowing
// below the zero time.
const maxWindowSeconds int64 = 5 * 365 * 24 * 60 * 60

// DetectorService implements the threshold detector of spec.md §4.8:
// for a metric newly recorded against a (branch, testbed, measure)
// triple with an active threshold, fit the bound model's statistical
// test against historical data and flag an outlier.
type DetectorService struct {
	store database.Store
	log   *slog.Logger
}

// NewDetectorService creates a new DetectorService.
func NewDetectorService(store database.Store, log *slog.Logger) *DetectorService {
	if log == nil {
		log = slog.Default()
	}
	return &DetectorService{store: store, log: log}
}

// EvaluateMetric runs the detector for one metric against the
// threshold bound to (projectID, branchID, testbedID, metric's
// measure), per spec.md §4.8 steps 1-6. It returns the created Alert,
// or nil when the metric is not an outlier (or no threshold is bound,
// or the sample is too small to evaluate). Errors here are meant to be
// logged and skipped by the caller, not propagated as ingestion
// failures (spec.md §4.6 failure policy).
func (d *DetectorService) EvaluateMetric(ctx context.Context, reportID, projectID, branchID, testbedID, benchmarkID, measureID, metricID, headID string, value float64) (*threshold.Alert, error) {
	th, model, err := d.store.GetThreshold(ctx, projectID, branchID, testbedID, measureID)
	if err != nil {
		return nil, nil // no active threshold bound to this triple
	}

	var since time.Time
	if model.WindowSeconds > 0 {
		windowSeconds := model.WindowSeconds
		if windowSeconds > maxWindowSeconds {
			d.log.Warn("threshold window exceeds maximum, clamping",
				"window_seconds", windowSeconds, "max_window_seconds", maxWindowSeconds)
			windowSeconds = maxWindowSeconds
		}
		since = time.Now().UTC().Add(-time.Duration(windowSeconds) * time.Second)
		if since.Before(time.Time{}) {
			d.log.Warn("threshold window underflowed the zero time, ignoring lower bound",
				"window_seconds", windowSeconds)
			since = time.Time{}
		}
	}
	limit := model.MaxSampleSize
	if limit <= 0 {
		limit = 10000
	}

	data, err := d.store.HistoricalMetrics(ctx, headID, benchmarkID, measureID, since, limit)
	if err != nil {
		return nil, err
	}

	boundary := &threshold.Boundary{
		MetricID:    metricID,
		ThresholdID: th.ID,
		ModelID:     model.ID,
	}

	if model.MinSampleSize > 0 && len(data) < model.MinSampleSize {
		if err := d.store.CreateBoundary(ctx, boundary); err != nil {
			return nil, err
		}
		return nil, nil
	}

	baseline, lower, upper, ok := fitModel(model, data)
	if ok {
		boundary.Baseline = &baseline
		boundary.LowerLimit = lower
		boundary.UpperLimit = upper
	}
	if err := boundary.Valid(); err != nil {
		d.log.Warn("detector produced invalid boundary", "error", err, "metric_id", metricID)
		boundary.LowerLimit, boundary.UpperLimit = nil, nil
	}
	if err := d.store.CreateBoundary(ctx, boundary); err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	side, alerting := outlierSide(value, boundary.LowerLimit, boundary.UpperLimit)
	if !alerting {
		return nil, nil
	}

	alert := &threshold.Alert{
		ReportID:   reportID,
		BoundaryID: boundary.ID,
		Side:       side,
		Status:     threshold.StatusActive,
	}
	if err := d.store.CreateAlert(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// fitModel dispatches on the model's test kind and returns the
// baseline and limits, per spec.md §4.8 step 3. ok is false when the
// distribution is degenerate and the boundary must carry null limits.
func fitModel(model *threshold.Model, data []float64) (baseline float64, lower, upper *float64, ok bool) {
	switch model.Test {
	case threshold.TestStatic:
		return 0, model.LowerBoundary, model.UpperBoundary, model.LowerBoundary != nil || model.UpperBoundary != nil

	case threshold.TestPercentage:
		if len(data) == 0 || model.Percentage == nil {
			return 0, nil, nil, false
		}
		baseline = stats.Mean(data)
		p := *model.Percentage
		lo := baseline * (1 - p)
		up := baseline * (1 + p)
		return baseline, &lo, &up, true

	case threshold.TestZScore:
		if model.ZScore == nil {
			return 0, nil, nil, false
		}
		mean, sd, err := stats.MeanStdDev(data)
		if err != nil {
			return 0, nil, nil, false
		}
		zq := stats.NormalInverseCDF(*model.ZScore)
		if math.IsNaN(zq) {
			return 0, nil, nil, false
		}
		lo := mean - zq*sd
		up := mean + zq*sd
		return mean, &lo, &up, true

	case threshold.TestTTest:
		if model.TValue == nil || len(data) < 2 {
			return 0, nil, nil, false
		}
		mean, sd, err := stats.MeanStdDev(data)
		if err != nil {
			return 0, nil, nil, false
		}
		df := float64(len(data) - 1)
		tq := stats.StudentTInverseCDF(*model.TValue, df)
		if math.IsNaN(tq) {
			return 0, nil, nil, false
		}
		scale := sd / math.Sqrt(float64(len(data)))
		lo := mean - tq*scale
		up := mean + tq*scale
		return mean, &lo, &up, true

	case threshold.TestLogNormal:
		if model.LogNormalQuantile == nil {
			return 0, nil, nil, false
		}
		logged := make([]float64, len(data))
		for i, v := range data {
			if v <= 0 {
				return 0, nil, nil, false
			}
			logged[i] = math.Log(v)
		}
		mu, sigma, err := stats.MeanStdDev(logged)
		if err != nil {
			return 0, nil, nil, false
		}
		zq := stats.NormalInverseCDF(*model.LogNormalQuantile)
		if math.IsNaN(zq) {
			return 0, nil, nil, false
		}
		lo := math.Exp(mu - zq*sigma)
		up := math.Exp(mu + zq*sigma)
		return math.Exp(mu), &lo, &up, true

	case threshold.TestIqr:
		if model.IqrMultiplier == nil || len(data) == 0 {
			return 0, nil, nil, false
		}
		q1 := stats.Quantile(data, 0.25)
		q3 := stats.Quantile(data, 0.75)
		iqr := q3 - q1
		k := *model.IqrMultiplier
		lo := q1 - k*iqr
		up := q3 + k*iqr
		return stats.Mean(data), &lo, &up, true

	case threshold.TestDeltaIqr:
		if model.IqrMultiplier == nil || len(data) == 0 {
			return 0, nil, nil, false
		}
		q1 := stats.Quantile(data, 0.25)
		q3 := stats.Quantile(data, 0.75)
		iqr := q3 - q1
		k := *model.IqrMultiplier
		median := stats.Quantile(data, 0.5)
		lo := median - k*iqr
		up := median + k*iqr
		return median, &lo, &up, true

	default:
		return 0, nil, nil, false
	}
}

// outlierSide implements spec.md §4.8 step 4: lower_limit breached
// takes precedence, then upper_limit.
func outlierSide(value float64, lower, upper *float64) (threshold.Side, bool) {
	if lower != nil && value < *lower {
		return threshold.SideLower, true
	}
	if upper != nil && value > *upper {
		return threshold.SideUpper, true
	}
	return "", false
}
