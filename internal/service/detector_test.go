package service

import (
	"context"
	"math"
	"testing"

	"github.com/Strob0t/CodeForge/internal/domain/report"
	"github.com/Strob0t/CodeForge/internal/domain/threshold"
)

// seedThreshold upserts a Threshold+Model bound to (branchID, testbedID,
// measureID) so DetectorService.EvaluateMetric's GetThreshold lookup
// finds it.
func seedThreshold(t *testing.T, store *mockStore, projectID, branchID, testbedID, measureID string, req threshold.CreateRequest) {
	t.Helper()
	if _, err := store.UpsertThreshold(context.Background(), projectID, branchID, testbedID, measureID, req); err != nil {
		t.Fatalf("seed threshold: %v", err)
	}
}

// seedHistory persists one Report carrying one Metric per value, all
// against the same (benchmark, measure) pair, so DetectorService's
// HistoricalMetrics lookup finds them.
func seedHistory(t *testing.T, store *mockStore, projectID, benchmarkID, measureID string, values []float64) {
	t.Helper()
	ctx := context.Background()
	for _, v := range values {
		r := &report.Report{ProjectID: projectID}
		rb := report.ReportBenchmark{
			BenchmarkID: benchmarkID,
			Metrics:     []report.Metric{{MeasureID: measureID, Value: v}},
		}
		if err := store.CreateReport(ctx, r, []report.ReportBenchmark{rb}); err != nil {
			t.Fatalf("seed history: %v", err)
		}
	}
}

func TestDetectorService_NoThresholdBoundIsNoop(t *testing.T) {
	store := newMockStore()
	det := NewDetectorService(store, nil)

	alert, err := det.EvaluateMetric(context.Background(), "rep-1", "proj-1", "branch-1", "tb-1", "bmk-1", "measure-1", "metric-1", "head-1", 42.0)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if alert != nil {
		t.Fatal("expected no alert when no threshold is bound")
	}
}

func TestDetectorService_StaticThreshold_Outlier(t *testing.T) {
	store := newMockStore()
	det := NewDetectorService(store, nil)
	ctx := context.Background()

	lower := 0.0
	upper := 100.0
	seedThreshold(t, store, "proj-1", "branch-1", "tb-1", "measure-1", threshold.CreateRequest{
		BranchNameID:  "main",
		TestbedNameID: "tb-1",
		MeasureNameID: "measure-1",
		Test:          threshold.TestStatic,
		LowerBoundary: &lower,
		UpperBoundary: &upper,
	})

	alert, err := det.EvaluateMetric(ctx, "rep-1", "proj-1", "branch-1", "tb-1", "bmk-1", "measure-1", "metric-1", "head-1", 150.0)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if alert == nil {
		t.Fatal("expected an alert for a value above the static upper boundary")
	}
	if alert.Side != threshold.SideUpper {
		t.Errorf("side = %q, want upper", alert.Side)
	}
}

func TestDetectorService_StaticThreshold_WithinBounds(t *testing.T) {
	store := newMockStore()
	det := NewDetectorService(store, nil)
	ctx := context.Background()

	lower := 0.0
	upper := 100.0
	seedThreshold(t, store, "proj-1", "branch-1", "tb-1", "measure-1", threshold.CreateRequest{
		BranchNameID:  "main",
		TestbedNameID: "tb-1",
		MeasureNameID: "measure-1",
		Test:          threshold.TestStatic,
		LowerBoundary: &lower,
		UpperBoundary: &upper,
	})

	alert, err := det.EvaluateMetric(ctx, "rep-1", "proj-1", "branch-1", "tb-1", "bmk-1", "measure-1", "metric-1", "head-1", 50.0)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if alert != nil {
		t.Fatal("value within bounds should not raise an alert")
	}
}

func TestDetectorService_SampleTooSmallSkipsEvaluation(t *testing.T) {
	store := newMockStore()
	det := NewDetectorService(store, nil)
	ctx := context.Background()

	pct := 0.1
	req := threshold.CreateRequest{
		BranchNameID:  "main",
		TestbedNameID: "tb-1",
		MeasureNameID: "measure-1",
		Test:          threshold.TestPercentage,
		Percentage:    &pct,
		MinSampleSize: 5,
	}
	seedThreshold(t, store, "proj-1", "branch-1", "tb-1", "measure-1", req)
	seedHistory(t, store, "proj-1", "bmk-1", "measure-1", []float64{10, 11})

	alert, err := det.EvaluateMetric(ctx, "rep-1", "proj-1", "branch-1", "tb-1", "bmk-1", "measure-1", "metric-1", "head-1", 500.0)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if alert != nil {
		t.Fatal("expected no alert when sample is below min_sample_size")
	}

	boundary, err := store.GetBoundaryByMetric(ctx, "metric-1")
	if err != nil {
		t.Fatalf("get boundary: %v", err)
	}
	if boundary.Baseline != nil {
		t.Error("boundary should record a null baseline when skipped for sample size")
	}
}

func TestDetectorService_PercentageThreshold_Outlier(t *testing.T) {
	store := newMockStore()
	det := NewDetectorService(store, nil)
	ctx := context.Background()

	pct := 0.1
	seedThreshold(t, store, "proj-1", "branch-1", "tb-1", "measure-1", threshold.CreateRequest{
		BranchNameID:  "main",
		TestbedNameID: "tb-1",
		MeasureNameID: "measure-1",
		Test:          threshold.TestPercentage,
		Percentage:    &pct,
	})
	seedHistory(t, store, "proj-1", "bmk-1", "measure-1", []float64{100, 100, 100, 100})

	alert, err := det.EvaluateMetric(ctx, "rep-1", "proj-1", "branch-1", "tb-1", "bmk-1", "measure-1", "metric-1", "head-1", 200.0)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if alert == nil {
		t.Fatal("expected an alert: 200 is 100% above a baseline of 100 with a 10% band")
	}
}

func TestDetectorService_IqrThreshold(t *testing.T) {
	store := newMockStore()
	det := NewDetectorService(store, nil)
	ctx := context.Background()

	mult := 1.5
	seedThreshold(t, store, "proj-1", "branch-1", "tb-1", "measure-1", threshold.CreateRequest{
		BranchNameID:  "main",
		TestbedNameID: "tb-1",
		MeasureNameID: "measure-1",
		Test:          threshold.TestIqr,
		IqrMultiplier: &mult,
	})
	seedHistory(t, store, "proj-1", "bmk-1", "measure-1", []float64{10, 12, 11, 13, 12, 11, 10, 14})

	alert, err := det.EvaluateMetric(ctx, "rep-1", "proj-1", "branch-1", "tb-1", "bmk-1", "measure-1", "metric-1", "head-1", 1000.0)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if alert == nil {
		t.Fatal("expected an alert for a gross outlier against a tight IQR band")
	}
	if alert.Side != threshold.SideUpper {
		t.Errorf("side = %q, want upper", alert.Side)
	}
}

func TestDetectorService_OversizedWindowIsClampedNotOverflowed(t *testing.T) {
	store := newMockStore()
	det := NewDetectorService(store, nil)
	ctx := context.Background()

	lower := 0.0
	upper := 100.0
	// A window this large would overflow time.Duration when multiplied by
	// time.Second if left unclamped, producing a bogus `since` that could
	// filter out all history recorded "now". MinSampleSize makes the
	// detector skip the alert unless all three seeded values come back.
	seedThreshold(t, store, "proj-1", "branch-1", "tb-1", "measure-1", threshold.CreateRequest{
		BranchNameID:  "main",
		TestbedNameID: "tb-1",
		MeasureNameID: "measure-1",
		Test:          threshold.TestStatic,
		LowerBoundary: &lower,
		UpperBoundary: &upper,
		MinSampleSize: 3,
		WindowSeconds: math.MaxInt64,
	})
	seedHistory(t, store, "proj-1", "bmk-1", "measure-1", []float64{10, 20, 30})

	alert, err := det.EvaluateMetric(ctx, "rep-1", "proj-1", "branch-1", "tb-1", "bmk-1", "measure-1", "metric-1", "head-1", 150.0)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if alert == nil {
		t.Fatal("expected an alert: an overflowed window must not silently discard recent history")
	}
}
