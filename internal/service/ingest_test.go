package service

import (
	"context"
	"testing"

	_ "github.com/Strob0t/CodeForge/internal/adapter/jsonmetrics"
	"github.com/Strob0t/CodeForge/internal/domain/benchmark"
	"github.com/Strob0t/CodeForge/internal/domain/report"
	"github.com/Strob0t/CodeForge/internal/domain/testbed"
	"github.com/Strob0t/CodeForge/internal/domain/threshold"
)

func newTestIngestService(store *mockStore) *IngestService {
	branches := NewBranchService(store)
	detector := NewDetectorService(store, nil)
	notifications := NewNotificationService(nil, nil)
	return NewIngestService(store, branches, detector, 4, notifications, nil)
}

func TestIngestService_Ingest_CreatesBranchTestbedAndMetrics(t *testing.T) {
	store := newMockStore()
	svc := newTestIngestService(store)
	ctx := context.Background()

	req := report.IngestRequest{
		ProjectRef:    "proj-1",
		BranchNameID:  "main",
		TestbedNameID: "ci-runner",
		Adapter:       "json",
		Results: []string{
			`{"my_benchmark": {"latency": {"value": 42.5}}}`,
		},
	}

	result, err := svc.Ingest(ctx, "proj-1", "user-1", req)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if result.Report.ID == "" {
		t.Fatal("expected a persisted report id")
	}

	benchmarks, err := store.ListBenchmarksByProject(ctx, "proj-1")
	if err != nil {
		t.Fatalf("list benchmarks: %v", err)
	}
	if len(benchmarks) != 1 || benchmarks[0].Name != "my_benchmark" {
		t.Fatalf("expected benchmark my_benchmark to be created on demand, got %+v", benchmarks)
	}

	measures, err := store.ListMeasuresByProject(ctx, "proj-1")
	if err != nil {
		t.Fatalf("list measures: %v", err)
	}
	if len(measures) != 1 || measures[0].Name != "latency" {
		t.Fatalf("expected measure latency to be created on demand, got %+v", measures)
	}

	metrics, err := store.ListMetricsByReport(ctx, result.Report.ID)
	if err != nil {
		t.Fatalf("list metrics: %v", err)
	}
	if len(metrics) != 1 {
		t.Fatalf("got %d metrics, want 1", len(metrics))
	}
	if metrics[0].Value != 42.5 {
		t.Errorf("metric value = %v, want 42.5", metrics[0].Value)
	}
	if metrics[0].ReportBenchmarkID == "" {
		t.Error("metric should carry its parent report_benchmark_id")
	}
}

func TestIngestService_Ingest_RejectsUnknownAdapter(t *testing.T) {
	store := newMockStore()
	svc := newTestIngestService(store)
	ctx := context.Background()

	req := report.IngestRequest{
		BranchNameID:  "main",
		TestbedNameID: "ci-runner",
		Adapter:       "does-not-exist",
		Results:       []string{`{}`},
	}
	if _, err := svc.Ingest(ctx, "proj-1", "user-1", req); err == nil {
		t.Fatal("expected an error for an unregistered adapter")
	}
}

func TestIngestService_Ingest_AbortsOnMalformedBlobBeforePersisting(t *testing.T) {
	store := newMockStore()
	svc := newTestIngestService(store)
	ctx := context.Background()

	req := report.IngestRequest{
		BranchNameID:  "main",
		TestbedNameID: "ci-runner",
		Adapter:       "json",
		Results:       []string{"not json at all"},
	}
	if _, err := svc.Ingest(ctx, "proj-1", "user-1", req); err == nil {
		t.Fatal("expected a parse error for a malformed result blob")
	}

	reports, err := store.ListReportsByProject(ctx, "proj-1", 10)
	if err != nil {
		t.Fatalf("list reports: %v", err)
	}
	if len(reports) != 0 {
		t.Fatal("a parse failure must not persist anything")
	}
}

func TestIngestService_Ingest_RaisesAlertWhenThresholdBreached(t *testing.T) {
	store := newMockStore()
	branches := NewBranchService(store)
	ctx := context.Background()

	b, _, err := branches.ResolveForReport(ctx, "proj-1", "main", nil)
	if err != nil {
		t.Fatalf("resolve branch: %v", err)
	}

	tb, err := store.CreateTestbed(ctx, "proj-1", testbed.CreateRequest{Name: "ci-runner", Slug: "ci-runner"})
	if err != nil {
		t.Fatalf("create testbed: %v", err)
	}
	if _, err := store.CreateBenchmark(ctx, "proj-1", benchmark.CreateRequest{Name: "my_benchmark", Slug: "my_benchmark"}); err != nil {
		t.Fatalf("create benchmark: %v", err)
	}
	measure, err := store.CreateMeasure(ctx, "proj-1", benchmark.CreateRequest{Name: "latency", Slug: "latency"})
	if err != nil {
		t.Fatalf("create measure: %v", err)
	}

	thresholds := NewThresholdService(store)
	lower := 0.0
	upper := 100.0
	thReq := threshold.CreateRequest{
		BranchNameID:  "main",
		TestbedNameID: tb.Name,
		MeasureNameID: measure.Name,
		Test:          threshold.TestStatic,
		LowerBoundary: &lower,
		UpperBoundary: &upper,
	}
	if _, err := thresholds.Upsert(ctx, "proj-1", b.ID, tb.ID, measure.ID, thReq); err != nil {
		t.Fatalf("upsert threshold: %v", err)
	}

	svc := newTestIngestService(store)
	req := report.IngestRequest{
		BranchNameID:  "main",
		TestbedNameID: "ci-runner",
		Adapter:       "json",
		Results: []string{
			`{"my_benchmark": {"latency": {"value": 999.0}}}`,
		},
	}

	result, err := svc.Ingest(ctx, "proj-1", "user-1", req)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(result.Alerts) != 1 {
		t.Fatalf("got %d alerts, want 1", len(result.Alerts))
	}
}
