package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	cfotel "github.com/Strob0t/CodeForge/internal/adapter/otel"
	"github.com/Strob0t/CodeForge/internal/domain/bcherr"
	"github.com/Strob0t/CodeForge/internal/domain/branch"
	"github.com/Strob0t/CodeForge/internal/domain/report"
	"github.com/Strob0t/CodeForge/internal/domain/testbed"
	"github.com/Strob0t/CodeForge/internal/domain/threshold"
	"github.com/Strob0t/CodeForge/internal/port/database"
	"github.com/Strob0t/CodeForge/internal/port/messagequeue"
	"github.com/Strob0t/CodeForge/internal/port/metricsadapter"
)

// IngestService orchestrates report ingestion, spec.md §4.6: resolve
// branch and testbed, allocate a version, parse each result blob
// through the selected adapter, persist everything transactionally,
// then run the detector over every (benchmark, measure) pair the
// report touched.
type IngestService struct {
	store                database.Store
	branches             *BranchService
	detector             *DetectorService
	detectorConcurrency  int
	notifications        *NotificationService
	log                  *slog.Logger
	metrics              *cfotel.Metrics
}

// NewIngestService creates a new IngestService. detectorConcurrency
// bounds how many (benchmark, measure) pairs are evaluated by the
// detector concurrently for one report (SPEC_FULL.md §5); 0 means
// unbounded. notifications may be nil to disable alert fanout.
func NewIngestService(store database.Store, branches *BranchService, detector *DetectorService, detectorConcurrency int, notifications *NotificationService, log *slog.Logger) *IngestService {
	if log == nil {
		log = slog.Default()
	}
	return &IngestService{store: store, branches: branches, detector: detector, detectorConcurrency: detectorConcurrency, notifications: notifications, log: log}
}

// WithMetrics attaches OTEL instruments for reports/alerts counters. Nil
// disables metric recording.
func (s *IngestService) WithMetrics(m *cfotel.Metrics) *IngestService {
	s.metrics = m
	return s
}

// IngestResult is the ingested Report plus the Alerts its metrics
// raised (spec.md §4.6 step 7: "return the JSON report including
// embedded alert list").
type IngestResult struct {
	Report *report.Report
	Alerts []threshold.Alert
}

// pendingMetric is a metric awaiting persistence, still tied to the
// benchmark it belongs to so the detector can be pointed at the
// right (benchmark, measure) pair after the transaction commits.
type pendingMetric struct {
	rbIndex     int
	benchmarkID string
	measureID   string
	value       float64
}

// Ingest runs the full pipeline of spec.md §4.6 steps 2-7. The caller
// (the HTTP adapter) is responsible for step 1: resolving project_ref
// and checking the caller holds create_report on it.
func (s *IngestService) Ingest(ctx context.Context, projectID, userID string, req report.IngestRequest) (result *IngestResult, err error) {
	if err := req.Validate(); err != nil {
		return nil, bcherr.BadRequest(err.Error())
	}

	var startPoint *branch.StartPoint
	if req.StartPointBranch != "" {
		startPoint = &branch.StartPoint{
			Branch:          req.StartPointBranch,
			Hash:            req.StartPointHash,
			MaxVersions:     req.MaxVersions,
			CloneThresholds: req.CloneThresholds,
		}
	}

	b, head, err := s.branches.ResolveForReport(ctx, projectID, req.BranchNameID, startPoint)
	if err != nil {
		return nil, fmt.Errorf("resolve branch: %w", err)
	}

	tb, err := s.store.QueryTestbedFromNameID(ctx, projectID, req.TestbedNameID)
	if err != nil {
		return nil, fmt.Errorf("resolve testbed: %w", err)
	}

	ctx, span := cfotel.StartIngestSpan(ctx, projectID, b.ID, tb.ID)
	start := time.Now()
	defer func() {
		span.End()
		if s.metrics == nil {
			return
		}
		s.metrics.IngestDuration.Record(ctx, time.Since(start).Seconds())
		if err != nil {
			s.metrics.ReportsFailed.Add(ctx, 1)
		} else {
			s.metrics.ReportsIngested.Add(ctx, 1)
		}
	}()

	version, err := s.resolveVersion(ctx, projectID, head.ID, req.Hash)
	if err != nil {
		return nil, fmt.Errorf("resolve version: %w", err)
	}

	adapter, err := metricsadapter.Get(req.Adapter)
	if err != nil {
		return nil, bcherr.BadRequest(err.Error())
	}

	// Parse every result blob up front: an adapter-parse failure aborts
	// the whole ingestion with nothing persisted (spec.md §4.6 failure
	// policy), so this must happen before any store writes.
	parsed := make([]metricsadapter.Results, len(req.Results))
	for i, blob := range req.Results {
		results, err := adapter.Parse(blob, req.Settings)
		if err != nil {
			return nil, bcherr.BadRequest(fmt.Sprintf("adapter %q failed to parse result %d: %s", req.Adapter, i, err))
		}
		parsed[i] = results
	}

	var reportBenchmarks []report.ReportBenchmark
	var pending []pendingMetric

	for iteration, results := range parsed {
		for benchName, measures := range results {
			bmk, err := s.store.QueryBenchmarkFromNameID(ctx, projectID, benchName)
			if err != nil {
				return nil, fmt.Errorf("resolve benchmark %q: %w", benchName, err)
			}

			rbIndex := len(reportBenchmarks)
			rb := report.ReportBenchmark{BenchmarkID: bmk.ID, Iteration: iteration}

			for measureName, m := range measures {
				measure, err := s.store.QueryMeasureFromNameID(ctx, projectID, measureName)
				if err != nil {
					return nil, fmt.Errorf("resolve measure %q: %w", measureName, err)
				}
				metric := report.Metric{
					MeasureID:  measure.ID,
					Value:      m.Value,
					LowerValue: m.LowerValue,
					UpperValue: m.UpperValue,
				}
				if err := metric.Valid(); err != nil {
					return nil, bcherr.BadRequest(err.Error())
				}
				rb.Metrics = append(rb.Metrics, metric)
				pending = append(pending, pendingMetric{
					rbIndex:     rbIndex,
					benchmarkID: bmk.ID,
					measureID:   measure.ID,
					value:       m.Value,
				})
			}
			reportBenchmarks = append(reportBenchmarks, rb)
		}
	}

	r := &report.Report{
		ProjectID: projectID,
		UserID:    userID,
		TestbedID: tb.ID,
		HeadID:    head.ID,
		VersionID: version.ID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Adapter:   req.Adapter,
	}

	// CreateReport persists the report, its ReportBenchmarks, and their
	// Metrics in a single transaction (database constraint violations
	// abort everything, per spec.md §4.6 failure policy).
	if err := s.store.CreateReport(ctx, r, reportBenchmarks); err != nil {
		return nil, fmt.Errorf("persist report: %w", err)
	}
	if s.metrics != nil {
		s.metrics.MetricsReceived.Add(ctx, int64(len(pending)))
	}

	// Metric IDs are now populated in-place on reportBenchmarks[*].Metrics;
	// pair each pending entry with its persisted metric ID by position.
	metricIDs := make([]string, len(pending))
	idx := 0
	for _, rb := range reportBenchmarks {
		for _, m := range rb.Metrics {
			metricIDs[idx] = m.ID
			idx++
		}
	}

	alerts := s.runDetector(ctx, r, b, tb, head, pending, metricIDs)

	return &IngestResult{Report: r, Alerts: alerts}, nil
}

// resolveVersion implements spec.md §4.6 step 3: reuse the branch's
// latest version when hash matches it, otherwise allocate a new one.
func (s *IngestService) resolveVersion(ctx context.Context, projectID, headID, hash string) (*branch.Version, error) {
	if hash != "" {
		if latest, err := s.store.GetLatestHeadVersion(ctx, headID); err == nil && latest.Hash == hash {
			return latest, nil
		}
	}
	v := &branch.Version{ProjectID: projectID, Hash: hash}
	if err := s.store.CreateVersion(ctx, v); err != nil {
		return nil, err
	}
	hv := &branch.HeadVersion{HeadID: headID, VersionID: v.ID}
	if err := s.store.AttachHeadVersion(ctx, hv); err != nil {
		return nil, err
	}
	return v, nil
}

// runDetector evaluates the detector over every (benchmark, measure)
// pair touched by this report, bounded by s.detectorConcurrency
// concurrent evaluations (SPEC_FULL.md §5). A single pair's failure is
// logged and skipped, never aborting the others or the report itself
// (spec.md §4.6 failure policy).
func (s *IngestService) runDetector(ctx context.Context, r *report.Report, b *branch.Branch, tb *testbed.Testbed, head *branch.Head, pending []pendingMetric, metricIDs []string) []threshold.Alert {
	if s.detector == nil || len(pending) == 0 {
		return nil
	}

	var alerts []threshold.Alert
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	if s.detectorConcurrency > 0 {
		g.SetLimit(s.detectorConcurrency)
	}

	for i, p := range pending {
		i, p := i, p
		g.Go(func() error {
			pairCtx, span := cfotel.StartDetectorSpan(gctx, p.benchmarkID, p.measureID)
			defer span.End()

			alert, err := s.detector.EvaluateMetric(pairCtx, r.ID, r.ProjectID, b.ID, tb.ID, p.benchmarkID, p.measureID, metricIDs[i], head.ID, p.value)
			if err != nil {
				s.log.Warn("detector evaluation failed", "error", err, "benchmark_id", p.benchmarkID, "measure_id", p.measureID)
				return nil // logged and skipped, never aborts the batch
			}
			if alert != nil {
				mu.Lock()
				alerts = append(alerts, *alert)
				mu.Unlock()
				if s.metrics != nil {
					s.metrics.AlertsRaised.Add(ctx, 1)
				}
				if s.notifications != nil {
					s.notifications.PublishAlert(ctx, messagequeue.AlertPayload{
						AlertID:     alert.ID,
						ReportID:    r.ID,
						ProjectID:   r.ProjectID,
						BoundaryID:  alert.BoundaryID,
						Side:        string(alert.Side),
						BenchmarkID: p.benchmarkID,
						MeasureID:   p.measureID,
					})
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	return alerts
}
