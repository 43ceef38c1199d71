package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Strob0t/CodeForge/internal/domain/report"
)

// CreateReport persists a Report and all of its ReportBenchmarks and
// Metrics in a single transaction: spec.md §4.6 step 7 requires ingestion
// to be all-or-nothing, so a failure partway through never leaves a
// partial report visible to readers.
func (s *Store) CreateReport(ctx context.Context, r *report.Report, benchmarks []report.ReportBenchmark) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("create report: begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op once committed

	r.CreatedAt = time.Now().UTC()
	err = tx.QueryRow(ctx, `
		INSERT INTO reports (project_id, user_id, testbed_id, head_id, version_id, start_time, end_time, adapter, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, uuid`,
		r.ProjectID, r.UserID, r.TestbedID, r.HeadID, r.VersionID, r.StartTime, r.EndTime, r.Adapter, r.CreatedAt,
	).Scan(&r.ID, &r.UUID)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}

	for i := range benchmarks {
		rb := &benchmarks[i]
		rb.ReportID = r.ID
		if err := tx.QueryRow(ctx, `
			INSERT INTO report_benchmarks (report_id, benchmark_id, iteration)
			VALUES ($1, $2, $3) RETURNING id`,
			rb.ReportID, rb.BenchmarkID, rb.Iteration,
		).Scan(&rb.ID); err != nil {
			return fmt.Errorf("create report benchmark: %w", err)
		}

		for j := range rb.Metrics {
			m := &rb.Metrics[j]
			m.ReportBenchmarkID = rb.ID
			if err := m.Valid(); err != nil {
				return fmt.Errorf("create report: %w", err)
			}
			m.CreatedAt = r.CreatedAt
			if err := tx.QueryRow(ctx, `
				INSERT INTO metrics (report_benchmark_id, measure_id, value, lower_value, upper_value, created_at)
				VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, uuid`,
				m.ReportBenchmarkID, m.MeasureID, m.Value, m.LowerValue, m.UpperValue, m.CreatedAt,
			).Scan(&m.ID, &m.UUID); err != nil {
				return fmt.Errorf("create metric: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("create report: commit tx: %w", err)
	}
	return nil
}

func (s *Store) GetReport(ctx context.Context, id string) (*report.Report, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, uuid, project_id, user_id, testbed_id, head_id, version_id, start_time, end_time, adapter, created_at
		 FROM reports WHERE id = $1`, id)
	r, err := scanReport(row)
	if err != nil {
		return nil, notFoundWrap(err, "get report %s", id)
	}
	return &r, nil
}

func (s *Store) ListReportsByProject(ctx context.Context, projectID string, limit int) ([]report.Report, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, uuid, project_id, user_id, testbed_id, head_id, version_id, start_time, end_time, adapter, created_at
		 FROM reports WHERE project_id = $1 ORDER BY created_at DESC LIMIT $2`, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []report.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (s *Store) DeleteReport(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM reports WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete report %s", id)
}

func (s *Store) ListMetricsByReport(ctx context.Context, reportID string) ([]report.Metric, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT m.id, m.uuid, m.report_benchmark_id, m.measure_id, m.value, m.lower_value, m.upper_value, m.created_at
		FROM metrics m
		JOIN report_benchmarks rb ON rb.id = m.report_benchmark_id
		WHERE rb.report_id = $1`, reportID)
	if err != nil {
		return nil, fmt.Errorf("list metrics by report: %w", err)
	}
	defer rows.Close()

	var metrics []report.Metric
	for rows.Next() {
		var m report.Metric
		if err := rows.Scan(&m.ID, &m.UUID, &m.ReportBenchmarkID, &m.MeasureID, &m.Value, &m.LowerValue, &m.UpperValue, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan metric: %w", err)
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

func scanReport(row scannable) (report.Report, error) {
	var r report.Report
	err := row.Scan(&r.ID, &r.UUID, &r.ProjectID, &r.UserID, &r.TestbedID, &r.HeadID, &r.VersionID, &r.StartTime, &r.EndTime, &r.Adapter, &r.CreatedAt)
	return r, err
}
