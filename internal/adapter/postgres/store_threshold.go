package postgres

import (
	"context"
	"fmt"

	"github.com/Strob0t/CodeForge/internal/domain/threshold"
)

// GetThreshold resolves the non-deleted Threshold bound to a (project,
// branch, testbed, measure) triple, along with the Model it currently
// points at.
func (s *Store) GetThreshold(ctx context.Context, projectID, branchID, testbedID, measureID string) (*threshold.Threshold, *threshold.Model, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT t.id, t.uuid, t.project_id, t.branch_id, t.testbed_id, t.measure_id, t.model_id, t.deleted_at, t.created_at, t.updated_at,
		       m.id, m.uuid, m.test, m.lower_boundary, m.upper_boundary, m.percentage, m.z_score, m.t_value,
		       m.log_normal_quantile, m.iqr_multiplier, m.min_sample_size, m.max_sample_size, m.window_seconds, m.created_at
		FROM thresholds t
		JOIN models m ON m.id = t.model_id
		WHERE t.project_id = $1 AND t.branch_id = $2 AND t.testbed_id = $3 AND t.measure_id = $4 AND t.deleted_at IS NULL`,
		projectID, branchID, testbedID, measureID)

	var th threshold.Threshold
	var md threshold.Model
	var test string
	err := row.Scan(
		&th.ID, &th.UUID, &th.ProjectID, &th.BranchID, &th.TestbedID, &th.MeasureID, &th.ModelID, &th.DeletedAt, &th.CreatedAt, &th.UpdatedAt,
		&md.ID, &md.UUID, &test, &md.LowerBoundary, &md.UpperBoundary, &md.Percentage, &md.ZScore, &md.TValue,
		&md.LogNormalQuantile, &md.IqrMultiplier, &md.MinSampleSize, &md.MaxSampleSize, &md.WindowSeconds, &md.CreatedAt,
	)
	if err != nil {
		return nil, nil, notFoundWrap(err, "get threshold")
	}
	md.Test = threshold.TestKind(test)
	return &th, &md, nil
}

// UpsertThreshold snapshots a new Model and either creates a fresh
// Threshold or repoints an existing one at it, preserving historical
// Boundaries' reference to the Model that produced them (spec.md §4.8).
func (s *Store) UpsertThreshold(ctx context.Context, projectID, branchID, testbedID, measureID string, req threshold.CreateRequest) (*threshold.Threshold, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("upsert threshold: begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var modelID string
	err = tx.QueryRow(ctx, `
		INSERT INTO models (test, lower_boundary, upper_boundary, percentage, z_score, t_value, log_normal_quantile, iqr_multiplier, min_sample_size, max_sample_size, window_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		string(req.Test), req.LowerBoundary, req.UpperBoundary, req.Percentage, req.ZScore, req.TValue,
		req.LogNormalQuantile, req.IqrMultiplier, req.MinSampleSize, req.MaxSampleSize, req.WindowSeconds,
	).Scan(&modelID)
	if err != nil {
		return nil, fmt.Errorf("upsert threshold: create model: %w", err)
	}

	var th threshold.Threshold
	err = tx.QueryRow(ctx, `
		INSERT INTO thresholds (project_id, branch_id, testbed_id, measure_id, model_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (project_id, branch_id, testbed_id, measure_id) WHERE deleted_at IS NULL
		DO UPDATE SET model_id = EXCLUDED.model_id, updated_at = now()
		RETURNING id, uuid, project_id, branch_id, testbed_id, measure_id, model_id, deleted_at, created_at, updated_at`,
		projectID, branchID, testbedID, measureID, modelID,
	).Scan(&th.ID, &th.UUID, &th.ProjectID, &th.BranchID, &th.TestbedID, &th.MeasureID, &th.ModelID, &th.DeletedAt, &th.CreatedAt, &th.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert threshold: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("upsert threshold: commit tx: %w", err)
	}
	return &th, nil
}

func (s *Store) ListThresholdsByProject(ctx context.Context, projectID string) ([]threshold.Threshold, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, uuid, project_id, branch_id, testbed_id, measure_id, model_id, deleted_at, created_at, updated_at
		FROM thresholds WHERE project_id = $1 AND deleted_at IS NULL ORDER BY created_at`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list thresholds: %w", err)
	}
	defer rows.Close()

	var out []threshold.Threshold
	for rows.Next() {
		var t threshold.Threshold
		if err := rows.Scan(&t.ID, &t.UUID, &t.ProjectID, &t.BranchID, &t.TestbedID, &t.MeasureID, &t.ModelID, &t.DeletedAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan threshold: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) SoftDeleteThreshold(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE thresholds SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	return execExpectOne(tag, err, "delete threshold %s", id)
}

// CloneThresholds duplicates every non-deleted Threshold bound to
// fromBranchID onto toBranchID, reusing the same Model rows (spec.md
// §4.5 start_point.clone_thresholds).
func (s *Store) CloneThresholds(ctx context.Context, projectID, fromBranchID, toBranchID string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO thresholds (project_id, branch_id, testbed_id, measure_id, model_id)
		SELECT project_id, $2, testbed_id, measure_id, model_id
		FROM thresholds WHERE project_id = $1 AND branch_id = $3 AND deleted_at IS NULL`,
		projectID, toBranchID, fromBranchID)
	if err != nil {
		return fmt.Errorf("clone thresholds: %w", err)
	}
	return nil
}

// --- Boundaries ---

func (s *Store) CreateBoundary(ctx context.Context, b *threshold.Boundary) error {
	if err := b.Valid(); err != nil {
		return fmt.Errorf("create boundary: %w", err)
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO boundaries (metric_id, threshold_id, model_id, baseline, lower_limit, upper_limit)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, uuid, created_at`,
		b.MetricID, b.ThresholdID, b.ModelID, b.Baseline, b.LowerLimit, b.UpperLimit)
	if err := row.Scan(&b.ID, &b.UUID, &b.CreatedAt); err != nil {
		return fmt.Errorf("create boundary: %w", err)
	}
	return nil
}

func (s *Store) GetBoundaryByMetric(ctx context.Context, metricID string) (*threshold.Boundary, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, uuid, metric_id, threshold_id, model_id, baseline, lower_limit, upper_limit, created_at
		FROM boundaries WHERE metric_id = $1`, metricID)

	var b threshold.Boundary
	err := row.Scan(&b.ID, &b.UUID, &b.MetricID, &b.ThresholdID, &b.ModelID, &b.Baseline, &b.LowerLimit, &b.UpperLimit, &b.CreatedAt)
	if err != nil {
		return nil, notFoundWrap(err, "get boundary by metric %s", metricID)
	}
	return &b, nil
}

// --- Alerts ---

func (s *Store) CreateAlert(ctx context.Context, a *threshold.Alert) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO alerts (report_id, boundary_id, side, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, uuid, created_at, updated_at`,
		a.ReportID, a.BoundaryID, string(a.Side), string(a.Status))
	if err := row.Scan(&a.ID, &a.UUID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

func (s *Store) GetAlert(ctx context.Context, id string) (*threshold.Alert, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, uuid, report_id, boundary_id, side, status, created_at, updated_at FROM alerts WHERE id = $1`, id)
	a, err := scanAlert(row)
	if err != nil {
		return nil, notFoundWrap(err, "get alert %s", id)
	}
	return &a, nil
}

func (s *Store) ListAlertsByReport(ctx context.Context, reportID string) ([]threshold.Alert, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, uuid, report_id, boundary_id, side, status, created_at, updated_at
		 FROM alerts WHERE report_id = $1 ORDER BY created_at`, reportID)
	if err != nil {
		return nil, fmt.Errorf("list alerts by report: %w", err)
	}
	defer rows.Close()

	var alerts []threshold.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (s *Store) UpdateAlertStatus(ctx context.Context, id string, status threshold.Status) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE alerts SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
	return execExpectOne(tag, err, "update alert status %s", id)
}

func scanAlert(row scannable) (threshold.Alert, error) {
	var a threshold.Alert
	var side, status string
	err := row.Scan(&a.ID, &a.UUID, &a.ReportID, &a.BoundaryID, &side, &status, &a.CreatedAt, &a.UpdatedAt)
	a.Side = threshold.Side(side)
	a.Status = threshold.Status(status)
	return a, err
}
