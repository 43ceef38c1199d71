package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Strob0t/CodeForge/internal/domain/benchmark"
)

func (s *Store) CreateBenchmark(ctx context.Context, projectID string, req benchmark.CreateRequest) (*benchmark.Benchmark, error) {
	slug := req.Slug
	if slug == "" {
		slug = req.Name
	}
	row := s.pool.QueryRow(ctx,
		`INSERT INTO benchmarks (project_id, name, slug) VALUES ($1, $2, $3)
		 RETURNING id, uuid, project_id, name, slug, created_at, updated_at`,
		projectID, req.Name, slug)
	b, err := scanBenchmark(row)
	if err != nil {
		return nil, fmt.Errorf("create benchmark: %w", err)
	}
	return &b, nil
}

func (s *Store) GetBenchmark(ctx context.Context, id string) (*benchmark.Benchmark, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, uuid, project_id, name, slug, created_at, updated_at FROM benchmarks WHERE id = $1`, id)
	b, err := scanBenchmark(row)
	if err != nil {
		return nil, notFoundWrap(err, "get benchmark %s", id)
	}
	return &b, nil
}

// QueryBenchmarkFromNameID resolves a benchmark by slug or UUID, creating
// it on the fly when absent (spec.md §4.6 step 4).
func (s *Store) QueryBenchmarkFromNameID(ctx context.Context, projectID, nameID string) (*benchmark.Benchmark, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, uuid, project_id, name, slug, created_at, updated_at
		 FROM benchmarks WHERE project_id = $1 AND (slug = $2 OR uuid::text = $2)`, projectID, nameID)
	b, err := scanBenchmark(row)
	if err == nil {
		return &b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("query benchmark %s: %w", nameID, err)
	}
	return s.CreateBenchmark(ctx, projectID, benchmark.CreateRequest{Name: nameID})
}

func (s *Store) ListBenchmarksByProject(ctx context.Context, projectID string) ([]benchmark.Benchmark, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, uuid, project_id, name, slug, created_at, updated_at
		 FROM benchmarks WHERE project_id = $1 ORDER BY created_at`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list benchmarks: %w", err)
	}
	defer rows.Close()

	var benchmarks []benchmark.Benchmark
	for rows.Next() {
		b, err := scanBenchmark(rows)
		if err != nil {
			return nil, fmt.Errorf("scan benchmark: %w", err)
		}
		benchmarks = append(benchmarks, b)
	}
	return benchmarks, rows.Err()
}

func (s *Store) DeleteBenchmark(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM benchmarks WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete benchmark %s", id)
}

func (s *Store) SlugExistsBenchmark(ctx context.Context, projectID, slug string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM benchmarks WHERE project_id = $1 AND slug = $2)`, projectID, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check benchmark slug: %w", err)
	}
	return exists, nil
}

// --- Measures ---

func (s *Store) CreateMeasure(ctx context.Context, projectID string, req benchmark.CreateRequest) (*benchmark.Measure, error) {
	slug := req.Slug
	if slug == "" {
		slug = req.Name
	}
	row := s.pool.QueryRow(ctx,
		`INSERT INTO measures (project_id, name, slug, units) VALUES ($1, $2, $3, $4)
		 RETURNING id, uuid, project_id, name, slug, units, created_at, updated_at`,
		projectID, req.Name, slug, req.Units)
	m, err := scanMeasure(row)
	if err != nil {
		return nil, fmt.Errorf("create measure: %w", err)
	}
	return &m, nil
}

func (s *Store) GetMeasure(ctx context.Context, id string) (*benchmark.Measure, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, uuid, project_id, name, slug, units, created_at, updated_at FROM measures WHERE id = $1`, id)
	m, err := scanMeasure(row)
	if err != nil {
		return nil, notFoundWrap(err, "get measure %s", id)
	}
	return &m, nil
}

// QueryMeasureFromNameID resolves a measure by slug or UUID, creating it
// on the fly when absent (spec.md §4.6 step 4).
func (s *Store) QueryMeasureFromNameID(ctx context.Context, projectID, nameID string) (*benchmark.Measure, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, uuid, project_id, name, slug, units, created_at, updated_at
		 FROM measures WHERE project_id = $1 AND (slug = $2 OR uuid::text = $2)`, projectID, nameID)
	m, err := scanMeasure(row)
	if err == nil {
		return &m, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("query measure %s: %w", nameID, err)
	}
	return s.CreateMeasure(ctx, projectID, benchmark.CreateRequest{Name: nameID})
}

func (s *Store) ListMeasuresByProject(ctx context.Context, projectID string) ([]benchmark.Measure, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, uuid, project_id, name, slug, units, created_at, updated_at
		 FROM measures WHERE project_id = $1 ORDER BY created_at`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list measures: %w", err)
	}
	defer rows.Close()

	var measures []benchmark.Measure
	for rows.Next() {
		m, err := scanMeasure(rows)
		if err != nil {
			return nil, fmt.Errorf("scan measure: %w", err)
		}
		measures = append(measures, m)
	}
	return measures, rows.Err()
}

func (s *Store) DeleteMeasure(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM measures WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete measure %s", id)
}

func (s *Store) SlugExistsMeasure(ctx context.Context, projectID, slug string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM measures WHERE project_id = $1 AND slug = $2)`, projectID, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check measure slug: %w", err)
	}
	return exists, nil
}

func scanBenchmark(row scannable) (benchmark.Benchmark, error) {
	var b benchmark.Benchmark
	err := row.Scan(&b.ID, &b.UUID, &b.ProjectID, &b.Name, &b.Slug, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func scanMeasure(row scannable) (benchmark.Measure, error) {
	var m benchmark.Measure
	err := row.Scan(&m.ID, &m.UUID, &m.ProjectID, &m.Name, &m.Slug, &m.Units, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}
