package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Strob0t/CodeForge/internal/domain/branch"
)

func (s *Store) CreateBranch(ctx context.Context, projectID string, req branch.CreateRequest) (*branch.Branch, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO branches (project_id, name, slug) VALUES ($1, $2, $3)
		 RETURNING id, uuid, project_id, name, slug, created_at, updated_at`,
		projectID, req.Name, req.Name)
	b, err := scanBranch(row)
	if err != nil {
		return nil, fmt.Errorf("create branch: %w", err)
	}

	h := &branch.Head{BranchID: b.ID}
	if req.StartPoint != nil {
		start, err := s.QueryBranchFromNameID(ctx, projectID, req.StartPoint.Branch)
		if err == nil {
			startHead, err := s.GetActiveHead(ctx, start.ID)
			if err == nil {
				h.StartHeadID = &startHead.ID
			}
		}
	}
	if err := s.CreateHead(ctx, h); err != nil {
		return nil, fmt.Errorf("create branch: seed head: %w", err)
	}
	if h.StartHeadID != nil && req.StartPoint != nil {
		if err := s.CloneHeadVersions(ctx, *h.StartHeadID, h.ID, req.StartPoint.ResolvedMaxVersions()); err != nil {
			return nil, fmt.Errorf("create branch: clone versions: %w", err)
		}
	}
	return &b, nil
}

func (s *Store) GetBranch(ctx context.Context, id string) (*branch.Branch, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, uuid, project_id, name, slug, created_at, updated_at FROM branches WHERE id = $1`, id)
	b, err := scanBranch(row)
	if err != nil {
		return nil, notFoundWrap(err, "get branch %s", id)
	}
	return &b, nil
}

// QueryBranchFromNameID resolves a branch by slug or UUID, creating it
// on the fly when absent (spec.md §4.2).
func (s *Store) QueryBranchFromNameID(ctx context.Context, projectID, nameID string) (*branch.Branch, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, uuid, project_id, name, slug, created_at, updated_at
		 FROM branches WHERE project_id = $1 AND (slug = $2 OR uuid::text = $2)`, projectID, nameID)
	b, err := scanBranch(row)
	if err == nil {
		return &b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("query branch %s: %w", nameID, err)
	}
	return s.CreateBranch(ctx, projectID, branch.CreateRequest{Name: nameID})
}

// GetBranchByNameID resolves a branch by slug or UUID without creating
// one, wrapping pgx.ErrNoRows as domain.ErrNotFound.
func (s *Store) GetBranchByNameID(ctx context.Context, projectID, nameID string) (*branch.Branch, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, uuid, project_id, name, slug, created_at, updated_at
		 FROM branches WHERE project_id = $1 AND (slug = $2 OR uuid::text = $2)`, projectID, nameID)
	b, err := scanBranch(row)
	if err != nil {
		return nil, notFoundWrap(err, "get branch %s", nameID)
	}
	return &b, nil
}

func (s *Store) ListBranchesByProject(ctx context.Context, projectID string) ([]branch.Branch, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, uuid, project_id, name, slug, created_at, updated_at
		 FROM branches WHERE project_id = $1 ORDER BY created_at`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer rows.Close()

	var branches []branch.Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan branch: %w", err)
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

func (s *Store) DeleteBranch(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM branches WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete branch %s", id)
}

func (s *Store) SlugExistsBranch(ctx context.Context, projectID, slug string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM branches WHERE project_id = $1 AND slug = $2)`, projectID, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check branch slug: %w", err)
	}
	return exists, nil
}

// --- Heads ---

func (s *Store) GetActiveHead(ctx context.Context, branchID string) (*branch.Head, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, uuid, branch_id, start_head_id, start_version_id, archived_at, created_at
		 FROM heads WHERE branch_id = $1 AND archived_at IS NULL`, branchID)
	h, err := scanHead(row)
	if err != nil {
		return nil, notFoundWrap(err, "get active head for branch %s", branchID)
	}
	return &h, nil
}

func (s *Store) CreateHead(ctx context.Context, h *branch.Head) error {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO heads (branch_id, start_head_id, start_version_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, uuid, created_at`,
		h.BranchID, h.StartHeadID, h.StartVersionID)
	return row.Scan(&h.ID, &h.UUID, &h.CreatedAt)
}

func (s *Store) ArchiveHead(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE heads SET archived_at = $2 WHERE id = $1 AND archived_at IS NULL`, id, time.Now().UTC())
	return execExpectOne(tag, err, "archive head %s", id)
}

// GetLatestHeadVersion returns the newest version attached to a head.
func (s *Store) GetLatestHeadVersion(ctx context.Context, headID string) (*branch.Version, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT v.id, v.uuid, v.project_id, v.number, v.hash, v.created_at
		 FROM versions v
		 JOIN head_versions hv ON hv.version_id = v.id
		 WHERE hv.head_id = $1
		 ORDER BY v.number DESC LIMIT 1`, headID)
	v, err := scanVersion(row)
	if err != nil {
		return nil, notFoundWrap(err, "get latest version for head %s", headID)
	}
	return &v, nil
}

// CloneHeadVersions attaches up to maxVersions of the source head's most
// recent versions to the destination head (spec.md §4.5 start-point
// cloning).
func (s *Store) CloneHeadVersions(ctx context.Context, fromHeadID, toHeadID string, maxVersions int) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO head_versions (head_id, version_id)
		SELECT $2, hv.version_id FROM head_versions hv
		JOIN versions v ON v.id = hv.version_id
		WHERE hv.head_id = $1
		ORDER BY v.number DESC
		LIMIT $3`,
		fromHeadID, toHeadID, maxVersions)
	if err != nil {
		return fmt.Errorf("clone head versions: %w", err)
	}
	return nil
}

// --- Versions ---

func (s *Store) CreateVersion(ctx context.Context, v *branch.Version) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO versions (project_id, number, hash)
		VALUES ($1, COALESCE((SELECT MAX(number) + 1 FROM versions WHERE project_id = $1), 1), $2)
		RETURNING id, uuid, number, created_at`,
		v.ProjectID, nullIfEmpty(v.Hash))
	return row.Scan(&v.ID, &v.UUID, &v.Number, &v.CreatedAt)
}

func (s *Store) GetVersionByHash(ctx context.Context, projectID, hash string) (*branch.Version, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, uuid, project_id, number, hash, created_at
		 FROM versions WHERE project_id = $1 AND hash = $2
		 ORDER BY number DESC LIMIT 1`, projectID, hash)
	v, err := scanVersion(row)
	if err != nil {
		return nil, notFoundWrap(err, "get version by hash")
	}
	return &v, nil
}

func (s *Store) AttachHeadVersion(ctx context.Context, hv *branch.HeadVersion) error {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO head_versions (head_id, version_id) VALUES ($1, $2)
		 RETURNING id, created_at`, hv.HeadID, hv.VersionID)
	if err := row.Scan(&hv.ID, &hv.CreatedAt); err != nil {
		return fmt.Errorf("attach head version: %w", err)
	}
	return nil
}

// HistoricalMetrics returns metric values recorded against the given
// (head, benchmark, measure) triple, newest-version first, bounded by
// limit (spec.md §4.8 step 1).
func (s *Store) HistoricalMetrics(ctx context.Context, headID, benchmarkID, measureID string, since time.Time, limit int) ([]float64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT m.value
		FROM metrics m
		JOIN report_benchmarks rb ON rb.id = m.report_benchmark_id
		JOIN reports r ON r.id = rb.report_id
		JOIN versions v ON v.id = r.version_id
		WHERE r.head_id = $1 AND rb.benchmark_id = $2 AND m.measure_id = $3
		  AND ($4::timestamptz IS NULL OR r.start_time >= $4)
		ORDER BY v.number DESC, r.start_time DESC, rb.iteration DESC
		LIMIT $5`, headID, benchmarkID, measureID, nullTime(since), limit)
	if err != nil {
		return nil, fmt.Errorf("historical metrics: %w", err)
	}
	defer rows.Close()

	var values []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan historical metric: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func scanBranch(row scannable) (branch.Branch, error) {
	var b branch.Branch
	err := row.Scan(&b.ID, &b.UUID, &b.ProjectID, &b.Name, &b.Slug, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func scanHead(row scannable) (branch.Head, error) {
	var h branch.Head
	err := row.Scan(&h.ID, &h.UUID, &h.BranchID, &h.StartHeadID, &h.StartVersionID, &h.ArchivedAt, &h.CreatedAt)
	return h, err
}

func scanVersion(row scannable) (branch.Version, error) {
	var v branch.Version
	var hash *string
	err := row.Scan(&v.ID, &v.UUID, &v.ProjectID, &v.Number, &hash, &v.CreatedAt)
	if hash != nil {
		v.Hash = *hash
	}
	return v, err
}
