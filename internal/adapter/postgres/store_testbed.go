package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Strob0t/CodeForge/internal/domain/testbed"
)

func (s *Store) CreateTestbed(ctx context.Context, projectID string, req testbed.CreateRequest) (*testbed.Testbed, error) {
	slug := req.Slug
	if slug == "" {
		slug = req.Name
	}
	row := s.pool.QueryRow(ctx,
		`INSERT INTO testbeds (project_id, name, slug) VALUES ($1, $2, $3)
		 RETURNING id, uuid, project_id, name, slug, created_at, updated_at`,
		projectID, req.Name, slug)
	t, err := scanTestbed(row)
	if err != nil {
		return nil, fmt.Errorf("create testbed: %w", err)
	}
	return &t, nil
}

func (s *Store) GetTestbed(ctx context.Context, id string) (*testbed.Testbed, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, uuid, project_id, name, slug, created_at, updated_at FROM testbeds WHERE id = $1`, id)
	t, err := scanTestbed(row)
	if err != nil {
		return nil, notFoundWrap(err, "get testbed %s", id)
	}
	return &t, nil
}

// QueryTestbedFromNameID resolves a testbed by slug or UUID, creating it
// on the fly when absent (spec.md §4.2/§4.6 step 3).
func (s *Store) QueryTestbedFromNameID(ctx context.Context, projectID, nameID string) (*testbed.Testbed, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, uuid, project_id, name, slug, created_at, updated_at
		 FROM testbeds WHERE project_id = $1 AND (slug = $2 OR uuid::text = $2)`, projectID, nameID)
	t, err := scanTestbed(row)
	if err == nil {
		return &t, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("query testbed %s: %w", nameID, err)
	}
	return s.CreateTestbed(ctx, projectID, testbed.CreateRequest{Name: nameID})
}

func (s *Store) ListTestbedsByProject(ctx context.Context, projectID string) ([]testbed.Testbed, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, uuid, project_id, name, slug, created_at, updated_at
		 FROM testbeds WHERE project_id = $1 ORDER BY created_at`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list testbeds: %w", err)
	}
	defer rows.Close()

	var testbeds []testbed.Testbed
	for rows.Next() {
		t, err := scanTestbed(rows)
		if err != nil {
			return nil, fmt.Errorf("scan testbed: %w", err)
		}
		testbeds = append(testbeds, t)
	}
	return testbeds, rows.Err()
}

func (s *Store) DeleteTestbed(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM testbeds WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete testbed %s", id)
}

func (s *Store) SlugExistsTestbed(ctx context.Context, projectID, slug string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM testbeds WHERE project_id = $1 AND slug = $2)`, projectID, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check testbed slug: %w", err)
	}
	return exists, nil
}

func scanTestbed(row scannable) (testbed.Testbed, error) {
	var t testbed.Testbed
	err := row.Scan(&t.ID, &t.UUID, &t.ProjectID, &t.Name, &t.Slug, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}
