package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Strob0t/CodeForge/internal/domain/permission"
	"github.com/Strob0t/CodeForge/internal/domain/project"
)

func (s *Store) CreateProject(ctx context.Context, organizationID string, req project.CreateRequest) (*project.Project, error) {
	visibility := req.Visibility
	if visibility == "" {
		visibility = project.VisibilityPrivate
	}
	row := s.pool.QueryRow(ctx,
		`INSERT INTO projects (organization_id, name, slug, visibility, url)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, uuid, organization_id, name, slug, visibility, url, created_at, updated_at`,
		organizationID, req.Name, req.Slug, string(visibility), req.URL)

	p, err := scanProject(row)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return &p, nil
}

func (s *Store) GetProject(ctx context.Context, id string) (*project.Project, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, uuid, organization_id, name, slug, visibility, url, created_at, updated_at
		 FROM projects WHERE id = $1`, id)
	p, err := scanProject(row)
	if err != nil {
		return nil, notFoundWrap(err, "get project %s", id)
	}
	return &p, nil
}

func (s *Store) GetProjectBySlug(ctx context.Context, organizationID, slug string) (*project.Project, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, uuid, organization_id, name, slug, visibility, url, created_at, updated_at
		 FROM projects WHERE organization_id = $1 AND slug = $2`, organizationID, slug)
	p, err := scanProject(row)
	if err != nil {
		return nil, notFoundWrap(err, "get project by slug %s", slug)
	}
	return &p, nil
}

func (s *Store) ListProjectsByOrganization(ctx context.Context, organizationID string) ([]project.Project, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, uuid, organization_id, name, slug, visibility, url, created_at, updated_at
		 FROM projects WHERE organization_id = $1 ORDER BY created_at`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []project.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *Store) UpdateProject(ctx context.Context, p *project.Project) error {
	p.UpdatedAt = time.Now().UTC()
	tag, err := s.pool.Exec(ctx,
		`UPDATE projects SET name = $2, visibility = $3, url = $4, updated_at = $5 WHERE id = $1`,
		p.ID, p.Name, string(p.Visibility), p.URL, p.UpdatedAt)
	return execExpectOne(tag, err, "update project %s", p.ID)
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete project %s", id)
}

func (s *Store) SlugExistsProject(ctx context.Context, organizationID, slug string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM projects WHERE organization_id = $1 AND slug = $2)`,
		organizationID, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check project slug: %w", err)
	}
	return exists, nil
}

// GetProjectRole resolves a user's effective role on a project: an
// explicit project_roles row if one exists (returned as is, even when it
// is wider than the organization role), otherwise the user's
// organization-level role; ok is false when there is neither.
func (s *Store) GetProjectRole(ctx context.Context, projectID, userID string) (permission.Role, bool, error) {
	var role string
	err := s.pool.QueryRow(ctx,
		`SELECT pr.role FROM project_roles pr WHERE pr.project_id = $1 AND pr.user_id = $2`,
		projectID, userID).Scan(&role)
	if err == nil {
		return permission.Role(role), true, nil
	}

	err = s.pool.QueryRow(ctx,
		`SELECT r.role FROM organization_roles r
		 JOIN projects p ON p.organization_id = r.organization_id
		 WHERE p.id = $1 AND r.user_id = $2`, projectID, userID).Scan(&role)
	if err != nil {
		return "", false, nil
	}
	return permission.Role(role), true, nil
}

func scanProject(row scannable) (project.Project, error) {
	var p project.Project
	var visibility string
	err := row.Scan(&p.ID, &p.UUID, &p.OrganizationID, &p.Name, &p.Slug, &visibility, &p.URL, &p.CreatedAt, &p.UpdatedAt)
	p.Visibility = project.Visibility(visibility)
	return p, err
}
