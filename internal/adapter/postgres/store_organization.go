package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Strob0t/CodeForge/internal/domain/organization"
	"github.com/Strob0t/CodeForge/internal/domain/permission"
)

func (s *Store) CreateOrganization(ctx context.Context, req organization.CreateRequest) (*organization.Organization, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO organizations (name, slug) VALUES ($1, $2)
		 RETURNING id, uuid, name, slug, created_at, updated_at`,
		req.Name, req.Slug)

	o, err := scanOrganization(row)
	if err != nil {
		return nil, fmt.Errorf("create organization: %w", err)
	}
	return &o, nil
}

func (s *Store) GetOrganization(ctx context.Context, id string) (*organization.Organization, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, uuid, name, slug, created_at, updated_at FROM organizations WHERE id = $1`, id)
	o, err := scanOrganization(row)
	if err != nil {
		return nil, notFoundWrap(err, "get organization %s", id)
	}
	return &o, nil
}

func (s *Store) GetOrganizationBySlug(ctx context.Context, slug string) (*organization.Organization, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, uuid, name, slug, created_at, updated_at FROM organizations WHERE slug = $1`, slug)
	o, err := scanOrganization(row)
	if err != nil {
		return nil, notFoundWrap(err, "get organization by slug %s", slug)
	}
	return &o, nil
}

func (s *Store) ListOrganizationsByUser(ctx context.Context, userID string) ([]organization.Organization, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT o.id, o.uuid, o.name, o.slug, o.created_at, o.updated_at
		 FROM organizations o
		 JOIN organization_roles r ON r.organization_id = o.id
		 WHERE r.user_id = $1 ORDER BY o.created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list organizations by user: %w", err)
	}
	defer rows.Close()

	var orgs []organization.Organization
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}

func (s *Store) UpdateOrganization(ctx context.Context, o *organization.Organization) error {
	o.UpdatedAt = time.Now().UTC()
	tag, err := s.pool.Exec(ctx,
		`UPDATE organizations SET name = $2, updated_at = $3 WHERE id = $1`,
		o.ID, o.Name, o.UpdatedAt)
	return execExpectOne(tag, err, "update organization %s", o.ID)
}

func (s *Store) DeleteOrganization(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete organization %s", id)
}

func (s *Store) SlugExistsOrganization(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM organizations WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check organization slug: %w", err)
	}
	return exists, nil
}

// --- Membership ---

func (s *Store) AddOrganizationMember(ctx context.Context, organizationID string, req organization.AddMemberRequest) (*organization.Role, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO organization_roles (organization_id, user_id, role)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (organization_id, user_id) DO UPDATE SET role = EXCLUDED.role
		 RETURNING id, organization_id, user_id, role, created_at`,
		organizationID, req.UserID, string(req.Role))

	var m organization.Role
	var role string
	if err := row.Scan(&m.ID, &m.OrganizationID, &m.UserID, &role, &m.CreatedAt); err != nil {
		return nil, fmt.Errorf("add organization member: %w", err)
	}
	m.Role = permission.Role(role)
	return &m, nil
}

func (s *Store) GetOrganizationRole(ctx context.Context, organizationID, userID string) (*organization.Role, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, organization_id, user_id, role, created_at
		 FROM organization_roles WHERE organization_id = $1 AND user_id = $2`,
		organizationID, userID)

	var m organization.Role
	var role string
	err := row.Scan(&m.ID, &m.OrganizationID, &m.UserID, &role, &m.CreatedAt)
	if err != nil {
		return nil, notFoundWrap(err, "get organization role")
	}
	m.Role = permission.Role(role)
	return &m, nil
}

func (s *Store) ListOrganizationMembers(ctx context.Context, organizationID string) ([]organization.Role, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, organization_id, user_id, role, created_at
		 FROM organization_roles WHERE organization_id = $1 ORDER BY created_at`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list organization members: %w", err)
	}
	defer rows.Close()

	var members []organization.Role
	for rows.Next() {
		var m organization.Role
		var role string
		if err := rows.Scan(&m.ID, &m.OrganizationID, &m.UserID, &role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan organization member: %w", err)
		}
		m.Role = permission.Role(role)
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *Store) UpdateOrganizationRole(ctx context.Context, organizationID, userID string, role permission.Role) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE organization_roles SET role = $3 WHERE organization_id = $1 AND user_id = $2`,
		organizationID, userID, string(role))
	return execExpectOne(tag, err, "update organization role")
}

func (s *Store) RemoveOrganizationMember(ctx context.Context, organizationID, userID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM organization_roles WHERE organization_id = $1 AND user_id = $2`, organizationID, userID)
	return execExpectOne(tag, err, "remove organization member")
}

func scanOrganization(row scannable) (organization.Organization, error) {
	var o organization.Organization
	err := row.Scan(&o.ID, &o.UUID, &o.Name, &o.Slug, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}
