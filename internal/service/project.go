// Package service implements business logic on top of ports.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Strob0t/CodeForge/internal/domain"
	"github.com/Strob0t/CodeForge/internal/domain/bcherr"
	"github.com/Strob0t/CodeForge/internal/domain/permission"
	"github.com/Strob0t/CodeForge/internal/domain/project"
	"github.com/Strob0t/CodeForge/internal/domain/valueobject"
	"github.com/Strob0t/CodeForge/internal/port/database"
)

// ProjectService handles Project lifecycle and membership resolution
// (spec.md §3).
type ProjectService struct {
	store database.Store
}

// NewProjectService creates a new ProjectService.
func NewProjectService(store database.Store) *ProjectService {
	return &ProjectService{store: store}
}

// Create validates the request, generates a slug from the name when
// none was supplied, and creates the Project within organizationID.
func (s *ProjectService) Create(ctx context.Context, organizationID string, req project.CreateRequest) (*project.Project, error) {
	if err := req.Validate(); err != nil {
		return nil, bcherr.BadRequest(err.Error())
	}
	if req.Visibility == "" {
		req.Visibility = project.VisibilityPrivate
	}

	slug := req.Slug
	if slug == "" {
		generated, err := valueobject.GenerateSlug(req.Name, func(candidate string) bool {
			exists, _ := s.store.SlugExistsProject(ctx, organizationID, candidate)
			return exists
		})
		if err != nil {
			return nil, bcherr.Internal("generate slug", err)
		}
		slug = generated.String()
	}
	req.Slug = slug

	p, err := s.store.CreateProject(ctx, organizationID, req)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

// Get returns a Project by ID.
func (s *ProjectService) Get(ctx context.Context, id string) (*project.Project, error) {
	return s.store.GetProject(ctx, id)
}

// GetBySlug resolves a Project by its slug within an Organization.
func (s *ProjectService) GetBySlug(ctx context.Context, organizationID, slug string) (*project.Project, error) {
	return s.store.GetProjectBySlug(ctx, organizationID, slug)
}

// ListByOrganization returns every Project owned by an Organization.
func (s *ProjectService) ListByOrganization(ctx context.Context, organizationID string) ([]project.Project, error) {
	return s.store.ListProjectsByOrganization(ctx, organizationID)
}

// Update applies partial updates to a Project. The owning Organization
// is immutable (SPEC_FULL.md §4.10) and not settable here.
func (s *ProjectService) Update(ctx context.Context, id string, req project.UpdateRequest) (*project.Project, error) {
	if req.Visibility != "" && !req.Visibility.Valid() {
		return nil, bcherr.BadRequest("invalid visibility: must be public or private")
	}

	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Visibility != "" {
		p.Visibility = req.Visibility
	}
	if req.URL != "" {
		p.URL = req.URL
	}

	if err := s.store.UpdateProject(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a Project and, by foreign-key cascade, every Branch,
// Testbed, Benchmark, Measure, Report, and Threshold it owns.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteProject(ctx, id)
}

// EffectiveRole resolves a user's effective role on a Project: its own
// ProjectRole when one is granted (returned as is, even when it is wider
// than the Organization role), otherwise the role held in the owning
// Organization; ok is false when there is neither.
func (s *ProjectService) EffectiveRole(ctx context.Context, projectID, userID string) (permission.Role, bool, error) {
	return s.store.GetProjectRole(ctx, projectID, userID)
}

// RequireRole checks that userID holds at least the required role on
// the Project, returning a transport-independent Forbidden error
// otherwise.
func (s *ProjectService) RequireRole(ctx context.Context, projectID, userID string, required permission.Role) error {
	role, ok, err := s.store.GetProjectRole(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return bcherr.Forbidden("not a member of this project")
		}
		return fmt.Errorf("get project role: %w", err)
	}
	if !ok {
		return bcherr.Forbidden("not a member of this project")
	}
	if !role.Satisfies(required) {
		return bcherr.Forbidden("insufficient project role")
	}
	return nil
}

// RequireReadAccess checks that a Project can be read: public Projects
// are readable by anyone, private ones require at least a viewer role.
func (s *ProjectService) RequireReadAccess(ctx context.Context, p *project.Project, userID string) error {
	if p.Visibility == project.VisibilityPublic {
		return nil
	}
	return s.RequireRole(ctx, p.ID, userID, permission.RoleViewer)
}
