package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Strob0t/CodeForge/internal/domain"
	"github.com/Strob0t/CodeForge/internal/domain/bcherr"
	"github.com/Strob0t/CodeForge/internal/domain/organization"
	"github.com/Strob0t/CodeForge/internal/domain/permission"
	"github.com/Strob0t/CodeForge/internal/domain/valueobject"
	"github.com/Strob0t/CodeForge/internal/port/database"
)

// OrganizationService manages Organization lifecycle and membership
// (spec.md §3, SPEC_FULL.md §4.10).
type OrganizationService struct {
	store database.Store
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(store database.Store) *OrganizationService {
	return &OrganizationService{store: store}
}

// Create validates the request, generates a slug from the name when
// none was supplied, and creates the Organization. The creator is
// granted the admin role on it.
func (s *OrganizationService) Create(ctx context.Context, creatorUserID string, req organization.CreateRequest) (*organization.Organization, error) {
	if err := req.Validate(); err != nil {
		return nil, bcherr.BadRequest(err.Error())
	}

	slug := req.Slug
	if slug == "" {
		generated, err := valueobject.GenerateSlug(req.Name, func(candidate string) bool {
			exists, _ := s.store.SlugExistsOrganization(ctx, candidate)
			return exists
		})
		if err != nil {
			return nil, bcherr.Internal("generate slug", err)
		}
		slug = generated.String()
	}
	req.Slug = slug

	o, err := s.store.CreateOrganization(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create organization: %w", err)
	}

	if _, err := s.store.AddOrganizationMember(ctx, o.ID, organization.AddMemberRequest{
		UserID: creatorUserID,
		Role:   permission.RoleAdmin,
	}); err != nil {
		return nil, fmt.Errorf("grant creator admin role: %w", err)
	}

	return o, nil
}

// Get returns an Organization by ID.
func (s *OrganizationService) Get(ctx context.Context, id string) (*organization.Organization, error) {
	return s.store.GetOrganization(ctx, id)
}

// GetBySlug returns an Organization by slug.
func (s *OrganizationService) GetBySlug(ctx context.Context, slug string) (*organization.Organization, error) {
	return s.store.GetOrganizationBySlug(ctx, slug)
}

// ListForUser returns every Organization the user is a member of.
func (s *OrganizationService) ListForUser(ctx context.Context, userID string) ([]organization.Organization, error) {
	return s.store.ListOrganizationsByUser(ctx, userID)
}

// Update renames an Organization.
func (s *OrganizationService) Update(ctx context.Context, id string, req organization.UpdateRequest) (*organization.Organization, error) {
	o, err := s.store.GetOrganization(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		o.Name = req.Name
	}
	if err := s.store.UpdateOrganization(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Delete removes an Organization and, by foreign-key cascade, every
// Project it owns.
func (s *OrganizationService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteOrganization(ctx, id)
}

// AddMember grants a user a role in the Organization.
func (s *OrganizationService) AddMember(ctx context.Context, organizationID string, req organization.AddMemberRequest) (*organization.Role, error) {
	if err := req.Validate(); err != nil {
		return nil, bcherr.BadRequest(err.Error())
	}
	return s.store.AddOrganizationMember(ctx, organizationID, req)
}

// ListMembers returns every role granted within the Organization.
func (s *OrganizationService) ListMembers(ctx context.Context, organizationID string) ([]organization.Role, error) {
	return s.store.ListOrganizationMembers(ctx, organizationID)
}

// UpdateMemberRole changes a member's role.
func (s *OrganizationService) UpdateMemberRole(ctx context.Context, organizationID, userID string, role permission.Role) error {
	if !role.Valid() {
		return bcherr.BadRequest("invalid role: must be admin, editor, or viewer")
	}
	return s.store.UpdateOrganizationRole(ctx, organizationID, userID, role)
}

// RemoveMember revokes a user's membership.
func (s *OrganizationService) RemoveMember(ctx context.Context, organizationID, userID string) error {
	return s.store.RemoveOrganizationMember(ctx, organizationID, userID)
}

// RequireRole checks that userID holds at least the required role in
// the Organization, returning a transport-independent Forbidden error
// otherwise. Middleware and service-layer guards call this ahead of
// any mutation (spec.md §4.10).
func (s *OrganizationService) RequireRole(ctx context.Context, organizationID, userID string, required permission.Role) error {
	role, err := s.store.GetOrganizationRole(ctx, organizationID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return bcherr.Forbidden("not a member of this organization")
		}
		return fmt.Errorf("get organization role: %w", err)
	}
	if !role.Role.Satisfies(required) {
		return bcherr.Forbidden("insufficient organization role")
	}
	return nil
}
