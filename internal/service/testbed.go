package service

import (
	"context"
	"fmt"

	"github.com/Strob0t/CodeForge/internal/domain/bcherr"
	"github.com/Strob0t/CodeForge/internal/domain/testbed"
	"github.com/Strob0t/CodeForge/internal/domain/valueobject"
	"github.com/Strob0t/CodeForge/internal/port/database"
)

// TestbedService manages the Testbed resource of spec.md §3: a named
// execution environment scoped to a Project, slug unique within it.
type TestbedService struct {
	store database.Store
}

// NewTestbedService creates a new TestbedService.
func NewTestbedService(store database.Store) *TestbedService {
	return &TestbedService{store: store}
}

// Create validates the request, generates a slug when none was
// supplied, and creates the Testbed within projectID.
func (s *TestbedService) Create(ctx context.Context, projectID string, req testbed.CreateRequest) (*testbed.Testbed, error) {
	if err := req.Validate(); err != nil {
		return nil, bcherr.BadRequest(err.Error())
	}

	slug := req.Slug
	if slug == "" {
		generated, err := valueobject.GenerateSlug(req.Name, func(candidate string) bool {
			exists, _ := s.store.SlugExistsTestbed(ctx, projectID, candidate)
			return exists
		})
		if err != nil {
			return nil, bcherr.Internal("generate slug", err)
		}
		slug = generated.String()
	}
	req.Slug = slug

	t, err := s.store.CreateTestbed(ctx, projectID, req)
	if err != nil {
		return nil, fmt.Errorf("create testbed: %w", err)
	}
	return t, nil
}

// Get returns a Testbed by ID.
func (s *TestbedService) Get(ctx context.Context, id string) (*testbed.Testbed, error) {
	return s.store.GetTestbed(ctx, id)
}

// List returns every Testbed in a Project.
func (s *TestbedService) List(ctx context.Context, projectID string) ([]testbed.Testbed, error) {
	return s.store.ListTestbedsByProject(ctx, projectID)
}

// Delete removes a Testbed.
func (s *TestbedService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteTestbed(ctx, id)
}
