// Package testbed models the Testbed entity of spec.md §3: a named
// physical/logical execution environment, scoped to a Project, slug
// unique within it.
package testbed

import (
	"fmt"
	"time"

	"github.com/Strob0t/CodeForge/internal/domain/valueobject"
)

// Testbed is a physical/logical benchmark execution target.
type Testbed struct {
	ID        string    `json:"id"`
	UUID      string    `json:"uuid"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateRequest is the input for creating (or implicitly resolving) a
// Testbed by name during report ingestion.
type CreateRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

func (r *CreateRequest) Validate() error {
	if _, err := valueobject.ParseResourceName(r.Name); err != nil {
		return fmt.Errorf("name: %w", err)
	}
	if r.Slug != "" {
		if _, err := valueobject.ParseSlug(r.Slug); err != nil {
			return fmt.Errorf("slug: %w", err)
		}
	}
	return nil
}
