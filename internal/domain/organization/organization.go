// Package organization defines the tenant/namespace that owns Projects
// (spec.md §3, SPEC_FULL.md §4.10): every Project belongs to exactly one
// Organization, and Project slugs are unique within it.
package organization

import (
	"errors"
	"fmt"
	"time"

	"github.com/Strob0t/CodeForge/internal/domain/permission"
	"github.com/Strob0t/CodeForge/internal/domain/valueobject"
)

// Organization is the tenant/namespace owning Projects.
type Organization struct {
	ID        string    `json:"id"`
	UUID      string    `json:"uuid"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateRequest is the input for creating an Organization.
type CreateRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"` // generated from Name if empty
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

// UpdateRequest is the input for renaming an Organization.
type UpdateRequest struct {
	Name string `json:"name,omitempty"`
}

// Role is a membership row: (user, organization, role).
type Role struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organization_id"`
	UserID         string          `json:"user_id"`
	Role           permission.Role `json:"role"`
	CreatedAt      time.Time       `json:"created_at"`
}

// AddMemberRequest is the input for granting a user a role in an Organization.
type AddMemberRequest struct {
	UserID string          `json:"user_id"`
	Role   permission.Role `json:"role"`
}

func (r *AddMemberRequest) Validate() error {
	if _, err := valueobject.ParseResourceId(r.UserID); err != nil {
		return fmt.Errorf("user_id: %w", err)
	}
	if !r.Role.Valid() {
		return errors.New("invalid role: must be admin, editor, or viewer")
	}
	return nil
}
