// Package project defines the Project entity of spec.md §3: a namespace,
// owned by exactly one Organization, that owns Branches, Testbeds,
// Benchmarks, Measures, Thresholds, Reports, and Metrics.
package project

import (
	"errors"
	"fmt"
	"time"

	"github.com/Strob0t/CodeForge/internal/domain/valueobject"
)

// Visibility controls whether a Project's data is readable without
// membership.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Project is a namespace owning benchmarks, scoped to an Organization.
type Project struct {
	ID             string     `json:"id"`
	UUID           string     `json:"uuid"`
	OrganizationID string     `json:"organization_id"`
	Name           string     `json:"name"`
	Slug           string     `json:"slug"`
	Visibility     Visibility `json:"visibility"`
	URL            string     `json:"url,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CreateRequest is the input for creating a Project within an Organization.
type CreateRequest struct {
	Name       string     `json:"name"`
	Slug       string     `json:"slug,omitempty"`
	Visibility Visibility `json:"visibility,omitempty"`
	URL        string     `json:"url,omitempty"`
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
	if r.Visibility != "" && !r.Visibility.Valid() {
		return errors.New("invalid visibility: must be public or private")
	}
	return nil
}

// UpdateRequest is the input for updating mutable Project fields.
// OrganizationID is deliberately absent: the owning Organization is
// immutable once set (SPEC_FULL.md §4.10).
type UpdateRequest struct {
	Name       string     `json:"name,omitempty"`
	Visibility Visibility `json:"visibility,omitempty"`
	URL        string     `json:"url,omitempty"`
}
