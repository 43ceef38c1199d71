// Package benchmark defines the Benchmark and Measure entities of
// spec.md §3: a Benchmark is a named measurement subject, a Measure is one
// dimension of measurement (plus display units) on that subject. Both are
// scoped to a Project, with name/slug unique within it. Unknown benchmarks
// and measures are created on the fly during report ingestion (spec.md
// §4.6 step 4).
package benchmark

import (
	"fmt"
	"time"

	"github.com/Strob0t/CodeForge/internal/domain/valueobject"
)

// Benchmark is a named measurement subject scoped to a Project.
type Benchmark struct {
	ID        string    `json:"id"`
	UUID      string    `json:"uuid"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Measure is a dimension of measurement (e.g. "latency", "throughput"),
// plus its display unit (e.g. "ns", "ops/sec", "bytes"), scoped to a
// Project. spec.md mentions units without modeling them as their own
// entity; SPEC_FULL.md §3 folds the unit onto Measure as a string field.
type Measure struct {
	ID        string    `json:"id"`
	UUID      string    `json:"uuid"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Units     string    `json:"units,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateRequest is shared by Benchmark and Measure creation (both
// on-demand during ingestion and explicit via the API); Units is ignored
// when creating a Benchmark.
type CreateRequest struct {
	Name  string `json:"name"`
	Slug  string `json:"slug,omitempty"`
	Units string `json:"units,omitempty"`
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
