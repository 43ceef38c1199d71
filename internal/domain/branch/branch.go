// Package branch models the branch/head/version lineage of spec.md §3/§4.5:
// a Branch has exactly one non-archived Head; a Head is a reference
// lineage that becomes archived once replaced (rename or reset); a Version
// is a monotonically numbered point in a project's history, optionally
// tagged with a git hash; HeadVersion records a Version's membership in a
// Head. Head -> start-point references form a DAG, materialized only as
// (id, parent_id?) rows per spec.md §9 — never loaded transitively.
package branch

import (
	"fmt"
	"time"

	"github.com/Strob0t/CodeForge/internal/domain/valueobject"
)

// DefaultMaxVersions and MaxVersionsCap implement the Open Question
// resolution in DESIGN.md: the source caps at 255 in one path and 65535 in
// another; this implementation standardizes on the higher cap, with 255
// surviving only as the default when a caller omits max_versions.
const (
	DefaultMaxVersions = 255
	MaxVersionsCap     = 65535
)

// Branch is a named line of history within a Project.
type Branch struct {
	ID        string    `json:"id"`
	UUID      string    `json:"uuid"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Head is a reference lineage on a Branch. StartHeadID/StartVersionID
// record the optional start point this Head was cloned from (nil for a
// Head created empty or directly via reset with no start point).
type Head struct {
	ID            string     `json:"id"`
	UUID          string     `json:"uuid"`
	BranchID      string     `json:"branch_id"`
	StartHeadID   *string    `json:"start_head_id,omitempty"`
	StartVersionID *string   `json:"start_version_id,omitempty"`
	ArchivedAt    *time.Time `json:"archived_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (h *Head) IsArchived() bool { return h.ArchivedAt != nil }

// Version is a (number, hash?) tuple scoped to a Project. Numbers are
// strictly increasing per project.
type Version struct {
	ID        string    `json:"id"`
	UUID      string    `json:"uuid"`
	ProjectID string    `json:"project_id"`
	Number    int64     `json:"number"`
	Hash      string    `json:"hash,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// HeadVersion records a Version's membership in a Head; (head, version) is
// unique.
type HeadVersion struct {
	ID        string    `json:"id"`
	HeadID    string    `json:"head_id"`
	VersionID string    `json:"version_id"`
	CreatedAt time.Time `json:"created_at"`
}

// StartPoint is the optional seed for a new branch, carried on a report
// ingestion request per spec.md §4.5.
type StartPoint struct {
	Branch          string `json:"branch"`
	Hash            string `json:"hash,omitempty"`
	MaxVersions     int    `json:"max_versions,omitempty"`
	CloneThresholds bool   `json:"clone_thresholds,omitempty"`
}

// ResolvedMaxVersions applies the default/cap rule: 0 or negative means
// "use the default"; anything above the hard cap is clamped down to it.
func (s StartPoint) ResolvedMaxVersions() int {
	n := s.MaxVersions
	if n <= 0 {
		n = DefaultMaxVersions
	}
	if n > MaxVersionsCap {
		n = MaxVersionsCap
	}
	return n
}

func (s StartPoint) Validate() error {
	if _, err := valueobject.ParseBranchName(s.Branch); err != nil {
		return fmt.Errorf("start point branch: %w", err)
	}
	if s.Hash != "" {
		if _, err := valueobject.ParseGitHash(s.Hash); err != nil {
			return fmt.Errorf("start point hash: %w", err)
		}
	}
	return nil
}

// CreateRequest is the input for explicitly creating a Branch (outside of
// report ingestion's on-demand creation).
type CreateRequest struct {
	Name       string      `json:"name"`
	StartPoint *StartPoint `json:"start_point,omitempty"`
}

func (r *CreateRequest) Validate() error {
	if _, err := valueobject.ParseBranchName(r.Name); err != nil {
		return fmt.Errorf("name: %w", err)
	}
	if r.StartPoint != nil {
		return r.StartPoint.Validate()
	}
	return nil
}

// ResetRequest archives the current Head and creates a fresh one,
// optionally seeded from a start point.
type ResetRequest struct {
	StartPoint *StartPoint `json:"start_point,omitempty"`
}
