// Package report models the ingestion event and its produced data
// (spec.md §3/§4.6): a Report is one ingestion event; a ReportBenchmark is
// one benchmark's results within it (one per fold iteration); a Metric is
// a numeric value with optional bounds, attached to a ReportBenchmark and
// a Measure.
package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/Strob0t/CodeForge/internal/domain/valueobject"
)

// Report is one ingestion event.
type Report struct {
	ID        string    `json:"id"`
	UUID      string    `json:"uuid"`
	ProjectID string    `json:"project_id"`
	UserID    string    `json:"user_id"`
	TestbedID string    `json:"testbed_id"`
	HeadID    string    `json:"head_id"`
	VersionID string    `json:"version_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Adapter   string    `json:"adapter"`
	CreatedAt time.Time `json:"created_at"`
}

// ReportBenchmark is one benchmark's results within a Report, for a given
// fold iteration (adapters may reduce multiple iterations via
// min/max/mean/median, spec.md §4.7, but the raw iteration is still
// recorded here before reduction when the adapter does not fold).
// Metrics is populated by the caller before CreateReport and carries
// each measure's value for this iteration; ReportBenchmarkID on each
// Metric is filled in by the store once the parent row's ID exists.
type ReportBenchmark struct {
	ID          string   `json:"id"`
	ReportID    string   `json:"report_id"`
	BenchmarkID string   `json:"benchmark_id"`
	Iteration   int      `json:"iteration"`
	Metrics     []Metric `json:"metrics,omitempty"`
}

// Metric is a numeric value with optional bounds, attached to a
// ReportBenchmark and a Measure. lower_value <= value <= upper_value when
// both bounds are present (spec.md §8 invariant 1).
type Metric struct {
	ID                string     `json:"id"`
	UUID              string     `json:"uuid"`
	ReportBenchmarkID string     `json:"report_benchmark_id"`
	MeasureID         string     `json:"measure_id"`
	Value             float64    `json:"value"`
	LowerValue        *float64   `json:"lower_value,omitempty"`
	UpperValue        *float64   `json:"upper_value,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Valid enforces the lower_value <= value <= upper_value invariant when
// both bounds are present.
func (m Metric) Valid() error {
	if m.LowerValue != nil && m.Value < *m.LowerValue {
		return errors.New("metric value is below its own lower_value")
	}
	if m.UpperValue != nil && m.Value > *m.UpperValue {
		return errors.New("metric value is above its own upper_value")
	}
	if m.LowerValue != nil && m.UpperValue != nil && *m.LowerValue > *m.UpperValue {
		return errors.New("metric lower_value exceeds upper_value")
	}
	return nil
}

// Fold selects how an adapter reduces multiple iterations of the same
// (benchmark, measure) pair into one Metric (spec.md §4.7).
type Fold string

const (
	FoldNone   Fold = ""
	FoldMin    Fold = "min"
	FoldMax    Fold = "max"
	FoldMean   Fold = "mean"
	FoldMedian Fold = "median"
)

func (f Fold) Valid() bool {
	switch f {
	case FoldNone, FoldMin, FoldMax, FoldMean, FoldMedian:
		return true
	default:
		return false
	}
}

// IngestRequest is the input to report ingestion (spec.md §4.6).
type IngestRequest struct {
	ProjectRef      string            `json:"project"`
	BranchNameID    string            `json:"branch"`
	Hash            string            `json:"hash,omitempty"`
	TestbedNameID   string            `json:"testbed"`
	StartTime       time.Time         `json:"start_time"`
	EndTime         time.Time         `json:"end_time"`
	Adapter         string            `json:"adapter"`
	Fold            Fold              `json:"fold,omitempty"`
	Results         []string          `json:"results"`
	Settings        map[string]string `json:"settings,omitempty"`
	StartPointBranch string           `json:"start_point_branch,omitempty"`
	StartPointHash   string           `json:"start_point_hash,omitempty"`
	MaxVersions      int              `json:"max_versions,omitempty"`
	CloneThresholds  bool             `json:"clone_thresholds,omitempty"`
}

func (r *IngestRequest) Validate() error {
	if r.ProjectRef != "" {
		if _, err := valueobject.ParseResourceId(r.ProjectRef); err != nil {
			return fmt.Errorf("project: %w", err)
		}
	}
	if _, err := valueobject.ParseBranchName(r.BranchNameID); err != nil {
		return fmt.Errorf("branch: %w", err)
	}
	if _, err := valueobject.ParseResourceName(r.TestbedNameID); err != nil {
		return fmt.Errorf("testbed: %w", err)
	}
	if r.Adapter == "" {
		return errors.New("adapter is required")
	}
	if len(r.Results) == 0 {
		return errors.New("at least one result blob is required")
	}
	if r.Fold != "" && !r.Fold.Valid() {
		return errors.New("invalid fold: must be min, max, mean, or median")
	}
	if r.EndTime.Before(r.StartTime) {
		return errors.New("end_time precedes start_time")
	}
	if r.Hash != "" {
		if _, err := valueobject.ParseGitHash(r.Hash); err != nil {
			return errors.New("hash is not a valid git object id")
		}
	}
	if r.StartPointHash != "" {
		if _, err := valueobject.ParseGitHash(r.StartPointHash); err != nil {
			return errors.New("start_point_hash is not a valid git object id")
		}
	}
	if r.StartPointBranch != "" {
		if _, err := valueobject.ParseBranchName(r.StartPointBranch); err != nil {
			return fmt.Errorf("start_point_branch: %w", err)
		}
	}
	return nil
}
