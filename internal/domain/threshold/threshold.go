// Package threshold models the detector's binding and evaluation records
// (spec.md §3/§4.8): a Threshold binds a Model (statistical configuration)
// to a (branch, testbed, measure) triple; a Boundary is the per-metric
// evaluation result; an Alert records a breach. Resolves Open Question 1
// (DESIGN.md): TestKind is a string-valued enum persisted as text, never a
// numeric constant, so the ZScore/TTest integer-mapping bug class named in
// spec.md §9 cannot occur here.
package threshold

import (
	"errors"
	"fmt"
	"time"

	"github.com/Strob0t/CodeForge/internal/domain/valueobject"
)

// TestKind selects the statistical model fitted by the detector.
type TestKind string

const (
	TestStatic    TestKind = "static"
	TestPercentage TestKind = "percentage"
	TestZScore    TestKind = "z_score"
	TestTTest     TestKind = "t_test"
	TestLogNormal TestKind = "log_normal"
	TestIqr       TestKind = "iqr"
	TestDeltaIqr  TestKind = "delta_iqr"
)

var validKinds = map[TestKind]bool{
	TestStatic: true, TestPercentage: true, TestZScore: true, TestTTest: true,
	TestLogNormal: true, TestIqr: true, TestDeltaIqr: true,
}

func (k TestKind) Valid() bool { return validKinds[k] }

// Model is the statistical configuration bound to a Threshold; snapshotted
// (copied, not referenced) when a Threshold is updated, so historical
// Boundaries keep citing the Model that produced them.
type Model struct {
	ID               string   `json:"id"`
	UUID             string   `json:"uuid"`
	Test             TestKind `json:"test"`
	LowerBoundary    *float64 `json:"lower_boundary,omitempty"`    // Static
	UpperBoundary    *float64 `json:"upper_boundary,omitempty"`    // Static
	Percentage       *float64 `json:"percentage,omitempty"`        // Percentage
	ZScore           *float64 `json:"z_score,omitempty"`           // ZScore, (0.5,1)
	TValue           *float64 `json:"t_value,omitempty"`           // TTest, (0.5,1)
	LogNormalQuantile *float64 `json:"log_normal_quantile,omitempty"` // LogNormal, (0.5,1)
	IqrMultiplier    *float64 `json:"iqr_multiplier,omitempty"`    // Iqr/DeltaIqr, >=0
	MinSampleSize    int      `json:"min_sample_size"`
	MaxSampleSize    int      `json:"max_sample_size,omitempty"`
	WindowSeconds    int64    `json:"window_seconds,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Threshold binds a Model to a (project, branch, testbed, measure) triple.
// At most one non-deleted Threshold exists per triple (spec.md §8
// invariant 5).
type Threshold struct {
	ID         string     `json:"id"`
	UUID       string     `json:"uuid"`
	ProjectID  string     `json:"project_id"`
	BranchID   string     `json:"branch_id"`
	TestbedID  string     `json:"testbed_id"`
	MeasureID  string     `json:"measure_id"`
	ModelID    string     `json:"model_id"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (t *Threshold) IsDeleted() bool { return t.DeletedAt != nil }

// Boundary is the per-metric record of a threshold evaluation: baseline
// and limits, possibly null when the sample was too small or the
// distribution was degenerate (spec.md §4.8 steps 2 and 6).
type Boundary struct {
	ID          string    `json:"id"`
	UUID        string    `json:"uuid"`
	MetricID    string    `json:"metric_id"`
	ThresholdID string    `json:"threshold_id"`
	ModelID     string    `json:"model_id"`
	Baseline    *float64  `json:"baseline,omitempty"`
	LowerLimit  *float64  `json:"lower_limit,omitempty"`
	UpperLimit  *float64  `json:"upper_limit,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Valid enforces spec.md §8 invariant 2: lower_limit <= upper_limit when
// both are present.
func (b Boundary) Valid() error {
	if b.LowerLimit != nil && b.UpperLimit != nil && *b.LowerLimit > *b.UpperLimit {
		return errors.New("boundary lower_limit exceeds upper_limit")
	}
	return nil
}

// Side names which limit an Alert's metric crossed.
type Side string

const (
	SideLower Side = "lower"
	SideUpper Side = "upper"
)

// Status is an Alert's lifecycle state; only dismissal is allowed post-hoc.
type Status string

const (
	StatusActive    Status = "active"
	StatusDismissed Status = "dismissed"
)

// Alert is an append-only breach record.
type Alert struct {
	ID         string    `json:"id"`
	UUID       string    `json:"uuid"`
	ReportID   string    `json:"report_id"`
	BoundaryID string    `json:"boundary_id"`
	Side       Side      `json:"side"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateRequest is the input for creating (or replacing) a Threshold's
// Model, per spec.md §4.8's per-test parameter sets.
type CreateRequest struct {
	BranchNameID  string   `json:"branch"`
	TestbedNameID string   `json:"testbed"`
	MeasureNameID string   `json:"measure"`
	Test          TestKind `json:"test"`
	LowerBoundary *float64 `json:"lower_boundary,omitempty"`
	UpperBoundary *float64 `json:"upper_boundary,omitempty"`
	Percentage    *float64 `json:"percentage,omitempty"`
	ZScore        *float64 `json:"z_score,omitempty"`
	TValue        *float64 `json:"t_value,omitempty"`
	LogNormalQuantile *float64 `json:"log_normal_quantile,omitempty"`
	IqrMultiplier *float64 `json:"iqr_multiplier,omitempty"`
	MinSampleSize int      `json:"min_sample_size,omitempty"`
	MaxSampleSize int      `json:"max_sample_size,omitempty"`
	WindowSeconds int64    `json:"window_seconds,omitempty"`
}

func (r *CreateRequest) Validate() error {
	if r.BranchNameID == "" || r.TestbedNameID == "" || r.MeasureNameID == "" {
		return errors.New("branch, testbed, and measure are all required")
	}
	if !r.Test.Valid() {
		return errors.New("invalid test kind")
	}
	switch r.Test {
	case TestStatic:
		if r.LowerBoundary == nil && r.UpperBoundary == nil {
			return errors.New("static test requires lower_boundary and/or upper_boundary")
		}
	case TestPercentage:
		if r.Percentage == nil {
			return errors.New("percentage test requires percentage")
		}
		if _, err := valueobject.ParsePercentageBoundary(*r.Percentage); err != nil {
			return fmt.Errorf("percentage: %w", err)
		}
	case TestZScore:
		if r.ZScore == nil {
			return errors.New("z_score test requires z_score")
		}
		if _, err := valueobject.ParseNormalBoundary(*r.ZScore); err != nil {
			return fmt.Errorf("z_score: %w", err)
		}
	case TestTTest:
		if r.TValue == nil {
			return errors.New("t_test test requires t_value")
		}
		if _, err := valueobject.ParseNormalBoundary(*r.TValue); err != nil {
			return fmt.Errorf("t_value: %w", err)
		}
	case TestLogNormal:
		if r.LogNormalQuantile == nil {
			return errors.New("log_normal test requires log_normal_quantile")
		}
		if _, err := valueobject.ParseNormalBoundary(*r.LogNormalQuantile); err != nil {
			return fmt.Errorf("log_normal_quantile: %w", err)
		}
	case TestIqr, TestDeltaIqr:
		if r.IqrMultiplier == nil {
			return errors.New("iqr/delta_iqr test requires iqr_multiplier")
		}
		if _, err := valueobject.ParseIqrBoundary(*r.IqrMultiplier); err != nil {
			return fmt.Errorf("iqr_multiplier: %w", err)
		}
	}
	if r.MinSampleSize != 0 {
		if _, err := valueobject.ParseSampleSize(r.MinSampleSize); err != nil {
			return fmt.Errorf("min_sample_size: %w", err)
		}
	}
	if r.MaxSampleSize != 0 {
		if _, err := valueobject.ParseSampleSize(r.MaxSampleSize); err != nil {
			return fmt.Errorf("max_sample_size: %w", err)
		}
	}
	if r.WindowSeconds != 0 {
		if _, err := valueobject.ParseWindow(r.WindowSeconds); err != nil {
			return fmt.Errorf("window_seconds: %w", err)
		}
	}
	return nil
}
