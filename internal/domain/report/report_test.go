package report

import (
	"testing"
	"time"
)

func validIngestRequest() IngestRequest {
	return IngestRequest{
		BranchNameID:  "main",
		TestbedNameID: "ci-runner",
		Adapter:       "json",
		Results:       []string{`{}`},
		StartTime:     time.Now(),
		EndTime:       time.Now().Add(time.Second),
	}
}

func TestIngestRequest_Validate(t *testing.T) {
	valid := validIngestRequest()
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error on valid request: %v", err)
	}

	t.Run("missing branch", func(t *testing.T) {
		r := validIngestRequest()
		r.BranchNameID = ""
		if err := r.Validate(); err == nil {
			t.Fatal("expected error for missing branch")
		}
	})

	t.Run("missing testbed", func(t *testing.T) {
		r := validIngestRequest()
		r.TestbedNameID = ""
		if err := r.Validate(); err == nil {
			t.Fatal("expected error for missing testbed")
		}
	})

	t.Run("missing adapter", func(t *testing.T) {
		r := validIngestRequest()
		r.Adapter = ""
		if err := r.Validate(); err == nil {
			t.Fatal("expected error for missing adapter")
		}
	})

	t.Run("no results", func(t *testing.T) {
		r := validIngestRequest()
		r.Results = nil
		if err := r.Validate(); err == nil {
			t.Fatal("expected error for empty results")
		}
	})

	t.Run("invalid fold", func(t *testing.T) {
		r := validIngestRequest()
		r.Fold = "bogus"
		if err := r.Validate(); err == nil {
			t.Fatal("expected error for invalid fold")
		}
	})

	t.Run("end before start", func(t *testing.T) {
		r := validIngestRequest()
		r.StartTime = time.Now()
		r.EndTime = r.StartTime.Add(-time.Minute)
		if err := r.Validate(); err == nil {
			t.Fatal("expected error for end_time before start_time")
		}
	})

	t.Run("malformed hash rejected", func(t *testing.T) {
		r := validIngestRequest()
		r.Hash = "not-a-git-hash"
		if err := r.Validate(); err == nil {
			t.Fatal("expected error for malformed hash")
		}
	})

	t.Run("valid sha1 hash accepted", func(t *testing.T) {
		r := validIngestRequest()
		r.Hash = "da39a3ee5e6b4b0d3255bfef95601890afd80709"
		if err := r.Validate(); err != nil {
			t.Fatalf("unexpected error for valid hash: %v", err)
		}
	})

	t.Run("malformed start_point_hash rejected", func(t *testing.T) {
		r := validIngestRequest()
		r.StartPointHash = "zz"
		if err := r.Validate(); err == nil {
			t.Fatal("expected error for malformed start_point_hash")
		}
	})

	t.Run("malformed project ref rejected", func(t *testing.T) {
		r := validIngestRequest()
		r.ProjectRef = "-bad"
		if err := r.Validate(); err == nil {
			t.Fatal("expected error for malformed project ref")
		}
	})

	t.Run("valid project ref accepted", func(t *testing.T) {
		r := validIngestRequest()
		r.ProjectRef = "my-project-1"
		if err := r.Validate(); err != nil {
			t.Fatalf("unexpected error for valid project ref: %v", err)
		}
	})

	t.Run("whitespace-only start_point_branch rejected", func(t *testing.T) {
		r := validIngestRequest()
		r.StartPointBranch = "   "
		if err := r.Validate(); err == nil {
			t.Fatal("expected error for whitespace-only start_point_branch")
		}
	})
}

func TestMetric_Valid(t *testing.T) {
	lower, upper := 1.0, 10.0

	t.Run("within bounds", func(t *testing.T) {
		m := Metric{Value: 5, LowerValue: &lower, UpperValue: &upper}
		if err := m.Valid(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("below lower_value", func(t *testing.T) {
		m := Metric{Value: 0, LowerValue: &lower, UpperValue: &upper}
		if err := m.Valid(); err == nil {
			t.Fatal("expected error for value below lower_value")
		}
	})

	t.Run("above upper_value", func(t *testing.T) {
		m := Metric{Value: 20, LowerValue: &lower, UpperValue: &upper}
		if err := m.Valid(); err == nil {
			t.Fatal("expected error for value above upper_value")
		}
	})

	t.Run("inverted bounds", func(t *testing.T) {
		m := Metric{Value: 5, LowerValue: &upper, UpperValue: &lower}
		if err := m.Valid(); err == nil {
			t.Fatal("expected error for lower_value exceeding upper_value")
		}
	})
}
