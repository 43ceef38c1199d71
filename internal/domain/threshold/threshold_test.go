package threshold

import "testing"

func validCreateRequest(test TestKind) CreateRequest {
	req := CreateRequest{
		BranchNameID:  "main",
		TestbedNameID: "tb-1",
		MeasureNameID: "measure-1",
		Test:          test,
	}
	lower, upper := 0.0, 100.0
	pct := 0.1
	z := 0.6
	iqr := 1.5
	switch test {
	case TestStatic:
		req.LowerBoundary = &lower
		req.UpperBoundary = &upper
	case TestPercentage:
		req.Percentage = &pct
	case TestZScore:
		req.ZScore = &z
	case TestTTest:
		req.TValue = &z
	case TestLogNormal:
		req.LogNormalQuantile = &z
	case TestIqr, TestDeltaIqr:
		req.IqrMultiplier = &iqr
	}
	return req
}

func TestCreateRequest_Validate_Valid(t *testing.T) {
	for _, kind := range []TestKind{TestStatic, TestPercentage, TestZScore, TestTTest, TestLogNormal, TestIqr, TestDeltaIqr} {
		req := validCreateRequest(kind)
		if err := req.Validate(); err != nil {
			t.Errorf("%s: unexpected error: %v", kind, err)
		}
	}
}

func TestCreateRequest_Validate_MissingIdentifiers(t *testing.T) {
	req := validCreateRequest(TestStatic)
	req.BranchNameID = ""
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for missing branch")
	}
}

func TestCreateRequest_Validate_InvalidTestKind(t *testing.T) {
	req := validCreateRequest(TestStatic)
	req.Test = "bogus"
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for invalid test kind")
	}
}

func TestCreateRequest_Validate_ZScoreOutOfRange(t *testing.T) {
	// (0.5, 1.0) is the required open interval; 1.7 and 0.5 are both
	// out of range.
	for _, z := range []float64{1.7, 0.5, 1.0, -0.1} {
		req := validCreateRequest(TestZScore)
		zz := z
		req.ZScore = &zz
		if err := req.Validate(); err == nil {
			t.Errorf("z_score=%v: expected error, got nil", z)
		}
	}
}

func TestCreateRequest_Validate_TValueOutOfRange(t *testing.T) {
	req := validCreateRequest(TestTTest)
	bad := 2.5
	req.TValue = &bad
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for t_value outside (0.5, 1.0)")
	}
}

func TestCreateRequest_Validate_LogNormalQuantileOutOfRange(t *testing.T) {
	req := validCreateRequest(TestLogNormal)
	bad := 0.0
	req.LogNormalQuantile = &bad
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for log_normal_quantile outside (0.5, 1.0)")
	}
}

func TestCreateRequest_Validate_PercentageNegative(t *testing.T) {
	req := validCreateRequest(TestPercentage)
	bad := -0.01
	req.Percentage = &bad
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for negative percentage")
	}
}

func TestCreateRequest_Validate_IqrMultiplierNegative(t *testing.T) {
	for _, kind := range []TestKind{TestIqr, TestDeltaIqr} {
		req := validCreateRequest(kind)
		bad := -1.0
		req.IqrMultiplier = &bad
		if err := req.Validate(); err == nil {
			t.Errorf("%s: expected error for negative iqr_multiplier", kind)
		}
	}
}

func TestCreateRequest_Validate_SampleSizeTooSmall(t *testing.T) {
	req := validCreateRequest(TestStatic)
	req.MinSampleSize = 1
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for min_sample_size below 2")
	}

	req = validCreateRequest(TestStatic)
	req.MaxSampleSize = 1
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for max_sample_size below 2")
	}
}

func TestCreateRequest_Validate_WindowSecondsNonPositive(t *testing.T) {
	req := validCreateRequest(TestStatic)
	req.WindowSeconds = -5
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for negative window_seconds")
	}
}

func TestCreateRequest_Validate_StaticRequiresABoundary(t *testing.T) {
	req := validCreateRequest(TestStatic)
	req.LowerBoundary = nil
	req.UpperBoundary = nil
	if err := req.Validate(); err == nil {
		t.Fatal("expected error when static test has neither boundary set")
	}
}

func TestBoundary_Valid(t *testing.T) {
	lower, upper := 10.0, 5.0
	b := Boundary{LowerLimit: &lower, UpperLimit: &upper}
	if err := b.Valid(); err == nil {
		t.Fatal("expected error for lower_limit exceeding upper_limit")
	}
}
