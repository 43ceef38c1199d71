package valueobject

import (
	"errors"
	"strings"
	"testing"
)

func TestParseResourceId(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantErr  error
		wantUUID bool
	}{
		{name: "uuid", in: "4e2f1a3e-6d3f-4b1a-9b0a-7f9e2a1b3c4d", wantUUID: true},
		{name: "slug", in: "my-project-1"},
		{name: "empty", in: "", wantErr: ErrEmpty},
		{name: "trailing hyphen", in: "bad-", wantErr: ErrInvalidForm},
		{name: "leading hyphen", in: "-bad", wantErr: ErrInvalidForm},
		{name: "uppercase", in: "Bad", wantErr: ErrInvalidForm},
		{name: "too long", in: strings.Repeat("a", 65), wantErr: ErrTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResourceId(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.IsUUID() != tt.wantUUID {
				t.Fatalf("IsUUID() = %v, want %v", got.IsUUID(), tt.wantUUID)
			}
			if got.String() != tt.in {
				t.Fatalf("String() = %q, want %q", got.String(), tt.in)
			}
		})
	}
}

func TestParseSlug(t *testing.T) {
	if _, err := ParseSlug(""); !errors.Is(err, ErrEmpty) {
		t.Fatalf("empty: err = %v, want ErrEmpty", err)
	}
	if _, err := ParseSlug("Has-Upper"); !errors.Is(err, ErrInvalidForm) {
		t.Fatalf("uppercase: err = %v, want ErrInvalidForm", err)
	}
	got, err := ParseSlug("valid-slug-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "valid-slug-1" {
		t.Fatalf("String() = %q", got.String())
	}
}

func TestTrimmedNameTypes(t *testing.T) {
	if _, err := ParseBranchName(""); !errors.Is(err, ErrEmpty) {
		t.Fatalf("branch name empty: %v", err)
	}
	if _, err := ParseBranchName(strings.Repeat("b", 65)); !errors.Is(err, ErrTooLong) {
		t.Fatalf("branch name too long: %v", err)
	}
	n, err := ParseResourceName("my benchmark")
	if err != nil || n.String() != "my benchmark" {
		t.Fatalf("resource name round trip: %v %q", err, n.String())
	}
	if _, err := ParseUserName(strings.Repeat("u", 65)); !errors.Is(err, ErrTooLong) {
		t.Fatalf("user name too long: %v", err)
	}
	if n, err := ParseBranchName("  main  "); err != nil || n.String() != "main" {
		t.Fatalf("branch name not trimmed: %v %q", err, n.String())
	}
	if _, err := ParseResourceName("   "); !errors.Is(err, ErrEmpty) {
		t.Fatalf("whitespace-only name should be empty after trim: %v", err)
	}
}
