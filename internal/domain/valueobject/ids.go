// Package valueobject holds the parse-don't-validate newtypes that every
// external string is converted into once, at the system boundary. No value
// of these types can exist that violates its invariant: every constructor
// returns a typed error instead of a zero value on failure.
package valueobject

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrEmpty       = errors.New("value is empty")
	ErrTooLong     = errors.New("value exceeds maximum length")
	ErrInvalidForm = errors.New("value has invalid form")
)

const maxNameLength = 64

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// ResourceId is a resource reference that is either a UUID or a slug. It is
// used wherever the wire contract accepts either form interchangeably
// (`{project}` path segments, `name_id` query params).
type ResourceId struct {
	raw    string
	isUUID bool
}

// ParseResourceId accepts a UUID string or a slug matching the ResourceId
// grammar: `[a-z0-9][a-z0-9-]*`, 1-64 chars, no trailing hyphen.
func ParseResourceId(s string) (ResourceId, error) {
	if s == "" {
		return ResourceId{}, ErrEmpty
	}
	if _, err := uuid.Parse(s); err == nil {
		return ResourceId{raw: s, isUUID: true}, nil
	}
	if err := validateSlugForm(s); err != nil {
		return ResourceId{}, err
	}
	return ResourceId{raw: s}, nil
}

// IsUUID reports whether the ResourceId was parsed as a UUID rather than a slug.
func (r ResourceId) IsUUID() bool { return r.isUUID }

// String returns the original text form.
func (r ResourceId) String() string { return r.raw }

func validateSlugForm(s string) error {
	if len(s) > maxNameLength {
		return ErrTooLong
	}
	if !slugPattern.MatchString(s) {
		return ErrInvalidForm
	}
	if s[len(s)-1] == '-' {
		return ErrInvalidForm
	}
	return nil
}

// Slug is a generated or user-supplied URL-safe identifier, unique within
// its owning scope (project, organization).
type Slug struct {
	raw string
}

// ParseSlug validates a slug supplied directly (not generated from a name).
func ParseSlug(s string) (Slug, error) {
	if s == "" {
		return Slug{}, ErrEmpty
	}
	if err := validateSlugForm(s); err != nil {
		return Slug{}, err
	}
	return Slug{raw: s}, nil
}

// String returns the slug text.
func (s Slug) String() string { return s.raw }

// trimmedName enforces the shared non-empty/length/NFC-ish trim rule used by
// BranchName, ResourceName, and UserName. Go's strings are UTF-8 by
// construction; full NFC normalization is not attempted here (no teacher or
// pack dependency for Unicode normalization is wired), but leading/trailing
// whitespace is trimmed and the rune count is enforced.
func trimmedName(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmpty
	}
	if utf8.RuneCountInString(s) > maxNameLength {
		return "", ErrTooLong
	}
	return s, nil
}

// BranchName is a non-empty, length-bounded branch name.
type BranchName struct{ raw string }

func ParseBranchName(s string) (BranchName, error) {
	v, err := trimmedName(s)
	if err != nil {
		return BranchName{}, err
	}
	return BranchName{raw: v}, nil
}
func (n BranchName) String() string { return n.raw }

// ResourceName is a non-empty, length-bounded name for a generic resource
// (project, testbed, benchmark, measure, threshold display name).
type ResourceName struct{ raw string }

func ParseResourceName(s string) (ResourceName, error) {
	v, err := trimmedName(s)
	if err != nil {
		return ResourceName{}, err
	}
	return ResourceName{raw: v}, nil
}
func (n ResourceName) String() string { return n.raw }

// UserName is a non-empty, length-bounded display name for a User.
type UserName struct{ raw string }

func ParseUserName(s string) (UserName, error) {
	v, err := trimmedName(s)
	if err != nil {
		return UserName{}, err
	}
	return UserName{raw: v}, nil
}
func (n UserName) String() string { return n.raw }
