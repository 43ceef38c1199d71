package valueobject

import (
	"crypto/rand"
	"encoding/base32"
	"regexp"
	"strings"
)

var nonAlphanumericRun = regexp.MustCompile(`[^a-z0-9]+`)

const slugSuffixLength = 5

// GenerateSlug derives a Slug from a display name: lowercase, collapse runs
// of non-alphanumeric characters to a single hyphen, trim leading/trailing
// hyphens, and truncate to 64 characters. The caller supplies an `exists`
// predicate; if the base form is taken, a short random suffix is appended,
// trying up to 32 suffixed candidates; if all of them are taken,
// ErrInvalidForm is returned.
func GenerateSlug(name string, exists func(candidate string) bool) (Slug, error) {
	base := slugify(name)
	if base == "" {
		return Slug{}, ErrInvalidForm
	}
	if exists == nil || !exists(base) {
		return ParseSlug(base)
	}
	for attempt := 0; attempt < 32; attempt++ {
		suffix, err := randomSuffix()
		if err != nil {
			return Slug{}, err
		}
		candidate := withSuffix(base, suffix)
		if !exists(candidate) {
			return ParseSlug(candidate)
		}
	}
	return Slug{}, ErrInvalidForm
}

func slugify(name string) string {
	lower := strings.ToLower(name)
	collapsed := nonAlphanumericRun.ReplaceAllString(lower, "-")
	trimmed := strings.Trim(collapsed, "-")
	if len(trimmed) > maxNameLength {
		trimmed = strings.Trim(trimmed[:maxNameLength], "-")
	}
	return trimmed
}

func withSuffix(base, suffix string) string {
	maxBase := maxNameLength - slugSuffixLength - 1
	if len(base) > maxBase {
		base = strings.Trim(base[:maxBase], "-")
	}
	return base + "-" + suffix
}

func randomSuffix() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	s := strings.ToLower(enc.EncodeToString(buf))
	if len(s) > slugSuffixLength {
		s = s[:slugSuffixLength]
	}
	return s, nil
}
