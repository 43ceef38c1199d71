package valueobject

import (
	"encoding/hex"
	"net/mail"
)

// GitHash is a hex-encoded SHA-1 (40 chars) or SHA-256 (64 chars) object id,
// as accepted by git's object-id parser.
type GitHash struct{ raw string }

func ParseGitHash(s string) (GitHash, error) {
	if s == "" {
		return GitHash{}, ErrEmpty
	}
	switch len(s) {
	case 40, 64:
	default:
		return GitHash{}, ErrInvalidForm
	}
	if _, err := hex.DecodeString(s); err != nil {
		return GitHash{}, ErrInvalidForm
	}
	return GitHash{raw: s}, nil
}
func (h GitHash) String() string { return h.raw }

// Email is an RFC-5322-subset validated address, parsed via net/mail the
// same way the teacher's user.CreateRequest.Validate does inline.
type Email struct{ raw string }

func ParseEmail(s string) (Email, error) {
	if s == "" {
		return Email{}, ErrEmpty
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return Email{}, ErrInvalidForm
	}
	return Email{raw: addr.Address}, nil
}
func (e Email) String() string { return e.raw }
