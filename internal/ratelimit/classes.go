package ratelimit

import "time"

// Class names the four endpoint classes of spec.md §4.4, each with its own
// set of sliding windows.
type Class string

const (
	ClassPublicRequest Class = "public_request" // per-IP
	ClassUserRequest    Class = "user_request"   // per-user
	ClassAuthAttempt    Class = "auth_attempt"    // per-user, login/signup
	ClassInvite         Class = "invite"          // per-user, invite issuance
)

// WindowNames labels the configured windows for Result.WindowName and for
// Retry-After/X-RateLimit headers. A class with no hour window (AuthAttempt,
// Invite per spec.md's table) simply omits it.
var windowNames = map[Class][]string{
	ClassPublicRequest: {"minute", "hour", "day"},
	ClassUserRequest:   {"minute", "hour", "day"},
	ClassAuthAttempt:   {"minute", "day"},
	ClassInvite:        {"minute", "day"},
}

// DefaultWindows returns the default window set for a class, per spec.md
// §4.4's table (powers of two).
func DefaultWindows(c Class) []Window {
	switch c {
	case ClassPublicRequest:
		return []Window{
			{Limit: 1024, Duration: time.Minute},
			{Limit: 4096, Duration: time.Hour},
			{Limit: 8192, Duration: 24 * time.Hour},
		}
	case ClassUserRequest:
		return []Window{
			{Limit: 2048, Duration: time.Minute},
			{Limit: 8192, Duration: time.Hour},
			{Limit: 16384, Duration: 24 * time.Hour},
		}
	case ClassAuthAttempt:
		return []Window{
			{Limit: 4, Duration: time.Minute},
			{Limit: 8, Duration: 24 * time.Hour},
		}
	case ClassInvite:
		return []Window{
			{Limit: 8, Duration: time.Minute},
			{Limit: 32, Duration: 24 * time.Hour},
		}
	default:
		return nil
	}
}

// Registry holds one Limiter per Class, each configured with that class's
// default windows, and is the process-wide object wired at startup.
type Registry struct {
	limiters map[Class]*Limiter
}

// NewRegistry builds a Registry with the default window sets for all four
// classes. A non-empty overrides entry replaces that class's windows;
// cmd/bencher passes nil, and internal/config has no per-class window
// settings.
func NewRegistry(overrides map[Class][]Window) *Registry {
	r := &Registry{limiters: make(map[Class]*Limiter)}
	for _, c := range []Class{ClassPublicRequest, ClassUserRequest, ClassAuthAttempt, ClassInvite} {
		windows := DefaultWindows(c)
		if ov, ok := overrides[c]; ok && len(ov) > 0 {
			windows = ov
		}
		r.limiters[c] = New(windows...)
	}
	return r
}

// Check runs Check against the named Class's Limiter.
func (r *Registry) Check(class Class, key string) Result {
	l, ok := r.limiters[class]
	if !ok {
		return Result{Allowed: true}
	}
	return l.Check(key, windowNames[class]...)
}

// StartCleanup starts cleanup goroutines for every class's limiter, returning
// one combined cancel function.
func (r *Registry) StartCleanup(interval, maxIdle time.Duration) func() {
	cancels := make([]func(), 0, len(r.limiters))
	for _, l := range r.limiters {
		cancels = append(cancels, l.StartCleanup(interval, maxIdle))
	}
	return func() {
		for _, c := range cancels {
			c()
		}
	}
}

// Len returns the tracked-key count for a class's limiter (tests/metrics).
func (r *Registry) Len(class Class) int {
	l, ok := r.limiters[class]
	if !ok {
		return 0
	}
	return l.Len()
}
