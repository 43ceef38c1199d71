package middleware

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Strob0t/CodeForge/internal/ratelimit"
)

// RateLimit returns middleware enforcing the given Class's sliding-window
// limits, keyed by realIP unless keyFn is non-nil (used for per-user/
// per-email classes where the key comes from an authenticated context or
// request body rather than the remote address).
func RateLimit(reg *ratelimit.Registry, class ratelimit.Class, keyFn func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := realIP(r)
			if keyFn != nil {
				if k := keyFn(r); k != "" {
					key = k
				}
			}

			res := reg.Check(class, key)
			if !res.Allowed {
				w.Header().Set("Retry-After", fmt.Sprintf("%.0f", res.RetryAfter.Seconds()))
				writeJSONError(w, http.StatusTooManyRequests, fmt.Sprintf("rate limit exceeded (%s window)", res.WindowName))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// realIP extracts the client IP from RemoteAddr. Proxy headers
// (X-Forwarded-For, X-Real-Ip) are NOT trusted because they can be spoofed
// by attackers to bypass rate limiting.
func realIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// UserKeyFunc keys a rate-limit class by the authenticated user's id, for
// the UserRequest class (falls back to IP when unauthenticated).
func UserKeyFunc(r *http.Request) string {
	if c := ClaimsFromContext(r.Context()); c != nil {
		return c.UserID
	}
	return ""
}

// CleanupInterval and CleanupMaxIdle are default values for a Registry's
// StartCleanup. cmd/bencher does not use them: it passes the configured
// cfg.Rate.CleanupInterval and cfg.Rate.MaxIdleTime instead.
const (
	CleanupInterval = 5 * time.Minute
	CleanupMaxIdle  = 30 * time.Minute
)
