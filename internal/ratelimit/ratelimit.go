// Package ratelimit implements the keyed sliding-window counter of
// spec.md §4.4: a FIFO of event timestamps per key, evicted from the front
// as they age past the window. Multiple independent windows (minute, hour,
// day) can be stacked into one Class so that all must pass for a request to
// be allowed. Structurally grounded on the teacher's token-bucket
// implementation (mutex-guarded map, Handler middleware, StartCleanup
// goroutine, Len for tests); the per-key accounting algorithm itself is
// replaced because the two are not interchangeable.
package ratelimit

import (
	"sync"
	"time"
)

// Window is one sliding-window counter: a limit over a duration.
type Window struct {
	Limit    int
	Duration time.Duration
}

// window tracks the FIFO of recent event timestamps for one key, one
// configured Window.
type window struct {
	events []time.Time
}

// Limiter enforces one or more independent sliding windows per key. A
// request is allowed only if every configured window has capacity.
type Limiter struct {
	mu      sync.Mutex
	windows []Window
	state   map[string][]window // per key, parallel to l.windows
	lastHit map[string]time.Time
}

// New creates a Limiter enforcing all of the given windows simultaneously.
func New(windows ...Window) *Limiter {
	return &Limiter{
		windows: windows,
		state:   make(map[string][]window),
		lastHit: make(map[string]time.Time),
	}
}

// Result describes the outcome of a Check call.
type Result struct {
	Allowed    bool
	WindowName string // which window rejected, empty if allowed
	RetryAfter time.Duration
}

// Check evicts stale entries, then either records the event and allows it,
// or rejects with the name of the first window that is at capacity.
// namedWindows optionally labels each configured window (e.g. "minute",
// "hour", "day") for Result.WindowName and error reporting; if shorter than
// l.windows, trailing windows are left unnamed.
func (l *Limiter) Check(key string, namedWindows ...string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.lastHit[key] = now

	states, ok := l.state[key]
	if !ok {
		states = make([]window, len(l.windows))
		l.state[key] = states
	}

	// First pass: evict stale entries and check capacity in every window.
	// The event is recorded in no other window unless every window has
	// room, so a rejection in window 2 does not record it in window 1;
	// the rejecting window itself is advanced (see below).
	for i, w := range l.windows {
		states[i].events = evict(states[i].events, now, w.Duration)
		if len(states[i].events) >= w.Limit {
			name := ""
			if i < len(namedWindows) {
				name = namedWindows[i]
			}
			retryAfter := w.Duration
			if len(states[i].events) > 0 {
				retryAfter = w.Duration - now.Sub(states[i].events[0])
			}
			// The attempt still counts: evict the oldest entry and record
			// this one, per spec.md §4.4 step 3 ("Else evict one, push
			// now, return TooManyRequests") — a caller hammering a
			// saturated window keeps advancing it rather than leaving its
			// state frozen until entries age out on their own.
			if len(states[i].events) > 0 {
				states[i].events = append(states[i].events[1:], now)
			} else {
				states[i].events = append(states[i].events, now)
			}
			l.state[key] = states
			return Result{Allowed: false, WindowName: name, RetryAfter: retryAfter}
		}
	}

	// Second pass: all windows have capacity, record the event in each.
	for i := range l.windows {
		states[i].events = append(states[i].events, now)
	}
	l.state[key] = states
	return Result{Allowed: true}
}

func evict(events []time.Time, now time.Time, duration time.Duration) []time.Time {
	cutoff := now.Add(-duration)
	i := 0
	for i < len(events) && events[i].Before(cutoff) {
		i++
	}
	if i == 0 {
		return events
	}
	return append([]time.Time(nil), events[i:]...)
}

// StartCleanup spawns a goroutine that removes keys untouched for longer
// than maxIdle, every interval. Returns a cancel function.
func (l *Limiter) StartCleanup(interval, maxIdle time.Duration) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				l.cleanup(maxIdle)
			}
		}
	}()
	return func() { close(done) }
}

func (l *Limiter) cleanup(maxIdle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := time.Now().Add(-maxIdle)
	for key, last := range l.lastHit {
		if last.Before(cutoff) {
			delete(l.lastHit, key)
			delete(l.state, key)
		}
	}
}

// Len returns the number of tracked keys (for metrics and tests).
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.state)
}
