package ratelimit

import (
	"testing"
	"time"
)

func TestLimiter_AllowsUpToLimit(t *testing.T) {
	l := New(Window{Limit: 3, Duration: time.Minute})
	for i := 0; i < 3; i++ {
		if res := l.Check("k"); !res.Allowed {
			t.Fatalf("call %d: expected allowed", i)
		}
	}
	res := l.Check("k")
	if res.Allowed {
		t.Fatalf("4th call: expected rejected")
	}
}

func TestLimiter_WindowExpiry(t *testing.T) {
	l := New(Window{Limit: 1, Duration: 50 * time.Millisecond})
	if !l.Check("k").Allowed {
		t.Fatalf("first call should be allowed")
	}
	if l.Check("k").Allowed {
		t.Fatalf("second call within window should be rejected")
	}
	time.Sleep(60 * time.Millisecond)
	if !l.Check("k").Allowed {
		t.Fatalf("call after window elapsed should be allowed")
	}
}

func TestLimiter_MultipleWindowsAllMustPass(t *testing.T) {
	l := New(
		Window{Limit: 10, Duration: time.Minute},
		Window{Limit: 1, Duration: time.Hour},
	)
	if !l.Check("k", "minute", "hour").Allowed {
		t.Fatalf("first call should be allowed")
	}
	res := l.Check("k", "minute", "hour")
	if res.Allowed {
		t.Fatalf("second call should be rejected by the hour window")
	}
	if res.WindowName != "hour" {
		t.Fatalf("WindowName = %q, want %q", res.WindowName, "hour")
	}
}

func TestLimiter_IndependentKeys(t *testing.T) {
	l := New(Window{Limit: 1, Duration: time.Minute})
	if !l.Check("a").Allowed {
		t.Fatalf("key a should be allowed")
	}
	if !l.Check("b").Allowed {
		t.Fatalf("key b should be allowed independently of key a")
	}
}

func TestRegistry_DefaultWindows(t *testing.T) {
	r := NewRegistry(nil)
	for i := 0; i < 4; i++ {
		if res := r.Check(ClassAuthAttempt, "user1"); !res.Allowed {
			t.Fatalf("auth attempt %d: expected allowed", i)
		}
	}
	if res := r.Check(ClassAuthAttempt, "user1"); res.Allowed {
		t.Fatalf("5th auth attempt: expected rejected")
	}
}

func TestLimiter_RejectedCallStillAdvancesWindow(t *testing.T) {
	l := New(Window{Limit: 1, Duration: time.Minute})

	if !l.Check("k").Allowed {
		t.Fatalf("first call should be allowed")
	}
	before := l.state["k"][0].events[0]

	time.Sleep(time.Millisecond)
	res := l.Check("k")
	if res.Allowed {
		t.Fatalf("second call should be rejected")
	}

	after := l.state["k"][0].events
	if len(after) != 1 {
		t.Fatalf("expected window to still hold exactly 1 event, got %d", len(after))
	}
	if !after[0].After(before) {
		t.Fatalf("rejected call did not evict the stale entry and push now: before=%v after=%v", before, after[0])
	}
}

func TestLimiter_Len(t *testing.T) {
	l := New(Window{Limit: 10, Duration: time.Minute})
	l.Check("a")
	l.Check("b")
	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}
}
