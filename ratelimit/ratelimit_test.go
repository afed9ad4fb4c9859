package ratelimit

import (
	"testing"
	"time"
)

func newTestLimiter(limit int, window time.Duration) (*Limiter, *time.Time) {
	l := New(limit, window)
	current := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return current }
	return l, &current
}

func TestAllowSequence(t *testing.T) {
	l, current := newTestLimiter(3, time.Second)

	// Four calls within 100ms: the fourth is rejected.
	want := []bool{true, true, true, false}
	for i, w := range want {
		if got := l.Allow("user"); got != w {
			t.Errorf("call #%d = %v, want %v", i+1, got, w)
		}
		*current = current.Add(25 * time.Millisecond)
	}
}

func TestWindowSlides(t *testing.T) {
	l, current := newTestLimiter(2, time.Second)

	if !l.Allow("u") || !l.Allow("u") {
		t.Fatal("first two calls should be admitted")
	}
	if l.Allow("u") {
		t.Fatal("third call within window should be rejected")
	}

	*current = current.Add(1100 * time.Millisecond)
	if !l.Allow("u") {
		t.Error("call after the window slid past should be admitted")
	}
}

func TestRejectionNotRecorded(t *testing.T) {
	l, current := newTestLimiter(1, time.Second)

	if !l.Allow("u") {
		t.Fatal("first call should be admitted")
	}

	// Hammering while rejected must not extend the rejection.
	for i := 0; i < 10; i++ {
		*current = current.Add(50 * time.Millisecond)
		if l.Allow("u") {
			t.Fatalf("call during window at +%v should be rejected", current)
		}
	}

	*current = current.Add(time.Second)
	if !l.Allow("u") {
		t.Error("rejected attempts were recorded; window never cleared")
	}
}

func TestIdentifiersIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, time.Second)

	if !l.Allow("a") {
		t.Error("first call for a should be admitted")
	}
	if !l.Allow("b") {
		t.Error("b must not be throttled by a's traffic")
	}
}

func TestIdleEviction(t *testing.T) {
	l, current := newTestLimiter(3, time.Second)

	l.Allow("idle")
	if l.Tracked() != 1 {
		t.Fatalf("Tracked() = %d, want 1", l.Tracked())
	}

	// Past idleFactor windows, a sweep drops the identifier.
	*current = current.Add(idleFactor*time.Second + time.Second)
	l.Allow("fresh")

	if l.Tracked() != 1 {
		t.Errorf("Tracked() = %d, want 1 (idle identifier evicted)", l.Tracked())
	}
}
