package engine

import (
	"testing"
	"time"
)

func TestClockLocalMode(t *testing.T) {
	fc := newFakeClock()
	c := NewClock(30*time.Second, fc.now)

	if c.Remaining() != 30*time.Second {
		t.Fatalf("remaining before start = %v, want full limit", c.Remaining())
	}
	c.Start()
	fc.advance(10 * time.Second)
	if c.Elapsed() != 10*time.Second {
		t.Fatalf("elapsed = %v, want 10s", c.Elapsed())
	}
	if c.Remaining() != 20*time.Second {
		t.Fatalf("remaining = %v, want 20s", c.Remaining())
	}
}

func TestClockStartIsIdempotent(t *testing.T) {
	fc := newFakeClock()
	c := NewClock(30*time.Second, fc.now)
	c.Start()
	fc.advance(5 * time.Second)
	c.Start()
	if c.Elapsed() != 5*time.Second {
		t.Fatalf("second Start must not move the zero-point")
	}
}

func TestClockExpiredFiresOnce(t *testing.T) {
	fc := newFakeClock()
	c := NewClock(10*time.Second, fc.now)
	c.Start()

	if c.Expired() {
		t.Fatalf("expired before the limit")
	}
	fc.advance(11 * time.Second)
	if !c.Expired() {
		t.Fatalf("first zero-crossing must report expiry")
	}
	if c.Expired() {
		t.Fatalf("expiry must fire exactly once")
	}
}

func TestClockAnchoredFuture(t *testing.T) {
	fc := newFakeClock()
	c := NewClock(30*time.Second, fc.now)
	c.Anchor(fc.t.Add(5 * time.Second))

	if !c.Anchored() {
		t.Fatalf("clock should report anchored mode")
	}
	if c.Elapsed() != 0 {
		t.Fatalf("elapsed for future anchor = %v, want 0", c.Elapsed())
	}
	if c.Remaining() != 30*time.Second {
		t.Fatalf("future anchor must clamp remaining to the limit")
	}

	fc.advance(10 * time.Second)
	if c.Remaining() != 25*time.Second {
		t.Fatalf("remaining = %v, want 25s", c.Remaining())
	}
}

func TestClockReset(t *testing.T) {
	fc := newFakeClock()
	c := NewClock(30*time.Second, fc.now)
	c.Start()
	fc.advance(40 * time.Second)
	if !c.Expired() {
		t.Fatalf("expected expiry")
	}
	c.Reset(15 * time.Second)
	if c.Running() || c.Anchored() {
		t.Fatalf("reset must return to initial local state")
	}
	if c.Remaining() != 15*time.Second {
		t.Fatalf("remaining after reset = %v, want new limit", c.Remaining())
	}
	c.Start()
	fc.advance(16 * time.Second)
	if !c.Expired() {
		t.Fatalf("reset clock must be able to expire again")
	}
}
