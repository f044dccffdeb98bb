package engine

import "time"

// Clock tracks elapsed time for one session. In local mode the zero-point
// is captured on the first keystroke; in anchored mode it is supplied by
// the room host and may lie in the future.
type Clock struct {
	now   func() time.Time
	limit time.Duration

	start    time.Time
	running  bool
	anchored bool
	fired    bool
}

// NewClock returns a local-mode clock for the given time limit.
func NewClock(limit time.Duration, now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now, limit: limit}
}

// Start records the local start instant. A second call is a no-op.
func (c *Clock) Start() {
	if c.running {
		return
	}
	c.start = c.now()
	c.running = true
}

// Anchor sets an externally supplied start instant, switching the clock to
// anchored mode.
func (c *Clock) Anchor(start time.Time) {
	c.start = start
	c.running = true
	c.anchored = true
}

// Anchored reports whether the zero-point was supplied externally.
func (c *Clock) Anchored() bool { return c.anchored }

// Running reports whether a start instant is known.
func (c *Clock) Running() bool { return c.running }

// Elapsed returns time since the start instant, never negative.
func (c *Clock) Elapsed() time.Duration {
	if !c.running {
		return 0
	}
	d := c.now().Sub(c.start)
	if d < 0 {
		return 0
	}
	return d
}

// Remaining returns the time left. A future anchor clamps it to the full
// limit.
func (c *Clock) Remaining() time.Duration {
	if !c.running {
		return c.limit
	}
	r := c.limit - c.Elapsed()
	if r < 0 {
		return 0
	}
	if r > c.limit {
		return c.limit
	}
	return r
}

// Expired reports the first zero-crossing of Remaining. It returns true
// exactly once; later polls after expiry return false.
func (c *Clock) Expired() bool {
	if c.fired || !c.running {
		return false
	}
	if c.Remaining() > 0 {
		return false
	}
	c.fired = true
	return true
}

// Reset returns the clock to its initial local-mode state.
func (c *Clock) Reset(limit time.Duration) {
	c.limit = limit
	c.start = time.Time{}
	c.running = false
	c.anchored = false
	c.fired = false
}
