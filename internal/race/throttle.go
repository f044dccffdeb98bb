// Package race carries the multiplayer client side: throttled progress
// replication over a websocket and peer-state consumption.
package race

import (
	"sync"
	"time"

	"github.com/hello97-gg/hallotype/internal/model"
)

// PublishInterval is the minimum spacing between progress publishes.
const PublishInterval = 500 * time.Millisecond

// Update is one replicated progress sample.
type Update struct {
	Status   model.PlayerStatus `json:"status"`
	WPM      int                `json:"wpm"`
	Accuracy int                `json:"accuracy"`
	Progress int                `json:"progress"`
}

// Throttle rate-limits progress publishes. The first update in a window
// goes out immediately; later updates in the same window coalesce, and only
// the newest one is sent when the window elapses. The trailing send ends
// the window, so the next update after it publishes immediately again.
// Nothing queues beyond the single pending value.
type Throttle struct {
	mu       sync.Mutex
	interval time.Duration
	publish  func(Update)
	last     time.Time
	pending  *Update
	timer    *time.Timer
	closed   bool
}

// NewThrottle wraps publish with an interval gate.
func NewThrottle(interval time.Duration, publish func(Update)) *Throttle {
	return &Throttle{interval: interval, publish: publish}
}

// Offer submits an update. It either publishes now, or replaces the
// pending value scheduled for the end of the current window.
func (t *Throttle) Offer(u Update) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	now := time.Now()
	if t.timer == nil && now.Sub(t.last) >= t.interval {
		t.last = now
		t.mu.Unlock()
		t.publish(u)
		return
	}
	t.pending = &u
	if t.timer == nil {
		wait := t.interval - now.Sub(t.last)
		t.timer = time.AfterFunc(wait, t.flush)
	}
	t.mu.Unlock()
}

func (t *Throttle) flush() {
	t.mu.Lock()
	t.timer = nil
	if t.closed || t.pending == nil {
		t.mu.Unlock()
		return
	}
	u := *t.pending
	t.pending = nil
	t.mu.Unlock()
	t.publish(u)
}

// Close cancels any scheduled trailing publish without firing it.
func (t *Throttle) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.pending = nil
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
