package race

import (
	"sync"
	"testing"
	"time"

	"github.com/hello97-gg/hallotype/internal/model"
)

type recorder struct {
	mu   sync.Mutex
	got  []Update
	when []time.Time
}

func (r *recorder) publish(u Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, u)
	r.when = append(r.when, time.Now())
}

func (r *recorder) updates() []Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Update(nil), r.got...)
}

func wpm(n int) Update {
	return Update{Status: model.PlayerTyping, WPM: n, Progress: n}
}

func TestThrottleLeadingAndTrailingEdge(t *testing.T) {
	const interval = 80 * time.Millisecond
	rec := &recorder{}
	th := NewThrottle(interval, rec.publish)
	defer th.Close()

	// First call in a window publishes immediately.
	th.Offer(wpm(1))
	// Calls inside the window coalesce; only the last survives.
	th.Offer(wpm(2))
	th.Offer(wpm(3))
	th.Offer(wpm(4))

	if got := rec.updates(); len(got) != 1 || got[0].WPM != 1 {
		t.Fatalf("leading edge: %+v", got)
	}

	time.Sleep(2*interval + 40*time.Millisecond)
	got := rec.updates()
	if len(got) != 2 {
		t.Fatalf("after window: %d publishes, want 2", len(got))
	}
	if got[1].WPM != 4 {
		t.Errorf("trailing publish = %+v, want the newest coalesced value", got[1])
	}

	// A call in a fresh window publishes immediately again.
	th.Offer(wpm(5))
	if got := rec.updates(); len(got) != 3 || got[2].WPM != 5 {
		t.Fatalf("fresh window: %+v", got)
	}
}

func TestThrottleTrailingFlushReopensWindow(t *testing.T) {
	const interval = 300 * time.Millisecond
	rec := &recorder{}
	th := NewThrottle(interval, rec.publish)
	defer th.Close()

	// Offers land at roughly 0, 60, 120 and 180 ms into a 300 ms window.
	th.Offer(wpm(1))
	for i := 2; i <= 4; i++ {
		time.Sleep(60 * time.Millisecond)
		th.Offer(wpm(i))
	}
	// The trailing flush at ~300 ms ends the window, so an offer after it
	// publishes immediately rather than waiting out another window.
	time.Sleep(interval)
	th.Offer(wpm(5))

	got := rec.updates()
	if len(got) != 3 {
		t.Fatalf("publishes = %+v, want 3", got)
	}
	if got[0].WPM != 1 || got[1].WPM != 4 || got[2].WPM != 5 {
		t.Errorf("publish order = %+v, want values 1, 4, 5", got)
	}
}

func TestThrottleCloseCancelsTrailingPublish(t *testing.T) {
	const interval = 60 * time.Millisecond
	rec := &recorder{}
	th := NewThrottle(interval, rec.publish)

	th.Offer(wpm(1))
	th.Offer(wpm(2))
	th.Close()

	time.Sleep(interval * 2)
	if got := rec.updates(); len(got) != 1 {
		t.Errorf("trailing publish fired after Close: %+v", got)
	}

	// Offers after Close are dropped.
	th.Offer(wpm(9))
	if got := rec.updates(); len(got) != 1 {
		t.Errorf("publish after Close: %+v", got)
	}
}

func TestThrottleBoundsPublishRate(t *testing.T) {
	const interval = 50 * time.Millisecond
	rec := &recorder{}
	th := NewThrottle(interval, rec.publish)
	defer th.Close()

	deadline := time.Now().Add(3 * interval)
	n := 0
	for time.Now().Before(deadline) {
		th.Offer(wpm(n))
		n++
		time.Sleep(2 * time.Millisecond)
	}
	time.Sleep(interval + 30*time.Millisecond)

	// Each window carries at most one leading and one trailing publish,
	// no matter how many offers arrived.
	if got := rec.updates(); len(got) > 8 {
		t.Errorf("%d publishes for %d offers", len(got), n)
	}
}
