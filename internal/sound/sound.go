// Package sound defines abstract feedback events and an audio renderer.
package sound

// Event names one audible feedback occurrence. The session engine emits
// events; a renderer decides what, if anything, they sound like.
type Event string

// Feedback events.
const (
	Keypress Event = "keypress"
	Error    Event = "error"
	Tick     Event = "tick"
	Complete Event = "complete"
)

// Player renders feedback events.
type Player interface {
	Play(Event)
}

// Null is a Player that renders nothing. Used when muted and in tests.
type Null struct{}

// Play implements Player.
func (Null) Play(Event) {}

// Recorder is a Player that remembers every event, for tests.
type Recorder struct {
	Events []Event
}

// Play implements Player.
func (r *Recorder) Play(e Event) {
	r.Events = append(r.Events, e)
}
