// Package engine implements the stateful typing-session core: keystroke
// classification, the session state machine, the clock, and per-second
// performance snapshots.
package engine

import (
	"math"
	"time"

	"github.com/hello97-gg/hallotype/internal/model"
	"github.com/hello97-gg/hallotype/internal/sound"
	"github.com/hello97-gg/hallotype/internal/stats"
)

// State is the session lifecycle phase.
type State int

// Session states. Complete is terminal.
const (
	NotStarted State = iota
	Running
	Complete
)

// Config describes one typing session.
type Config struct {
	Words     []string
	TimeLimit int // seconds
	Tier      model.Tier

	// Race sessions end strictly by time limit, never by exhausting the
	// shared target text.
	Race bool

	Now        func() time.Time
	Sounds     sound.Player
	OnComplete func(model.ScoreResult)
}

// Engine is the per-session typing core. It is event-driven and never
// blocks: the caller delivers keystrokes and drives Poll and Sample from
// its own timers. All methods must be called from a single goroutine.
type Engine struct {
	cfg   Config
	clock *Clock

	state     State
	wordIndex int
	typed     []rune

	charStats    model.CharStats
	snapshots    []model.Snapshot
	errsAtSample int

	prevRemaining time.Duration
	result        *model.ScoreResult
}

// New builds an engine for one session.
func New(cfg Config) *Engine {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Sounds == nil {
		cfg.Sounds = sound.Null{}
	}
	e := &Engine{cfg: cfg}
	e.reset(cfg.Words)
	return e
}

// Anchor supplies the externally agreed start instant for a race session.
// The clock runs from it even before the first local keystroke.
func (e *Engine) Anchor(start time.Time) {
	e.clock.Anchor(start)
}

// Type processes one appended character. A space commits the current word;
// any other rune is classified against the target word. Input after
// completion is ignored.
func (e *Engine) Type(r rune) {
	if e.state == Complete {
		return
	}
	if r == ' ' {
		e.commitWord()
		return
	}
	e.appendChar(r)
}

// Backspace removes the last character of the current word's buffer.
// Statistics are not reclassified on deletion.
func (e *Engine) Backspace() {
	if e.state == Complete || len(e.typed) == 0 {
		return
	}
	e.typed = e.typed[:len(e.typed)-1]
}

func (e *Engine) appendChar(r rune) {
	if e.wordIndex >= len(e.cfg.Words) {
		return
	}
	e.start()

	e.typed = append(e.typed, r)
	i := len(e.typed) - 1
	target := []rune(e.cfg.Words[e.wordIndex])
	switch {
	case i >= len(target):
		e.charStats.Extra++
		e.cfg.Sounds.Play(sound.Error)
	case r != target[i]:
		e.charStats.Incorrect++
		e.cfg.Sounds.Play(sound.Error)
	default:
		e.charStats.Correct++
		e.cfg.Sounds.Play(sound.Keypress)
	}
}

func (e *Engine) commitWord() {
	if len(e.typed) == 0 || e.wordIndex >= len(e.cfg.Words) {
		return
	}
	e.cfg.Sounds.Play(sound.Keypress)

	target := e.cfg.Words[e.wordIndex]
	typed := string(e.typed)
	if typed == target {
		// The separator itself counts as a correct character.
		e.charStats.Correct++
	} else if missing := len([]rune(target)) - len(e.typed); missing > 0 {
		e.charStats.Missed += missing
	}

	e.wordIndex++
	e.typed = nil

	if !e.cfg.Race && e.wordIndex >= len(e.cfg.Words) {
		e.finish()
	}
}

func (e *Engine) start() {
	if e.state != NotStarted {
		return
	}
	e.state = Running
	if !e.clock.Anchored() {
		e.clock.Start()
	}
}

// Poll samples the clock for display and detects expiry. It returns the
// remaining time and whether this call fired the completion transition.
// The transition fires at most once; repeat zero-crossing polls are no-ops.
func (e *Engine) Poll() (time.Duration, bool) {
	if e.state == Complete {
		return 0, false
	}
	remaining := e.clock.Remaining()

	// Anchored races run from the shared start instant even before the
	// first local keystroke.
	if e.state == NotStarted && e.clock.Anchored() {
		e.state = Running
	}

	if e.state == Running && remaining <= 5*time.Second && remaining > 0 {
		prev := int(math.Ceil(e.prevRemaining.Seconds()))
		cur := int(math.Ceil(remaining.Seconds()))
		if cur < prev {
			e.cfg.Sounds.Play(sound.Tick)
		}
	}
	e.prevRemaining = remaining

	if e.state == Running && e.clock.Expired() {
		e.finish()
		return 0, true
	}
	return remaining, false
}

// Sample appends a performance snapshot. It is driven once per second by
// the caller and does nothing outside the Running state.
func (e *Engine) Sample() {
	if e.state != Running || !e.clock.Running() {
		return
	}
	elapsed := e.clock.Elapsed().Seconds()
	if elapsed <= 0 {
		return
	}
	typed := e.charStats.Correct + e.charStats.Incorrect + e.charStats.Extra
	errs := e.charStats.Incorrect + e.charStats.Extra + e.charStats.Missed
	e.snapshots = append(e.snapshots, model.Snapshot{
		ElapsedSeconds: int(math.Round(elapsed)),
		CorrectWPM:     int(math.Round(stats.WPM(e.charStats.Correct, elapsed))),
		RawWPM:         int(math.Round(stats.WPM(typed, elapsed))),
		Errors:         errs - e.errsAtSample,
	})
	e.errsAtSample = errs
}

func (e *Engine) finish() {
	if e.state == Complete {
		return
	}
	e.state = Complete
	result := stats.Score(e.charStats, e.snapshots, e.cfg.TimeLimit, e.cfg.Tier)
	e.result = &result
	e.cfg.Sounds.Play(sound.Complete)
	if e.cfg.OnComplete != nil {
		e.cfg.OnComplete(result)
	}
}

// Reset fully reinitializes the engine for a new target text. No counters,
// snapshots, or clock state carry over.
func (e *Engine) Reset(words []string) {
	e.reset(words)
}

func (e *Engine) reset(words []string) {
	e.cfg.Words = words
	if e.clock == nil {
		e.clock = NewClock(time.Duration(e.cfg.TimeLimit)*time.Second, e.cfg.Now)
	} else {
		e.clock.Reset(time.Duration(e.cfg.TimeLimit) * time.Second)
	}
	e.state = NotStarted
	e.wordIndex = 0
	e.typed = nil
	e.charStats = model.CharStats{}
	e.snapshots = nil
	e.errsAtSample = 0
	e.prevRemaining = time.Duration(e.cfg.TimeLimit) * time.Second
	e.result = nil
}

// State returns the lifecycle phase.
func (e *Engine) State() State { return e.state }

// Words returns the session's target text.
func (e *Engine) Words() []string { return e.cfg.Words }

// WordIndex returns the logical cursor's word position.
func (e *Engine) WordIndex() int { return e.wordIndex }

// TypedWord returns the input buffer for the current word.
func (e *Engine) TypedWord() string { return string(e.typed) }

// Stats returns the accumulated character statistics.
func (e *Engine) Stats() model.CharStats { return e.charStats }

// Snapshots returns the per-second performance series.
func (e *Engine) Snapshots() []model.Snapshot { return e.snapshots }

// Result returns the final score once the session is complete.
func (e *Engine) Result() (model.ScoreResult, bool) {
	if e.result == nil {
		return model.ScoreResult{}, false
	}
	return *e.result, true
}

// Remaining returns the time left on the session clock.
func (e *Engine) Remaining() time.Duration { return e.clock.Remaining() }

// LiveWPM returns the current correct-character rate for live display and
// progress replication.
func (e *Engine) LiveWPM() int {
	if !e.clock.Running() {
		return 0
	}
	return int(math.Round(stats.WPM(e.charStats.Correct, e.clock.Elapsed().Seconds())))
}

// Progress returns the share of the target text committed, in percent.
func (e *Engine) Progress() int {
	if len(e.cfg.Words) == 0 {
		return 0
	}
	p := e.wordIndex * 100 / len(e.cfg.Words)
	if p > 100 {
		return 100
	}
	return p
}
