package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/hello97-gg/hallotype/internal/model"
	"github.com/hello97-gg/hallotype/internal/sound"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1700000000, 0)}
}

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func typeWord(e *Engine, word string) {
	for _, r := range word {
		e.Type(r)
	}
	e.Type(' ')
}

func TestClassification(t *testing.T) {
	tests := []struct {
		name  string
		words []string
		input string
		want  model.CharStats
	}{
		{
			name:  "all correct with boundary credit",
			words: []string{"ghost", "bat"},
			input: "ghost ",
			want:  model.CharStats{Correct: 6},
		},
		{
			name:  "mismatch mid word",
			words: []string{"ghost"},
			input: "ghast",
			want:  model.CharStats{Correct: 4, Incorrect: 1},
		},
		{
			name:  "extra characters",
			words: []string{"bat"},
			input: "batty",
			want:  model.CharStats{Correct: 3, Extra: 2},
		},
		{
			name:  "short word counts missed on commit",
			words: []string{"pumpkin", "bat"},
			input: "pum ",
			want:  model.CharStats{Correct: 3, Missed: 4},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := newFakeClock()
			e := New(Config{Words: tt.words, TimeLimit: 30, Tier: model.TierEasy, Now: fc.now})
			for _, r := range tt.input {
				e.Type(r)
			}
			if got := e.Stats(); got != tt.want {
				t.Fatalf("stats = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestWordBoundarySameLengthMismatch(t *testing.T) {
	// "ghast " against "ghost": one incorrect from the per-character pass,
	// zero missed on commit, and the index advances regardless.
	fc := newFakeClock()
	e := New(Config{Words: []string{"ghost", "bat"}, TimeLimit: 30, Tier: model.TierEasy, Now: fc.now})
	typeWord(e, "ghast")
	want := model.CharStats{Correct: 4, Incorrect: 1}
	if got := e.Stats(); got != want {
		t.Fatalf("stats = %+v, want %+v", got, want)
	}
	if e.WordIndex() != 1 {
		t.Fatalf("word index = %d, want 1", e.WordIndex())
	}
}

func TestSpaceOnEmptyBufferIgnored(t *testing.T) {
	fc := newFakeClock()
	e := New(Config{Words: []string{"ghost"}, TimeLimit: 30, Tier: model.TierEasy, Now: fc.now})
	e.Type(' ')
	if e.WordIndex() != 0 || e.State() != NotStarted {
		t.Fatalf("space on empty buffer must not advance or start")
	}
}

func TestStatMonotonicity(t *testing.T) {
	fc := newFakeClock()
	e := New(Config{Words: strings.Fields("one two three four"), TimeLimit: 30, Tier: model.TierEasy, Now: fc.now})
	prev := 0
	for _, r := range "onX \brtwoo  three" {
		if r == '\b' {
			e.Backspace()
		} else {
			e.Type(r)
		}
		total := e.Stats().Total()
		if total < prev {
			t.Fatalf("judgment total decreased: %d -> %d", prev, total)
		}
		prev = total
	}
}

func TestBackspaceDoesNotReclassify(t *testing.T) {
	fc := newFakeClock()
	e := New(Config{Words: []string{"ghost"}, TimeLimit: 30, Tier: model.TierEasy, Now: fc.now})
	e.Type('g')
	e.Type('x')
	before := e.Stats()
	e.Backspace()
	e.Backspace()
	if got := e.Stats(); got != before {
		t.Fatalf("stats changed on backspace: %+v -> %+v", before, got)
	}
	if e.TypedWord() != "" {
		t.Fatalf("buffer = %q, want empty", e.TypedWord())
	}
}

func TestSoundEvents(t *testing.T) {
	rec := &sound.Recorder{}
	fc := newFakeClock()
	e := New(Config{Words: []string{"bat"}, TimeLimit: 30, Tier: model.TierEasy, Now: fc.now, Sounds: rec})
	e.Type('b')
	e.Type('x')
	e.Type('t')
	e.Type('s')
	want := []sound.Event{sound.Keypress, sound.Error, sound.Keypress, sound.Error}
	if len(rec.Events) != len(want) {
		t.Fatalf("events = %v, want %v", rec.Events, want)
	}
	for i := range want {
		if rec.Events[i] != want[i] {
			t.Fatalf("event %d = %v, want %v", i, rec.Events[i], want[i])
		}
	}
}

func TestIdempotentCompletion(t *testing.T) {
	fc := newFakeClock()
	completions := 0
	e := New(Config{
		Words: []string{"ghost", "bat"}, TimeLimit: 15, Tier: model.TierEasy, Now: fc.now,
		OnComplete: func(model.ScoreResult) { completions++ },
	})
	e.Type('g')
	fc.advance(16 * time.Second)

	if _, fired := e.Poll(); !fired {
		t.Fatalf("first zero-crossing poll must fire completion")
	}
	if _, fired := e.Poll(); fired {
		t.Fatalf("second zero-crossing poll must be a no-op")
	}
	if completions != 1 {
		t.Fatalf("completions = %d, want 1", completions)
	}

	snaps := len(e.Snapshots())
	e.Sample()
	if len(e.Snapshots()) != snaps {
		t.Fatalf("sampler must not fire after completion")
	}
	e.Type('h')
	if e.Stats().Correct != 1 {
		t.Fatalf("keystrokes after completion must be ignored")
	}
}

func TestZeroKeystrokeSession(t *testing.T) {
	fc := newFakeClock()
	e := New(Config{Words: []string{"ghost"}, TimeLimit: 15, Tier: model.TierEasy, Now: fc.now})
	e.Anchor(fc.t)
	fc.advance(16 * time.Second)
	if _, fired := e.Poll(); !fired {
		t.Fatalf("anchored session must expire without keystrokes")
	}
	r, ok := e.Result()
	if !ok {
		t.Fatalf("expected a result")
	}
	if r.WPM != 0 || r.RawWPM != 0 || r.Accuracy != 0 || r.Consistency != 0 {
		t.Fatalf("zero-keystroke result = %+v, want all zeros", r)
	}
}

func TestTextExhaustionSinglePlayer(t *testing.T) {
	fc := newFakeClock()
	e := New(Config{Words: []string{"go", "on"}, TimeLimit: 60, Tier: model.TierEasy, Now: fc.now})
	typeWord(e, "go")
	if e.State() == Complete {
		t.Fatalf("session ended before text exhausted")
	}
	typeWord(e, "on")
	if e.State() != Complete {
		t.Fatalf("single-player session must end when text is exhausted")
	}
}

func TestTextExhaustionIgnoredInRace(t *testing.T) {
	fc := newFakeClock()
	e := New(Config{Words: []string{"go", "on"}, TimeLimit: 60, Tier: model.TierEasy, Now: fc.now, Race: true})
	e.Anchor(fc.t)
	typeWord(e, "go")
	typeWord(e, "on")
	if e.State() == Complete {
		t.Fatalf("race session must end strictly by time limit")
	}
	if e.Progress() != 100 {
		t.Fatalf("progress = %d, want 100", e.Progress())
	}
	// Input past the end of the shared text is ignored.
	e.Type('x')
	if e.Stats().Extra != 0 || e.Stats().Incorrect != 0 {
		t.Fatalf("input past end of text must not be classified")
	}
}

func TestAnchoredFutureStartClampsRemaining(t *testing.T) {
	fc := newFakeClock()
	e := New(Config{Words: []string{"ghost"}, TimeLimit: 30, Tier: model.TierEasy, Now: fc.now, Race: true})
	e.Anchor(fc.t.Add(10 * time.Second))
	if got := e.Remaining(); got != 30*time.Second {
		t.Fatalf("remaining = %v, want full limit for future anchor", got)
	}
}

func TestSnapshotSeries(t *testing.T) {
	fc := newFakeClock()
	e := New(Config{Words: strings.Fields(strings.Repeat("tick ", 10)), TimeLimit: 30, Tier: model.TierEasy, Now: fc.now})
	typeWord(e, "tick") // 5 correct chars
	fc.advance(time.Second)
	e.Sample()
	e.Type('x') // incorrect against "tick"
	typeWord(e, "ick")
	fc.advance(time.Second)
	e.Sample()

	snaps := e.Snapshots()
	if len(snaps) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snaps))
	}
	if snaps[0].CorrectWPM != 60 {
		t.Fatalf("first snapshot wpm = %d, want 60", snaps[0].CorrectWPM)
	}
	if snaps[0].Errors != 0 {
		t.Fatalf("first snapshot errors = %d, want 0", snaps[0].Errors)
	}
	// Second second: one incorrect from the stray leading character.
	if snaps[1].Errors != 1 {
		t.Fatalf("second snapshot errors = %d, want 1", snaps[1].Errors)
	}
}

func TestResetClearsEverything(t *testing.T) {
	fc := newFakeClock()
	e := New(Config{Words: []string{"ghost"}, TimeLimit: 15, Tier: model.TierEasy, Now: fc.now})
	typeWord(e, "gho")
	fc.advance(time.Second)
	e.Sample()
	e.Reset([]string{"bat", "cat"})

	if e.State() != NotStarted || e.WordIndex() != 0 || e.TypedWord() != "" {
		t.Fatalf("reset left cursor state behind")
	}
	if e.Stats().Total() != 0 || len(e.Snapshots()) != 0 {
		t.Fatalf("reset left counters or snapshots behind")
	}
	if got := e.Remaining(); got != 15*time.Second {
		t.Fatalf("remaining after reset = %v, want full limit", got)
	}
}

func TestEndToEndUniformRate(t *testing.T) {
	// 30 second session typed at a constant 60 WPM with zero errors:
	// one 4-letter word plus separator per second.
	fc := newFakeClock()
	var result model.ScoreResult
	done := false
	targets := strings.Fields(strings.Repeat("tick ", 200))
	e := New(Config{
		Words: targets, TimeLimit: 30, Tier: model.TierEasy, Now: fc.now,
		OnComplete: func(r model.ScoreResult) { result = r; done = true },
	})

	for i := 0; i < 30; i++ {
		typeWord(e, "tick")
		fc.advance(time.Second)
		e.Sample()
		e.Poll()
	}
	if !done {
		t.Fatalf("session did not complete at the time limit")
	}
	if result.WPM != 60 || result.RawWPM != 60 {
		t.Fatalf("wpm = %d raw = %d, want 60/60", result.WPM, result.RawWPM)
	}
	if result.Accuracy != 100 {
		t.Fatalf("accuracy = %d, want 100", result.Accuracy)
	}
	if result.Consistency != 100 {
		t.Fatalf("consistency = %d, want 100 for a uniform rate", result.Consistency)
	}
	if result.TotalChars != 150 {
		t.Fatalf("total chars = %d, want 150", result.TotalChars)
	}
}
