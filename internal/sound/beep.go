package sound

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(48000)

// tones per event: frequency and duration of a short sine blip.
var tones = map[Event]struct {
	freq float64
	dur  time.Duration
}{
	Keypress: {880, 25 * time.Millisecond},
	Error:    {220, 60 * time.Millisecond},
	Tick:     {660, 40 * time.Millisecond},
	Complete: {523, 180 * time.Millisecond},
}

// Speaker is a Player backed by the system audio device. The device is
// opened lazily on the first event so that no audio resources exist until
// feedback is actually needed.
type Speaker struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	failed      bool
}

// NewSpeaker returns an uninitialized Speaker.
func NewSpeaker() *Speaker {
	return &Speaker{mixer: &beep.Mixer{}}
}

// Play implements Player. Initialization failure mutes the speaker rather
// than surfacing an error to the engine.
func (s *Speaker) Play(e Event) {
	tone, ok := tones[e]
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed {
		return
	}
	if !s.initialized {
		if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
			s.failed = true
			return
		}
		speaker.Play(s.mixer)
		s.initialized = true
	}

	streamer := newBlip(tone.freq, tone.dur)
	speaker.Lock()
	s.mixer.Add(streamer)
	speaker.Unlock()
}

// Close shuts the audio device if it was opened.
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	s.mixer.Clear()
	speaker.Close()
	s.initialized = false
}

// blip is a short sine tone with a linear fade-out.
type blip struct {
	freq     float64
	phase    float64
	total    int
	position int
}

func newBlip(freq float64, dur time.Duration) beep.Streamer {
	return &blip{freq: freq, total: sampleRate.N(dur)}
}

func (b *blip) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if b.position >= b.total {
			return i, false
		}
		fade := 1 - float64(b.position)/float64(b.total)
		v := math.Sin(2*math.Pi*b.phase) * 0.4 * fade
		samples[i][0] = v
		samples[i][1] = v
		b.phase += b.freq / float64(sampleRate)
		b.phase -= math.Floor(b.phase)
		b.position++
	}
	return len(samples), true
}

func (b *blip) Err() error { return nil }
