package stats

import (
	"testing"

	"github.com/hello97-gg/hallotype/internal/model"
)

func TestScoreWPMFormula(t *testing.T) {
	r := Score(model.CharStats{Correct: 250}, nil, 60, model.TierMedium)
	if r.WPM != 50 {
		t.Fatalf("wpm = %d, want 50", r.WPM)
	}
}

func TestScoreAccuracy(t *testing.T) {
	// 100 typed characters, 10 of them errors.
	cs := model.CharStats{Correct: 90, Incorrect: 10}
	r := Score(cs, nil, 60, model.TierMedium)
	if r.Accuracy != 90 {
		t.Fatalf("accuracy = %d, want 90", r.Accuracy)
	}
	if r.TotalChars != 100 || r.Errors != 10 {
		t.Fatalf("totals = %d/%d, want 100/10", r.TotalChars, r.Errors)
	}
}

func TestScoreZeroInput(t *testing.T) {
	r := Score(model.CharStats{}, nil, 30, model.TierEasy)
	if r.WPM != 0 || r.RawWPM != 0 || r.Accuracy != 0 || r.Consistency != 0 {
		t.Fatalf("zero-input score = %+v, want all zeros", r)
	}
}

func TestScoreUsesConfiguredLimit(t *testing.T) {
	// Same stats over a configured 30s window regardless of when the
	// session actually ended.
	r := Score(model.CharStats{Correct: 150}, nil, 30, model.TierHard)
	if r.WPM != 60 {
		t.Fatalf("wpm = %d, want 60 normalized to the configured limit", r.WPM)
	}
}

func TestScoreMissedLowersAccuracyNotRaw(t *testing.T) {
	// Missed characters count as errors but were never typed.
	cs := model.CharStats{Correct: 95, Missed: 5}
	r := Score(cs, nil, 60, model.TierMedium)
	if r.TotalChars != 95 {
		t.Fatalf("total chars = %d, want 95", r.TotalChars)
	}
	if r.Accuracy != 95 {
		// (95 - 5) / 95 * 100 = 94.7 -> 95
		t.Fatalf("accuracy = %d, want 95", r.Accuracy)
	}
}

func TestConsistency(t *testing.T) {
	snap := func(wpm int) model.Snapshot { return model.Snapshot{CorrectWPM: wpm} }
	tests := []struct {
		name  string
		snaps []model.Snapshot
		want  int
	}{
		{"no snapshots", nil, 0},
		{"single snapshot", []model.Snapshot{snap(80)}, 0},
		{"uniform series", []model.Snapshot{snap(60), snap(60), snap(60)}, 100},
		{"zero mean", []model.Snapshot{snap(0), snap(0)}, 0},
		{"wild swings", []model.Snapshot{snap(1), snap(199)}, 1},
		{"idle half", []model.Snapshot{snap(0), snap(100)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Consistency(tt.snaps); got != tt.want {
				t.Fatalf("consistency = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestConsistencyBounded(t *testing.T) {
	series := [][]int{
		{10, 200}, {50, 50, 50}, {0, 100}, {3, 1, 4, 1, 5, 9, 2, 6},
	}
	for _, wpms := range series {
		snaps := make([]model.Snapshot, len(wpms))
		for i, w := range wpms {
			snaps[i] = model.Snapshot{CorrectWPM: w}
		}
		got := Consistency(snaps)
		if got < 0 || got > 100 {
			t.Fatalf("consistency %d out of [0,100] for %v", got, wpms)
		}
	}
}

func TestWPMGuards(t *testing.T) {
	if WPM(100, 0) != 0 {
		t.Fatalf("zero elapsed must yield 0")
	}
	if WPM(100, -5) != 0 {
		t.Fatalf("negative elapsed must yield 0")
	}
}
