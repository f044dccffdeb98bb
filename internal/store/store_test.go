package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hello97-gg/hallotype/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "hallotype.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return s
}

func sampleItem(wpm, accuracy, timeLimit int, at time.Time) model.HistoryItem {
	return model.HistoryItem{
		ScoreResult: model.ScoreResult{
			WPM:         wpm,
			RawWPM:      wpm + 5,
			Accuracy:    accuracy,
			Consistency: 80,
			CharStats:   model.CharStats{Correct: wpm * 2, Incorrect: 3},
			Snapshots: []model.Snapshot{
				{ElapsedSeconds: 1, CorrectWPM: wpm, RawWPM: wpm + 5, Errors: 1},
			},
			Errors:     3,
			TotalChars: wpm*2 + 3,
			TimeLimit:  timeLimit,
			Tier:       model.TierMedium,
		},
		Timestamp: at,
	}
}

func TestInsertAndListHistory(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, wpm := range []int{40, 55, 48} {
		if _, err := s.InsertResult(ctx, sampleItem(wpm, 90+i, 30, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("InsertResult: %v", err)
		}
	}

	items, err := s.ListHistory(ctx, 0)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	if items[0].WPM != 40 || items[2].WPM != 48 {
		t.Errorf("history out of order: %d..%d", items[0].WPM, items[2].WPM)
	}
	if len(items[1].Snapshots) != 1 || items[1].Snapshots[0].CorrectWPM != 55 {
		t.Errorf("snapshots not round-tripped: %+v", items[1].Snapshots)
	}
	if !items[0].Timestamp.Equal(base) {
		t.Errorf("timestamp = %v, want %v", items[0].Timestamp, base)
	}

	recent, err := s.ListHistory(ctx, 2)
	if err != nil {
		t.Fatalf("ListHistory limited: %v", err)
	}
	if len(recent) != 2 || recent[0].WPM != 55 {
		t.Errorf("limited history = %+v, want most recent two", recent)
	}
}

func TestHighScoresTrackedIndependently(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	at := time.Now().UTC()
	// Best wpm and best accuracy come from different sessions.
	if _, err := s.InsertResult(ctx, sampleItem(70, 85, 30, at)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.InsertResult(ctx, sampleItem(50, 99, 60, at.Add(time.Minute))); err != nil {
		t.Fatal(err)
	}

	hs, err := s.HighScores(ctx)
	if err != nil {
		t.Fatalf("HighScores: %v", err)
	}
	if hs.WPM != 70 || hs.Accuracy != 99 {
		t.Errorf("HighScores = %+v, want {70 99}", hs)
	}

	best, err := s.BestWPMForTimeLimit(ctx, 60)
	if err != nil {
		t.Fatalf("BestWPMForTimeLimit: %v", err)
	}
	if best != 50 {
		t.Errorf("best wpm for 60s = %d, want 50", best)
	}
	none, err := s.BestWPMForTimeLimit(ctx, 120)
	if err != nil {
		t.Fatal(err)
	}
	if none != 0 {
		t.Errorf("best wpm for unused limit = %d, want 0", none)
	}
}

func TestTotalTypingTime(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	total, err := s.TotalTypingTime(ctx)
	if err != nil {
		t.Fatalf("TotalTypingTime: %v", err)
	}
	if total != 0 {
		t.Errorf("empty store total = %d, want 0", total)
	}

	at := time.Now().UTC()
	for _, limit := range []int{15, 30, 120} {
		if _, err := s.InsertResult(ctx, sampleItem(40, 90, limit, at)); err != nil {
			t.Fatal(err)
		}
		at = at.Add(time.Minute)
	}
	total, err = s.TotalTypingTime(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if total != 165 {
		t.Errorf("total = %d, want 165", total)
	}
}

func TestAchievementsKeepOriginalUnlockTime(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := s.UnlockAchievements(ctx, []string{"wpm_50", "tests_10"}, first); err != nil {
		t.Fatalf("UnlockAchievements: %v", err)
	}
	// Re-unlocking must not move the timestamp.
	if err := s.UnlockAchievements(ctx, []string{"wpm_50", "wpm_70"}, first.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	got, err := s.Achievements(ctx)
	if err != nil {
		t.Fatalf("Achievements: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d achievements, want 3", len(got))
	}
	if !got["wpm_50"].Equal(first) {
		t.Errorf("wpm_50 unlocked at %v, want %v", got["wpm_50"], first)
	}
	if !got["wpm_70"].Equal(first.Add(time.Hour)) {
		t.Errorf("wpm_70 unlocked at %v", got["wpm_70"])
	}
}

func TestPrefsRoundTripAndDefaults(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p, err := s.LoadPrefs(ctx)
	if err != nil {
		t.Fatalf("LoadPrefs on empty store: %v", err)
	}
	if p.TimeLimit != model.DefaultTimeLimit || p.Tier != model.DefaultTier {
		t.Errorf("empty-store prefs = %+v, want defaults", p)
	}

	want := model.Prefs{TimeLimit: 60, Tier: model.TierHard, KeySound: "click", Muted: true}
	if err := s.SavePrefs(ctx, want); err != nil {
		t.Fatalf("SavePrefs: %v", err)
	}
	got, err := s.LoadPrefs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("LoadPrefs = %+v, want %+v", got, want)
	}
}

func TestEquippedBadge(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.EquippedBadge(ctx)
	if err != nil {
		t.Fatalf("EquippedBadge: %v", err)
	}
	if id != "" {
		t.Errorf("fresh store badge = %q, want empty", id)
	}

	if err := s.SetEquippedBadge(ctx, "wpm_100"); err != nil {
		t.Fatalf("SetEquippedBadge: %v", err)
	}
	id, err = s.EquippedBadge(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if id != "wpm_100" {
		t.Errorf("badge = %q, want wpm_100", id)
	}

	if err := s.SetEquippedBadge(ctx, ""); err != nil {
		t.Fatal(err)
	}
	id, err = s.EquippedBadge(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if id != "" {
		t.Errorf("unequipped badge = %q, want empty", id)
	}
}
