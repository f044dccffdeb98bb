// Package achieve holds the achievement catalog and unlock evaluation.
package achieve

import (
	"time"

	"github.com/hello97-gg/hallotype/internal/model"
)

// Kind selects which statistic an achievement threshold applies to.
type Kind string

// Achievement kinds.
const (
	KindWPM      Kind = "wpm"
	KindAccuracy Kind = "accuracy"
	KindTests    Kind = "tests"
)

// Achievement is one unlockable badge.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Kind        Kind
	Threshold   int
}

// Catalog lists every achievement in display order.
var Catalog = []Achievement{
	{ID: "wpm_50", Name: "Warming Up", Description: "Reach 50 wpm.", Kind: KindWPM, Threshold: 50},
	{ID: "wpm_75", Name: "Speedy Fingers", Description: "Reach 75 wpm.", Kind: KindWPM, Threshold: 75},
	{ID: "wpm_100", Name: "Typing Titan", Description: "Reach 100 wpm.", Kind: KindWPM, Threshold: 100},
	{ID: "wpm_125", Name: "Velocity Virtuoso", Description: "Reach 125 wpm.", Kind: KindWPM, Threshold: 125},

	{ID: "acc_98", Name: "Sharp Shooter", Description: "Achieve 98% accuracy.", Kind: KindAccuracy, Threshold: 98},
	{ID: "acc_100", Name: "Perfect Typist", Description: "Achieve 100% accuracy.", Kind: KindAccuracy, Threshold: 100},

	{ID: "tests_1", Name: "First Doodle", Description: "Complete your first test.", Kind: KindTests, Threshold: 1},
	{ID: "tests_10", Name: "Persistent Pecker", Description: "Complete 10 tests.", Kind: KindTests, Threshold: 10},
	{ID: "tests_50", Name: "Dedicated Doodler", Description: "Complete 50 tests.", Kind: KindTests, Threshold: 50},

	{ID: "ghost", Name: "Ghostly Typist", Description: "Reach 66 wpm.", Kind: KindWPM, Threshold: 66},
	{ID: "pumpkin", Name: "Pumpkin King", Description: "Reach 80 wpm.", Kind: KindWPM, Threshold: 80},
	{ID: "skull", Name: "Skeleton Crew", Description: "Complete 13 tests.", Kind: KindTests, Threshold: 13},
	{ID: "bat", Name: "Night Crawler", Description: "Achieve 95% accuracy.", Kind: KindAccuracy, Threshold: 95},
	{ID: "spider", Name: "Web Weaver", Description: "Complete 31 tests.", Kind: KindTests, Threshold: 31},
	{ID: "candy", Name: "Trick or Type", Description: "Reach 100 wpm.", Kind: KindWPM, Threshold: 100},
	{ID: "cauldron", Name: "Potion Master", Description: "Achieve 100% accuracy.", Kind: KindAccuracy, Threshold: 100},
	{ID: "witch", Name: "Witch's Apprentice", Description: "Reach 90 wpm.", Kind: KindWPM, Threshold: 90},
	{ID: "coffin", Name: "Undead Typist", Description: "Complete 66 tests.", Kind: KindTests, Threshold: 66},
	{ID: "moon", Name: "Midnight Typer", Description: "Reach 75 wpm.", Kind: KindWPM, Threshold: 75},
	{ID: "eye", Name: "All-Seeing", Description: "Achieve 99% accuracy.", Kind: KindAccuracy, Threshold: 99},
	{ID: "flame", Name: "Soul Burner", Description: "Reach 120 wpm.", Kind: KindWPM, Threshold: 120},
}

// ByID looks up a catalog entry. Returns false for unknown or empty ids.
func ByID(id string) (Achievement, bool) {
	for _, a := range Catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// Evaluate returns the IDs newly unlocked by a finished session, in catalog
// order. testsCompleted counts the session being evaluated.
func Evaluate(result model.ScoreResult, testsCompleted int, unlocked map[string]time.Time) []string {
	var fresh []string
	for _, a := range Catalog {
		if _, done := unlocked[a.ID]; done {
			continue
		}
		var hit bool
		switch a.Kind {
		case KindWPM:
			hit = result.WPM >= a.Threshold
		case KindAccuracy:
			hit = result.Accuracy >= a.Threshold
		case KindTests:
			hit = testsCompleted >= a.Threshold
		}
		if hit {
			fresh = append(fresh, a.ID)
		}
	}
	return fresh
}
