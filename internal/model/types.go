// Package model defines shared data structures.
package model

import "time"

// Tier selects a word-list difficulty.
type Tier string

// Difficulty tiers.
const (
	TierEasy   Tier = "easy"
	TierMedium Tier = "medium"
	TierHard   Tier = "hard"
)

// ValidTier reports whether t names a known difficulty tier.
func ValidTier(t Tier) bool {
	switch t {
	case TierEasy, TierMedium, TierHard:
		return true
	}
	return false
}

// TimeOptions lists the selectable session durations in seconds.
var TimeOptions = []int{15, 30, 60, 120}

// ValidTimeLimit reports whether seconds is one of TimeOptions.
func ValidTimeLimit(seconds int) bool {
	for _, t := range TimeOptions {
		if t == seconds {
			return true
		}
	}
	return false
}

// Defaults applied when stored or supplied settings are invalid.
const (
	DefaultTimeLimit = 30
	DefaultTier      = TierMedium
)

// CharStats accumulates character-level judgments for one session.
// Counters only grow; deletions are never reclassified.
type CharStats struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
	Extra     int `json:"extra"`
	Missed    int `json:"missed"`
}

// Total returns the number of judgments made so far.
func (c CharStats) Total() int {
	return c.Correct + c.Incorrect + c.Extra + c.Missed
}

// Snapshot is one per-second sample of interim performance.
type Snapshot struct {
	ElapsedSeconds int `json:"time"`
	CorrectWPM     int `json:"wpm"`
	RawWPM         int `json:"raw"`
	Errors         int `json:"errors"`
}

// ScoreResult is the finalized record of one completed session.
type ScoreResult struct {
	WPM         int        `json:"wpm"`
	RawWPM      int        `json:"rawWpm"`
	Accuracy    int        `json:"accuracy"`
	Consistency int        `json:"consistency"`
	CharStats   CharStats  `json:"charStats"`
	Snapshots   []Snapshot `json:"graphData"`
	Errors      int        `json:"errors"`
	TotalChars  int        `json:"totalChars"`
	TimeLimit   int        `json:"timeLimit"`
	Tier        Tier       `json:"difficulty"`
}

// HistoryItem is a ScoreResult with the completion timestamp.
type HistoryItem struct {
	ScoreResult
	Timestamp time.Time `json:"timestamp"`
}

// HighScores holds the best wpm and best accuracy seen so far,
// tracked independently.
type HighScores struct {
	WPM      int `json:"wpm"`
	Accuracy int `json:"accuracy"`
}

// Prefs is the persisted preferences bag.
type Prefs struct {
	TimeLimit int
	Tier      Tier
	KeySound  string
	Muted     bool
}

// Sanitize replaces invalid preference values with the documented defaults.
func (p Prefs) Sanitize() Prefs {
	if !ValidTimeLimit(p.TimeLimit) {
		p.TimeLimit = DefaultTimeLimit
	}
	if !ValidTier(p.Tier) {
		p.Tier = DefaultTier
	}
	return p
}

// PlayerStatus tracks a race participant through a room's life.
type PlayerStatus string

// Player statuses.
const (
	PlayerJoined   PlayerStatus = "joined"
	PlayerTyping   PlayerStatus = "typing"
	PlayerFinished PlayerStatus = "finished"
)

// PlayerProgress is one player's replicated race state.
type PlayerProgress struct {
	ID          string       `json:"uid"`
	DisplayName string       `json:"displayName"`
	Status      PlayerStatus `json:"status"`
	WPM         int          `json:"wpm"`
	Accuracy    int          `json:"accuracy"`
	Progress    int          `json:"progress"` // 0-100
}

// RoomStatus tracks a race room through its life.
type RoomStatus string

// Room statuses.
const (
	RoomWaiting  RoomStatus = "waiting"
	RoomRunning  RoomStatus = "running"
	RoomFinished RoomStatus = "finished"
)

// RoomState is the shared mutable state of one race room.
type RoomState struct {
	RoomID    string                    `json:"roomId"`
	HostID    string                    `json:"hostId"`
	Status    RoomStatus                `json:"status"`
	CreatedAt time.Time                 `json:"createdAt"`
	StartTime *time.Time                `json:"startTime,omitempty"`
	TimeLimit int                       `json:"timeLimit"`
	Tier      Tier                      `json:"difficulty"`
	Words     []string                  `json:"words"`
	Players   map[string]PlayerProgress `json:"players"`
}

// LeaderboardEntry is one ranked row in a per-time-limit leaderboard.
type LeaderboardEntry struct {
	UserID        string    `bson:"userId" json:"uid"`
	DisplayName   string    `bson:"displayName" json:"displayName"`
	AvatarRef     string    `bson:"avatarRef" json:"photoURL"`
	WPM           int       `bson:"wpm" json:"wpm"`
	TimeLimit     int       `bson:"timeLimitSeconds" json:"timeLimit"`
	EquippedBadge string    `bson:"equippedBadge,omitempty" json:"equippedBadge,omitempty"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}
