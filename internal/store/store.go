// Package store handles SQLite persistence for scores, history,
// achievements, and preferences.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hello97-gg/hallotype/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for local (anonymous-mode) game data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY,
			created_at TEXT NOT NULL,
			wpm INTEGER NOT NULL,
			raw_wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			consistency INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			extra INTEGER NOT NULL,
			missed INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			total_chars INTEGER NOT NULL,
			time_limit INTEGER NOT NULL,
			tier TEXT NOT NULL,
			snapshots TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS achievements (
			id TEXT PRIMARY KEY,
			unlocked_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS prefs (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_results_created_at ON results(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_results_time_limit ON results(time_limit);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertResult appends one completed session to the history.
func (s *Store) InsertResult(ctx context.Context, item model.HistoryItem) (int64, error) {
	snaps, err := json.Marshal(item.Snapshots)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO results (created_at, wpm, raw_wpm, accuracy, consistency, correct, incorrect, extra, missed, errors, total_chars, time_limit, tier, snapshots)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Timestamp.Format(time.RFC3339Nano),
		item.WPM,
		item.RawWPM,
		item.Accuracy,
		item.Consistency,
		item.CharStats.Correct,
		item.CharStats.Incorrect,
		item.CharStats.Extra,
		item.CharStats.Missed,
		item.Errors,
		item.TotalChars,
		item.TimeLimit,
		string(item.Tier),
		string(snaps),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListHistory returns the history in completion order. A positive limit
// keeps only the most recent sessions.
func (s *Store) ListHistory(ctx context.Context, limit int) ([]model.HistoryItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT created_at, wpm, raw_wpm, accuracy, consistency, correct, incorrect, extra, missed, errors, total_chars, time_limit, tier, snapshots
		 FROM results ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var items []model.HistoryItem
	for rows.Next() {
		var it model.HistoryItem
		var createdAt, tier, snaps string
		if err := rows.Scan(&createdAt, &it.WPM, &it.RawWPM, &it.Accuracy, &it.Consistency,
			&it.CharStats.Correct, &it.CharStats.Incorrect, &it.CharStats.Extra, &it.CharStats.Missed,
			&it.Errors, &it.TotalChars, &it.TimeLimit, &tier, &snaps); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, err
		}
		it.Timestamp = parsed
		it.Tier = model.Tier(tier)
		if err := json.Unmarshal([]byte(snaps), &it.Snapshots); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if limit > 0 && len(items) > limit {
		items = items[len(items)-limit:]
	}
	return items, nil
}

// CountResults returns the number of completed sessions on record.
func (s *Store) CountResults(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results`).Scan(&n)
	return n, err
}

// HighScores returns the best wpm and best accuracy on record, tracked
// independently.
func (s *Store) HighScores(ctx context.Context) (model.HighScores, error) {
	var hs model.HighScores
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(wpm), 0), COALESCE(MAX(accuracy), 0) FROM results`).
		Scan(&hs.WPM, &hs.Accuracy)
	return hs, err
}

// BestWPMForTimeLimit returns the best wpm recorded for one exact
// time-limit configuration.
func (s *Store) BestWPMForTimeLimit(ctx context.Context, timeLimit int) (int, error) {
	var best int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(wpm), 0) FROM results WHERE time_limit = ?`, timeLimit).
		Scan(&best)
	return best, err
}

// TotalTypingTime returns cumulative typing time in seconds, accrued by
// each session's configured limit.
func (s *Store) TotalTypingTime(ctx context.Context) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(time_limit), 0) FROM results`).Scan(&total)
	return total, err
}

// UnlockAchievements records newly crossed achievement thresholds.
// Already-unlocked IDs keep their original timestamp.
func (s *Store) UnlockAchievements(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO achievements (id, unlocked_at) VALUES (?, ?)`,
			id, at.Format(time.RFC3339Nano)); err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
			return err
		}
	}
	return tx.Commit()
}

// Achievements returns the unlocked-achievement set with unlock times.
func (s *Store) Achievements(ctx context.Context) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, unlocked_at FROM achievements`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	out := map[string]time.Time{}
	for rows.Next() {
		var id, at string
		if err := rows.Scan(&id, &at); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, err
		}
		out[id] = parsed
	}
	return out, rows.Err()
}

// Preference keys.
const (
	prefTimeLimit = "time_limit"
	prefTier      = "tier"
	prefKeySound  = "key_sound"
	prefMuted     = "muted"
	prefEquipped  = "equipped_badge"
)

// SavePrefs persists the preferences bag.
func (s *Store) SavePrefs(ctx context.Context, p model.Prefs) error {
	pairs := map[string]string{
		prefTimeLimit: strconv.Itoa(p.TimeLimit),
		prefTier:      string(p.Tier),
		prefKeySound:  p.KeySound,
		prefMuted:     strconv.FormatBool(p.Muted),
	}
	for k, v := range pairs {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO prefs (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, k, v); err != nil {
			return err
		}
	}
	return nil
}

// LoadPrefs returns the stored preferences. Missing or invalid values are
// replaced with the documented defaults, never surfaced as errors.
func (s *Store) LoadPrefs(ctx context.Context) (model.Prefs, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM prefs`)
	if err != nil {
		return model.Prefs{}.Sanitize(), err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	p := model.Prefs{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return model.Prefs{}.Sanitize(), err
		}
		switch k {
		case prefTimeLimit:
			if n, err := strconv.Atoi(v); err == nil {
				p.TimeLimit = n
			}
		case prefTier:
			p.Tier = model.Tier(v)
		case prefKeySound:
			p.KeySound = v
		case prefMuted:
			p.Muted = v == "true"
		}
	}
	if err := rows.Err(); err != nil {
		return model.Prefs{}.Sanitize(), err
	}
	return p.Sanitize(), nil
}

// SetEquippedBadge stores the cosmetic achievement shown next to the
// player's name. An empty id unequips.
func (s *Store) SetEquippedBadge(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO prefs (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, prefEquipped, id)
	return err
}

// EquippedBadge returns the equipped cosmetic achievement id, or empty.
func (s *Store) EquippedBadge(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM prefs WHERE key = ?`, prefEquipped).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return id, err
}
