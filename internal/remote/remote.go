// Package remote syncs signed-in players' data to MongoDB: a per-user
// document mirroring the local store, and per-time-limit leaderboards.
package remote

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hello97-gg/hallotype/internal/model"
)

const databaseName = "hallotype"

// UserDoc is the per-user document. Anonymous players never touch it; on
// first sign-in it is seeded from local data.
type UserDoc struct {
	UserID          string              `bson:"userId"`
	DisplayName     string              `bson:"displayName"`
	HighScores      model.HighScores    `bson:"highScores"`
	History         []model.HistoryItem `bson:"history"`
	TotalTypingTime int                 `bson:"totalTypingTime"`
	Achievements    map[string]int64    `bson:"achievements"` // id -> unix ms
	EquippedBadge   string              `bson:"equippedBadge,omitempty"`
	Prefs           RemotePrefs         `bson:"preferences"`
}

// RemotePrefs mirrors the synced preference fields.
type RemotePrefs struct {
	TimeLimit int        `bson:"timeLimit"`
	Tier      model.Tier `bson:"difficulty"`
	KeySound  string     `bson:"keySound"`
	Muted     bool       `bson:"muted"`
}

// Store wraps the MongoDB connection.
type Store struct {
	client *mongo.Client
}

// Connect dials MongoDB with a bounded timeout.
func Connect(ctx context.Context, uri string) (*Store, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(dialCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	return &Store{client: client}, nil
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) users() *mongo.Collection {
	return s.client.Database(databaseName).Collection("users")
}

// leaderboard collections are split per time limit so each ladder ranks
// like-for-like sessions.
func (s *Store) leaderboard(timeLimit int) *mongo.Collection {
	return s.client.Database(databaseName).Collection(fmt.Sprintf("leaderboard_%ds", timeLimit))
}

// LoadUser fetches a user's document. Returns (nil, nil) when the user has
// no document yet.
func (s *Store) LoadUser(ctx context.Context, userID string) (*UserDoc, error) {
	var doc UserDoc
	err := s.users().FindOne(ctx, bson.D{{Key: "userId", Value: userID}}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user doc: %w", err)
	}
	return &doc, nil
}

// SeedUser writes a full document for a first-time sign-in, migrating the
// player's local data.
func (s *Store) SeedUser(ctx context.Context, doc UserDoc) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.users().ReplaceOne(ctx, bson.D{{Key: "userId", Value: doc.UserID}}, doc, opts)
	if err != nil {
		return fmt.Errorf("failed to seed user doc: %w", err)
	}
	return nil
}

// AppendResult pushes one finished session into the user's history and
// refreshes the derived aggregates, as targeted field updates.
func (s *Store) AppendResult(ctx context.Context, userID string, item model.HistoryItem, highScores model.HighScores, totalTime int) error {
	update := bson.D{
		{Key: "$push", Value: bson.D{{Key: "history", Value: item}}},
		{Key: "$set", Value: bson.D{
			{Key: "highScores", Value: highScores},
			{Key: "totalTypingTime", Value: totalTime},
		}},
	}
	_, err := s.users().UpdateOne(ctx, bson.D{{Key: "userId", Value: userID}}, update)
	if err != nil {
		return fmt.Errorf("failed to append result: %w", err)
	}
	return nil
}

// UnlockAchievements sets unlock timestamps for newly crossed IDs without
// touching the rest of the achievement map.
func (s *Store) UnlockAchievements(ctx context.Context, userID string, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	fields := bson.D{}
	for _, id := range ids {
		fields = append(fields, bson.E{Key: "achievements." + id, Value: at.UnixMilli()})
	}
	_, err := s.users().UpdateOne(ctx,
		bson.D{{Key: "userId", Value: userID}},
		bson.D{{Key: "$set", Value: fields}})
	if err != nil {
		return fmt.Errorf("failed to unlock achievements: %w", err)
	}
	return nil
}

// SetEquippedBadge updates only the cosmetic badge field. An empty id
// removes it.
func (s *Store) SetEquippedBadge(ctx context.Context, userID, badgeID string) error {
	var update bson.D
	if badgeID == "" {
		update = bson.D{{Key: "$unset", Value: bson.D{{Key: "equippedBadge", Value: ""}}}}
	} else {
		update = bson.D{{Key: "$set", Value: bson.D{{Key: "equippedBadge", Value: badgeID}}}}
	}
	_, err := s.users().UpdateOne(ctx, bson.D{{Key: "userId", Value: userID}}, update)
	if err != nil {
		return fmt.Errorf("failed to set equipped badge: %w", err)
	}
	return nil
}

// SavePrefs updates only the preferences subdocument.
func (s *Store) SavePrefs(ctx context.Context, userID string, prefs RemotePrefs) error {
	_, err := s.users().UpdateOne(ctx,
		bson.D{{Key: "userId", Value: userID}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "preferences", Value: prefs}}}})
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// SubmitScore upserts a leaderboard row when the new wpm beats the user's
// best for that time limit. Returns whether the row changed.
func (s *Store) SubmitScore(ctx context.Context, entry model.LeaderboardEntry) (bool, error) {
	coll := s.leaderboard(entry.TimeLimit)
	filter := bson.D{{Key: "userId", Value: entry.UserID}}

	var current model.LeaderboardEntry
	err := coll.FindOne(ctx, filter).Decode(&current)
	if err != nil && err != mongo.ErrNoDocuments {
		return false, fmt.Errorf("failed to read leaderboard row: %w", err)
	}
	if err == nil && entry.WPM <= current.WPM {
		return false, nil
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := coll.ReplaceOne(ctx, filter, entry, opts); err != nil {
		return false, fmt.Errorf("failed to submit score: %w", err)
	}
	return true, nil
}

// TopScores lists a ladder's best rows, fastest first.
func (s *Store) TopScores(ctx context.Context, timeLimit, limit int) ([]model.LeaderboardEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "wpm", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := s.leaderboard(timeLimit).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list leaderboard: %w", err)
	}
	defer func() {
		if cerr := cursor.Close(ctx); cerr != nil {
			// Best-effort cursor close.
			_ = cerr
		}
	}()

	var entries []model.LeaderboardEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode leaderboard: %w", err)
	}
	return entries, nil
}
