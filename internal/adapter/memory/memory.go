// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"activityweather/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu        sync.Mutex
	tokens    map[int64]domain.AthleteToken
	processed map[int64]domain.ProcessedActivity
	allowed   map[int64]time.Time
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		tokens:    make(map[int64]domain.AthleteToken),
		processed: make(map[int64]domain.ProcessedActivity),
		allowed:   make(map[int64]time.Time),
	}
}

// Ensure interfaces are met.
var _ domain.AthleteTokenRepository = (*DB)(nil)
var _ domain.ProcessedActivityRepository = (*DB)(nil)
var _ domain.AllowlistRepository = (*DB)(nil)

// Ping always succeeds.
func (db *DB) Ping(ctx context.Context) error { return nil }

// --- AthleteTokenRepository ---

// GetAthleteToken returns a copy of the stored token, or nil.
func (db *DB) GetAthleteToken(ctx context.Context, athleteID int64) (*domain.AthleteToken, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	t, ok := db.tokens[athleteID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// UpsertAthleteToken creates or overwrites a token, keeping CreatedAt.
func (db *DB) UpsertAthleteToken(ctx context.Context, t domain.AthleteToken) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if existing, ok := db.tokens[t.AthleteID]; ok {
		t.CreatedAt = existing.CreatedAt
	}
	t.ExpiresAt = t.ExpiresAt.UTC()
	db.tokens[t.AthleteID] = t
	return nil
}

// UpdateAthleteToken overwrites credentials of an existing token.
func (db *DB) UpdateAthleteToken(ctx context.Context, t domain.AthleteToken) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	existing, ok := db.tokens[t.AthleteID]
	if !ok {
		return false, nil
	}
	existing.AccessToken = t.AccessToken
	existing.RefreshToken = t.RefreshToken
	existing.ExpiresAt = t.ExpiresAt.UTC()
	existing.UpdatedAt = t.UpdatedAt
	db.tokens[t.AthleteID] = existing
	return true, nil
}

// --- ProcessedActivityRepository ---

// IsActivityProcessed reports whether a record exists for activityID.
func (db *DB) IsActivityProcessed(ctx context.Context, activityID int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, ok := db.processed[activityID]
	return ok, nil
}

// RecordProcessedActivity inserts p unless a record already exists.
func (db *DB) RecordProcessedActivity(ctx context.Context, p domain.ProcessedActivity) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.processed[p.ID]; ok {
		return false, nil
	}
	p.ProcessedAt = p.ProcessedAt.UTC()
	db.processed[p.ID] = p
	return true, nil
}

// ListRecentProcessedActivities returns an athlete's records, newest first.
func (db *DB) ListRecentProcessedActivities(ctx context.Context, athleteID int64, limit int) ([]domain.ProcessedActivity, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []domain.ProcessedActivity
	for _, p := range db.processed {
		if p.AthleteID == athleteID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ProcessedAt.After(out[j].ProcessedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- AllowlistRepository ---

// IsAthleteAllowed reports whether athleteID is on the allow-list.
func (db *DB) IsAthleteAllowed(ctx context.Context, athleteID int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, ok := db.allowed[athleteID]
	return ok, nil
}

// AllowAthlete adds athleteID to the allow-list.
func (db *DB) AllowAthlete(ctx context.Context, athleteID int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.allowed[athleteID]; !ok {
		db.allowed[athleteID] = time.Now().UTC()
	}
	return nil
}
