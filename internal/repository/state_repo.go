package repository

import (
	"context"
	"errors"
	"fmt"

	"taskmaster/internal/models"
)

// LegacyTasksKey holds a bare task array written by the earliest version of
// the app, before coins and the leaderboard existed
const LegacyTasksKey = "tasks"

// LoadStatus describes where a loaded snapshot came from
type LoadStatus int

const (
	// LoadMissing means nothing was stored yet
	LoadMissing LoadStatus = iota
	// LoadFound means the aggregate was restored
	LoadFound
	// LoadLegacy means only the legacy task list was found and imported
	LoadLegacy
	// LoadCorrupt means a record was present but unreadable; the empty state is used
	LoadCorrupt
)

func (s LoadStatus) String() string {
	switch s {
	case LoadFound:
		return "found"
	case LoadLegacy:
		return "legacy"
	case LoadCorrupt:
		return "corrupt"
	default:
		return "missing"
	}
}

// StateRepository reads and writes the whole aggregate under one key
type StateRepository struct {
	store KVStore
	key   string
	codec *Codec
}

func NewStateRepository(store KVStore, key string, codec *Codec) *StateRepository {
	return &StateRepository{store: store, key: key, codec: codec}
}

// Key returns the storage key of the aggregate
func (r *StateRepository) Key() string {
	return r.key
}

// Load restores the aggregate. A corrupt record yields the empty snapshot,
// LoadCorrupt and an error wrapping ErrCorrupt; callers may carry on with the
// empty state. Any other error is a storage failure.
func (r *StateRepository) Load(ctx context.Context) (models.Snapshot, LoadStatus, error) {
	data, err := r.store.Get(ctx, r.key)
	switch {
	case errors.Is(err, ErrNotFound):
		return r.loadLegacy(ctx)
	case err != nil:
		return models.Snapshot{}, LoadMissing, fmt.Errorf("failed to read %s: %w", r.key, err)
	}

	snapshot, err := r.codec.Decode(data)
	if err != nil {
		return emptySnapshot(), LoadCorrupt, err
	}
	return snapshot, LoadFound, nil
}

func (r *StateRepository) loadLegacy(ctx context.Context) (models.Snapshot, LoadStatus, error) {
	data, err := r.store.Get(ctx, LegacyTasksKey)
	switch {
	case errors.Is(err, ErrNotFound):
		return emptySnapshot(), LoadMissing, nil
	case err != nil:
		return models.Snapshot{}, LoadMissing, fmt.Errorf("failed to read %s: %w", LegacyTasksKey, err)
	}

	tasks, err := r.codec.DecodeTaskList(data)
	if err != nil {
		return emptySnapshot(), LoadCorrupt, err
	}
	snapshot := emptySnapshot()
	snapshot.Tasks = tasks
	return snapshot, LoadLegacy, nil
}

// Save writes the whole aggregate
func (r *StateRepository) Save(ctx context.Context, s models.Snapshot) error {
	data, err := r.codec.Encode(s)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", r.key, err)
	}
	return nil
}

func emptySnapshot() models.Snapshot {
	return models.Snapshot{Tasks: []models.Task{}, Leaderboard: []models.LeaderboardEntry{}}
}
