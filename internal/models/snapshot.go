package models

import (
	"slices"
	"strings"
	"time"
)

// DefaultLeaderboardSize is the number of entries kept on the leaderboard
const DefaultLeaderboardSize = 10

// Snapshot is the whole persisted aggregate. It is read once at startup and
// written in full after every mutating operation.
type Snapshot struct {
	User        User               `json:"user" yaml:"user"`
	Tasks       []Task             `json:"tasks" yaml:"tasks"`
	Leaderboard []LeaderboardEntry `json:"leaderboard" yaml:"leaderboard"`
}

// Clone returns a deep copy of the snapshot
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{User: s.User}
	out.User.LastCompletedDate = cloneTime(s.User.LastCompletedDate)
	out.User.LastBonusDate = cloneTime(s.User.LastBonusDate)

	out.Tasks = make([]Task, len(s.Tasks))
	for i, t := range s.Tasks {
		t.CompletedAt = cloneTime(t.CompletedAt)
		out.Tasks[i] = t
	}

	out.Leaderboard = make([]LeaderboardEntry, len(s.Leaderboard))
	copy(out.Leaderboard, s.Leaderboard)
	return out
}

// Normalize repairs a snapshot restored from older or partially written
// records so that every invariant holds again. Tasks without text or with a
// duplicate id are dropped; tasks without an id get one from newID.
func (s *Snapshot) Normalize(newID func() TaskID, leaderboardSize int) {
	if s.User.Coins < 0 {
		s.User.Coins = 0
	}
	if s.User.DailyStreak < 0 {
		s.User.DailyStreak = 0
	}
	s.User.Name = strings.TrimSpace(s.User.Name)

	seen := make(map[TaskID]bool, len(s.Tasks))
	tasks := make([]Task, 0, len(s.Tasks))
	for _, t := range s.Tasks {
		t.Text = strings.TrimSpace(t.Text)
		if t.Text == "" {
			continue
		}
		if t.ID == "" && newID != nil {
			t.ID = newID()
		}
		if t.ID == "" || seen[t.ID] {
			continue
		}
		seen[t.ID] = true

		if t.UpdatedAt.Before(t.CreatedAt) {
			t.UpdatedAt = t.CreatedAt
		}
		switch {
		case t.Completed && t.CompletedAt == nil:
			at := t.UpdatedAt
			t.CompletedAt = &at
		case !t.Completed:
			t.CompletedAt = nil
		}
		tasks = append(tasks, t)
	}
	s.Tasks = tasks

	if leaderboardSize <= 0 {
		leaderboardSize = DefaultLeaderboardSize
	}
	board := make([]LeaderboardEntry, 0, len(s.Leaderboard))
	names := make(map[string]bool, len(s.Leaderboard))
	for _, e := range s.Leaderboard {
		if e.Name == "" || names[e.Name] {
			continue
		}
		names[e.Name] = true
		if e.Coins < 0 {
			e.Coins = 0
		}
		board = append(board, e)
	}
	slices.SortStableFunc(board, func(a, b LeaderboardEntry) int {
		return b.Coins - a.Coins
	})
	if len(board) > leaderboardSize {
		board = board[:leaderboardSize]
	}
	s.Leaderboard = board
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
