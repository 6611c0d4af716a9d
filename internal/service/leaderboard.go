package service

import (
	"slices"
	"time"

	"taskmaster/internal/models"
)

// RankedEntry is a leaderboard entry with its 1-based position
type RankedEntry struct {
	Rank int `json:"rank"`
	models.LeaderboardEntry
}

// Leaderboard keeps at most size entries, one per name, sorted by coins
// descending. Equal coins keep their previous relative order.
type Leaderboard struct {
	entries []models.LeaderboardEntry
	size    int
}

// NewLeaderboard wraps entries, which must already be sorted. The board takes
// ownership of the slice.
func NewLeaderboard(entries []models.LeaderboardEntry, size int) *Leaderboard {
	if size <= 0 {
		size = models.DefaultLeaderboardSize
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	return &Leaderboard{entries: entries, size: size}
}

// Upsert records the latest totals for name, then re-sorts and truncates
func (b *Leaderboard) Upsert(name string, coins, streak int, at time.Time) {
	if name == "" {
		return
	}
	i := slices.IndexFunc(b.entries, func(e models.LeaderboardEntry) bool { return e.Name == name })
	if i < 0 {
		b.entries = append(b.entries, models.LeaderboardEntry{Name: name, Coins: coins, Streak: streak, LastUpdated: at})
	} else {
		b.entries[i].Coins = coins
		b.entries[i].Streak = streak
		b.entries[i].LastUpdated = at
	}

	slices.SortStableFunc(b.entries, func(x, y models.LeaderboardEntry) int {
		return y.Coins - x.Coins
	})
	if len(b.entries) > b.size {
		b.entries = b.entries[:b.size]
	}
}

// Entries returns the board in rank order
func (b *Leaderboard) Entries() []models.LeaderboardEntry {
	return b.entries
}

// Ranked returns the board with positions attached
func (b *Leaderboard) Ranked() []RankedEntry {
	out := make([]RankedEntry, len(b.entries))
	for i, e := range b.entries {
		out[i] = RankedEntry{Rank: i + 1, LeaderboardEntry: e}
	}
	return out
}

// Rank returns the 1-based position of name, or 0 when it is not on the board
func (b *Leaderboard) Rank(name string) int {
	return slices.IndexFunc(b.entries, func(e models.LeaderboardEntry) bool { return e.Name == name }) + 1
}
