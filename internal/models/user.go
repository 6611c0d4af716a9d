package models

import "time"

// User is the single local player. An empty Name means no session has been
// started yet.
type User struct {
	Name  string `json:"name" yaml:"name"`
	Coins int    `json:"coins" yaml:"coins"`
	// LastCompletedDate is the day the streak was last evaluated
	LastCompletedDate *time.Time `json:"lastCompletedDate" yaml:"lastCompletedDate"`
	DailyStreak       int        `json:"dailyStreak" yaml:"dailyStreak"`
	// LastBonusDate is the day the all-tasks-done bonus was last awarded
	LastBonusDate *time.Time `json:"lastBonusDate,omitempty" yaml:"lastBonusDate,omitempty"`
}

// HasSession reports whether a display name has been set
func (u User) HasSession() bool {
	return u.Name != ""
}

// LeaderboardEntry is one ranked participant. Rank is positional and not stored.
type LeaderboardEntry struct {
	Name        string    `json:"name" yaml:"name"`
	Coins       int       `json:"coins" yaml:"coins"`
	Streak      int       `json:"streak" yaml:"streak"`
	LastUpdated time.Time `json:"lastUpdated" yaml:"lastUpdated"`
}

// Date truncates t to midnight of its calendar day in t's location
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the number of calendar days from a to b, both taken in
// b's location. Daylight saving shifts do not affect the count.
func DaysBetween(a, b time.Time) int {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
