package service

import (
	"fmt"
	"time"

	"taskmaster/internal/models"
)

const (
	TaskAddedReward     = 10
	TaskCompletedReward = 10
	DailyBonusBase      = 30

	// Every StreakMilestoneDays of streak adds StreakBonusStep percent to the
	// daily bonus, up to MaxStreakBonus percent.
	StreakMilestoneDays = 7
	StreakBonusStep     = 10
	MaxStreakBonus      = 50
)

// StreakBonusPercent returns the daily bonus increase earned by a streak
func StreakBonusPercent(streak int) int {
	if streak < 0 {
		return 0
	}
	return min(streak/StreakMilestoneDays*StreakBonusStep, MaxStreakBonus)
}

// DailyBonus returns the coins granted for clearing every task on a new day
func DailyBonus(streak int) int {
	return DailyBonusBase + DailyBonusBase*StreakBonusPercent(streak)/100
}

// RewardEngine applies the reward table and the streak rules to the user
type RewardEngine struct{}

// AddCoins credits amount to the user. Amounts are never negative.
func (RewardEngine) AddCoins(u *models.User, amount int, message string) []models.Notice {
	if amount <= 0 {
		return nil
	}
	u.Coins += amount
	return []models.Notice{{Kind: models.NoticeCoinsAwarded, Message: message}}
}

// EvaluateStreak applies the day-boundary rules against the last evaluation
// date. It reports whether the user changed. A user who was never evaluated
// has no streak and is left without a date.
func (RewardEngine) EvaluateStreak(u *models.User, now time.Time) ([]models.Notice, bool) {
	if u.LastCompletedDate == nil {
		changed := u.DailyStreak != 0
		u.DailyStreak = 0
		return nil, changed
	}

	today := models.Date(now)
	var notices []models.Notice
	switch days := models.DaysBetween(*u.LastCompletedDate, now); {
	case days == 0:
		return nil, false
	case days == 1:
		u.DailyStreak++
		notices = append(notices, models.Notice{
			Kind:    models.NoticeStreakGained,
			Message: fmt.Sprintf("🔥 Streak! %d days in a row!", u.DailyStreak),
		})
	case days > 1:
		if u.DailyStreak > 0 {
			notices = append(notices, models.Notice{
				Kind:    models.NoticeStreakBroken,
				Message: fmt.Sprintf("😢 Streak of %d days broken!", u.DailyStreak),
			})
		}
		u.DailyStreak = 0
	}
	// A date in the future only moves back to today.
	u.LastCompletedDate = &today
	return notices, true
}

// DailyBonusDue reports whether clearing the task list today earns the bonus:
// a session exists, there is at least one task, every task is done and no
// bonus was awarded today.
func (RewardEngine) DailyBonusDue(u models.User, tasks *TaskStore, now time.Time) bool {
	if !u.HasSession() || !tasks.AllCompleted() {
		return false
	}
	if u.LastBonusDate == nil {
		return true
	}
	return models.DaysBetween(*u.LastBonusDate, now) > 0
}

// AwardDailyBonus grants the bonus for the current streak, records today as
// the bonus date, then re-runs the streak check.
func (r RewardEngine) AwardDailyBonus(u *models.User, now time.Time) []models.Notice {
	today := models.Date(now)
	u.LastBonusDate = &today

	bonus := DailyBonus(u.DailyStreak)
	u.Coins += bonus
	notices := []models.Notice{{
		Kind:    models.NoticeDailyBonus,
		Message: fmt.Sprintf("🎉 Daily bonus! +%d coins!", bonus),
	}}

	streakNotices, _ := r.EvaluateStreak(u, now)
	return append(notices, streakNotices...)
}
