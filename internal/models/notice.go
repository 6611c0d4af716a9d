package models

// NoticeKind classifies user-facing feedback messages
type NoticeKind string

const (
	NoticeWelcome        NoticeKind = "welcome"
	NoticeTaskAdded      NoticeKind = "task_added"
	NoticeTaskUpdated    NoticeKind = "task_updated"
	NoticeTaskDeleted    NoticeKind = "task_deleted"
	NoticeTasksCleared   NoticeKind = "tasks_cleared"
	NoticeNothingToClear NoticeKind = "nothing_to_clear"
	NoticeCoinsAwarded   NoticeKind = "coins_awarded"
	NoticeDailyBonus     NoticeKind = "daily_bonus"
	NoticeStreakGained   NoticeKind = "streak_gained"
	NoticeStreakBroken   NoticeKind = "streak_broken"
)

// Notice is a short message for toast-style feedback in the UI
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}
