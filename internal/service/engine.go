package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"taskmaster/internal/models"
	"taskmaster/internal/repository"
	"taskmaster/internal/validation"
)

var (
	ErrEmptyTaskText = errors.New("task text is empty")
	ErrEmptyName     = errors.New("name is empty")
	ErrNotOpen       = errors.New("engine has not been opened")
)

// StateStore reads and writes the whole aggregate
type StateStore interface {
	Load(ctx context.Context) (models.Snapshot, repository.LoadStatus, error)
	Save(ctx context.Context, s models.Snapshot) error
}

// EngineOptions configures an Engine. Zero values select the defaults.
type EngineOptions struct {
	Clock           Clock
	Logger          logrus.FieldLogger
	NewID           func() models.TaskID
	LeaderboardSize int
}

// Engine owns the task list, the user and the leaderboard of one local
// player. Every mutating call works on a copy of the state and only replaces
// the current state after the copy has been written to the store, so a failed
// write leaves nothing behind.
type Engine struct {
	mu        sync.Mutex
	store     StateStore
	clock     Clock
	log       logrus.FieldLogger
	newID     func() models.TaskID
	boardSize int
	rewards   RewardEngine

	state  models.Snapshot
	status repository.LoadStatus
	opened bool
}

func NewEngine(store StateStore, opts EngineOptions) *Engine {
	e := &Engine{
		store:     store,
		clock:     opts.Clock,
		log:       opts.Logger,
		newID:     opts.NewID,
		boardSize: opts.LeaderboardSize,
	}
	if e.clock == nil {
		e.clock = RealClock{}
	}
	if e.log == nil {
		e.log = logrus.StandardLogger()
	}
	if e.newID == nil {
		e.newID = NewTaskID
	}
	if e.boardSize <= 0 {
		e.boardSize = models.DefaultLeaderboardSize
	}
	return e
}

// change is the working copy of one operation
type change struct {
	snap    models.Snapshot
	tasks   *TaskStore
	now     time.Time
	notices []models.Notice
	dirty   bool
}

func (c *change) notify(kind models.NoticeKind, format string, args ...any) {
	c.notices = append(c.notices, models.Notice{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// Open loads the stored state and evaluates the day boundary. A corrupt
// record is logged and replaced by the empty state in memory only; it is
// overwritten by the next mutation.
func (e *Engine) Open(ctx context.Context) ([]models.Notice, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap, status, err := e.store.Load(ctx)
	if status == repository.LoadCorrupt {
		e.log.WithError(err).Warn("Stored state is unreadable, starting with an empty state")
		snap = models.Snapshot{}.Clone()
	} else if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	e.state = snap
	e.status = status
	e.opened = true
	e.log.WithFields(logrus.Fields{
		"status": status.String(),
		"tasks":  len(snap.Tasks),
		"user":   snap.User.Name,
	}).Info("State loaded")

	if status == repository.LoadCorrupt {
		return nil, nil
	}
	c := e.begin()
	if status == repository.LoadLegacy {
		c.dirty = true
	}
	return e.commit(ctx, "open", c)
}

// LoadStatus reports how the state was obtained by Open
func (e *Engine) LoadStatus() repository.LoadStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// StartSession sets the display name. The first session ever also starts the
// streak calendar today. Coins and streak carry over when the name changes.
func (e *Engine) StartSession(ctx context.Context, name string) ([]models.Notice, error) {
	if err := validation.ValidateName(name); err != nil {
		if errors.Is(err, validation.ErrRequired) {
			return nil, ErrEmptyName
		}
		return nil, err
	}
	name = strings.TrimSpace(name)

	return e.mutate(ctx, "start session", func(c *change) error {
		u := &c.snap.User
		u.Name = name
		if u.LastCompletedDate == nil {
			today := models.Date(c.now)
			u.LastCompletedDate = &today
		}
		c.dirty = true
		c.notify(models.NoticeWelcome, "Welcome, %s! Start completing tasks to earn coins!", name)
		e.log.WithField("user", name).Info("Session started")
		return nil
	})
}

// AddTask creates a task at the head of the list and grants the add reward
func (e *Engine) AddTask(ctx context.Context, text string) (models.Task, []models.Notice, error) {
	if err := validation.ValidateTaskText(text); err != nil {
		if errors.Is(err, validation.ErrRequired) {
			return models.Task{}, nil, ErrEmptyTaskText
		}
		return models.Task{}, nil, err
	}

	var task models.Task
	notices, err := e.mutate(ctx, "add task", func(c *change) error {
		task = c.tasks.Add(text, c.now)
		c.notices = append(c.notices, e.rewards.AddCoins(&c.snap.User, TaskAddedReward,
			fmt.Sprintf("+%d coins for adding a task!", TaskAddedReward))...)
		c.notify(models.NoticeTaskAdded, "Task added successfully!")
		c.dirty = true
		return nil
	})
	if err != nil {
		return models.Task{}, nil, err
	}
	return task, notices, nil
}

// ToggleTask flips completion. Only completing a task is rewarded. An unknown
// id is ignored.
func (e *Engine) ToggleTask(ctx context.Context, id models.TaskID) ([]models.Notice, error) {
	return e.mutate(ctx, "toggle task", func(c *change) error {
		task, ok := c.tasks.Toggle(id, c.now)
		if !ok {
			return nil
		}
		if task.Completed {
			c.notices = append(c.notices, e.rewards.AddCoins(&c.snap.User, TaskCompletedReward,
				fmt.Sprintf("+%d coins for completing a task!", TaskCompletedReward))...)
		}
		c.dirty = true
		return nil
	})
}

// EditTask replaces the text of a task. Empty text deletes the task. An
// unknown id is ignored.
func (e *Engine) EditTask(ctx context.Context, id models.TaskID, text string) ([]models.Notice, error) {
	return e.mutate(ctx, "edit task", func(c *change) error {
		deleted, ok := c.tasks.Edit(id, text, c.now)
		if !ok {
			return nil
		}
		if deleted {
			c.notify(models.NoticeTaskDeleted, "Task deleted")
		} else {
			c.notify(models.NoticeTaskUpdated, "Task updated successfully!")
		}
		c.dirty = true
		return nil
	})
}

// DeleteTask removes a task without asking. An unknown id is ignored.
func (e *Engine) DeleteTask(ctx context.Context, id models.TaskID) ([]models.Notice, error) {
	return e.mutate(ctx, "delete task", func(c *change) error {
		if !c.tasks.Delete(id) {
			return nil
		}
		c.notify(models.NoticeTaskDeleted, "Task deleted")
		c.dirty = true
		return nil
	})
}

// ClearCompleted removes every completed task and returns how many went
func (e *Engine) ClearCompleted(ctx context.Context) (int, []models.Notice, error) {
	var removed int
	notices, err := e.mutate(ctx, "clear completed", func(c *change) error {
		removed = c.tasks.ClearCompleted()
		switch removed {
		case 0:
			c.notify(models.NoticeNothingToClear, "No completed tasks to clear")
			return nil
		case 1:
			c.notify(models.NoticeTasksCleared, "Cleared 1 task")
		default:
			c.notify(models.NoticeTasksCleared, "Cleared %d tasks", removed)
		}
		c.dirty = true
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return removed, notices, nil
}

// Tasks returns the current tasks matching filter in display order
func (e *Engine) Tasks(filter models.Filter) iter.Seq[models.Task] {
	e.mu.Lock()
	tasks := e.state.Clone().Tasks
	e.mu.Unlock()
	return NewTaskStore(tasks, e.newID).List(filter)
}

// Task returns a single task by id
func (e *Engine) Task(id models.TaskID) (models.Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return NewTaskStore(e.state.Clone().Tasks, e.newID).Find(id)
}

// ResolveTaskID expands a unique id prefix to a full task id
func (e *Engine) ResolveTaskID(prefix string) (models.TaskID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return NewTaskStore(e.state.Tasks, e.newID).ResolveID(prefix)
}

// User returns the current user state
func (e *Engine) User() models.User {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone().User
}

// Leaderboard returns the ranked leaderboard
func (e *Engine) Leaderboard() []RankedEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return NewLeaderboard(e.state.Clone().Leaderboard, e.boardSize).Ranked()
}

// UserRank is the 1-based leaderboard position of the current user, or 0
// when there is no session or the user is not on the board
func (e *Engine) UserRank() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.User.HasSession() {
		return 0
	}
	return NewLeaderboard(e.state.Leaderboard, e.boardSize).Rank(e.state.User.Name)
}

// Stats summarizes the task list
func (e *Engine) Stats() models.TaskStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return NewTaskStore(e.state.Tasks, e.newID).Stats()
}

// Snapshot returns a copy of the whole state
func (e *Engine) Snapshot() models.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

func (e *Engine) mutate(ctx context.Context, op string, fn func(c *change) error) ([]models.Notice, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.opened {
		return nil, ErrNotOpen
	}
	c := e.begin()
	if err := fn(c); err != nil {
		return nil, err
	}
	return e.commit(ctx, op, c)
}

// begin copies the state and applies the day boundary before the operation
// runs, so a process left running past midnight rewards the right streak.
func (e *Engine) begin() *change {
	c := &change{snap: e.state.Clone(), now: e.clock.Now()}
	c.tasks = NewTaskStore(c.snap.Tasks, e.newID)

	notices, changed := e.rewards.EvaluateStreak(&c.snap.User, c.now)
	c.notices = append(c.notices, notices...)
	c.dirty = changed
	e.logStreak(notices)
	return c
}

// commit checks the daily bonus, refreshes the player's leaderboard entry and
// writes the copy. Nothing is written when the operation changed nothing.
func (e *Engine) commit(ctx context.Context, op string, c *change) ([]models.Notice, error) {
	c.snap.Tasks = c.tasks.Tasks()
	u := &c.snap.User

	if e.rewards.DailyBonusDue(*u, c.tasks, c.now) {
		notices := e.rewards.AwardDailyBonus(u, c.now)
		c.notices = append(c.notices, notices...)
		c.dirty = true
		e.log.WithFields(logrus.Fields{
			"user":   u.Name,
			"coins":  u.Coins,
			"streak": u.DailyStreak,
		}).Info("Daily bonus awarded")
		e.logStreak(notices[1:])
	}

	if !c.dirty {
		return c.notices, nil
	}

	if u.HasSession() {
		board := NewLeaderboard(c.snap.Leaderboard, e.boardSize)
		board.Upsert(u.Name, u.Coins, u.DailyStreak, c.now)
		c.snap.Leaderboard = board.Entries()
	}

	if err := e.store.Save(ctx, c.snap); err != nil {
		e.log.WithError(err).WithField("op", op).Error("Failed to save state")
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	e.state = c.snap
	e.log.WithFields(logrus.Fields{
		"op":    op,
		"tasks": len(c.snap.Tasks),
		"coins": u.Coins,
	}).Debug("State saved")
	return c.notices, nil
}

func (e *Engine) logStreak(notices []models.Notice) {
	for _, n := range notices {
		switch n.Kind {
		case models.NoticeStreakGained, models.NoticeStreakBroken:
			e.log.WithField("kind", n.Kind).Info(n.Message)
		}
	}
}
