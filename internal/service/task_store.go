package service

import (
	"iter"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskmaster/internal/models"
)

// NewTaskID returns a random task identifier
func NewTaskID() models.TaskID {
	return models.TaskID(uuid.NewString())
}

// TaskStore holds the ordered task collection, newest first, and the pure
// operations on it. It does no persistence and grants no rewards.
type TaskStore struct {
	tasks []models.Task
	newID func() models.TaskID
}

// NewTaskStore wraps tasks. The store takes ownership of the slice.
func NewTaskStore(tasks []models.Task, newID func() models.TaskID) *TaskStore {
	if newID == nil {
		newID = NewTaskID
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return &TaskStore{tasks: tasks, newID: newID}
}

// Tasks returns the backing collection in storage order
func (s *TaskStore) Tasks() []models.Task {
	return s.tasks
}

func (s *TaskStore) Len() int {
	return len(s.tasks)
}

// Add inserts a new active task at the head of the collection. Text must
// already be validated; it is stored trimmed.
func (s *TaskStore) Add(text string, now time.Time) models.Task {
	task := models.Task{
		ID:        s.newID(),
		Text:      strings.TrimSpace(text),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.tasks = slices.Insert(s.tasks, 0, task)
	return task
}

// Find returns the task with id
func (s *TaskStore) Find(id models.TaskID) (models.Task, bool) {
	i := s.index(id)
	if i < 0 {
		return models.Task{}, false
	}
	return s.tasks[i], true
}

// Toggle flips the completion state of a task and returns the updated task
func (s *TaskStore) Toggle(id models.TaskID, now time.Time) (models.Task, bool) {
	i := s.index(id)
	if i < 0 {
		return models.Task{}, false
	}
	t := &s.tasks[i]
	t.Completed = !t.Completed
	if t.Completed {
		at := now
		t.CompletedAt = &at
	} else {
		t.CompletedAt = nil
	}
	t.UpdatedAt = now
	return *t, true
}

// Edit replaces the text of a task. Empty text deletes the task instead and
// deleted is reported true.
func (s *TaskStore) Edit(id models.TaskID, text string, now time.Time) (deleted, found bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return true, s.Delete(id)
	}
	i := s.index(id)
	if i < 0 {
		return false, false
	}
	s.tasks[i].Text = text
	s.tasks[i].UpdatedAt = now
	return false, true
}

// Delete removes a task unconditionally
func (s *TaskStore) Delete(id models.TaskID) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)
	return true
}

// ClearCompleted removes every completed task and returns how many were removed
func (s *TaskStore) ClearCompleted() int {
	before := len(s.tasks)
	s.tasks = slices.DeleteFunc(s.tasks, func(t models.Task) bool { return t.Completed })
	return before - len(s.tasks)
}

// List yields the tasks matching filter in display order: active tasks before
// completed ones, newest first within each group. The sequence is evaluated
// each time it is ranged over.
func (s *TaskStore) List(filter models.Filter) iter.Seq[models.Task] {
	return func(yield func(models.Task) bool) {
		matched := make([]models.Task, 0, len(s.tasks))
		for _, t := range s.tasks {
			if filter.Matches(t) {
				matched = append(matched, t)
			}
		}
		slices.SortStableFunc(matched, compareForDisplay)
		for _, t := range matched {
			if !yield(t) {
				return
			}
		}
	}
}

func compareForDisplay(a, b models.Task) int {
	if a.Completed != b.Completed {
		if a.Completed {
			return 1
		}
		return -1
	}
	return b.CreatedAt.Compare(a.CreatedAt)
}

// AllCompleted reports whether there is at least one task and every task is done
func (s *TaskStore) AllCompleted() bool {
	if len(s.tasks) == 0 {
		return false
	}
	for _, t := range s.tasks {
		if !t.Completed {
			return false
		}
	}
	return true
}

// Stats counts tasks for the progress display
func (s *TaskStore) Stats() models.TaskStats {
	stats := models.TaskStats{Total: len(s.tasks)}
	for _, t := range s.tasks {
		if t.Completed {
			stats.Completed++
		}
	}
	stats.Active = stats.Total - stats.Completed
	if stats.Total > 0 {
		stats.PercentComplete = int(math.Round(float64(stats.Completed) * 100 / float64(stats.Total)))
	}
	return stats
}

func (s *TaskStore) index(id models.TaskID) int {
	return slices.IndexFunc(s.tasks, func(t models.Task) bool { return t.ID == id })
}

// ResolveID finds the single task whose id starts with prefix. An exact match
// always wins.
func (s *TaskStore) ResolveID(prefix string) (models.TaskID, bool) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", false
	}
	var match models.TaskID
	count := 0
	for _, t := range s.tasks {
		if string(t.ID) == prefix {
			return t.ID, true
		}
		if strings.HasPrefix(string(t.ID), prefix) {
			match = t.ID
			count++
		}
	}
	return match, count == 1
}
