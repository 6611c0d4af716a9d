package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TaskID identifies a task within the task list
type TaskID string

// UnmarshalJSON accepts both strings and numbers. Records written by older
// versions of the app used millisecond timestamps as numeric ids.
func (id *TaskID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = TaskID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("task id: %w", err)
	}
	*id = TaskID(n.String())
	return nil
}

// Task represents a single to-do item
type Task struct {
	ID          TaskID     `json:"id" yaml:"id"`
	Text        string     `json:"text" yaml:"text"`
	Completed   bool       `json:"completed" yaml:"completed"`
	CreatedAt   time.Time  `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" yaml:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt" yaml:"completedAt"`
}

// Filter selects which tasks a listing returns
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// ParseFilter converts user input into a Filter. An empty string means all.
func ParseFilter(s string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterActive:
		return FilterActive, nil
	case FilterCompleted:
		return FilterCompleted, nil
	default:
		return "", fmt.Errorf("unknown filter %q", s)
	}
}

// Matches reports whether the task belongs in a listing with this filter
func (f Filter) Matches(t Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// TaskStats summarizes the task list for the progress display
type TaskStats struct {
	Total           int `json:"total"`
	Active          int `json:"active"`
	Completed       int `json:"completed"`
	PercentComplete int `json:"percentComplete"`
}
