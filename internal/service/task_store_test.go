package service

import (
	"fmt"
	"iter"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmaster/internal/models"
)

var t0 = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

func sequentialIDs() func() models.TaskID {
	n := 0
	return func() models.TaskID {
		n++
		return models.TaskID(fmt.Sprintf("%d", n))
	}
}

func ids(seq iter.Seq[models.Task]) []models.TaskID {
	var out []models.TaskID
	for t := range seq {
		out = append(out, t.ID)
	}
	return out
}

func TestTaskStoreAdd(t *testing.T) {
	s := NewTaskStore(nil, sequentialIDs())

	first := s.Add("  buy milk ", t0)
	second := s.Add("walk dog", t0.Add(time.Minute))

	require.Equal(t, 2, s.Len())
	assert.Equal(t, "buy milk", first.Text)
	assert.False(t, first.Completed)
	assert.Nil(t, first.CompletedAt)
	assert.Equal(t, t0, first.CreatedAt)
	assert.Equal(t, first.CreatedAt, first.UpdatedAt)
	assert.Equal(t, second.ID, s.Tasks()[0].ID, "new tasks go to the head")
}

func TestTaskStoreToggle(t *testing.T) {
	s := NewTaskStore(nil, sequentialIDs())
	task := s.Add("write report", t0)

	done, ok := s.Toggle(task.ID, t0.Add(time.Hour))
	require.True(t, ok)
	assert.True(t, done.Completed)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, t0.Add(time.Hour), *done.CompletedAt)
	assert.Equal(t, t0.Add(time.Hour), done.UpdatedAt)

	undone, ok := s.Toggle(task.ID, t0.Add(2*time.Hour))
	require.True(t, ok)
	assert.False(t, undone.Completed)
	assert.Nil(t, undone.CompletedAt)
	assert.Equal(t, t0, undone.CreatedAt)

	_, ok = s.Toggle("missing", t0)
	assert.False(t, ok)
}

func TestTaskStoreEdit(t *testing.T) {
	tests := []struct {
		name        string
		id          models.TaskID
		text        string
		wantDeleted bool
		wantFound   bool
		wantLen     int
		wantText    string
	}{
		{name: "new text", id: "1", text: " renamed ", wantFound: true, wantLen: 1, wantText: "renamed"},
		{name: "empty text deletes", id: "1", text: "", wantDeleted: true, wantFound: true, wantLen: 0},
		{name: "blank text deletes", id: "1", text: "   ", wantDeleted: true, wantFound: true, wantLen: 0},
		{name: "unknown id", id: "9", text: "x", wantLen: 1, wantText: "original"},
		{name: "unknown id with empty text", id: "9", text: "", wantDeleted: true, wantLen: 1, wantText: "original"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewTaskStore(nil, sequentialIDs())
			s.Add("original", t0)

			deleted, found := s.Edit(tt.id, tt.text, t0.Add(time.Minute))
			assert.Equal(t, tt.wantDeleted, deleted)
			assert.Equal(t, tt.wantFound, found)
			require.Equal(t, tt.wantLen, s.Len())
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantText, s.Tasks()[0].Text)
			}
		})
	}
}

func TestTaskStoreDeleteAndClear(t *testing.T) {
	s := NewTaskStore(nil, sequentialIDs())
	for i := 0; i < 4; i++ {
		s.Add(fmt.Sprintf("task %d", i+1), t0.Add(time.Duration(i)*time.Minute))
	}
	s.Toggle("2", t0)
	s.Toggle("4", t0)

	assert.True(t, s.Delete("1"))
	assert.False(t, s.Delete("1"))

	assert.Equal(t, 2, s.ClearCompleted())
	assert.Equal(t, []models.TaskID{"3"}, ids(s.List(models.FilterAll)))
	assert.Equal(t, 0, s.ClearCompleted())
	assert.Equal(t, 1, s.Len())
}

func TestTaskStoreListOrderAndFilter(t *testing.T) {
	s := NewTaskStore(nil, sequentialIDs())
	s.Add("one", t0)
	s.Add("two", t0.Add(time.Minute))
	s.Add("three", t0.Add(2*time.Minute))
	s.Toggle("2", t0.Add(3*time.Minute))

	tests := []struct {
		filter models.Filter
		want   []models.TaskID
	}{
		{filter: models.FilterAll, want: []models.TaskID{"3", "1", "2"}},
		{filter: models.FilterActive, want: []models.TaskID{"3", "1"}},
		{filter: models.FilterCompleted, want: []models.TaskID{"2"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(s.List(tt.filter)))
		})
	}
}

func TestTaskStoreListOrdersByCreatedAtNotStorage(t *testing.T) {
	tasks := []models.Task{
		{ID: "old", Text: "old", CreatedAt: t0},
		{ID: "new", Text: "new", CreatedAt: t0.Add(time.Hour)},
		{ID: "done-old", Text: "x", Completed: true, CreatedAt: t0},
		{ID: "done-new", Text: "y", Completed: true, CreatedAt: t0.Add(time.Hour)},
	}
	s := NewTaskStore(tasks, nil)

	assert.Equal(t, []models.TaskID{"new", "old", "done-new", "done-old"}, ids(s.List(models.FilterAll)))
	assert.Equal(t, models.TaskID("old"), s.Tasks()[0].ID, "listing does not reorder storage")
}

func TestTaskStoreListIsRestartable(t *testing.T) {
	s := NewTaskStore(nil, sequentialIDs())
	s.Add("a", t0)
	s.Add("b", t0.Add(time.Minute))

	seq := s.List(models.FilterAll)
	assert.Equal(t, ids(seq), ids(seq))

	var first []models.TaskID
	for task := range seq {
		first = append(first, task.ID)
		break
	}
	assert.Equal(t, []models.TaskID{"2"}, first)

	s.Add("c", t0.Add(2*time.Minute))
	assert.Equal(t, []models.TaskID{"3", "2", "1"}, ids(seq), "the sequence reflects the store when ranged")
}

func TestTaskStoreStats(t *testing.T) {
	s := NewTaskStore(nil, sequentialIDs())
	assert.Equal(t, models.TaskStats{}, s.Stats())
	assert.False(t, s.AllCompleted())

	s.Add("a", t0)
	s.Add("b", t0)
	s.Add("c", t0)
	s.Toggle("1", t0)
	assert.Equal(t, models.TaskStats{Total: 3, Active: 2, Completed: 1, PercentComplete: 33}, s.Stats())

	s.Toggle("2", t0)
	assert.Equal(t, 67, s.Stats().PercentComplete)
	assert.False(t, s.AllCompleted())

	s.Toggle("3", t0)
	assert.True(t, s.AllCompleted())
	assert.Equal(t, 100, s.Stats().PercentComplete)
}

func TestTaskStoreResolveID(t *testing.T) {
	s := NewTaskStore([]models.Task{
		{ID: "abc123", Text: "a"},
		{ID: "abd456", Text: "b"},
		{ID: "ab", Text: "c"},
	}, nil)

	tests := []struct {
		prefix string
		want   models.TaskID
		ok     bool
	}{
		{prefix: "abc", want: "abc123", ok: true},
		{prefix: "abd4", want: "abd456", ok: true},
		{prefix: "ab", want: "ab", ok: true},
		{prefix: "a", ok: false},
		{prefix: "zz", ok: false},
		{prefix: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			got, ok := s.ResolveID(tt.prefix)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNewTaskIDIsUnique(t *testing.T) {
	seen := make(map[models.TaskID]bool)
	for i := 0; i < 100; i++ {
		id := NewTaskID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
