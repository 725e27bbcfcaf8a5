package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestTaskFilterMatches(t *testing.T) {
	milk := Task{Title: "Groceries", Description: strPtr("get MILK"), Status: StatusTodo, Priority: PriorityHigh}
	bread := Task{Title: "Buy bread", Status: StatusCompleted, Priority: PriorityLow}

	t.Run("SearchMatchesDescriptionCaseInsensitive", func(t *testing.T) {
		f := TaskFilter{Search: "Milk"}
		assert.True(t, f.Matches(milk))
		assert.False(t, f.Matches(bread))
	})

	t.Run("SearchMatchesTitle", func(t *testing.T) {
		assert.True(t, TaskFilter{Search: "BREAD"}.Matches(bread))
	})

	t.Run("Conjunctive", func(t *testing.T) {
		assert.True(t, TaskFilter{Status: StatusTodo, Priority: PriorityHigh, Search: "milk"}.Matches(milk))
		assert.False(t, TaskFilter{Status: StatusTodo, Priority: PriorityLow, Search: "milk"}.Matches(milk))
		assert.False(t, TaskFilter{Status: StatusCompleted, Search: "milk"}.Matches(milk))
	})

	t.Run("EmptyFilterMatchesAll", func(t *testing.T) {
		assert.True(t, TaskFilter{}.Matches(milk))
		assert.True(t, TaskFilter{}.Matches(bread))
	})
}

func TestSearchPattern(t *testing.T) {
	assert.Equal(t, "%milk%", TaskFilter{Search: "MiLk"}.SearchPattern())
}

func TestTaskPatchJSON(t *testing.T) {
	t.Run("AbsentFieldsStayUnset", func(t *testing.T) {
		var p TaskPatch
		require.NoError(t, json.Unmarshal([]byte(`{"status":"completed"}`), &p))
		assert.True(t, p.Status.Set)
		assert.Equal(t, StatusCompleted, p.Status.Value)
		assert.False(t, p.Title.Set)
		assert.False(t, p.Description.Set)
		assert.False(t, p.IsEmpty())
	})

	t.Run("ExplicitNullClears", func(t *testing.T) {
		var p TaskPatch
		require.NoError(t, json.Unmarshal([]byte(`{"description":null,"due_date":null}`), &p))
		assert.True(t, p.Description.Set)
		assert.Nil(t, p.Description.Value)
		assert.True(t, p.DueDate.Set)
		assert.Nil(t, p.DueDate.Value)

		task := Task{Description: strPtr("old"), DueDate: &Date{}}
		p.Apply(&task)
		assert.Nil(t, task.Description)
		assert.Nil(t, task.DueDate)
	})

	t.Run("EmptyObject", func(t *testing.T) {
		var p TaskPatch
		require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
		assert.True(t, p.IsEmpty())
	})

	t.Run("ApplyKeepsUnsetFields", func(t *testing.T) {
		task := Task{Title: "Buy milk", Status: StatusTodo, Priority: PriorityMedium}
		TaskPatch{Status: Some(StatusCompleted)}.Apply(&task)
		assert.Equal(t, "Buy milk", task.Title)
		assert.Equal(t, StatusCompleted, task.Status)
		assert.Equal(t, PriorityMedium, task.Priority)
	})
}

func TestDateAndTimestamp(t *testing.T) {
	t.Run("DateRoundTrip", func(t *testing.T) {
		var d Date
		require.NoError(t, json.Unmarshal([]byte(`"2024-03-09"`), &d))
		assert.Equal(t, "2024-03-09", d.String())
		b, err := json.Marshal(d)
		require.NoError(t, err)
		assert.Equal(t, `"2024-03-09"`, string(b))
	})

	t.Run("DateFromTimestampString", func(t *testing.T) {
		d, err := ParseDate("2024-03-09T10:00:00Z")
		require.NoError(t, err)
		assert.Equal(t, "2024-03-09", d.String())
	})

	t.Run("EmptyDateIsZero", func(t *testing.T) {
		var d Date
		require.NoError(t, json.Unmarshal([]byte(`""`), &d))
		assert.True(t, d.IsZero())
	})

	t.Run("InvalidDate", func(t *testing.T) {
		var d Date
		assert.Error(t, json.Unmarshal([]byte(`"09/03/2024"`), &d))
	})

	t.Run("DatetimeLocalReminder", func(t *testing.T) {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(`"2024-03-09T14:30"`), &ts))
		assert.True(t, ts.Equal(time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)))
		b, err := json.Marshal(ts)
		require.NoError(t, err)
		assert.Equal(t, `"2024-03-09T14:30:00Z"`, string(b))
	})

	t.Run("ScanDate", func(t *testing.T) {
		var d Date
		require.NoError(t, d.Scan(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))
		assert.Equal(t, "2024-01-02", d.String())
		require.NoError(t, d.Scan([]byte("2024-05-06")))
		assert.Equal(t, "2024-05-06", d.String())
		assert.Error(t, d.Scan(42))
	})
}

func TestSortNewestFirst(t *testing.T) {
	now := time.Now()
	tasks := []Task{
		{ID: 1, CreatedAt: now.Add(-time.Hour)},
		{ID: 2, CreatedAt: now},
		{ID: 3, CreatedAt: now},
	}
	SortNewestFirst(tasks)
	assert.Equal(t, []int64{3, 2, 1}, []int64{tasks[0].ID, tasks[1].ID, tasks[2].ID})
}

func TestErrorKinds(t *testing.T) {
	err := Validation("title is required")
	assert.ErrorIs(t, err, ErrValidation)
	msg, ok := PublicMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "title is required", msg)

	_, ok = PublicMessage(assert.AnError)
	assert.False(t, ok)
}
