package repository

import (
	"fmt"
	"strings"

	"github.com/locvowork/task_management_sample/internal/domain"
)

const taskColumns = "id, title, description, priority, status, user_id, due_date, reminder, created_at"

// BuildTaskQuery composes the owner-scoped listing query. The owner predicate is
// always first; status, priority and search follow in that order when non-empty.
func BuildTaskQuery(ownerID int64, filter domain.TaskFilter) (string, []interface{}) {
	var sb strings.Builder
	args := []interface{}{ownerID}

	sb.WriteString("SELECT " + taskColumns + " FROM tasks WHERE user_id = $1")

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		fmt.Fprintf(&sb, " AND status = $%d", len(args))
	}
	if filter.Priority != "" {
		args = append(args, string(filter.Priority))
		fmt.Fprintf(&sb, " AND priority = $%d", len(args))
	}
	if filter.Search != "" {
		pattern := filter.SearchPattern()
		args = append(args, pattern, pattern)
		fmt.Fprintf(&sb, " AND (lower(title) LIKE $%d OR lower(description) LIKE $%d)", len(args)-1, len(args))
	}

	sb.WriteString(" ORDER BY created_at DESC")
	return sb.String(), args
}

// BuildTaskUpdate composes a sparse UPDATE touching only the fields set in patch.
// ok is false when the patch is empty.
func BuildTaskUpdate(ownerID, id int64, patch domain.TaskPatch) (query string, args []interface{}, ok bool) {
	var sets []string
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title.Set {
		add("title", patch.Title.Value)
	}
	if patch.Description.Set {
		add("description", patch.Description.Value)
	}
	if patch.Priority.Set {
		add("priority", string(patch.Priority.Value))
	}
	if patch.Status.Set {
		add("status", string(patch.Status.Value))
	}
	if patch.DueDate.Set {
		add("due_date", patch.DueDate.Value)
	}
	if patch.Reminder.Set {
		add("reminder", patch.Reminder.Value)
	}

	if len(sets) == 0 {
		return "", nil, false
	}

	args = append(args, id, ownerID)
	query = fmt.Sprintf("UPDATE tasks SET %s WHERE id = $%d AND user_id = $%d",
		strings.Join(sets, ", "), len(args)-1, len(args))
	return query, args, true
}
