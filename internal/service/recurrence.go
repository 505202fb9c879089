package service

import (
	"time"

	"vessel-ops/internal/model"
)

// NextDueDate returns the due date of the next occurrence: the item's own due
// date, or the completion date when it had none, advanced by the recurrence interval.
func NextDueDate(item model.WorkItem, completedAt time.Time) (time.Time, bool) {
	days := item.Rule().Days()
	if days == 0 {
		return time.Time{}, false
	}
	base := model.DateOf(completedAt)
	if due := item.DueDate(); due != nil {
		base = model.DateOf(*due)
	}
	return base.AddDate(0, 0, days), true
}

// ScheduleNext builds the open successor of a completed recurring item.
// The successor has no id yet; the store assigns one on insert.
func ScheduleNext[T model.Item[T]](completed T, now time.Time) (T, bool) {
	var zero T
	completedAt := now
	if c, ok := completed.Completion(); ok {
		completedAt = c.At
	}
	due, ok := NextDueDate(completed, completedAt)
	if !ok {
		return zero, false
	}
	return completed.Successor(due, now.UTC()), true
}
