package model

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a work item.
type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusCompleted Status = "COMPLETED"
)

func (s Status) String() string {
	return string(s)
}

// CanTransition reports whether a work item may move from one status to another.
// OPEN -> COMPLETED is the only legal move; reopening means deleting and recreating.
func CanTransition(from, to Status) bool {
	return from == StatusOpen && to == StatusCompleted
}

// Recurrence is the fixed cadence at which a completed item regenerates.
// The zero value means the item does not recur.
type Recurrence string

const (
	RecurNone   Recurrence = ""
	Recur7Days  Recurrence = "7_DAYS"
	Recur14Days Recurrence = "14_DAYS"
	Recur30Days Recurrence = "30_DAYS"
)

// Days returns the interval length, or 0 for non-recurring items.
func (r Recurrence) Days() int {
	switch r {
	case Recur7Days:
		return 7
	case Recur14Days:
		return 14
	case Recur30Days:
		return 30
	default:
		return 0
	}
}

func (r Recurrence) IsSet() bool {
	return r.Days() > 0
}

// ParseRecurrence accepts canonical names ("7_DAYS"), bare day counts ("7")
// and the empty string / "none" for non-recurring items.
func ParseRecurrence(raw string) (Recurrence, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	switch value {
	case "", "NONE":
		return RecurNone, nil
	case "7", string(Recur7Days):
		return Recur7Days, nil
	case "14", string(Recur14Days):
		return Recur14Days, nil
	case "30", string(Recur30Days):
		return Recur30Days, nil
	default:
		return RecurNone, fmt.Errorf("unknown recurrence %q", raw)
	}
}

// Actor identifies the crew member performing an action.
type Actor struct {
	ID   string
	Name string
}

// Completion holds the fields written together when an item is completed.
type Completion struct {
	At     time.Time
	ByID   string
	ByName string
}

// WorkItem is the shape the deadline, completion and recurrence rules need.
// Task and YardJob implement it independently.
type WorkItem interface {
	ItemID() string
	Vessel() string
	ItemTitle() string
	Created() time.Time
	DueDate() *time.Time
	State() Status
	Rule() Recurrence
	// Completion returns the completion record and true once the item is completed.
	Completion() (Completion, bool)
}

// Item is a WorkItem that can produce updated copies of its own concrete type.
type Item[T any] interface {
	WorkItem
	WithCompletion(c Completion) T
	Successor(dueDate, createdAt time.Time) T
}

// DateOf drops the time of day, keeping the calendar date as UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(raw string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return d, nil
}

func completionOf(status Status, at *time.Time, byID, byName *string) (Completion, bool) {
	if status != StatusCompleted || at == nil || byID == nil || byName == nil {
		return Completion{}, false
	}
	return Completion{At: *at, ByID: *byID, ByName: *byName}, true
}
