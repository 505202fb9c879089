package service

import (
	"time"

	"vessel-ops/internal/model"
)

// Urgency is the deadline pressure tier of a work item.
type Urgency string

const (
	UrgencyNone     Urgency = "NONE"
	UrgencySafe     Urgency = "SAFE"
	UrgencyWarning  Urgency = "WARNING"
	UrgencyCritical Urgency = "CRITICAL"
	UrgencyOverdue  Urgency = "OVERDUE"
)

const msPerDay = int64(24 * time.Hour / time.Millisecond)

// UrgencyOf classifies an item by the share of its deadline window still remaining:
// above 70% is SAFE, above 30% WARNING, otherwise CRITICAL until the due date passes.
// Completed items and items without a due date carry no urgency.
// The due date is a calendar day and starts at midnight in now's location.
func UrgencyOf(doneBy *time.Time, createdAt time.Time, status model.Status, now time.Time) Urgency {
	if status == model.StatusCompleted || doneBy == nil {
		return UrgencyNone
	}
	dueAt := dueInstant(*doneBy, now.Location())
	if now.After(dueAt) {
		return UrgencyOverdue
	}

	// Milliseconds since the epoch do not overflow for any year up to 9999,
	// unlike time.Duration, which saturates near 292 years.
	window := windowMillis(dueAt, createdAt)
	elapsed := now.UnixMilli() - createdAt.UnixMilli()

	switch {
	case 10*elapsed < 3*window:
		return UrgencySafe
	case 10*elapsed < 7*window:
		return UrgencyWarning
	default:
		return UrgencyCritical
	}
}

func UrgencyOfItem(item model.WorkItem, now time.Time) Urgency {
	return UrgencyOf(item.DueDate(), item.Created(), item.State(), now)
}

// RemainingFraction returns 1 - elapsed/window, capped at 1. It goes negative once
// the window has run out. Items without a due date report 1.
func RemainingFraction(doneBy *time.Time, createdAt, now time.Time) float64 {
	if doneBy == nil {
		return 1
	}
	window := windowMillis(dueInstant(*doneBy, now.Location()), createdAt)
	elapsed := now.UnixMilli() - createdAt.UnixMilli()
	remaining := 1 - float64(elapsed)/float64(window)
	if remaining > 1 {
		return 1
	}
	return remaining
}

// DaysLeft counts the started days between now and the due instant, as shown to crew.
func DaysLeft(doneBy, now time.Time) int {
	dueAt := dueInstant(doneBy, now.Location())
	return int((dueAt.UnixMilli()-now.UnixMilli())/msPerDay) + 1
}

// dueInstant rebuilds the stored calendar date as midnight in loc.
func dueInstant(doneBy time.Time, loc *time.Location) time.Time {
	y, m, d := doneBy.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// windowMillis is the whole number of days between creation and the due instant,
// at least one, in milliseconds.
func windowMillis(dueAt, createdAt time.Time) int64 {
	days := (dueAt.UnixMilli() - createdAt.UnixMilli()) / msPerDay
	if days < 1 {
		days = 1
	}
	return days * msPerDay
}

// Rank orders tiers from most to least pressing.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyOverdue:
		return 0
	case UrgencyCritical:
		return 1
	case UrgencyWarning:
		return 2
	case UrgencySafe:
		return 3
	default:
		return 4
	}
}

func (u Urgency) Color() string {
	switch u {
	case UrgencySafe:
		return "#2E7D32"
	case UrgencyWarning:
		return "#F9A825"
	case UrgencyCritical:
		return "#C62828"
	case UrgencyOverdue:
		return "#7B1FA2"
	default:
		return "#607D8B"
	}
}

func (u Urgency) Icon() string {
	switch u {
	case UrgencySafe:
		return "🟢"
	case UrgencyWarning:
		return "🟡"
	case UrgencyCritical:
		return "🔴"
	case UrgencyOverdue:
		return "⚠️"
	default:
		return "⚪"
	}
}

// Annotated pairs a work item with its urgency at a point in time.
type Annotated[T model.WorkItem] struct {
	Item      T
	Urgency   Urgency
	Remaining float64
}

func AnnotateItem[T model.WorkItem](item T, now time.Time) Annotated[T] {
	return Annotated[T]{
		Item:      item,
		Urgency:   UrgencyOfItem(item, now),
		Remaining: RemainingFraction(item.DueDate(), item.Created(), now),
	}
}

func Annotate[T model.WorkItem](items []T, now time.Time) []Annotated[T] {
	out := make([]Annotated[T], 0, len(items))
	for _, item := range items {
		out = append(out, AnnotateItem(item, now))
	}
	return out
}
