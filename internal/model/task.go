package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskCategory groups tasks on the vessel hub. It is informational only.
type TaskCategory string

const (
	CategoryDaily   TaskCategory = "DAILY"
	CategoryWeekly  TaskCategory = "WEEKLY"
	CategoryMonthly TaskCategory = "MONTHLY"
)

var AllCategories = []TaskCategory{CategoryDaily, CategoryWeekly, CategoryMonthly}

func ParseCategory(raw string) (TaskCategory, error) {
	c := TaskCategory(strings.ToUpper(strings.TrimSpace(raw)))
	for _, known := range AllCategories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", raw)
}

// Task represents a recurring maintenance or watch-keeping item on a vessel.
type Task struct {
	ID              string       `gorm:"primaryKey;size:36" json:"id"`
	VesselID        string       `gorm:"index:idx_task_vessel_category;size:36;not null" json:"vesselId"`
	Category        TaskCategory `gorm:"index:idx_task_vessel_category;size:16;not null" json:"category"`
	Title           string       `gorm:"not null" json:"title"`
	Description     string       `json:"description,omitempty"`
	DoneByDate      *time.Time   `json:"doneByDate,omitempty"`
	Status          Status       `gorm:"size:16;not null;index" json:"status"`
	Recurrence      Recurrence   `gorm:"size:16" json:"recurrence,omitempty"`
	CompletedAt     *time.Time   `gorm:"index" json:"completedAt,omitempty"`
	CompletedByID   *string      `json:"completedById,omitempty"`
	CompletedByName *string      `json:"completedByName,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

func (t *Task) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

func (t Task) ItemID() string      { return t.ID }
func (t Task) Vessel() string      { return t.VesselID }
func (t Task) ItemTitle() string   { return t.Title }
func (t Task) Created() time.Time  { return t.CreatedAt }
func (t Task) DueDate() *time.Time { return t.DoneByDate }
func (t Task) State() Status       { return t.Status }
func (t Task) Rule() Recurrence    { return t.Recurrence }

func (t Task) Completion() (Completion, bool) {
	return completionOf(t.Status, t.CompletedAt, t.CompletedByID, t.CompletedByName)
}

// WithCompletion returns a completed copy; the receiver is left untouched.
func (t Task) WithCompletion(c Completion) Task {
	at, byID, byName := c.At, c.ByID, c.ByName
	t.Status = StatusCompleted
	t.CompletedAt = &at
	t.CompletedByID = &byID
	t.CompletedByName = &byName
	return t
}

// Successor builds the next open occurrence of a recurring task.
func (t Task) Successor(dueDate, createdAt time.Time) Task {
	due := DateOf(dueDate)
	return Task{
		VesselID:    t.VesselID,
		Category:    t.Category,
		Title:       t.Title,
		Description: t.Description,
		DoneByDate:  &due,
		Status:      StatusOpen,
		Recurrence:  t.Recurrence,
		CreatedAt:   createdAt,
	}
}
