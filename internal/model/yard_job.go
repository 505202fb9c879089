package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// YardJob is work scheduled with a shipyard or contractor, such as hull or engine overhaul items.
type YardJob struct {
	ID              string     `gorm:"primaryKey;size:36" json:"id"`
	VesselID        string     `gorm:"index;size:36;not null" json:"vesselId"`
	Title           string     `gorm:"not null" json:"title"`
	Yard            string     `json:"yard,omitempty"`
	Contractor      string     `json:"contractor,omitempty"`
	DoneByDate      *time.Time `json:"doneByDate,omitempty"`
	Status          Status     `gorm:"size:16;not null;index" json:"status"`
	Recurrence      Recurrence `gorm:"size:16" json:"recurrence,omitempty"`
	CompletedAt     *time.Time `gorm:"index" json:"completedAt,omitempty"`
	CompletedByID   *string    `json:"completedById,omitempty"`
	CompletedByName *string    `json:"completedByName,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (j *YardJob) BeforeCreate(*gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	return nil
}

func (j YardJob) ItemID() string      { return j.ID }
func (j YardJob) Vessel() string      { return j.VesselID }
func (j YardJob) ItemTitle() string   { return j.Title }
func (j YardJob) Created() time.Time  { return j.CreatedAt }
func (j YardJob) DueDate() *time.Time { return j.DoneByDate }
func (j YardJob) State() Status       { return j.Status }
func (j YardJob) Rule() Recurrence    { return j.Recurrence }

func (j YardJob) Completion() (Completion, bool) {
	return completionOf(j.Status, j.CompletedAt, j.CompletedByID, j.CompletedByName)
}

func (j YardJob) WithCompletion(c Completion) YardJob {
	at, byID, byName := c.At, c.ByID, c.ByName
	j.Status = StatusCompleted
	j.CompletedAt = &at
	j.CompletedByID = &byID
	j.CompletedByName = &byName
	return j
}

func (j YardJob) Successor(dueDate, createdAt time.Time) YardJob {
	due := DateOf(dueDate)
	return YardJob{
		VesselID:   j.VesselID,
		Title:      j.Title,
		Yard:       j.Yard,
		Contractor: j.Contractor,
		DoneByDate: &due,
		Status:     StatusOpen,
		Recurrence: j.Recurrence,
		CreatedAt:  createdAt,
	}
}
