package model

import (
	"strconv"
	"strings"
	"time"
)

// CrewMember stores Telegram user metadata and the vessel the member serves on.
type CrewMember struct {
	ID         uint    `gorm:"primaryKey"`
	TelegramID int64   `gorm:"uniqueIndex"`
	VesselID   *string `gorm:"index;size:36"`
	FirstName  string
	LastName   string
	Username   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Actor returns the identity recorded on items this member completes.
func (c CrewMember) Actor() Actor {
	name := strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
	if name == "" {
		name = c.Username
	}
	if name == "" {
		name = "crew #" + strconv.FormatUint(uint64(c.ID), 10)
	}
	return Actor{ID: "crew:" + strconv.FormatUint(uint64(c.ID), 10), Name: name}
}
