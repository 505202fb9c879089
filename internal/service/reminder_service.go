package service

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"vessel-ops/internal/model"
	"vessel-ops/internal/repository"
)

// ReminderService builds human-readable summaries of open work for a vessel's crew.
type ReminderService struct {
	taskRepo *repository.TaskRepository
	jobRepo  *repository.YardJobRepository
}

func NewReminderService(taskRepo *repository.TaskRepository, jobRepo *repository.YardJobRepository) *ReminderService {
	return &ReminderService{taskRepo: taskRepo, jobRepo: jobRepo}
}

type digestLine struct {
	title    string
	label    string
	doneBy   *time.Time
	urgency  Urgency
	recurs   model.Recurrence
	category string
}

// VesselSummary lists every open task and yard job, most pressing first.
func (s *ReminderService) VesselSummary(ctx context.Context, vessel model.Vessel, now time.Time) (string, error) {
	tasks, err := s.taskRepo.ListOpenByVessel(ctx, vessel.ID)
	if err != nil {
		return "", err
	}
	jobs, err := s.jobRepo.ListOpenByVessel(ctx, vessel.ID)
	if err != nil {
		return "", err
	}

	var taskLines, jobLines []digestLine
	for _, t := range tasks {
		taskLines = append(taskLines, digestLine{
			title:    t.Title,
			label:    shortID(t.ID),
			doneBy:   t.DoneByDate,
			urgency:  UrgencyOfItem(t, now),
			recurs:   t.Recurrence,
			category: strings.ToLower(string(t.Category)),
		})
	}
	for _, j := range jobs {
		jobLines = append(jobLines, digestLine{
			title:    j.Title,
			label:    shortID(j.ID),
			doneBy:   j.DoneByDate,
			urgency:  UrgencyOfItem(j, now),
			recurs:   j.Recurrence,
			category: j.Yard,
		})
	}
	sortLines(taskLines)
	sortLines(jobLines)

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📋 <b>%s: daily report</b>\n", html.EscapeString(vessel.Name)))
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("02.01.2006")))

	builder.WriteString("🛠 <b>Tasks</b>\n")
	if len(taskLines) == 0 {
		builder.WriteString("· no open tasks\n")
	}
	for _, line := range taskLines {
		builder.WriteString(formatLine(line, now))
	}

	builder.WriteString("\n⚓ <b>Yard jobs</b>\n")
	if len(jobLines) == 0 {
		builder.WriteString("· no open yard jobs\n")
	}
	for _, line := range jobLines {
		builder.WriteString(formatLine(line, now))
	}

	return strings.TrimSpace(builder.String()), nil
}

func sortLines(lines []digestLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].urgency.Rank() != lines[j].urgency.Rank() {
			return lines[i].urgency.Rank() < lines[j].urgency.Rank()
		}
		switch {
		case lines[i].doneBy == nil && lines[j].doneBy == nil:
			return false
		case lines[i].doneBy == nil:
			return false
		case lines[j].doneBy == nil:
			return true
		default:
			return lines[i].doneBy.Before(*lines[j].doneBy)
		}
	})
}

func formatLine(line digestLine, now time.Time) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s <code>%s</code> %s", line.urgency.Icon(), line.label, html.EscapeString(strings.TrimSpace(line.title))))
	if line.category != "" {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(line.category)))
	}

	if line.doneBy != nil {
		d := line.doneBy.Format(time.DateOnly)
		if line.urgency == UrgencyOverdue {
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s, <b>overdue</b>", d))
		} else {
			daysLeft := DaysLeft(*line.doneBy, now)
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s · ≈%d d left", d, daysLeft))
		}
	}
	if line.recurs.IsSet() {
		sb.WriteString(fmt.Sprintf("\n   ♻️ every %d days", line.recurs.Days()))
	}

	sb.WriteByte('\n')
	return sb.String()
}

// shortID is the prefix of an item id shown to crew; commands accept it back.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
