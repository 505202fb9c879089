package bot

import (
	"fmt"
	"strings"
	"time"

	"vessel-ops/internal/model"
	"vessel-ops/internal/service"
)

// callbackData encodes an item action as "<action><kind>:<id>", e.g. "complete:task:<uuid>".
func callbackData(action string, kind itemKind, id string) string {
	return action + string(kind) + ":" + id
}

func parseCallback(data string) (action string, kind itemKind, id string, ok bool) {
	for _, a := range []string{cbCompletePrefix, cbDeletePrefix} {
		if !strings.HasPrefix(data, a) {
			continue
		}
		rest := strings.TrimPrefix(data, a)
		k, itemID, found := strings.Cut(rest, ":")
		if !found || itemID == "" {
			return "", "", "", false
		}
		switch itemKind(k) {
		case kindTask, kindYard:
			return a, itemKind(k), itemID, true
		}
		return "", "", "", false
	}
	return "", "", "", false
}

// parseNewTask reads "<category> <title> | YYYY-MM-DD | 7|14|30"; the date and cadence are optional.
func parseNewTask(args string) (service.TaskInput, error) {
	const usage = "Usage: /newtask weekly Check bilge pumps | 2024-03-08 | 7"
	args = strings.TrimSpace(args)
	head, rest, _ := strings.Cut(args, " ")
	category, err := model.ParseCategory(head)
	if err != nil {
		return service.TaskInput{}, fmt.Errorf("category must be daily, weekly or monthly. %s", usage)
	}
	parts := splitFields(rest)
	if len(parts) == 0 || parts[0] == "" {
		return service.TaskInput{}, fmt.Errorf("title is required. %s", usage)
	}
	doneBy, rule, err := parseSchedule(parts[1:])
	if err != nil {
		return service.TaskInput{}, fmt.Errorf("%v. %s", err, usage)
	}
	return service.TaskInput{
		Category:   category,
		Title:      parts[0],
		DoneByDate: doneBy,
		Recurrence: rule,
	}, nil
}

// parseNewYardJob reads "<title> | YYYY-MM-DD | 7|14|30 | yard".
func parseNewYardJob(args string) (service.YardJobInput, error) {
	const usage = "Usage: /newyardjob Hull survey | 2024-06-01 | 30 | Damen Shiprepair"
	parts := splitFields(args)
	if len(parts) == 0 || parts[0] == "" {
		return service.YardJobInput{}, fmt.Errorf("title is required. %s", usage)
	}
	schedule := parts[1:]
	var yard string
	if len(schedule) > 2 {
		yard = schedule[2]
		schedule = schedule[:2]
	}
	doneBy, rule, err := parseSchedule(schedule)
	if err != nil {
		return service.YardJobInput{}, fmt.Errorf("%v. %s", err, usage)
	}
	return service.YardJobInput{
		Title:      parts[0],
		Yard:       yard,
		DoneByDate: doneBy,
		Recurrence: rule,
	}, nil
}

func splitFields(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	raw := strings.Split(s, "|")
	out := make([]string, 0, len(raw))
	for _, part := range raw {
		out = append(out, strings.TrimSpace(part))
	}
	return out
}

func parseSchedule(parts []string) (*time.Time, model.Recurrence, error) {
	var doneBy *time.Time
	rule := model.RecurNone
	if len(parts) > 0 && parts[0] != "" && parts[0] != "-" {
		d, err := model.ParseDate(parts[0])
		if err != nil {
			return nil, rule, err
		}
		doneBy = &d
	}
	if len(parts) > 1 {
		r, err := model.ParseRecurrence(parts[1])
		if err != nil {
			return nil, rule, err
		}
		rule = r
	}
	return doneBy, rule, nil
}

func categoryLabel(c model.TaskCategory) string {
	switch c {
	case model.CategoryDaily:
		return menuLabelDaily
	case model.CategoryWeekly:
		return menuLabelWeekly
	case model.CategoryMonthly:
		return menuLabelMonthly
	default:
		return string(c)
	}
}
