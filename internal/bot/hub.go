package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"vessel-ops/internal/model"
	"vessel-ops/internal/repository"
	"vessel-ops/internal/service"
)

const hubYard = "YARD"

// hubLine is one work item as rendered in a hub message.
type hubLine struct {
	kind        itemKind
	id          string
	title       string
	doneBy      *time.Time
	status      model.Status
	urgency     service.Urgency
	recurrence  model.Recurrence
	completedBy string
}

func taskLines(items []service.Annotated[model.Task]) []hubLine {
	lines := make([]hubLine, 0, len(items))
	for _, a := range items {
		lines = append(lines, lineOf(kindTask, a.Item, a.Urgency))
	}
	return lines
}

func yardLines(items []service.Annotated[model.YardJob]) []hubLine {
	lines := make([]hubLine, 0, len(items))
	for _, a := range items {
		lines = append(lines, lineOf(kindYard, a.Item, a.Urgency))
	}
	return lines
}

func lineOf(kind itemKind, item model.WorkItem, urgency service.Urgency) hubLine {
	line := hubLine{
		kind:       kind,
		id:         item.ItemID(),
		title:      item.ItemTitle(),
		doneBy:     item.DueDate(),
		status:     item.State(),
		urgency:    urgency,
		recurrence: item.Rule(),
	}
	if c, ok := item.Completion(); ok {
		line.completedBy = c.ByName
	}
	return line
}

func (b *Bot) sendHubPicker(chatID int64) error {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(model.AllCategories)+1)
	for _, c := range model.AllCategories {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(categoryLabel(c), cbHubPrefix+string(c)))
	}
	row = append(row, tgbotapi.NewInlineKeyboardButtonData(menuLabelYardJobs, cbHubPrefix+hubYard))
	return b.sendWithReplyMarkup(chatID, "Which hub?", tgbotapi.NewInlineKeyboardMarkup(row))
}

func (b *Bot) sendTaskHub(ctx context.Context, chatID int64, vesselID string, category model.TaskCategory) error {
	items, err := b.taskSvc.OpenHub(ctx, vesselID, category, b.now())
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not load tasks: %s", escape(err.Error())))
	}
	return b.sendHub(chatID, categoryLabel(category)+" tasks", taskLines(items))
}

func (b *Bot) sendYardJobHub(ctx context.Context, chatID int64, vesselID string) error {
	items, err := b.jobSvc.OpenHub(ctx, vesselID, b.now())
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not load yard jobs: %s", escape(err.Error())))
	}
	return b.sendHub(chatID, menuLabelYardJobs, yardLines(items))
}

func (b *Bot) sendHub(chatID int64, heading string, lines []hubLine) error {
	if len(lines) == 0 {
		return b.sendText(chatID, fmt.Sprintf("<b>%s</b>\nNothing here yet.", escape(heading)))
	}

	now := b.now()
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("<b>%s</b>\n\n", escape(heading)))

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, line := range lines {
		builder.WriteString(formatHubLine(line, now))
		var row []tgbotapi.InlineKeyboardButton
		if line.status == model.StatusOpen {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("✅ %s · %s", shortID(line.id), shortTitle(line.title, 20)),
				callbackData(cbCompletePrefix, line.kind, line.id),
			))
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🗑", callbackData(cbDeletePrefix, line.kind, line.id)))
		buttons = append(buttons, row)
	}

	return b.sendWithReplyMarkup(chatID, strings.TrimSpace(builder.String()), tgbotapi.NewInlineKeyboardMarkup(buttons...))
}

func formatHubLine(line hubLine, now time.Time) string {
	var sb strings.Builder
	if line.status == model.StatusCompleted {
		sb.WriteString(fmt.Sprintf("✔️ <code>%s</code> <s>%s</s>\n", shortID(line.id), escape(normalizeTitle(line.title))))
		if line.completedBy != "" {
			sb.WriteString(fmt.Sprintf("   done by %s\n", escape(line.completedBy)))
		}
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("%s <code>%s</code> %s\n", line.urgency.Icon(), shortID(line.id), escape(normalizeTitle(line.title))))
	if line.doneBy != nil {
		d := line.doneBy.Format(time.DateOnly)
		if line.urgency == service.UrgencyOverdue {
			sb.WriteString(fmt.Sprintf("   ⏰ due %s, <b>overdue</b>\n", d))
		} else {
			daysLeft := service.DaysLeft(*line.doneBy, now)
			sb.WriteString(fmt.Sprintf("   ⏰ due %s · ≈%d d left\n", d, daysLeft))
		}
	}
	if line.recurrence.IsSet() {
		sb.WriteString(fmt.Sprintf("   ♻️ every %d days\n", line.recurrence.Days()))
	}
	return sb.String()
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Debug("callback ack", zap.Error(err))
	}

	member, err := b.ensureCrew(ctx, cb.From)
	if err != nil {
		return err
	}
	if member.VesselID == nil {
		return b.sendText(cb.Message.Chat.ID, "You are not on a vessel yet: /start &lt;vessel name&gt;")
	}
	chatID := cb.Message.Chat.ID
	data := cb.Data

	switch {
	case strings.HasPrefix(data, cbHubPrefix):
		hub := strings.TrimPrefix(data, cbHubPrefix)
		if hub == hubYard {
			return b.sendYardJobHub(ctx, chatID, *member.VesselID)
		}
		category, err := model.ParseCategory(hub)
		if err != nil {
			return nil
		}
		return b.sendTaskHub(ctx, chatID, *member.VesselID, category)
	case strings.HasPrefix(data, cbConfirmPrefix):
		action, kind, id, ok := parseCallback(strings.TrimPrefix(data, cbConfirmPrefix))
		if !ok {
			return nil
		}
		if action == cbDeletePrefix {
			return b.deleteAndRefresh(ctx, chatID, *member.VesselID, kind, id)
		}
		return b.completeAndRefresh(ctx, chatID, member, kind, id)
	case data == cbCancel:
		return b.sendText(chatID, "Cancelled.")
	default:
		action, kind, id, ok := parseCallback(data)
		if !ok {
			return nil
		}
		return b.askConfirmation(ctx, chatID, *member.VesselID, action, kind, id)
	}
}

func (b *Bot) askConfirmation(ctx context.Context, chatID int64, vesselID, action string, kind itemKind, id string) error {
	item, err := b.loadVesselItem(ctx, vesselID, kind, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return b.sendText(chatID, "Item not found or already deleted.")
		}
		return b.sendText(chatID, fmt.Sprintf("Error: %s", escape(err.Error())))
	}

	var text string
	if action == cbDeletePrefix {
		text = fmt.Sprintf("Delete «%s» (<code>%s</code>)?", escape(normalizeTitle(item.ItemTitle())), shortID(id))
	} else {
		if item.State() == model.StatusCompleted {
			return b.sendText(chatID, "This item is already complete.")
		}
		text = fmt.Sprintf("Mark «%s» (<code>%s</code>) complete?", escape(normalizeTitle(item.ItemTitle())), shortID(id))
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Confirm", cbConfirmPrefix+callbackData(action, kind, id)),
		tgbotapi.NewInlineKeyboardButtonData("↩️ Cancel", cbCancel),
	))
	return b.sendWithReplyMarkup(chatID, text, markup)
}

func (b *Bot) loadItem(ctx context.Context, kind itemKind, id string) (model.WorkItem, error) {
	if kind == kindYard {
		return b.jobSvc.Get(ctx, id)
	}
	return b.taskSvc.Get(ctx, id)
}

// loadVesselItem hides items of other vessels behind ErrNotFound, since callback data can be forged.
func (b *Bot) loadVesselItem(ctx context.Context, vesselID string, kind itemKind, id string) (model.WorkItem, error) {
	item, err := b.loadItem(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if item.Vessel() != vesselID {
		b.log.Warn("item of another vessel requested", zap.String("item_id", id), zap.String("vessel_id", vesselID))
		return nil, repository.ErrNotFound
	}
	return item, nil
}

// completionSummary is what the crew is told after a completion attempt.
type completionSummary struct {
	title    string
	outcome  service.Outcome
	nextDue  *time.Time
	partial  bool
	category model.TaskCategory
}

func summarize[T model.Item[T]](res service.CompletionResult[T], err error) (completionSummary, error) {
	var recErr *service.RecurrenceError
	if err != nil && !errors.As(err, &recErr) {
		return completionSummary{}, err
	}
	sum := completionSummary{
		title:   res.Item.ItemTitle(),
		outcome: res.Outcome,
		partial: recErr != nil,
	}
	if res.Successor != nil {
		sum.nextDue = (*res.Successor).DueDate()
	}
	return sum, nil
}

func completionMessage(sum completionSummary) string {
	title := escape(normalizeTitle(sum.title))
	switch {
	case sum.partial:
		return fmt.Sprintf("✅ «%s» marked complete, but the next occurrence could not be scheduled. Please try again later or add it manually.", title)
	case sum.outcome == service.OutcomeAlreadyCompleted:
		return fmt.Sprintf("«%s» was already complete.", title)
	case sum.outcome == service.OutcomeConflict:
		return fmt.Sprintf("«%s» was just completed or removed by someone else.", title)
	case sum.nextDue != nil:
		return fmt.Sprintf("✅ «%s» complete.\n♻️ Next occurrence due %s.", title, sum.nextDue.Format(time.DateOnly))
	default:
		return fmt.Sprintf("✅ «%s» complete.", title)
	}
}

func (b *Bot) completeAndRefresh(ctx context.Context, chatID int64, member *model.CrewMember, kind itemKind, id string) error {
	if _, err := b.loadVesselItem(ctx, *member.VesselID, kind, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return b.sendText(chatID, "Item not found or already deleted.")
		}
		return b.sendText(chatID, fmt.Sprintf("Error: %s", escape(err.Error())))
	}

	actor := member.Actor()
	now := b.now()

	var sum completionSummary
	var err error
	switch kind {
	case kindYard:
		res, cerr := b.jobSvc.Complete(ctx, id, actor, now)
		sum, err = summarize(res, cerr)
	default:
		res, cerr := b.taskSvc.Complete(ctx, id, actor, now)
		sum, err = summarize(res, cerr)
		sum.category = res.Item.Category
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return b.sendText(chatID, "Item not found or already deleted.")
		}
		b.log.Warn("complete item", zap.String("item_id", id), zap.Error(err))
		return b.sendText(chatID, fmt.Sprintf("Could not save, please retry: %s", escape(err.Error())))
	}

	b.log.Info("completion via bot",
		zap.String("item_id", id),
		zap.String("outcome", string(sum.outcome)),
		zap.Bool("partial", sum.partial),
		zap.Uint("crew_id", member.ID),
	)
	if err := b.sendText(chatID, completionMessage(sum)); err != nil {
		return err
	}
	if kind == kindYard {
		return b.sendYardJobHub(ctx, chatID, *member.VesselID)
	}
	return b.sendTaskHub(ctx, chatID, *member.VesselID, sum.category)
}

func (b *Bot) deleteAndRefresh(ctx context.Context, chatID int64, vesselID string, kind itemKind, id string) error {
	item, err := b.loadVesselItem(ctx, vesselID, kind, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return b.sendText(chatID, "Item not found or already deleted.")
		}
		return b.sendText(chatID, fmt.Sprintf("Error: %s", escape(err.Error())))
	}

	if kind == kindYard {
		err = b.jobSvc.Delete(ctx, id)
	} else {
		err = b.taskSvc.Delete(ctx, id)
	}
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not delete: %s", escape(err.Error())))
	}

	b.log.Info("item deleted", zap.String("item_id", id), zap.String("kind", string(kind)))
	if err := b.sendText(chatID, fmt.Sprintf("🗑 «%s» deleted.", escape(normalizeTitle(item.ItemTitle())))); err != nil {
		return err
	}
	if task, ok := item.(model.Task); ok {
		return b.sendTaskHub(ctx, chatID, vesselID, task.Category)
	}
	return b.sendYardJobHub(ctx, chatID, vesselID)
}
