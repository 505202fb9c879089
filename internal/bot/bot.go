package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"vessel-ops/internal/model"
	"vessel-ops/internal/repository"
	"vessel-ops/internal/service"
)

type itemKind string

const (
	kindTask itemKind = "task"
	kindYard itemKind = "yard"
)

const (
	cbHubPrefix      = "hub:"
	cbCompletePrefix = "complete:"
	cbDeletePrefix   = "delete:"
	cbConfirmPrefix  = "confirm:"
	cbCancel         = "cancel"
)

const (
	menuLabelDaily    = "🗓 Daily"
	menuLabelWeekly   = "📅 Weekly"
	menuLabelMonthly  = "🗂 Monthly"
	menuLabelYardJobs = "⚓ Yard jobs"
	menuLabelReport   = "📋 Report"
	menuLabelHelp     = "ℹ️ Help"
)

// Bot aggregates Telegram API with services.
type Bot struct {
	api         *tgbotapi.BotAPI
	crewRepo    *repository.CrewRepository
	vesselSvc   *service.VesselService
	taskSvc     *service.TaskService
	jobSvc      *service.YardJobService
	reminderSvc *service.ReminderService
	loc         *time.Location
	log         *zap.Logger
}

func New(token string, crewRepo *repository.CrewRepository, vesselSvc *service.VesselService, taskSvc *service.TaskService, jobSvc *service.YardJobService, reminderSvc *service.ReminderService, loc *time.Location, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = zap.NewNop()
	}

	log.Info("bot authorized", zap.String("account", api.Self.UserName))

	return &Bot{
		api:         api,
		crewRepo:    crewRepo,
		vesselSvc:   vesselSvc,
		taskSvc:     taskSvc,
		jobSvc:      jobSvc,
		reminderSvc: reminderSvc,
		loc:         loc,
		log:         log,
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.log.Warn("handle callback", zap.Error(err))
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.log.Warn("handle message", zap.Error(err))
			}
		}
	}

	return ctx.Err()
}

func (b *Bot) now() time.Time {
	return time.Now().In(b.loc)
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if msg.IsCommand() {
		b.log.Debug("command", zap.Int64("from", msg.From.ID), zap.String("command", msg.Command()))
		return b.handleCommand(ctx, msg)
	}

	if handled, err := b.handleMenuAlias(ctx, msg); handled {
		return err
	}

	return b.sendText(msg.Chat.ID, "I did not understand that. Use /tasks to open a hub or /help for the command list.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "tasks":
		return b.handleTasks(ctx, msg)
	case "yardjobs":
		return b.withVessel(ctx, msg, func(member *model.CrewMember) error {
			return b.sendYardJobHub(ctx, msg.Chat.ID, *member.VesselID)
		})
	case "newtask":
		return b.handleNewTask(ctx, msg)
	case "newyardjob":
		return b.handleNewYardJob(ctx, msg)
	case "complete":
		return b.handleItemCommand(ctx, msg, cbCompletePrefix)
	case "delete":
		return b.handleItemCommand(ctx, msg, cbDeletePrefix)
	case "report":
		return b.handleReport(ctx, msg)
	default:
		return b.sendText(msg.Chat.ID, "Unsupported command. See /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	member, err := b.ensureCrew(ctx, msg.From)
	if err != nil {
		return err
	}

	if name := strings.TrimSpace(msg.CommandArguments()); name != "" {
		vessel, err := b.vesselSvc.Register(ctx, name)
		if err != nil {
			return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not register vessel: %s", escape(err.Error())))
		}
		if err := b.crewRepo.AssignVessel(ctx, member, vessel.ID); err != nil {
			return err
		}
		b.log.Info("crew joined vessel", zap.Uint("crew_id", member.ID), zap.String("vessel_id", vessel.ID))
		return b.sendText(msg.Chat.ID, fmt.Sprintf("⚓ You are now on <b>%s</b>.\n\n%s", escape(vessel.Name), helpText))
	}

	if member.VesselID == nil {
		return b.sendText(msg.Chat.ID, "👋 Welcome aboard! Tell me your vessel first: /start &lt;vessel name&gt;")
	}
	return b.handleHelp(msg)
}

const helpText = "ℹ️ <b>Commands</b>\n" +
	"• /tasks [daily|weekly|monthly] - open a task hub\n" +
	"• /yardjobs - open the yard job hub\n" +
	"• /newtask &lt;category&gt; &lt;title&gt; | YYYY-MM-DD | 7|14|30 - add a task\n" +
	"• /newyardjob &lt;title&gt; | YYYY-MM-DD | 7|14|30 | yard - add a yard job\n" +
	"• /complete &lt;id&gt; - mark an item complete\n" +
	"• /delete &lt;id&gt; - remove an item\n" +
	"• /report - vessel summary\n" +
	"• /start &lt;vessel&gt; - switch vessel"

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	return b.sendText(msg.Chat.ID, helpText)
}

func (b *Bot) handleTasks(ctx context.Context, msg *tgbotapi.Message) error {
	return b.withVessel(ctx, msg, func(member *model.CrewMember) error {
		arg := strings.TrimSpace(msg.CommandArguments())
		if arg == "" {
			return b.sendHubPicker(msg.Chat.ID)
		}
		category, err := model.ParseCategory(arg)
		if err != nil {
			return b.sendText(msg.Chat.ID, "Category must be daily, weekly or monthly.")
		}
		return b.sendTaskHub(ctx, msg.Chat.ID, *member.VesselID, category)
	})
}

func (b *Bot) handleNewTask(ctx context.Context, msg *tgbotapi.Message) error {
	return b.withVessel(ctx, msg, func(member *model.CrewMember) error {
		input, err := parseNewTask(msg.CommandArguments())
		if err != nil {
			return b.sendText(msg.Chat.ID, escape(err.Error()))
		}
		input.VesselID = *member.VesselID
		task, err := b.taskSvc.CreateTask(ctx, input, b.now())
		if err != nil {
			return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not add task: %s", escape(err.Error())))
		}
		b.log.Info("task created", zap.String("task_id", task.ID), zap.String("vessel_id", task.VesselID))
		return b.sendText(msg.Chat.ID, fmt.Sprintf("🆕 Task <code>%s</code> «%s» added.", shortID(task.ID), escape(normalizeTitle(task.Title))))
	})
}

func (b *Bot) handleNewYardJob(ctx context.Context, msg *tgbotapi.Message) error {
	return b.withVessel(ctx, msg, func(member *model.CrewMember) error {
		input, err := parseNewYardJob(msg.CommandArguments())
		if err != nil {
			return b.sendText(msg.Chat.ID, escape(err.Error()))
		}
		input.VesselID = *member.VesselID
		job, err := b.jobSvc.CreateYardJob(ctx, input, b.now())
		if err != nil {
			return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not add yard job: %s", escape(err.Error())))
		}
		b.log.Info("yard job created", zap.String("job_id", job.ID), zap.String("vessel_id", job.VesselID))
		return b.sendText(msg.Chat.ID, fmt.Sprintf("🆕 Yard job <code>%s</code> «%s» added.", shortID(job.ID), escape(normalizeTitle(job.Title))))
	})
}

// handleItemCommand resolves an id typed by the user and asks for confirmation.
func (b *Bot) handleItemCommand(ctx context.Context, msg *tgbotapi.Message, action string) error {
	return b.withVessel(ctx, msg, func(member *model.CrewMember) error {
		prefix := strings.ToLower(strings.TrimSpace(msg.CommandArguments()))
		if !isIDPrefix(prefix) {
			return b.sendText(msg.Chat.ID, fmt.Sprintf("Give the item id, e.g. /%s 3f2a9c1d", strings.TrimSuffix(action, ":")))
		}
		kind, id, err := b.resolveItem(ctx, *member.VesselID, prefix)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return b.sendText(msg.Chat.ID, "Item not found.")
			}
			if errors.Is(err, repository.ErrAmbiguous) {
				return b.sendText(msg.Chat.ID, "Several items match that id, type more characters.")
			}
			return b.sendText(msg.Chat.ID, fmt.Sprintf("Error: %s", escape(err.Error())))
		}
		return b.askConfirmation(ctx, msg.Chat.ID, *member.VesselID, action, kind, id)
	})
}

func (b *Bot) resolveItem(ctx context.Context, vesselID, prefix string) (itemKind, string, error) {
	id, err := b.taskSvc.Resolve(ctx, vesselID, prefix)
	if err == nil {
		return kindTask, id, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", "", err
	}
	id, err = b.jobSvc.Resolve(ctx, vesselID, prefix)
	if err != nil {
		return "", "", err
	}
	return kindYard, id, nil
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	return b.withVessel(ctx, msg, func(member *model.CrewMember) error {
		vessel, err := b.vesselSvc.Get(ctx, *member.VesselID)
		if err != nil {
			return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not load vessel: %s", escape(err.Error())))
		}
		text, err := b.reminderSvc.VesselSummary(ctx, *vessel, b.now())
		if err != nil {
			return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not build the report: %s", escape(err.Error())))
		}
		return b.sendText(msg.Chat.ID, text)
	})
}

// SendDailyReports sends each vessel's summary to its crew.
func (b *Bot) SendDailyReports(ctx context.Context) error {
	crew, err := b.crewRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	now := b.now()
	summaries := make(map[string]string)
	for _, member := range crew {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if member.VesselID == nil {
			continue
		}
		text, ok := summaries[*member.VesselID]
		if !ok {
			vessel, err := b.vesselSvc.Get(ctx, *member.VesselID)
			if err != nil {
				b.log.Warn("load vessel for report", zap.String("vessel_id", *member.VesselID), zap.Error(err))
				continue
			}
			text, err = b.reminderSvc.VesselSummary(ctx, *vessel, now)
			if err != nil {
				b.log.Warn("build summary", zap.String("vessel_id", vessel.ID), zap.Error(err))
				continue
			}
			summaries[*member.VesselID] = text
		}
		if err := b.sendText(member.TelegramID, text); err != nil {
			b.log.Warn("send summary", zap.Int64("telegram_id", member.TelegramID), zap.Error(err))
		}
	}
	return nil
}

func (b *Bot) ensureCrew(ctx context.Context, from *tgbotapi.User) (*model.CrewMember, error) {
	return b.crewRepo.UpsertFromTelegram(ctx, from.ID, from.FirstName, from.LastName, from.UserName)
}

// withVessel runs fn for a crew member already attached to a vessel.
func (b *Bot) withVessel(ctx context.Context, msg *tgbotapi.Message, fn func(member *model.CrewMember) error) error {
	member, err := b.ensureCrew(ctx, msg.From)
	if err != nil {
		return err
	}
	if member.VesselID == nil {
		return b.sendText(msg.Chat.ID, "You are not on a vessel yet: /start &lt;vessel name&gt;")
	}
	return fn(member)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	var category model.TaskCategory
	switch strings.TrimSpace(msg.Text) {
	case menuLabelDaily:
		category = model.CategoryDaily
	case menuLabelWeekly:
		category = model.CategoryWeekly
	case menuLabelMonthly:
		category = model.CategoryMonthly
	case menuLabelYardJobs:
		return true, b.withVessel(ctx, msg, func(member *model.CrewMember) error {
			return b.sendYardJobHub(ctx, msg.Chat.ID, *member.VesselID)
		})
	case menuLabelReport:
		return true, b.handleReport(ctx, msg)
	case menuLabelHelp:
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
	return true, b.withVessel(ctx, msg, func(member *model.CrewMember) error {
		return b.sendTaskHub(ctx, msg.Chat.ID, *member.VesselID, category)
	})
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelDaily),
			tgbotapi.NewKeyboardButton(menuLabelWeekly),
			tgbotapi.NewKeyboardButton(menuLabelMonthly),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelYardJobs),
			tgbotapi.NewKeyboardButton(menuLabelReport),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func escape(s string) string {
	return html.EscapeString(s)
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func isIDPrefix(s string) bool {
	if len(s) < 4 || len(s) > 36 {
		return false
	}
	for _, r := range s {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f' || r == '-') {
			return false
		}
	}
	return true
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	clean = normalizeTitle(clean)
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func normalizeTitle(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
