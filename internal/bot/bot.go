package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xaenox/vfied-bot/internal/debounce"
	"github.com/xaenox/vfied-bot/internal/decision"
	"github.com/xaenox/vfied-bot/internal/models"
	"github.com/xaenox/vfied-bot/internal/prefs"
	"github.com/xaenox/vfied-bot/internal/remote"
	"go.uber.org/zap"
)

// Messenger is the part of the Telegram API the bot talks through.
// *tgbotapi.BotAPI satisfies it.
type Messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Decider interface {
	FetchDecisions(ctx context.Context, req models.DecisionRequest) (decision.Result, error)
}

// Backend is the rest of the VFIED API: venue search, auth and events
type Backend interface {
	SearchVenues(ctx context.Context, query string) ([]models.Venue, error)
	Login(ctx context.Context, creds remote.Credentials) (models.User, error)
	Register(ctx context.Context, reg remote.Registration) (models.User, error)
	SubmitEvent(ctx context.Context, sub models.EventSubmission, image *remote.Attachment) (remote.SubmissionResult, error)
}

type Deps struct {
	Prefs   *prefs.Manager
	Decider Decider
	Backend Backend
	Catalog *remote.Catalog
}

type Options struct {
	Location         models.Location
	TimeSavedMinutes int
	InsightTTL       time.Duration
	SearchDebounce   time.Duration
	TimeZone         *time.Location
}

const (
	defaultInsightTTL = 5 * time.Second
	searchTimeout     = 10 * time.Second
)

type Bot struct {
	api     Messenger
	poller  *tgbotapi.BotAPI
	prefs   *prefs.Manager
	decider Decider
	backend Backend
	catalog *remote.Catalog
	opts    Options
	logger  *zap.Logger

	inflight *inflight
	search   *debounce.Debouncer
	files    *http.Client

	now       func() time.Time
	afterFunc func(time.Duration, func())
}

func New(token string, deps Deps, opts Options, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := NewWithAPI(api, deps, opts, logger)
	b.poller = api
	logger.Info("Authorized on Telegram", zap.String("username", api.Self.UserName))
	return b, nil
}

// NewWithAPI builds a bot around an existing Messenger. Start needs a bot
// created with New.
func NewWithAPI(api Messenger, deps Deps, opts Options, logger *zap.Logger) *Bot {
	if opts.InsightTTL <= 0 {
		opts.InsightTTL = defaultInsightTTL
	}
	if opts.TimeZone == nil {
		opts.TimeZone = time.Local
	}
	if deps.Catalog == nil {
		deps.Catalog = &remote.Catalog{TravelItems: map[string][]models.Item{}}
	}

	return &Bot{
		api:       api,
		prefs:     deps.Prefs,
		decider:   deps.Decider,
		backend:   deps.Backend,
		catalog:   deps.Catalog,
		opts:      opts,
		logger:    logger,
		inflight:  newInflight(),
		search:    debounce.New(opts.SearchDebounce),
		files:     &http.Client{Timeout: 30 * time.Second},
		now:       time.Now,
		afterFunc: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// Start polls for updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	if b.poller == nil {
		return errors.New("bot has no update source")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.poller.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.poller.StopReceivingUpdates()
			b.search.Stop()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.InlineQuery != nil:
		b.handleInlineQuery(update.InlineQuery)
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.Chat == nil {
		return
	}

	// Handle commands
	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	// Photos can carry an event submission in their caption
	if len(message.Photo) > 0 {
		if args, ok := captionCommand(message.Caption, "submitevent"); ok {
			b.handleSubmitEvent(ctx, message, args)
			return
		}
	}

	text := strings.TrimSpace(message.Text)
	if text == "" {
		return
	}
	b.handleMood(ctx, message.Chat.ID, text)
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "decide":
		b.handleDecideCommand(ctx, message)
	case "diet":
		b.handleDiet(ctx, message)
	case "stats":
		b.handleStats(ctx, message)
	case "local":
		b.handleLocal(message)
	case "travel":
		b.handleTravel(message)
	case "events":
		b.handleEvents(message)
	case "register":
		b.handleRegister(ctx, message)
	case "login":
		b.handleLogin(ctx, message)
	case "logout":
		b.handleLogout(ctx, message)
	case "me":
		b.handleMe(ctx, message)
	case "submitevent":
		b.handleSubmitEvent(ctx, message, message.CommandArguments())
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.Message == nil || query.Message.Chat == nil {
		b.answerCallback(query.ID, "")
		return
	}
	chatID := query.Message.Chat.ID

	switch {
	case query.Data == callbackDecide:
		b.handleDecideCallback(ctx, query)
	case query.Data == callbackBusy:
		b.answerCallback(query.ID, "Still finding your picks…")
	case query.Data == callbackMood:
		b.answerCallback(query.ID, "")
		b.promptMood(chatID)
	case strings.HasPrefix(query.Data, callbackDietPrefix):
		b.handleDietToggle(ctx, query, strings.TrimPrefix(query.Data, callbackDietPrefix))
	default:
		b.answerCallback(query.ID, "")
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	welcome := `Welcome to VFIED! 🍽
Can't decide what to eat? Tell me how you feel and I'll pick for you.

Just send me your mood or cravings, then tap Decide.
Use /help to see all available commands.`

	msg := tgbotapi.NewMessage(message.Chat.ID, welcome)
	msg.ReplyMarkup = decideKeyboard()
	b.send(msg, "welcome")
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `Available commands:
/start - Start the bot
/help - Show this help message
/decide [mood] - Pick something to eat
/diet - Toggle dietary filters
/stats - Show how many decisions I made for you
/local - Curated local spots
/travel [city] - Travel picks for a city
/events - Upcoming events
/submitevent - Submit an event (send a photo with the command as caption to attach it)
/register, /login, /logout, /me - Your account

Any other text is taken as your mood.
Type @` + "<bot> <text>" + ` in any chat to search venues.`

	b.sendMessage(message.Chat.ID, help)
}

func (b *Bot) handleStats(ctx context.Context, message *tgbotapi.Message) {
	stats, err := b.prefs.For(message.Chat.ID).Stats(ctx)
	if err != nil {
		b.logger.Error("Failed to get stats",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't load your stats. Please try again later.")
		return
	}

	b.sendMessage(message.Chat.ID, fmt.Sprintf("📊 Decisions made: %d\n⏱ Time saved: %d min",
		stats.TotalDecisions, stats.TimeSaved))
}

// escapeMarkdown escapes special characters for MarkdownV2
func escapeMarkdown(text string) string {
	specialChars := []string{"\\", "_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "-", "=", "|", "{", "}", ".", "!"}
	escaped := text
	for _, char := range specialChars {
		escaped = strings.ReplaceAll(escaped, char, "\\"+char)
	}
	return escaped
}

// captionCommand extracts the arguments of /name from a photo caption
func captionCommand(caption, name string) (string, bool) {
	caption = strings.TrimSpace(caption)
	if !strings.HasPrefix(caption, "/") {
		return "", false
	}
	head, rest, _ := strings.Cut(caption, " ")
	head, _, _ = strings.Cut(strings.TrimPrefix(head, "/"), "@")
	if head != name {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

func (b *Bot) send(c tgbotapi.Chattable, what string) (tgbotapi.Message, bool) {
	sent, err := b.api.Send(c)
	if err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.String("kind", what))
		return tgbotapi.Message{}, false
	}
	return sent, true
}

func (b *Bot) request(c tgbotapi.Chattable, what string) {
	if _, err := b.api.Request(c); err != nil {
		b.logger.Warn("Telegram request failed",
			zap.Error(err),
			zap.String("kind", what))
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "⚠️ "+text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) answerCallback(id, text string) {
	b.request(tgbotapi.NewCallback(id, text), "callback answer")
}

func (b *Bot) deleteMessage(chatID int64, messageID int) {
	b.request(tgbotapi.NewDeleteMessage(chatID, messageID), "delete message")
}
