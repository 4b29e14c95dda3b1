package bot

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xaenox/vfied-bot/internal/decision"
	"github.com/xaenox/vfied-bot/internal/models"
	"go.uber.org/zap"
)

// inflight tracks chats with a decision cycle in the Requesting state
type inflight struct {
	mu    sync.Mutex
	chats map[int64]struct{}
}

func newInflight() *inflight {
	return &inflight{chats: make(map[int64]struct{})}
}

// begin marks the chat busy. It returns false if a cycle already runs there.
func (f *inflight) begin(chatID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, busy := f.chats[chatID]; busy {
		return false
	}
	f.chats[chatID] = struct{}{}
	return true
}

func (f *inflight) end(chatID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.chats, chatID)
}

func (b *Bot) handleDecideCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID

	if !b.inflight.begin(chatID) {
		b.answerCallback(query.ID, "Still finding your picks…")
		return
	}
	defer b.inflight.end(chatID)

	b.answerCallback(query.ID, "Finding your picks…")

	// the pressed keyboard is disabled while the cycle runs
	b.request(tgbotapi.NewEditMessageReplyMarkup(chatID, query.Message.MessageID, busyKeyboard()), "disable keyboard")
	defer b.restoreKeyboard(query.Message)

	b.runDecisionCycle(ctx, chatID)
}

// restoreKeyboard puts back the markup a message had before it was disabled.
// A message without one loses the busy keyboard.
func (b *Bot) restoreKeyboard(message *tgbotapi.Message) {
	edit := tgbotapi.EditMessageReplyMarkupConfig{
		BaseEdit: tgbotapi.BaseEdit{
			ChatID:    message.Chat.ID,
			MessageID: message.MessageID,
		},
	}
	if message.ReplyMarkup != nil {
		markup := *message.ReplyMarkup
		edit.ReplyMarkup = &markup
	}
	b.request(edit, "restore keyboard")
}

func (b *Bot) handleDecideCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	if !b.inflight.begin(chatID) {
		b.sendMessage(chatID, "⏳ Still finding your picks…")
		return
	}
	defer b.inflight.end(chatID)

	if mood := message.CommandArguments(); mood != "" {
		if err := b.saveMood(ctx, chatID, mood); err != nil {
			b.logger.Error("Failed to save mood",
				zap.Error(err),
				zap.Int64("chat_id", chatID))
		}
	}

	b.runDecisionCycle(ctx, chatID)
}

// runDecisionCycle requests candidates and renders them. The caller holds
// the chat's inflight slot. Every path ends with a rendered result.
func (b *Bot) runDecisionCycle(ctx context.Context, chatID int64) {
	store := b.prefs.For(chatID)

	p, err := store.Preferences(ctx)
	if err != nil {
		b.logger.Error("Failed to read preferences",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
	recency, err := store.Recency(ctx)
	if err != nil {
		b.logger.Error("Failed to read recent suggestions",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}

	req := decision.Build(
		decision.UIState{Mood: p.Mood, Dietary: p.Dietary},
		recency,
		b.now().In(b.opts.TimeZone),
		b.opts.Location,
	)

	res, err := b.decider.FetchDecisions(ctx, req)
	if err != nil {
		b.logger.Warn("Serving fallback picks",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
		b.presentResults(ctx, chatID, decision.Fallback(), true)
		b.sendErrorMessage(chatID, "I couldn't reach the recommendation service, so here are some safe bets.")
		return
	}

	b.presentResults(ctx, chatID, res.Decisions, false)
	b.presentInsight(chatID, res.MoodAnalysis)
}

func (b *Bot) saveMood(ctx context.Context, chatID int64, mood string) error {
	_, err := b.prefs.For(chatID).UpdatePreferences(ctx, func(p models.Preferences) models.Preferences {
		p.Mood = mood
		return p
	})
	return err
}

// handleMood stores free text as the mood for the next decision
func (b *Bot) handleMood(ctx context.Context, chatID int64, text string) {
	if err := b.saveMood(ctx, chatID, text); err != nil {
		b.logger.Error("Failed to save mood",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
		b.sendErrorMessage(chatID, "Sorry, I couldn't save your mood. Please try again.")
		return
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Got it: _%s_\nTap Decide when you're ready\\.", escapeMarkdown(text)))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.ReplyMarkup = decideKeyboard()
	b.send(msg, "mood ack")
}

// promptMood asks for a new mood with the reply field focused
func (b *Bot) promptMood(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "How are you feeling? Tell me your mood or cravings.")
	msg.ReplyMarkup = tgbotapi.ForceReply{
		ForceReply:            true,
		InputFieldPlaceholder: "tired, rainy day, want something spicy…",
	}
	b.send(msg, "mood prompt")
}

func (b *Bot) handleDiet(ctx context.Context, message *tgbotapi.Message) {
	p, err := b.prefs.For(message.Chat.ID).Preferences(ctx)
	if err != nil {
		b.logger.Error("Failed to read preferences",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't load your filters. Please try again later.")
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, "Tap to toggle dietary filters:")
	msg.ReplyMarkup = dietKeyboard(p)
	b.send(msg, "diet keyboard")
}

func (b *Bot) handleDietToggle(ctx context.Context, query *tgbotapi.CallbackQuery, tag string) {
	chatID := query.Message.Chat.ID

	label, ok := dietLabel(tag)
	if !ok {
		b.answerCallback(query.ID, "Unknown filter")
		return
	}

	p, err := b.prefs.For(chatID).UpdatePreferences(ctx, func(p models.Preferences) models.Preferences {
		return p.ToggleDiet(tag)
	})
	if err != nil {
		b.logger.Error("Failed to toggle dietary filter",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
			zap.String("tag", tag))
		b.answerCallback(query.ID, "Couldn't save that, try again")
		return
	}

	state := "off"
	if p.HasDiet(tag) {
		state = "on"
	}
	b.answerCallback(query.ID, fmt.Sprintf("%s %s", label, state))
	b.request(tgbotapi.NewEditMessageReplyMarkup(chatID, query.Message.MessageID, dietKeyboard(p)), "diet keyboard")
}
