package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xaenox/vfied-bot/internal/models"
	"go.uber.org/zap"
)

// formatCandidates renders candidates in the order given, ranked from #1
func formatCandidates(candidates []models.Candidate, fallback bool) string {
	var sb strings.Builder
	if fallback {
		sb.WriteString("🎲 *Quick picks*\n\n")
	} else {
		sb.WriteString("🎯 *Your picks*\n\n")
	}

	for i, c := range candidates {
		emoji := c.Emoji
		if emoji == "" {
			emoji = "🍽"
		}
		sb.WriteString(fmt.Sprintf("%s %s *%s*\n", escapeMarkdown(fmt.Sprintf("#%d", i+1)), escapeMarkdown(emoji), escapeMarkdown(c.Name)))
		if c.Explanation != "" {
			sb.WriteString(fmt.Sprintf("_%s_\n", escapeMarkdown(c.Explanation)))
		}
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

// plainCandidates is the unformatted rendering used when Telegram rejects
// the MarkdownV2 one
func plainCandidates(candidates []models.Candidate, fallback bool) string {
	var sb strings.Builder
	if fallback {
		sb.WriteString("🎲 Quick picks\n\n")
	} else {
		sb.WriteString("🎯 Your picks\n\n")
	}

	for i, c := range candidates {
		emoji := c.Emoji
		if emoji == "" {
			emoji = "🍽"
		}
		sb.WriteString(fmt.Sprintf("#%d %s %s\n", i+1, emoji, c.Name))
		if c.Explanation != "" {
			sb.WriteString(c.Explanation + "\n")
		}
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

// presentResults shows one cycle's candidates, records each of them as
// recently suggested and counts the cycle once
func (b *Bot) presentResults(ctx context.Context, chatID int64, candidates []models.Candidate, fallback bool) {
	msg := tgbotapi.NewMessage(chatID, formatCandidates(candidates, fallback))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.ReplyMarkup = resultKeyboard()
	if _, ok := b.send(msg, "results"); !ok {
		b.logger.Warn("Resending results as plain text",
			zap.Int64("chat_id", chatID))
		plain := tgbotapi.NewMessage(chatID, plainCandidates(candidates, fallback))
		plain.ReplyMarkup = resultKeyboard()
		if _, ok := b.send(plain, "plain results"); !ok {
			b.logger.Error("Failed to render results",
				zap.Int64("chat_id", chatID))
		}
	}

	store := b.prefs.For(chatID)
	for _, c := range candidates {
		if _, err := store.RecordPick(ctx, c.Name); err != nil {
			b.logger.Error("Failed to record pick",
				zap.Error(err),
				zap.Int64("chat_id", chatID),
				zap.String("name", c.Name))
		}
	}

	if _, err := store.BumpStats(ctx, b.opts.TimeSavedMinutes); err != nil {
		b.logger.Error("Failed to update stats",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}
