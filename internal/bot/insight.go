package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xaenox/vfied-bot/internal/models"
	"go.uber.org/zap"
)

var vibeLabels = map[string]string{
	"happy":       "😊 Happy",
	"sad":         "🌧 Low",
	"stressed":    "😮‍💨 Stressed",
	"tired":       "😴 Tired",
	"hungover":    "🤕 Hungover",
	"celebratory": "🥳 Celebrating",
	"romantic":    "💕 Romantic",
	"adventurous": "🧭 Adventurous",
	"comfort":     "🫶 Comfort",
	"healthy":     "🥗 Healthy",
	"social":      "👯 Social",
	"quick":       "⚡ Quick",
	"budget":      "💸 Budget",
	"cold":        "🥶 Cold",
	"hot":         "🥵 Hot",
	"spicy":       "🌶 Spicy",
}

// vibeLabel returns the display label of a vibe tag. Unknown tags are shown as is.
func vibeLabel(tag string) string {
	if label, ok := vibeLabels[strings.ToLower(strings.TrimSpace(tag))]; ok {
		return label
	}
	return tag
}

func formatInsight(analysis *models.MoodAnalysis) string {
	var sb strings.Builder
	sb.WriteString("🔮 *Mood check*\n")
	if len(analysis.Vibes) > 0 {
		labels := make([]string, len(analysis.Vibes))
		for i, v := range analysis.Vibes {
			labels[i] = escapeMarkdown(vibeLabel(v))
		}
		sb.WriteString(strings.Join(labels, " · "))
		sb.WriteString("\n")
	}
	if analysis.Message != "" {
		sb.WriteString("_" + escapeMarkdown(analysis.Message) + "_")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// presentInsight shows the mood annotation and removes it after InsightTTL
func (b *Bot) presentInsight(chatID int64, analysis *models.MoodAnalysis) {
	if analysis == nil {
		return
	}

	msg := tgbotapi.NewMessage(chatID, formatInsight(analysis))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	sent, ok := b.send(msg, "mood insight")
	if !ok {
		return
	}

	messageID := sent.MessageID
	b.afterFunc(b.opts.InsightTTL, func() {
		b.deleteMessage(chatID, messageID)
		b.logger.Debug("Mood insight expired",
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID))
	})
}
