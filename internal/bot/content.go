package bot

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/xaenox/vfied-bot/internal/models"
	"go.uber.org/zap"
)

const maxListed = 10

func formatItems(title string, items []models.Item) string {
	var sb strings.Builder
	sb.WriteString("*" + escapeMarkdown(title) + "*\n\n")
	for i, item := range items {
		if i == maxListed {
			break
		}
		emoji := item.Emoji
		if emoji == "" {
			emoji = "📍"
		}
		sb.WriteString(fmt.Sprintf("%s *%s*\n", escapeMarkdown(emoji), escapeMarkdown(item.Name)))
		if item.Description != "" {
			sb.WriteString(escapeMarkdown(item.Description) + "\n")
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (b *Bot) sendMarkdown(chatID int64, text, what string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	b.send(msg, what)
}

func (b *Bot) handleLocal(message *tgbotapi.Message) {
	if len(b.catalog.LocalItems) == 0 {
		b.sendMessage(message.Chat.ID, "No local picks available right now.")
		return
	}
	b.sendMarkdown(message.Chat.ID, formatItems("Local picks in "+b.opts.Location.City, b.catalog.LocalItems), "local items")
}

func (b *Bot) handleTravel(message *tgbotapi.Message) {
	city := strings.TrimSpace(message.CommandArguments())
	if city == "" {
		city = b.opts.Location.City
	}

	items := b.catalog.Travel(city)
	if len(items) == 0 {
		cities := b.catalog.Cities()
		if len(cities) == 0 {
			b.sendMessage(message.Chat.ID, "No travel picks available right now.")
			return
		}
		sort.Strings(cities)
		b.sendMessage(message.Chat.ID, fmt.Sprintf("I don't have picks for %s yet. Try one of: %s",
			city, strings.Join(cities, ", ")))
		return
	}

	b.sendMarkdown(message.Chat.ID, formatItems("Travel picks for "+city, items), "travel items")
}

func (b *Bot) handleEvents(message *tgbotapi.Message) {
	now := b.now()
	upcoming := make([]models.Event, 0, len(b.catalog.Events))
	for _, e := range b.catalog.Events {
		if e.StartsAt.IsZero() || e.StartsAt.After(now) {
			upcoming = append(upcoming, e)
		}
	}
	if len(upcoming) == 0 {
		b.sendMessage(message.Chat.ID, "No upcoming events right now. Add one with /submitevent!")
		return
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].StartsAt.Before(upcoming[j].StartsAt)
	})

	var sb strings.Builder
	sb.WriteString("*Upcoming events*\n\n")
	for i, e := range upcoming {
		if i == maxListed {
			break
		}
		sb.WriteString(fmt.Sprintf("🎉 *%s*\n", escapeMarkdown(e.Title)))
		if !e.StartsAt.IsZero() {
			when := e.StartsAt.In(b.opts.TimeZone).Format("Mon 2 Jan, 15:04")
			sb.WriteString(escapeMarkdown(when))
			if e.Location != "" {
				sb.WriteString(" · ")
			}
		}
		if e.Location != "" {
			sb.WriteString(escapeMarkdown(e.Location))
		}
		sb.WriteString("\n\n")
	}
	b.sendMarkdown(message.Chat.ID, strings.TrimRight(sb.String(), "\n"), "events")
}

// handleInlineQuery searches venues once the user stops typing
func (b *Bot) handleInlineQuery(query *tgbotapi.InlineQuery) {
	text := strings.TrimSpace(query.Query)
	if text == "" {
		b.answerInline(query.ID, nil)
		return
	}

	key := query.ID
	if query.From != nil {
		key = strconv.FormatInt(query.From.ID, 10)
	}

	b.search.Trigger(key, func() {
		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()

		venues, err := b.backend.SearchVenues(ctx, text)
		if err != nil {
			b.logger.Warn("Venue search failed",
				zap.Error(err),
				zap.String("query", text))
			b.answerInline(query.ID, nil)
			return
		}
		b.answerInline(query.ID, venues)
	})
}

func (b *Bot) answerInline(queryID string, venues []models.Venue) {
	results := make([]interface{}, 0, len(venues))
	for _, v := range venues {
		id := v.ID
		if id == "" || len(id) > 64 {
			id = uuid.New().String()
		}
		article := tgbotapi.NewInlineQueryResultArticle(id, v.Name, fmt.Sprintf("📍 %s\n%s", v.Name, v.Address))
		article.Description = v.Address
		results = append(results, article)
	}

	b.request(tgbotapi.InlineConfig{
		InlineQueryID: queryID,
		Results:       results,
		CacheTime:     30,
	}, "inline answer")
}
