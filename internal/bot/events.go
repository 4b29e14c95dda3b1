package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xaenox/vfied-bot/internal/models"
	"github.com/xaenox/vfied-bot/internal/remote"
	"go.uber.org/zap"
)

const (
	eventTimeLayout = "2006-01-02 15:04"
	submitUsage     = "Usage: /submitevent Title | YYYY-MM-DD HH:MM | Location | Description\nSend it as a photo caption to attach a poster."
)

// parseEventForm reads "title | when | location | description"; the
// description is optional
func parseEventForm(args string, loc *time.Location) (models.EventSubmission, error) {
	parts := strings.Split(args, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 3 {
		return models.EventSubmission{}, errors.New("expected at least title, time and location")
	}

	startsAt, err := time.ParseInLocation(eventTimeLayout, parts[1], loc)
	if err != nil {
		return models.EventSubmission{}, fmt.Errorf("time must look like %s", eventTimeLayout)
	}

	sub := models.EventSubmission{
		Title:    parts[0],
		StartsAt: startsAt,
		Location: parts[2],
	}
	if len(parts) > 3 {
		sub.Description = strings.Join(parts[3:], " | ")
	}
	return sub, nil
}

func (b *Bot) handleSubmitEvent(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID

	sub, err := parseEventForm(args, b.opts.TimeZone)
	if err != nil {
		b.sendErrorMessage(chatID, err.Error()+"\n"+submitUsage)
		return
	}

	user, err := b.prefs.For(chatID).User(ctx)
	if err != nil {
		b.logger.Warn("Failed to read cached user",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
	if user != nil {
		sub.SubmitterEmail = user.Email
	}

	var image *remote.Attachment
	if len(message.Photo) > 0 {
		// the last size is the largest
		photo := message.Photo[len(message.Photo)-1]
		body, err := b.downloadFile(ctx, photo.FileID)
		if err != nil {
			b.logger.Error("Failed to download event photo",
				zap.Error(err),
				zap.Int64("chat_id", chatID))
			b.sendErrorMessage(chatID, "I couldn't fetch your photo. Please send it again.")
			return
		}
		defer body.Close()
		image = &remote.Attachment{Filename: photo.FileID + ".jpg", Data: body}
	}

	res, err := b.backend.SubmitEvent(ctx, sub, image)
	if err != nil {
		b.logger.Warn("Event submission failed",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
		b.sendErrorMessage(chatID, formError(err)+"\n"+submitUsage)
		return
	}

	reply := "📝 Thanks! Your event is waiting for review."
	if res.Status == models.StatusPublished {
		reply = "🎉 Your event is live!"
	}
	if res.Message != "" {
		reply += "\n" + res.Message
	}
	b.sendMessage(chatID, reply)
}

func (b *Bot) downloadFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
	fileURL, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}
	resp, err := b.files.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to download file: status %d", resp.StatusCode)
	}
	return resp.Body, nil
}
