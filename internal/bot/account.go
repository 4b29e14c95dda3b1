package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xaenox/vfied-bot/internal/models"
	"github.com/xaenox/vfied-bot/internal/remote"
	"go.uber.org/zap"
)

const (
	registerUsage = "Usage: /register <email> <password> <name>"
	loginUsage    = "Usage: /login <email> <password>"
)

// formError turns a form failure into text for the user
func formError(err error) string {
	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) {
		fields := make([]string, 0, len(invalid))
		for _, fe := range invalid {
			fields = append(fields, strings.ToLower(fe.Field()))
		}
		return "Please check: " + strings.Join(fields, ", ")
	}
	if errors.Is(err, remote.ErrRejected) {
		return strings.TrimPrefix(err.Error(), remote.ErrRejected.Error()+": ")
	}
	return "The service is unavailable, please try again later."
}

func (b *Bot) handleRegister(ctx context.Context, message *tgbotapi.Message) {
	args := strings.Fields(message.CommandArguments())
	if len(args) < 3 {
		b.sendErrorMessage(message.Chat.ID, registerUsage)
		return
	}

	user, err := b.backend.Register(ctx, remote.Registration{
		Email:    args[0],
		Password: args[1],
		Name:     strings.Join(args[2:], " "),
	})
	if err != nil {
		b.logger.Warn("Registration failed",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendErrorMessage(message.Chat.ID, formError(err)+"\n"+registerUsage)
		return
	}

	b.completeSignIn(ctx, message, user, "Welcome aboard")
}

func (b *Bot) handleLogin(ctx context.Context, message *tgbotapi.Message) {
	args := strings.Fields(message.CommandArguments())
	if len(args) != 2 {
		b.sendErrorMessage(message.Chat.ID, loginUsage)
		return
	}

	user, err := b.backend.Login(ctx, remote.Credentials{Email: args[0], Password: args[1]})
	if err != nil {
		b.logger.Warn("Login failed",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendErrorMessage(message.Chat.ID, formError(err)+"\n"+loginUsage)
		return
	}

	b.completeSignIn(ctx, message, user, "Welcome back")
}

// completeSignIn caches the profile and removes the message holding the password
func (b *Bot) completeSignIn(ctx context.Context, message *tgbotapi.Message, user models.User, greeting string) {
	if err := b.prefs.For(message.Chat.ID).SaveUser(ctx, user); err != nil {
		b.logger.Error("Failed to cache user",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendErrorMessage(message.Chat.ID, "Signed in, but I couldn't remember it. Please try again.")
		return
	}

	b.deleteMessage(message.Chat.ID, message.MessageID)

	name := user.Name
	if name == "" {
		name = user.Email
	}
	b.sendMessage(message.Chat.ID, fmt.Sprintf("👋 %s, %s!", greeting, name))
}

func (b *Bot) handleLogout(ctx context.Context, message *tgbotapi.Message) {
	if err := b.prefs.For(message.Chat.ID).ClearUser(ctx); err != nil {
		b.logger.Error("Failed to clear user",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't log you out. Please try again.")
		return
	}
	b.sendMessage(message.Chat.ID, "You're logged out.")
}

func (b *Bot) handleMe(ctx context.Context, message *tgbotapi.Message) {
	user, err := b.prefs.For(message.Chat.ID).User(ctx)
	if err != nil {
		b.logger.Error("Failed to read user",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't load your account.")
		return
	}
	if user == nil {
		b.sendMessage(message.Chat.ID, "You're not logged in. Use /login or /register.")
		return
	}
	b.sendMessage(message.Chat.ID, fmt.Sprintf("👤 %s\n✉️ %s", user.Name, user.Email))
}
