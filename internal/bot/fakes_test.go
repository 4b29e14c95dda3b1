package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xaenox/vfied-bot/internal/decision"
	"github.com/xaenox/vfied-bot/internal/models"
	"github.com/xaenox/vfied-bot/internal/prefs"
	"github.com/xaenox/vfied-bot/internal/remote"
	"github.com/xaenox/vfied-bot/internal/storage"
	"go.uber.org/zap"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	nextID   int
	fileBase string
	// reject fails a Send the way Telegram does for a bad message
	reject func(c tgbotapi.Chattable) error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reject != nil {
		if err := f.reject(c); err != nil {
			return tgbotapi.Message{}, err
		}
	}
	f.sent = append(f.sent, c)
	f.nextID++
	return tgbotapi.Message{MessageID: 1000 + f.nextID}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetFileDirectURL(fileID string) (string, error) {
	return f.fileBase + "/" + fileID, nil
}

func (f *fakeAPI) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeAPI) texts() []string {
	var out []string
	for _, m := range f.messages() {
		out = append(out, m.Text)
	}
	return out
}

func (f *fakeAPI) deletes() []tgbotapi.DeleteMessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.DeleteMessageConfig
	for _, c := range f.requests {
		if d, ok := c.(tgbotapi.DeleteMessageConfig); ok {
			out = append(out, d)
		}
	}
	return out
}

func (f *fakeAPI) markupEdits() []tgbotapi.EditMessageReplyMarkupConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.EditMessageReplyMarkupConfig
	for _, c := range f.requests {
		if e, ok := c.(tgbotapi.EditMessageReplyMarkupConfig); ok {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeAPI) inlineAnswers() []tgbotapi.InlineConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.InlineConfig
	for _, c := range f.requests {
		if a, ok := c.(tgbotapi.InlineConfig); ok {
			out = append(out, a)
		}
	}
	return out
}

func (f *fakeAPI) callbackAnswers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.requests {
		if a, ok := c.(tgbotapi.CallbackConfig); ok {
			out = append(out, a.Text)
		}
	}
	return out
}

type fakeDecider struct {
	mu       sync.Mutex
	calls    int
	requests []models.DecisionRequest
	result   decision.Result
	err      error
	entered  chan struct{}
	release  chan struct{}
}

func (f *fakeDecider) FetchDecisions(ctx context.Context, req models.DecisionRequest) (decision.Result, error) {
	f.mu.Lock()
	f.calls++
	f.requests = append(f.requests, req)
	entered, release := f.entered, f.release
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if release != nil {
		<-release
	}
	return f.result, f.err
}

func (f *fakeDecider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeBackend struct {
	mu        sync.Mutex
	searches  []string
	venues    []models.Venue
	user      models.User
	authErr   error
	submitted []models.EventSubmission
	images    []string
	submitRes remote.SubmissionResult
	submitErr error
}

func (f *fakeBackend) SearchVenues(ctx context.Context, query string) ([]models.Venue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, query)
	return f.venues, nil
}

func (f *fakeBackend) searchCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searches...)
}

func (f *fakeBackend) Login(ctx context.Context, creds remote.Credentials) (models.User, error) {
	return f.user, f.authErr
}

func (f *fakeBackend) Register(ctx context.Context, reg remote.Registration) (models.User, error) {
	return f.user, f.authErr
}

func (f *fakeBackend) SubmitEvent(ctx context.Context, sub models.EventSubmission, image *remote.Attachment) (remote.SubmissionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, sub)
	if image != nil {
		var sb strings.Builder
		buf := make([]byte, 512)
		for {
			n, err := image.Data.Read(buf)
			sb.Write(buf[:n])
			if err != nil {
				break
			}
		}
		f.images = append(f.images, sb.String())
	}
	return f.submitRes, f.submitErr
}

type scheduled struct {
	after time.Duration
	fn    func()
}

type harness struct {
	bot       *Bot
	api       *fakeAPI
	decider   *fakeDecider
	backend   *fakeBackend
	prefs     *prefs.Manager
	mu        sync.Mutex
	scheduled []scheduled
}

var testNow = time.Date(2026, 10, 15, 13, 0, 0, 0, time.UTC)

func newHarness(t *testing.T, catalog *remote.Catalog) *harness {
	t.Helper()

	h := &harness{
		api:     &fakeAPI{},
		decider: &fakeDecider{},
		backend: &fakeBackend{},
		prefs:   prefs.NewManager(storage.NewMemoryStorage(), 8, zap.NewNop()),
	}
	h.bot = NewWithAPI(h.api, Deps{
		Prefs:   h.prefs,
		Decider: h.decider,
		Backend: h.backend,
		Catalog: catalog,
	}, Options{
		Location:         models.Location{City: "London", Country: "United Kingdom", CountryCode: "GB"},
		TimeSavedMinutes: 3,
		InsightTTL:       5 * time.Second,
		SearchDebounce:   30 * time.Millisecond,
		TimeZone:         time.UTC,
	}, zap.NewNop())
	h.bot.now = func() time.Time { return testNow }
	h.bot.afterFunc = func(d time.Duration, fn func()) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.scheduled = append(h.scheduled, scheduled{after: d, fn: fn})
	}
	t.Cleanup(h.bot.search.Stop)
	return h
}

func (h *harness) timers() []scheduled {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]scheduled(nil), h.scheduled...)
}

func commandUpdate(chatID int64, text string) tgbotapi.Update {
	command := strings.Fields(text)[0]
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 10,
		Chat:      &tgbotapi.Chat{ID: chatID},
		From:      &tgbotapi.User{ID: chatID},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command)}},
	}}
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 11,
		Chat:      &tgbotapi.Chat{ID: chatID},
		From:      &tgbotapi.User{ID: chatID},
		Text:      text,
	}}
}

func callbackUpdate(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-" + data,
		From:    &tgbotapi.User{ID: chatID},
		Data:    data,
		Message: &tgbotapi.Message{MessageID: 99, Chat: &tgbotapi.Chat{ID: chatID}},
	}}
}
