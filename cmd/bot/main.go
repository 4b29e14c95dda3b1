package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xaenox/vfied-bot/internal/bot"
	"github.com/xaenox/vfied-bot/internal/decision"
	"github.com/xaenox/vfied-bot/internal/prefs"
	"github.com/xaenox/vfied-bot/internal/remote"
	"github.com/xaenox/vfied-bot/internal/storage"
	"github.com/xaenox/vfied-bot/pkg/config"
	"go.uber.org/zap"
)

const catalogTimeout = 20 * time.Second

func openStorage(cfg config.DatabaseConfig, logger *zap.Logger) (storage.Storage, error) {
	switch cfg.Driver {
	case "memory":
		logger.Info("Using in-memory storage")
		return storage.NewMemoryStorage(), nil
	case "sqlite", "":
		logger.Info("Using SQLite storage", zap.String("path", cfg.SQLitePath))
		return storage.NewSQLiteStorage(cfg.SQLitePath)
	case "postgres":
		logger.Info("Using PostgreSQL storage", zap.String("host", cfg.Host))
		return storage.NewPostgresStorage(storage.DatabaseConfig{
			Host:     cfg.Host,
			Port:     cfg.Port,
			User:     cfg.User,
			Password: cfg.Password,
			DBName:   cfg.DBName,
			SSLMode:  cfg.SSLMode,
		})
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	configPath := "config.yaml"
	if p := os.Getenv("VFIED_CONFIG"); p != "" {
		configPath = p
	}

	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", configPath))
	}

	// Initialize storage
	store, err := openStorage(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer store.Close()

	httpClient := &http.Client{Timeout: cfg.API.Timeout}
	decider := decision.NewClient(cfg.API.BaseURL, cfg.API.DecisionPath, httpClient, logger)
	backend := remote.NewClient(cfg.API.BaseURL, cfg.API.Paths, httpClient, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalogCtx, cancel := context.WithTimeout(ctx, catalogTimeout)
	catalog := backend.LoadCatalog(catalogCtx)
	cancel()

	// Initialize bot
	b, err := bot.New(cfg.Telegram.Token, bot.Deps{
		Prefs:   prefs.NewManager(store, cfg.Decision.RecencyLimit, logger),
		Decider: decider,
		Backend: backend,
		Catalog: catalog,
	}, bot.Options{
		Location:         cfg.Decision.Location,
		TimeSavedMinutes: cfg.Decision.TimeSavedMinutes,
		InsightTTL:       cfg.Decision.InsightTTL,
		SearchDebounce:   cfg.Decision.SearchDebounce,
		TimeZone:         cfg.Decision.TimeLocation(),
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	logger.Info("Bot started", zap.String("api", cfg.API.BaseURL))
	if err := b.Start(ctx); err != nil {
		logger.Fatal("Bot error", zap.Error(err))
	}
	logger.Info("Bot stopped")
}
