package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/xaenox/vfied-bot/internal/models"
	"github.com/xaenox/vfied-bot/internal/remote"
)

type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Database DatabaseConfig `mapstructure:"database"`
	API      APIConfig      `mapstructure:"api"`
	Decision DecisionConfig `mapstructure:"decision"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

type DatabaseConfig struct {
	// Driver is one of memory, sqlite or postgres
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlite_path"`
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	DBName     string `mapstructure:"dbname"`
	SSLMode    string `mapstructure:"sslmode"`
}

type APIConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	DecisionPath string        `mapstructure:"decision_path"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Paths        remote.Paths  `mapstructure:"paths"`
}

type DecisionConfig struct {
	Location         models.Location `mapstructure:"location"`
	RecencyLimit     int             `mapstructure:"recency_limit"`
	TimeSavedMinutes int             `mapstructure:"time_saved_minutes"`
	InsightTTL       time.Duration   `mapstructure:"insight_ttl"`
	SearchDebounce   time.Duration   `mapstructure:"search_debounce"`
	Timezone         string          `mapstructure:"timezone"`
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		fmt.Sscanf(u.Port(), "%d", &port)
	}

	sslMode := u.Query().Get("sslmode")
	if sslMode == "" {
		sslMode = "disable"
	}

	return DatabaseConfig{
		Driver:   "postgres",
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   strings.TrimPrefix(u.Path, "/"),
		SSLMode:  sslMode,
	}, nil
}

func setDefaults(v *viper.Viper) {
	paths := remote.DefaultPaths()

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.sqlite_path", "vfied.db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("api.base_url", "http://localhost:3001")
	v.SetDefault("api.decision_path", "/api/decide")
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("api.paths.local_items", paths.LocalItems)
	v.SetDefault("api.paths.travel_items", paths.TravelItems)
	v.SetDefault("api.paths.events", paths.Events)
	v.SetDefault("api.paths.venue_search", paths.VenueSearch)
	v.SetDefault("api.paths.login", paths.Login)
	v.SetDefault("api.paths.register", paths.Register)
	v.SetDefault("api.paths.submit_event", paths.SubmitEvent)
	v.SetDefault("decision.location.city", "London")
	v.SetDefault("decision.location.country", "United Kingdom")
	v.SetDefault("decision.location.country_code", "GB")
	v.SetDefault("decision.recency_limit", 8)
	v.SetDefault("decision.time_saved_minutes", 3)
	v.SetDefault("decision.insight_ttl", 5*time.Second)
	v.SetDefault("decision.search_debounce", 300*time.Millisecond)
	v.SetDefault("decision.timezone", "Local")
}

// LoadConfig reads the YAML file at path. A missing file is fine when the
// environment supplies everything else.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Enable environment variable support
	v.AutomaticEnv()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		config.Database = dbConfig
	}

	if token := v.GetString("TELEGRAM_TOKEN"); token != "" {
		config.Telegram.Token = token
	}

	if apiURL := v.GetString("VFIED_API_URL"); apiURL != "" {
		config.API.BaseURL = apiURL
	}

	if config.Telegram.Token == "" {
		return nil, fmt.Errorf("telegram token is not set")
	}

	return &config, nil
}

// TimeLocation resolves the configured timezone used for meal periods
func (c DecisionConfig) TimeLocation() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
