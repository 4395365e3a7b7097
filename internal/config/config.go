package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

var steamID64Pattern = regexp.MustCompile(`^\d{17}$`)

// Config is the server configuration, read from the environment
type Config struct {
	// ClientURL is the public URL of the web client; profile links are built from it
	ClientURL string `env:"CLIENT_URL,required"`
	// SuperUser is the SteamID64 that is granted the super-user role on registration
	SuperUser string `env:"SUPER_USER,required"`

	SteamAPIKey string `env:"STEAM_API_KEY,required"`
	SteamAPIURL string `env:"STEAM_API_URL" envDefault:"https://api.steampowered.com"`
	ETF2LAPIURL string `env:"ETF2L_API_URL" envDefault:"https://api.etf2l.org"`

	MinimumInGameHours  int  `env:"MINIMUM_IN_GAME_HOURS" envDefault:"500"`
	RequireETF2LAccount bool `env:"REQUIRE_ETF2L_ACCOUNT" envDefault:"false"`
	LookupMaxAttempts   uint `env:"LOOKUP_MAX_ATTEMPTS" envDefault:"3"`

	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"tf2pickup.db"`

	DiscordBotToken     string        `env:"DISCORD_BOT_TOKEN"`
	DiscordAdminChannel string        `env:"DISCORD_ADMIN_NOTIFICATIONS_CHANNEL"`
	NotificationTimeout time.Duration `env:"NOTIFICATION_TIMEOUT" envDefault:"5s"`

	Port     int    `env:"PORT" envDefault:"3000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads the configuration from the process environment
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFrom reads the configuration from the given variables instead of the process environment
func LoadFrom(vars map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values the struct tags cannot express
func (c *Config) Validate() error {
	var errs []error

	if u, err := url.Parse(c.ClientURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("CLIENT_URL must be an absolute URL, got %q", c.ClientURL))
	}
	if !steamID64Pattern.MatchString(c.SuperUser) {
		errs = append(errs, fmt.Errorf("SUPER_USER must be a 17 digit SteamID64, got %q", c.SuperUser))
	}
	if c.MinimumInGameHours < 0 {
		errs = append(errs, errors.New("MINIMUM_IN_GAME_HOURS must not be negative"))
	}
	if c.LookupMaxAttempts == 0 {
		errs = append(errs, errors.New("LOOKUP_MAX_ATTEMPTS must be at least 1"))
	}
	if c.NotificationTimeout <= 0 {
		errs = append(errs, errors.New("NOTIFICATION_TIMEOUT must be positive"))
	}

	switch c.StorageType {
	case StorageTypeMemory, StorageTypeSQLite:
	case StorageTypeRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL required when STORAGE_TYPE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_TYPE must be one of memory, redis, sqlite, got %q", c.StorageType))
	}

	if (c.DiscordBotToken == "") != (c.DiscordAdminChannel == "") {
		errs = append(errs, errors.New("DISCORD_BOT_TOKEN and DISCORD_ADMIN_NOTIFICATIONS_CHANNEL must be set together"))
	}

	return errors.Join(errs...)
}

// DiscordEnabled reports whether admin notifications go to Discord
func (c *Config) DiscordEnabled() bool {
	return c.DiscordBotToken != "" && c.DiscordAdminChannel != ""
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
