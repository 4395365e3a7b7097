package factory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/NetroScript/tf2pickup-server/internal/config"
	"github.com/NetroScript/tf2pickup-server/internal/dependencies/clock"
	"github.com/NetroScript/tf2pickup-server/internal/dependencies/idgen"
	"github.com/NetroScript/tf2pickup-server/internal/events"
	"github.com/NetroScript/tf2pickup-server/internal/history"
	"github.com/NetroScript/tf2pickup-server/internal/identity"
	"github.com/NetroScript/tf2pickup-server/internal/identity/etf2l"
	"github.com/NetroScript/tf2pickup-server/internal/identity/steam"
	"github.com/NetroScript/tf2pickup-server/internal/model"
	"github.com/NetroScript/tf2pickup-server/internal/notify"
	"github.com/NetroScript/tf2pickup-server/internal/notify/discord"
	"github.com/NetroScript/tf2pickup-server/internal/presence"
	"github.com/NetroScript/tf2pickup-server/internal/services/players"
	"github.com/NetroScript/tf2pickup-server/internal/storage"
	"github.com/NetroScript/tf2pickup-server/internal/storage/memory"
	redisstorage "github.com/NetroScript/tf2pickup-server/internal/storage/redis"
	sqlitestorage "github.com/NetroScript/tf2pickup-server/internal/storage/sqlite"
)

const (
	lookupHTTPTimeout = 10 * time.Second
	hubJanitorPeriod  = time.Minute
)

// App contains all wired application components
type App struct {
	// Storage
	Storage     storage.Storage
	StorageType string

	// External dependencies
	Clock   clock.Clock
	IDGen   idgen.Generator
	Gateway identity.Gateway

	// Services
	Notifier       *notify.Dispatcher
	Registrations  *events.Topic[model.PlayerID]
	HubManager     *presence.HubManager
	History        *history.Aggregator
	PlayersService *players.Service

	logger  *slog.Logger
	closers []func() error
}

// dependencies are the swappable collaborators of an App
type dependencies struct {
	store       storage.Storage
	storageType string
	gateway     identity.Gateway
	sink        notify.Sink
	clock       clock.Clock
	idgen       idgen.Generator
}

// New creates a new application with all dependencies wired from cfg
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	store, closeStore, err := newStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	clk := clock.New()

	httpClient := &http.Client{Timeout: lookupHTTPTimeout}
	steamClient := steam.NewClient(steam.Config{
		BaseURL:    cfg.SteamAPIURL,
		APIKey:     cfg.SteamAPIKey,
		HTTPClient: httpClient,
	})
	etf2lClient := etf2l.NewClient(etf2l.Config{
		BaseURL:    cfg.ETF2LAPIURL,
		HTTPClient: httpClient,
	})
	retry := identity.DefaultRetryConfig()
	retry.MaxAttempts = cfg.LookupMaxAttempts
	gateway := identity.New(steamClient, etf2lClient, retry, logger)

	var sink notify.Sink = notify.Nop{}
	if cfg.DiscordEnabled() {
		discordSink, err := discord.New(cfg.DiscordBotToken, cfg.DiscordAdminChannel, clk)
		if err != nil {
			_ = closeStore()
			return nil, err
		}
		sink = discordSink
		logger.Info("admin notifications enabled", slog.String("channel", cfg.DiscordAdminChannel))
	}

	app := newWithDependencies(dependencies{
		store:       store,
		storageType: cfg.StorageType,
		gateway:     gateway,
		sink:        sink,
		clock:       clk,
		idgen:       idgen.New(),
	}, playersConfig(cfg), cfg.NotificationTimeout, logger)
	app.closers = append(app.closers, closeStore)
	return app, nil
}

func playersConfig(cfg *config.Config) players.Config {
	return players.Config{
		ClientURL:           cfg.ClientURL,
		SuperUser:           cfg.SuperUser,
		MinimumInGameHours:  cfg.MinimumInGameHours,
		RequireETF2LAccount: cfg.RequireETF2LAccount,
	}
}

// newStorage creates the backend selected by STORAGE_TYPE
func newStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, func() error, error) {
	switch cfg.StorageType {
	case "", config.StorageTypeMemory:
		return memory.New(), func() error { return nil }, nil
	case config.StorageTypeRedis:
		if cfg.RedisURL == "" {
			return nil, nil, errors.New("REDIS_URL required when STORAGE_TYPE is redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		store, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		return store, store.Close, nil
	case config.StorageTypeSQLite:
		store, err := sqlitestorage.Open(cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("invalid StorageType %q: must be memory, redis or sqlite", cfg.StorageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(deps dependencies, playersCfg players.Config, notificationTimeout time.Duration, logger *slog.Logger) *App {
	notifier := notify.NewDispatcher(deps.sink, notificationTimeout, logger)
	registrations := events.NewTopic[model.PlayerID](players.RegistrationsTopic, logger)
	hubManager := presence.NewHubManager(logger)
	aggregator := history.New(deps.store, deps.clock, logger)

	playersService := players.New(players.Dependencies{
		Store:         deps.store,
		Gateway:       deps.gateway,
		Stats:         aggregator,
		Notifier:      notifier,
		Presence:      hubManager,
		Registrations: registrations,
		Clock:         deps.clock,
		IDGen:         deps.idgen,
		Logger:        logger,
	}, playersCfg)

	return &App{
		Storage:        deps.store,
		StorageType:    deps.storageType,
		Clock:          deps.clock,
		IDGen:          deps.idgen,
		Gateway:        deps.gateway,
		Notifier:       notifier,
		Registrations:  registrations,
		HubManager:     hubManager,
		History:        aggregator,
		PlayersService: playersService,
		logger:         logger,
	}
}

// StartBackground runs the housekeeping goroutines until ctx is done
func (a *App) StartBackground(ctx context.Context) {
	go a.HubManager.RunJanitor(ctx, hubJanitorPeriod)

	registrations := a.PlayersService.SubscribeRegistrations(ctx)
	go func() {
		for id := range registrations {
			a.logger.Debug("registration event", slog.String("player_id", string(id)))
		}
	}()
}

// Close disconnects live clients, waits for pending notifications and
// releases the storage backend
func (a *App) Close() error {
	a.HubManager.Shutdown()
	a.Notifier.Wait()

	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
