// Package players owns the lifecycle of a player identity: eligibility-checked
// registration, Twitch linking, administrative edits, rule acceptance and
// statistics.
package players

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/NetroScript/tf2pickup-server/internal/dependencies/clock"
	"github.com/NetroScript/tf2pickup-server/internal/dependencies/idgen"
	"github.com/NetroScript/tf2pickup-server/internal/events"
	"github.com/NetroScript/tf2pickup-server/internal/identity"
	"github.com/NetroScript/tf2pickup-server/internal/model"
	"github.com/NetroScript/tf2pickup-server/internal/notify"
	"github.com/NetroScript/tf2pickup-server/internal/presence"
	"github.com/NetroScript/tf2pickup-server/internal/storage"
)

// RegistrationsTopic is the name of the player registered topic
const RegistrationsTopic = "player registered"

// StatsSource is the read-only view of game history the service needs
type StatsSource interface {
	CompletedGameCount(ctx context.Context, playerID model.PlayerID) (int, error)
	ClassParticipationCount(ctx context.Context, playerID model.PlayerID) (map[model.GameClass]int, error)
}

// Notifier schedules admin notifications without waiting for delivery
type Notifier interface {
	Notify(ctx context.Context, msg notify.Message)
}

// Config holds the registration policy
type Config struct {
	ClientURL           string
	SuperUser           string
	MinimumInGameHours  int
	RequireETF2LAccount bool
}

// Dependencies holds the collaborators of the service.
// Notifier, Presence and Registrations fall back to no-op values when nil.
type Dependencies struct {
	Store         storage.Storage
	Gateway       identity.Gateway
	Stats         StatsSource
	Notifier      Notifier
	Presence      presence.Multicast
	Registrations *events.Topic[model.PlayerID]
	Clock         clock.Clock
	IDGen         idgen.Generator
	Logger        *slog.Logger
}

// Service manages player identities
type Service struct {
	store         storage.Storage
	gateway       identity.Gateway
	stats         StatsSource
	notifier      Notifier
	presence      presence.Multicast
	registrations *events.Topic[model.PlayerID]
	clock         clock.Clock
	idgen         idgen.Generator
	cfg           Config
	logger        *slog.Logger
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, notify.Message) {}

// New creates a new players service
func New(deps Dependencies, cfg Config) *Service {
	logger := deps.Logger.With(slog.String("component", "players"))
	cfg.ClientURL = strings.TrimRight(cfg.ClientURL, "/")

	s := &Service{
		store:         deps.Store,
		gateway:       deps.Gateway,
		stats:         deps.Stats,
		notifier:      deps.Notifier,
		presence:      deps.Presence,
		registrations: deps.Registrations,
		clock:         deps.Clock,
		idgen:         deps.IDGen,
		cfg:           cfg,
		logger:        logger,
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	if s.presence == nil {
		s.presence = presence.Nop{}
	}
	if s.registrations == nil {
		s.registrations = events.NewTopic[model.PlayerID](RegistrationsTopic, deps.Logger)
	}
	return s
}

// RegisterPlayer creates a player from a Steam sign-in after checking the
// player's in-game hours and league standing.
func (s *Service) RegisterPlayer(ctx context.Context, profile model.SteamProfile) (*model.Player, error) {
	logger := s.logger.With(slog.String("steam_id", profile.ID))

	hours, err := s.gateway.HoursInGame(ctx, profile.ID)
	if err != nil {
		return nil, &model.ExternalLookupError{Service: "steam", Err: err}
	}
	if hours < s.cfg.MinimumInGameHours {
		logger.Info("registration rejected",
			slog.String("reason", model.ReasonInsufficientHours),
			slog.Int("hours", hours),
			slog.Int("required", s.cfg.MinimumInGameHours))
		return nil, &model.EligibilityError{Reason: model.ReasonInsufficientHours}
	}

	name := profile.DisplayName
	var etf2lProfileID *int

	etf2l, err := s.gateway.ETF2LProfile(ctx, profile.ID)
	switch {
	case err != nil:
		if s.cfg.RequireETF2LAccount {
			return nil, &model.ExternalLookupError{Service: "etf2l", Err: err}
		}
		logger.Info("etf2l profile unavailable, using steam name", slog.Any("error", err))
	case len(etf2l.ActiveBans(s.clock.Now())) > 0:
		logger.Info("registration rejected", slog.String("reason", model.ReasonBanned), slog.Int("etf2l_id", etf2l.ID))
		return nil, &model.EligibilityError{Reason: model.ReasonBanned}
	default:
		name = etf2l.Name
		id := etf2l.ID
		etf2lProfileID = &id
	}

	role := model.RoleNone
	if profile.ID == s.cfg.SuperUser {
		role = model.RoleSuperUser
	}

	player := &model.Player{
		ID:               model.PlayerID(s.idgen.NewID()),
		SteamID:          profile.ID,
		Name:             name,
		AvatarURL:        profile.AvatarURL(),
		Role:             role,
		ETF2LProfileID:   etf2lProfileID,
		HasAcceptedRules: false,
		JoinedAt:         s.clock.Now(),
	}
	if err := s.store.CreatePlayer(ctx, player); err != nil {
		return nil, err
	}

	logger.Info("player registered",
		slog.String("player_id", string(player.ID)),
		slog.String("name", player.Name))

	s.registrations.Publish(player.ID)
	s.notifier.Notify(ctx, notify.NewPlayer(player.Name, s.profileURL(player.ID)))

	return player, nil
}

// RegisterTwitchAccount links (or relinks) a Twitch account to a player
func (s *Service) RegisterTwitchAccount(ctx context.Context, playerID model.PlayerID, user model.TwitchTVUser) (*model.Player, error) {
	player, err := s.store.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	player.TwitchTVUser = &user
	if err := s.store.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	s.logger.Info("twitch account linked",
		slog.String("player_id", string(playerID)),
		slog.String("twitch_login", user.Login))

	s.pushProfileUpdate(playerID, model.ProfileUpdatePayload{TwitchTVUser: &user})
	return player, nil
}

// UpdatePlayer applies an administrative edit. It returns (nil, nil) when
// the target player does not exist.
func (s *Service) UpdatePlayer(ctx context.Context, playerID model.PlayerID, update model.PlayerUpdate, adminID model.PlayerID) (*model.Player, error) {
	if update.Role != nil && !update.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidRole, *update.Role)
	}

	admin, err := s.store.GetPlayer(ctx, adminID)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, model.ErrAdminNotFound
		}
		return nil, err
	}

	player, err := s.store.GetPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var renamedFrom *string
	if update.Name != nil && *update.Name != player.Name {
		oldName := player.Name
		renamedFrom = &oldName
		player.Name = *update.Name
	}
	if update.Role != nil {
		player.Role = *update.Role
	}

	if err := s.store.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	s.logger.Info("player updated",
		slog.String("player_id", string(playerID)),
		slog.String("admin_id", string(adminID)))

	if renamedFrom != nil {
		s.notifier.Notify(ctx, notify.PlayerNameChanged(*renamedFrom, player.Name, s.profileURL(player.ID), admin.Name))
	}

	name := player.Name
	s.pushProfileUpdate(playerID, model.ProfileUpdatePayload{Name: &name})
	return player, nil
}

// AcceptRules records that the player accepted the rules. Repeating it is a no-op.
func (s *Service) AcceptRules(ctx context.Context, playerID model.PlayerID) (*model.Player, error) {
	player, err := s.store.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	player.HasAcceptedRules = true
	if err := s.store.SavePlayer(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

// GetPlayerStats computes the player's statistics from recorded games
func (s *Service) GetPlayerStats(ctx context.Context, playerID model.PlayerID) (*model.PlayerStats, error) {
	stats := &model.PlayerStats{Player: playerID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := s.stats.CompletedGameCount(gctx, playerID)
		if err != nil {
			return err
		}
		stats.GamesPlayed = count
		return nil
	})
	g.Go(func() error {
		classes, err := s.stats.ClassParticipationCount(gctx, playerID)
		if err != nil {
			return err
		}
		stats.ClassesPlayed = classes
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

// Queries

// GetPlayer returns a player by id
func (s *Service) GetPlayer(ctx context.Context, playerID model.PlayerID) (*model.Player, error) {
	return s.store.GetPlayer(ctx, playerID)
}

// ListPlayers returns every player ordered by join time
func (s *Service) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	return s.store.ListPlayers(ctx)
}

func (s *Service) FindBySteamID(ctx context.Context, steamID string) (*model.Player, error) {
	return s.store.GetPlayerBySteamID(ctx, steamID)
}

func (s *Service) FindByETF2LProfileID(ctx context.Context, profileID int) (*model.Player, error) {
	return s.store.GetPlayerByETF2LProfileID(ctx, profileID)
}

func (s *Service) FindByTwitchUserID(ctx context.Context, twitchUserID string) (*model.Player, error) {
	return s.store.GetPlayerByTwitchUserID(ctx, twitchUserID)
}

// ListPlayersWithTwitchAccount returns the players that linked a Twitch account
func (s *Service) ListPlayersWithTwitchAccount(ctx context.Context) ([]*model.Player, error) {
	return s.store.ListPlayersWithTwitchAccount(ctx)
}

// SubscribeRegistrations streams the id of every player registered until ctx ends
func (s *Service) SubscribeRegistrations(ctx context.Context) <-chan model.PlayerID {
	return s.registrations.Subscribe(ctx)
}

func (s *Service) profileURL(id model.PlayerID) string {
	return s.cfg.ClientURL + "/player/" + string(id)
}

func (s *Service) pushProfileUpdate(playerID model.PlayerID, payload model.ProfileUpdatePayload) {
	for _, h := range s.presence.HandlesFor(playerID) {
		if err := h.Push(model.EventProfileUpdate, payload); err != nil {
			s.logger.Warn("profile update not delivered",
				slog.String("player_id", string(playerID)),
				slog.Any("error", err))
		}
	}
}
