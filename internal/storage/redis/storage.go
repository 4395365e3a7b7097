package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/NetroScript/tf2pickup-server/internal/model"
	"github.com/NetroScript/tf2pickup-server/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Records are JSON blobs. SteamIDs map to a player through a plain string
// key; ETF2L and Twitch ids go through per-account ZSETs, since more than
// one player may carry the same account.
type Storage struct {
	client *redis.Client
	keys   keys
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultConfig().KeyPrefix
	}
	return &Storage{
		client: client,
		keys:   keys{prefix: prefix},
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// Claim the SteamID first so concurrent registrations cannot both succeed
	claimed, err := s.client.SetNX(ctx, s.keys.steamIndex(player.SteamID), string(player.ID), 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrPlayerAlreadyRegistered
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.keys.player(player.ID), data, 0)
	pipe.ZAdd(ctx, s.keys.players(), joinScore(player))
	if player.ETF2LProfileID != nil {
		pipe.ZAdd(ctx, s.keys.etf2lIndex(*player.ETF2LProfileID), joinScore(player))
	}
	if player.TwitchTVUser != nil {
		pipe.ZAdd(ctx, s.keys.twitchIndex(player.TwitchTVUser.UserID), joinScore(player))
		pipe.ZAdd(ctx, s.keys.streamers(), joinScore(player))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		// Release the claim so the player can retry
		_ = s.client.Del(ctx, s.keys.steamIndex(player.SteamID)).Err()
		return err
	}
	return nil
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	old, err := s.GetPlayer(ctx, player.ID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.keys.player(player.ID), data, 0)

	// ZREM only drops this player's entry, other holders of the account keep theirs
	if old.ETF2LProfileID != nil && (player.ETF2LProfileID == nil || *old.ETF2LProfileID != *player.ETF2LProfileID) {
		pipe.ZRem(ctx, s.keys.etf2lIndex(*old.ETF2LProfileID), string(player.ID))
	}
	if player.ETF2LProfileID != nil {
		pipe.ZAdd(ctx, s.keys.etf2lIndex(*player.ETF2LProfileID), joinScore(player))
	}

	if old.TwitchTVUser != nil && (player.TwitchTVUser == nil || old.TwitchTVUser.UserID != player.TwitchTVUser.UserID) {
		pipe.ZRem(ctx, s.keys.twitchIndex(old.TwitchTVUser.UserID), string(player.ID))
	}
	if player.TwitchTVUser != nil {
		pipe.ZAdd(ctx, s.keys.twitchIndex(player.TwitchTVUser.UserID), joinScore(player))
		pipe.ZAdd(ctx, s.keys.streamers(), joinScore(player))
	} else {
		pipe.ZRem(ctx, s.keys.streamers(), string(player.ID))
	}

	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, s.keys.player(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) GetPlayerBySteamID(ctx context.Context, steamID string) (*model.Player, error) {
	return s.getPlayerByIndex(ctx, s.keys.steamIndex(steamID))
}

func (s *Storage) GetPlayerByETF2LProfileID(ctx context.Context, profileID int) (*model.Player, error) {
	return s.firstPlayerInSet(ctx, s.keys.etf2lIndex(profileID))
}

func (s *Storage) GetPlayerByTwitchUserID(ctx context.Context, twitchUserID string) (*model.Player, error) {
	return s.firstPlayerInSet(ctx, s.keys.twitchIndex(twitchUserID))
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	return s.listPlayersInSet(ctx, s.keys.players())
}

func (s *Storage) ListPlayersWithTwitchAccount(ctx context.Context) ([]*model.Player, error) {
	return s.listPlayersInSet(ctx, s.keys.streamers())
}

func (s *Storage) getPlayerByIndex(ctx context.Context, indexKey string) (*model.Player, error) {
	playerID, err := s.client.Get(ctx, indexKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return s.GetPlayer(ctx, model.PlayerID(playerID))
}

// firstPlayerInSet returns the earliest joined player in a join-time ZSET
func (s *Storage) firstPlayerInSet(ctx context.Context, setKey string) (*model.Player, error) {
	ids, err := s.client.ZRange(ctx, setKey, 0, 0).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, model.ErrPlayerNotFound
	}
	return s.GetPlayer(ctx, model.PlayerID(ids[0]))
}

// listPlayersInSet loads every player referenced by a join-time ZSET, in order
func (s *Storage) listPlayersInSet(ctx context.Context, setKey string) ([]*model.Player, error) {
	ids, err := s.client.ZRange(ctx, setKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Player{}, nil
	}

	playerKeys := make([]string, len(ids))
	for i, id := range ids {
		playerKeys[i] = s.keys.player(model.PlayerID(id))
	}

	values, err := s.client.MGet(ctx, playerKeys...).Result()
	if err != nil {
		return nil, err
	}

	players := make([]*model.Player, 0, len(values))
	for i, val := range values {
		str, ok := val.(string)
		if !ok {
			continue
		}
		var player model.Player
		if err := json.Unmarshal([]byte(str), &player); err != nil {
			return nil, fmt.Errorf("decode player %s: %w", ids[i], err)
		}
		players = append(players, &player)
	}
	return players, nil
}

func joinScore(p *model.Player) redis.Z {
	return redis.Z{Score: float64(p.JoinedAt.UnixMilli()), Member: string(p.ID)}
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	old, err := s.GetGame(ctx, game.ID)
	if err != nil && !errors.Is(err, model.ErrGameNotFound) {
		return err
	}

	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	if old != nil {
		for _, slot := range old.Slots {
			pipe.SRem(ctx, s.keys.playerGames(slot.PlayerID), string(old.ID))
		}
	}
	pipe.Set(ctx, s.keys.game(game.ID), data, 0)
	for _, slot := range game.Slots {
		pipe.SAdd(ctx, s.keys.playerGames(slot.PlayerID), string(game.ID))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	data, err := s.client.Get(ctx, s.keys.game(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) GetGamesForPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Game, error) {
	gameIDs, err := s.client.SMembers(ctx, s.keys.playerGames(playerID)).Result()
	if err != nil {
		return nil, err
	}
	if len(gameIDs) == 0 {
		return []*model.Game{}, nil
	}

	gameKeys := make([]string, len(gameIDs))
	for i, id := range gameIDs {
		gameKeys[i] = s.keys.game(model.GameID(id))
	}

	values, err := s.client.MGet(ctx, gameKeys...).Result()
	if err != nil {
		return nil, err
	}

	games := make([]*model.Game, 0, len(values))
	for i, val := range values {
		str, ok := val.(string)
		if !ok {
			continue
		}
		var game model.Game
		if err := json.Unmarshal([]byte(str), &game); err != nil {
			return nil, fmt.Errorf("decode game %s: %w", gameIDs[i], err)
		}
		games = append(games, &game)
	}

	sort.Slice(games, func(i, j int) bool { return games[i].Number < games[j].Number })
	return games, nil
}
