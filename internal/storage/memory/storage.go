package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/NetroScript/tf2pickup-server/internal/model"
	"github.com/NetroScript/tf2pickup-server/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Records are copied on the way in and out so callers never share state.
type Storage struct {
	mu sync.RWMutex

	players     map[model.PlayerID]*model.Player
	steamIndex  map[string]model.PlayerID
	games       map[model.GameID]*model.Game
	playerGames map[model.PlayerID]map[model.GameID]struct{}
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:     make(map[model.PlayerID]*model.Player),
		steamIndex:  make(map[string]model.PlayerID),
		games:       make(map[model.GameID]*model.Game),
		playerGames: make(map[model.PlayerID]map[model.GameID]struct{}),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.steamIndex[player.SteamID]; ok {
		return model.ErrPlayerAlreadyRegistered
	}
	s.putPlayer(copyPlayer(player))
	return nil
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.players[player.ID]
	if !ok {
		return model.ErrPlayerNotFound
	}
	if old.SteamID != player.SteamID {
		delete(s.steamIndex, old.SteamID)
	}
	s.putPlayer(copyPlayer(player))
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return copyPlayer(player), nil
}

func (s *Storage) GetPlayerBySteamID(ctx context.Context, steamID string) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.steamIndex[steamID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return copyPlayer(s.players[id]), nil
}

func (s *Storage) GetPlayerByETF2LProfileID(ctx context.Context, profileID int) (*model.Player, error) {
	return s.first(func(p *model.Player) bool {
		return p.ETF2LProfileID != nil && *p.ETF2LProfileID == profileID
	})
}

func (s *Storage) GetPlayerByTwitchUserID(ctx context.Context, twitchUserID string) (*model.Player, error) {
	return s.first(func(p *model.Player) bool {
		return p.TwitchTVUser != nil && p.TwitchTVUser.UserID == twitchUserID
	})
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	return s.filter(func(*model.Player) bool { return true }), nil
}

func (s *Storage) ListPlayersWithTwitchAccount(ctx context.Context) ([]*model.Player, error) {
	return s.filter(func(p *model.Player) bool { return p.TwitchTVUser != nil }), nil
}

// filter returns copies of the matching players ordered by join time
func (s *Storage) filter(match func(*model.Player) bool) []*model.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	players := []*model.Player{}
	for _, p := range s.players {
		if match(p) {
			players = append(players, copyPlayer(p))
		}
	}
	sortPlayers(players)
	return players
}

// first returns the earliest joined matching player. ETF2L and Twitch ids are
// not unique across players, so those lookups resolve ties by join order.
func (s *Storage) first(match func(*model.Player) bool) (*model.Player, error) {
	players := s.filter(match)
	if len(players) == 0 {
		return nil, model.ErrPlayerNotFound
	}
	return players[0], nil
}

// putPlayer must be called with the write lock held
func (s *Storage) putPlayer(p *model.Player) {
	s.players[p.ID] = p
	s.steamIndex[p.SteamID] = p.ID
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.games[game.ID]; ok {
		for _, slot := range old.Slots {
			delete(s.playerGames[slot.PlayerID], old.ID)
		}
	}
	g := copyGame(game)
	s.games[g.ID] = g
	for _, slot := range g.Slots {
		if s.playerGames[slot.PlayerID] == nil {
			s.playerGames[slot.PlayerID] = make(map[model.GameID]struct{})
		}
		s.playerGames[slot.PlayerID][g.ID] = struct{}{}
	}
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return copyGame(game), nil
}

func (s *Storage) GetGamesForPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	games := make([]*model.Game, 0, len(s.playerGames[playerID]))
	for id := range s.playerGames[playerID] {
		games = append(games, copyGame(s.games[id]))
	}
	sort.Slice(games, func(i, j int) bool { return games[i].Number < games[j].Number })
	return games, nil
}

func copyPlayer(p *model.Player) *model.Player {
	cp := *p
	if p.ETF2LProfileID != nil {
		id := *p.ETF2LProfileID
		cp.ETF2LProfileID = &id
	}
	if p.TwitchTVUser != nil {
		tu := *p.TwitchTVUser
		cp.TwitchTVUser = &tu
	}
	return &cp
}

func copyGame(g *model.Game) *model.Game {
	cp := *g
	cp.Slots = append([]model.GameSlot(nil), g.Slots...)
	return &cp
}

func sortPlayers(players []*model.Player) {
	sort.Slice(players, func(i, j int) bool {
		if players[i].JoinedAt.Equal(players[j].JoinedAt) {
			return players[i].ID < players[j].ID
		}
		return players[i].JoinedAt.Before(players[j].JoinedAt)
	})
}
