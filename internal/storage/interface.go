package storage

import (
	"context"

	"github.com/NetroScript/tf2pickup-server/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Player operations

	// CreatePlayer inserts a new player. It fails with
	// model.ErrPlayerAlreadyRegistered when the SteamID is taken.
	CreatePlayer(ctx context.Context, player *model.Player) error
	// SavePlayer overwrites an existing player record
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	GetPlayerBySteamID(ctx context.Context, steamID string) (*model.Player, error)
	GetPlayerByETF2LProfileID(ctx context.Context, profileID int) (*model.Player, error)
	GetPlayerByTwitchUserID(ctx context.Context, twitchUserID string) (*model.Player, error)
	// ListPlayers returns all players ordered by join time
	ListPlayers(ctx context.Context) ([]*model.Player, error)
	// ListPlayersWithTwitchAccount returns players with a linked Twitch account
	ListPlayersWithTwitchAccount(ctx context.Context) ([]*model.Player, error)

	// Game operations
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	// GetGamesForPlayer returns every game the player had a slot in
	GetGamesForPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Game, error)
}
