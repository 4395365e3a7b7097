package redis

import (
	"fmt"
	"strconv"

	"github.com/NetroScript/tf2pickup-server/internal/model"
)

// keys builds every Redis key under a single prefix
type keys struct {
	prefix string
}

// player returns the key holding a Player JSON blob
func (k keys) player(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", k.prefix, id)
}

// steamIndex maps a SteamID to a player id; written with SETNX to keep SteamIDs unique
func (k keys) steamIndex(steamID string) string {
	return fmt.Sprintf("%s:idx:steam:%s", k.prefix, steamID)
}

// etf2lIndex is a ZSET of player ids carrying the ETF2L profile, scored by join time
func (k keys) etf2lIndex(profileID int) string {
	return fmt.Sprintf("%s:idx:etf2l:%s", k.prefix, strconv.Itoa(profileID))
}

// twitchIndex is a ZSET of player ids linked to the Twitch account, scored by join time.
// Several players may link the same account.
func (k keys) twitchIndex(userID string) string {
	return fmt.Sprintf("%s:idx:twitch:%s", k.prefix, userID)
}

// players is a ZSET of all player ids scored by join time
func (k keys) players() string {
	return fmt.Sprintf("%s:idx:players", k.prefix)
}

// streamers is a ZSET of player ids with a linked Twitch account, scored by join time
func (k keys) streamers() string {
	return fmt.Sprintf("%s:idx:streamers", k.prefix)
}

func (k keys) game(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", k.prefix, id)
}

// playerGames is a SET of game ids the player had a slot in
func (k keys) playerGames(id model.PlayerID) string {
	return fmt.Sprintf("%s:idx:player_games:%s", k.prefix, id)
}
