package response

import (
	"time"

	"github.com/NetroScript/tf2pickup-server/internal/model"
)

// TwitchTVUser represents a linked Twitch account in API responses
type TwitchTVUser struct {
	UserID          string `json:"user_id"`
	Login           string `json:"login"`
	DisplayName     string `json:"display_name"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}

// Player represents a player in API responses
type Player struct {
	ID               string        `json:"id"`
	SteamID          string        `json:"steam_id"`
	Name             string        `json:"name"`
	AvatarURL        string        `json:"avatar_url,omitempty"`
	Role             string        `json:"role,omitempty"`
	ETF2LProfileID   *int          `json:"etf2l_profile_id,omitempty"`
	HasAcceptedRules bool          `json:"has_accepted_rules"`
	TwitchTVUser     *TwitchTVUser `json:"twitch_tv_user,omitempty"`
	JoinedAt         time.Time     `json:"joined_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	resp := Player{
		ID:               string(p.ID),
		SteamID:          p.SteamID,
		Name:             p.Name,
		AvatarURL:        p.AvatarURL,
		Role:             string(p.Role),
		ETF2LProfileID:   p.ETF2LProfileID,
		HasAcceptedRules: p.HasAcceptedRules,
		JoinedAt:         p.JoinedAt,
	}
	if p.TwitchTVUser != nil {
		resp.TwitchTVUser = &TwitchTVUser{
			UserID:          p.TwitchTVUser.UserID,
			Login:           p.TwitchTVUser.Login,
			DisplayName:     p.TwitchTVUser.DisplayName,
			ProfileImageURL: p.TwitchTVUser.ProfileImageURL,
		}
	}
	return resp
}

// PlayersFromModel converts a list of players
func PlayersFromModel(players []*model.Player) []Player {
	resp := make([]Player, len(players))
	for i, p := range players {
		resp[i] = PlayerFromModel(p)
	}
	return resp
}

// PlayerStats represents a player's statistics
type PlayerStats struct {
	Player        string         `json:"player"`
	GamesPlayed   int            `json:"games_played"`
	ClassesPlayed map[string]int `json:"classes_played"`
}

// PlayerStatsFromModel converts model.PlayerStats
func PlayerStatsFromModel(s *model.PlayerStats) PlayerStats {
	classes := make(map[string]int, len(s.ClassesPlayed))
	for class, count := range s.ClassesPlayed {
		classes[string(class)] = count
	}
	return PlayerStats{
		Player:        string(s.Player),
		GamesPlayed:   s.GamesPlayed,
		ClassesPlayed: classes,
	}
}

// GameSlot represents one slot of a game
type GameSlot struct {
	PlayerID  string `json:"player_id"`
	GameClass string `json:"game_class"`
}

// Game represents a recorded game
type Game struct {
	ID         string     `json:"id"`
	Number     int        `json:"number"`
	State      string     `json:"state"`
	Slots      []GameSlot `json:"slots"`
	LaunchedAt time.Time  `json:"launched_at"`
}

// GameFromModel converts model.Game
func GameFromModel(g *model.Game) Game {
	slots := make([]GameSlot, len(g.Slots))
	for i, s := range g.Slots {
		slots[i] = GameSlot{PlayerID: string(s.PlayerID), GameClass: string(s.GameClass)}
	}
	return Game{
		ID:         string(g.ID),
		Number:     g.Number,
		State:      string(g.State),
		Slots:      slots,
		LaunchedAt: g.LaunchedAt,
	}
}

// Health is the response of the health endpoint
type Health struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}
