package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Role is the administrative role of a player
type Role string

const (
	RoleNone      Role = ""
	RoleSuperUser Role = "super-user"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleNone, RoleSuperUser, RoleAdmin:
		return true
	}
	return false
}

// TwitchTVUser is a streaming account linked to a player
type TwitchTVUser struct {
	UserID          string `json:"userId"`
	Login           string `json:"login"`
	DisplayName     string `json:"displayName"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

// Player is a registered participant of the pickup service
type Player struct {
	ID               PlayerID      `json:"id"`
	SteamID          string        `json:"steamId"` // immutable, unique
	Name             string        `json:"name"`
	AvatarURL        string        `json:"avatarUrl,omitempty"`
	Role             Role          `json:"role,omitempty"`
	ETF2LProfileID   *int          `json:"etf2lProfileId,omitempty"`
	HasAcceptedRules bool          `json:"hasAcceptedRules"`
	TwitchTVUser     *TwitchTVUser `json:"twitchTvUser,omitempty"`
	JoinedAt         time.Time     `json:"joinedAt"`
}

// Photo is one avatar entry of a Steam profile
type Photo struct {
	Value string `json:"value"`
}

// SteamProfile is the identity asserted by Steam on sign-in
type SteamProfile struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	Photos      []Photo `json:"photos"`
}

// AvatarURL returns the first photo, or "" when the profile has none
func (p SteamProfile) AvatarURL() string {
	if len(p.Photos) == 0 {
		return ""
	}
	return p.Photos[0].Value
}

// PlayerUpdate is a partial administrative edit. Nil fields are left alone;
// a non-nil Role pointing at RoleNone clears the role.
type PlayerUpdate struct {
	Name *string
	Role *Role
}

// PlayerStats is a read-only projection over a player's game history
type PlayerStats struct {
	Player        PlayerID          `json:"player"`
	GamesPlayed   int               `json:"gamesPlayed"`
	ClassesPlayed map[GameClass]int `json:"classesPlayed"`
}
