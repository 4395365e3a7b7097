package request

import (
	"encoding/json"
	"errors"

	"github.com/NetroScript/tf2pickup-server/internal/model"
)

// RegisterPlayerRequest is the Steam identity a player signed in with
type RegisterPlayerRequest struct {
	SteamID     string   `json:"steam_id"`
	DisplayName string   `json:"display_name"`
	Photos      []string `json:"photos,omitempty"`
}

// ToSteamProfile converts the request to a model.SteamProfile
func (r RegisterPlayerRequest) ToSteamProfile() model.SteamProfile {
	photos := make([]model.Photo, len(r.Photos))
	for i, p := range r.Photos {
		photos[i] = model.Photo{Value: p}
	}
	return model.SteamProfile{ID: r.SteamID, DisplayName: r.DisplayName, Photos: photos}
}

// UpdatePlayerRequest is a partial admin edit. An explicit null role
// clears the role while an absent role leaves it unchanged.
type UpdatePlayerRequest struct {
	Name *string
	Role *model.Role
}

// UnmarshalJSON tells an absent role apart from a null one
func (r *UpdatePlayerRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if v, ok := raw["name"]; ok && string(v) != "null" {
		var name string
		if err := json.Unmarshal(v, &name); err != nil {
			return errors.New("name must be a string")
		}
		r.Name = &name
	}

	if v, ok := raw["role"]; ok {
		role := model.RoleNone
		if string(v) != "null" {
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return errors.New("role must be a string or null")
			}
			role = model.Role(s)
		}
		r.Role = &role
	}
	return nil
}

// ToModel converts the request to a model.PlayerUpdate
func (r UpdatePlayerRequest) ToModel() model.PlayerUpdate {
	return model.PlayerUpdate{Name: r.Name, Role: r.Role}
}

// LinkTwitchRequest is the Twitch account to link to a player
type LinkTwitchRequest struct {
	UserID          string `json:"user_id"`
	Login           string `json:"login"`
	DisplayName     string `json:"display_name"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}

// ToModel converts the request to a model.TwitchTVUser
func (r LinkTwitchRequest) ToModel() model.TwitchTVUser {
	return model.TwitchTVUser{
		UserID:          r.UserID,
		Login:           r.Login,
		DisplayName:     r.DisplayName,
		ProfileImageURL: r.ProfileImageURL,
	}
}

// GameSlotRequest is one player/class assignment of a recorded game
type GameSlotRequest struct {
	PlayerID  string `json:"player_id"`
	GameClass string `json:"game_class"`
}

// RecordGameRequest is the request body for recording a game
type RecordGameRequest struct {
	ID     string            `json:"id"`
	Number int               `json:"number"`
	State  string            `json:"state"`
	Slots  []GameSlotRequest `json:"slots"`
}
