package model

// EventType identifies a push message sent to connected clients
type EventType string

const (
	// EventProfileUpdate carries a partial player profile to the player's own clients
	EventProfileUpdate EventType = "profile update"
)

// ProfileUpdatePayload holds the changed fields of a player's profile.
// Only the populated fields are serialized.
type ProfileUpdatePayload struct {
	Name         *string       `json:"name,omitempty"`
	TwitchTVUser *TwitchTVUser `json:"twitchTvUser,omitempty"`
}
