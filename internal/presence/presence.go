// Package presence pushes events to the live connections of a player.
package presence

import "github.com/NetroScript/tf2pickup-server/internal/model"

// Handle is one live connection of a player
type Handle interface {
	// Push queues an event for the connection without blocking.
	// It returns ErrBufferFull when the event had to be dropped.
	Push(event model.EventType, payload any) error
}

// Multicast resolves a player's live connections
type Multicast interface {
	HandlesFor(playerID model.PlayerID) []Handle
}

// Nop has no connections. It is used when live push is disabled.
type Nop struct{}

// HandlesFor always returns nil
func (Nop) HandlesFor(model.PlayerID) []Handle { return nil }

// Ensure the implementations satisfy Multicast
var (
	_ Multicast = Nop{}
	_ Multicast = (*HubManager)(nil)
	_ Handle    = (*Client)(nil)
)
