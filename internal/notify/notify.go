// Package notify delivers one-way messages to the administrators' channel.
package notify

import (
	"context"
	"fmt"
)

// Kind identifies what happened
type Kind string

const (
	KindNewPlayer         Kind = "new_player"
	KindPlayerNameChanged Kind = "player_name_changed"
)

// Field is a labelled value shown with a message
type Field struct {
	Name  string
	Value string
}

// Message is a transport-neutral admin notification
type Message struct {
	Kind        Kind
	Title       string
	Description string
	URL         string
	Fields      []Field
}

//go:generate go tool mockgen -destination=mocks/mock_sink.go -package=mocks github.com/NetroScript/tf2pickup-server/internal/notify Sink

// Sink delivers messages to an admin channel
type Sink interface {
	Send(ctx context.Context, msg Message) error
}

// Nop discards every message. It is used when no channel is configured.
type Nop struct{}

// Send does nothing
func (Nop) Send(context.Context, Message) error { return nil }

// NewPlayer announces a freshly registered player
func NewPlayer(name, profileURL string) Message {
	return Message{
		Kind:        KindNewPlayer,
		Title:       "New player",
		Description: fmt.Sprintf("[%s](%s) joined", name, profileURL),
		URL:         profileURL,
		Fields: []Field{
			{Name: "Name", Value: name},
		},
	}
}

// PlayerNameChanged reports an administrative rename
func PlayerNameChanged(oldName, newName, profileURL, adminResponsible string) Message {
	return Message{
		Kind:        KindPlayerNameChanged,
		Title:       "Player name changed",
		Description: fmt.Sprintf("%s → [%s](%s)", oldName, newName, profileURL),
		URL:         profileURL,
		Fields: []Field{
			{Name: "Old name", Value: oldName},
			{Name: "New name", Value: newName},
			{Name: "Admin responsible", Value: adminResponsible},
		},
	}
}
