// Package discord posts admin notifications to a Discord channel as embeds.
package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/NetroScript/tf2pickup-server/internal/dependencies/clock"
	"github.com/NetroScript/tf2pickup-server/internal/notify"
)

// Embed colours per message kind
const (
	colorNewPlayer   = 0x2ecc71
	colorNameChanged = 0xf1c40f
	colorDefault     = 0x95a5a6
)

// embedSender is the part of *discordgo.Session the sink uses
type embedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Sink implements notify.Sink for a single Discord channel
type Sink struct {
	session   embedSender
	channelID string
	clock     clock.Clock
}

// Ensure Sink implements notify.Sink
var _ notify.Sink = (*Sink)(nil)

// New creates a sink authenticated with a bot token
func New(token, channelID string, clk clock.Clock) (*Sink, error) {
	if token == "" {
		return nil, errors.New("token cannot be empty")
	}
	if channelID == "" {
		return nil, errors.New("channel id cannot be empty")
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	return newWithSender(session, channelID, clk), nil
}

func newWithSender(sender embedSender, channelID string, clk clock.Clock) *Sink {
	return &Sink{session: sender, channelID: channelID, clock: clk}
}

// Send posts msg as an embed
func (s *Sink) Send(ctx context.Context, msg notify.Message) error {
	if _, err := s.session.ChannelMessageSendEmbed(s.channelID, s.toEmbed(msg), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord: send embed: %w", err)
	}
	return nil
}

func (s *Sink) toEmbed(msg notify.Message) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       msg.Title,
		Description: msg.Description,
		URL:         msg.URL,
		Color:       colorFor(msg.Kind),
		Timestamp:   s.clock.Now().Format(time.RFC3339),
	}
	for _, f := range msg.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: true,
		})
	}
	return embed
}

func colorFor(kind notify.Kind) int {
	switch kind {
	case notify.KindNewPlayer:
		return colorNewPlayer
	case notify.KindPlayerNameChanged:
		return colorNameChanged
	default:
		return colorDefault
	}
}
