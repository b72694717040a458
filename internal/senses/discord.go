// Package senses provides alternative ingress surfaces for the chat server.
package senses

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/swubot/swubot/internal/chat"
	"github.com/swubot/swubot/internal/logging"
)

// DiscordSense routes Discord messages into the chat server. Each channel
// maps to one conversation thread, so follow-ups like "card 3" resolve
// against that channel's last search.
type DiscordSense struct {
	session   *discordgo.Session
	channelID string
	botID     string
	responder chat.Responder
}

// DiscordConfig holds Discord connection settings.
type DiscordConfig struct {
	Token     string
	ChannelID string // optional: restrict to one channel
}

// NewDiscordSense creates a Discord sense over the given responder.
func NewDiscordSense(cfg DiscordConfig, responder chat.Responder) (*DiscordSense, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	sense := &DiscordSense{
		session:   session,
		channelID: cfg.ChannelID,
		responder: responder,
	}

	session.AddHandler(sense.handleMessage)
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent

	return sense, nil
}

// Start connects to Discord and begins listening.
func (d *DiscordSense) Start() error {
	if err := d.session.Open(); err != nil {
		return fmt.Errorf("open discord connection: %w", err)
	}

	d.botID = d.session.State.User.ID
	logging.Info("discord", "Connected as %s", d.session.State.User.Username)

	return nil
}

// Stop disconnects from Discord.
func (d *DiscordSense) Stop() error {
	return d.session.Close()
}

func (d *DiscordSense) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore messages from self
	if m.Author.ID == d.botID {
		return
	}

	// Only process messages from configured channel (if set)
	if d.channelID != "" && m.ChannelID != d.channelID {
		return
	}

	threadID := ThreadID(m.ChannelID)
	logging.Debug("discord", "thread %s: %s", threadID, logging.Truncate(m.Content, 50))

	events := d.responder.Respond(context.Background(), threadID, m.Content)
	reply := RenderEvents(events)
	if reply == "" {
		return
	}

	if _, err := s.ChannelMessageSend(m.ChannelID, reply); err != nil {
		logging.Info("discord", "send failed: %v", err)
	}
}

// ThreadID maps a Discord channel to its conversation thread id.
func ThreadID(channelID string) string {
	return "discord-" + channelID
}

// RenderEvents flattens a turn's events into one Discord message. Widgets
// degrade to a text rendering since Discord has no widget surface.
func RenderEvents(events []chat.Event) string {
	var parts []string
	for _, ev := range events {
		if ev.Type == chat.EventItemReplaced {
			continue
		}
		if ev.Item.Text != "" {
			parts = append(parts, ev.Item.Text)
		}
		if ev.Item.Widget != nil {
			if text := renderWidget(ev.Item.Widget); text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, "\n")
}
