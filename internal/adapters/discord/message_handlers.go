package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// countsAsActivity: mensajes de usuarios reales dentro de una guild.
func countsAsActivity(m *discordgo.MessageCreate) bool {
	if m.GuildID == "" || m.Author == nil || m.Author.Bot || m.WebhookID != "" {
		return false
	}
	switch m.Type {
	case discordgo.MessageTypeDefault, discordgo.MessageTypeReply:
		return true
	}
	return false
}

func (r *Router) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if !countsAsActivity(m) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()
	if _, err := r.tracker.RecordMessage(ctx, m.GuildID, m.Author.ID); err != nil {
		log.Warn().Err(err).Str("guild", m.GuildID).Str("user", m.Author.ID).Msg("record message")
	}
}
