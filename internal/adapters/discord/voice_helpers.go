package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/jose-valero/activity-leaderboard-bot/internal/app/service"
)

const eventTimeout = 5 * time.Second

func (r *Router) isBotUser(guildID, userID string, m *discordgo.Member) bool {
	if m != nil && m.User != nil {
		return m.User.Bot
	}
	if sm, err := r.s.State.Member(guildID, userID); err == nil && sm.User != nil {
		return sm.User.Bot
	}
	return false
}

// voiceChange traduce el evento de discordgo (BeforeUpdate es el estado anterior cacheado).
func voiceChange(vs *discordgo.VoiceStateUpdate, bot bool) service.VoiceChange {
	ev := service.VoiceChange{GuildID: vs.GuildID, UserID: vs.UserID, After: vs.ChannelID, Bot: bot}
	if vs.BeforeUpdate != nil {
		ev.Before = vs.BeforeUpdate.ChannelID
	}
	return ev
}

func (r *Router) onVoiceStateUpdate(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	if vs.GuildID == "" || vs.VoiceState == nil {
		return
	}
	ev := voiceChange(vs, r.isBotUser(vs.GuildID, vs.UserID, vs.Member))

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()
	minutes, err := r.tracker.VoiceStateChange(ctx, ev)
	if err != nil {
		log.Warn().Err(err).Str("guild", ev.GuildID).Str("user", ev.UserID).Msg("voice state update")
		return
	}
	if minutes > 0 {
		log.Debug().Str("guild", ev.GuildID).Str("user", ev.UserID).Int64("minutes", minutes).Msg("voice credited")
	}
}

// onGuildCreate llega al conectar (y al reconectar): alinea las sesiones guardadas con quién está en voz.
func (r *Router) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if g.Guild == nil || g.Unavailable {
		return
	}
	present := map[string]string{}
	for _, vs := range g.VoiceStates {
		if vs.ChannelID == "" || r.isBotUser(g.ID, vs.UserID, vs.Member) {
			continue
		}
		present[vs.UserID] = vs.ChannelID
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	started, dropped, err := r.tracker.SyncGuildVoice(ctx, g.ID, present)
	if err != nil {
		log.Warn().Err(err).Str("guild", g.ID).Msg("sync voice sessions")
		return
	}
	log.Info().Str("guild", g.ID).Int("started", started).Int("dropped", dropped).Msg("voice sessions synced")
}
