package storage

import (
	"time"

	"github.com/pkg/errors"

	"github.com/jose-valero/activity-leaderboard-bot/internal/domain"
)

// VoiceSession es una sesión de voz abierta (join sin leave todavía).
type VoiceSession struct {
	GuildID   string
	UserID    string
	ChannelID string
	StartedAt time.Time
}

// LeaderboardConfig: canales de display, mensajes publicados y roles de premio por guild.
type LeaderboardConfig struct {
	GuildID string

	ChatChannelID string
	ChatMessageID string
	ChatRoleID    string

	VoiceChannelID string
	VoiceMessageID string
	VoiceRoleID    string

	Custom domain.Customization
}

// Board devuelve canal, mensaje y rol del leaderboard de ese tipo.
func (c LeaderboardConfig) Board(k domain.Kind) (channelID, messageID, roleID string) {
	if k == domain.KindVoice {
		return c.VoiceChannelID, c.VoiceMessageID, c.VoiceRoleID
	}
	return c.ChatChannelID, c.ChatMessageID, c.ChatRoleID
}

func counterTable(k domain.Kind) (string, error) {
	switch k {
	case domain.KindMessage:
		return "message_leaderboard", nil
	case domain.KindVoice:
		return "voice_leaderboard", nil
	}
	return "", errors.Errorf("unknown activity kind %q", k)
}

func windowColumn(w domain.Window) (string, error) {
	switch w {
	case domain.WindowDaily:
		return "daily_count", nil
	case domain.WindowWeekly:
		return "weekly_count", nil
	case domain.WindowMonthly:
		return "monthly_count", nil
	case domain.WindowAllTime:
		return "alltime_count", nil
	}
	return "", errors.Errorf("unknown window %q", w)
}

// boardPrefix: "chat" o "voice", prefijo de columnas en leaderboard_config.
func boardPrefix(k domain.Kind) (string, error) {
	switch k {
	case domain.KindMessage:
		return "chat", nil
	case domain.KindVoice:
		return "voice", nil
	}
	return "", errors.Errorf("unknown activity kind %q", k)
}
