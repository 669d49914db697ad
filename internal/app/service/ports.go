package service

import (
	"context"
	"time"

	"github.com/jose-valero/activity-leaderboard-bot/internal/domain"
	"github.com/jose-valero/activity-leaderboard-bot/internal/infra/storage"
)

// Lo implementan storage.CounterRepo y storage.MemCounterRepo
type CounterStore interface {
	Get(ctx context.Context, k domain.Kind, guildID, userID string) (domain.ActivityCounter, error)
	Increment(ctx context.Context, k domain.Kind, guildID, userID string, amount int64, today domain.Date) (domain.ActivityCounter, error)
	TopN(ctx context.Context, k domain.Kind, guildID string, w domain.Window, n int) ([]domain.ActivityCounter, error)
	TopStreaks(ctx context.Context, k domain.Kind, guildID string, n int) ([]domain.ActivityCounter, error)
	Counters(ctx context.Context, k domain.Kind, guildID string, userIDs []string) (map[string]domain.ActivityCounter, error)
}

// Lo implementan storage.VoiceSessionRepo y storage.MemVoiceSessionRepo
type VoiceSessionStore interface {
	Start(ctx context.Context, s storage.VoiceSession) (bool, error)
	End(ctx context.Context, guildID, userID string) (storage.VoiceSession, error)
	List(ctx context.Context, guildID string) ([]storage.VoiceSession, error)
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// Lo implementan storage.ConfigRepo y storage.MemConfigRepo
type ConfigStore interface {
	Get(ctx context.Context, guildID string) (storage.LeaderboardConfig, error)
	List(ctx context.Context) ([]storage.LeaderboardConfig, error)
	SetChannel(ctx context.Context, guildID string, k domain.Kind, channelID string) error
	SetMessageID(ctx context.Context, guildID string, k domain.Kind, messageID string) error
	SetRoles(ctx context.Context, guildID, chatRoleID, voiceRoleID string) error
	SaveCustomization(ctx context.Context, guildID string, c domain.Customization) error
}

// Lo implementa internal/adapters/discord.Guilds
type RoleAPI interface {
	RoleMembers(ctx context.Context, guildID, roleID string) ([]string, error)
	AddRole(ctx context.Context, guildID, userID, roleID string) error
	RemoveRole(ctx context.Context, guildID, userID, roleID string) error
}

// Publisher crea o edita el panel. Con messageID vacío (o si el mensaje ya no existe)
// publica uno nuevo; devuelve el id del mensaje final.
type Publisher interface {
	Publish(ctx context.Context, channelID, messageID string, p Panel) (string, error)
}

type NameResolver interface {
	DisplayName(ctx context.Context, guildID, userID string) string
}

// MemberWeigher: 1 si sigue en la guild, 0 si no.
type MemberWeigher interface {
	MemberWeight(ctx context.Context, guildID, userID string) float64
}
