package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/activity-leaderboard-bot/internal/domain"
)

type configStore interface {
	Get(ctx context.Context, guildID string) (LeaderboardConfig, error)
	List(ctx context.Context) ([]LeaderboardConfig, error)
	SetChannel(ctx context.Context, guildID string, k domain.Kind, channelID string) error
	SetMessageID(ctx context.Context, guildID string, k domain.Kind, messageID string) error
	SetRoles(ctx context.Context, guildID, chatRoleID, voiceRoleID string) error
	SaveCustomization(ctx context.Context, guildID string, c domain.Customization) error
}

func eachConfigStore(t *testing.T, fn func(t *testing.T, s configStore)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, NewConfigRepo(newTestDB(t))) })
	t.Run("memory", func(t *testing.T) { fn(t, NewMemConfigRepo()) })
}

func TestConfig_ChannelsAndMessages(t *testing.T) {
	eachConfigStore(t, func(t *testing.T, s configStore) {
		ctx := context.Background()

		_, err := s.Get(ctx, "g1")
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, s.SetChannel(ctx, "g1", domain.KindMessage, "c1"))
		require.NoError(t, s.SetMessageID(ctx, "g1", domain.KindMessage, "m1"))
		require.NoError(t, s.SetChannel(ctx, "g1", domain.KindVoice, "c2"))

		cfg, err := s.Get(ctx, "g1")
		require.NoError(t, err)
		ch, msg, role := cfg.Board(domain.KindMessage)
		assert.Equal(t, "c1", ch)
		assert.Equal(t, "m1", msg)
		assert.Empty(t, role)
		ch, msg, _ = cfg.Board(domain.KindVoice)
		assert.Equal(t, "c2", ch)
		assert.Empty(t, msg)

		// cambiar de canal olvida el mensaje publicado
		require.NoError(t, s.SetChannel(ctx, "g1", domain.KindMessage, "c3"))
		cfg, err = s.Get(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, "c3", cfg.ChatChannelID)
		assert.Empty(t, cfg.ChatMessageID)
	})
}

func TestConfig_RolesAndList(t *testing.T) {
	eachConfigStore(t, func(t *testing.T, s configStore) {
		ctx := context.Background()
		require.NoError(t, s.SetRoles(ctx, "g2", "r-chat", ""))
		require.NoError(t, s.SetChannel(ctx, "g1", domain.KindVoice, "c1"))
		require.NoError(t, s.SetRoles(ctx, "g2", "r-chat", "r-voice"))

		all, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "g1", all[0].GuildID)
		assert.Equal(t, "g2", all[1].GuildID)
		assert.Equal(t, "r-chat", all[1].ChatRoleID)
		assert.Equal(t, "r-voice", all[1].VoiceRoleID)
	})
}

func TestConfig_CustomizationRoundTrip(t *testing.T) {
	eachConfigStore(t, func(t *testing.T, s configStore) {
		ctx := context.Background()
		color := 0xff0000
		title := "Top charla"
		emoji := "👑"

		require.NoError(t, s.SetChannel(ctx, "g1", domain.KindMessage, "c1"))
		require.NoError(t, s.SaveCustomization(ctx, "g1", domain.Customization{
			ChatColor:  &color,
			ChatTitle:  &title,
			FirstEmoji: &emoji,
		}))

		cfg, err := s.Get(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, "c1", cfg.ChatChannelID)
		require.NotNil(t, cfg.Custom.ChatColor)
		assert.Equal(t, color, *cfg.Custom.ChatColor)
		assert.Nil(t, cfg.Custom.VoiceColor)
		assert.Nil(t, cfg.Custom.SecondEmoji)

		theme := cfg.Custom.Resolve()
		assert.Equal(t, "Top charla", theme.ChatTitle)
		assert.Equal(t, domain.DefaultTheme().VoiceTitle, theme.VoiceTitle)
		assert.Equal(t, [3]string{"👑", "🥈", "🥉"}, theme.RankEmojis)
	})
}
