package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type voiceSessionStore interface {
	Start(ctx context.Context, s VoiceSession) (bool, error)
	End(ctx context.Context, guildID, userID string) (VoiceSession, error)
	List(ctx context.Context, guildID string) ([]VoiceSession, error)
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

func eachVoiceSessionStore(t *testing.T, fn func(t *testing.T, s voiceSessionStore)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, NewVoiceSessionRepo(newTestDB(t))) })
	t.Run("memory", func(t *testing.T) { fn(t, NewMemVoiceSessionRepo()) })
}

func TestVoiceSession_StartEnd(t *testing.T) {
	eachVoiceSessionStore(t, func(t *testing.T, s voiceSessionStore) {
		ctx := context.Background()
		start := time.Date(2024, 1, 8, 20, 0, 0, 0, time.UTC)

		ok, err := s.Start(ctx, VoiceSession{GuildID: "g1", UserID: "a", ChannelID: "vc1", StartedAt: start})
		require.NoError(t, err)
		assert.True(t, ok)

		// un segundo join no pisa el inicio
		ok, err = s.Start(ctx, VoiceSession{GuildID: "g1", UserID: "a", ChannelID: "vc2", StartedAt: start.Add(time.Hour)})
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := s.End(ctx, "g1", "a")
		require.NoError(t, err)
		assert.Equal(t, "vc1", got.ChannelID)
		assert.True(t, got.StartedAt.Equal(start))

		_, err = s.End(ctx, "g1", "a")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestVoiceSession_ListAndPrune(t *testing.T) {
	eachVoiceSessionStore(t, func(t *testing.T, s voiceSessionStore) {
		ctx := context.Background()
		now := time.Date(2024, 1, 8, 20, 0, 0, 0, time.UTC)

		for _, vs := range []VoiceSession{
			{GuildID: "g1", UserID: "old", ChannelID: "vc", StartedAt: now.Add(-30 * time.Hour)},
			{GuildID: "g1", UserID: "new", ChannelID: "vc", StartedAt: now.Add(-time.Hour)},
			{GuildID: "g2", UserID: "other", ChannelID: "vc", StartedAt: now.Add(-2 * time.Hour)},
		} {
			_, err := s.Start(ctx, vs)
			require.NoError(t, err)
		}

		list, err := s.List(ctx, "g1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "old", list[0].UserID)
		assert.Equal(t, "new", list[1].UserID)

		n, err := s.Prune(ctx, now.Add(-24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		list, err = s.List(ctx, "g1")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "new", list[0].UserID)
	})
}
