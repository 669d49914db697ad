package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/activity-leaderboard-bot/internal/domain"
	"github.com/jose-valero/activity-leaderboard-bot/internal/infra/storage"
)

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTracker(afk string) (*Tracker, *storage.MemCounterRepo, *storage.MemVoiceSessionRepo, *testClock) {
	counters := storage.NewMemCounterRepo()
	sessions := storage.NewMemVoiceSessionRepo()
	clock := &testClock{t: time.Date(2024, 1, 9, 20, 0, 0, 0, time.UTC)}
	tr := NewTracker(counters, sessions, time.UTC, afk)
	tr.now = clock.now
	return tr, counters, sessions, clock
}

func TestRecordMessage(t *testing.T) {
	tr, counters, _, clock := newTestTracker("")
	ctx := context.Background()

	_, err := tr.RecordMessage(ctx, "g1", "a")
	require.NoError(t, err)
	clock.advance(24 * time.Hour)
	c, err := tr.RecordMessage(ctx, "g1", "a")
	require.NoError(t, err)
	assert.Equal(t, 2, c.CurrentStreak)

	got, err := counters.Get(ctx, domain.KindMessage, "g1", "a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.AllTime)
}

func TestToday_UsesLocation(t *testing.T) {
	tr, _, _, clock := newTestTracker("")
	tr.loc = time.FixedZone("UTC+5", 5*3600)
	clock.t = time.Date(2024, 1, 9, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-10", tr.Today().String())
}

func TestVoice_JoinLeaveCreditsWholeMinutes(t *testing.T) {
	tr, counters, _, clock := newTestTracker("")
	ctx := context.Background()

	n, err := tr.VoiceStateChange(ctx, VoiceChange{GuildID: "g1", UserID: "a", After: "vc1"})
	require.NoError(t, err)
	assert.Zero(t, n)

	clock.advance(45*time.Minute + 59*time.Second)
	n, err = tr.VoiceStateChange(ctx, VoiceChange{GuildID: "g1", UserID: "a", Before: "vc1"})
	require.NoError(t, err)
	assert.Equal(t, int64(45), n)

	c, err := counters.Get(ctx, domain.KindVoice, "g1", "a")
	require.NoError(t, err)
	assert.Equal(t, int64(45), c.Weekly)
	assert.Equal(t, 1, c.CurrentStreak)
}

func TestVoice_UnderOneMinuteCreditsNothing(t *testing.T) {
	tr, counters, sessions, clock := newTestTracker("")
	ctx := context.Background()

	require.NoError(t, tr.VoiceJoin(ctx, "g1", "a", "vc1"))
	clock.advance(59 * time.Second)
	n, err := tr.VoiceLeave(ctx, "g1", "a")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = counters.Get(ctx, domain.KindVoice, "g1", "a")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	open, err := sessions.List(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestVoice_LeaveWithoutJoin(t *testing.T) {
	tr, _, _, _ := newTestTracker("")
	n, err := tr.VoiceLeave(context.Background(), "g1", "ghost")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestVoice_SwitchKeepsSession(t *testing.T) {
	tr, _, sessions, clock := newTestTracker("")
	ctx := context.Background()

	_, err := tr.VoiceStateChange(ctx, VoiceChange{GuildID: "g1", UserID: "a", After: "vc1"})
	require.NoError(t, err)
	clock.advance(10 * time.Minute)
	n, err := tr.VoiceStateChange(ctx, VoiceChange{GuildID: "g1", UserID: "a", Before: "vc1", After: "vc2"})
	require.NoError(t, err)
	assert.Zero(t, n)

	clock.advance(10 * time.Minute)
	n, err = tr.VoiceStateChange(ctx, VoiceChange{GuildID: "g1", UserID: "a", Before: "vc2"})
	require.NoError(t, err)
	assert.Equal(t, int64(20), n)

	open, err := sessions.List(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestVoice_AFKCountsAsLeaving(t *testing.T) {
	tr, _, _, clock := newTestTracker("afk")
	ctx := context.Background()

	_, err := tr.VoiceStateChange(ctx, VoiceChange{GuildID: "g1", UserID: "a", After: "vc1"})
	require.NoError(t, err)
	clock.advance(5 * time.Minute)
	n, err := tr.VoiceStateChange(ctx, VoiceChange{GuildID: "g1", UserID: "a", Before: "vc1", After: "afk"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	// tiempo en AFK no cuenta
	clock.advance(time.Hour)
	_, err = tr.VoiceStateChange(ctx, VoiceChange{GuildID: "g1", UserID: "a", Before: "afk", After: "vc1"})
	require.NoError(t, err)
	clock.advance(2 * time.Minute)
	n, err = tr.VoiceStateChange(ctx, VoiceChange{GuildID: "g1", UserID: "a", Before: "vc1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestVoice_BotsIgnored(t *testing.T) {
	tr, _, sessions, _ := newTestTracker("")
	_, err := tr.VoiceStateChange(context.Background(), VoiceChange{GuildID: "g1", UserID: "bot", After: "vc1", Bot: true})
	require.NoError(t, err)
	open, err := sessions.List(context.Background(), "g1")
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestSyncGuildVoice(t *testing.T) {
	tr, counters, sessions, clock := newTestTracker("afk")
	ctx := context.Background()

	// sesiones que quedaron de antes del reinicio
	require.NoError(t, tr.VoiceJoin(ctx, "g1", "stayed", "vc1"))
	require.NoError(t, tr.VoiceJoin(ctx, "g1", "gone", "vc1"))
	require.NoError(t, tr.VoiceJoin(ctx, "g1", "idle", "vc1"))
	clock.advance(time.Hour)

	started, dropped, err := tr.SyncGuildVoice(ctx, "g1", map[string]string{
		"stayed": "vc2",
		"idle":   "afk",
		"new":    "vc1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, started)
	assert.Equal(t, 2, dropped)

	open, err := sessions.List(ctx, "g1")
	require.NoError(t, err)
	var ids []string
	for _, s := range open {
		ids = append(ids, s.UserID)
	}
	assert.ElementsMatch(t, []string{"stayed", "new"}, ids)

	// lo descartado no se acredita
	_, err = counters.Get(ctx, domain.KindVoice, "g1", "gone")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// "stayed" conserva el inicio original
	clock.advance(time.Minute)
	n, err := tr.VoiceLeave(ctx, "g1", "stayed")
	require.NoError(t, err)
	assert.Equal(t, int64(61), n)
}

func TestPruneStale(t *testing.T) {
	tr, _, sessions, clock := newTestTracker("")
	ctx := context.Background()

	require.NoError(t, tr.VoiceJoin(ctx, "g1", "a", "vc1"))
	clock.advance(25 * time.Hour)
	require.NoError(t, tr.VoiceJoin(ctx, "g1", "b", "vc1"))

	n, err := tr.PruneStale(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	open, err := sessions.List(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "b", open[0].UserID)
}
