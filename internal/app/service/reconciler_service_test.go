package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/activity-leaderboard-bot/internal/domain"
	"github.com/jose-valero/activity-leaderboard-bot/internal/infra/storage"
)

func newTestReconciler(t *testing.T) (*Reconciler, *storage.MemCounterRepo, *storage.MemConfigRepo, *fakeRoles) {
	t.Helper()
	counters := storage.NewMemCounterRepo()
	configs := storage.NewMemConfigRepo()
	roles := newFakeRoles()
	return NewReconciler(configs, NewRanker(counters, nil, nil), roles), counters, configs, roles
}

func TestReconcile_MovesRoleToLeader(t *testing.T) {
	rec, counters, configs, roles := newTestReconciler(t)
	ctx := context.Background()

	require.NoError(t, configs.SetRoles(ctx, "g1", "chat-role", "voice-role"))
	seed(t, counters, domain.KindMessage, "g1", map[string]int64{"a": 10, "b": 40})
	seed(t, counters, domain.KindVoice, "g1", map[string]int64{"c": 90})
	roles.give("g1", "chat-role", "a", "x")

	sum := rec.Reconcile(ctx)
	assert.Equal(t, ReconcileSummary{Added: 2, Removed: 2}, sum)
	assert.Equal(t, []string{"b"}, roles.holders("g1", "chat-role"))
	assert.Equal(t, []string{"c"}, roles.holders("g1", "voice-role"))
}

func TestReconcile_SecondPassIsNoop(t *testing.T) {
	rec, counters, configs, roles := newTestReconciler(t)
	ctx := context.Background()

	require.NoError(t, configs.SetRoles(ctx, "g1", "chat-role", ""))
	seed(t, counters, domain.KindMessage, "g1", map[string]int64{"a": 10, "b": 40})
	roles.give("g1", "chat-role", "a")

	rec.Reconcile(ctx)
	before := roles.calls

	sum := rec.Reconcile(ctx)
	assert.Equal(t, ReconcileSummary{}, sum)
	assert.Equal(t, before, roles.calls, "sin cambios de ranking no hay llamadas")
}

func TestReconcile_EmptyBoardClearsHolders(t *testing.T) {
	rec, _, configs, roles := newTestReconciler(t)
	ctx := context.Background()

	require.NoError(t, configs.SetRoles(ctx, "g1", "chat-role", ""))
	roles.give("g1", "chat-role", "a", "b")

	sum := rec.Reconcile(ctx)
	assert.Equal(t, 2, sum.Removed)
	assert.Zero(t, sum.Added)
	assert.Empty(t, roles.holders("g1", "chat-role"))
}

func TestReconcile_GuildFailureDoesNotStopOthers(t *testing.T) {
	rec, counters, configs, roles := newTestReconciler(t)
	ctx := context.Background()

	require.NoError(t, configs.SetRoles(ctx, "broken", "r1", ""))
	require.NoError(t, configs.SetRoles(ctx, "ok", "r2", ""))
	seed(t, counters, domain.KindMessage, "broken", map[string]int64{"a": 1})
	seed(t, counters, domain.KindMessage, "ok", map[string]int64{"b": 1})
	roles.failing["broken"] = true

	sum := rec.Reconcile(ctx)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, sum.Added)
	assert.Equal(t, []string{"b"}, roles.holders("ok", "r2"))
}

func TestReconcile_SkipsGuildsWithoutRoles(t *testing.T) {
	rec, counters, configs, roles := newTestReconciler(t)
	ctx := context.Background()

	require.NoError(t, configs.SetChannel(ctx, "g1", domain.KindMessage, "c1"))
	seed(t, counters, domain.KindMessage, "g1", map[string]int64{"a": 1})

	assert.Equal(t, ReconcileSummary{}, rec.Reconcile(ctx))
	assert.Zero(t, roles.calls)
}

func TestReconcile_SkipsLeaderWhoLeftGuild(t *testing.T) {
	counters := storage.NewMemCounterRepo()
	configs := storage.NewMemConfigRepo()
	roles := newFakeRoles()
	rec := NewReconciler(configs, NewRanker(counters, nil, fakeWeigher{"gone": 0}), roles)
	ctx := context.Background()

	require.NoError(t, configs.SetRoles(ctx, "g1", "chat-role", ""))
	seed(t, counters, domain.KindMessage, "g1", map[string]int64{"gone": 500, "a": 40, "b": 10})
	roles.give("g1", "chat-role", "b")

	sum := rec.Reconcile(ctx)
	assert.Equal(t, ReconcileSummary{Added: 1, Removed: 1}, sum)
	assert.Equal(t, []string{"a"}, roles.holders("g1", "chat-role"))
}
