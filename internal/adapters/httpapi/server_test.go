package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/activity-leaderboard-bot/internal/app/service"
	"github.com/jose-valero/activity-leaderboard-bot/internal/domain"
	"github.com/jose-valero/activity-leaderboard-bot/internal/infra/storage"
)

var day = domain.NewDate(2024, 1, 10)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ctx := context.Background()
	counters := storage.NewMemCounterRepo()
	for user, n := range map[string]int{"a": 3, "b": 5} {
		for i := 0; i < n; i++ {
			_, err := counters.Increment(ctx, domain.KindMessage, "g1", user, 1, day)
			require.NoError(t, err)
		}
	}
	_, err := counters.Increment(ctx, domain.KindVoice, "g1", "a", 120, day)
	require.NoError(t, err)
	return New(service.NewRanker(counters, nil, nil))
}

func get(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func TestHealthz(t *testing.T) {
	rec, body := get(t, newTestServer(t), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestLeaderboard_DefaultMetric(t *testing.T) {
	rec, body := get(t, newTestServer(t), "/v1/guilds/g1/leaderboard")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "weekly_messages", body["metric"])

	entries := body["entries"].([]any)
	require.Len(t, entries, 2)
	first := entries[0].(map[string]any)
	assert.Equal(t, "b", first["user_id"])
	assert.EqualValues(t, 5, first["value"])
	assert.EqualValues(t, 1, first["rank"])
}

func TestLeaderboard_VoiceAndBalanced(t *testing.T) {
	s := newTestServer(t)

	rec, body := get(t, s, "/v1/guilds/g1/leaderboard?metric=alltime_voice")
	require.Equal(t, http.StatusOK, rec.Code)
	entries := body["entries"].([]any)
	require.Len(t, entries, 1)
	assert.EqualValues(t, 120, entries[0].(map[string]any)["value"])

	rec, body = get(t, s, "/v1/guilds/g1/leaderboard?metric=balanced")
	require.Equal(t, http.StatusOK, rec.Code)
	entries = body["entries"].([]any)
	require.Len(t, entries, 2)
	// a: 10 + 0.03 + 10; b: 10 + 0.05
	top := entries[0].(map[string]any)
	assert.Equal(t, "a", top["user_id"])
	assert.EqualValues(t, 3, top["weekly_messages"])
	assert.EqualValues(t, 120, top["weekly_voice_minutes"])
	assert.NotContains(t, top, "value", "mensajes y minutos no se mezclan")
}

func TestLeaderboard_UnknownMetric(t *testing.T) {
	rec, body := get(t, newTestServer(t), "/v1/guilds/g1/leaderboard?metric=yearly_messages")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unknown metric", body["error"])
}

func TestLeaderboard_EmptyGuild(t *testing.T) {
	rec, body := get(t, newTestServer(t), "/v1/guilds/other/leaderboard")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["entries"])
}

func TestUserProfile(t *testing.T) {
	rec, body := get(t, newTestServer(t), "/v1/guilds/g1/users/a")
	require.Equal(t, http.StatusOK, rec.Code)
	msgs := body["messages"].(map[string]any)
	assert.EqualValues(t, 3, msgs["alltime"])
	assert.EqualValues(t, 1, msgs["current_streak"])
	assert.Equal(t, "2024-01-10", msgs["last_activity"])
	voice := body["voice"].(map[string]any)
	assert.EqualValues(t, 120, voice["weekly"])

	rec, body = get(t, newTestServer(t), "/v1/guilds/g1/users/nobody")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, body["messages"].(map[string]any)["alltime"])
}

func TestStreaks(t *testing.T) {
	rec, body := get(t, newTestServer(t), "/v1/guilds/g1/streaks")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["entries"], 2)
}

func TestNoRoute(t *testing.T) {
	rec, _ := get(t, newTestServer(t), "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
