package service

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/jose-valero/activity-leaderboard-bot/internal/domain"
	"github.com/jose-valero/activity-leaderboard-bot/internal/infra/storage"
)

// VoiceChange es un voice state update ya reducido a canal anterior / nuevo ("" = sin canal).
type VoiceChange struct {
	GuildID string
	UserID  string
	Before  string
	After   string
	Bot     bool
}

// Tracker convierte eventos de actividad en incrementos de contadores.
type Tracker struct {
	counters CounterStore
	sessions VoiceSessionStore
	loc      *time.Location
	afk      string
	now      func() time.Time
}

func NewTracker(counters CounterStore, sessions VoiceSessionStore, loc *time.Location, afkChannelID string) *Tracker {
	if loc == nil {
		loc = time.UTC
	}
	return &Tracker{counters: counters, sessions: sessions, loc: loc, afk: afkChannelID, now: time.Now}
}

// Today es el día de calendario actual en la zona configurada.
func (t *Tracker) Today() domain.Date { return domain.DateOf(t.now(), t.loc) }

func (t *Tracker) RecordMessage(ctx context.Context, guildID, userID string) (domain.ActivityCounter, error) {
	c, err := t.counters.Increment(ctx, domain.KindMessage, guildID, userID, 1, t.Today())
	return c, errors.Wrap(err, "record message")
}

// tracked: está en un canal que cuenta (no AFK).
func (t *Tracker) tracked(channelID string) bool {
	return channelID != "" && channelID != t.afk
}

// VoiceStateChange abre o cierra la sesión según el cambio. Cambiar de canal
// mantiene la sesión; entrar al AFK cuenta como salir. Devuelve los minutos acreditados.
func (t *Tracker) VoiceStateChange(ctx context.Context, ev VoiceChange) (int64, error) {
	if ev.Bot {
		return 0, nil
	}
	was, is := t.tracked(ev.Before), t.tracked(ev.After)
	switch {
	case !was && is:
		return 0, t.VoiceJoin(ctx, ev.GuildID, ev.UserID, ev.After)
	case was && !is:
		return t.VoiceLeave(ctx, ev.GuildID, ev.UserID)
	}
	return 0, nil
}

func (t *Tracker) VoiceJoin(ctx context.Context, guildID, userID, channelID string) error {
	_, err := t.sessions.Start(ctx, storage.VoiceSession{
		GuildID:   guildID,
		UserID:    userID,
		ChannelID: channelID,
		StartedAt: t.now(),
	})
	return errors.Wrap(err, "voice join")
}

// VoiceLeave cierra la sesión y acredita los minutos enteros (menos de 1 minuto no cuenta).
func (t *Tracker) VoiceLeave(ctx context.Context, guildID, userID string) (int64, error) {
	s, err := t.sessions.End(ctx, guildID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "voice leave")
	}
	minutes := int64(t.now().Sub(s.StartedAt) / time.Minute)
	if minutes < 1 {
		return 0, nil
	}
	if _, err := t.counters.Increment(ctx, domain.KindVoice, guildID, userID, minutes, t.Today()); err != nil {
		return 0, errors.Wrap(err, "credit voice minutes")
	}
	return minutes, nil
}

// SyncGuildVoice alinea las sesiones guardadas con quién está en voz ahora
// (present: user -> canal). Las sesiones de quien ya no está se descartan sin acreditar.
func (t *Tracker) SyncGuildVoice(ctx context.Context, guildID string, present map[string]string) (started, dropped int, err error) {
	open, err := t.sessions.List(ctx, guildID)
	if err != nil {
		return 0, 0, errors.Wrap(err, "list voice sessions")
	}
	for _, s := range open {
		if t.tracked(present[s.UserID]) {
			continue
		}
		if _, err := t.sessions.End(ctx, guildID, s.UserID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return started, dropped, errors.Wrap(err, "drop voice session")
		}
		dropped++
	}
	for userID, channelID := range present {
		if !t.tracked(channelID) {
			continue
		}
		ok, err := t.sessions.Start(ctx, storage.VoiceSession{GuildID: guildID, UserID: userID, ChannelID: channelID, StartedAt: t.now()})
		if err != nil {
			return started, dropped, errors.Wrap(err, "start voice session")
		}
		if ok {
			started++
		}
	}
	return started, dropped, nil
}

// PruneStale borra sesiones abiertas hace más de maxAge (leave perdido).
func (t *Tracker) PruneStale(ctx context.Context, maxAge time.Duration) (int64, error) {
	n, err := t.sessions.Prune(ctx, t.now().Add(-maxAge))
	return n, errors.Wrap(err, "prune voice sessions")
}
