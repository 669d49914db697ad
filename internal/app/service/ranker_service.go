package service

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/jose-valero/activity-leaderboard-bot/internal/domain"
	"github.com/jose-valero/activity-leaderboard-bot/internal/infra/storage"
)

const (
	TopLimit = 10
	// candidatos por tipo para el modo balanced
	balancedPool = 50
)

// Entry es una fila del ranking.
type Entry struct {
	Rank          int
	UserID        string
	DisplayName   string
	Value         int64 // 0 en balanced: mensajes y minutos no se suman
	Score         float64
	CurrentStreak int
	LongestStreak int

	// sólo balanced
	WeeklyMessages int64
	WeeklyVoice    int64
}

// Profile son los dos contadores de un usuario (cero si nunca tuvo actividad).
type Profile struct {
	UserID      string
	DisplayName string
	Message     domain.ActivityCounter
	Voice       domain.ActivityCounter
}

type Ranker struct {
	counters CounterStore
	names    NameResolver
	weigher  MemberWeigher
}

func NewRanker(counters CounterStore, names NameResolver, weigher MemberWeigher) *Ranker {
	return &Ranker{counters: counters, names: names, weigher: weigher}
}

func (r *Ranker) displayName(ctx context.Context, guildID, userID string) string {
	if r.names == nil {
		return userID
	}
	if n := r.names.DisplayName(ctx, guildID, userID); n != "" {
		return n
	}
	return userID
}

func (r *Ranker) entries(ctx context.Context, guildID string, rows []domain.ActivityCounter, w domain.Window) []Entry {
	out := make([]Entry, 0, len(rows))
	for i, c := range rows {
		out = append(out, Entry{
			Rank:          i + 1,
			UserID:        c.UserID,
			DisplayName:   r.displayName(ctx, guildID, c.UserID),
			Value:         c.Value(w),
			CurrentStreak: c.CurrentStreak,
			LongestStreak: c.LongestStreak,
		})
	}
	return out
}

// Top devuelve el top 10 de una métrica (sólo valores > 0).
func (r *Ranker) Top(ctx context.Context, guildID string, m domain.Metric) ([]Entry, error) {
	if !m.Kind.Valid() || !m.Window.Valid() {
		return nil, domain.ErrUnknownMetric
	}
	rows, err := r.counters.TopN(ctx, m.Kind, guildID, m.Window, TopLimit)
	if err != nil {
		return nil, errors.Wrapf(err, "top %s", m)
	}
	return r.entries(ctx, guildID, rows, m.Window), nil
}

// Leader es el #1 semanal de ese tipo que sigue en la guild; "" si no hay ninguno.
func (r *Ranker) Leader(ctx context.Context, guildID string, k domain.Kind) (string, error) {
	rows, err := r.counters.TopN(ctx, k, guildID, domain.WindowWeekly, TopLimit)
	if err != nil {
		return "", errors.Wrapf(err, "weekly %s leader", k)
	}
	for _, c := range rows {
		if r.weigher == nil || r.weigher.MemberWeight(ctx, guildID, c.UserID) > 0 {
			return c.UserID, nil
		}
	}
	return "", nil
}

// Balanced ordena por domain.BalancedScore sobre la unión de los tops semanales de mensajes y voz.
func (r *Ranker) Balanced(ctx context.Context, guildID string) ([]Entry, error) {
	seen := map[string]bool{}
	var ids []string
	for _, k := range []domain.Kind{domain.KindMessage, domain.KindVoice} {
		rows, err := r.counters.TopN(ctx, k, guildID, domain.WindowWeekly, balancedPool)
		if err != nil {
			return nil, errors.Wrapf(err, "balanced candidates %s", k)
		}
		for _, c := range rows {
			if !seen[c.UserID] {
				seen[c.UserID] = true
				ids = append(ids, c.UserID)
			}
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	msgs, err := r.counters.Counters(ctx, domain.KindMessage, guildID, ids)
	if err != nil {
		return nil, errors.Wrap(err, "balanced message counters")
	}
	voice, err := r.counters.Counters(ctx, domain.KindVoice, guildID, ids)
	if err != nil {
		return nil, errors.Wrap(err, "balanced voice counters")
	}

	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		weight := 1.0
		if r.weigher != nil {
			weight = r.weigher.MemberWeight(ctx, guildID, id)
		}
		m, v := msgs[id], voice[id]
		streak, longest := m.CurrentStreak, m.LongestStreak
		if v.CurrentStreak > streak {
			streak = v.CurrentStreak
		}
		if v.LongestStreak > longest {
			longest = v.LongestStreak
		}
		out = append(out, Entry{
			UserID:         id,
			Score:          domain.BalancedScore(weight, m.Weekly, v.Weekly),
			CurrentStreak:  streak,
			LongestStreak:  longest,
			WeeklyMessages: m.Weekly,
			WeeklyVoice:    v.Weekly,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].UserID < out[j].UserID
	})
	if len(out) > TopLimit {
		out = out[:TopLimit]
	}
	for i := range out {
		out[i].Rank = i + 1
		out[i].DisplayName = r.displayName(ctx, guildID, out[i].UserID)
	}
	return out, nil
}

// Streaks: top 10 de rachas de mensajes activas.
func (r *Ranker) Streaks(ctx context.Context, guildID string) ([]Entry, error) {
	rows, err := r.counters.TopStreaks(ctx, domain.KindMessage, guildID, TopLimit)
	if err != nil {
		return nil, errors.Wrap(err, "top streaks")
	}
	out := r.entries(ctx, guildID, rows, domain.WindowAllTime)
	for i := range out {
		out[i].Value = int64(out[i].CurrentStreak)
	}
	return out, nil
}

func (r *Ranker) Profile(ctx context.Context, guildID, userID string) (Profile, error) {
	p := Profile{UserID: userID, DisplayName: r.displayName(ctx, guildID, userID)}
	for _, k := range []domain.Kind{domain.KindMessage, domain.KindVoice} {
		c, err := r.counters.Get(ctx, k, guildID, userID)
		if errors.Is(err, storage.ErrNotFound) {
			c = domain.ActivityCounter{GuildID: guildID, UserID: userID, Kind: k}
		} else if err != nil {
			return Profile{}, errors.Wrapf(err, "profile %s", k)
		}
		if k == domain.KindVoice {
			p.Voice = c
		} else {
			p.Message = c
		}
	}
	return p, nil
}
