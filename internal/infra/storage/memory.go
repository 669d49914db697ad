package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jose-valero/activity-leaderboard-bot/internal/domain"
)

// Implementaciones en memoria (DB_DRIVER=memory y tests). Se pierden al reiniciar.

type memKey struct {
	kind  domain.Kind
	guild string
	user  string
}

// MemCounterRepo aplica domain.Advance bajo un mutex, equivalente al upsert atómico de CounterRepo.
type MemCounterRepo struct {
	mu   sync.Mutex
	rows map[memKey]domain.ActivityCounter
}

func NewMemCounterRepo() *MemCounterRepo {
	return &MemCounterRepo{rows: map[memKey]domain.ActivityCounter{}}
}

func (m *MemCounterRepo) Get(_ context.Context, k domain.Kind, guildID, userID string) (domain.ActivityCounter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[memKey{k, guildID, userID}]
	if !ok {
		return domain.ActivityCounter{}, ErrNotFound
	}
	return c, nil
}

func (m *MemCounterRepo) Upsert(_ context.Context, c domain.ActivityCounter) error {
	if _, err := counterTable(c.Kind); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[memKey{c.Kind, c.GuildID, c.UserID}] = c
	return nil
}

func (m *MemCounterRepo) Increment(_ context.Context, k domain.Kind, guildID, userID string, amount int64, today domain.Date) (domain.ActivityCounter, error) {
	if amount <= 0 {
		return domain.ActivityCounter{}, ErrInvalidAmount
	}
	if _, err := counterTable(k); err != nil {
		return domain.ActivityCounter{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memKey{k, guildID, userID}
	c, ok := m.rows[key]
	if !ok {
		c = domain.ActivityCounter{GuildID: guildID, UserID: userID, Kind: k}
	}
	c = domain.Advance(c, today, amount)
	m.rows[key] = c
	return c, nil
}

func (m *MemCounterRepo) filter(k domain.Kind, guildID string, keep func(domain.ActivityCounter) bool) []domain.ActivityCounter {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ActivityCounter
	for key, c := range m.rows {
		if key.kind == k && key.guild == guildID && keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func (m *MemCounterRepo) TopN(_ context.Context, k domain.Kind, guildID string, w domain.Window, n int) ([]domain.ActivityCounter, error) {
	if _, err := windowColumn(w); err != nil {
		return nil, err
	}
	out := m.filter(k, guildID, func(c domain.ActivityCounter) bool { return c.Value(w) > 0 })
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value(w) != out[j].Value(w) {
			return out[i].Value(w) > out[j].Value(w)
		}
		return out[i].UserID < out[j].UserID
	})
	return limit(out, n), nil
}

func (m *MemCounterRepo) TopStreaks(_ context.Context, k domain.Kind, guildID string, n int) ([]domain.ActivityCounter, error) {
	out := m.filter(k, guildID, func(c domain.ActivityCounter) bool { return c.CurrentStreak > 0 })
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.CurrentStreak != b.CurrentStreak {
			return a.CurrentStreak > b.CurrentStreak
		}
		if a.LongestStreak != b.LongestStreak {
			return a.LongestStreak > b.LongestStreak
		}
		return a.UserID < b.UserID
	})
	return limit(out, n), nil
}

func (m *MemCounterRepo) Counters(_ context.Context, k domain.Kind, guildID string, userIDs []string) (map[string]domain.ActivityCounter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]domain.ActivityCounter{}
	for _, id := range userIDs {
		if c, ok := m.rows[memKey{k, guildID, id}]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func limit(in []domain.ActivityCounter, n int) []domain.ActivityCounter {
	if n >= 0 && len(in) > n {
		return in[:n]
	}
	return in
}

type MemVoiceSessionRepo struct {
	mu       sync.Mutex
	sessions map[[2]string]VoiceSession
}

func NewMemVoiceSessionRepo() *MemVoiceSessionRepo {
	return &MemVoiceSessionRepo{sessions: map[[2]string]VoiceSession{}}
}

func (m *MemVoiceSessionRepo) Start(_ context.Context, s VoiceSession) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]string{s.GuildID, s.UserID}
	if _, ok := m.sessions[key]; ok {
		return false, nil
	}
	s.StartedAt = time.Unix(s.StartedAt.Unix(), 0)
	m.sessions[key] = s
	return true, nil
}

func (m *MemVoiceSessionRepo) End(_ context.Context, guildID, userID string) (VoiceSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]string{guildID, userID}
	s, ok := m.sessions[key]
	if !ok {
		return VoiceSession{}, ErrNotFound
	}
	delete(m.sessions, key)
	return s, nil
}

func (m *MemVoiceSessionRepo) List(_ context.Context, guildID string) ([]VoiceSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []VoiceSession
	for _, s := range m.sessions {
		if s.GuildID == guildID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out, nil
}

func (m *MemVoiceSessionRepo) Prune(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for key, s := range m.sessions {
		if s.StartedAt.Unix() < cutoff.Unix() {
			delete(m.sessions, key)
			n++
		}
	}
	return n, nil
}

type MemConfigRepo struct {
	mu   sync.Mutex
	cfgs map[string]LeaderboardConfig
}

func NewMemConfigRepo() *MemConfigRepo {
	return &MemConfigRepo{cfgs: map[string]LeaderboardConfig{}}
}

func (m *MemConfigRepo) Get(_ context.Context, guildID string) (LeaderboardConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cfgs[guildID]
	if !ok {
		return LeaderboardConfig{}, ErrNotFound
	}
	return c, nil
}

func (m *MemConfigRepo) List(_ context.Context) ([]LeaderboardConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LeaderboardConfig, 0, len(m.cfgs))
	for _, c := range m.cfgs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GuildID < out[j].GuildID })
	return out, nil
}

func (m *MemConfigRepo) update(guildID string, fn func(*LeaderboardConfig)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cfgs[guildID]
	if !ok {
		c = LeaderboardConfig{GuildID: guildID}
	}
	fn(&c)
	m.cfgs[guildID] = c
}

func (m *MemConfigRepo) SetChannel(_ context.Context, guildID string, k domain.Kind, channelID string) error {
	if _, err := boardPrefix(k); err != nil {
		return err
	}
	m.update(guildID, func(c *LeaderboardConfig) {
		if k == domain.KindVoice {
			c.VoiceChannelID, c.VoiceMessageID = channelID, ""
		} else {
			c.ChatChannelID, c.ChatMessageID = channelID, ""
		}
	})
	return nil
}

func (m *MemConfigRepo) SetMessageID(_ context.Context, guildID string, k domain.Kind, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cfgs[guildID]
	if !ok {
		return nil
	}
	if k == domain.KindVoice {
		c.VoiceMessageID = messageID
	} else {
		c.ChatMessageID = messageID
	}
	m.cfgs[guildID] = c
	return nil
}

func (m *MemConfigRepo) SetRoles(_ context.Context, guildID, chatRoleID, voiceRoleID string) error {
	m.update(guildID, func(c *LeaderboardConfig) {
		c.ChatRoleID, c.VoiceRoleID = chatRoleID, voiceRoleID
	})
	return nil
}

func (m *MemConfigRepo) SaveCustomization(_ context.Context, guildID string, cu domain.Customization) error {
	m.update(guildID, func(c *LeaderboardConfig) { c.Custom = cu })
	return nil
}
