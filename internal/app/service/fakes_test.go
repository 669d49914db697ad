package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

type fakeRoles struct {
	mu      sync.Mutex
	members map[string]map[string]bool // "guild/role" -> users
	failing map[string]bool            // guilds cuyas llamadas fallan
	calls   int                        // mutaciones (add + remove)
}

func newFakeRoles() *fakeRoles {
	return &fakeRoles{members: map[string]map[string]bool{}, failing: map[string]bool{}}
}

func roleKey(guildID, roleID string) string { return guildID + "/" + roleID }

func (f *fakeRoles) give(guildID, roleID string, users ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := roleKey(guildID, roleID)
	if f.members[k] == nil {
		f.members[k] = map[string]bool{}
	}
	for _, u := range users {
		f.members[k][u] = true
	}
}

func (f *fakeRoles) holders(guildID, roleID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for u := range f.members[roleKey(guildID, roleID)] {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

func (f *fakeRoles) RoleMembers(_ context.Context, guildID, roleID string) ([]string, error) {
	if f.failing[guildID] {
		return nil, errors.New("missing permissions")
	}
	return f.holders(guildID, roleID), nil
}

func (f *fakeRoles) AddRole(_ context.Context, guildID, userID, roleID string) error {
	if f.failing[guildID] {
		return errors.New("missing permissions")
	}
	f.give(guildID, roleID, userID)
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return nil
}

func (f *fakeRoles) RemoveRole(_ context.Context, guildID, userID, roleID string) error {
	if f.failing[guildID] {
		return errors.New("missing permissions")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.members[roleKey(guildID, roleID)], userID)
	f.calls++
	return nil
}

type fakePublisher struct {
	mu      sync.Mutex
	panels  []Panel
	deleted map[string]bool // mensajes borrados a mano
	next    int
	block   chan struct{}
	entered chan struct{}
	fail    map[string]error // canal -> error de Discord
}

func (f *fakePublisher) Publish(_ context.Context, channelID, messageID string, p Panel) (string, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[channelID]; err != nil {
		return "", err
	}
	f.panels = append(f.panels, p)
	if messageID != "" && !f.deleted[messageID] {
		return messageID, nil
	}
	f.next++
	return fmt.Sprintf("%s-msg%d", channelID, f.next), nil
}

type fakeNames map[string]string

func (f fakeNames) DisplayName(_ context.Context, _, userID string) string { return f[userID] }

type fakeWeigher map[string]float64

func (f fakeWeigher) MemberWeight(_ context.Context, _, userID string) float64 {
	if w, ok := f[userID]; ok {
		return w
	}
	return 1
}
