package service

import (
	"context"

	"github.com/pkg/errors"

	"github.com/jose-valero/activity-leaderboard-bot/internal/domain"
	"github.com/jose-valero/activity-leaderboard-bot/internal/infra/storage"
)

type Settings struct {
	configs ConfigStore
}

func NewSettings(configs ConfigStore) *Settings { return &Settings{configs: configs} }

// Config devuelve la config de la guild; vacía si nunca se configuró.
func (s *Settings) Config(ctx context.Context, guildID string) (storage.LeaderboardConfig, error) {
	cfg, err := s.configs.Get(ctx, guildID)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.LeaderboardConfig{GuildID: guildID}, nil
	}
	return cfg, err
}

func (s *Settings) SetChatChannel(ctx context.Context, guildID, channelID string) error {
	return s.configs.SetChannel(ctx, guildID, domain.KindMessage, channelID)
}

func (s *Settings) SetVoiceChannel(ctx context.Context, guildID, channelID string) error {
	return s.configs.SetChannel(ctx, guildID, domain.KindVoice, channelID)
}

// SetRewardRoles: "" desactiva el rol de ese tipo.
func (s *Settings) SetRewardRoles(ctx context.Context, guildID, chatRoleID, voiceRoleID string) error {
	return s.configs.SetRoles(ctx, guildID, chatRoleID, voiceRoleID)
}

// Customize aplica patch sobre lo guardado y devuelve el tema resultante.
func (s *Settings) Customize(ctx context.Context, guildID string, patch domain.Customization) (domain.Theme, error) {
	cfg, err := s.Config(ctx, guildID)
	if err != nil {
		return domain.Theme{}, err
	}
	merged := cfg.Custom.Merge(patch)
	if err := s.configs.SaveCustomization(ctx, guildID, merged); err != nil {
		return domain.Theme{}, err
	}
	return merged.Resolve(), nil
}

// ResetCustomization vuelve todo a los defaults.
func (s *Settings) ResetCustomization(ctx context.Context, guildID string) error {
	return s.configs.SaveCustomization(ctx, guildID, domain.Customization{})
}
