package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/jose-valero/activity-leaderboard-bot/internal/app/service"
	"github.com/jose-valero/activity-leaderboard-bot/internal/infra/config"
	"github.com/jose-valero/activity-leaderboard-bot/internal/infra/storage"
)

type stores struct {
	counters service.CounterStore
	sessions service.VoiceSessionStore
	configs  service.ConfigStore
	close    func()
}

// openStores elige backend según DB_DRIVER; con SQL además migra.
func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	if cfg.DBDriver == "memory" {
		log.Warn().Msg("DB_DRIVER=memory: los contadores se pierden al reiniciar")
		return stores{
			counters: storage.NewMemCounterRepo(),
			sessions: storage.NewMemVoiceSessionRepo(),
			configs:  storage.NewMemConfigRepo(),
			close:    func() {},
		}, nil
	}

	db, err := storage.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return stores{}, err
	}
	if err := storage.Migrate(db); err != nil {
		_ = db.Close()
		return stores{}, err
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("✅ DB lista y migrada")
	return stores{
		counters: storage.NewCounterRepo(db),
		sessions: storage.NewVoiceSessionRepo(db),
		configs:  storage.NewConfigRepo(db),
		close:    func() { _ = db.Close() },
	}, nil
}
