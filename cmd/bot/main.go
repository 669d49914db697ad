package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	discordrouter "github.com/jose-valero/activity-leaderboard-bot/internal/adapters/discord"
	"github.com/jose-valero/activity-leaderboard-bot/internal/adapters/httpapi"
	"github.com/jose-valero/activity-leaderboard-bot/internal/app/service"
	"github.com/jose-valero/activity-leaderboard-bot/internal/infra/config"
	"github.com/jose-valero/activity-leaderboard-bot/internal/infra/storage"
)

func main() {
	root := &cobra.Command{
		Use:          "leaderboard-bot",
		Short:        "Bot de Discord con leaderboards de chat y voz",
		SilenceUsage: true,
	}
	root.AddCommand(runCmd(), migrateCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones y sale",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(false)
			if err != nil {
				return err
			}
			config.SetupLogging(cfg)
			if cfg.DBDriver == "memory" {
				log.Info().Msg("DB_DRIVER=memory: nada que migrar")
				return nil
			}
			db, err := storage.Open(cmd.Context(), cfg.DBDriver, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := storage.Migrate(db); err != nil {
				return err
			}
			log.Info().Str("driver", cfg.DBDriver).Msg("✅ DB migrada")
			return nil
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Conecta al gateway y cuenta actividad",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(true)
			if err != nil {
				return err
			}
			config.SetupLogging(cfg)
			return run(cmd.Context(), cfg)
		},
	}
}

func run(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	// Discord session
	s, err := discordgo.New(cfg.BotAuth())
	if err != nil {
		return errors.Wrap(err, "discord session")
	}
	s.Identify.Intents = discordrouter.Intents
	s.StateEnabled = true
	if err := s.Open(); err != nil {
		return errors.Wrap(err, "discord open")
	}
	defer s.Close()
	log.Info().Str("user", s.State.User.Username).Str("id", s.State.User.ID).Msg("✅ Conectado")

	// Services
	guilds := discordrouter.NewGuilds(s)
	tracker := service.NewTracker(st.counters, st.sessions, cfg.Location, cfg.AFKChannelID)
	ranker := service.NewRanker(st.counters, guilds, guilds)
	display := service.NewDisplay(st.configs, ranker, guilds)
	settings := service.NewSettings(st.configs)
	reconciler := service.NewReconciler(st.configs, ranker, guilds)

	r := discordrouter.NewRouter(s, cfg.DiscordGuild, tracker, ranker, display, settings, reconciler, cfg.AdminRoleIDs)
	if err := r.Register(); err != nil {
		return errors.Wrap(err, "registrando comandos")
	}
	r.Handlers()

	if cfg.HTTPEnabled() {
		api := httpapi.New(ranker)
		api.Start(cfg.HTTPAddr)
		defer api.Stop()
	}

	go sweep(ctx, cfg, tracker, display, reconciler)

	<-ctx.Done()
	log.Info().Msg("apagando")
	return nil
}

// sweep: cada REFRESH_INTERVAL refresca paneles, reconcilia roles y limpia sesiones de voz colgadas.
func sweep(ctx context.Context, cfg config.Config, tracker *service.Tracker, display *service.Display, reconciler *service.Reconciler) {
	t := time.NewTicker(cfg.RefreshInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		cctx, cancel := context.WithTimeout(ctx, cfg.RefreshInterval)
		if err := display.RefreshAll(cctx); err != nil {
			if errors.Is(err, service.ErrRefreshInProgress) {
				log.Debug().Msg("refresh anterior todavía en curso")
			} else {
				log.Error().Err(err).Msg("refresh panels")
			}
		}
		reconciler.Reconcile(cctx)
		if n, err := tracker.PruneStale(cctx, cfg.VoiceSessionMaxAge); err != nil {
			log.Error().Err(err).Msg("prune voice sessions")
		} else if n > 0 {
			log.Info().Int64("n", n).Msg("sesiones de voz vencidas")
		}
		cancel()
	}
}
