package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jose-valero/activity-leaderboard-bot/internal/domain"
	"github.com/jose-valero/activity-leaderboard-bot/internal/infra/storage"
)

// ReconcileSummary cuenta las mutaciones de roles de una pasada.
type ReconcileSummary struct {
	Added   int
	Removed int
	Failed  int
}

func (s *ReconcileSummary) add(o ReconcileSummary) {
	s.Added += o.Added
	s.Removed += o.Removed
	s.Failed += o.Failed
}

// Reconciler deja el rol de premio sólo en el #1 semanal de cada tipo.
type Reconciler struct {
	configs ConfigStore
	ranker  *Ranker
	roles   RoleAPI
}

func NewReconciler(configs ConfigStore, ranker *Ranker, roles RoleAPI) *Reconciler {
	return &Reconciler{configs: configs, ranker: ranker, roles: roles}
}

// Reconcile recorre todas las guilds configuradas. Los errores se loguean y se sigue.
func (r *Reconciler) Reconcile(ctx context.Context) ReconcileSummary {
	lg := log.With().Str("run", uuid.NewString()).Logger()

	var sum ReconcileSummary
	cfgs, err := r.configs.List(ctx)
	if err != nil {
		lg.Error().Err(err).Msg("reconcile: list configs")
		sum.Failed++
		return sum
	}
	for _, cfg := range cfgs {
		if ctx.Err() != nil {
			break
		}
		sum.add(r.ReconcileGuild(ctx, cfg, lg))
	}
	lg.Info().Int("added", sum.Added).Int("removed", sum.Removed).Int("failed", sum.Failed).Msg("reconcile done")
	return sum
}

func (r *Reconciler) ReconcileGuild(ctx context.Context, cfg storage.LeaderboardConfig, lg zerolog.Logger) ReconcileSummary {
	var sum ReconcileSummary
	for _, k := range []domain.Kind{domain.KindMessage, domain.KindVoice} {
		_, _, roleID := cfg.Board(k)
		if roleID == "" {
			continue
		}
		sum.add(r.reconcileRole(ctx, cfg.GuildID, k, roleID, lg.With().Str("guild", cfg.GuildID).Str("kind", string(k)).Str("role", roleID).Logger()))
	}
	return sum
}

func (r *Reconciler) reconcileRole(ctx context.Context, guildID string, k domain.Kind, roleID string, lg zerolog.Logger) ReconcileSummary {
	var sum ReconcileSummary

	leader, err := r.ranker.Leader(ctx, guildID, k)
	if err != nil {
		lg.Error().Err(err).Msg("reconcile: leader")
		sum.Failed++
		return sum
	}
	holders, err := r.roles.RoleMembers(ctx, guildID, roleID)
	if err != nil {
		lg.Error().Err(err).Msg("reconcile: role members")
		sum.Failed++
		return sum
	}

	held := false
	for _, uid := range holders {
		if uid == leader {
			held = true
			continue
		}
		if err := r.roles.RemoveRole(ctx, guildID, uid, roleID); err != nil {
			lg.Warn().Err(err).Str("user", uid).Msg("reconcile: remove role")
			sum.Failed++
			continue
		}
		sum.Removed++
	}
	if leader != "" && !held {
		if err := r.roles.AddRole(ctx, guildID, leader, roleID); err != nil {
			lg.Warn().Err(err).Str("user", leader).Msg("reconcile: add role")
			sum.Failed++
		} else {
			sum.Added++
		}
	}
	if sum.Added+sum.Removed > 0 {
		lg.Debug().Str("leader", leader).Int("added", sum.Added).Int("removed", sum.Removed).Msg("reward role updated")
	}
	return sum
}
