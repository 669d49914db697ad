package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/jose-valero/activity-leaderboard-bot/internal/domain"
	"github.com/jose-valero/activity-leaderboard-bot/internal/infra/storage"
)

var ErrRefreshInProgress = errors.New("leaderboard refresh already running")

// Panel es lo que se publica en el canal de display de cada tipo.
type Panel struct {
	GuildID   string
	Kind      domain.Kind
	Theme     domain.Theme
	Entries   []Entry
	UpdatedAt time.Time
}

// Display mantiene actualizados los paneles de chat (mensajes semanales) y voz (minutos semanales).
type Display struct {
	sem     *semaphore.Weighted // un solo refresh a la vez
	configs ConfigStore
	ranker  *Ranker
	pub     Publisher
	now     func() time.Time
}

func NewDisplay(configs ConfigStore, ranker *Ranker, pub Publisher) *Display {
	return &Display{sem: semaphore.NewWeighted(1), configs: configs, ranker: ranker, pub: pub, now: time.Now}
}

// RefreshAll actualiza los paneles de todas las guilds. Si ya hay uno en curso
// vuelve enseguida con ErrRefreshInProgress.
func (d *Display) RefreshAll(ctx context.Context) error {
	if !d.sem.TryAcquire(1) {
		return ErrRefreshInProgress
	}
	defer d.sem.Release(1)

	cfgs, err := d.configs.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list configs")
	}
	for _, cfg := range cfgs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// los errores ya quedan logueados por tablero; se sigue con la próxima guild
		_ = d.refreshGuild(ctx, cfg, domain.KindMessage, domain.KindVoice)
	}
	return nil
}

// RefreshGuild actualiza los dos paneles de una guild. Espera al refresh en curso
// mientras ctx siga vivo y devuelve el primer error de publicación.
func (d *Display) RefreshGuild(ctx context.Context, guildID string) error {
	return d.refreshKinds(ctx, guildID, domain.KindMessage, domain.KindVoice)
}

// RefreshBoard actualiza sólo el panel de ese tipo (después de /glb o /gvclb).
func (d *Display) RefreshBoard(ctx context.Context, guildID string, k domain.Kind) error {
	return d.refreshKinds(ctx, guildID, k)
}

func (d *Display) refreshKinds(ctx context.Context, guildID string, kinds ...domain.Kind) error {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return errors.Wrap(err, "wait for running refresh")
	}
	defer d.sem.Release(1)

	cfg, err := d.configs.Get(ctx, guildID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "get config")
	}
	return d.refreshGuild(ctx, cfg, kinds...)
}

// refreshGuild intenta todos los tableros aunque alguno falle.
func (d *Display) refreshGuild(ctx context.Context, cfg storage.LeaderboardConfig, kinds ...domain.Kind) error {
	var first error
	for _, k := range kinds {
		if err := d.refreshBoard(ctx, cfg, k); err != nil {
			log.Warn().Err(err).Str("guild", cfg.GuildID).Str("kind", string(k)).Msg("display refresh")
			if first == nil {
				first = errors.Wrapf(err, "%s board", k)
			}
		}
	}
	return first
}

func (d *Display) refreshBoard(ctx context.Context, cfg storage.LeaderboardConfig, k domain.Kind) error {
	channelID, messageID, _ := cfg.Board(k)
	if channelID == "" {
		return nil
	}
	entries, err := d.ranker.Top(ctx, cfg.GuildID, domain.Metric{Kind: k, Window: domain.WindowWeekly})
	if err != nil {
		return err
	}
	id, err := d.pub.Publish(ctx, channelID, messageID, Panel{
		GuildID:   cfg.GuildID,
		Kind:      k,
		Theme:     cfg.Custom.Resolve(),
		Entries:   entries,
		UpdatedAt: d.now(),
	})
	if err != nil {
		return errors.Wrap(err, "publish panel")
	}
	if id != messageID {
		return errors.Wrap(d.configs.SetMessageID(ctx, cfg.GuildID, k, id), "save panel message")
	}
	return nil
}
