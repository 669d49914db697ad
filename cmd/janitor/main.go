// janitor corre como Lambda programada: borra sesiones de voz que quedaron
// abiertas porque el bot se perdió el evento de salida.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jose-valero/activity-leaderboard-bot/internal/infra/config"
)

func handler(ctx context.Context) (string, error) {
	cfg, err := config.Load(false)
	if err != nil {
		return "", err
	}
	config.SetupLogging(cfg)
	if cfg.DBDriver != "postgres" && cfg.DBDriver != "pgx" {
		return fmt.Sprintf("driver %s no soportado", cfg.DBDriver), nil
	}

	pcfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return "", errors.Wrap(err, "parse dsn")
	}
	pcfg.MaxConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return "", errors.Wrap(err, "pool")
	}
	defer pool.Close()

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-cfg.VoiceSessionMaxAge).Unix()
	tag, err := pool.Exec(cctx, `DELETE FROM voice_sessions WHERE started_at < $1`, cutoff)
	if err != nil {
		return "", errors.Wrap(err, "prune voice sessions")
	}
	log.Info().Int64("deleted", tag.RowsAffected()).Dur("max_age", cfg.VoiceSessionMaxAge).Msg("janitor")
	return fmt.Sprintf("ok: %d", tag.RowsAffected()), nil
}

func main() { lambda.Start(handler) }
