package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

type VoiceSessionRepo struct{ db *DB }

func NewVoiceSessionRepo(db *DB) *VoiceSessionRepo { return &VoiceSessionRepo{db: db} }

// Start abre la sesión si no había una. Devuelve false si ya existía.
func (r *VoiceSessionRepo) Start(ctx context.Context, s VoiceSession) (bool, error) {
	res, err := r.db.exec(ctx, `
INSERT INTO voice_sessions (guild_id, user_id, channel_id, started_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (guild_id, user_id) DO NOTHING
`, s.GuildID, s.UserID, s.ChannelID, s.StartedAt.Unix())
	if err != nil {
		return false, errors.Wrap(err, "start voice session")
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// End borra la sesión y la devuelve; ErrNotFound si no había.
func (r *VoiceSessionRepo) End(ctx context.Context, guildID, userID string) (VoiceSession, error) {
	var (
		s       = VoiceSession{GuildID: guildID, UserID: userID}
		started int64
	)
	err := r.db.queryRow(ctx, `
DELETE FROM voice_sessions
 WHERE guild_id = $1 AND user_id = $2
RETURNING channel_id, started_at
`, guildID, userID).Scan(&s.ChannelID, &started)
	if err == sql.ErrNoRows {
		return VoiceSession{}, ErrNotFound
	}
	if err != nil {
		return VoiceSession{}, errors.Wrap(err, "end voice session")
	}
	s.StartedAt = time.Unix(started, 0)
	return s, nil
}

func (r *VoiceSessionRepo) List(ctx context.Context, guildID string) ([]VoiceSession, error) {
	rows, err := r.db.query(ctx, `
SELECT guild_id, user_id, channel_id, started_at
  FROM voice_sessions
 WHERE guild_id = $1
 ORDER BY started_at ASC
`, guildID)
	if err != nil {
		return nil, errors.Wrap(err, "list voice sessions")
	}
	defer rows.Close()

	var out []VoiceSession
	for rows.Next() {
		var (
			s       VoiceSession
			started int64
		)
		if err := rows.Scan(&s.GuildID, &s.UserID, &s.ChannelID, &started); err != nil {
			return nil, err
		}
		s.StartedAt = time.Unix(started, 0)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Prune elimina sesiones abiertas antes de cutoff (leave perdido).
func (r *VoiceSessionRepo) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.exec(ctx, `
DELETE FROM voice_sessions WHERE started_at < $1
`, cutoff.Unix())
	if err != nil {
		return 0, errors.Wrap(err, "prune voice sessions")
	}
	n, _ := res.RowsAffected()
	return n, nil
}
