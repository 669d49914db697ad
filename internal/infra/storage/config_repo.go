package storage

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/jose-valero/activity-leaderboard-bot/internal/domain"
)

const configColumns = `guild_id, chat_channel_id, chat_message_id, chat_role_id,
       voice_channel_id, voice_message_id, voice_role_id,
       chat_color, voice_color, first_emoji, second_emoji, third_emoji, chat_title, voice_title`

// ConfigRepo guarda LeaderboardConfig + customización por guild.
type ConfigRepo struct{ db *DB }

func NewConfigRepo(db *DB) *ConfigRepo { return &ConfigRepo{db: db} }

func scanConfig(row rowScanner) (LeaderboardConfig, error) {
	var c LeaderboardConfig
	err := row.Scan(
		&c.GuildID, &c.ChatChannelID, &c.ChatMessageID, &c.ChatRoleID,
		&c.VoiceChannelID, &c.VoiceMessageID, &c.VoiceRoleID,
		&c.Custom.ChatColor, &c.Custom.VoiceColor,
		&c.Custom.FirstEmoji, &c.Custom.SecondEmoji, &c.Custom.ThirdEmoji,
		&c.Custom.ChatTitle, &c.Custom.VoiceTitle,
	)
	return c, err
}

func (r *ConfigRepo) Get(ctx context.Context, guildID string) (LeaderboardConfig, error) {
	c, err := scanConfig(r.db.queryRow(ctx, `
SELECT `+configColumns+`
  FROM leaderboard_config
 WHERE guild_id = $1
`, guildID))
	if err == sql.ErrNoRows {
		return LeaderboardConfig{}, ErrNotFound
	}
	return c, errors.Wrap(err, "get leaderboard config")
}

// List devuelve todas las guilds que tienen algo configurado.
func (r *ConfigRepo) List(ctx context.Context) ([]LeaderboardConfig, error) {
	rows, err := r.db.query(ctx, `
SELECT `+configColumns+`
  FROM leaderboard_config
 ORDER BY guild_id ASC
`)
	if err != nil {
		return nil, errors.Wrap(err, "list leaderboard configs")
	}
	defer rows.Close()

	var out []LeaderboardConfig
	for rows.Next() {
		c, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SetChannel cambia el canal de display; el mensaje anterior se olvida.
func (r *ConfigRepo) SetChannel(ctx context.Context, guildID string, k domain.Kind, channelID string) error {
	p, err := boardPrefix(k)
	if err != nil {
		return err
	}
	_, err = r.db.exec(ctx, `
INSERT INTO leaderboard_config (guild_id, `+p+`_channel_id, `+p+`_message_id)
VALUES ($1, $2, '')
ON CONFLICT (guild_id) DO UPDATE SET
  `+p+`_channel_id = EXCLUDED.`+p+`_channel_id,
  `+p+`_message_id = ''
`, guildID, channelID)
	return errors.Wrap(err, "set leaderboard channel")
}

func (r *ConfigRepo) SetMessageID(ctx context.Context, guildID string, k domain.Kind, messageID string) error {
	p, err := boardPrefix(k)
	if err != nil {
		return err
	}
	_, err = r.db.exec(ctx, `
UPDATE leaderboard_config SET `+p+`_message_id = $2 WHERE guild_id = $1
`, guildID, messageID)
	return errors.Wrap(err, "set leaderboard message")
}

// SetRoles guarda los roles de premio; "" desactiva ese rol.
func (r *ConfigRepo) SetRoles(ctx context.Context, guildID, chatRoleID, voiceRoleID string) error {
	_, err := r.db.exec(ctx, `
INSERT INTO leaderboard_config (guild_id, chat_role_id, voice_role_id)
VALUES ($1, $2, $3)
ON CONFLICT (guild_id) DO UPDATE SET
  chat_role_id  = EXCLUDED.chat_role_id,
  voice_role_id = EXCLUDED.voice_role_id
`, guildID, chatRoleID, voiceRoleID)
	return errors.Wrap(err, "set reward roles")
}

// SaveCustomization reemplaza la customización completa (nil = NULL = default).
func (r *ConfigRepo) SaveCustomization(ctx context.Context, guildID string, c domain.Customization) error {
	_, err := r.db.exec(ctx, `
INSERT INTO leaderboard_config
  (guild_id, chat_color, voice_color, first_emoji, second_emoji, third_emoji, chat_title, voice_title)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (guild_id) DO UPDATE SET
  chat_color   = EXCLUDED.chat_color,
  voice_color  = EXCLUDED.voice_color,
  first_emoji  = EXCLUDED.first_emoji,
  second_emoji = EXCLUDED.second_emoji,
  third_emoji  = EXCLUDED.third_emoji,
  chat_title   = EXCLUDED.chat_title,
  voice_title  = EXCLUDED.voice_title
`, guildID, c.ChatColor, c.VoiceColor, c.FirstEmoji, c.SecondEmoji, c.ThirdEmoji, c.ChatTitle, c.VoiceTitle)
	return errors.Wrap(err, "save customization")
}
