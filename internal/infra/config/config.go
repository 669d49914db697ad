package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DiscordToken string
	DiscordGuild string // opcional: registra los comandos sólo en esta guild

	DBDriver    string // postgres | sqlite3 | memory
	DatabaseURL string
	HTTPAddr    string // "off" desactiva la API

	Location        *time.Location
	RefreshInterval time.Duration
	AFKChannelID    string
	AdminRoleIDs    []string

	LogLevel  string
	LogFormat string // console | json

	VoiceSessionMaxAge time.Duration
}

// ConfigError: falta o es inválida una variable de entorno.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string { return fmt.Sprintf("config %s: %s", e.Key, e.Reason) }

func defaults(v *viper.Viper) {
	v.SetDefault("DB_DRIVER", "sqlite3")
	v.SetDefault("DATABASE_URL", "leaderboard.db")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("REFRESH_INTERVAL", "10m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("VOICE_SESSION_MAX_AGE", "24h")
}

// Load lee .env (si existe) y el entorno. requireToken=false para migrate / janitor.
func Load(requireToken bool) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	defaults(v)
	return fromViper(v, requireToken)
}

func fromViper(v *viper.Viper, requireToken bool) (Config, error) {
	cfg := Config{
		DiscordToken: strings.TrimSpace(v.GetString("DISCORD_BOT_TOKEN")),
		DiscordGuild: v.GetString("DISCORD_GUILD_ID"),
		DBDriver:     strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseURL:  v.GetString("DATABASE_URL"),
		HTTPAddr:     v.GetString("HTTP_ADDR"),
		AFKChannelID: v.GetString("AFK_CHANNEL_ID"),
		LogLevel:     strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat:    strings.ToLower(v.GetString("LOG_FORMAT")),
	}
	if requireToken && cfg.DiscordToken == "" {
		return Config{}, &ConfigError{Key: "DISCORD_BOT_TOKEN", Reason: "required"}
	}

	switch cfg.DBDriver {
	case "postgres", "pgx", "sqlite3", "sqlite", "memory":
	default:
		return Config{}, &ConfigError{Key: "DB_DRIVER", Reason: fmt.Sprintf("unsupported driver %q", cfg.DBDriver)}
	}
	if cfg.DBDriver != "memory" && cfg.DatabaseURL == "" {
		return Config{}, &ConfigError{Key: "DATABASE_URL", Reason: "required"}
	}

	loc, err := time.LoadLocation(v.GetString("TIMEZONE"))
	if err != nil {
		return Config{}, &ConfigError{Key: "TIMEZONE", Reason: err.Error()}
	}
	cfg.Location = loc

	if cfg.RefreshInterval, err = duration(v, "REFRESH_INTERVAL"); err != nil {
		return Config{}, err
	}
	if cfg.VoiceSessionMaxAge, err = duration(v, "VOICE_SESSION_MAX_AGE"); err != nil {
		return Config{}, err
	}

	for _, id := range strings.Split(v.GetString("ADMIN_ROLE_IDS"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			cfg.AdminRoleIDs = append(cfg.AdminRoleIDs, id)
		}
	}
	return cfg, nil
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, &ConfigError{Key: key, Reason: err.Error()}
	}
	if d <= 0 {
		return 0, &ConfigError{Key: key, Reason: "must be positive"}
	}
	return d, nil
}

// HTTPEnabled: HTTP_ADDR vacío u "off" desactiva la API.
func (c Config) HTTPEnabled() bool {
	return c.HTTPAddr != "" && !strings.EqualFold(c.HTTPAddr, "off")
}

// BotAuth agrega el prefijo "Bot " si falta.
func (c Config) BotAuth() string {
	if strings.HasPrefix(strings.ToLower(c.DiscordToken), "bot ") {
		return c.DiscordToken
	}
	return "Bot " + c.DiscordToken
}
