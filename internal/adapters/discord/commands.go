package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/activity-leaderboard-bot/internal/domain"
)

var textChannels = []discordgo.ChannelType{discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews}

func metricChoices() []*discordgo.ApplicationCommandOptionChoice {
	var out []*discordgo.ApplicationCommandOptionChoice
	for _, k := range []domain.Kind{domain.KindMessage, domain.KindVoice} {
		for _, w := range domain.Windows {
			m := domain.Metric{Kind: k, Window: w}.String()
			out = append(out, &discordgo.ApplicationCommandOptionChoice{Name: m, Value: m})
		}
	}
	return append(out, &discordgo.ApplicationCommandOptionChoice{Name: domain.MetricBalanced, Value: domain.MetricBalanced})
}

func channelOpt(desc string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionChannel,
		Name:         "channel",
		Description:  desc,
		ChannelTypes: textChannels,
	}
}

func strOpt(name, desc string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionString, Name: name, Description: desc}
}

var Commands = []*discordgo.ApplicationCommand{
	{
		Name:        "glb",
		Description: "Publica el leaderboard de chat en un canal (admins)",
		Options:     []*discordgo.ApplicationCommandOption{channelOpt("Canal del panel (por defecto, este)")},
	},
	{
		Name:        "gvclb",
		Description: "Publica el leaderboard de voz en un canal (admins)",
		Options:     []*discordgo.ApplicationCommandOption{channelOpt("Canal del panel (por defecto, este)")},
	},
	{
		Name:        "streaks",
		Description: "Top 10 de rachas de actividad",
	},
	{
		Name:        "mystreak",
		Description: "Tu racha y contadores (o los de otro usuario)",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "Usuario a consultar",
		}},
	},
	{
		Name:        "lbroles",
		Description: "Roles de premio para el #1 semanal (admins)",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionRole, Name: "chat_role", Description: "Rol para el #1 de mensajes"},
			{Type: discordgo.ApplicationCommandOptionRole, Name: "voice_role", Description: "Rol para el #1 de voz"},
			{Type: discordgo.ApplicationCommandOptionBoolean, Name: "clear", Description: "Quitar ambos roles de premio"},
		},
	},
	{
		Name:        "lbtop",
		Description: "Top 10 de una métrica",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "metric",
			Description: "Métrica, p.ej. weekly_messages",
			Required:    true,
			Choices:     metricChoices(),
		}},
	},
	{
		Name:        "lbcustomize",
		Description: "Colores, emojis y títulos de los paneles (admins)",
		Options: []*discordgo.ApplicationCommandOption{
			strOpt("chat_color", "Color del panel de chat (#RRGGBB)"),
			strOpt("voice_color", "Color del panel de voz (#RRGGBB)"),
			strOpt("first_emoji", "Emoji del #1"),
			strOpt("second_emoji", "Emoji del #2"),
			strOpt("third_emoji", "Emoji del #3"),
			strOpt("chat_title", "Título del panel de chat"),
			strOpt("voice_title", "Título del panel de voz"),
			{Type: discordgo.ApplicationCommandOptionBoolean, Name: "reset", Description: "Volver a los valores por defecto"},
		},
	},
}
