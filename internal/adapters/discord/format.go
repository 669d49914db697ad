package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hako/durafmt"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jose-valero/activity-leaderboard-bot/internal/app/service"
	"github.com/jose-valero/activity-leaderboard-bot/internal/domain"
)

var printer = message.NewPrinter(language.Spanish)

// fmtCount: 12345 -> "12.345"
func fmtCount(n int64) string { return printer.Sprintf("%d", n) }

var unidades, errUnidades = durafmt.DefaultUnitsCoder.Decode(
	"año:años,semana:semanas,día:días,hora:horas,minuto:minutos,segundo:segundos,milisegundo:milisegundos,microsegundo:microsegundos")

// fmtMinutes: 125 -> "2 horas 5 minutos"
func fmtMinutes(m int64) string {
	if m <= 0 {
		return "0 min"
	}
	d := durafmt.Parse(time.Duration(m) * time.Minute).LimitFirstN(2)
	if errUnidades != nil {
		return d.String()
	}
	return d.Format(unidades)
}

func fmtValue(k domain.Kind, v int64) string {
	if k == domain.KindVoice {
		return fmtMinutes(v)
	}
	return fmtCount(v) + " msgs"
}

func rankPrefix(rank int, emojis [3]string) string {
	if rank >= 1 && rank <= 3 {
		return emojis[rank-1]
	}
	return fmt.Sprintf("`#%d`", rank)
}

func streakSuffix(streak int) string {
	if streak < 2 {
		return ""
	}
	return fmt.Sprintf(" · 🔥 %d", streak)
}

// rankLines arma el cuerpo de un ranking; value decide cómo se muestra cada valor.
func rankLines(entries []service.Entry, emojis [3]string, value func(service.Entry) string) string {
	if len(entries) == 0 {
		return "Todavía no hay actividad."
	}
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s **%s** — %s%s\n", rankPrefix(e.Rank, emojis), e.DisplayName, value(e), streakSuffix(e.CurrentStreak))
	}
	return b.String()
}

// renderPanel: embed del panel semanal de chat o de voz.
func renderPanel(p service.Panel) *discordgo.MessageEmbed {
	title, color := p.Theme.ChatTitle, p.Theme.ChatColor
	if p.Kind == domain.KindVoice {
		title, color = p.Theme.VoiceTitle, p.Theme.VoiceColor
	}
	return &discordgo.MessageEmbed{
		Title:       title,
		Color:       color,
		Description: rankLines(p.Entries, p.Theme.RankEmojis, func(e service.Entry) string { return fmtValue(p.Kind, e.Value) }),
		Footer:      &discordgo.MessageEmbedFooter{Text: "Semana actual · se actualiza cada pocos minutos"},
		Timestamp:   p.UpdatedAt.Format(time.RFC3339),
	}
}

func renderTop(m domain.Metric, entries []service.Entry, theme domain.Theme) *discordgo.MessageEmbed {
	color := theme.ChatColor
	if m.Kind == domain.KindVoice {
		color = theme.VoiceColor
	}
	return &discordgo.MessageEmbed{
		Title:       "🏆 " + m.String(),
		Color:       color,
		Description: rankLines(entries, theme.RankEmojis, func(e service.Entry) string { return fmtValue(m.Kind, e.Value) }),
	}
}

func renderBalanced(entries []service.Entry, theme domain.Theme) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "⚖️ balanced",
		Color: theme.ChatColor,
		Description: rankLines(entries, theme.RankEmojis, func(e service.Entry) string {
			return printer.Sprintf("%.1f pts", e.Score)
		}),
	}
}

func renderStreaks(entries []service.Entry, theme domain.Theme) *discordgo.MessageEmbed {
	var b strings.Builder
	if len(entries) == 0 {
		b.WriteString("Nadie tiene una racha activa.")
	}
	for _, e := range entries {
		fmt.Fprintf(&b, "%s **%s** — 🔥 %d días (máx %d)\n", rankPrefix(e.Rank, theme.RankEmojis), e.DisplayName, e.CurrentStreak, e.LongestStreak)
	}
	return &discordgo.MessageEmbed{
		Title:       "🔥 Rachas",
		Color:       theme.ChatColor,
		Description: b.String(),
	}
}

func renderProfile(p service.Profile, theme domain.Theme) *discordgo.MessageEmbed {
	field := func(name string, c domain.ActivityCounter) *discordgo.MessageEmbedField {
		return &discordgo.MessageEmbedField{
			Name: name,
			Value: fmt.Sprintf("Hoy: %s\nSemana: %s\nMes: %s\nTotal: %s\nRacha: %d (máx %d)",
				fmtValue(c.Kind, c.Daily), fmtValue(c.Kind, c.Weekly), fmtValue(c.Kind, c.Monthly), fmtValue(c.Kind, c.AllTime),
				c.CurrentStreak, c.LongestStreak),
			Inline: true,
		}
	}
	return &discordgo.MessageEmbed{
		Title:  "📊 " + p.DisplayName,
		Color:  theme.ChatColor,
		Fields: []*discordgo.MessageEmbedField{field("💬 Chat", p.Message), field("🎙️ Voz", p.Voice)},
	}
}
