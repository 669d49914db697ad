// esta es la logica de InteractionApplicationCommand de discordgo
// aqui solo manejamos la interaccion del usuario y despachamos a los servicios
package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jose-valero/activity-leaderboard-bot/internal/domain"
)

// comandos que sólo ven admins; responden efímero
var adminCommands = map[string]bool{"glb": true, "gvclb": true, "lbroles": true, "lbcustomize": true}

const genericFailure = "⚠️ Algo salió mal, probá de nuevo en un rato."

func (r *Router) fail(s *discordgo.Session, ic *discordgo.InteractionCreate, ephemeral bool, err error, what string) {
	log.Error().Err(err).Str("guild", ic.GuildID).Str("user", invokerID(ic)).Msg(what)
	Reply(s, ic, ephemeral, genericFailure)
}

func (r *Router) handleSlashCommand(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	cmd := ic.ApplicationCommandData()
	uid := invokerID(ic)
	log.Debug().Str("cmd", cmd.Name).Str("user", uid).Str("guild", ic.GuildID).Msg("slash")
	defer step("cmd." + cmd.Name)()

	ephemeral := adminCommands[cmd.Name]
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Str("cmd", cmd.Name).Msg("panic in slash command")
			Reply(s, ic, ephemeral, "❌ Ocurrió un error inesperado procesando el comando. Contacta con un administrador.")
		}
	}()

	if ic.GuildID == "" {
		SendEphemeral(s, ic, "Este comando sólo funciona dentro de un servidor.")
		return
	}
	if ephemeral {
		_ = DeferEphemeral(s, ic)
	} else {
		_ = DeferPublic(s, ic)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()

	switch cmd.Name {

	//--> publica el panel (chat o voz) y lo deja fijo en ese canal
	case "glb", "gvclb":
		if !r.requireAdminOrRoles(s, ic) {
			return
		}
		channelID, ok := optID(ic, "channel")
		if !ok {
			channelID = ic.ChannelID
		}
		kind, set := domain.KindMessage, r.settings.SetChatChannel
		if cmd.Name == "gvclb" {
			kind, set = domain.KindVoice, r.settings.SetVoiceChannel
		}
		prev, err := r.settings.Config(ctx, ic.GuildID)
		if err != nil {
			r.fail(s, ic, true, err, "get config")
			return
		}
		if err := set(ctx, ic.GuildID, channelID); err != nil {
			r.fail(s, ic, true, err, "set display channel")
			return
		}
		if err := r.display.RefreshBoard(ctx, ic.GuildID, kind); err != nil {
			// sin panel publicado no dejamos el canal nuevo configurado
			if prevChannel, _, _ := prev.Board(kind); prevChannel != channelID {
				if rerr := set(ctx, ic.GuildID, prevChannel); rerr != nil {
					log.Warn().Err(rerr).Str("guild", ic.GuildID).Msg("restore display channel")
				}
			}
			if isMissingAccess(err) {
				log.Warn().Err(err).Str("guild", ic.GuildID).Str("channel", channelID).Msg("publish panel")
				ReplyEphemeral(s, ic, fmt.Sprintf("❌ No puedo publicar en <#%s>. Revisa que pueda ver el canal, enviar mensajes e insertar enlaces.", channelID))
				return
			}
			r.fail(s, ic, true, err, "publish panel")
			return
		}
		name := "chat"
		if kind == domain.KindVoice {
			name = "voz"
		}
		ReplyEphemeral(s, ic, fmt.Sprintf("✅ Leaderboard de %s publicado en <#%s>. Se actualiza solo.", name, channelID))

	case "streaks":
		entries, err := r.ranker.Streaks(ctx, ic.GuildID)
		if err != nil {
			r.fail(s, ic, false, err, "streaks")
			return
		}
		Reply(s, ic, false, "", renderStreaks(entries, r.theme(ctx, ic.GuildID)))

	case "mystreak":
		if !r.clickLimiter.Allow(uid) {
			ReplyEphemeral(s, ic, "⏳ Esperá un segundo…")
			return
		}
		target, ok := optID(ic, "user")
		if !ok {
			target = uid
		}
		p, err := r.ranker.Profile(ctx, ic.GuildID, target)
		if err != nil {
			r.fail(s, ic, false, err, "profile")
			return
		}
		Reply(s, ic, false, "", renderProfile(p, r.theme(ctx, ic.GuildID)))

	case "lbtop":
		if !r.clickLimiter.Allow(uid) {
			ReplyEphemeral(s, ic, "⏳ Esperá un segundo…")
			return
		}
		raw, _ := optStr(ic, "metric")
		embed, err := r.topEmbed(ctx, ic.GuildID, raw)
		if errors.Is(err, domain.ErrUnknownMetric) {
			ReplyEphemeral(s, ic, "❌ Métrica desconocida: `"+raw+"`. Usa p.ej. `weekly_messages`, `alltime_voice` o `balanced`.")
			return
		}
		if err != nil {
			r.fail(s, ic, false, err, "lbtop")
			return
		}
		Reply(s, ic, false, "", embed)

	//--> roles de premio; reconcilia esa guild en el momento
	case "lbroles":
		if !r.requireAdminOrRoles(s, ic) {
			return
		}
		cfg, err := r.settings.Config(ctx, ic.GuildID)
		if err != nil {
			r.fail(s, ic, true, err, "get config")
			return
		}
		chat, voice := cfg.ChatRoleID, cfg.VoiceRoleID
		if id, ok := optID(ic, "chat_role"); ok {
			chat = id
		}
		if id, ok := optID(ic, "voice_role"); ok {
			voice = id
		}
		if clear, _ := optBool(ic, "clear"); clear {
			chat, voice = "", ""
		}
		if err := r.settings.SetRewardRoles(ctx, ic.GuildID, chat, voice); err != nil {
			r.fail(s, ic, true, err, "set reward roles")
			return
		}
		cfg.ChatRoleID, cfg.VoiceRoleID = chat, voice
		sum := r.reconciler.ReconcileGuild(ctx, cfg, log.With().Str("cmd", "lbroles").Logger())

		msg := fmt.Sprintf("✅ Roles de premio\n• chat: %s\n• voz: %s", roleMention(chat), roleMention(voice))
		if sum.Failed > 0 {
			msg += "\n⚠️ No pude actualizar algunos roles. Revisa que mi rol esté por encima de los de premio."
		}
		ReplyEphemeral(s, ic, msg)

	case "lbcustomize":
		if !r.requireAdminOrRoles(s, ic) {
			return
		}
		r.handleCustomize(ctx, s, ic)

	default:
		ReplyEphemeral(s, ic, "Comando desconocido.")
	}
}

func (r *Router) theme(ctx context.Context, guildID string) domain.Theme {
	cfg, err := r.settings.Config(ctx, guildID)
	if err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("theme: config")
		return domain.DefaultTheme()
	}
	return cfg.Custom.Resolve()
}

func (r *Router) topEmbed(ctx context.Context, guildID, raw string) (*discordgo.MessageEmbed, error) {
	theme := r.theme(ctx, guildID)
	if strings.EqualFold(strings.TrimSpace(raw), domain.MetricBalanced) {
		entries, err := r.ranker.Balanced(ctx, guildID)
		if err != nil {
			return nil, err
		}
		return renderBalanced(entries, theme), nil
	}
	m, err := domain.ParseMetric(raw)
	if err != nil {
		return nil, err
	}
	entries, err := r.ranker.Top(ctx, guildID, m)
	if err != nil {
		return nil, err
	}
	return renderTop(m, entries, theme), nil
}

func (r *Router) handleCustomize(ctx context.Context, s *discordgo.Session, ic *discordgo.InteractionCreate) {
	if reset, _ := optBool(ic, "reset"); reset {
		if err := r.settings.ResetCustomization(ctx, ic.GuildID); err != nil {
			r.fail(s, ic, true, err, "reset customization")
			return
		}
		ReplyEphemeral(s, ic, "✅ Personalización reiniciada.", themePreview(domain.DefaultTheme()))
		go r.refreshInBackground(ic.GuildID)
		return
	}

	patch, err := customizationFrom(ic)
	if err != nil {
		ReplyEphemeral(s, ic, "❌ "+err.Error()+". Usa el formato `#RRGGBB`.")
		return
	}
	theme, err := r.settings.Customize(ctx, ic.GuildID, patch)
	if err != nil {
		r.fail(s, ic, true, err, "customize")
		return
	}
	ReplyEphemeral(s, ic, "✅ Personalización guardada.", themePreview(theme))
	go r.refreshInBackground(ic.GuildID)
}

// customizationFrom arma el patch con las opciones presentes.
func customizationFrom(ic *discordgo.InteractionCreate) (domain.Customization, error) {
	var c domain.Customization
	for name, dst := range map[string]**int{"chat_color": &c.ChatColor, "voice_color": &c.VoiceColor} {
		raw, ok := optStr(ic, name)
		if !ok {
			continue
		}
		v, err := domain.ParseColor(raw)
		if err != nil {
			return domain.Customization{}, errors.Wrap(err, name)
		}
		*dst = &v
	}
	for name, dst := range map[string]**string{
		"first_emoji":  &c.FirstEmoji,
		"second_emoji": &c.SecondEmoji,
		"third_emoji":  &c.ThirdEmoji,
		"chat_title":   &c.ChatTitle,
		"voice_title":  &c.VoiceTitle,
	} {
		if raw, ok := optStr(ic, name); ok {
			v := strings.TrimSpace(raw)
			*dst = &v
		}
	}
	return c, nil
}

func themePreview(t domain.Theme) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: t.ChatTitle + " / " + t.VoiceTitle,
		Color: t.ChatColor,
		Description: fmt.Sprintf("%s %s %s\nchat `#%06X` · voz `#%06X`",
			t.RankEmojis[0], t.RankEmojis[1], t.RankEmojis[2], t.ChatColor, t.VoiceColor),
	}
}

func roleMention(id string) string {
	if id == "" {
		return "—"
	}
	return "<@&" + id + ">"
}

func (r *Router) refreshInBackground(guildID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := r.display.RefreshGuild(ctx, guildID); err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("refresh after command")
	}
}
