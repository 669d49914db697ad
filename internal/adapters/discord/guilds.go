package discord

import (
	"context"
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/jose-valero/activity-leaderboard-bot/internal/app/service"
)

// códigos de error JSON de Discord que tratamos aparte
const (
	codeUnknownMessage = 10008
	codeUnknownMember  = 10007
	codeUnknownWebhook = 10015
	codeMissingAccess  = 50001
	codeMissingPerms   = 50013
)

func restCode(err error) (int, bool) {
	var re *discordgo.RESTError
	if errors.As(err, &re) && re.Message != nil {
		return re.Message.Code, true
	}
	return 0, false
}

func isNotFound(err error) bool {
	var re *discordgo.RESTError
	return errors.As(err, &re) && re.Response != nil && re.Response.StatusCode == http.StatusNotFound
}

// isMissingAccess: el bot no puede ver o escribir en el canal.
func isMissingAccess(err error) bool {
	code, ok := restCode(err)
	return ok && (code == codeMissingAccess || code == codeMissingPerms)
}

// Guilds habla con la API REST de Discord: roles, miembros y paneles.
// Implementa service.RoleAPI, service.NameResolver, service.MemberWeigher y service.Publisher.
type Guilds struct {
	s *discordgo.Session
}

func NewGuilds(s *discordgo.Session) *Guilds { return &Guilds{s: s} }

func (g *Guilds) member(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	if m, err := g.s.State.Member(guildID, userID); err == nil && m != nil {
		return m, nil
	}
	m, err := g.s.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	_ = g.s.State.MemberAdd(m)
	return m, nil
}

// RoleMembers pagina los miembros de la guild (necesita el intent GuildMembers).
func (g *Guilds) RoleMembers(ctx context.Context, guildID, roleID string) ([]string, error) {
	var (
		out   []string
		after string
	)
	for {
		page, err := g.s.GuildMembers(guildID, after, 1000, discordgo.WithContext(ctx))
		if err != nil {
			return nil, err
		}
		for _, m := range page {
			for _, rid := range m.Roles {
				if rid == roleID {
					out = append(out, m.User.ID)
					break
				}
			}
		}
		if len(page) < 1000 {
			return out, nil
		}
		after = page[len(page)-1].User.ID
	}
}

func (g *Guilds) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	return g.s.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func (g *Guilds) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	return g.s.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx))
}

// DisplayName: apodo en la guild, o nombre global; "" si no se pudo resolver.
func (g *Guilds) DisplayName(ctx context.Context, guildID, userID string) string {
	m, err := g.member(ctx, guildID, userID)
	if err != nil || m == nil || m.User == nil {
		return ""
	}
	return m.DisplayName()
}

// MemberWeight: 0 si ya no es miembro, 1 en otro caso (incluso si falla la API).
func (g *Guilds) MemberWeight(ctx context.Context, guildID, userID string) float64 {
	_, err := g.member(ctx, guildID, userID)
	if err == nil {
		return 1
	}
	if code, ok := restCode(err); ok && code == codeUnknownMember {
		return 0
	}
	log.Debug().Err(err).Str("guild", guildID).Str("user", userID).Msg("member weight lookup")
	return 1
}

// Publish edita el panel existente; si no hay o lo borraron, publica uno nuevo.
func (g *Guilds) Publish(ctx context.Context, channelID, messageID string, p service.Panel) (string, error) {
	stop := step("panel.publish")
	defer stop()

	embeds := []*discordgo.MessageEmbed{renderPanel(p)}
	if messageID != "" {
		_, err := g.s.ChannelMessageEditComplex(&discordgo.MessageEdit{
			Channel: channelID,
			ID:      messageID,
			Embeds:  &embeds,
		}, discordgo.WithContext(ctx))
		if err == nil {
			return messageID, nil
		}
		if code, _ := restCode(err); code != codeUnknownMessage && !isNotFound(err) {
			return "", err
		}
		log.Info().Str("guild", p.GuildID).Str("channel", channelID).Msg("panel borrado, se publica de nuevo")
	}

	msg, err := g.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{Embeds: embeds}, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}
