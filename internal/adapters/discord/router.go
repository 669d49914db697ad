package discord

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/jose-valero/activity-leaderboard-bot/internal/app/service"
)

// Intents que necesita el bot: mensajes y voz para contar, miembros para los roles de premio.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildVoiceStates |
	discordgo.IntentsGuildMembers

type Router struct {
	s       *discordgo.Session
	guildID string // "" = comandos globales

	tracker    *service.Tracker
	ranker     *service.Ranker
	display    *service.Display
	settings   *service.Settings
	reconciler *service.Reconciler

	adminRoleIDs []string
	clickLimiter *userLimiter
}

func NewRouter(
	s *discordgo.Session,
	guildID string,
	tracker *service.Tracker,
	ranker *service.Ranker,
	display *service.Display,
	settings *service.Settings,
	reconciler *service.Reconciler,
	adminRoleIDs []string,
) *Router {
	return &Router{
		s:            s,
		guildID:      guildID,
		tracker:      tracker,
		ranker:       ranker,
		display:      display,
		settings:     settings,
		reconciler:   reconciler,
		adminRoleIDs: adminRoleIDs,
		clickLimiter: newUserLimiter(3 * time.Second),
	}
}

// Register pisa los comandos de la app (en la guild de dev o globales).
func (r *Router) Register() error {
	appID := r.s.State.User.ID
	if _, err := r.s.ApplicationCommandBulkOverwrite(appID, r.guildID, Commands); err != nil {
		return err
	}
	log.Info().Int("n", len(Commands)).Str("guild", r.guildID).Msg("comandos registrados")
	return nil
}

func (r *Router) Handlers() {
	r.s.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		if ic.Type != discordgo.InteractionApplicationCommand {
			return
		}
		r.handleSlashCommand(s, ic)
	})
	r.s.AddHandler(r.onMessageCreate)
	r.s.AddHandler(r.onVoiceStateUpdate)
	r.s.AddHandler(r.onGuildCreate)
}
