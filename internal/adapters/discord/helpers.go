package discord

import (
	"github.com/bwmarrin/discordgo"
)

// opts aplana las opciones del comando (incluye las de un subcomando).
func opts(ic *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	out := map[string]*discordgo.ApplicationCommandInteractionDataOption{}
	if ic.Type != discordgo.InteractionApplicationCommand {
		return out
	}
	for _, o := range ic.ApplicationCommandData().Options {
		if o.Type == discordgo.ApplicationCommandOptionSubCommand {
			for _, so := range o.Options {
				out[so.Name] = so
			}
			continue
		}
		out[o.Name] = o
	}
	return out
}

func optStr(ic *discordgo.InteractionCreate, name string) (string, bool) {
	o, ok := opts(ic)[name]
	if !ok || o.Type != discordgo.ApplicationCommandOptionString {
		return "", false
	}
	return o.StringValue(), true
}

// optID devuelve el id de una opción user / channel / role (el valor crudo es el snowflake).
func optID(ic *discordgo.InteractionCreate, name string) (string, bool) {
	o, ok := opts(ic)[name]
	if !ok {
		return "", false
	}
	switch o.Type {
	case discordgo.ApplicationCommandOptionUser,
		discordgo.ApplicationCommandOptionChannel,
		discordgo.ApplicationCommandOptionRole,
		discordgo.ApplicationCommandOptionMentionable:
		id, _ := o.Value.(string)
		return id, id != ""
	}
	return "", false
}

func optBool(ic *discordgo.InteractionCreate, name string) (bool, bool) {
	o, ok := opts(ic)[name]
	if !ok || o.Type != discordgo.ApplicationCommandOptionBoolean {
		return false, false
	}
	return o.BoolValue(), true
}

func invokerID(ic *discordgo.InteractionCreate) string {
	if ic.Member != nil && ic.Member.User != nil {
		return ic.Member.User.ID
	}
	if ic.User != nil {
		return ic.User.ID
	}
	return ""
}
