package discord

import "github.com/bwmarrin/discordgo"

// isAdmin: dueño de la guild, bit Administrator o alguno de ADMIN_ROLE_IDS.
func (r *Router) isAdmin(s *discordgo.Session, ic *discordgo.InteractionCreate) bool {
	if ic.Member == nil || ic.Member.User == nil {
		return false
	}
	// Owner
	if g, _ := s.State.Guild(ic.GuildID); g != nil && ic.Member.User.ID == g.OwnerID {
		return true
	}

	// Permisos ya calculados por Discord para este canal
	if ic.Member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}

	// Administrator bit por roles
	roles, _ := s.GuildRoles(ic.GuildID)
	if hasAdminRole(ic.Member.Roles, roles) {
		return true
	}

	// Roles explícitos del bot
	return hasAnyRole(ic.Member.Roles, r.adminRoleIDs)
}

func (r *Router) requireAdminOrRoles(s *discordgo.Session, ic *discordgo.InteractionCreate) bool {
	if r.isAdmin(s, ic) {
		return true
	}
	ReplyEphemeral(s, ic, "🔒 No tienes permisos para esta acción.")
	return false
}

func hasAdminRole(memberRoles []string, guildRoles []*discordgo.Role) bool {
	var perms int64
	for _, rid := range memberRoles {
		for _, ro := range guildRoles {
			if ro.ID == rid {
				perms |= ro.Permissions
			}
		}
	}
	return perms&discordgo.PermissionAdministrator != 0
}

func hasAnyRole(memberRoles, want []string) bool {
	if len(want) == 0 {
		return false
	}
	has := make(map[string]struct{}, len(memberRoles))
	for _, rid := range memberRoles {
		has[rid] = struct{}{}
	}
	for _, w := range want {
		if _, ok := has[w]; ok {
			return true
		}
	}
	return false
}
