package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// stateRoleResolver looks roles up in the session state and falls back to
// the REST API when the role is not cached
type stateRoleResolver struct {
	session *discordgo.Session
}

func (r *stateRoleResolver) Role(guildID, roleID string) (*discordgo.Role, error) {
	if role, err := r.session.State.Role(guildID, roleID); err == nil {
		return role, nil
	}

	roles, err := r.session.GuildRoles(guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roles of guild %s: %w", guildID, err)
	}
	for _, role := range roles {
		if role.ID == roleID {
			return role, nil
		}
	}
	return nil, fmt.Errorf("role %s not found in guild %s", roleID, guildID)
}
