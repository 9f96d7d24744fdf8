package common

import (
	"github.com/bwmarrin/discordgo"
)

// IsAdministrator reports whether the interaction member holds the
// Administrator permission in the channel the interaction came from
func IsAdministrator(i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	return i.Member.Permissions&discordgo.PermissionAdministrator != 0
}
