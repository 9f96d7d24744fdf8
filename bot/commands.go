package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

var (
	adminPermission int64 = discordgo.PermissionAdministrator
	dmPermission          = false
	textChannels          = []discordgo.ChannelType{discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews}
)

// Commands returns the slash command definitions. Every command is limited
// to administrators and unavailable in DMs.
func Commands() []*discordgo.ApplicationCommand {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "assign",
			Description: "Assign a role to check for, a channel and a message.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "The role it should check for.",
					Required:    true,
				},
				{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "channel",
					Description:  "The channel it should send a message to.",
					ChannelTypes: textChannels,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message",
					Description: "The message it should send.",
				},
			},
		},
		{
			Name:        "view_assignments",
			Description: "View all the assignments made in your server.",
		},
		{
			Name:        "remove_assignment",
			Description: "Remove an assignment.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "The role it should delete the assignment of.",
				},
				{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "channel",
					Description:  "The channel where it sends messages.",
					ChannelTypes: textChannels,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message",
					Description: "The message it sends.",
				},
			},
		},
		{
			Name:        "help",
			Description: "How to use the bot.",
		},
	}

	for _, cmd := range commands {
		cmd.DefaultMemberPermissions = &adminPermission
		cmd.DMPermission = &dmPermission
	}
	return commands
}

// registerCommands replaces the application's commands with Commands()
func (b *Bot) registerCommands() error {
	registered, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.config.GuildID, Commands())
	if err != nil {
		return fmt.Errorf("cannot register commands: %w", err)
	}

	scope := "global"
	if b.config.GuildID != "" {
		scope = "guild " + b.config.GuildID
	}
	log.WithFields(log.Fields{
		"count": len(registered),
		"scope": scope,
	}).Info("Registered slash commands")
	return nil
}
