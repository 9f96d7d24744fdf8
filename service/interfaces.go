package service

import (
	"context"

	"promotion/events"
	"promotion/models"

	"github.com/bwmarrin/discordgo"
)

// AssignmentRepository defines the interface for assignment persistence.
// One document is stored per guild.
type AssignmentRepository interface {
	// LoadAll reads every guild document and merges them. On failure the
	// guilds read before the failing document are still returned.
	LoadAll(ctx context.Context) (models.Assignments, error)

	// SaveGuild overwrites the document of a single guild
	SaveGuild(ctx context.Context, guildID string, assignments models.GuildAssignments) error
}

// AssignmentReader is the read side of the assignment store used by the dispatcher
type AssignmentReader interface {
	Role(guildID, roleID string) models.RoleAssignments
}

// MessageSender delivers announcement text to a channel
type MessageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// RoleResolver looks up a guild role by ID
type RoleResolver interface {
	Role(guildID, roleID string) (*discordgo.Role, error)
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event)
}
