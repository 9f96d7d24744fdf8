package service

import (
	"context"

	"promotion/events"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// DispatchResult counts the announcements attempted for one role grant event
type DispatchResult struct {
	Sent   int
	Failed int
}

// RoleChangeDispatcher posts the configured announcements when members gain roles
type RoleChangeDispatcher struct {
	assignments AssignmentReader
	sender      MessageSender
	roles       RoleResolver
}

// NewRoleChangeDispatcher creates a dispatcher reading from the given store
func NewRoleChangeDispatcher(assignments AssignmentReader, sender MessageSender, roles RoleResolver) *RoleChangeDispatcher {
	return &RoleChangeDispatcher{
		assignments: assignments,
		sender:      sender,
		roles:       roles,
	}
}

// AddedRoles returns the roles in after that are not in before, in after's order
func AddedRoles(before, after []string) []string {
	had := make(map[string]struct{}, len(before))
	for _, roleID := range before {
		had[roleID] = struct{}{}
	}

	var added []string
	for _, roleID := range after {
		if _, ok := had[roleID]; !ok {
			added = append(added, roleID)
		}
	}
	return added
}

// MemberRolesAdded builds the role grant event for a member update. It
// returns false when the previous member state is unknown or no role was added.
func MemberRolesAdded(update *discordgo.GuildMemberUpdate) (events.MemberRolesAddedEvent, bool) {
	if update == nil || update.Member == nil || update.Member.User == nil || update.BeforeUpdate == nil {
		return events.MemberRolesAddedEvent{}, false
	}

	added := AddedRoles(update.BeforeUpdate.Roles, update.Member.Roles)
	if len(added) == 0 {
		return events.MemberRolesAddedEvent{}, false
	}

	return events.MemberRolesAddedEvent{
		GuildID:     update.GuildID,
		UserID:      update.User.ID,
		UserMention: update.User.Mention(),
		UserTag:     update.User.String(),
		DisplayName: update.Member.DisplayName(),
		AddedRoles:  added,
	}, true
}

// HandleEvent adapts Dispatch to the event bus
func (d *RoleChangeDispatcher) HandleEvent(ctx context.Context, event events.Event) {
	if rolesAdded, ok := event.(events.MemberRolesAddedEvent); ok {
		d.Dispatch(ctx, rolesAdded)
	}
}

// Dispatch renders and sends every template configured for the added roles.
// A failed send is logged and the remaining messages are still sent.
func (d *RoleChangeDispatcher) Dispatch(ctx context.Context, event events.MemberRolesAddedEvent) DispatchResult {
	var result DispatchResult

	for _, roleID := range event.AddedRoles {
		channels := d.assignments.Role(event.GuildID, roleID)
		if len(channels) == 0 {
			continue
		}

		role := d.resolveRole(event.GuildID, roleID)
		templateCtx := NewTemplateContext(event, role)

		for _, channelID := range channels.ChannelIDs() {
			for _, template := range channels[channelID] {
				if ctx.Err() != nil {
					return result
				}

				fields := log.Fields{
					"guild_id":   event.GuildID,
					"role_id":    roleID,
					"channel_id": channelID,
					"user_id":    event.UserID,
				}

				if _, err := d.sender.ChannelMessageSend(channelID, RenderTemplate(template, templateCtx)); err != nil {
					result.Failed++
					log.WithFields(fields).WithError(err).Error("Failed to send role announcement")
					continue
				}
				result.Sent++
				log.WithFields(fields).Debug("Sent role announcement")
			}
		}
	}

	if result.Sent > 0 || result.Failed > 0 {
		log.WithFields(log.Fields{
			"guild_id": event.GuildID,
			"user_id":  event.UserID,
			"sent":     result.Sent,
			"failed":   result.Failed,
		}).Info("Processed role grant")
	}
	return result
}

// resolveRole falls back to a bare role carrying only the ID when the
// role cannot be looked up, so announcements still go out.
func (d *RoleChangeDispatcher) resolveRole(guildID, roleID string) *discordgo.Role {
	role, err := d.roles.Role(guildID, roleID)
	if err != nil || role == nil {
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"role_id":  roleID,
		}).WithError(err).Warn("Could not resolve role, announcing with its ID")
		return &discordgo.Role{ID: roleID, Name: roleID}
	}
	return role
}
