package assignments

import (
	"fmt"
	"strings"

	"promotion/models"
	"promotion/service"
)

// Response texts
const (
	AssignedMessage      = "Role, channel and message successfully assigned."
	NoAssignmentsMessage = "No assignments have been made in this server."
	CancelledMessage     = "Fair enough, nothing was removed."
	ExpiredMessage       = "This confirmation expired without an answer. Nothing was removed."
	InactiveMessage      = "This confirmation is no longer active."
	RemoveFailedMessage  = "There was an error removing the assignment!"
	NotRequesterMessage  = "Only the person who ran the command can answer this prompt."
	AdminOnlyMessage     = "You need the Administrator permission to manage assignments."
	GuildOnlyMessage     = "This command can only be used in a server."
	MissingRoleMessage   = "Please pick a role to assign."

	irreversibleWarning = "**WARNING:** Any assignment you remove is **not recoverable.**"
)

// RemovalUsage lists the parameter combinations remove_assignment accepts
const RemovalUsage = `**No parameters** to remove every assignment in the server.
**Role** parameter to remove every assignment to that role.
**Role** and **channel** parameters to remove every assignment of that role in that channel.
**Role**, **channel** and **message** parameters to remove a specific message.
Only **channel** parameter to remove every assignment made in that channel.`

// InvalidParametersMessage explains a parameter combination that selects no scope
func InvalidParametersMessage() string {
	return "Those parameters can't be combined.\n\n" + RemovalUsage
}

// FormatAssignmentList renders a guild's assignments with roles and channels
// in ascending ID order and templates in the order they were added
func FormatAssignmentList(guild models.GuildAssignments, roleName func(roleID string) string) string {
	if guild.Count() == 0 {
		return NoAssignmentsMessage
	}

	var b strings.Builder
	for _, roleID := range guild.RoleIDs() {
		fmt.Fprintf(&b, "## %s\n", roleName(roleID))
		channels := guild[roleID]
		for _, channelID := range channels.ChannelIDs() {
			fmt.Fprintf(&b, "%s\n", channelMention(channelID))
			for _, template := range channels[channelID] {
				fmt.Fprintf(&b, "- %s\n", template)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// ConfirmationPrompt asks the requester to confirm a removal
func ConfirmationPrompt(req service.DeleteRequest, roleName string) string {
	var question string
	switch req.Scope {
	case service.ScopeGuild:
		question = "Are you ***absolutely sure*** that you want to delete ***EVERY*** assignment?\n*This cannot be reversed!*"
	case service.ScopeRole:
		question = fmt.Sprintf("Are you *sure* you want to delete all the assignments made to the %s role?", roleName)
	case service.ScopeRoleChannel:
		question = fmt.Sprintf("Are you *sure* you want to delete all the assignments from %s in %s?", roleName, channelMention(req.ChannelID))
	case service.ScopeMessage:
		question = fmt.Sprintf("Are you sure you want to remove the following message from %s in %s?\n%s", roleName, channelMention(req.ChannelID), req.Message)
	case service.ScopeChannel:
		question = fmt.Sprintf("Are you sure you want to remove every assignment in %s?", channelMention(req.ChannelID))
	default:
		return InvalidParametersMessage()
	}
	return irreversibleWarning + "\n\n" + question
}

// DeletedMessage reports a completed removal
func DeletedMessage(req service.DeleteRequest, roleName string) string {
	switch req.Scope {
	case service.ScopeGuild:
		return "Deleted every assignment successfully."
	case service.ScopeRole:
		return fmt.Sprintf("Deleted every assignment to the %s role successfully.", roleName)
	case service.ScopeRoleChannel:
		return fmt.Sprintf("Deleted every assignment from %s in %s successfully.", roleName, channelMention(req.ChannelID))
	case service.ScopeMessage:
		return fmt.Sprintf("Deleted \"%s\" from %s in %s successfully.", req.Message, roleName, channelMention(req.ChannelID))
	case service.ScopeChannel:
		return fmt.Sprintf("Deleted every assignment in %s successfully.", channelMention(req.ChannelID))
	default:
		return InvalidParametersMessage()
	}
}

// NotFoundMessage reports a removal whose target does not exist
func NotFoundMessage(req service.DeleteRequest, roleName string) string {
	switch req.Scope {
	case service.ScopeGuild:
		return NoAssignmentsMessage
	case service.ScopeRole:
		return fmt.Sprintf("The %s role doesn't have any assignments.", roleName)
	case service.ScopeRoleChannel:
		return fmt.Sprintf("%s doesn't have any assignments in %s.", roleName, channelMention(req.ChannelID))
	case service.ScopeMessage:
		return "Message not in assignment."
	case service.ScopeChannel:
		return "That channel doesn't have any assignments."
	default:
		return InvalidParametersMessage()
	}
}

func channelMention(channelID string) string {
	return "<#" + channelID + ">"
}
