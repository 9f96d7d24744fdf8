package service

import (
	"strings"

	"promotion/events"
	"promotion/models"

	"github.com/bwmarrin/discordgo"
)

// Supported template tokens
const (
	TokenUserMention = "{user_mention}"
	TokenUserTag     = "{user_tag}"
	TokenUserName    = "{user_name}"
	TokenUserID      = "{user_id}"
	TokenRoleMention = "{role_mention}"
	TokenRoleName    = "{role_name}"
	TokenRoleID      = "{role_id}"
)

// RenderTemplate replaces every known token with its value. Replacement is
// literal and happens in a single pass, so text inserted for one token is
// never scanned for another. Unknown {...} text is left as is.
func RenderTemplate(template string, c models.TemplateContext) string {
	return strings.NewReplacer(
		TokenUserMention, c.UserMention,
		TokenUserTag, c.UserTag,
		TokenUserName, c.UserName,
		TokenUserID, c.UserID,
		TokenRoleMention, c.RoleMention,
		TokenRoleName, c.RoleName,
		TokenRoleID, c.RoleID,
	).Replace(template)
}

// NewTemplateContext combines the member from a role grant with the granted role
func NewTemplateContext(event events.MemberRolesAddedEvent, role *discordgo.Role) models.TemplateContext {
	return models.TemplateContext{
		UserMention: event.UserMention,
		UserTag:     event.UserTag,
		UserName:    event.DisplayName,
		UserID:      event.UserID,
		RoleMention: role.Mention(),
		RoleName:    role.Name,
		RoleID:      role.ID,
	}
}
