package assignments

import (
	"fmt"

	"promotion/bot/common"
	"promotion/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles the assign, view_assignments and remove_assignment commands
type Feature struct {
	store         *service.AssignmentStore
	confirmations *service.ConfirmationRegistry
	roles         service.RoleResolver
}

// NewFeature creates a new assignments feature instance
func NewFeature(store *service.AssignmentStore, confirmations *service.ConfirmationRegistry, roles service.RoleResolver) *Feature {
	return &Feature{
		store:         store,
		confirmations: confirmations,
		roles:         roles,
	}
}

// HandleCommand routes the slash commands owned by this feature
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		common.RespondWithError(s, i, GuildOnlyMessage)
		return
	}
	if !common.IsAdministrator(i) {
		common.RespondWithError(s, i, AdminOnlyMessage)
		return
	}

	switch i.ApplicationCommandData().Name {
	case "assign":
		f.handleAssign(s, i)
	case "view_assignments":
		f.handleView(s, i)
	case "remove_assignment":
		f.handleRemove(s, i)
	}
}

// HandleInteraction handles the buttons of removal prompts
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	f.handleConfirmationButton(s, i)
}

// roleName returns the role's current name, or a placeholder when the role
// can no longer be found
func (f *Feature) roleName(guildID, roleID string) string {
	if roleID == "" {
		return ""
	}
	if f.roles != nil {
		if role, err := f.roles.Role(guildID, roleID); err == nil && role != nil {
			return role.Name
		}
	}
	return fmt.Sprintf("Unknown role %s", roleID)
}
