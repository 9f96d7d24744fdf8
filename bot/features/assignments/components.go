package assignments

import (
	"strings"

	"promotion/bot/common"

	"github.com/bwmarrin/discordgo"
)

// ComponentPrefix prefixes the custom ID of every component this feature owns
const ComponentPrefix = "assignment_"

const (
	actionConfirm = "confirm"
	actionCancel  = "cancel"
)

// confirmationComponents builds the Confirm / Cancel row of a removal prompt
func confirmationComponents(confirmationID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		&discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				&discordgo.Button{
					Label:    "Confirm",
					Style:    discordgo.DangerButton,
					CustomID: ComponentPrefix + actionConfirm + "_" + confirmationID,
					Emoji:    &discordgo.ComponentEmoji{Name: "✅"},
				},
				&discordgo.Button{
					Label:    "Cancel",
					Style:    discordgo.SecondaryButton,
					CustomID: ComponentPrefix + actionCancel + "_" + confirmationID,
					Emoji:    &discordgo.ComponentEmoji{Name: "❌"},
				},
			},
		},
	}
}

// closedComponents returns the buttons of a finished prompt, disabled. The
// buttons of message are reused when it still carries them.
func closedComponents(message *discordgo.Message, confirmationID string) []discordgo.MessageComponent {
	if message != nil && len(message.Components) > 0 {
		return common.DisableComponents(message.Components)
	}
	return common.DisableComponents(confirmationComponents(confirmationID))
}

// parseCustomID splits "assignment_<action>_<confirmation id>"
func parseCustomID(customID string) (action string, confirmationID string, ok bool) {
	rest, found := strings.CutPrefix(customID, ComponentPrefix)
	if !found {
		return "", "", false
	}

	action, confirmationID, found = strings.Cut(rest, "_")
	if !found || confirmationID == "" {
		return "", "", false
	}

	switch action {
	case actionConfirm, actionCancel:
		return action, confirmationID, true
	default:
		return "", "", false
	}
}
