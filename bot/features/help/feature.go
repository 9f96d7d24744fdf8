package help

import (
	"fmt"

	"promotion/bot/features/assignments"
	"promotion/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Feature answers /help with static usage text
type Feature struct{}

// NewFeature creates a new help feature instance
func NewFeature() *Feature {
	return &Feature{}
}

// HandleCommand responds to /help
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: Text(),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error responding to help command: %v", err)
	}
}

const intro = "There are only three other commands, `/assign`, `/view_assignments` and `/remove_assignment`."

const body = `When using /assign, you can leave out the channel to default to the channel you ran the command in, or the message to default to a fallback message. In the message, you can use the following tokens:
**%s:** Pings the user that got the role.
**%s:** Writes the handle of the user that got the role.
**%s:** Writes the display name of the user that got the role.
**%s:** Writes the user ID of the user that got the role.
**%s:** Pings the received role. **(not recommended)**
**%s:** Writes the name of the received role.
**%s:** Writes the role ID of the received role.

When using /remove_assignment, here are the possible parameter combinations:
%s`

// Text returns the help message
func Text() string {
	return intro + "\n\n" + fmt.Sprintf(body,
		service.TokenUserMention,
		service.TokenUserTag,
		service.TokenUserName,
		service.TokenUserID,
		service.TokenRoleMention,
		service.TokenRoleName,
		service.TokenRoleID,
		assignments.RemovalUsage,
	)
}
