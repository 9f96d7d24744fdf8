package assignments

import (
	"context"
	"errors"

	"promotion/bot/common"
	"promotion/models"
	"promotion/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

var errNotRequester = errors.New("confirmation answered by someone other than the requester")

// commandOptions holds the optional values shared by assign and remove_assignment
type commandOptions struct {
	RoleID    string
	ChannelID string
	Message   string
}

func parseOptions(data discordgo.ApplicationCommandInteractionData) commandOptions {
	var opts commandOptions
	for _, opt := range data.Options {
		switch opt.Name {
		case "role":
			opts.RoleID = opt.RoleValue(nil, "").ID
		case "channel":
			opts.ChannelID = opt.ChannelValue(nil).ID
		case "message":
			opts.Message = opt.StringValue()
		}
	}
	return opts
}

// assignDefaults fills the channel and message /assign falls back to
func assignDefaults(opts commandOptions, invokingChannelID string) (commandOptions, error) {
	if opts.RoleID == "" {
		return opts, common.NewUserError(MissingRoleMessage, "assign invoked without a role")
	}
	if opts.ChannelID == "" {
		opts.ChannelID = invokingChannelID
	}
	if opts.Message == "" {
		opts.Message = models.DefaultAnnouncement
	}
	return opts, nil
}

func (f *Feature) handleAssign(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	opts, err := assignDefaults(parseOptions(i.ApplicationCommandData()), i.ChannelID)
	if err != nil {
		common.HandleError(s, i, err, false)
		return
	}

	if err := f.store.Create(ctx, i.GuildID, opts.RoleID, opts.ChannelID, opts.Message); err != nil {
		botErr := common.NewSystemError(err, "Failed to save assignment")
		botErr.Context = opts
		common.HandleError(s, i, botErr, false)
		return
	}

	if err := common.RespondEphemeral(s, i, AssignedMessage, nil); err != nil {
		log.Errorf("Error responding to assign command: %v", err)
	}
}

func (f *Feature) handleView(s *discordgo.Session, i *discordgo.InteractionCreate) {
	// role names may need a REST lookup each
	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Error deferring view_assignments command: %v", err)
		return
	}

	guild := f.store.Guild(i.GuildID)
	report := FormatAssignmentList(guild, func(roleID string) string {
		return f.roleName(i.GuildID, roleID)
	})

	chunks := common.SplitMessage(report, common.MaxMessageLength)
	if err := common.EditOriginalResponse(s, i.Interaction, chunks[0], nil); err != nil {
		botErr := common.NewSystemError(err, "Failed to send assignment list")
		botErr.Context = log.Fields{"chunks": len(chunks)}
		common.HandleError(s, i, botErr, true)
		return
	}
	for _, chunk := range chunks[1:] {
		common.FollowUpEphemeral(s, i, chunk)
	}
}

func (f *Feature) handleRemove(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := parseOptions(i.ApplicationCommandData())
	req := service.NewDeleteRequest(opts.RoleID, opts.ChannelID, opts.Message)

	interaction := i.Interaction
	content, confirmation := f.openRemoval(i.GuildID, common.InteractionUserID(i), req, func(c *service.Confirmation) {
		if err := common.EditOriginalResponse(s, interaction, ExpiredMessage, closedComponents(nil, c.ID)); err != nil {
			log.WithFields(log.Fields{
				"confirmation_id": c.ID,
				"guild_id":        c.GuildID,
			}).WithError(err).Warn("Failed to mark removal prompt as expired")
		}
	})

	var components []discordgo.MessageComponent
	if confirmation != nil {
		components = confirmationComponents(confirmation.ID)
	}
	if err := common.RespondEphemeral(s, i, content, components); err != nil {
		log.Errorf("Error responding to remove_assignment command: %v", err)
		if confirmation != nil {
			f.confirmations.Resolve(confirmation.ID, service.ConfirmationCancelled)
		}
	}
}

// openRemoval validates a removal request and opens a confirmation for it.
// The returned confirmation is nil when the request is invalid or matches
// nothing; the text then explains why.
func (f *Feature) openRemoval(guildID, userID string, req service.DeleteRequest, onExpire func(*service.Confirmation)) (string, *service.Confirmation) {
	roleName := f.roleName(guildID, req.RoleID)

	if req.Scope == service.ScopeInvalid {
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"user_id":  userID,
		}).Warn("Removal requested with invalid parameters")
		return InvalidParametersMessage(), nil
	}

	if !f.store.Exists(guildID, req) {
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"scope":    req.Scope.String(),
		}).Warn("Removal requested for assignments that don't exist")
		return NotFoundMessage(req, roleName), nil
	}

	confirmation := f.confirmations.Open(guildID, userID, req, onExpire)
	log.WithFields(log.Fields{
		"confirmation_id": confirmation.ID,
		"guild_id":        guildID,
		"user_id":         userID,
		"scope":           req.Scope.String(),
		"open_prompts":    f.confirmations.Len(),
	}).Info("Removal prompt opened")
	return ConfirmationPrompt(req, roleName), confirmation
}

func (f *Feature) handleConfirmationButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	customID := i.MessageComponentData().CustomID
	action, confirmationID, ok := parseCustomID(customID)
	if !ok {
		log.Warnf("Unknown assignment component: %s", customID)
		return
	}

	content, err := f.answer(ctx, confirmationID, common.InteractionUserID(i), action == actionConfirm)
	if errors.Is(err, errNotRequester) {
		common.RespondWithError(s, i, NotRequesterMessage)
		return
	}
	if err != nil {
		log.WithFields(log.Fields{
			"confirmation_id": confirmationID,
			"guild_id":        i.GuildID,
		}).WithError(err).Error("Failed to remove assignments")
	}

	if err := common.UpdateComponentMessage(s, i, content, closedComponents(i.Message, confirmationID)); err != nil {
		log.Errorf("Error updating removal prompt: %v", err)
	}
}

// answer applies a button press to an open confirmation and returns the text
// that replaces the prompt. Only the requester may answer.
func (f *Feature) answer(ctx context.Context, confirmationID, userID string, confirm bool) (string, error) {
	confirmation, ok := f.confirmations.Lookup(confirmationID)
	if !ok {
		return InactiveMessage, nil
	}
	if confirmation.RequesterID != userID {
		return "", errNotRequester
	}

	to := service.ConfirmationCancelled
	if confirm {
		to = service.ConfirmationConfirmed
	}
	confirmation, ok = f.confirmations.Resolve(confirmationID, to)
	if !ok {
		return InactiveMessage, nil
	}

	fields := log.Fields{
		"confirmation_id": confirmation.ID,
		"guild_id":        confirmation.GuildID,
		"user_id":         userID,
		"scope":           confirmation.Request.Scope.String(),
	}
	if !confirm {
		log.WithFields(fields).Info("Removal cancelled")
		return CancelledMessage, nil
	}

	req := confirmation.Request
	roleName := f.roleName(confirmation.GuildID, req.RoleID)

	// the mapping may have changed while the prompt was open
	if _, err := f.store.Delete(ctx, confirmation.GuildID, req); err != nil {
		if errors.Is(err, service.ErrAssignmentNotFound) {
			log.WithFields(fields).Warn("Confirmed removal no longer matches anything")
			return NotFoundMessage(req, roleName), nil
		}
		return RemoveFailedMessage, err
	}

	log.WithFields(fields).Info("Removal confirmed")
	return DeletedMessage(req, roleName), nil
}
