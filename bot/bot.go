package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"promotion/bot/common"
	"promotion/bot/features/assignments"
	"promotion/bot/features/help"
	"promotion/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string // register commands to this guild only; empty registers globally
}

// Bot manages the Discord session and routes gateway events to features
type Bot struct {
	config    Config
	session   *discordgo.Session
	roles     *stateRoleResolver
	publisher service.EventPublisher

	// Feature modules
	assignments *assignments.Feature
	help        *help.Feature
}

// New creates the session and wires the handlers. Call Open to connect.
func New(config Config, store *service.AssignmentStore, confirmations *service.ConfirmationRegistry, publisher service.EventPublisher) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	// Guild members is privileged and needed for member updates
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
	dg.StateEnabled = true
	dg.State.TrackMembers = true
	dg.State.TrackRoles = true

	roles := &stateRoleResolver{session: dg}

	bot := &Bot{
		config:    config,
		session:   dg,
		roles:     roles,
		publisher: publisher,
	}

	bot.assignments = assignments.NewFeature(store, confirmations, roles)
	bot.help = help.NewFeature()

	dg.AddHandler(bot.handleReady)
	dg.AddHandler(bot.handleGuildCreate)
	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.handleInteractions)
	dg.AddHandler(bot.handleGuildMemberUpdate)

	return bot, nil
}

// Open connects to the gateway and registers the slash commands
func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	if err := b.registerCommands(); err != nil {
		b.session.Close()
		return fmt.Errorf("error registering commands: %w", err)
	}
	return nil
}

// Close gracefully shuts down the bot
func (b *Bot) Close() error {
	return b.session.Close()
}

// Session returns the Discord session, which also sends announcements
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

// RoleResolver returns the cache-first role lookup used by features
func (b *Bot) RoleResolver() service.RoleResolver {
	return b.roles
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.WithFields(log.Fields{
		"user":   r.User.String(),
		"guilds": len(r.Guilds),
	}).Info("Connected to Discord")
}

// handleGuildCreate requests the guild's member list so role changes of
// members who have not spoken yet still arrive with their previous roles
func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if g.Unavailable {
		return
	}
	if err := s.RequestGuildMembers(g.ID, "", 0, "", false); err != nil {
		log.WithFields(log.Fields{
			"guild_id": g.ID,
		}).WithError(err).Warn("Failed to request guild members")
		return
	}
	log.WithFields(log.Fields{
		"guild_id":   g.ID,
		"guild_name": g.Name,
	}).Debug("Requested guild members")
}

// handleCommands routes slash commands to appropriate handlers
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	defer recoverInteraction(s, i)

	switch i.ApplicationCommandData().Name {
	case "assign", "view_assignments", "remove_assignment":
		b.assignments.HandleCommand(s, i)
	case "help":
		b.help.HandleCommand(s, i)
	}
}

// handleInteractions routes component interactions to appropriate features
func (b *Bot) handleInteractions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	defer recoverInteraction(s, i)

	customID := i.MessageComponentData().CustomID
	switch {
	case strings.HasPrefix(customID, assignments.ComponentPrefix):
		b.assignments.HandleInteraction(s, i)
	}
}

// handleGuildMemberUpdate publishes the roles a member just received
func (b *Bot) handleGuildMemberUpdate(s *discordgo.Session, m *discordgo.GuildMemberUpdate) {
	event, ok := service.MemberRolesAdded(m)
	if !ok {
		if m.Member != nil && m.BeforeUpdate == nil {
			log.WithFields(log.Fields{
				"guild_id": m.GuildID,
			}).Debug("Skipping member update without cached previous state")
		}
		return
	}

	b.publisher.Emit(context.Background(), event)
}

// recoverInteraction turns a panic in a handler into a logged error and an
// ephemeral notice
func recoverInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	r := recover()
	if r == nil {
		return
	}

	log.WithFields(log.Fields{
		"guild_id":    i.GuildID,
		"user_id":     common.InteractionUserID(i),
		"interaction": common.InteractionName(i),
		"panic":       fmt.Sprint(r),
	}).Errorf("Recovered from panic in interaction handler\n%s", debug.Stack())

	common.RespondWithError(s, i, "Something went wrong. Please try again later.")
}
