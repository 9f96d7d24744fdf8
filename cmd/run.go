package cmd

import (
	"context"
	"fmt"
	"time"

	"promotion/bot"
	"promotion/config"
	"promotion/database"
	"promotion/events"
	"promotion/repository"
	"promotion/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()

	logFile, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()

	log.Info("Starting promotion bot...")

	repo, closeRepo, err := openRepository(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer closeRepo()

	// Initialize event bus
	eventBus := events.NewBus()

	// Load assignments
	store := service.NewAssignmentStore(repo, eventBus)
	if err := store.Load(ctx); err != nil {
		if cfg.StrictLoad {
			return fmt.Errorf("failed to load assignments: %w", err)
		}
		log.WithError(err).Error("Failed to load every assignment document, continuing with the ones that were read")
	}

	confirmations := service.NewConfirmationRegistry(cfg.ConfirmationTimeout)
	defer confirmations.Close()

	// Initialize Discord bot
	log.Info("Initializing Discord bot...")
	discordBot, err := bot.New(bot.Config{
		Token:   cfg.DiscordToken,
		GuildID: cfg.GuildID,
	}, store, confirmations, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}

	dispatcher := service.NewRoleChangeDispatcher(store, discordBot.Session(), discordBot.RoleResolver())
	eventBus.Subscribe(events.EventTypeMemberRolesAdded, dispatcher.HandleEvent)
	eventBus.Subscribe(events.EventTypeAssignmentsChanged, logAssignmentChange)

	if err := discordBot.Open(); err != nil {
		return fmt.Errorf("failed to connect Discord bot: %w", err)
	}
	log.Infof("Bot is running in %s mode...", cfg.Environment)

	// Wait for context cancellation
	<-ctx.Done()

	log.Info("Shutting down bot...")
	if err := discordBot.Close(); err != nil {
		log.Errorf("Error closing Discord bot: %v", err)
	}

	// Mutations are persisted before they return, so this only catches
	// guilds whose last write failed
	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Save(saveCtx); err != nil {
		log.WithError(err).Error("Failed to save assignments on shutdown")
	}

	log.Info("Shutdown completed")
	return nil
}

// openRepository builds the configured assignment backend. The returned
// function releases its resources.
func openRepository(ctx context.Context, cfg *config.Config, migrate bool) (service.AssignmentRepository, func(), error) {
	if !cfg.UsesPostgres() {
		repo, err := repository.NewFileAssignmentRepository(cfg.AssignmentsDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open assignments directory: %w", err)
		}
		log.WithField("dir", repo.Dir()).Info("Using file assignment storage")
		return repo, func() {}, nil
	}

	databaseURL := cfg.GetDatabaseURL()
	if migrate {
		if err := database.MigrateUp(databaseURL); err != nil {
			return nil, nil, err
		}
	}

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Using postgres assignment storage")

	return repository.NewPostgresAssignmentRepository(db), func() {
		log.Info("Closing database connection...")
		db.Close()
	}, nil
}

func logAssignmentChange(ctx context.Context, event events.Event) {
	changed, ok := event.(events.AssignmentsChangedEvent)
	if !ok {
		return
	}

	log.WithFields(log.Fields{
		"guild_id":   changed.GuildID,
		"action":     changed.Action,
		"scope":      changed.Scope,
		"role_id":    changed.RoleID,
		"channel_id": changed.ChannelID,
		"remaining":  changed.Remaining,
	}).Debug("Assignments changed")
}
