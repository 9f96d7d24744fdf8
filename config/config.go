package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"promotion/database"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Storage backends
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string `env:"DISCORD_TOKEN"`
	GuildID      string `env:"GUILD_ID"` // register commands to one guild instead of globally

	// Assignment storage
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"file"`
	AssignmentsDir string `env:"ASSIGNMENTS_DIR" envDefault:"assignments"`
	StrictLoad     bool   `env:"ASSIGNMENTS_STRICT_LOAD" envDefault:"false"`

	// Database configuration (postgres backend)
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseName string `env:"DATABASE_NAME"`

	// Removal prompts expire after this long
	ConfirmationTimeout time.Duration `env:"CONFIRMATION_TIMEOUT" envDefault:"5m"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	LogFile   string `env:"LOG_FILE"`

	// Environment
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load(true)
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// Load reads the configuration without touching the global instance
func Load() (*Config, error) {
	return load(true)
}

// LoadOffline reads the configuration for commands that never connect to
// Discord, so DISCORD_TOKEN is not required
func LoadOffline() (*Config, error) {
	return load(false)
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// UsesPostgres reports whether assignments are stored in PostgreSQL
func (c *Config) UsesPostgres() bool {
	return c.StorageBackend == BackendPostgres
}

// load loads configuration from an optional .env file and environment variables
func load(requireDiscord bool) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := config.validate(requireDiscord); err != nil {
		return nil, err
	}
	return config, nil
}

// validate checks required and enumerated values. The test environment only
// checks enumerations.
func (c *Config) validate(requireDiscord bool) error {
	switch c.StorageBackend {
	case BackendFile, BackendPostgres:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", BackendFile, BackendPostgres, c.StorageBackend)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be \"text\" or \"json\", got %q", c.LogFormat)
	}

	if c.ConfirmationTimeout <= 0 {
		return fmt.Errorf("CONFIRMATION_TIMEOUT must be positive, got %s", c.ConfirmationTimeout)
	}

	if c.Environment == "test" {
		return nil
	}

	if requireDiscord && c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.UsesPostgres() && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for the postgres backend")
	}
	if c.StorageBackend == BackendFile && c.AssignmentsDir == "" {
		return fmt.Errorf("ASSIGNMENTS_DIR cannot be empty")
	}
	return nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		StorageBackend:      BackendFile,
		AssignmentsDir:      getEnvWithDefault("ASSIGNMENTS_DIR", os.TempDir()),
		ConfirmationTimeout: 5 * time.Minute,
		LogLevel:            "debug",
		LogFormat:           "text",
		Environment:         "test",
	}
}
