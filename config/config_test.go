package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable the config reads for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DISCORD_TOKEN", "GUILD_ID", "STORAGE_BACKEND", "ASSIGNMENTS_DIR",
		"ASSIGNMENTS_STRICT_LOAD", "DATABASE_URL", "DATABASE_NAME",
		"CONFIRMATION_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT", "LOG_FILE", "ENVIRONMENT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_TOKEN", "token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.DiscordToken)
	assert.Equal(t, BackendFile, cfg.StorageBackend)
	assert.Equal(t, "assignments", cfg.AssignmentsDir)
	assert.False(t, cfg.StrictLoad)
	assert.Equal(t, 5*time.Minute, cfg.ConfirmationTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.UsesPostgres())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("GUILD_ID", "123")
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432")
	t.Setenv("DATABASE_NAME", "promotion")
	t.Setenv("ASSIGNMENTS_STRICT_LOAD", "true")
	t.Setenv("CONFIRMATION_TIMEOUT", "90s")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "123", cfg.GuildID)
	assert.True(t, cfg.UsesPostgres())
	assert.True(t, cfg.StrictLoad)
	assert.Equal(t, 90*time.Second, cfg.ConfirmationTimeout)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "postgres://u:p@db:5432/promotion?sslmode=disable", cfg.GetDatabaseURL())
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	dir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DISCORD_TOKEN=from-file\nASSIGNMENTS_DIR=data\n"), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.DiscordToken)
	assert.Equal(t, "data", cfg.AssignmentsDir)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing token",
			env:     map[string]string{},
			wantErr: "DISCORD_TOKEN is required",
		},
		{
			name:    "postgres without url",
			env:     map[string]string{"DISCORD_TOKEN": "t", "STORAGE_BACKEND": "postgres"},
			wantErr: "DATABASE_URL is required",
		},
		{
			name:    "unknown backend",
			env:     map[string]string{"DISCORD_TOKEN": "t", "STORAGE_BACKEND": "redis"},
			wantErr: "STORAGE_BACKEND",
		},
		{
			name:    "unknown log format",
			env:     map[string]string{"DISCORD_TOKEN": "t", "LOG_FORMAT": "xml"},
			wantErr: "LOG_FORMAT",
		},
		{
			name:    "non positive timeout",
			env:     map[string]string{"DISCORD_TOKEN": "t", "CONFIRMATION_TIMEOUT": "0s"},
			wantErr: "CONFIRMATION_TIMEOUT",
		},
		{
			name:    "test environment skips token",
			env:     map[string]string{"ENVIRONMENT": "test"},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadOffline(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/promotion")

	cfg, err := LoadOffline()
	require.NoError(t, err)
	assert.Empty(t, cfg.DiscordToken)
	assert.True(t, cfg.UsesPostgres())

	_, err = Load()
	assert.Error(t, err)
}

func TestSetTestConfig(t *testing.T) {
	t.Cleanup(ResetConfig)

	cfg := NewTestConfig()
	cfg.GuildID = "42"
	SetTestConfig(cfg)

	assert.Same(t, cfg, Get())
	assert.Equal(t, "test", Get().Environment)
}
