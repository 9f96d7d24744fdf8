package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"promotion/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileAssignmentRepository_SaveWritesSingleKeyDocument(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileAssignmentRepository(dir)
	require.NoError(t, err)

	err = repo.SaveGuild(context.Background(), "1", models.GuildAssignments{
		"10": {"100": {"second", "first"}},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "1.json"))
	require.NoError(t, err)

	var raw map[string]map[string]map[string][]string
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, map[string]map[string]map[string][]string{
		"1": {"10": {"100": {"second", "first"}}},
	}, raw)
	assert.Contains(t, string(data), "\n    \"1\": {")
}

func TestFileAssignmentRepository_RoundTrip(t *testing.T) {
	repo, err := NewFileAssignmentRepository(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	expected := models.Assignments{
		"1": {
			"10": {"100": {"b", "a", "b"}, "200": {"{user_mention} 🎉"}},
		},
		"2": {
			"20": {"200": {"hello"}},
		},
		"3": {},
	}
	for guildID, roles := range expected {
		require.NoError(t, repo.SaveGuild(ctx, guildID, roles))
	}

	loaded, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, expected, loaded)
}

func TestFileAssignmentRepository_SaveOverwrites(t *testing.T) {
	repo, err := NewFileAssignmentRepository(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, repo.SaveGuild(ctx, "1", models.GuildAssignments{"10": {"100": {"a", "b", "c"}}}))
	require.NoError(t, repo.SaveGuild(ctx, "1", models.GuildAssignments{"11": {"100": {"d"}}}))

	loaded, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Assignments{"1": {"11": {"100": {"d"}}}}, loaded)
}

func TestFileAssignmentRepository_LoadIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileAssignmentRepository(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("not json"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "backup.json"), 0o755))
	require.NoError(t, repo.SaveGuild(context.Background(), "1", models.GuildAssignments{"10": {"100": {"a"}}}))

	loaded, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Assignments{"1": {"10": {"100": {"a"}}}}, loaded)
}

func TestFileAssignmentRepository_LoadMalformedKeepsEarlierFiles(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileAssignmentRepository(dir)
	require.NoError(t, err)

	require.NoError(t, repo.SaveGuild(context.Background(), "1", models.GuildAssignments{"10": {"100": {"a"}}}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2.json"), []byte(`{"2": {"20": `), 0o644))

	loaded, err := repo.LoadAll(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "2.json")
	assert.Equal(t, models.Assignments{"1": {"10": {"100": {"a"}}}}, loaded)
}

func TestFileAssignmentRepository_EmptyDirectory(t *testing.T) {
	repo, err := NewFileAssignmentRepository(filepath.Join(t.TempDir(), "nested", "assignments"))
	require.NoError(t, err)

	loaded, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
