package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"promotion/models"

	log "github.com/sirupsen/logrus"
)

// FileAssignmentRepository stores each guild's assignments in <dir>/<guild_id>.json.
// Each file holds a single-key object: {"<guild_id>": {...}}.
type FileAssignmentRepository struct {
	dir string
}

// NewFileAssignmentRepository creates a repository rooted at dir, creating it if needed
func NewFileAssignmentRepository(dir string) (*FileAssignmentRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create assignments directory %s: %w", dir, err)
	}
	return &FileAssignmentRepository{dir: dir}, nil
}

// Dir returns the directory the repository reads and writes
func (r *FileAssignmentRepository) Dir() string {
	return r.dir
}

// LoadAll reads every .json file in the directory in name order and merges them
func (r *FileAssignmentRepository) LoadAll(ctx context.Context) (models.Assignments, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments directory %s: %w", r.dir, err)
	}

	assignments := make(models.Assignments)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return assignments, err
		}

		path := filepath.Join(r.dir, entry.Name())
		document, err := readDocument(path)
		if err != nil {
			return assignments, err
		}
		for guildID, roles := range document {
			if roles == nil {
				roles = make(models.GuildAssignments)
			}
			assignments[guildID] = roles
		}

		log.WithFields(log.Fields{
			"file":   path,
			"guilds": len(document),
		}).Debug("Read assignments file")
	}

	return assignments, nil
}

// SaveGuild overwrites the guild's file. The write is not atomic.
func (r *FileAssignmentRepository) SaveGuild(ctx context.Context, guildID string, assignments models.GuildAssignments) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if assignments == nil {
		assignments = make(models.GuildAssignments)
	}

	data, err := json.MarshalIndent(models.Assignments{guildID: assignments}, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode assignments for guild %s: %w", guildID, err)
	}

	path := r.guildPath(guildID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (r *FileAssignmentRepository) guildPath(guildID string) string {
	return filepath.Join(r.dir, filepath.Base(guildID)+".json")
}

func readDocument(path string) (models.Assignments, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var document models.Assignments
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return document, nil
}
