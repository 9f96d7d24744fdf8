package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"promotion/database"
	"promotion/models"
)

// PostgresAssignmentRepository stores one JSONB document per guild in the
// guild_assignments table. The document has the same single-key shape as
// the file backend.
type PostgresAssignmentRepository struct {
	db *database.DB
}

// NewPostgresAssignmentRepository creates a repository backed by db
func NewPostgresAssignmentRepository(db *database.DB) *PostgresAssignmentRepository {
	return &PostgresAssignmentRepository{db: db}
}

// LoadAll reads every guild document in guild ID order and merges them
func (r *PostgresAssignmentRepository) LoadAll(ctx context.Context) (models.Assignments, error) {
	query := `
		SELECT guild_id, document
		FROM guild_assignments
		ORDER BY guild_id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query guild assignments: %w", err)
	}
	defer rows.Close()

	assignments := make(models.Assignments)
	for rows.Next() {
		var guildID string
		var raw []byte
		if err := rows.Scan(&guildID, &raw); err != nil {
			return assignments, fmt.Errorf("failed to scan guild assignments: %w", err)
		}

		var document models.Assignments
		if err := json.Unmarshal(raw, &document); err != nil {
			return assignments, fmt.Errorf("failed to parse assignments of guild %s: %w", guildID, err)
		}
		for id, roles := range document {
			if roles == nil {
				roles = make(models.GuildAssignments)
			}
			assignments[id] = roles
		}
	}

	if err := rows.Err(); err != nil {
		return assignments, fmt.Errorf("error iterating guild assignments: %w", err)
	}
	return assignments, nil
}

// SaveGuild upserts the guild's document
func (r *PostgresAssignmentRepository) SaveGuild(ctx context.Context, guildID string, assignments models.GuildAssignments) error {
	if assignments == nil {
		assignments = make(models.GuildAssignments)
	}

	document, err := json.Marshal(models.Assignments{guildID: assignments})
	if err != nil {
		return fmt.Errorf("failed to encode assignments for guild %s: %w", guildID, err)
	}

	query := `
		INSERT INTO guild_assignments (guild_id, document, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (guild_id) DO UPDATE
		SET document = EXCLUDED.document, updated_at = now()
	`

	if _, err := r.db.Exec(ctx, query, guildID, string(document)); err != nil {
		return fmt.Errorf("failed to save assignments for guild %s: %w", guildID, err)
	}
	return nil
}
