package service

import (
	"context"
	"sync"

	"promotion/models"
)

// memoryRepository is an AssignmentRepository keeping one document per guild in memory
type memoryRepository struct {
	mu        sync.Mutex
	documents map[string]models.GuildAssignments
	saves     int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{documents: make(map[string]models.GuildAssignments)}
}

func (r *memoryRepository) LoadAll(ctx context.Context) (models.Assignments, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(models.Assignments, len(r.documents))
	for guildID, roles := range r.documents {
		out[guildID] = roles.Clone()
	}
	return out, nil
}

func (r *memoryRepository) SaveGuild(ctx context.Context, guildID string, assignments models.GuildAssignments) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.documents[guildID] = assignments.Clone()
	r.saves++
	return nil
}
