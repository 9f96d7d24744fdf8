package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"promotion/events"
	"promotion/models"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
)

// ErrAssignmentNotFound is returned when a delete request matches nothing
var ErrAssignmentNotFound = errors.New("assignment not found")

// DeleteResult describes the outcome of a successful delete
type DeleteResult struct {
	Scope     DeletionScope
	Removed   int // number of templates removed
	Remaining int // templates left in the guild
}

// AssignmentStore owns the in-memory assignment mapping. Reads are served
// from memory; every mutation is serialized per guild and written through
// the repository before the guild lock is released.
type AssignmentStore struct {
	repo      AssignmentRepository
	publisher EventPublisher

	mu          sync.RWMutex
	assignments models.Assignments

	locksMu    sync.Mutex
	guildLocks map[string]*sync.Mutex
}

// NewAssignmentStore creates an empty store. Call Load to populate it.
func NewAssignmentStore(repo AssignmentRepository, publisher EventPublisher) *AssignmentStore {
	return &AssignmentStore{
		repo:        repo,
		publisher:   publisher,
		assignments: make(models.Assignments),
		guildLocks:  make(map[string]*sync.Mutex),
	}
}

// Load reads every guild document from the repository into memory. If the
// repository fails part way, the guilds it did read are kept and the error
// is returned for the caller to decide on.
func (s *AssignmentStore) Load(ctx context.Context) error {
	loaded, err := s.repo.LoadAll(ctx)

	s.mu.Lock()
	for guildID, roles := range loaded {
		s.assignments[guildID] = roles
	}
	guildCount := len(s.assignments)
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to load assignments: %w", err)
	}

	log.WithField("guilds", guildCount).Info("Loaded assignments")
	return nil
}

// Save writes every guild currently in memory. Guilds no longer in memory
// keep whatever document they had.
func (s *AssignmentStore) Save(ctx context.Context) error {
	var result *multierror.Error
	snapshot := s.Snapshot()
	for _, guildID := range snapshot.GuildIDs() {
		if err := s.repo.SaveGuild(ctx, guildID, snapshot[guildID]); err != nil {
			result = multierror.Append(result, fmt.Errorf("guild %s: %w", guildID, err))
		}
	}
	return result.ErrorOrNil()
}

// Create appends a template to the role's list for the channel
func (s *AssignmentStore) Create(ctx context.Context, guildID, roleID, channelID, template string) error {
	unlock := s.lockGuild(guildID)
	defer unlock()

	s.mu.Lock()
	roles, ok := s.assignments[guildID]
	if !ok {
		roles = make(models.GuildAssignments)
		s.assignments[guildID] = roles
	}
	channels, ok := roles[roleID]
	if !ok {
		channels = make(models.RoleAssignments)
		roles[roleID] = channels
	}
	channels[channelID] = append(channels[channelID], template)
	snapshot := roles.Clone()
	s.mu.Unlock()

	if err := s.repo.SaveGuild(ctx, guildID, snapshot); err != nil {
		return fmt.Errorf("failed to save assignments for guild %s: %w", guildID, err)
	}

	log.WithFields(log.Fields{
		"guild_id":   guildID,
		"role_id":    roleID,
		"channel_id": channelID,
	}).Info("Assignment created")

	s.publish(ctx, events.AssignmentsChangedEvent{
		GuildID:   guildID,
		Action:    events.AssignmentActionCreated,
		RoleID:    roleID,
		ChannelID: channelID,
		Remaining: snapshot.Count(),
	})
	return nil
}

// Exists reports whether a delete request would remove anything
func (s *AssignmentStore) Exists(guildID string, req DeleteRequest) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countMatches(s.assignments[guildID], req) > 0
}

// Delete removes what the request selects. Emptied channel lists and the
// roles left without channels are pruned. The guild entry itself is kept,
// even when emptied, so its document is rewritten rather than left stale.
func (s *AssignmentStore) Delete(ctx context.Context, guildID string, req DeleteRequest) (*DeleteResult, error) {
	if req.Scope == ScopeInvalid {
		return nil, fmt.Errorf("invalid deletion scope")
	}

	unlock := s.lockGuild(guildID)
	defer unlock()

	s.mu.Lock()
	roles := s.assignments[guildID]
	removed := countMatches(roles, req)
	if removed == 0 {
		s.mu.Unlock()
		return nil, ErrAssignmentNotFound
	}
	if req.Scope == ScopeGuild {
		roles = make(models.GuildAssignments)
		s.assignments[guildID] = roles
	} else {
		removeMatches(roles, req)
	}
	snapshot := roles.Clone()
	s.mu.Unlock()

	if err := s.repo.SaveGuild(ctx, guildID, snapshot); err != nil {
		return nil, fmt.Errorf("failed to save assignments for guild %s: %w", guildID, err)
	}

	result := &DeleteResult{
		Scope:     req.Scope,
		Removed:   removed,
		Remaining: snapshot.Count(),
	}

	log.WithFields(log.Fields{
		"guild_id":  guildID,
		"scope":     req.Scope.String(),
		"removed":   result.Removed,
		"remaining": result.Remaining,
	}).Info("Assignments deleted")

	s.publish(ctx, events.AssignmentsChangedEvent{
		GuildID:   guildID,
		Action:    events.AssignmentActionDeleted,
		Scope:     req.Scope.String(),
		RoleID:    req.RoleID,
		ChannelID: req.ChannelID,
		Remaining: result.Remaining,
	})
	return result, nil
}

// Guild returns a copy of a guild's assignments, or nil if it has none
func (s *AssignmentStore) Guild(guildID string) models.GuildAssignments {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.assignments[guildID].Clone()
}

// Role returns a copy of one role's channel assignments, or nil
func (s *AssignmentStore) Role(guildID, roleID string) models.RoleAssignments {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.assignments[guildID][roleID].Clone()
}

// Snapshot returns a copy of every guild's assignments
func (s *AssignmentStore) Snapshot() models.Assignments {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.assignments.Clone()
}

func (s *AssignmentStore) lockGuild(guildID string) func() {
	s.locksMu.Lock()
	lock, ok := s.guildLocks[guildID]
	if !ok {
		lock = &sync.Mutex{}
		s.guildLocks[guildID] = lock
	}
	s.locksMu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func (s *AssignmentStore) publish(ctx context.Context, event events.Event) {
	if s.publisher != nil {
		s.publisher.Emit(ctx, event)
	}
}

// countMatches returns how many templates a request would remove
func countMatches(roles models.GuildAssignments, req DeleteRequest) int {
	switch req.Scope {
	case ScopeGuild:
		return roles.Count()
	case ScopeRole:
		return models.GuildAssignments{req.RoleID: roles[req.RoleID]}.Count()
	case ScopeRoleChannel:
		return len(roles[req.RoleID][req.ChannelID])
	case ScopeMessage:
		for _, template := range roles[req.RoleID][req.ChannelID] {
			if template == req.Message {
				return 1
			}
		}
		return 0
	case ScopeChannel:
		total := 0
		for _, channels := range roles {
			total += len(channels[req.ChannelID])
		}
		return total
	default:
		return 0
	}
}

// removeMatches applies a non-guild scope in place and prunes empty entries
func removeMatches(roles models.GuildAssignments, req DeleteRequest) {
	switch req.Scope {
	case ScopeRole:
		delete(roles, req.RoleID)
	case ScopeRoleChannel:
		delete(roles[req.RoleID], req.ChannelID)
		pruneRole(roles, req.RoleID)
	case ScopeMessage:
		channels := roles[req.RoleID]
		templates := channels[req.ChannelID]
		for i, template := range templates {
			if template == req.Message {
				templates = append(templates[:i:i], templates[i+1:]...)
				break
			}
		}
		if len(templates) == 0 {
			delete(channels, req.ChannelID)
		} else {
			channels[req.ChannelID] = templates
		}
		pruneRole(roles, req.RoleID)
	case ScopeChannel:
		for roleID, channels := range roles {
			if _, ok := channels[req.ChannelID]; ok {
				delete(channels, req.ChannelID)
				pruneRole(roles, roleID)
			}
		}
	}
}

func pruneRole(roles models.GuildAssignments, roleID string) {
	if len(roles[roleID]) == 0 {
		delete(roles, roleID)
	}
}
