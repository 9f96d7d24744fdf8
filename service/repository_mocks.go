package service

import (
	"context"
	"sync"

	"promotion/events"
	"promotion/models"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/mock"
)

// MockAssignmentRepository is a mock implementation of AssignmentRepository
type MockAssignmentRepository struct {
	mock.Mock
}

func (m *MockAssignmentRepository) LoadAll(ctx context.Context) (models.Assignments, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Assignments), args.Error(1)
}

func (m *MockAssignmentRepository) SaveGuild(ctx context.Context, guildID string, assignments models.GuildAssignments) error {
	args := m.Called(ctx, guildID, assignments)
	return args.Error(0)
}

// MockMessageSender is a mock implementation of MessageSender
type MockMessageSender struct {
	mock.Mock
}

func (m *MockMessageSender) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	args := m.Called(channelID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Message), args.Error(1)
}

// MockRoleResolver is a mock implementation of RoleResolver
type MockRoleResolver struct {
	mock.Mock
}

func (m *MockRoleResolver) Role(guildID, roleID string) (*discordgo.Role, error) {
	args := m.Called(guildID, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Role), args.Error(1)
}

// RecordingPublisher collects emitted events
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []events.Event
}

func (p *RecordingPublisher) Emit(ctx context.Context, event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
}
