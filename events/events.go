package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeMemberRolesAdded   EventType = "member_roles_added"
	EventTypeAssignmentsChanged EventType = "assignments_changed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// MemberRolesAddedEvent is raised when a guild member update grants new roles
type MemberRolesAddedEvent struct {
	GuildID     string
	UserID      string
	UserMention string
	UserTag     string
	DisplayName string
	AddedRoles  []string
}

func (e MemberRolesAddedEvent) Type() EventType {
	return EventTypeMemberRolesAdded
}

// AssignmentAction describes how a guild's assignments were changed
type AssignmentAction string

const (
	AssignmentActionCreated AssignmentAction = "created"
	AssignmentActionDeleted AssignmentAction = "deleted"
)

// AssignmentsChangedEvent is raised after a guild's assignments were persisted
type AssignmentsChangedEvent struct {
	GuildID   string
	Action    AssignmentAction
	Scope     string
	RoleID    string
	ChannelID string
	Remaining int
}

func (e AssignmentsChangedEvent) Type() EventType {
	return EventTypeAssignmentsChanged
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers without waiting for them
func (b *Bus) Emit(ctx context.Context, event Event) {
	handlers := b.snapshot(event.Type())

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	for i, handler := range handlers {
		go invoke(ctx, handler, i, event)
	}
}

// EmitSync publishes an event and returns once every handler has finished
func (b *Bus) EmitSync(ctx context.Context, event Event) {
	for i, handler := range b.snapshot(event.Type()) {
		invoke(ctx, handler, i, event)
	}
}

func (b *Bus) snapshot(eventType EventType) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	handlers := make([]Handler, len(b.handlers[eventType]))
	copy(handlers, b.handlers[eventType])
	return handlers
}

func invoke(ctx context.Context, h Handler, handlerIndex int, event Event) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"eventType":    event.Type(),
				"handlerIndex": handlerIndex,
				"panic":        r,
			}).Error("Event handler panicked")
		}
	}()
	h(ctx, event)
}
