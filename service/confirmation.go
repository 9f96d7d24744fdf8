package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ConfirmationState is the lifecycle state of a destructive-action prompt
type ConfirmationState int

const (
	ConfirmationPending ConfirmationState = iota
	ConfirmationConfirmed
	ConfirmationCancelled
	ConfirmationExpired
)

func (s ConfirmationState) String() string {
	switch s {
	case ConfirmationPending:
		return "pending"
	case ConfirmationConfirmed:
		return "confirmed"
	case ConfirmationCancelled:
		return "cancelled"
	case ConfirmationExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Confirmation holds a pending delete until the requester answers or it expires.
// It leaves Pending exactly once; every other state is terminal.
type Confirmation struct {
	ID          string
	GuildID     string
	RequesterID string
	Request     DeleteRequest
	CreatedAt   time.Time

	mu    sync.Mutex
	state ConfirmationState
}

// State returns the current state
func (c *Confirmation) State() ConfirmationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Transition moves a pending confirmation to a terminal state. It returns
// false if the confirmation already left Pending or the target is Pending.
func (c *Confirmation) Transition(to ConfirmationState) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != ConfirmationPending || to == ConfirmationPending {
		return false
	}
	c.state = to
	return true
}

type pendingConfirmation struct {
	confirmation *Confirmation
	timer        *time.Timer
}

// ConfirmationRegistry tracks open confirmations by ID and expires them
type ConfirmationRegistry struct {
	timeout time.Duration

	mu      sync.Mutex
	pending map[string]*pendingConfirmation
}

// NewConfirmationRegistry creates a registry whose prompts expire after timeout
func NewConfirmationRegistry(timeout time.Duration) *ConfirmationRegistry {
	return &ConfirmationRegistry{
		timeout: timeout,
		pending: make(map[string]*pendingConfirmation),
	}
}

// Open registers a new pending confirmation. onExpire runs on the timer
// goroutine if nobody resolves it in time.
func (r *ConfirmationRegistry) Open(guildID, requesterID string, req DeleteRequest, onExpire func(*Confirmation)) *Confirmation {
	c := &Confirmation{
		ID:          uuid.NewString(),
		GuildID:     guildID,
		RequesterID: requesterID,
		Request:     req,
		CreatedAt:   time.Now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pending[c.ID] = &pendingConfirmation{
		confirmation: c,
		timer: time.AfterFunc(r.timeout, func() {
			r.expire(c.ID, onExpire)
		}),
	}
	return c
}

// Lookup returns a pending confirmation without resolving it
func (r *ConfirmationRegistry) Lookup(id string) (*Confirmation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pending[id]
	if !ok {
		return nil, false
	}
	return p.confirmation, true
}

// Resolve answers a pending confirmation with Confirmed or Cancelled. It
// returns false if the ID is unknown or the prompt already expired.
func (r *ConfirmationRegistry) Resolve(id string, to ConfirmationState) (*Confirmation, bool) {
	r.mu.Lock()
	p, ok := r.pending[id]
	if ok {
		delete(r.pending, id)
		p.timer.Stop()
	}
	r.mu.Unlock()

	if !ok {
		return nil, false
	}
	if !p.confirmation.Transition(to) {
		return p.confirmation, false
	}
	return p.confirmation, true
}

// Len returns the number of open confirmations
func (r *ConfirmationRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Close stops every timer and drops the open confirmations
func (r *ConfirmationRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, p := range r.pending {
		p.timer.Stop()
		p.confirmation.Transition(ConfirmationCancelled)
		delete(r.pending, id)
	}
}

func (r *ConfirmationRegistry) expire(id string, onExpire func(*Confirmation)) {
	r.mu.Lock()
	p, ok := r.pending[id]
	if ok {
		delete(r.pending, id)
	}
	r.mu.Unlock()

	if !ok || !p.confirmation.Transition(ConfirmationExpired) {
		return
	}

	log.WithFields(log.Fields{
		"confirmation_id": id,
		"guild_id":        p.confirmation.GuildID,
		"scope":           p.confirmation.Request.Scope.String(),
		"open_for":        time.Since(p.confirmation.CreatedAt).Round(time.Second).String(),
	}).Info("Confirmation expired without an answer")

	if onExpire != nil {
		onExpire(p.confirmation)
	}
}
