package chat

import (
	"errors"
	"strings"
	"sync"
)

// ErrorReply is appended as an assistant turn when the feedback service
// fails for any reason. Failures are never surfaced as errors to the
// conversation view; the user simply resends.
const ErrorReply = "Sorry, I encountered an error. Please try again."

// Submission guard errors. Both are treated as no-ops by callers.
var (
	ErrNothingToSend = errors.New("nothing to send")
	ErrSendInFlight  = errors.New("a send is already in flight")
)

// State is the pipeline's send state. An explicit enum rather than a bool
// so the at-most-one-send invariant is checkable.
type State int

const (
	StateIdle State = iota
	StateSending
)

// Sender is the external collaborator that delivers a message and returns
// the assistant's reply text.
type Sender interface {
	SendMessage(text string, attachments []PendingAttachment) (string, error)
}

// SenderFunc adapts a function to the Sender interface
type SenderFunc func(text string, attachments []PendingAttachment) (string, error)

func (f SenderFunc) SendMessage(text string, attachments []PendingAttachment) (string, error) {
	return f(text, attachments)
}

// Pipeline orchestrates turn submission for one active conversation:
// optimistic user-turn append, delegation to the Sender, and response or
// error-turn insertion, with full persistence after every mutation.
type Pipeline struct {
	store  *Store
	sender Sender

	mu    sync.Mutex
	state State
	key   string
	turns []Turn
}

// NewPipeline creates a pipeline positioned on the given context key,
// loading any persisted turns for it.
func NewPipeline(store *Store, sender Sender, key string) *Pipeline {
	return &Pipeline{
		store:  store,
		sender: sender,
		key:    key,
		turns:  store.Load(key),
	}
}

// State returns the current send state
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Key returns the active context key
func (p *Pipeline) Key() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.key
}

// Turns returns a copy of the active conversation's turn sequence
func (p *Pipeline) Turns() []Turn {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.turns) == 0 {
		return nil
	}
	out := make([]Turn, len(p.turns))
	copy(out, p.turns)
	return out
}

// SetContext switches the pipeline to a different conversation, fully
// reloading its turns from storage. In-memory state from the previous
// context never leaks into the new one. Callers are responsible for
// discarding draft text and staged attachments on switch.
//
// A send still in flight for the previous context will settle into that
// context's persisted record, not the new one.
func (p *Pipeline) SetContext(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.key = key
	p.turns = p.store.Load(key)
}

// Begin validates a submission and appends the optimistic user turn.
// It rejects with ErrNothingToSend when the draft is blank and no
// attachments are staged, and with ErrSendInFlight while a send is
// pending. On success the pipeline enters the sending state and the
// caller must settle it with exactly one Complete or Fail.
func (p *Pipeline) Begin(draft string, pending []PendingAttachment) (Turn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if strings.TrimSpace(draft) == "" && len(pending) == 0 {
		return Turn{}, ErrNothingToSend
	}
	if p.state == StateSending {
		return Turn{}, ErrSendInFlight
	}

	userTurn := NewTurn(RoleUser, draft, ProjectAttachments(pending))
	p.turns = append(p.turns, userTurn)
	p.persistLocked(p.key, p.turns)

	p.state = StateSending
	return userTurn, nil
}

// Complete settles an in-flight send with the assistant's reply
func (p *Pipeline) Complete(key, text string) Turn {
	return p.settle(key, NewTurn(RoleAssistant, text, nil))
}

// Fail settles an in-flight send with the fixed error reply. The cause is
// swallowed into the conversation by design.
func (p *Pipeline) Fail(key string) Turn {
	return p.settle(key, NewTurn(RoleAssistant, ErrorReply, nil))
}

// settle appends the assistant turn under the context the send started in.
// When the user has switched away mid-send, the turn is persisted to the
// originating record rather than the now-active conversation.
func (p *Pipeline) settle(key string, turn Turn) Turn {
	p.mu.Lock()
	defer p.mu.Unlock()

	if key == p.key {
		p.turns = append(p.turns, turn)
		p.persistLocked(key, p.turns)
	} else {
		stored := append(p.store.Load(key), turn)
		p.persistLocked(key, stored)
	}

	p.state = StateIdle
	return turn
}

// Submit runs the full pipeline synchronously: guard, optimistic user
// turn, delegation to the sender, and response or error turn. Returns the
// pair of turns added to the conversation. Re-submitting identical text
// produces an independent second pair; there is no deduplication.
func (p *Pipeline) Submit(draft string, pending []PendingAttachment) (Turn, Turn, error) {
	userTurn, err := p.Begin(draft, pending)
	if err != nil {
		return Turn{}, Turn{}, err
	}
	key := p.Key()

	text, err := p.sender.SendMessage(draft, pending)
	if err != nil {
		return userTurn, p.Fail(key), nil
	}
	return userTurn, p.Complete(key, text), nil
}

// Clear wipes the active conversation, removing its persisted record
func (p *Pipeline) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.turns = nil
	return p.store.Clear(p.key)
}

// persistLocked saves turns and reports failures without aborting the
// conversation. MUST be called with p.mu held.
func (p *Pipeline) persistLocked(key string, turns []Turn) {
	if err := p.store.Save(key, turns); err != nil {
		// A failed write degrades to in-memory-only history
		p.store.warnf("Warning: failed to persist conversation %q: %v\n", key, err)
	}
}
