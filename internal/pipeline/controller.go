package pipeline

import (
	"sync"

	"SignBridge/pkg/errors"
)

// Workflow states for one user. A user owns at most one in-flight
// artifact: re-entry is rejected here, not just greyed out in the UI.
type State string

const (
	StateIdle       State = "idle"
	StateRecording  State = "recording"
	StateProcessing State = "processing"
)

// Controller tracks the capture/processing state machine per user and
// enforces the single-in-flight invariant.
type Controller struct {
	mu     sync.Mutex
	states map[string]State
}

func NewController() *Controller {
	return &Controller{states: make(map[string]State)}
}

// StateOf returns the current state for userID.
func (c *Controller) StateOf(userID string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.states[userID]; ok {
		return s
	}
	return StateIdle
}

// BeginRecording moves idle → recording.
func (c *Controller) BeginRecording(userID string) error {
	return c.transition(userID, StateIdle, StateRecording, "enregistrement déjà en cours")
}

// BeginProcessing moves recording → processing. Callers that receive the
// finished artifact directly (the HTTP upload path) may also enter from
// idle.
func (c *Controller) BeginProcessing(userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.current(userID) {
	case StateIdle, StateRecording:
		c.states[userID] = StateProcessing
		return nil
	default:
		return errors.WithCode(errors.CodeConflict, "traitement déjà en cours")
	}
}

// Finish returns the user to idle whatever the outcome was.
func (c *Controller) Finish(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.states, userID)
}

// CancelRecording aborts a capture that never produced an artifact.
func (c *Controller) CancelRecording(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current(userID) == StateRecording {
		delete(c.states, userID)
	}
}

func (c *Controller) transition(userID string, from, to State, conflictMsg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current(userID) != from {
		return errors.WithCode(errors.CodeConflict, conflictMsg)
	}
	c.states[userID] = to
	return nil
}

func (c *Controller) current(userID string) State {
	if s, ok := c.states[userID]; ok {
		return s
	}
	return StateIdle
}
