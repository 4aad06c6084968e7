// Package state provides a lightweight FSM/session manager for
// Telegram conversations. It is domain-agnostic: flows register a
// handler per state and stash their draft data in the session.
package state

import (
	"time"

	tele "gopkg.in/telebot.v4"
)

// State identifies a finite-state-machine step used in conversations.
type State string

// StateIdle indicates there is no active conversation with the user.
const StateIdle State = "idle"

// Session stores conversation state and temporary data for one user.
// A session is owned by its manager and must only be touched through it.
type Session struct {
	State      State
	TempData   map[string]interface{}
	LastActive time.Time
}

// Manager orchestrates user sessions and FSM state transitions.
type Manager interface {
	// SetState moves the user to the given state, creating a session
	// if necessary.
	SetState(userID int64, st State)
	// GetState returns the current state, or StateIdle if none exists.
	GetState(userID int64) State
	// SetTemp stores a temporary key/value pair in the user session.
	SetTemp(userID int64, key string, value interface{})
	// GetTemp retrieves a temporary value by key.
	GetTemp(userID int64, key string) (interface{}, bool)
	// Clear removes the entire session for a user.
	Clear(userID int64)
	// InProgress reports whether the user has an active non-idle state.
	InProgress(userID int64) bool

	// Register associates a state with its handler.
	Register(st State, h tele.HandlerFunc)
	// Dispatch executes the handler registered for the user's current
	// state, if any.
	Dispatch(c tele.Context) error

	// Sweep evicts sessions idle longer than maxIdle and returns how
	// many were removed.
	Sweep(maxIdle time.Duration) int
}
