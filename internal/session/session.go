// Package session holds the "already unlocked" marker for the current
// browsing session. The marker is an explicit value passed to the reveal
// flow, never ambient state.
package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoSession is returned by Read when no marker is set; callers redirect
// to the entry screen instead of proceeding.
var ErrNoSession = errors.New("no active session")

// Session marks a verified key for the current session. The plaintext key
// lives only here, in ephemeral session scope, never in the persisted
// record.
type Session struct {
	Key      string
	IssuedAt time.Time
}

// Store is the capability interface over the session marker.
type Store interface {
	// Read returns the current session, or ErrNoSession.
	Read(ctx context.Context) (Session, error)
	// Set writes the marker. Called on successful gate pass.
	Set(ctx context.Context, s Session) error
	// Clear removes the marker. Called on explicit exit ("return home").
	Clear(ctx context.Context) error
}

// MemStore is an in-memory Store, used in tests and as the default when no
// persistent session backing is configured.
type MemStore struct {
	mu  sync.Mutex
	s   Session
	set bool
}

// NewMemStore returns an empty in-memory session store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (m *MemStore) Read(ctx context.Context) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return Session{}, ErrNoSession
	}
	return m.s, nil
}

func (m *MemStore) Set(ctx context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = s
	m.set = true
	return nil
}

func (m *MemStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = Session{}
	m.set = false
	return nil
}
