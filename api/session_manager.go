package api

import (
	"fmt"
	"sync"

	"github.com/a64sim/a64sim/vm"
)

// Session is one emulation instance owned by the API server
type Session struct {
	ID      string
	Machine *vm.VM

	mu sync.Mutex
}

// WithLock runs fn while holding the session lock. All machine access
// from handlers and websockets goes through here.
func (s *Session) WithLock(fn func(machine *vm.VM) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.Machine)
}

// SessionManager tracks live sessions
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	nextID   int
}

// NewSessionManager creates an empty session manager
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
	}
}

// Create registers a new session around a machine
func (m *SessionManager) Create(machine *vm.VM) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	session := &Session{
		ID:      fmt.Sprintf("sess-%d", m.nextID),
		Machine: machine,
	}
	m.sessions[session.ID] = session
	return session
}

// Get looks up a session by id
func (m *SessionManager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	return session, ok
}

// Delete removes a session
func (m *SessionManager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Count returns the number of live sessions
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
