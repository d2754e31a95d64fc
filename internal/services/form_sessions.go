package services

import (
	"sync"
	"time"

	"github.com/google/logger"

	"loto/internal/metrics"
)

// FormSession is the ticket form of one browser session.
type FormSession struct {
	Workflow     *TicketWorkflow
	LastActivity time.Time
}

// FormSessions manages one ticket workflow per browser session.
type FormSessions struct {
	mu       sync.Mutex
	sessions map[string]*FormSession // Key: session ID
	factory  func() *TicketWorkflow
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewFormSessions creates a FormSessions whose workflows are built by factory.
func NewFormSessions(factory func() *TicketWorkflow, m *metrics.Metrics) *FormSessions {
	return &FormSessions{
		sessions: make(map[string]*FormSession),
		factory:  factory,
		metrics:  m,
		now:      time.Now,
	}
}

// Get returns the workflow for a session, creating one if it doesn't exist
// or the existing one has been closed.
func (s *FormSessions) Get(sessionID string) *TicketWorkflow {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[sessionID]
	if !exists || session.Workflow.Closed() {
		session = &FormSession{Workflow: s.factory()}
		s.sessions[sessionID] = session
		s.metrics.SetFormSessions(len(s.sessions))
	}
	session.LastActivity = s.now()
	return session.Workflow
}

// Len is the number of open sessions.
func (s *FormSessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// CleanUpInactiveSessions closes and removes sessions idle for longer than ttl.
// It returns how many were removed.
func (s *FormSessions) CleanUpInactiveSessions(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for sessionID, session := range s.sessions {
		if s.now().Sub(session.LastActivity) > ttl {
			session.Workflow.Close()
			delete(s.sessions, sessionID)
			removed++
		}
	}
	if removed > 0 {
		logger.Infof("Removed %d inactive form sessions", removed)
		s.metrics.SetFormSessions(len(s.sessions))
	}
	return removed
}

// Close tears down a single session and its workflow.
func (s *FormSessions) Close(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	session.Workflow.Close()
	delete(s.sessions, sessionID)
	s.metrics.SetFormSessions(len(s.sessions))
	logger.Infof("Closed form session: %s", sessionID)
}

// CloseAll tears down every session, e.g. on shutdown.
func (s *FormSessions) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for sessionID, session := range s.sessions {
		session.Workflow.Close()
		delete(s.sessions, sessionID)
	}
	s.metrics.SetFormSessions(0)
}
