package chat

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/eliswilliam/CINEHOME/internal/models"
)

// Conversation memory is volatile and best effort: the window is bounded,
// idle sessions are swept away, and nothing survives a restart.
const (
	DefaultMaxHistoryMessages = 10 // 5 user/assistant pairs
	DefaultSessionTimeout     = 30 * time.Minute
	DefaultSweepInterval      = 10 * time.Minute
)

// Message is a single conversation entry. Immutable once appended.
type Message struct {
	Role    models.Role `json:"role"`
	Content string      `json:"content"`
}

type session struct {
	messages     []Message
	createdAt    time.Time
	lastActivity time.Time
}

// SessionDescription is the read-only view returned by Describe.
type SessionDescription struct {
	Exists       bool
	MessageCount int
	CreatedAt    time.Time
	LastActivity time.Time
}

// Store keeps per-session conversation history keyed by an opaque id.
type Store struct {
	mu          sync.RWMutex
	sessions    map[string]*session
	maxMessages int
	idleTimeout time.Duration
	now         func() time.Time
}

// NewStore builds a session store. Non-positive arguments fall back to
// the platform defaults.
func NewStore(maxMessages int, idleTimeout time.Duration) *Store {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxHistoryMessages
	}
	if idleTimeout <= 0 {
		idleTimeout = DefaultSessionTimeout
	}
	return &Store{
		sessions:    make(map[string]*session),
		maxMessages: maxMessages,
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// GetOrCreate returns the session for the id, creating an empty one when
// unseen, and refreshes its activity timestamp.
func (s *Store) GetOrCreate(sessionID string) SessionDescription {
	now := s.now()
	s.mu.Lock()
	se, ok := s.sessions[sessionID]
	if !ok {
		se = &session{createdAt: now}
		s.sessions[sessionID] = se
		log.Printf("chat: new session %s", sessionID)
	}
	se.lastActivity = now
	desc := describeLocked(se)
	s.mu.Unlock()
	return desc
}

// Append records a message. A vanished session is recreated rather than
// treated as an error; when the window overflows, the oldest entries are
// dropped.
func (s *Store) Append(sessionID string, role models.Role, content string) {
	now := s.now()
	s.mu.Lock()
	se, ok := s.sessions[sessionID]
	if !ok {
		se = &session{createdAt: now}
		s.sessions[sessionID] = se
	}
	se.messages = append(se.messages, Message{Role: role, Content: content})
	if n := len(se.messages); n > s.maxMessages {
		se.messages = append(se.messages[:0], se.messages[n-s.maxMessages:]...)
	}
	se.lastActivity = now
	s.mu.Unlock()
}

// History returns a copy of the retained messages, oldest first. It does
// not refresh activity and returns nil for unknown sessions.
func (s *Store) History(sessionID string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	se, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	history := make([]Message, len(se.messages))
	copy(history, se.messages)
	return history
}

// Clear removes the session and reports whether one existed.
func (s *Store) Clear(sessionID string) bool {
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
		log.Printf("chat: cleared session %s", sessionID)
	}
	s.mu.Unlock()
	return ok
}

// Describe reports session diagnostics without mutating anything.
func (s *Store) Describe(sessionID string) SessionDescription {
	s.mu.RLock()
	defer s.mu.RUnlock()
	se, ok := s.sessions[sessionID]
	if !ok {
		return SessionDescription{}
	}
	return describeLocked(se)
}

func describeLocked(se *session) SessionDescription {
	return SessionDescription{
		Exists:       true,
		MessageCount: len(se.messages),
		CreatedAt:    se.createdAt,
		LastActivity: se.lastActivity,
	}
}

// StartSweeper launches the background eviction loop. It stops when the
// context is cancelled.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	go s.sweepLoop(ctx, interval)
}

func (s *Store) sweepLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.SweepExpired(); n > 0 {
				log.Printf("chat: swept %d expired session(s)", n)
			}
		}
	}
}

// SweepExpired evicts every session idle longer than the timeout and
// returns the eviction count. Safe to run alongside in-flight turns.
func (s *Store) SweepExpired() int {
	cutoff := s.now().Add(-s.idleTimeout)

	s.mu.RLock()
	var expired []string
	for id, se := range s.sessions {
		if se.lastActivity.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	s.mu.RUnlock()

	removed := 0
	for _, id := range expired {
		s.mu.Lock()
		// re-check: the session may have been touched since the scan
		if se, ok := s.sessions[id]; ok && se.lastActivity.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
		s.mu.Unlock()
	}
	return removed
}
