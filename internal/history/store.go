// Package history provides the in-process, per-session conversation log used
// to ground follow-up questions.
//
// State is process-local and lost on restart by design; sessions are bounded
// rolling windows with lazy idle expiry, so memory use stays proportional to
// active traffic without a background sweeper.
package history

import (
	"strings"
	"sync"
	"time"

	"github.com/voxpersona/voxpersona/internal/log"
)

// Role identifies the author of a history entry.
type Role string

// Roles stored in the exchange log. Entries alternate strictly: a user
// question followed by the assistant answer.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Entry is a single (role, text) record in a session's log.
type Entry struct {
	Role Role
	Text string
}

// Config holds Store construction parameters. Zero values select defaults.
type Config struct {
	// MaxPairs is the number of user/assistant exchange pairs retained per
	// session. The log holds at most 2*MaxPairs entries. Default: 10.
	MaxPairs int

	// IdleTimeout discards a session's log when the gap since its last
	// access exceeds this duration. Default: 30 minutes.
	IdleTimeout time.Duration

	// AssistantLabel is the display label used by Formatted for assistant
	// entries. Default: "Assistant".
	AssistantLabel string

	// Clock returns the current time. Injected for tests. Default: time.Now.
	Clock func() time.Time

	Logger log.Logger
}

// session is one session's log plus its own lock, so concurrent requests for
// different sessions never serialize on each other.
type session struct {
	mu        sync.Mutex
	entries   []Entry
	lastTouch time.Time
}

// Store keeps bounded per-session exchange history with lazy idle expiry.
// Safe for concurrent use.
type Store struct {
	mu       sync.Mutex // guards sessions map membership
	sessions map[string]*session

	maxEntries     int
	idleTimeout    time.Duration
	assistantLabel string
	clock          func() time.Time
	logger         log.Logger
}

// New creates a history store with the given configuration.
func New(cfg Config) *Store {
	maxPairs := cfg.MaxPairs
	if maxPairs <= 0 {
		maxPairs = 10
	}
	idle := cfg.IdleTimeout
	if idle <= 0 {
		idle = 30 * time.Minute
	}
	label := cfg.AssistantLabel
	if label == "" {
		label = "Assistant"
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	return &Store{
		sessions:       make(map[string]*session),
		maxEntries:     maxPairs * 2,
		idleTimeout:    idle,
		assistantLabel: label,
		clock:          clock,
		logger:         logger,
	}
}

// acquire returns the session for id with its lock held, creating it if
// needed. An idle-expired log is discarded first, so the caller always sees
// either live history or a fresh session. The last-touch timestamp is
// refreshed as a side effect of every access.
//
// The caller must release the returned session's mutex.
func (s *Store) acquire(id string) *session {
	now := s.clock()

	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{lastTouch: now}
		s.sessions[id] = sess
	}
	s.mu.Unlock()

	sess.mu.Lock()
	if ok && now.Sub(sess.lastTouch) > s.idleTimeout {
		s.logger.Debug("session expired", "session_id", id, "idle", now.Sub(sess.lastTouch))
		sess.entries = nil
	}
	sess.lastTouch = now
	return sess
}

// RecordTurn appends one completed exchange — (user, question) then
// (assistant, answer) — to the session's log, evicting the oldest entries
// beyond capacity. No-op when sessionID is empty (anonymous callers keep no
// history).
func (s *Store) RecordTurn(sessionID, question, answer string) {
	if sessionID == "" {
		return
	}

	sess := s.acquire(sessionID)
	defer sess.mu.Unlock()

	sess.entries = append(sess.entries,
		Entry{Role: RoleUser, Text: question},
		Entry{Role: RoleAssistant, Text: answer},
	)
	if over := len(sess.entries) - s.maxEntries; over > 0 {
		sess.entries = append(sess.entries[:0], sess.entries[over:]...)
	}
}

// Entries returns a copy of the session's log, oldest first.
// Returns nil for an empty session id or an unknown/expired session.
func (s *Store) Entries(sessionID string) []Entry {
	if sessionID == "" {
		return nil
	}

	sess := s.acquire(sessionID)
	defer sess.mu.Unlock()

	if len(sess.entries) == 0 {
		return nil
	}
	out := make([]Entry, len(sess.entries))
	copy(out, sess.entries)
	return out
}

// Formatted renders the session's log for prompt injection: one
// "<Label>: <text>" line per entry, oldest first, joined by newlines.
// Returns "" when there is no history.
func (s *Store) Formatted(sessionID string) string {
	entries := s.Entries(sessionID)
	if len(entries) == 0 {
		return ""
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		label := "User"
		if e.Role == RoleAssistant {
			label = s.assistantLabel
		}
		lines = append(lines, label+": "+e.Text)
	}
	return strings.Join(lines, "\n")
}

// Len reports the number of entries currently stored for a session, counting
// an expired log as empty. Primarily for tests and stats.
func (s *Store) Len(sessionID string) int {
	if sessionID == "" {
		return 0
	}

	sess := s.acquire(sessionID)
	defer sess.mu.Unlock()
	return len(sess.entries)
}
