// Package session keeps live graphs alive between requests.
//
// A [Session] owns one configured [dag.Graph] together with the definition
// it was built from. The graph is not safe for concurrent use, so every
// access goes through [Session.Do], which serializes callers on the
// session's own lock. Sessions expire after a sliding TTL; the [Store]
// closes their graphs when they are deleted or swept.
//
// # Usage
//
//	store := session.NewMemoryStore()
//	defer store.Close()
//
//	sess := session.New(g, def, session.DefaultTTL)
//	store.Set(ctx, sess)
//
//	err := sess.Do(func(g *dag.Graph) error {
//	    return g.Apply("sat", 2.0)
//	})
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/matzehuels/metagraph/pkg/dag"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("expired")
)

// DefaultTTL is the default idle lifetime of a session.
const DefaultTTL = 30 * time.Minute

// Session holds a live graph.
type Session struct {
	ID         string
	Definition dag.Definition
	CreatedAt  time.Time

	mu        sync.Mutex
	graph     *dag.Graph
	ttl       time.Duration
	expiresAt time.Time
}

// New wraps g in a session. The session id is the graph's instance id.
func New(g *dag.Graph, def dag.Definition, ttl time.Duration) *Session {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	return &Session{
		ID:         g.ID(),
		Definition: def,
		CreatedAt:  now,
		graph:      g,
		ttl:        ttl,
		expiresAt:  now.Add(ttl),
	}
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Now().After(s.expiresAt)
}

// ExpiresAt returns the current expiry time.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

// Do runs fn with exclusive access to the graph and extends the session.
func (s *Session) Do(fn func(g *dag.Graph) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graph.Closed() {
		return ErrExpired
	}
	s.expiresAt = time.Now().Add(s.ttl)
	return fn(s.graph)
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph.Close()
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns ErrNotFound if the session doesn't exist and ErrExpired if
	// it exists but has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session and closes its graph.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions and returns how many were removed.
	Cleanup(ctx context.Context) (int, error)

	// Close closes every remaining session.
	Close() error
}
